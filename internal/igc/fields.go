package igc

// fieldReader slices fixed-width fields out of one line and records the
// first failure against the record kind it is decoding.
type fieldReader struct {
	record string
	line   string
	err    *ParseError
}

func newFieldReader(record, line string, tag byte, minLen int) (*fieldReader, error) {
	if len(line) == 0 || line[0] != tag {
		return nil, badTag(record, line, tag)
	}
	if len(line) < minLen {
		return nil, tooShort(record, line, minLen)
	}
	return &fieldReader{record: record, line: line}, nil
}

func (r *fieldReader) number(field string, start, end int) int {
	if r.err != nil {
		return 0
	}
	v := r.line[start:end]
	n, ok := digits(v)
	if !ok {
		r.err = &ParseError{
			Kind:   MalformedNumericField,
			Record: r.record,
			Field:  field,
			Value:  v,
			Line:   r.line,
		}
	}
	return n
}

// signed reads a field that may carry a leading minus sign, as B record
// altitudes below the datum do.
func (r *fieldReader) signed(field string, start, end int) int {
	if r.err != nil {
		return 0
	}
	if r.line[start] == '-' {
		return -r.number(field, start+1, end)
	}
	return r.number(field, start, end)
}

func (r *fieldReader) date(field string, start, end int) Date {
	if r.err != nil {
		return Date{}
	}
	d, err := ParseDate(r.line[start:end])
	if err != nil {
		r.err = badPrimitive(r.record, field, r.line, r.line[start:end], err)
	}
	return d
}

func (r *fieldReader) clock(field string, start, end int) Time {
	if r.err != nil {
		return Time{}
	}
	t, err := ParseTime(r.line[start:end])
	if err != nil {
		r.err = badPrimitive(r.record, field, r.line, r.line[start:end], err)
	}
	return t
}

func (r *fieldReader) position(field string, start, end int) RawPosition {
	if r.err != nil {
		return RawPosition{}
	}
	p, err := ParsePosition(r.line[start:end])
	if err != nil {
		r.err = badPrimitive(r.record, field, r.line, r.line[start:end], err)
	}
	return p
}

// oneOf reads a single byte that must be in allowed
func (r *fieldReader) oneOf(field string, at int, allowed string) byte {
	if r.err != nil {
		return 0
	}
	c := r.line[at]
	for i := 0; i < len(allowed); i++ {
		if allowed[i] == c {
			return c
		}
	}
	r.err = &ParseError{
		Kind:   MalformedField,
		Record: r.record,
		Field:  field,
		Value:  r.line[at : at+1],
		Line:   r.line,
	}
	return 0
}

// trailer returns the text from start to the end of the line, or nil when
// the line ends exactly at start.
func (r *fieldReader) trailer(start int) *string {
	if len(r.line) <= start {
		return nil
	}
	s := r.line[start:]
	return &s
}

// failed returns the first recorded error as an error interface value,
// keeping a nil *ParseError from becoming a non-nil error.
func (r *fieldReader) failed() error {
	if r.err == nil {
		return nil
	}
	return r.err
}
