package igc

import (
	"fmt"
	"strings"
)

const (
	extensionEntryWidth = 7
	mnemonicWidth       = 3
	maxColumn           = 99
)

// Extension names a column range of the B or K records that follow.
// Start and End are 1-based and inclusive.
type Extension struct {
	Mnemonic string `json:"mnemonic"`
	Start    int    `json:"start"`
	End      int    `json:"end"`
}

// NewExtension returns an extension for the given mnemonic and columns
func NewExtension(mnemonic string, start, end int) Extension {
	return Extension{Mnemonic: mnemonic, Start: start, End: end}
}

// Value returns the columns of line this extension covers
func (e Extension) Value(line string) (string, bool) {
	if e.Start < 1 || e.End < e.Start || e.End > len(line) {
		return "", false
	}
	return line[e.Start-1 : e.End], true
}

// ExtensionDefinition is the body of an I or J record: a count followed by
// that many extensions in declaration order.
type ExtensionDefinition struct {
	Count      int         `json:"count"`
	Extensions []Extension `json:"extensions"`
}

// ExtensionCountWidth returns how many digits the count field occupies in
// records with the given tag, or 0 if the tag carries no extension definition.
func ExtensionCountWidth(tag byte) int {
	switch tag {
	case 'I', 'J':
		return 2
	default:
		return 0
	}
}

// DecodeExtensions decodes an extension definition body (the line without
// its tag) whose count field is countWidth digits wide.
func DecodeExtensions(body string, countWidth int) (*ExtensionDefinition, error) {
	return decodeExtensions("extension definition", body, body, countWidth)
}

func decodeExtensions(record, line, body string, countWidth int) (*ExtensionDefinition, error) {
	if countWidth < 1 || countWidth > 2 {
		return nil, fmt.Errorf("%s: unsupported count width %d", record, countWidth)
	}
	if len(body) < countWidth {
		return nil, tooShort(record, line, len(line)-len(body)+countWidth)
	}

	count, ok := digits(body[:countWidth])
	if !ok {
		return nil, &ParseError{
			Kind:   MalformedNumericField,
			Record: record,
			Field:  "extension count",
			Value:  body[:countWidth],
			Line:   line,
		}
	}

	need := countWidth + count*extensionEntryWidth
	if len(body) < need {
		return nil, tooShort(record, line, len(line)-len(body)+need)
	}

	def := &ExtensionDefinition{
		Count:      count,
		Extensions: make([]Extension, 0, count),
	}
	r := &fieldReader{record: record, line: body}
	for i := 0; i < count; i++ {
		at := countWidth + i*extensionEntryWidth
		ext := Extension{
			Start:    r.number(fmt.Sprintf("extension %d start", i+1), at, at+2),
			End:      r.number(fmt.Sprintf("extension %d end", i+1), at+2, at+4),
			Mnemonic: body[at+4 : at+extensionEntryWidth],
		}
		if r.err != nil {
			r.err.Line = line
			return nil, r.err
		}
		def.Extensions = append(def.Extensions, ext)
	}
	return def, nil
}

// Encode renders the definition body with a countWidth digit count
func (d ExtensionDefinition) Encode(countWidth int) (string, error) {
	if countWidth < 1 || countWidth > 2 {
		return "", fmt.Errorf("unsupported count width %d", countWidth)
	}
	if d.Count != len(d.Extensions) {
		return "", fmt.Errorf("extension count %d does not match %d extensions", d.Count, len(d.Extensions))
	}
	limit := 10
	if countWidth == 2 {
		limit = 100
	}
	if d.Count < 0 || d.Count >= limit {
		return "", fmt.Errorf("extension count %d does not fit %d digits", d.Count, countWidth)
	}

	var b strings.Builder
	b.Grow(countWidth + len(d.Extensions)*extensionEntryWidth)
	fmt.Fprintf(&b, "%0*d", countWidth, d.Count)
	for _, e := range d.Extensions {
		if len(e.Mnemonic) != mnemonicWidth {
			return "", fmt.Errorf("extension mnemonic %q must be %d bytes", e.Mnemonic, mnemonicWidth)
		}
		if e.Start < 0 || e.Start > maxColumn || e.End < 0 || e.End > maxColumn {
			return "", fmt.Errorf("extension %s columns %d-%d do not fit 2 digits", e.Mnemonic, e.Start, e.End)
		}
		fmt.Fprintf(&b, "%02d%02d%s", e.Start, e.End, e.Mnemonic)
	}
	return b.String(), nil
}

// Format renders the definition as a full line for the record kind with tag
func (d ExtensionDefinition) Format(tag byte) (string, error) {
	width := ExtensionCountWidth(tag)
	if width == 0 {
		return "", fmt.Errorf("record %q carries no extension definition", tag)
	}
	body, err := d.Encode(width)
	if err != nil {
		return "", err
	}
	return string(tag) + body, nil
}

// Lookup returns the extension with the given mnemonic
func (d ExtensionDefinition) Lookup(mnemonic string) (Extension, bool) {
	for _, e := range d.Extensions {
		if e.Mnemonic == mnemonic {
			return e, true
		}
	}
	return Extension{}, false
}

// FixExtensions is the I record declaring extensions appended to B records
type FixExtensions struct {
	ExtensionDefinition
}

// DataExtensions is the J record declaring the layout of K records
type DataExtensions struct {
	ExtensionDefinition
}

// ParseFixExtensions decodes an I line
func ParseFixExtensions(line string) (*FixExtensions, error) {
	def, err := parseExtensionLine("fix extensions", line, 'I')
	if err != nil {
		return nil, err
	}
	return &FixExtensions{ExtensionDefinition: *def}, nil
}

// ParseDataExtensions decodes a J line
func ParseDataExtensions(line string) (*DataExtensions, error) {
	def, err := parseExtensionLine("data extensions", line, 'J')
	if err != nil {
		return nil, err
	}
	return &DataExtensions{ExtensionDefinition: *def}, nil
}

func parseExtensionLine(record, line string, tag byte) (*ExtensionDefinition, error) {
	if len(line) == 0 || line[0] != tag {
		return nil, badTag(record, line, tag)
	}
	return decodeExtensions(record, line, line[1:], ExtensionCountWidth(tag))
}

// Format renders the I line
func (r FixExtensions) Format() (string, error) {
	return r.ExtensionDefinition.Format('I')
}

// Format renders the J line
func (r DataExtensions) Format() (string, error) {
	return r.ExtensionDefinition.Format('J')
}
