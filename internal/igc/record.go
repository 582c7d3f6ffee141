package igc

// RecordKind names the variant of a decoded Record
type RecordKind string

const (
	KindFlightRecorderID RecordKind = "flight_recorder_id"
	KindFix              RecordKind = "fix"
	KindTaskDeclaration  RecordKind = "task_declaration"
	KindTaskTurnpoint    RecordKind = "task_turnpoint"
	KindDifferentialGPS  RecordKind = "differential_gps"
	KindEvent            RecordKind = "event"
	KindSatellites       RecordKind = "satellites"
	KindSecurity         RecordKind = "security"
	KindHeader           RecordKind = "header"
	KindFixExtensions    RecordKind = "fix_extensions"
	KindDataExtensions   RecordKind = "data_extensions"
	KindExtensionData    RecordKind = "extension_data"
	KindComment          RecordKind = "comment"
	KindUnrecognised     RecordKind = "unrecognised"
)

// Record is one decoded line. The set of implementations is closed; switch
// on the concrete type or on Kind.
type Record interface {
	Kind() RecordKind
	isRecord()
}

// Unrecognised is produced for a line whose tag is not a known record kind
type Unrecognised struct {
	Tag Flag `json:"tag"`
}

func (*FlightRecorderID) Kind() RecordKind { return KindFlightRecorderID }
func (*Fix) Kind() RecordKind              { return KindFix }
func (*TaskDeclaration) Kind() RecordKind  { return KindTaskDeclaration }
func (*TaskTurnpoint) Kind() RecordKind    { return KindTaskTurnpoint }
func (*DifferentialGPS) Kind() RecordKind  { return KindDifferentialGPS }
func (*Event) Kind() RecordKind            { return KindEvent }
func (*Satellites) Kind() RecordKind       { return KindSatellites }
func (*Security) Kind() RecordKind         { return KindSecurity }
func (*Header) Kind() RecordKind           { return KindHeader }
func (*FixExtensions) Kind() RecordKind    { return KindFixExtensions }
func (*DataExtensions) Kind() RecordKind   { return KindDataExtensions }
func (*ExtensionData) Kind() RecordKind    { return KindExtensionData }
func (*Comment) Kind() RecordKind          { return KindComment }
func (*Unrecognised) Kind() RecordKind     { return KindUnrecognised }

func (*FlightRecorderID) isRecord() {}
func (*Fix) isRecord()              {}
func (*TaskDeclaration) isRecord()  {}
func (*TaskTurnpoint) isRecord()    {}
func (*DifferentialGPS) isRecord()  {}
func (*Event) isRecord()            {}
func (*Satellites) isRecord()       {}
func (*Security) isRecord()         {}
func (*Header) isRecord()           {}
func (*FixExtensions) isRecord()    {}
func (*DataExtensions) isRecord()   {}
func (*ExtensionData) isRecord()    {}
func (*Comment) isRecord()          {}
func (*Unrecognised) isRecord()     {}

// ParseLine decodes one line, without its line terminator.
// Unknown tags yield *Unrecognised and no error; an empty line is an error.
func ParseLine(line string) (Record, error) {
	if len(line) == 0 {
		return nil, &ParseError{Kind: LineTooShort, Record: "line", Detail: "empty line"}
	}

	switch line[0] {
	case 'A':
		return wrap(ParseFlightRecorderID(line))
	case 'B':
		return wrap(ParseFix(line))
	case 'C':
		if IsTurnpointLine(line) {
			return wrap(ParseTaskTurnpoint(line))
		}
		return wrap(ParseTaskDeclaration(line))
	case 'D':
		return wrap(ParseDifferentialGPS(line))
	case 'E':
		return wrap(ParseEvent(line))
	case 'F':
		return wrap(ParseSatellites(line))
	case 'G':
		return wrap(ParseSecurity(line))
	case 'H':
		return wrap(ParseHeader(line))
	case 'I':
		return wrap(ParseFixExtensions(line))
	case 'J':
		return wrap(ParseDataExtensions(line))
	case 'K':
		return wrap(ParseExtensionData(line))
	case 'L':
		return wrap(ParseComment(line))
	default:
		return &Unrecognised{Tag: Flag(line[0])}, nil
	}
}

// wrap keeps a typed nil pointer out of the returned Record on failure
func wrap(rec Record, err error) (Record, error) {
	if err != nil {
		return nil, err
	}
	return rec, nil
}
