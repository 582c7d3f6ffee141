package igc

import (
	"strings"
)

const (
	fixMinLen          = 35
	dataExtensionStart = 7
)

// Flag is a single-letter field such as a fix validity or header source
type Flag byte

// MarshalText renders the flag as its letter
func (f Flag) MarshalText() ([]byte, error) {
	return []byte{byte(f)}, nil
}

// FlightRecorderID is the A record naming the logger that wrote the file
type FlightRecorderID struct {
	Manufacturer string  `json:"manufacturer"`
	UniqueID     string  `json:"unique_id"`
	Extension    *string `json:"extension,omitempty"`
}

// ParseFlightRecorderID decodes an A line
func ParseFlightRecorderID(line string) (*FlightRecorderID, error) {
	r, err := newFieldReader("flight recorder id", line, 'A', 7)
	if err != nil {
		return nil, err
	}
	return &FlightRecorderID{
		Manufacturer: line[1:4],
		UniqueID:     line[4:7],
		Extension:    r.trailer(7),
	}, nil
}

// Fix is a B record: one position sample
type Fix struct {
	Time             Time        `json:"time"`
	Position         RawPosition `json:"position"`
	Validity         Flag        `json:"validity"`
	PressureAltitude int         `json:"pressure_altitude"`
	GNSSAltitude     int         `json:"gnss_altitude"`
	Extra            string      `json:"extra,omitempty"`
}

// ParseFix decodes a B line
func ParseFix(line string) (*Fix, error) {
	r, err := newFieldReader("fix", line, 'B', fixMinLen)
	if err != nil {
		return nil, err
	}
	rec := &Fix{
		Time:             r.clock("time", 1, 7),
		Position:         r.position("position", 7, 24),
		Validity:         Flag(r.oneOf("validity", 24, "AV")),
		PressureAltitude: r.signed("pressure altitude", 25, 30),
		GNSSAltitude:     r.signed("gnss altitude", 30, 35),
		Extra:            line[fixMinLen:],
	}
	if err := r.failed(); err != nil {
		return nil, err
	}
	return rec, nil
}

// Valid reports whether the fix is a 3D fix
func (f *Fix) Valid() bool {
	return f.Validity == 'A'
}

// ExtensionValue returns the value an I record extension declares for this fix
func (f *Fix) ExtensionValue(e Extension) (string, bool) {
	return trailerValue(f.Extra, fixMinLen, e)
}

// trailerValue applies 1-based line columns to a trailer that starts at
// byte offset of its line.
func trailerValue(trailer string, offset int, e Extension) (string, bool) {
	if e.Start <= offset {
		return "", false
	}
	return Extension{Mnemonic: e.Mnemonic, Start: e.Start - offset, End: e.End - offset}.Value(trailer)
}

// DifferentialGPS is the D record
type DifferentialGPS struct {
	Qualifier Flag   `json:"qualifier"`
	StationID string `json:"station_id"`
}

// ParseDifferentialGPS decodes a D line
func ParseDifferentialGPS(line string) (*DifferentialGPS, error) {
	r, err := newFieldReader("differential gps", line, 'D', 6)
	if err != nil {
		return nil, err
	}
	rec := &DifferentialGPS{
		Qualifier: Flag(r.oneOf("qualifier", 1, "12")),
		StationID: line[2:6],
	}
	if err := r.failed(); err != nil {
		return nil, err
	}
	return rec, nil
}

// Event is an E record
type Event struct {
	Time     Time    `json:"time"`
	Mnemonic string  `json:"mnemonic"`
	Text     *string `json:"text,omitempty"`
}

// ParseEvent decodes an E line
func ParseEvent(line string) (*Event, error) {
	r, err := newFieldReader("event", line, 'E', 10)
	if err != nil {
		return nil, err
	}
	rec := &Event{
		Time:     r.clock("time", 1, 7),
		Mnemonic: line[7:10],
		Text:     r.trailer(10),
	}
	if err := r.failed(); err != nil {
		return nil, err
	}
	return rec, nil
}

// Satellites is an F record listing the satellites in use
type Satellites struct {
	Time Time     `json:"time"`
	IDs  []string `json:"ids"`
}

// ParseSatellites decodes an F line
func ParseSatellites(line string) (*Satellites, error) {
	r, err := newFieldReader("satellites", line, 'F', 7)
	if err != nil {
		return nil, err
	}
	rec := &Satellites{Time: r.clock("time", 1, 7)}
	if err := r.failed(); err != nil {
		return nil, err
	}
	ids := line[7:]
	if len(ids)%2 != 0 {
		return nil, &ParseError{
			Kind:   MalformedField,
			Record: "satellites",
			Field:  "satellite ids",
			Value:  ids,
			Line:   line,
		}
	}
	rec.IDs = make([]string, 0, len(ids)/2)
	for i := 0; i < len(ids); i += 2 {
		rec.IDs = append(rec.IDs, ids[i:i+2])
	}
	return rec, nil
}

// Security is a G record, the logger's signature over the file
type Security struct {
	Data string `json:"data"`
}

// ParseSecurity decodes a G line
func ParseSecurity(line string) (*Security, error) {
	if _, err := newFieldReader("security", line, 'G', 1); err != nil {
		return nil, err
	}
	return &Security{Data: line[1:]}, nil
}

// Header is an H record. LongName is set when the data carries a
// "LONGNAME:value" pair, otherwise the whole data is the value.
type Header struct {
	Source   Flag   `json:"source"`
	Mnemonic string `json:"mnemonic"`
	LongName string `json:"long_name,omitempty"`
	Value    string `json:"value"`
}

// ParseHeader decodes an H line
func ParseHeader(line string) (*Header, error) {
	r, err := newFieldReader("header", line, 'H', 5)
	if err != nil {
		return nil, err
	}
	rec := &Header{
		Source:   Flag(r.oneOf("source", 1, "FOP")),
		Mnemonic: line[2:5],
		Value:    line[5:],
	}
	if err := r.failed(); err != nil {
		return nil, err
	}
	if name, value, ok := strings.Cut(rec.Value, ":"); ok {
		rec.LongName = name
		rec.Value = value
	}
	return rec, nil
}

// ExtensionData is a K record, laid out by the preceding J record
type ExtensionData struct {
	Time Time   `json:"time"`
	Data string `json:"data"`
}

// ParseExtensionData decodes a K line
func ParseExtensionData(line string) (*ExtensionData, error) {
	r, err := newFieldReader("extension data", line, 'K', dataExtensionStart)
	if err != nil {
		return nil, err
	}
	rec := &ExtensionData{
		Time: r.clock("time", 1, 7),
		Data: line[dataExtensionStart:],
	}
	if err := r.failed(); err != nil {
		return nil, err
	}
	return rec, nil
}

// ExtensionValue returns the value a J record extension declares for this record
func (k *ExtensionData) ExtensionValue(e Extension) (string, bool) {
	return trailerValue(k.Data, dataExtensionStart, e)
}

// Comment is an L record
type Comment struct {
	Source Flag   `json:"source"`
	Text   string `json:"text"`
}

// ParseComment decodes an L line
func ParseComment(line string) (*Comment, error) {
	if _, err := newFieldReader("comment", line, 'L', 2); err != nil {
		return nil, err
	}
	return &Comment{Source: Flag(line[1]), Text: line[2:]}, nil
}
