package igc

import (
	"fmt"
)

// Date is a calendar date as written in the log (DDMMYY).
// Values are not checked against the calendar; a task declaration may carry
// 000000 as its flight date.
type Date struct {
	Day   uint8  `json:"day"`
	Month uint8  `json:"month"`
	Year  uint16 `json:"year"`
}

// Time is a UTC time of day (HHMMSS)
type Time struct {
	Hours   uint8 `json:"hours"`
	Minutes uint8 `json:"minutes"`
	Seconds uint8 `json:"seconds"`
}

// Compass is a hemisphere letter
type Compass byte

const (
	North Compass = 'N'
	South Compass = 'S'
	East  Compass = 'E'
	West  Compass = 'W'
)

// MarshalText renders the hemisphere as its letter
func (c Compass) MarshalText() ([]byte, error) {
	return []byte{byte(c)}, nil
}

// RawCoord is one axis of a position in degrees, minutes and thousandths of a minute
type RawCoord struct {
	Degrees         uint8   `json:"degrees"`
	Minutes         uint8   `json:"minutes"`
	MinutesFraction uint16  `json:"minutes_fraction"`
	Hemisphere      Compass `json:"hemisphere"`
}

// RawPosition is a latitude/longitude pair exactly as recorded
type RawPosition struct {
	Lat RawCoord `json:"lat"`
	Lon RawCoord `json:"lon"`
}

const (
	dateWidth     = 6
	timeWidth     = 6
	latWidth      = 8
	lonWidth      = 9
	positionWidth = latWidth + lonWidth
)

// PrimitiveError reports a failed date, time or coordinate parse
type PrimitiveError struct {
	Primitive string
	Value     string
	Reason    string
}

func (e *PrimitiveError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Primitive, e.Value, e.Reason)
}

// digits parses s as an unsigned decimal made only of ASCII digits
func digits(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}

func twoDigits(s string, at int) (uint8, bool) {
	n, ok := digits(s[at : at+2])
	return uint8(n), ok
}

// ParseDate parses a DDMMYY date. Two-digit years map to 2000-2099.
func ParseDate(s string) (Date, error) {
	if len(s) != dateWidth {
		return Date{}, &PrimitiveError{Primitive: "date", Value: s, Reason: "want 6 digits"}
	}
	day, ok1 := twoDigits(s, 0)
	month, ok2 := twoDigits(s, 2)
	year, ok3 := twoDigits(s, 4)
	if !ok1 || !ok2 || !ok3 {
		return Date{}, &PrimitiveError{Primitive: "date", Value: s, Reason: "non-digit character"}
	}
	return Date{Day: day, Month: month, Year: 2000 + uint16(year)}, nil
}

// String renders the date as YYYY-MM-DD
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// ParseTime parses a HHMMSS time of day
func ParseTime(s string) (Time, error) {
	if len(s) != timeWidth {
		return Time{}, &PrimitiveError{Primitive: "time", Value: s, Reason: "want 6 digits"}
	}
	h, ok1 := twoDigits(s, 0)
	m, ok2 := twoDigits(s, 2)
	sec, ok3 := twoDigits(s, 4)
	if !ok1 || !ok2 || !ok3 {
		return Time{}, &PrimitiveError{Primitive: "time", Value: s, Reason: "non-digit character"}
	}
	if h > 23 || m > 59 || sec > 59 {
		return Time{}, &PrimitiveError{Primitive: "time", Value: s, Reason: "component out of range"}
	}
	return Time{Hours: h, Minutes: m, Seconds: sec}, nil
}

// String renders the time as HH:MM:SS
func (t Time) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hours, t.Minutes, t.Seconds)
}

// ParseLatitude parses DDMMmmmN or DDMMmmmS
func ParseLatitude(s string) (RawCoord, error) {
	return parseCoord("latitude", s, 2, 90, North, South)
}

// ParseLongitude parses DDDMMmmmE or DDDMMmmmW
func ParseLongitude(s string) (RawCoord, error) {
	return parseCoord("longitude", s, 3, 180, East, West)
}

func parseCoord(name, s string, degWidth, maxDeg int, pos, neg Compass) (RawCoord, error) {
	if len(s) != degWidth+6 {
		return RawCoord{}, &PrimitiveError{Primitive: name, Value: s, Reason: fmt.Sprintf("want %d bytes", degWidth+6)}
	}
	hemi := Compass(s[len(s)-1])
	if hemi != pos && hemi != neg {
		return RawCoord{}, &PrimitiveError{Primitive: name, Value: s, Reason: fmt.Sprintf("hemisphere must be %c or %c", pos, neg)}
	}
	deg, ok1 := digits(s[:degWidth])
	mins, ok2 := digits(s[degWidth : degWidth+2])
	frac, ok3 := digits(s[degWidth+2 : degWidth+5])
	if !ok1 || !ok2 || !ok3 {
		return RawCoord{}, &PrimitiveError{Primitive: name, Value: s, Reason: "non-digit character"}
	}
	if deg > maxDeg || mins > 59 || (deg == maxDeg && (mins > 0 || frac > 0)) {
		return RawCoord{}, &PrimitiveError{Primitive: name, Value: s, Reason: "component out of range"}
	}
	return RawCoord{
		Degrees:         uint8(deg),
		Minutes:         uint8(mins),
		MinutesFraction: uint16(frac),
		Hemisphere:      hemi,
	}, nil
}

// ParsePosition parses a 17 byte latitude+longitude pair
func ParsePosition(s string) (RawPosition, error) {
	if len(s) != positionWidth {
		return RawPosition{}, &PrimitiveError{Primitive: "position", Value: s, Reason: "want 17 bytes"}
	}
	lat, err := ParseLatitude(s[:latWidth])
	if err != nil {
		return RawPosition{}, err
	}
	lon, err := ParseLongitude(s[latWidth:])
	if err != nil {
		return RawPosition{}, err
	}
	return RawPosition{Lat: lat, Lon: lon}, nil
}

// Decimal converts the coordinate to signed decimal degrees
func (c RawCoord) Decimal() float64 {
	v := float64(c.Degrees) + (float64(c.Minutes)+float64(c.MinutesFraction)/1000)/60
	if c.Hemisphere == South || c.Hemisphere == West {
		return -v
	}
	return v
}

// Decimal returns latitude and longitude in signed decimal degrees
func (p RawPosition) Decimal() (lat, lon float64) {
	return p.Lat.Decimal(), p.Lon.Decimal()
}

// String renders the position in its recorded form
func (p RawPosition) String() string {
	return fmt.Sprintf("%02d%02d%03d%c%03d%02d%03d%c",
		p.Lat.Degrees, p.Lat.Minutes, p.Lat.MinutesFraction, p.Lat.Hemisphere,
		p.Lon.Degrees, p.Lon.Minutes, p.Lon.MinutesFraction, p.Lon.Hemisphere)
}
