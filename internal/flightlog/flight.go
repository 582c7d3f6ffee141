package flightlog

import (
	"github.com/yegors/flightrec/internal/igc"
	"github.com/yegors/flightrec/internal/task"
)

// Flight summarises one decoded flight log
type Flight struct {
	RecorderID     *igc.FlightRecorderID `json:"recorder_id,omitempty"`
	Headers        []igc.Header          `json:"headers,omitempty"`
	Task           task.Task             `json:"task"`
	FixExtensions  *igc.FixExtensions    `json:"fix_extensions,omitempty"`
	DataExtensions *igc.DataExtensions   `json:"data_extensions,omitempty"`
	FirstFix       *igc.Fix              `json:"first_fix,omitempty"`
	LastFix        *igc.Fix              `json:"last_fix,omitempty"`
	FixCount       int                   `json:"fix_count"`
	EventCount     int                   `json:"event_count"`
	Lines          int                   `json:"lines"`
	Unrecognised   int                   `json:"unrecognised"`
	Errors         []*LineError          `json:"-"`
}

// Assemble folds decoded lines into a Flight. Turnpoints are only collected
// once a declaration has been seen, and only the first declaration counts.
func Assemble(lines []Line) *Flight {
	f := &Flight{Lines: len(lines)}
	for _, line := range lines {
		if line.Err != nil {
			f.Errors = append(f.Errors, &LineError{Number: line.Number, Err: line.Err})
			continue
		}

		switch rec := line.Record.(type) {
		case *igc.FlightRecorderID:
			if f.RecorderID == nil {
				f.RecorderID = rec
			}
		case *igc.Header:
			f.Headers = append(f.Headers, *rec)
		case *igc.TaskDeclaration:
			if f.Task.Declaration == nil {
				f.Task.Declaration = rec
			}
		case *igc.TaskTurnpoint:
			if f.Task.Declaration != nil {
				f.Task.Turnpoints = append(f.Task.Turnpoints, *rec)
			}
		case *igc.FixExtensions:
			f.FixExtensions = rec
		case *igc.DataExtensions:
			f.DataExtensions = rec
		case *igc.Fix:
			if f.FirstFix == nil {
				f.FirstFix = rec
			}
			f.LastFix = rec
			f.FixCount++
		case *igc.Event:
			f.EventCount++
		case *igc.Unrecognised:
			f.Unrecognised++
		}
	}
	return f
}

// Header returns the first header with the given three letter mnemonic
func (f *Flight) Header(mnemonic string) (igc.Header, bool) {
	for _, h := range f.Headers {
		if h.Mnemonic == mnemonic {
			return h, true
		}
	}
	return igc.Header{}, false
}

// Date returns the flight date from the HFDTE header. Both the bare
// "HFDTE230718" and the "HFDTEDATE:230718,01" forms are accepted.
func (f *Flight) Date() (igc.Date, bool) {
	h, ok := f.Header("DTE")
	if !ok || len(h.Value) < 6 {
		return igc.Date{}, false
	}
	d, err := igc.ParseDate(h.Value[:6])
	if err != nil {
		return igc.Date{}, false
	}
	return d, true
}

// FixExtensionValue returns the value an I record extension gives a fix
func (f *Flight) FixExtensionValue(fix *igc.Fix, mnemonic string) (string, bool) {
	if f.FixExtensions == nil || fix == nil {
		return "", false
	}
	ext, ok := f.FixExtensions.Lookup(mnemonic)
	if !ok {
		return "", false
	}
	return fix.ExtensionValue(ext)
}
