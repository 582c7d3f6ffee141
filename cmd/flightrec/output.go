package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/yegors/flightrec/internal/flightlog"
	"github.com/yegors/flightrec/internal/storage/sqlite"
	"github.com/yegors/flightrec/internal/task"
)

// fileSummary is what the decode command reports for one file
type fileSummary struct {
	File       string            `json:"file"`
	Size       int64             `json:"size,omitempty"` // -1 for standard input
	Date       string            `json:"date,omitempty"`
	Flight     *flightlog.Flight `json:"flight"`
	Legs       []task.Leg        `json:"legs,omitempty"`
	DistanceKM float64           `json:"task_distance_km"`
	DistanceNM float64           `json:"task_distance_nm"`
	Errors     []string          `json:"errors,omitempty"`
}

func newFileSummary(name string, size int64, flight *flightlog.Flight) *fileSummary {
	s := &fileSummary{
		File:       name,
		Size:       size,
		Flight:     flight,
		Legs:       flight.Task.Legs(),
		DistanceKM: task.MetersToKM(flight.Task.Distance()),
		DistanceNM: task.MetersToNM(flight.Task.Distance()),
	}
	if d, ok := flight.Date(); ok {
		s.Date = d.String()
	}
	for _, e := range flight.Errors {
		s.Errors = append(s.Errors, e.Error())
	}
	return s
}

// formatKM renders meters as kilometres rounded to one decimal
func formatKM(meters float64) string {
	return humanize.CommafWithDigits(math.Round(task.MetersToKM(meters)*10)/10, 1)
}

// formatNM renders meters as nautical miles rounded to one decimal
func formatNM(meters float64) string {
	return humanize.CommafWithDigits(math.Round(task.MetersToNM(meters)*10)/10, 1)
}

func writeSummaryJSON(w io.Writer, s *fileSummary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return nil
}

func writeSummaryTable(w io.Writer, s *fileSummary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	f := s.Flight

	if s.Size >= 0 {
		fmt.Fprintf(tw, "File:\t%s (%s)\n", s.File, humanize.Bytes(uint64(s.Size)))
	} else {
		fmt.Fprintf(tw, "File:\t%s\n", s.File)
	}
	if f.RecorderID != nil {
		fmt.Fprintf(tw, "Recorder:\t%s %s\n", f.RecorderID.Manufacturer, f.RecorderID.UniqueID)
	}
	if s.Date != "" {
		fmt.Fprintf(tw, "Date:\t%s\n", s.Date)
	}
	if pilot, ok := f.Header("PLT"); ok {
		fmt.Fprintf(tw, "Pilot:\t%s\n", pilot.Value)
	}
	fmt.Fprintf(tw, "Lines:\t%s\n", humanize.Comma(int64(f.Lines)))

	if f.FixCount > 0 {
		fmt.Fprintf(tw, "Fixes:\t%s (%s to %s)\n",
			humanize.Comma(int64(f.FixCount)), f.FirstFix.Time, f.LastFix.Time)
	} else {
		fmt.Fprintf(tw, "Fixes:\t0\n")
	}
	if f.EventCount > 0 {
		fmt.Fprintf(tw, "Events:\t%s\n", humanize.Comma(int64(f.EventCount)))
	}

	if decl := f.Task.Declaration; decl != nil {
		name := "(unnamed)"
		if decl.Name != nil && *decl.Name != "" {
			name = *decl.Name
		}
		state := "complete"
		if !f.Task.Complete() {
			state = fmt.Sprintf("%d of %d points", len(f.Task.Turnpoints), f.Task.ExpectedTurnpoints())
		}
		fmt.Fprintf(tw, "Task:\t%s (id %d, %d turnpoints, %s)\n", name, decl.TaskID, decl.TurnpointCount, state)
		for i, leg := range s.Legs {
			fmt.Fprintf(tw, "  Leg %d:\t%s -> %s\t%s km\t%03.0f°\n",
				i+1, leg.From, leg.To, formatKM(leg.DistanceM), leg.Bearing)
		}
		fmt.Fprintf(tw, "Distance:\t%s km (%s NM)\n", formatKM(s.Flight.Task.Distance()), formatNM(s.Flight.Task.Distance()))
	}

	if f.Unrecognised > 0 {
		fmt.Fprintf(tw, "Unrecognised:\t%s\n", humanize.Comma(int64(f.Unrecognised)))
	}
	fmt.Fprintf(tw, "Errors:\t%d\n", len(s.Errors))
	for _, e := range s.Errors {
		fmt.Fprintf(tw, "  %s\n", e)
	}
	fmt.Fprintln(tw)

	return tw.Flush()
}

func writeFlightsTable(w io.Writer, flights []*sqlite.FlightRecord, now time.Time) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tFILE\tDATE\tTASK\tFIXES\tERRORS\tSTORED")
	for _, f := range flights {
		taskName := "-"
		if f.TaskID != nil {
			taskName = fmt.Sprintf("%s (%s km)", f.TaskName, formatKM(f.TaskDistanceM))
		}
		date := f.FlightDate
		if date == "" {
			date = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
			f.ID, f.FileName, date, taskName, humanize.Comma(int64(f.FixCount)), f.ErrorCount,
			humanize.RelTime(f.CreatedAt, now, "ago", "from now"))
	}
	return tw.Flush()
}
