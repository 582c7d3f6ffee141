package api

import (
	"errors"

	"github.com/yegors/flightrec/internal/flightlog"
	"github.com/yegors/flightrec/internal/igc"
	"github.com/yegors/flightrec/internal/task"
)

// DecodeLineRequest is the body of a single line decode
type DecodeLineRequest struct {
	Line string `json:"line"`
}

// DecodedLine is a successfully decoded line
type DecodedLine struct {
	Kind   igc.RecordKind `json:"kind"`
	Record igc.Record     `json:"record"`
}

// ParseErrorResponse describes why a line failed to decode
type ParseErrorResponse struct {
	Line    int    `json:"line,omitempty"` // 1-based, zero for a single line decode
	Class   string `json:"class"`
	Record  string `json:"record,omitempty"`
	Field   string `json:"field,omitempty"`
	Value   string `json:"value,omitempty"`
	Detail  string `json:"detail,omitempty"`
	Message string `json:"message"`
}

func newParseErrorResponse(number int, err error) ParseErrorResponse {
	resp := ParseErrorResponse{
		Line:    number,
		Class:   "unknown",
		Message: err.Error(),
	}
	var pe *igc.ParseError
	if errors.As(err, &pe) {
		resp.Class = pe.Kind.String()
		resp.Record = pe.Record
		resp.Field = pe.Field
		resp.Value = pe.Value
		resp.Detail = pe.Detail
	}
	return resp
}

// FlightSummary is the decoded view of an uploaded flight log
type FlightSummary struct {
	ID string `json:"id,omitempty"`
	*flightlog.Flight
	Date         string               `json:"date,omitempty"`
	TaskComplete bool                 `json:"task_complete"`
	Legs         []task.Leg           `json:"legs,omitempty"`
	DistanceM    float64              `json:"task_distance_m"`
	DistanceKM   float64              `json:"task_distance_km"`
	DistanceNM   float64              `json:"task_distance_nm"`
	Errors       []ParseErrorResponse `json:"errors,omitempty"`
}

func newFlightSummary(id string, flight *flightlog.Flight) *FlightSummary {
	summary := &FlightSummary{
		ID:           id,
		Flight:       flight,
		TaskComplete: flight.Task.Complete(),
		Legs:         flight.Task.Legs(),
		DistanceM:    flight.Task.Distance(),
	}
	summary.DistanceKM = task.MetersToKM(summary.DistanceM)
	summary.DistanceNM = task.MetersToNM(summary.DistanceM)
	if d, ok := flight.Date(); ok {
		summary.Date = d.String()
	}
	for _, lineErr := range flight.Errors {
		summary.Errors = append(summary.Errors, newParseErrorResponse(lineErr.Number, lineErr.Err))
	}
	return summary
}
