package sqlite

import "time"

// FlightRecord represents a stored flight log summary
type FlightRecord struct {
	ID             string             `json:"id"`
	FileName       string             `json:"file_name"`
	Manufacturer   string             `json:"manufacturer,omitempty"`
	RecorderID     string             `json:"recorder_id,omitempty"`
	FlightDate     string             `json:"flight_date,omitempty"` // YYYY-MM-DD from HFDTE
	TaskID         *int               `json:"task_id,omitempty"`
	TaskName       string             `json:"task_name,omitempty"`
	TurnpointCount *int               `json:"turnpoint_count,omitempty"` // as declared
	TaskDistanceM  float64            `json:"task_distance_m"`
	FixCount       int                `json:"fix_count"`
	LineCount      int                `json:"line_count"`
	ErrorCount     int                `json:"error_count"`
	CreatedAt      time.Time          `json:"created_at"`
	Turnpoints     []*TurnpointRecord `json:"turnpoints,omitempty"`
	Extensions     []*ExtensionRecord `json:"extensions,omitempty"`
}

// TurnpointRecord represents one stored task turnpoint
type TurnpointRecord struct {
	Seq       int     `json:"seq"`
	Name      string  `json:"name,omitempty"`
	Position  string  `json:"position"` // as recorded, e.g. 5156040N00038120W
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// ExtensionRecord represents a stored I or J line
type ExtensionRecord struct {
	Tag  string `json:"tag"`
	Line string `json:"line"`
}
