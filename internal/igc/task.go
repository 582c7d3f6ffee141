package igc

const (
	taskDeclarationMinLen = 25
	taskTurnpointMinLen   = 18

	// hemisphereColumn is where a turnpoint line carries the latitude
	// hemisphere and a declaration line carries a digit of its time.
	hemisphereColumn = 8
)

// TaskDeclaration is the C record that opens a task: when it was declared,
// which flight it is for and how many turnpoints follow.
type TaskDeclaration struct {
	Date           Date    `json:"date"`
	Time           Time    `json:"time"`
	FlightDate     Date    `json:"flight_date"`
	TaskID         uint16  `json:"task_id"`
	TurnpointCount uint8   `json:"turnpoint_count"`
	Name           *string `json:"name,omitempty"`
}

// TaskTurnpoint is a C record naming one point of the declared task
type TaskTurnpoint struct {
	Position RawPosition `json:"position"`
	Name     *string     `json:"name,omitempty"`
}

// IsTurnpointLine reports whether a C line has the turnpoint shape.
// Both C shapes share the tag; only a turnpoint has a hemisphere letter at
// index 8, where a declaration has a digit of its declaration time.
func IsTurnpointLine(line string) bool {
	if len(line) <= hemisphereColumn {
		return false
	}
	c := line[hemisphereColumn]
	return c == byte(North) || c == byte(South)
}

// ParseTaskDeclaration decodes a C declaration line
func ParseTaskDeclaration(line string) (*TaskDeclaration, error) {
	r, err := newFieldReader("task declaration", line, 'C', taskDeclarationMinLen)
	if err != nil {
		return nil, err
	}
	rec := &TaskDeclaration{
		Date:           r.date("declaration date", 1, 7),
		Time:           r.clock("declaration time", 7, 13),
		FlightDate:     r.date("flight date", 13, 19),
		TaskID:         uint16(r.number("task id", 19, 23)),
		TurnpointCount: uint8(r.number("turnpoint count", 23, 25)),
		Name:           r.trailer(25),
	}
	if err := r.failed(); err != nil {
		return nil, err
	}
	return rec, nil
}

// ParseTaskTurnpoint decodes a C turnpoint line
func ParseTaskTurnpoint(line string) (*TaskTurnpoint, error) {
	r, err := newFieldReader("task turnpoint", line, 'C', taskTurnpointMinLen)
	if err != nil {
		return nil, err
	}
	rec := &TaskTurnpoint{
		Position: r.position("position", 1, 18),
		Name:     r.trailer(18),
	}
	if err := r.failed(); err != nil {
		return nil, err
	}
	return rec, nil
}
