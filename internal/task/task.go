package task

import (
	"fmt"

	"github.com/yegors/flightrec/internal/igc"
)

// Task is a declared task: the C declaration and the turnpoint lines that follow it.
// The turnpoint list includes takeoff, start, finish and landing points, so a
// complete task has TurnpointCount+4 entries.
type Task struct {
	Declaration *igc.TaskDeclaration `json:"declaration"`
	Turnpoints  []igc.TaskTurnpoint  `json:"turnpoints"`
}

// Leg is the straight line between two consecutive turnpoints
type Leg struct {
	From      string  `json:"from"`
	To        string  `json:"to"`
	DistanceM float64 `json:"distance_m"`
	Bearing   float64 `json:"bearing"`
}

// ExpectedTurnpoints returns how many C turnpoint lines the declaration announces
func (t *Task) ExpectedTurnpoints() int {
	if t.Declaration == nil {
		return 0
	}
	return int(t.Declaration.TurnpointCount) + 4
}

// Complete reports whether the turnpoint lines match the declared count
func (t *Task) Complete() bool {
	return t.Declaration != nil && len(t.Turnpoints) == t.ExpectedTurnpoints()
}

// Legs returns the legs between consecutive turnpoints in declaration order
func (t *Task) Legs() []Leg {
	if len(t.Turnpoints) < 2 {
		return nil
	}
	legs := make([]Leg, 0, len(t.Turnpoints)-1)
	for i := 1; i < len(t.Turnpoints); i++ {
		from, to := t.Turnpoints[i-1], t.Turnpoints[i]
		lat1, lon1 := from.Position.Decimal()
		lat2, lon2 := to.Position.Decimal()
		legs = append(legs, Leg{
			From:      pointName(from, i-1),
			To:        pointName(to, i),
			DistanceM: Distance(from.Position, to.Position),
			Bearing:   Bearing(lat1, lon1, lat2, lon2),
		})
	}
	return legs
}

// Distance returns the sum of all leg distances in meters
func (t *Task) Distance() float64 {
	total := 0.0
	for _, leg := range t.Legs() {
		total += leg.DistanceM
	}
	return total
}

func pointName(tp igc.TaskTurnpoint, index int) string {
	if tp.Name != nil && *tp.Name != "" {
		return *tp.Name
	}
	return fmt.Sprintf("TP%d", index)
}
