package sqlite

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yegors/flightrec/internal/flightlog"
	"github.com/yegors/flightrec/internal/igc"
	"github.com/yegors/flightrec/pkg/logger"
)

const storedFlight = "AXXXABC\n" +
	"HFDTE230718\n" +
	"I023638FXA3941ENL\n" +
	"J010812HDT\n" +
	"C230718092044000000000201Out and return\n" +
	"C5200000N00000000ETakeoff\n" +
	"C5200000N00000000EStart\n" +
	"C5300000N00000000ETurn\n" +
	"C5200000N00000000EFinish\n" +
	"C5200000N00000000E\n" +
	"B1101355206343N00006198WA0058700558301022\n" +
	"C2307180920440000000A0204\n"

func newTestStorage(t *testing.T) *FlightStorage {
	t.Helper()
	db, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	storage, err := NewFlightStorage(db, logger.NewNop())
	require.NoError(t, err)
	return storage
}

func readFlight(t *testing.T, text string) *flightlog.Flight {
	t.Helper()
	r := flightlog.NewReader(flightlog.DefaultOptions(), logger.NewNop())
	flight, err := r.ReadFlight(context.Background(), strings.NewReader(text))
	require.NoError(t, err)
	return flight
}

func TestFlightStorage_StoreAndGet(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	id, err := storage.StoreFlight(ctx, "2018-07-23-XXX-ABC-01.igc", readFlight(t, storedFlight))
	require.NoError(t, err)
	require.NotEmpty(t, id)

	record, err := storage.GetFlight(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, "2018-07-23-XXX-ABC-01.igc", record.FileName)
	assert.Equal(t, "XXX", record.Manufacturer)
	assert.Equal(t, "ABC", record.RecorderID)
	assert.Equal(t, "2018-07-23", record.FlightDate)
	require.NotNil(t, record.TaskID)
	assert.Equal(t, 2, *record.TaskID)
	require.NotNil(t, record.TurnpointCount)
	assert.Equal(t, 1, *record.TurnpointCount)
	assert.Equal(t, "Out and return", record.TaskName)
	assert.InDelta(t, 222390.0, record.TaskDistanceM, 2.0)
	assert.Equal(t, 1, record.FixCount)
	assert.Equal(t, 12, record.LineCount)
	assert.Equal(t, 1, record.ErrorCount)
	assert.False(t, record.CreatedAt.IsZero())

	require.Len(t, record.Turnpoints, 5)
	assert.Equal(t, "Takeoff", record.Turnpoints[0].Name)
	assert.Equal(t, "5300000N00000000E", record.Turnpoints[2].Position)
	assert.InDelta(t, 53.0, record.Turnpoints[2].Latitude, 1e-9)
	assert.Empty(t, record.Turnpoints[4].Name)

	require.Len(t, record.Extensions, 2)
	assert.Equal(t, "I", record.Extensions[0].Tag)
	assert.Equal(t, "I023638FXA3941ENL", record.Extensions[0].Line)
	assert.Equal(t, "J010812HDT", record.Extensions[1].Line)

	rec, err := igc.ParseLine(record.Extensions[0].Line)
	require.NoError(t, err)
	assert.Equal(t, igc.KindFixExtensions, rec.Kind())
}

func TestFlightStorage_FlightWithoutTask(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	id, err := storage.StoreFlight(ctx, "bare.igc", readFlight(t, "B1101355206343N00006198WA0058700558\n"))
	require.NoError(t, err)

	record, err := storage.GetFlight(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, record.TaskID)
	assert.Nil(t, record.TurnpointCount)
	assert.Empty(t, record.FlightDate)
	assert.Empty(t, record.Turnpoints)
	assert.Empty(t, record.Extensions)
}

func TestFlightStorage_RecentAndDelete(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	first, err := storage.StoreFlight(ctx, "first.igc", readFlight(t, storedFlight))
	require.NoError(t, err)
	second, err := storage.StoreFlight(ctx, "second.igc", readFlight(t, storedFlight))
	require.NoError(t, err)

	recent, err := storage.GetRecentFlights(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, second, recent[0].ID)
	assert.Equal(t, first, recent[1].ID)

	limited, err := storage.GetRecentFlights(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	require.NoError(t, storage.DeleteFlight(ctx, first))
	_, err = storage.GetFlight(ctx, first)
	assert.True(t, errors.Is(err, ErrNotFound))

	err = storage.DeleteFlight(ctx, first)
	assert.True(t, errors.Is(err, ErrNotFound))
}
