package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/yegors/flightrec/internal/flightlog"
	"github.com/yegors/flightrec/internal/igc"
	"github.com/yegors/flightrec/pkg/logger"
)

// ErrNotFound is returned when no flight has the requested ID
var ErrNotFound = errors.New("flight not found")

// Open opens the SQLite database at path
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// one connection, so a :memory: database is shared by every query
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	return db, nil
}

// FlightStorage handles storage of decoded flights
type FlightStorage struct {
	db     *sql.DB
	logger *logger.Logger
}

// NewFlightStorage creates a new SQLite flight storage
func NewFlightStorage(db *sql.DB, logger *logger.Logger) (*FlightStorage, error) {
	storage := &FlightStorage{
		db:     db,
		logger: logger.Named("sqlite-flights"),
	}

	if err := storage.initDB(); err != nil {
		return nil, err
	}

	return storage, nil
}

// initDB initializes the database tables
func (s *FlightStorage) initDB() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS flights (
			id TEXT PRIMARY KEY,
			file_name TEXT NOT NULL,
			manufacturer TEXT,
			recorder_id TEXT,
			flight_date TEXT,
			task_id INTEGER,
			task_name TEXT,
			turnpoint_count INTEGER,
			task_distance_m REAL NOT NULL DEFAULT 0,
			fix_count INTEGER NOT NULL,
			line_count INTEGER NOT NULL,
			error_count INTEGER NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS task_turnpoints (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			flight_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			name TEXT,
			position TEXT NOT NULL,
			latitude REAL NOT NULL,
			longitude REAL NOT NULL,
			FOREIGN KEY (flight_id) REFERENCES flights(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS extension_definitions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			flight_id TEXT NOT NULL,
			tag TEXT NOT NULL,
			line TEXT NOT NULL,
			FOREIGN KEY (flight_id) REFERENCES flights(id) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_flights_flight_date ON flights(flight_date)`,
		`CREATE INDEX IF NOT EXISTS idx_flights_created_at ON flights(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_task_turnpoints_flight_id ON task_turnpoints(flight_id)`,
		`CREATE INDEX IF NOT EXISTS idx_extension_definitions_flight_id ON extension_definitions(flight_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to initialize flight storage: %w", err)
		}
	}
	return nil
}

// StoreFlight stores a decoded flight and returns its generated ID
func (s *FlightStorage) StoreFlight(ctx context.Context, fileName string, flight *flightlog.Flight) (string, error) {
	id := uuid.NewString()
	createdAt := time.Now().UTC().Truncate(time.Second)

	var manufacturer, recorderID, flightDate, taskName sql.NullString
	var taskID, turnpointCount sql.NullInt64
	if flight.RecorderID != nil {
		manufacturer = sql.NullString{String: flight.RecorderID.Manufacturer, Valid: true}
		recorderID = sql.NullString{String: flight.RecorderID.UniqueID, Valid: true}
	}
	if d, ok := flight.Date(); ok {
		flightDate = sql.NullString{String: d.String(), Valid: true}
	}
	if decl := flight.Task.Declaration; decl != nil {
		taskID = sql.NullInt64{Int64: int64(decl.TaskID), Valid: true}
		turnpointCount = sql.NullInt64{Int64: int64(decl.TurnpointCount), Valid: true}
		if decl.Name != nil {
			taskName = sql.NullString{String: *decl.Name, Valid: true}
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO flights
		(id, file_name, manufacturer, recorder_id, flight_date, task_id, task_name, turnpoint_count,
		 task_distance_m, fix_count, line_count, error_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		fileName,
		manufacturer,
		recorderID,
		flightDate,
		taskID,
		taskName,
		turnpointCount,
		flight.Task.Distance(),
		flight.FixCount,
		flight.Lines,
		len(flight.Errors),
		createdAt.Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert flight: %w", err)
	}

	for i, tp := range flight.Task.Turnpoints {
		var name sql.NullString
		if tp.Name != nil {
			name = sql.NullString{String: *tp.Name, Valid: true}
		}
		lat, lon := tp.Position.Decimal()
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO task_turnpoints (flight_id, seq, name, position, latitude, longitude)
			VALUES (?, ?, ?, ?, ?, ?)`,
			id, i, name, tp.Position.String(), lat, lon,
		); err != nil {
			return "", fmt.Errorf("failed to insert turnpoint %d: %w", i, err)
		}
	}

	extensions := make([]string, 0, 2)
	if flight.FixExtensions != nil {
		line, err := flight.FixExtensions.Format()
		if err != nil {
			return "", fmt.Errorf("failed to encode fix extensions: %w", err)
		}
		extensions = append(extensions, line)
	}
	if flight.DataExtensions != nil {
		line, err := flight.DataExtensions.Format()
		if err != nil {
			return "", fmt.Errorf("failed to encode data extensions: %w", err)
		}
		extensions = append(extensions, line)
	}
	for _, line := range extensions {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO extension_definitions (flight_id, tag, line) VALUES (?, ?, ?)`,
			id, line[:1], line,
		); err != nil {
			return "", fmt.Errorf("failed to insert extension definition: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit flight: %w", err)
	}

	s.logger.Debug("Stored flight",
		logger.String("id", id),
		logger.String("file_name", fileName),
		logger.Int("turnpoints", len(flight.Task.Turnpoints)),
		logger.Time("created_at", createdAt),
	)
	return id, nil
}

// GetFlight returns a flight with its turnpoints and extension definitions
func (s *FlightStorage) GetFlight(ctx context.Context, id string) (*FlightRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, file_name, manufacturer, recorder_id, flight_date, task_id, task_name, turnpoint_count,
		task_distance_m, fix_count, line_count, error_count, created_at
		FROM flights
		WHERE id = ?`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query flight: %w", err)
	}
	records, err := s.scanFlightRows(rows)
	rows.Close()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrNotFound
	}
	record := records[0]

	if record.Turnpoints, err = s.getTurnpoints(ctx, id); err != nil {
		return nil, err
	}
	if record.Extensions, err = s.getExtensions(ctx, id); err != nil {
		return nil, err
	}
	return record, nil
}

// GetRecentFlights returns the most recently stored flights without their children
func (s *FlightStorage) GetRecentFlights(ctx context.Context, limit int) ([]*FlightRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, file_name, manufacturer, recorder_id, flight_date, task_id, task_name, turnpoint_count,
		task_distance_m, fix_count, line_count, error_count, created_at
		FROM flights
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent flights: %w", err)
	}
	defer rows.Close()

	return s.scanFlightRows(rows)
}

// DeleteFlight removes a flight and everything stored with it
func (s *FlightStorage) DeleteFlight(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM flights WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete flight: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *FlightStorage) getTurnpoints(ctx context.Context, flightID string) ([]*TurnpointRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT seq, name, position, latitude, longitude
		FROM task_turnpoints
		WHERE flight_id = ?
		ORDER BY seq`,
		flightID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query turnpoints: %w", err)
	}
	defer rows.Close()

	var records []*TurnpointRecord
	for rows.Next() {
		var record TurnpointRecord
		var name sql.NullString
		if err := rows.Scan(&record.Seq, &name, &record.Position, &record.Latitude, &record.Longitude); err != nil {
			return nil, fmt.Errorf("failed to scan turnpoint: %w", err)
		}
		record.Name = name.String
		records = append(records, &record)
	}
	return records, rows.Err()
}

// getExtensions reads back stored I/J lines, checking each still decodes
func (s *FlightStorage) getExtensions(ctx context.Context, flightID string) ([]*ExtensionRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT tag, line FROM extension_definitions WHERE flight_id = ? ORDER BY id`,
		flightID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query extension definitions: %w", err)
	}
	defer rows.Close()

	var records []*ExtensionRecord
	for rows.Next() {
		var record ExtensionRecord
		if err := rows.Scan(&record.Tag, &record.Line); err != nil {
			return nil, fmt.Errorf("failed to scan extension definition: %w", err)
		}
		if _, err := igc.ParseLine(record.Line); err != nil {
			s.logger.Warn("Stored extension definition no longer decodes",
				logger.String("flight_id", flightID),
				logger.Error(err),
			)
		}
		records = append(records, &record)
	}
	return records, rows.Err()
}

// scanFlightRows scans database rows into FlightRecord structs
func (s *FlightStorage) scanFlightRows(rows *sql.Rows) ([]*FlightRecord, error) {
	var records []*FlightRecord
	for rows.Next() {
		var record FlightRecord
		var manufacturer, recorderID, flightDate, taskName sql.NullString
		var taskID, turnpointCount sql.NullInt64
		var createdAt string

		if err := rows.Scan(
			&record.ID,
			&record.FileName,
			&manufacturer,
			&recorderID,
			&flightDate,
			&taskID,
			&taskName,
			&turnpointCount,
			&record.TaskDistanceM,
			&record.FixCount,
			&record.LineCount,
			&record.ErrorCount,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan flight: %w", err)
		}

		var err error
		record.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}

		// Handle nullable fields
		record.Manufacturer = manufacturer.String
		record.RecorderID = recorderID.String
		record.FlightDate = flightDate.String
		record.TaskName = taskName.String
		if taskID.Valid {
			v := int(taskID.Int64)
			record.TaskID = &v
		}
		if turnpointCount.Valid {
			v := int(turnpointCount.Int64)
			record.TurnpointCount = &v
		}

		records = append(records, &record)
	}

	return records, rows.Err()
}
