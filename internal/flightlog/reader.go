package flightlog

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"golang.org/x/net/html/charset"

	"github.com/yegors/flightrec/internal/igc"
	"github.com/yegors/flightrec/pkg/logger"
)

// Options controls how a flight log is read
type Options struct {
	Charset     string
	Workers     int
	StopOnError bool
	MaxLineSize int
}

// DefaultOptions returns options suitable for UTF-8 or ASCII files
func DefaultOptions() Options {
	return Options{
		Charset:     "utf-8",
		Workers:     4,
		MaxLineSize: 64 * 1024,
	}
}

// Line is the outcome of decoding one line
type Line struct {
	Number int        // 1-based
	Text   string     // without line terminator
	Record igc.Record // nil when Err is set
	Err    error
}

// LineError is a decode failure tied to its position in the file
type LineError struct {
	Number int
	Err    error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Number, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

// Reader decodes whole flight logs line by line
type Reader struct {
	opts   Options
	logger *logger.Logger
}

// NewReader creates a new flight log reader
func NewReader(opts Options, logger *logger.Logger) *Reader {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.MaxLineSize <= 0 {
		opts.MaxLineSize = DefaultOptions().MaxLineSize
	}
	return &Reader{
		opts:   opts,
		logger: logger.Named("flightlog"),
	}
}

// Decode reads every line of src and decodes it. Results are in file order.
// With StopOnError set the first failing line aborts the call and is returned
// as a *LineError; otherwise failures are reported per line.
func (r *Reader) Decode(ctx context.Context, src io.Reader) ([]Line, error) {
	texts, err := r.readLines(src)
	if err != nil {
		return nil, err
	}

	lines := make([]Line, len(texts))
	for i, text := range texts {
		lines[i] = Line{Number: i + 1, Text: text}
	}

	if err := r.decodeAll(ctx, lines); err != nil {
		return nil, err
	}

	for i := range lines {
		if lines[i].Err == nil {
			continue
		}
		r.logger.WithLine(lines[i].Number, lines[i].Text).Debug("Failed to decode line",
			logger.Error(lines[i].Err),
		)
		if r.opts.StopOnError {
			return nil, &LineError{Number: lines[i].Number, Err: lines[i].Err}
		}
	}
	return lines, nil
}

func (r *Reader) readLines(src io.Reader) ([]string, error) {
	in, err := r.decodeCharset(src)
	if err != nil {
		return nil, err
	}

	initial := 4096
	if r.opts.MaxLineSize < initial {
		initial = r.opts.MaxLineSize
	}
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, initial), r.opts.MaxLineSize)

	var texts []string
	for scanner.Scan() {
		texts = append(texts, strings.TrimRight(scanner.Text(), "\r\n"))
	}
	if err := scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return nil, fmt.Errorf("line %d longer than %d bytes: %w", len(texts)+1, r.opts.MaxLineSize, err)
		}
		return nil, fmt.Errorf("failed to read flight log: %w", err)
	}
	return texts, nil
}

func (r *Reader) decodeCharset(src io.Reader) (io.Reader, error) {
	label := strings.ToLower(strings.TrimSpace(r.opts.Charset))
	if label == "" || label == "utf-8" || label == "utf8" {
		return src, nil
	}
	in, err := charset.NewReaderLabel(label, src)
	if err != nil {
		return nil, fmt.Errorf("failed to open %q reader: %w", label, err)
	}
	return in, nil
}

// decodeAll fans lines out to the worker pool. Each worker writes only to
// the slots it receives, so lines needs no locking.
func (r *Reader) decodeAll(ctx context.Context, lines []Line) error {
	jobs := make(chan int)
	var wg sync.WaitGroup

	workers := r.opts.Workers
	if workers > len(lines) {
		workers = len(lines)
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				rec, err := igc.ParseLine(lines[i].Text)
				lines[i].Record = rec
				lines[i].Err = err
			}
		}()
	}

	var err error
feed:
	for i := range lines {
		if err = ctx.Err(); err != nil {
			break
		}
		select {
		case <-ctx.Done():
			err = ctx.Err()
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()
	return err
}

// ReadFlight decodes src and assembles the records into a Flight
func (r *Reader) ReadFlight(ctx context.Context, src io.Reader) (*Flight, error) {
	lines, err := r.Decode(ctx, src)
	if err != nil {
		return nil, err
	}
	flight := Assemble(lines)

	r.logger.Debug("Assembled flight",
		logger.Int("lines", flight.Lines),
		logger.Int("fixes", flight.FixCount),
		logger.Int("turnpoints", len(flight.Task.Turnpoints)),
		logger.Int("unrecognised", flight.Unrecognised),
		logger.Int("errors", len(flight.Errors)),
		logger.Bool("task_complete", flight.Task.Complete()),
		logger.Float64("task_distance_m", flight.Task.Distance()),
	)
	if flight.Task.Declaration != nil && !flight.Task.Complete() {
		r.logger.Warn("Task turnpoint count does not match declaration",
			logger.Int("declared", flight.Task.ExpectedTurnpoints()),
			logger.Int("found", len(flight.Task.Turnpoints)),
		)
	}
	return flight, nil
}
