package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/yegors/flightrec/internal/flightlog"
	"github.com/yegors/flightrec/internal/igc"
	"github.com/yegors/flightrec/pkg/logger"
)

// Output formats of the decode command
const (
	formatTable = "table"
	formatJSON  = "json"
	formatLines = "lines"
)

type decodeFlags struct {
	Format      string
	Charset     string
	Workers     int
	StopOnError bool
}

func newDecodeCmd() *cobra.Command {
	var f decodeFlags

	cmd := &cobra.Command{
		Use:   "decode FILE...",
		Short: "Decode IGC files and print a summary or every record",
		Long: `Decode one or more IGC files. Use "-" to read standard input.

Formats:
  table  human readable flight summary (default)
  json   flight summary as JSON
  lines  one JSON object per input line, with its record or decode error`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch f.Format {
			case formatTable, formatJSON, formatLines:
			default:
				return fmt.Errorf("unsupported format %q", f.Format)
			}

			readerOpts := cfg.Reader.Options()
			if cmd.Flags().Changed("charset") {
				readerOpts.Charset = f.Charset
			}
			if cmd.Flags().Changed("workers") {
				readerOpts.Workers = f.Workers
			}
			if cmd.Flags().Changed("stop-on-error") {
				readerOpts.StopOnError = f.StopOnError
			}
			reader := flightlog.NewReader(readerOpts, log)

			for _, path := range args {
				log.WithFile(path).Debug("Decoding flight log", logger.String("format", f.Format))
				if err := decodeFile(cmd.Context(), cmd.OutOrStdout(), reader, path, f.Format); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&f.Format, "format", "o", formatTable, "output format (table, json, lines)")
	cmd.Flags().StringVar(&f.Charset, "charset", "", "input charset label, e.g. latin1")
	cmd.Flags().IntVar(&f.Workers, "workers", 0, "concurrent line decoders")
	cmd.Flags().BoolVar(&f.StopOnError, "stop-on-error", false, "fail at the first malformed line")
	return cmd
}

// decodeFile decodes one file, or standard input for "-", and writes it to w
func decodeFile(ctx context.Context, w io.Writer, reader *flightlog.Reader, path, format string) error {
	src, name, size, err := openInput(path)
	if err != nil {
		return err
	}
	defer src.Close()

	if format == formatLines {
		lines, err := reader.Decode(ctx, src)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		return writeLines(w, lines)
	}

	flight, err := reader.ReadFlight(ctx, src)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if format == formatJSON {
		return writeSummaryJSON(w, newFileSummary(name, size, flight))
	}
	return writeSummaryTable(w, newFileSummary(name, size, flight))
}

func openInput(path string) (io.ReadCloser, string, int64, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), "stdin", -1, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, "", 0, fmt.Errorf("failed to open %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, "", 0, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	return f, filepath.Base(path), info.Size(), nil
}

type decodedLine struct {
	Line   int            `json:"line"`
	Kind   igc.RecordKind `json:"kind,omitempty"`
	Record igc.Record     `json:"record,omitempty"`
	Error  string         `json:"error,omitempty"`
}

func writeLines(w io.Writer, lines []flightlog.Line) error {
	enc := json.NewEncoder(w)
	for _, line := range lines {
		out := decodedLine{Line: line.Number}
		if line.Err != nil {
			out.Error = line.Err.Error()
		} else {
			out.Kind = line.Record.Kind()
			out.Record = line.Record
		}
		if err := enc.Encode(out); err != nil {
			return fmt.Errorf("failed to write line %d: %w", line.Number, err)
		}
	}
	return nil
}
