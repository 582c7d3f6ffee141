package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/yegors/flightrec/internal/storage/sqlite"
)

func newListCmd() *cobra.Command {
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List flights stored in the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 1 {
				return fmt.Errorf("limit must be positive, got %d", limit)
			}

			db, err := sqlite.Open(cfg.Storage.Path)
			if err != nil {
				return err
			}
			defer db.Close()

			store, err := sqlite.NewFlightStorage(db, log)
			if err != nil {
				return err
			}
			flights, err := store.GetRecentFlights(cmd.Context(), limit)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(flights)
			}
			return writeFlightsTable(cmd.OutOrStdout(), flights, time.Now())
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of flights")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}
