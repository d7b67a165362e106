package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/brocaar/digico-report/internal/config"
	"github.com/brocaar/digico-report/internal/storage"
)

var (
	tablesTable   string
	tablesChannel int64
)

var tablesCmd = &cobra.Command{
	Use:   "tables [session file]",
	Short: "List the tables of a session file or print the rows of a table for a channel",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		setLogLevel()
		ctx := context.Background()

		s, err := loadSession(ctx, args[0])
		if err != nil {
			return err
		}
		defer s.Close()

		if tablesTable == "" {
			tables, err := s.Tables(ctx)
			if err != nil {
				return err
			}
			return withOutput(func(w io.Writer) error {
				for _, t := range tables {
					fmt.Fprintln(w, t)
				}
				return nil
			})
		}

		rows, err := storage.GetTableRows(ctx, s, tablesTable, tablesChannel, config.C.Aggregator.SnapshotID)
		if err != nil {
			return err
		}

		return withOutput(func(w io.Writer) error {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(rows)
		})
	},
}

func init() {
	tablesCmd.Flags().StringVarP(&tablesTable, "table", "t", "", "table name (Channel, EqualiserBand, DynamicProcessor or Passband)")
	tablesCmd.Flags().Int64Var(&tablesChannel, "channel", 1, "channel number")
	tablesCmd.Flags().StringVarP(&outputFile, "output", "o", "", "output file (default stdout)")
}
