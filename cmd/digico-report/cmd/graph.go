package cmd

import (
	"context"
	"io"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/brocaar/digico-report/internal/aggregator"
	"github.com/brocaar/digico-report/internal/config"
	"github.com/brocaar/digico-report/internal/render"
)

var (
	graphChannel int64
	graphFormat  string
)

var graphCmd = &cobra.Command{
	Use:   "graph [session file]",
	Short: "Render the EQ graph of a channel",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		setLogLevel()
		ctx := context.Background()

		if graphFormat == "" {
			graphFormat = config.C.Graph.Format
		}
		format, err := render.ParseFormat(graphFormat)
		if err != nil {
			return err
		}

		s, err := loadSession(ctx, args[0])
		if err != nil {
			return err
		}
		defer s.Close()

		records, err := aggregator.Aggregate(ctx, s, aggregator.OptionsFromConfig(config.C))
		if err != nil {
			return errors.Wrap(err, "aggregate error")
		}

		var rec *aggregator.ChannelRecord
		for i := range records {
			if n := records[i].Channel.ChannelNumber; n.Valid && n.Int64 == graphChannel {
				rec = &records[i]
				break
			}
		}
		if rec == nil {
			return errors.Errorf("channel %d not found", graphChannel)
		}

		scene, err := render.NewScene(rec.Curve(), graphViewport())
		if err != nil {
			return errors.Wrapf(err, "channel %d", graphChannel)
		}

		return withOutput(func(w io.Writer) error {
			return render.Draw(w, scene, format)
		})
	},
}

func init() {
	graphCmd.Flags().Int64Var(&graphChannel, "channel", 1, "channel number")
	graphCmd.Flags().StringVarP(&graphFormat, "format", "f", "", "graph format (svg or png, default from config)")
	graphCmd.Flags().StringVarP(&outputFile, "output", "o", "", "output file (default stdout)")
}
