package cmd

import (
	"context"
	"io"
	"os"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/brocaar/digico-report/internal/aggregator"
	"github.com/brocaar/digico-report/internal/config"
	"github.com/brocaar/digico-report/internal/render"
	"github.com/brocaar/digico-report/internal/report"
	"github.com/brocaar/digico-report/internal/storage"
)

var (
	outputFile   string
	reportFormat string
	reportCurve  bool
)

var reportCmd = &cobra.Command{
	Use:   "report [session file]",
	Short: "Print the channel report of a session file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		setLogLevel()
		ctx := context.Background()

		s, err := loadSession(ctx, args[0])
		if err != nil {
			return err
		}
		defer s.Close()

		records, err := aggregator.Aggregate(ctx, s, aggregator.OptionsFromConfig(config.C))
		if err != nil {
			return errors.Wrap(err, "aggregate error")
		}

		return withOutput(func(w io.Writer) error {
			switch reportFormat {
			case "text":
				return report.Text(w, records)
			case "json":
				return report.JSON(w, records, reportCurve)
			case "html":
				graphs, err := report.Graphs(records, graphViewport())
				if err != nil {
					return err
				}
				return report.HTML(w, s.ID.String(), records, graphs)
			default:
				return errors.Errorf("unknown report format: %s", reportFormat)
			}
		})
	},
}

func init() {
	reportCmd.Flags().StringVarP(&reportFormat, "format", "f", "text", "report format (text, json or html)")
	reportCmd.Flags().BoolVar(&reportCurve, "curve", false, "include the frequency response in the json report")
	reportCmd.Flags().StringVarP(&outputFile, "output", "o", "", "output file (default stdout)")
}

func loadSession(ctx context.Context, path string) (*storage.Session, error) {
	s, err := storage.LoadFile(ctx, path, storage.LoadOptions{
		TempDir:            config.C.Session.TempDir,
		MaxOpenConnections: config.C.Session.MaxOpenConnections,
	})
	if err != nil {
		return nil, errors.Wrap(err, "load session error")
	}
	return s, nil
}

func graphViewport() render.Viewport {
	return render.Viewport{
		Width:  config.C.Graph.Width,
		Height: config.C.Graph.Height,
	}
}

// withOutput calls fn with the output file, or stdout when no output file
// is set.
func withOutput(fn func(w io.Writer) error) error {
	if outputFile == "" {
		return fn(os.Stdout)
	}

	f, err := os.Create(outputFile)
	if err != nil {
		return errors.Wrap(err, "create output file error")
	}

	if err := fn(f); err != nil {
		f.Close()
		return err
	}

	if err := f.Close(); err != nil {
		return errors.Wrap(err, "close output file error")
	}

	log.WithField("file", outputFile).Info("output written")
	return nil
}
