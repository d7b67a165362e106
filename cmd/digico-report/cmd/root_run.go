package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/brocaar/digico-report/internal/api"
	"github.com/brocaar/digico-report/internal/config"
	"github.com/brocaar/digico-report/internal/monitoring"
)

func run(cmd *cobra.Command, args []string) error {
	var server *api.Server

	tasks := []func() error{
		setLogLevel,
		setLogFormatter,
		setSyslog,
		printStartMessage,
		setupAPI(&server),
		setupMonitoring(&server),
		loadInitialSession(&server, args),
	}

	for _, t := range tasks {
		if err := t(); err != nil {
			log.Fatal(err)
		}
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	log.WithField("signal", <-sigChan).Info("signal received")

	log.Warning("stopping digico-report")
	if err := server.Close(); err != nil {
		return errors.Wrap(err, "close session error")
	}

	return nil
}

func setLogLevel() error {
	log.SetLevel(log.Level(uint8(config.C.General.LogLevel)))
	return nil
}

func setLogFormatter() error {
	if config.C.General.LogJSON {
		log.SetFormatter(&log.JSONFormatter{})
	}
	return nil
}

func printStartMessage() error {
	log.WithFields(log.Fields{
		"version":     version,
		"snapshot_id": config.C.Aggregator.SnapshotID,
	}).Info("starting digico-report")
	return nil
}

func setupAPI(server **api.Server) func() error {
	return func() error {
		s, err := api.Setup(config.C)
		if err != nil {
			return errors.Wrap(err, "setup api error")
		}
		*server = s
		return nil
	}
}

func setupMonitoring(server **api.Server) func() error {
	return func() error {
		if err := monitoring.Setup(config.C, *server); err != nil {
			return errors.Wrap(err, "setup monitoring error")
		}
		return nil
	}
}

// loadInitialSession loads the session file given as argument, if any.
func loadInitialSession(server **api.Server, args []string) func() error {
	return func() error {
		if len(args) == 0 {
			return nil
		}

		b, err := os.ReadFile(args[0])
		if err != nil {
			return errors.Wrap(err, "read session file error")
		}

		if _, err := (*server).Load(context.Background(), b); err != nil {
			return errors.Wrap(err, "load session error")
		}
		return nil
	}
}
