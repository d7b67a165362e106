package cmd

import (
	"os"
	"text/template"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/brocaar/digico-report/internal/config"
)

const configTemplate = `[general]
# Log level
#
# debug=5, info=4, warning=3, error=2, fatal=1, panic=0
log_level={{ .General.LogLevel }}

# Log in JSON format.
log_json={{ .General.LogJSON }}

# Log to syslog.
#
# When set to true, log messages are being written to syslog.
log_to_syslog={{ .General.LogToSyslog }}


# Session settings.
[session]
# Directory in which uploaded sessions are staged.
#
# When empty, the OS temp directory is used. The staged file is removed
# when the session is replaced or the server stops.
temp_dir="{{ .Session.TempDir }}"

# Max open connections to the session database.
max_open_connections={{ .Session.MaxOpenConnections }}

# Max size (bytes) of an uploaded session.
max_upload_size={{ .Session.MaxUploadSize }}


# Channel selection.
[aggregator]
# Channel id range (inclusive).
min_channel_id={{ .Aggregator.MinChannelID }}
max_channel_id={{ .Aggregator.MaxChannelID }}

# Snapshot id.
snapshot_id={{ .Aggregator.SnapshotID }}

# Number of channels aggregated in parallel.
workers={{ .Aggregator.Workers }}


# EQ graph settings.
[graph]
# Size in pixels.
width={{ .Graph.Width }}
height={{ .Graph.Height }}

# Default format (svg or png).
format="{{ .Graph.Format }}"


# HTTP API.
[api]
# ip:port to bind the api server.
bind="{{ .API.Bind }}"

# Read and write timeouts of the api server.
read_timeout="{{ .API.ReadTimeout }}"
write_timeout="{{ .API.WriteTimeout }}"


# Monitoring settings.
[monitoring]
# IP:port to bind the monitoring endpoint to.
#
# When left blank, the monitoring endpoint will be disabled.
bind="{{ .Monitoring.Bind }}"

# Prometheus metrics endpoint.
#
# When set true, Prometheus metrics will be served at '/metrics'.
prometheus_endpoint={{ .Monitoring.PrometheusEndpoint }}

# Healthcheck endpoint.
#
# When set to true, the healthcheck endpoint will be served at '/health'.
healthcheck_endpoint={{ .Monitoring.HealthcheckEndpoint }}
`

var configCmd = &cobra.Command{
	Use:   "configfile",
	Short: "Print the digico-report configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		t := template.Must(template.New("config").Parse(configTemplate))
		err := t.Execute(os.Stdout, &config.C)
		if err != nil {
			return errors.Wrap(err, "execute config template error")
		}
		return nil
	},
}
