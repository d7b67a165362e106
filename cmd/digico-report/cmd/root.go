package cmd

import (
	"bytes"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/brocaar/digico-report/internal/aggregator"
	"github.com/brocaar/digico-report/internal/config"
	"github.com/brocaar/digico-report/internal/render"
)

var (
	cfgFile string
	version string
)

var rootCmd = &cobra.Command{
	Use:   "digico-report",
	Short: "DiGiCo session report",
	Long: `digico-report reads DiGiCo console session files and reports the per-channel
EQ, dynamics and passband settings including the EQ frequency-response graph.

Without sub-command, the HTTP server is started.`,
	RunE: run,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "path to configuration file (optional)")
	rootCmd.PersistentFlags().Int("log-level", 4, "debug=5, info=4, error=2, fatal=1, panic=0")
	rootCmd.PersistentFlags().Int64("snapshot", aggregator.DefaultSnapshotID, "snapshot id")

	viper.BindPFlag("general.log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("aggregator.snapshot_id", rootCmd.PersistentFlags().Lookup("snapshot"))

	// default values
	viper.SetDefault("session.max_open_connections", 1)
	viper.SetDefault("session.max_upload_size", 64<<20)

	viper.SetDefault("aggregator.min_channel_id", aggregator.DefaultMinChannelID)
	viper.SetDefault("aggregator.max_channel_id", aggregator.DefaultMaxChannelID)
	viper.SetDefault("aggregator.workers", aggregator.DefaultWorkers)

	viper.SetDefault("graph.width", render.DefaultWidth)
	viper.SetDefault("graph.height", render.DefaultHeight)
	viper.SetDefault("graph.format", string(render.FormatSVG))

	viper.SetDefault("api.bind", "0.0.0.0:8080")
	viper.SetDefault("api.read_timeout", 30*time.Second)
	viper.SetDefault("api.write_timeout", 30*time.Second)

	viper.SetDefault("monitoring.prometheus_endpoint", true)
	viper.SetDefault("monitoring.healthcheck_endpoint", true)

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(graphCmd)
	rootCmd.AddCommand(tablesCmd)
}

// Execute executes the root command.
func Execute(v string) {
	version = v

	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

func initConfig() {
	config.Version = version

	if cfgFile != "" {
		b, err := os.ReadFile(cfgFile)
		if err != nil {
			log.WithError(err).WithField("config", cfgFile).Fatal("error loading config file")
		}
		viper.SetConfigType("toml")
		if err := viper.ReadConfig(bytes.NewBuffer(b)); err != nil {
			log.WithError(err).WithField("config", cfgFile).Fatal("error loading config file")
		}
	} else {
		viper.SetConfigName("digico-report")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.config/digico-report")
		viper.AddConfigPath("/etc/digico-report")
		if err := viper.ReadInConfig(); err != nil {
			switch err.(type) {
			case viper.ConfigFileNotFoundError:
				log.Debug("no configuration file found, using defaults")
			default:
				log.WithError(err).Fatal("read configuration file error")
			}
		}
	}

	viperBindEnvs(config.C)

	viperHooks := mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)

	if err := viper.Unmarshal(&config.C, viper.DecodeHook(viperHooks)); err != nil {
		log.WithError(err).Fatal("unmarshal config error")
	}
}

func viperBindEnvs(iface interface{}, parts ...string) {
	ifv := reflect.ValueOf(iface)
	ift := reflect.TypeOf(iface)
	for i := 0; i < ift.NumField(); i++ {
		v := ifv.Field(i)
		t := ift.Field(i)
		tv, ok := t.Tag.Lookup("mapstructure")
		if !ok {
			tv = strings.ToLower(t.Name)
		}
		if tv == "-" {
			continue
		}

		switch v.Kind() {
		case reflect.Struct:
			viperBindEnvs(v.Interface(), append(parts, tv)...)
		default:
			// Bash doesn't allow env variable names with a dot so
			// bind the double underscore version.
			keyDot := strings.Join(append(parts, tv), ".")
			keyUnderscore := strings.Join(append(parts, tv), "__")
			viper.BindEnv(keyDot, strings.ToUpper(keyUnderscore))
		}
	}
}
