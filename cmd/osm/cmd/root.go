package cmd

import (
	"os"

	"github.com/go-spatial/cobra"

	"github.com/go-spatial/osm"
	"github.com/go-spatial/osm/internal/log"
)

var (
	configFile string
	logLevel   string

	// Version is the build version reported by the version command.
	// main sets it through Execute.
	Version = "version not set"
)

var RootCmd = &cobra.Command{
	Use:   "osm",
	Short: "osm turns parsed OpenStreetMap element streams into feature layers",
	Long: `osm reads line delimited JSON element streams and materializes them
into the configured feature layers: typed fields from tags, hstore or
JSON tag blobs, and computed attributes evaluated by an embedded SQL
engine.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		lvl, err := log.ParseLevel(logLevel)
		if err != nil {
			return err
		}
		log.SetLogLevel(lvl)
		return nil
	},
}

func init() {
	RootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to a TOML config file. the stock layers are used when not set")
	RootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "INFO", "log level. one of TRACE, DEBUG, INFO, WARN, ERROR")

	RootCmd.AddCommand(dumpCmd)
	RootCmd.AddCommand(schemaCmd)
	RootCmd.AddCommand(versionCmd)
}

// Execute runs the root command with the build version.
func Execute(version string) {
	Version = version
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (osm.Config, error) {
	if configFile == "" {
		return osm.DefaultConfig(), nil
	}
	return osm.LoadConfig(configFile)
}
