// Command quill is the CLI front end for the storage engine in
// pkg/engine. There is no SQL parser (a tokenizer/parser is explicitly
// out of scope); each statement kind is instead its own subcommand,
// built from flags into a pkg/statement.Statement and run through a
// single-shot pkg/executor.Executor.
package main

import (
	"fmt"
	"os"

	"github.com/cuemby/quill/pkg/config"
	"github.com/cuemby/quill/pkg/log"
	"github.com/spf13/cobra"
)

var (
	// Version information (set via ldflags during build)
	Version = "dev"
	Commit  = "unknown"
)

var (
	dataDir   string
	logLevel  string
	logJSON   bool
	configPath string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "quill",
	Short:   "quill - an embeddable transactional storage engine",
	Version: Version,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("quill version %s\nCommit: %s\n", Version, Commit))

	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "./quill-data", "Database directory")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file (overrides --data-dir and log flags)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "Output logs in JSON format")

	rootCmd.AddCommand(openCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(recoverCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(insertCmd)
	rootCmd.AddCommand(selectCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(deleteCmd)
}

// loadConfig resolves the engine configuration from --config if given,
// else from the persistent --data-dir/--log-level/--log-json flags.
func loadConfig() (config.Config, error) {
	if configPath != "" {
		return config.Load(configPath)
	}
	cfg := config.Default(dataDir)
	cfg.LogLevel = log.Level(logLevel)
	cfg.LogJSON = logJSON
	return cfg, nil
}
