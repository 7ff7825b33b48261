package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/tomokisaito/roompower/internal/config"
	"github.com/tomokisaito/roompower/internal/logging"
)

const Version = "1.1.0"

var (
	cfgFile   string
	logLevel  string
	logFormat string

	rootLogger *zap.Logger
	manager    *config.Manager
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "roompower",
	Short: "Mining room power calculator",
	Long: `roompower computes the effective mining power of a game room from a saved
snapshot: raw miner power, the deduplicated miner bonus, and per-rack
bonuses, applied the way the game applies them. It also normalizes raw
account exports into room snapshots, inspects saved inventory pages, and
extracts inventory captures from browser HAR archives.`,
	Version:           Version,
	PersistentPreRunE: setup,
	SilenceUsage:      true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./"+config.DefaultFileName+")")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "console", "log format (console, json)")

	rootCmd.SetVersionTemplate(`roompower {{.Version}}
Mining room power calculator
`)
}

// setup builds the logger and loads the configuration before any command
// runs. Flags outrank the config file for logging so a broken setup can
// still be debugged with --log-level debug.
func setup(cmd *cobra.Command, args []string) error {
	// init must run even when the existing config file is unreadable.
	if cmd.Name() == "init" {
		var err error
		rootLogger, err = logging.NewLogger(logging.Options{Level: logLevel, Format: logFormat})
		return err
	}

	boot, err := logging.NewLogger(logging.Options{Level: logLevel, Format: logFormat})
	if err != nil {
		return err
	}

	path := cfgFile
	if path == "" {
		path = config.DefaultFileName
	}
	manager, err = config.NewManager(boot, path)
	if err != nil {
		return err
	}
	cfg := manager.Get()

	level := cfg.Logging.Level
	format := cfg.Logging.Format
	if cmd.Flags().Changed("log-level") {
		level = logLevel
	}
	if cmd.Flags().Changed("log-format") {
		format = logFormat
	}

	rootLogger, err = logging.NewLogger(logging.Options{
		Level:  level,
		Format: format,
		File:   cfg.Logging.File,
	})
	return err
}

// languagesOf converts the configured language order into parsed tags.
func languagesOf(cfg *config.Config) []language.Tag {
	tags := make([]language.Tag, 0, len(cfg.Room.Languages))
	for _, l := range cfg.Room.Languages {
		if tag, err := language.Parse(l); err == nil {
			tags = append(tags, tag)
		}
	}
	return tags
}
