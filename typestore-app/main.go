package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/instrumentd/typestore/typestore-app/config"
)

var (
	version = "dev"
	commit  = "unknown"
)

var (
	cfgFile   string
	logLevel  string
	logPretty bool

	rootCmd = &cobra.Command{
		Use:   "typestore-app",
		Short: "Typed attribute store with an HTTP introspection surface",
		Long: "Runs a kind registry and typed attribute store, optionally seeded " +
			"from a YAML fixture, and serves its enumeration read path over HTTP.",
		RunE: runApp,
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run:   runVersion,
	}
)

func main() {
	if err := execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func execute() error {
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config",
		"typestore-app/configs/config.yaml", "config file path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&logPretty, "log-pretty", false,
		"enable pretty logging")

	return rootCmd.Execute()
}

func runApp(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logPretty {
		cfg.Log.Pretty = true
	}

	log, err := buildLogger(cfg.Log)
	if err != nil {
		return err
	}

	app, err := NewApp(cfg, log)
	if err != nil {
		return err
	}

	log.Info().Str("version", version).Msg("typestore-app starting")
	return app.Run(cmd.Context())
}

func runVersion(_ *cobra.Command, _ []string) {
	fmt.Printf("typestore-app %s (%s) %s %s/%s\n",
		version, commit, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

func buildLogger(cfg config.LogConfig) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), err
	}

	var log zerolog.Logger
	if cfg.Pretty {
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		log = zerolog.New(os.Stderr)
	}
	return log.Level(level).With().Timestamp().Logger(), nil
}
