package main

import (
	"errors"
	"io"

	"github.com/spf13/cobra"

	"github.com/shivamgupta214/outfox-health-assessment/internal/config"
	pkgconfig "github.com/shivamgupta214/outfox-health-assessment/pkg/config"
	pkglog "github.com/shivamgupta214/outfox-health-assessment/pkg/log"
)

// errReported marks failures already shown to the user.
var errReported = errors.New("reported")

type app struct {
	configFile string
	apiURL     string
	logLevel   string
	logFile    string

	cfg       *config.Config
	logCloser io.Closer
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "navigator",
		Short:         "Hospital pricing and quality navigator",
		Long:          "navigator uploads hospital data, searches providers and chats with the hospital data assistant.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return a.init()
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			if a.logCloser != nil {
				return a.logCloser.Close()
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.configFile, "config", "", "Path to the configuration file to load.")
	rootCmd.PersistentFlags().StringVar(&a.apiURL, "api-url", "", "Base URL of the navigator API (overrides api.base_url).")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level (overrides log.level).")
	rootCmd.PersistentFlags().StringVar(&a.logFile, "log-file", "", "Log file (overrides log.file).")

	rootCmd.AddCommand(
		newChatCmd(a),
		newUploadCmd(a),
		newProvidersCmd(a),
		newWatchCmd(a),
	)
	return rootCmd
}

// init loads configuration and points the logger at the log file; the
// terminal belongs to command output.
func (a *app) init() error {
	var (
		cfg *config.Config
		err error
	)
	if a.configFile != "" {
		cfg, err = config.LoadFile(a.configFile)
	} else {
		cfg, err = config.Load(pkgconfig.GetEnv("NAVIGATOR_CONFIG_DIR", ""))
	}
	if err != nil {
		return err
	}

	if a.apiURL != "" {
		cfg.API.BaseURL = a.apiURL
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.logFile != "" {
		cfg.Log.File = a.logFile
	}

	closer, err := pkglog.Init(pkglog.Config{
		Level:       cfg.Log.Level,
		ServiceName: "navigator",
		File:        cfg.Log.File,
	})
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logCloser = closer
	return nil
}
