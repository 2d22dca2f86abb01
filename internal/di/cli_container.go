package di

import (
	"flag"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/phish-triage/internal/config"
	"github.com/mikey/phish-triage/internal/logging"
)

// CLIFlags contains all command line flags for the classify tool
type CLIFlags struct {
	InputFile  string
	Token      string
	BaseURL    string
	Verbose    bool
	JSONLog    bool
	ConfigFile string
}

// ParseFlags parses command line flags and returns a CLIFlags struct
func ParseFlags() *CLIFlags {
	flags := &CLIFlags{}

	flag.StringVar(&flags.InputFile, "file", "", "File with the text to classify (use stdin if not specified)")
	flag.StringVar(&flags.Token, "token", "", "Session token from the sign-in callback")
	flag.StringVar(&flags.BaseURL, "base-url", "", "Backend base URL")
	flag.BoolVar(&flags.Verbose, "verbose", false, "Enable verbose logging")
	flag.BoolVar(&flags.JSONLog, "json-log", false, "Output logs in JSON format")
	flag.StringVar(&flags.ConfigFile, "config", "", "Path to config file")

	flag.Parse()
	return flags
}

// BuildCLIContainer creates and configures a dependency injection container for the classify tool
func BuildCLIContainer(flags *CLIFlags) (*dig.Container, error) {
	container := dig.New()

	// Register flags
	if err := container.Provide(func() *CLIFlags { return flags }); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(flags *CLIFlags) (*zap.Logger, error) {
		return logging.InitConsoleLogger(flags.Verbose, flags.JSONLog)
	}); err != nil {
		return nil, err
	}

	// Register configuration
	if err := container.Provide(func(flags *CLIFlags, logger *zap.Logger) (*config.Config, error) {
		var cfg *config.Config
		if flags.ConfigFile != "" {
			var err error
			cfg, err = config.NewFromFile(flags.ConfigFile)
			if err != nil {
				return nil, err
			}
			logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
		} else {
			cfg = config.NewFromViper(config.NewEmptyViper())
		}
		applyOverrides(cfg, flags.Token, flags.BaseURL)
		return cfg, nil
	}); err != nil {
		return nil, err
	}

	if err := provideDashboard(container); err != nil {
		return nil, err
	}

	return container, nil
}
