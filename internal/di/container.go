package di

import (
	"flag"
	"os"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/phish-triage/internal/adapters/httpapi"
	"github.com/mikey/phish-triage/internal/config"
	"github.com/mikey/phish-triage/internal/core"
	"github.com/mikey/phish-triage/internal/factory"
	"github.com/mikey/phish-triage/internal/logging"
	"github.com/mikey/phish-triage/internal/ports"
	"github.com/mikey/phish-triage/internal/session"
)

// AppFlags contains the command line flags for the dashboard
type AppFlags struct {
	View       string
	Filter     string
	MessageID  string
	MaxResults int
	Token      string
	BaseURL    string
	ConfigFile string
}

// ParseAppFlags parses command line flags and returns an AppFlags struct
func ParseAppFlags() *AppFlags {
	flags := &AppFlags{}

	flag.StringVar(&flags.View, "view", "list", "View to render (list, stats, show, login, health)")
	flag.StringVar(&flags.Filter, "filter", "All", "Category filter for the list view (All, Safe, Suspicious, Fraudulent)")
	flag.StringVar(&flags.MessageID, "id", "", "Message ID for the show view")
	flag.IntVar(&flags.MaxResults, "max", 0, "Maximum messages to fetch (0 uses the configured value)")
	flag.StringVar(&flags.Token, "token", "", "Session token from the sign-in callback")
	flag.StringVar(&flags.BaseURL, "base-url", "", "Backend base URL")
	flag.StringVar(&flags.ConfigFile, "config", "", "Path to config file")

	flag.Parse()
	return flags
}

// BuildContainer creates and configures a dependency injection container for the dashboard
func BuildContainer(flags *AppFlags) (*dig.Container, error) {
	container := dig.New()

	// Register flags
	if err := container.Provide(func() *AppFlags { return flags }); err != nil {
		return nil, err
	}

	// Register configuration, flags win over file and environment
	if err := container.Provide(func(flags *AppFlags) (*config.Config, error) {
		cfg, err := config.NewFromFile(flags.ConfigFile)
		if err != nil {
			return nil, err
		}
		applyOverrides(cfg, flags.Token, flags.BaseURL)
		return cfg, nil
	}); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	if err := provideDashboard(container); err != nil {
		return nil, err
	}

	return container, nil
}

// provideDashboard registers everything downstream of configuration and logger
func provideDashboard(container *dig.Container) error {
	// Register factories
	if err := container.Provide(factory.NewGatewayFactory); err != nil {
		return err
	}
	if err := container.Provide(factory.NewTextProcessorFactory); err != nil {
		return err
	}
	if err := container.Provide(factory.NewPresenterFactory); err != nil {
		return err
	}

	// Register session, signed in when a token is configured
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) (*session.Session, error) {
		s := session.New(logger)
		if token := cfg.GetString("api.token"); token != "" {
			if err := s.Login(token); err != nil {
				return nil, err
			}
		}
		return s, nil
	}); err != nil {
		return err
	}
	if err := container.Provide(func(s *session.Session) core.Authorizer { return s }); err != nil {
		return err
	}

	// Register backend client and gateway
	if err := container.Provide(func(f *factory.GatewayFactory, s *session.Session) (*httpapi.Client, error) {
		return f.CreateClient(s)
	}); err != nil {
		return err
	}
	if err := container.Provide(func(client *httpapi.Client) core.Gateway {
		return client
	}); err != nil {
		return err
	}

	// Register presenter and the failure notifier feeding it
	if err := container.Provide(func(f *factory.PresenterFactory) ports.Presenter {
		return f.CreatePresenter(os.Stdout, os.Stderr)
	}); err != nil {
		return err
	}
	if err := container.Provide(func(logger *zap.Logger, p ports.Presenter) core.Notifier {
		return logging.NewFailureNotifier(logger).WithSink(p.RenderFailure)
	}); err != nil {
		return err
	}

	// Register state holders
	if err := container.Provide(func(
		gateway core.Gateway,
		auth core.Authorizer,
		notifier core.Notifier,
		logger *zap.Logger,
		cfg *config.Config,
	) *core.TriageStore {
		return core.NewTriageStore(gateway, auth, notifier, logger, cfg.GetTriage().MaxResults)
	}); err != nil {
		return err
	}
	if err := container.Provide(core.NewDetailCache); err != nil {
		return err
	}
	if err := container.Provide(core.NewManualSession); err != nil {
		return err
	}

	return nil
}

func applyOverrides(cfg *config.Config, token, baseURL string) {
	if token != "" {
		cfg.GetViper().Set("api.token", token)
	}
	if baseURL != "" {
		cfg.GetViper().Set("api.base_url", baseURL)
	}
}
