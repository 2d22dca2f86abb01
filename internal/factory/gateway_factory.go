package factory

import (
	"github.com/mikey/phish-triage/internal/adapters/httpapi"
	"github.com/mikey/phish-triage/internal/config"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// GatewayFactory creates the backend gateway based on configuration
type GatewayFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewGatewayFactory creates a new gateway factory
func NewGatewayFactory(cfg *config.Config, logger *zap.Logger) *GatewayFactory {
	return &GatewayFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateClient creates the HTTP client for the backend
func (f *GatewayFactory) CreateClient(tokens oauth2.TokenSource) (*httpapi.Client, error) {
	api, err := f.cfg.GetAPI()
	if err != nil {
		return nil, err
	}
	f.logger.Debug("Creating backend client", zap.String("base_url", api.BaseURL), zap.Duration("timeout", api.Timeout))
	return httpapi.NewClient(api.BaseURL, tokens, api.Timeout, f.logger)
}
