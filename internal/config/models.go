package config

import (
	"fmt"
	"time"
)

// APIConfig represents the backend connection settings
type APIConfig struct {
	BaseURL string
	Timeout time.Duration
	Token   string
}

// TriageConfig represents the page sizes requested from the backend
type TriageConfig struct {
	MaxResults          int
	AnalyticsMaxResults int
}

// DisplayConfig represents limits used when rendering text
type DisplayConfig struct {
	MaxBodySize int
	SnippetSize int
}

// GetAPI returns the backend configuration
func (c *Config) GetAPI() (APIConfig, error) {
	timeout, err := c.GetDuration("api.timeout")
	if err != nil {
		return APIConfig{}, fmt.Errorf("invalid api timeout: %w", err)
	}
	return APIConfig{
		BaseURL: c.GetString("api.base_url"),
		Timeout: timeout,
		Token:   c.GetString("api.token"),
	}, nil
}

// GetTriage returns the triage configuration
func (c *Config) GetTriage() TriageConfig {
	return TriageConfig{
		MaxResults:          c.GetInt("triage.max_results"),
		AnalyticsMaxResults: c.GetInt("analytics.max_results"),
	}
}

// GetDisplay returns the display configuration
func (c *Config) GetDisplay() DisplayConfig {
	return DisplayConfig{
		MaxBodySize: c.GetInt("display.max_body_size"),
		SnippetSize: c.GetInt("display.snippet_size"),
	}
}
