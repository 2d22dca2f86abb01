package factory

import (
	"io"

	"github.com/mikey/phish-triage/internal/adapters/presenter"
	"github.com/mikey/phish-triage/internal/config"
	"github.com/mikey/phish-triage/internal/ports"
	"go.uber.org/zap"
)

// PresenterFactory creates presenters based on configuration
type PresenterFactory struct {
	cfg    *config.Config
	logger *zap.Logger
	text   *TextProcessorFactory
}

// NewPresenterFactory creates a new presenter factory
func NewPresenterFactory(cfg *config.Config, logger *zap.Logger, text *TextProcessorFactory) *PresenterFactory {
	return &PresenterFactory{
		cfg:    cfg,
		logger: logger,
		text:   text,
	}
}

// CreatePresenter creates a terminal presenter writing to out and errOut
func (f *PresenterFactory) CreatePresenter(out, errOut io.Writer) ports.Presenter {
	display := f.cfg.GetDisplay()
	return presenter.NewTerminalPresenter(
		out,
		errOut,
		f.text.CreateTextProcessor(),
		f.logger,
		display.MaxBodySize,
		display.SnippetSize,
	)
}
