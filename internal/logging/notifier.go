package logging

import (
	"github.com/mikey/phish-triage/internal/core"
	"go.uber.org/zap"
)

// FailureNotifier is the default core.Notifier: it logs the failure at warn level and
// forwards it to an optional sink (the presenter) for the user to see.
type FailureNotifier struct {
	logger *zap.Logger
	sink   func(op core.Operation, err error)
}

// NewFailureNotifier creates a notifier that only logs
func NewFailureNotifier(logger *zap.Logger) *FailureNotifier {
	return &FailureNotifier{logger: logger}
}

// WithSink returns a copy that also forwards failures to sink
func (n *FailureNotifier) WithSink(sink func(op core.Operation, err error)) *FailureNotifier {
	return &FailureNotifier{logger: n.logger, sink: sink}
}

// NotifyFailure implements core.Notifier
func (n *FailureNotifier) NotifyFailure(op core.Operation, err error) {
	n.logger.Warn("Operation failed", zap.String("operation", string(op)), zap.Error(err))
	if n.sink != nil {
		n.sink(op, err)
	}
}
