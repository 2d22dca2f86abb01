package ports

import (
	"github.com/mikey/phish-triage/internal/core"
)

// Presenter defines how dashboard state is shown to the analyst
type Presenter interface {
	// RenderList shows the triage list after the filter has been applied
	RenderList(list []core.MessageSummary, filter core.Filter, state core.StoreState) error

	// RenderStats shows the aggregate view of the current list
	RenderStats(stats core.AggregateStats) error

	// RenderDetail shows one opened message
	RenderDetail(detail *core.MessageDetail) error

	// RenderClassification shows the manual classification slot
	RenderClassification(c core.ManualClassification) error

	// RenderAuthURL shows where to sign in
	RenderAuthURL(url string) error

	// RenderHealth reports a successful backend health check
	RenderHealth() error

	// RenderFailure surfaces a failed operation to the analyst
	RenderFailure(op core.Operation, err error)
}
