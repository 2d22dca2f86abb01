package core

import (
	"context"
)

// Gateway defines the request/response boundary to the classification and mailbox backend
type Gateway interface {
	// ListMessages returns up to maxResults analyzed messages in arrival order
	ListMessages(ctx context.Context, maxResults int) ([]MessageSummary, error)

	// GetMessage fetches the full record for one message
	GetMessage(ctx context.Context, id string) (*MessageDetail, error)

	// AnalyzeText classifies raw text
	AnalyzeText(ctx context.Context, text string) (*AnalysisResult, error)

	// AuthURL returns the external authorization redirect URL used by the login flow
	AuthURL(ctx context.Context) (string, error)
}

// Authorizer supplies the "may we call the gateway" precondition
type Authorizer interface {
	IsAuthenticated() bool
}

// AuthorizerFunc adapts a function to Authorizer
type AuthorizerFunc func() bool

func (f AuthorizerFunc) IsAuthenticated() bool { return f() }

// Operation names the action that failed when notifying the presentation layer
type Operation string

const (
	OpRefresh  Operation = "refresh"
	OpOpen     Operation = "open"
	OpClassify Operation = "classify"
	OpLogin    Operation = "login"
	OpHealth   Operation = "health"
)

// Notifier receives the single user-visible failure signal for an operation
type Notifier interface {
	NotifyFailure(op Operation, err error)
}
