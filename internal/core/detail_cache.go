package core

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// DetailState describes the detail slot
type DetailState struct {
	// ID is the message requested by the latest Open, empty after Close
	ID      string
	Loading bool
	Open    bool
	Err     error
}

// DetailCache holds at most one open MessageDetail, fetched by id independently of the
// triage list
type DetailCache struct {
	gateway  Gateway
	auth     Authorizer
	notifier Notifier
	logger   *zap.Logger

	mu      sync.Mutex
	gen     uint64
	id      string
	detail  *MessageDetail
	loading bool
	err     error
}

// NewDetailCache creates a new detail cache
func NewDetailCache(gateway Gateway, auth Authorizer, notifier Notifier, logger *zap.Logger) *DetailCache {
	return &DetailCache{
		gateway:  gateway,
		auth:     auth,
		notifier: notifier,
		logger:   logger,
	}
}

// Open fetches the detail for id and makes it the current one. The previous detail is
// dropped as soon as the fetch is issued, so Current never shows a message other than
// State().ID. A completion that arrives after a newer Open or a Close is discarded and
// reported as ErrSuperseded. On failure the slot is left empty.
func (c *DetailCache) Open(ctx context.Context, id string) error {
	if id == "" {
		return ErrEmptyMessageID
	}
	if !c.auth.IsAuthenticated() {
		c.logger.Debug("Open skipped, not authenticated", zap.String("id", id))
		return ErrNotAuthenticated
	}

	c.mu.Lock()
	c.gen++
	gen := c.gen
	c.id = id
	c.detail = nil
	c.loading = true
	c.err = nil
	c.mu.Unlock()

	detail, err := c.gateway.GetMessage(ctx, id)

	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		c.logger.Debug("Discarding stale detail",
			zap.String("id", id),
			zap.Uint64("gen", gen),
			zap.Error(err))
		return ErrSuperseded
	}
	c.loading = false
	if err == nil && detail == nil {
		err = ErrRequestFailed
	}
	if err != nil {
		err = requestFailed(err)
		c.detail = nil
		c.err = err
		c.mu.Unlock()

		c.logger.Error("Failed to load message detail", zap.String("id", id), zap.Error(err))
		if c.notifier != nil {
			c.notifier.NotifyFailure(OpOpen, err)
		}
		return err
	}
	d := *detail
	c.detail = &d
	c.mu.Unlock()

	c.logger.Debug("Message detail loaded", zap.String("id", id), zap.Uint64("gen", gen))
	return nil
}

// Close clears the open detail and discards any fetch still in flight. Calling it on an
// empty slot is a no-op.
func (c *DetailCache) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.id = ""
	c.detail = nil
	c.loading = false
	c.err = nil
}

// Current returns a copy of the open detail, nil when none
func (c *DetailCache) Current() *MessageDetail {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.detail == nil {
		return nil
	}
	d := *c.detail
	return &d
}

// State returns the status of the detail slot
func (c *DetailCache) State() DetailState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return DetailState{
		ID:      c.id,
		Loading: c.loading,
		Open:    c.detail != nil,
		Err:     c.err,
	}
}
