package core

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// DefaultMaxResults is used when Refresh is called without a positive limit
const DefaultMaxResults = 20

// StoreState describes the triage list slot. Loaded with Count 0 is an empty success and
// is distinct from a failed refresh (Err set).
type StoreState struct {
	Loading bool
	Loaded  bool
	Count   int
	Err     error
}

// TriageStore owns the authoritative list of analyzed message summaries
type TriageStore struct {
	gateway    Gateway
	auth       Authorizer
	notifier   Notifier
	logger     *zap.Logger
	defaultMax int

	mu     sync.Mutex
	seq    uint64
	list   []MessageSummary
	loaded bool
	// loading is true while the latest issued refresh is outstanding
	loading bool
	err     error
}

// NewTriageStore creates a new triage store
func NewTriageStore(
	gateway Gateway,
	auth Authorizer,
	notifier Notifier,
	logger *zap.Logger,
	defaultMax int,
) *TriageStore {
	if defaultMax <= 0 {
		defaultMax = DefaultMaxResults
	}
	return &TriageStore{
		gateway:    gateway,
		auth:       auth,
		notifier:   notifier,
		logger:     logger,
		defaultMax: defaultMax,
	}
}

// Refresh replaces the list with up to maxResults messages from the backend. Only the
// latest issued refresh may apply its result; an older one that completes afterwards
// returns ErrSuperseded. A failed refresh keeps the list that was already loaded.
func (s *TriageStore) Refresh(ctx context.Context, maxResults int) error {
	if !s.auth.IsAuthenticated() {
		s.logger.Debug("Refresh skipped, not authenticated")
		return ErrNotAuthenticated
	}
	if maxResults <= 0 {
		maxResults = s.defaultMax
	}

	s.mu.Lock()
	s.seq++
	seq := s.seq
	s.loading = true
	s.mu.Unlock()

	s.logger.Debug("Refreshing triage list", zap.Uint64("seq", seq), zap.Int("max_results", maxResults))
	list, err := s.gateway.ListMessages(ctx, maxResults)

	s.mu.Lock()
	if seq != s.seq {
		s.mu.Unlock()
		s.logger.Debug("Discarding stale refresh", zap.Uint64("seq", seq), zap.Error(err))
		return ErrSuperseded
	}
	s.loading = false
	if err != nil {
		err = requestFailed(err)
		s.err = err
		s.mu.Unlock()

		s.logger.Error("Failed to refresh triage list", zap.Uint64("seq", seq), zap.Error(err))
		s.notify(OpRefresh, err)
		return err
	}
	s.list = cloneSummaries(list)
	s.loaded = true
	s.err = nil
	count := len(s.list)
	s.mu.Unlock()

	s.logger.Info("Triage list refreshed", zap.Uint64("seq", seq), zap.Int("count", count))
	return nil
}

// CurrentList returns the list from the last successful refresh, empty before any
func (s *TriageStore) CurrentList() []MessageSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneSummaries(s.list)
}

// FilteredList returns the entries matching the filter in their original order
func (s *TriageStore) FilteredList(filter Filter) []MessageSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]MessageSummary, 0, len(s.list))
	for _, m := range s.list {
		if filter.Matches(m) {
			out = append(out, m)
		}
	}
	return out
}

// Stats aggregates the current list; nothing is cached between calls
func (s *TriageStore) Stats() AggregateStats {
	return Aggregate(s.CurrentList())
}

// State returns the loading/loaded/error status of the list
func (s *TriageStore) State() StoreState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return StoreState{
		Loading: s.loading,
		Loaded:  s.loaded,
		Count:   len(s.list),
		Err:     s.err,
	}
}

// Clear drops the list and discards any refresh still in flight
func (s *TriageStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.list = nil
	s.loaded = false
	s.loading = false
	s.err = nil
}

func (s *TriageStore) notify(op Operation, err error) {
	if s.notifier != nil {
		s.notifier.NotifyFailure(op, err)
	}
}

// requestFailed makes sure a gateway error matches ErrRequestFailed
func requestFailed(err error) error {
	if errors.Is(err, ErrRequestFailed) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrRequestFailed, err)
}

func cloneSummaries(list []MessageSummary) []MessageSummary {
	out := make([]MessageSummary, len(list))
	copy(out, list)
	return out
}
