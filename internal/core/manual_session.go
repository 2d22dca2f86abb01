package core

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// ManualSession runs ad-hoc classification of user supplied text. It holds one result at
// a time and is independent of the triage list.
type ManualSession struct {
	gateway  Gateway
	auth     Authorizer
	notifier Notifier
	logger   *zap.Logger

	mu      sync.Mutex
	seq     uint64
	input   string
	result  *AnalysisResult
	pending bool
	err     error
}

// NewManualSession creates a new manual classification session
func NewManualSession(gateway Gateway, auth Authorizer, notifier Notifier, logger *zap.Logger) *ManualSession {
	return &ManualSession{
		gateway:  gateway,
		auth:     auth,
		notifier: notifier,
		logger:   logger,
	}
}

// Classify submits text for classification. Blank input is ignored without touching the
// backend or the slot. The previous result is cleared as soon as the new request is
// issued, and a completion is only stored if no newer submission was made meanwhile.
func (s *ManualSession) Classify(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if !s.auth.IsAuthenticated() {
		s.logger.Debug("Classify skipped, not authenticated")
		return ErrNotAuthenticated
	}

	s.mu.Lock()
	s.seq++
	seq := s.seq
	s.input = text
	s.result = nil
	s.err = nil
	s.pending = true
	s.mu.Unlock()

	s.logger.Debug("Classifying text", zap.Uint64("seq", seq), zap.Int("length", len(text)))
	result, err := s.gateway.AnalyzeText(ctx, text)

	s.mu.Lock()
	if seq != s.seq {
		s.mu.Unlock()
		s.logger.Debug("Discarding stale classification", zap.Uint64("seq", seq), zap.Error(err))
		return ErrSuperseded
	}
	s.pending = false
	if err == nil && result == nil {
		err = ErrRequestFailed
	}
	if err != nil {
		err = requestFailed(err)
		s.err = err
		s.mu.Unlock()

		s.logger.Error("Failed to classify text", zap.Uint64("seq", seq), zap.Error(err))
		if s.notifier != nil {
			s.notifier.NotifyFailure(OpClassify, err)
		}
		return err
	}
	r := *result
	s.result = &r
	s.mu.Unlock()

	s.logger.Debug("Text classified",
		zap.Uint64("seq", seq),
		zap.String("category", string(r.Category)),
		zap.Float64("risk_score", r.RiskScore))
	return nil
}

// Result returns a copy of the stored result, nil while pending or absent
func (s *ManualSession) Result() *AnalysisResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return nil
	}
	r := *s.result
	return &r
}

// Snapshot returns the whole slot
func (s *ManualSession) Snapshot() ManualClassification {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := ManualClassification{
		Input:   s.input,
		Pending: s.pending,
		Err:     s.err,
	}
	if s.result != nil {
		r := *s.result
		snap.Result = &r
	}
	return snap
}

// Reset empties the slot and discards any request still in flight
func (s *ManualSession) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.input = ""
	s.result = nil
	s.pending = false
	s.err = nil
}
