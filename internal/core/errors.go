package core

import "errors"

var (
	// ErrRequestFailed covers every backend failure: transport, non-success status and
	// malformed responses alike
	ErrRequestFailed = errors.New("request failed")
	// ErrNotAuthenticated is returned without contacting the backend when the auth
	// precondition does not hold
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrSuperseded is returned to the caller whose completion was discarded because a
	// newer request (or a clear) happened first
	ErrSuperseded = errors.New("superseded by a newer request")
	// ErrEmptyMessageID is returned by Open for an empty id
	ErrEmptyMessageID = errors.New("message id is empty")
	// ErrUnknownFilter is returned by ParseFilter
	ErrUnknownFilter = errors.New("unknown filter")
)
