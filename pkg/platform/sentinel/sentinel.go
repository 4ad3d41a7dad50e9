package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and downstream clients
// (registration store, identity directory) return these, optionally wrapped,
// so services can translate them into coded domain errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: row or identity does not exist
// - ErrConflict: uniqueness constraint hit (email or confirmation token)
// - ErrExpired: confirmation token past its expiry
// - ErrInvalidState: record in the wrong state for the requested transition
// - ErrUnavailable: downstream service temporarily unavailable
//
// For validation errors (bad input, missing fields), use pkg/domain-errors
// directly.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrExpired      = errors.New("expired")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
