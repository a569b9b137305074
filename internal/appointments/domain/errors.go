package domain

import "errors"

var (
	// ErrValidationFailed aborts a write entirely: a malformed record is
	// never committed locally and never reaches the network.
	ErrValidationFailed = errors.New("appointment record failed validation")
	// ErrRemoteUnavailable never aborts a write; it surfaces only as a
	// non-blocking warning while the local commit proceeds.
	ErrRemoteUnavailable = errors.New("remote record store unavailable")
	ErrRecordNotFound    = errors.New("appointment record not found")
	ErrInvalidStatus     = errors.New("invalid appointment status transition")
)
