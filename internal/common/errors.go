// Package common defines shared constants and sentinel errors used across
// minauth components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// ErrConflict marks expected dispatch races: the request is not in the
	// claimable state, was already claimed, or does not exist. Callers may
	// retry with a different request or ignore.
	ErrConflict = errors.New("request not claimable")

	// ErrConsistency marks a dispatchable request without its payload row.
	// This is an upstream bug in request creation and must abort loudly.
	ErrConsistency = errors.New("payload consistency violation")

	// Service-level errors (generic/internal flow control).
	ErrInternal     = errors.New("internal error")
	ErrUnauthorized = errors.New("unauthorized")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired = errors.New("token expired")
)
