package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")

	// ErrCodeInvalid covers every verification failure: wrong code, wrong
	// flow, expired, already used, attempt cap reached. Callers must not
	// distinguish between those causes in user-facing responses.
	ErrCodeInvalid = errors.New("code invalid or expired")

	// ErrCooldown is returned when a code is requested again before the
	// resend cooldown for that email has elapsed.
	ErrCooldown = errors.New("resend cooldown active")

	// ErrDeliveryFailed marks a code that was persisted but could not be
	// delivered. The caller may retry issuance.
	ErrDeliveryFailed = errors.New("delivery failed")

	// ErrBlocked wraps every ban-registry rejection.
	ErrBlocked = errors.New("access blocked")
)
