// Package apperr defines the domain error taxonomy. Services return these
// sentinels (usually wrapped with %w); handlers match with errors.Is and map
// them to HTTP statuses.
package apperr

import "errors"

var (
	// ErrValidation — missing or malformed input, rejected before storage
	// is touched.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound — the referenced record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden — caller is authenticated but not allowed to act on the record.
	ErrForbidden = errors.New("forbidden")

	// ErrSlotNotOfferable — reservation precondition failed: the slot is
	// missing, not OFFERABLE, or owned by the wrong party. Expected under
	// contention; the caller retries with fresh data.
	ErrSlotNotOfferable = errors.New("slot not offerable")

	// ErrSlotAlreadyPending — one of the slots is already referenced by a
	// PENDING swap request.
	ErrSlotAlreadyPending = errors.New("slot already in a pending swap")

	// ErrAlreadyHandled — the swap request left PENDING before this call; a
	// benign no-op race, not a system fault.
	ErrAlreadyHandled = errors.New("swap request already handled")

	// ErrConflict — an invariant held elsewhere was found violated (slot
	// ownership drifted under a PENDING request, or a RESERVED slot was
	// targeted by delete). Integrity fault: aborted and logged, never
	// auto-resolved.
	ErrConflict = errors.New("conflict")

	// ErrEmailTaken — signup with an email that already has an account.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials — unknown email or wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
