package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrForbidden indicates that the acting user lacks the permission for the operation.
var ErrForbidden = errors.New("operation not permitted")

// ErrEditLimitExceeded indicates that a movement has reached its edit cap and
// cannot accrete further audit records.
var ErrEditLimitExceeded = errors.New("movement edit limit exceeded")

// ErrMovementLocked indicates that a movement sits at or before the lock
// boundary set by the latest daily closing and cannot be mutated.
var ErrMovementLocked = errors.New("movement is locked by a daily closing")

// ErrAdjustmentImmutable indicates that a system-generated adjustment movement
// was targeted by an edit or delete. Adjustments are never mutated directly.
var ErrAdjustmentImmutable = errors.New("closing adjustments are immutable")

// ErrPersistence indicates that a store read/write failed. It is logged at the
// adapter boundary; in-memory and cached state remain usable.
var ErrPersistence = errors.New("persistence failure")

// ErrMalformedDocument indicates that a loaded ledger document failed shape
// validation. The engine falls back to an empty, well-formed document.
var ErrMalformedDocument = errors.New("malformed ledger document")
