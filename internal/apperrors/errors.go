package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrUnauthorized indicates the acting player has no access to the account.
var ErrUnauthorized = errors.New("player has no access")

// ErrInvalidAmount indicates a non-positive or unparseable transfer amount.
var ErrInvalidAmount = errors.New("invalid amount")

// ErrInsufficientBalance indicates the source account cannot cover a transfer.
var ErrInsufficientBalance = errors.New("insufficient balance")

// ErrAlreadyGranted indicates the player already holds a role with that name.
var ErrAlreadyGranted = errors.New("role already granted")

// ErrNotGranted indicates the player does not hold the named role.
var ErrNotGranted = errors.New("role not granted")

// ErrMalformedDate indicates a term-end date that could not be parsed.
var ErrMalformedDate = errors.New("malformed date")

// ErrSerialization indicates an unreadable snapshot file. It is fatal at
// load time: startup aborts rather than silently starting empty.
var ErrSerialization = errors.New("serialization error")
