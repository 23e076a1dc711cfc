package service

import "errors"

var (
	ErrValidationFailed     = errors.New("validation failed")
	ErrNotFound             = errors.New("not found")
	ErrProviderFailed       = errors.New("payment provider failed")
	ErrPersistenceFailed    = errors.New("persistence failed")
	ErrAssetUnavailable     = errors.New("asset unavailable")
	ErrPaymentAborted       = errors.New("payment aborted")
	ErrConfirmationRejected = errors.New("payment confirmation rejected")
)
