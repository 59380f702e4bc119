package contract

import "errors"

// ErrDuplicateCase reports that a recovery case already exists for the
// invoice reference (unique-constraint race fallback).
var ErrDuplicateCase = errors.New("recovery case already exists for invoice")

// ErrDuplicateEvent reports that the idempotency marker for a webhook
// event id was already written by a concurrent delivery.
var ErrDuplicateEvent = errors.New("webhook event already recorded")
