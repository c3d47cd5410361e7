package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrForbidden          = errors.New("not authorized")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Payment reconciliation errors. Duplicate deliveries and grant failures
	// are not errors: the coordinator reports them as result values.
	ErrInvalidSignature = errors.New("webhook signature verification failed")
	ErrUnparseableEvent = errors.New("webhook event payload is malformed")

	// Marketplace errors
	ErrAlreadyPurchased   = errors.New("product already purchased")
	ErrAlreadyReviewed    = errors.New("product already reviewed by user")
	ErrProductNotApproved = errors.New("product is not approved for sale")
	ErrInvalidTransition  = errors.New("invalid status transition")

	// Storage errors
	ErrOperationFailed    = errors.New("storage operation failed")
	ErrInvalidExecContext = errors.New("invalid transaction execution context")
)
