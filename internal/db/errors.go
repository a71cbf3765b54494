package db

import "errors"

// Domain-level database error sentinels.
var (
	ErrOfficerNotFound        = errors.New("officer not found")
	ErrContactMessageNotFound = errors.New("contact message not found")
	ErrAlreadyResolved        = errors.New("contact message already resolved")
)
