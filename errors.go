package syncline

import "errors"

var (
	// Lifecycle errors.
	ErrNotBuilt = errors.New("syncline: engine not built")

	// Store errors.
	ErrNoCache      = errors.New("syncline: no cache store configured")
	ErrNotCached    = errors.New("syncline: collection not in cache")
	ErrCorruptCache = errors.New("syncline: cached collection unreadable")

	// Remote errors.
	ErrRemoteUnavailable = errors.New("syncline: remote unavailable")
	ErrCountFailed       = errors.New("syncline: remote count failed")

	// Collection errors.
	ErrRecordNotFound = errors.New("syncline: record not found")
	ErrDuplicateID    = errors.New("syncline: duplicate record id")
	ErrNotLoaded      = errors.New("syncline: collection not loaded")

	// Authorization errors.
	ErrPermissionDenied = errors.New("syncline: permission denied")

	// Pending queue errors.
	ErrPendingNotFound = errors.New("syncline: pending entry not found")
)
