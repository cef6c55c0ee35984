package conversation

import "errors"

var (
	// ErrInvalidBudgetID marks a budget option id outside the four known bands.
	ErrInvalidBudgetID = errors.New("invalid budget id")

	// ErrCatalogUnavailable marks an inventory collaborator failure. The
	// engine maps it to a generic user-facing error text without advancing
	// the session step, so the user can simply retry.
	ErrCatalogUnavailable = errors.New("car catalog unavailable")

	// ErrBookingWriteFailed marks a persistence failure on confirm. The
	// session is neither advanced nor cleared, so confirm can be retried.
	ErrBookingWriteFailed = errors.New("booking write failed")
)
