package booking

import (
	"errors"
	"fmt"
)

// Unit names one independently bookable resource.
type Unit string

const (
	UnitFlights Unit = "flights"
	UnitHotel   Unit = "hotel"
)

var (
	// ErrSearchFailed wraps a failed search call; local results and
	// selections are left untouched.
	ErrSearchFailed = errors.New("search failed")

	// ErrInboundLookupFailed wraps a failed return-flight lookup. The
	// outbound choice that triggered it is not recorded.
	ErrInboundLookupFailed = errors.New("return flight lookup failed")

	// ErrNoAccommodationSelected rejects a booking attempt that would
	// commit flights without any accommodation. Raised before any network
	// call is made.
	ErrNoAccommodationSelected = errors.New("no accommodation selected")

	// ErrNothingToBook rejects a booking attempt with no committable unit.
	ErrNothingToBook = errors.New("nothing to book")

	// ErrUnknownOption reports a selection token or id not present in the
	// current result set.
	ErrUnknownOption = errors.New("option not in current results")
)

// PartialFailureError reports one unit whose commit failed while the other
// may have succeeded. The succeeded unit's booked flag is already set and
// survives; only the failed unit is retried on the next booking attempt.
type PartialFailureError struct {
	Unit Unit
	Err  error
}

func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("booking %s failed: %v", e.Unit, e.Err)
}

func (e *PartialFailureError) Unwrap() error {
	return e.Err
}
