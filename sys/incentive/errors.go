package incentive

import (
	"errors"
	"fmt"

	"cleanscore-api/res/store"
)

// Error taxonomy returned by the engines. Callers (routing layer, jobs)
// map these onto user-facing responses; anything wrapped in ErrUnexpected
// is an internal failure and carries no partial state.
var (
	ErrNotFound             = errors.New("incentive: not found")
	ErrInvalidArgument      = errors.New("incentive: invalid argument")
	ErrConflict             = errors.New("incentive: conflict")
	ErrMissingPayoutDetails = errors.New("incentive: missing payout details")
	ErrUnexpected           = errors.New("incentive: unexpected failure")
)

// fromStore maps store-layer errors onto the engine taxonomy.
func fromStore(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case errors.Is(err, store.ErrUniqueViolation):
		return fmt.Errorf("%w: %v", ErrConflict, err)
	case errors.Is(err, store.ErrInvalidInput):
		return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	case errors.Is(err, store.ErrVersionConflict):
		return fmt.Errorf("%w: %v", ErrConflict, err)
	case errors.Is(err, ErrConflict), errors.Is(err, ErrInvalidArgument),
		errors.Is(err, ErrNotFound), errors.Is(err, ErrMissingPayoutDetails):
		// Already in the taxonomy (raised inside a transactional closure).
		return err
	}
	return fmt.Errorf("%w: %v", ErrUnexpected, err)
}
