package service

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/iliyamo/seat-hold-engine/internal/metrics"
	"github.com/iliyamo/seat-hold-engine/internal/model"
	"github.com/iliyamo/seat-hold-engine/internal/repository"
)

// Error kinds returned by the booking service.  Every error it returns
// matches exactly one of them under errors.Is.
var (
	ErrValidation   = errors.New("invalid request")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid booking state")
	ErrExpired      = errors.New("booking has expired")
	ErrInternal     = errors.New("internal error")
)

// UnavailableSeatsError reports the seats that were not AVAILABLE when a
// reservation was attempted.  It is a Conflict.
type UnavailableSeatsError struct {
	SeatNumbers []int
}

func (e *UnavailableSeatsError) Error() string {
	nums := make([]string, len(e.SeatNumbers))
	for i, n := range e.SeatNumbers {
		nums[i] = strconv.Itoa(n)
	}
	return "some seats are not available: " + strings.Join(nums, ", ")
}

func (e *UnavailableSeatsError) Is(target error) bool { return target == ErrConflict }

// InvalidStateError carries the current status of a booking that cannot be
// confirmed.
type InvalidStateError struct {
	Status model.BookingStatus
}

func (e *InvalidStateError) Error() string {
	return "booking cannot be confirmed, current status: " + string(e.Status)
}

func (e *InvalidStateError) Is(target error) bool { return target == ErrInvalidState }

// storeErr classifies a database failure.  Lock timeouts and deadlocks mean
// the transaction lost a race and are reported as Conflict.
func storeErr(op string, err error) error {
	if repository.IsLockConflict(err) {
		return fmt.Errorf("%w: %s: %w", ErrConflict, op, err)
	}
	return fmt.Errorf("%w: %s: %w", ErrInternal, op, err)
}

// Result maps an error returned by the service to a metrics label.
func Result(err error) string {
	switch {
	case err == nil:
		return metrics.ResultSuccess
	case errors.Is(err, ErrValidation):
		return metrics.ResultValidation
	case errors.Is(err, ErrNotFound):
		return metrics.ResultNotFound
	case errors.Is(err, ErrConflict):
		return metrics.ResultConflict
	case errors.Is(err, ErrInvalidState):
		return metrics.ResultInvalidState
	case errors.Is(err, ErrExpired):
		return metrics.ResultExpired
	default:
		return metrics.ResultInternal
	}
}
