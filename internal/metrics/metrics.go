// Package metrics exposes Prometheus counters for reservation outcomes.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels.
const (
	ResultSuccess      = "success"
	ResultValidation   = "validation"
	ResultNotFound     = "not_found"
	ResultConflict     = "conflict"
	ResultInvalidState = "invalid_state"
	ResultExpired      = "expired"
	ResultInternal     = "internal"
)

// Engine holds the counters updated by the booking service.
type Engine struct {
	Reservations  *prometheus.CounterVec
	Confirmations *prometheus.CounterVec
	Swept         prometheus.Counter
	SweepErrors   prometheus.Counter
}

// New registers the engine counters with reg.  A nil reg leaves them
// unregistered, which suits tests.
func New(reg prometheus.Registerer) *Engine {
	f := promauto.With(reg)
	return &Engine{
		Reservations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "seat_engine",
			Name:      "reservations_total",
			Help:      "Reserve calls by outcome.",
		}, []string{"result"}),
		Confirmations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "seat_engine",
			Name:      "confirmations_total",
			Help:      "Confirm calls by outcome.",
		}, []string{"result"}),
		Swept: f.NewCounter(prometheus.CounterOpts{
			Namespace: "seat_engine",
			Name:      "swept_bookings_total",
			Help:      "Expired bookings released by sweeps.",
		}),
		SweepErrors: f.NewCounter(prometheus.CounterOpts{
			Namespace: "seat_engine",
			Name:      "sweep_errors_total",
			Help:      "Sweeps that stopped on a store error.",
		}),
	}
}
