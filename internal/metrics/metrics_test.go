package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegisters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.Reservations.WithLabelValues(ResultSuccess).Inc()
	m.Reservations.WithLabelValues(ResultConflict).Add(2)
	m.Swept.Add(3)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Reservations.WithLabelValues(ResultSuccess)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Reservations.WithLabelValues(ResultConflict)))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.Swept))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["seat_engine_reservations_total"])
	assert.True(t, names["seat_engine_swept_bookings_total"])
}

func TestNewWithoutRegistry(t *testing.T) {
	assert.NotPanics(t, func() {
		New(nil).Confirmations.WithLabelValues(ResultExpired).Inc()
		New(nil).Confirmations.WithLabelValues(ResultExpired).Inc()
	})
}
