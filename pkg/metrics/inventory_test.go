package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestInventoryMetrics_Registra(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewInventoryMetrics(reg)

	m.ObserveBatch("receipt", "ok", 5*time.Millisecond)
	m.ObserveBatch("receipt", "ok", time.Millisecond)
	m.ObserveBatch("", "insufficient_stock", time.Millisecond)
	m.AddLedgerEntries("receipt", 3)
	m.IncTransition("delivery", "ship", "conflict")
	m.IncInvariantViolation()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.batches.WithLabelValues("receipt", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.batches.WithLabelValues("unknown", "insufficient_stock")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.ledgerEntries.WithLabelValues("receipt")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.transitions.WithLabelValues("delivery", "ship", "conflict")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.violations))
}

func TestInventoryMetrics_NilEsSeguro(t *testing.T) {
	var m *InventoryMetrics
	assert.NotPanics(t, func() {
		m.ObserveBatch("receipt", "ok", time.Second)
		m.AddLedgerEntries("receipt", 1)
		m.IncTransition("receipt", "validate", "ok")
		m.IncInvariantViolation()
	})
	assert.NotPanics(t, func() {
		NewInventoryMetrics(nil).ObserveBatch("receipt", "ok", time.Second)
	})
}
