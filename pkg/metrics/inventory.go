package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// InventoryMetrics métricas del ejecutor de movimientos y de las transiciones de documentos.
// Un *InventoryMetrics nil (o sin registrador) no registra nada.
type InventoryMetrics struct {
	batchDuration *prometheus.HistogramVec
	batches       *prometheus.CounterVec
	ledgerEntries *prometheus.CounterVec
	transitions   *prometheus.CounterVec
	violations    prometheus.Counter
}

// NewInventoryMetrics registra las métricas en el registrador dado.
func NewInventoryMetrics(reg prometheus.Registerer) *InventoryMetrics {
	if reg == nil {
		return &InventoryMetrics{}
	}
	batchDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "stock_movement_batch_duration_seconds",
		Help:    "Duración de la aplicación de lotes de movimientos.",
		Buckets: prometheus.DefBuckets,
	}, []string{"document_kind"})
	batches := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_movement_batches_total",
		Help: "Lotes de movimientos por resultado.",
	}, []string{"document_kind", "result"})
	ledgerEntries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_ledger_entries_total",
		Help: "Asientos de kardex escritos.",
	}, []string{"document_type"})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "document_transitions_total",
		Help: "Transiciones de documentos por resultado.",
	}, []string{"document_kind", "transition", "result"})
	violations := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "stock_invariant_violations_total",
		Help: "Violaciones de invariantes detectadas por el ejecutor.",
	})
	reg.MustRegister(batchDuration, batches, ledgerEntries, transitions, violations)
	return &InventoryMetrics{
		batchDuration: batchDuration,
		batches:       batches,
		ledgerEntries: ledgerEntries,
		transitions:   transitions,
		violations:    violations,
	}
}

// ObserveBatch registra duración y resultado de un lote.
func (m *InventoryMetrics) ObserveBatch(kind, result string, d time.Duration) {
	if m == nil || m.batches == nil {
		return
	}
	kind = normalizeLabel(kind)
	m.batchDuration.WithLabelValues(kind).Observe(d.Seconds())
	m.batches.WithLabelValues(kind, normalizeLabel(result)).Inc()
}

// AddLedgerEntries suma asientos escritos de un tipo.
func (m *InventoryMetrics) AddLedgerEntries(docType string, n int) {
	if m == nil || m.ledgerEntries == nil || n == 0 {
		return
	}
	m.ledgerEntries.WithLabelValues(normalizeLabel(docType)).Add(float64(n))
}

// IncTransition cuenta una transición de documento.
func (m *InventoryMetrics) IncTransition(kind, transition, result string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(kind), normalizeLabel(transition), normalizeLabel(result)).Inc()
}

// IncInvariantViolation cuenta una violación de invariante.
func (m *InventoryMetrics) IncInvariantViolation() {
	if m == nil || m.violations == nil {
		return
	}
	m.violations.Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
