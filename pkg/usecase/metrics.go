package usecase

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/secmon-lab/briareos/pkg/domain/model"
	"github.com/secmon-lab/briareos/pkg/domain/types"
)

const metricsNamespace = "briareos"

// Metrics holds the counters of draft generation and acceptance
type Metrics struct {
	drafts      *prometheus.CounterVec
	escalations *prometheus.CounterVec
	toolCalls   *prometheus.CounterVec
	memorySync  *prometheus.CounterVec
}

// NewMetrics creates the counters and registers them when reg is not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		drafts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "draft_generations_total",
			Help:      "Generated drafts by the tier that produced the text.",
		}, []string{"tier"}),
		escalations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "draft_escalations_total",
			Help:      "Fallback tiers entered after an empty result.",
		}, []string{"to_tier"}),
		toolCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "tool_calls_total",
			Help:      "Tool calls observed in agent transcripts.",
		}, []string{"tool", "status"}),
		memorySync: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "memory_sync_total",
			Help:      "Memory enrichment outcomes on draft acceptance.",
		}, []string{"status"}),
	}
	if reg != nil {
		reg.MustRegister(m.drafts, m.escalations, m.toolCalls, m.memorySync)
	}
	return m
}

func (m *Metrics) observeDraft(tier types.GenerationTier, traces []model.ToolCallTrace) {
	if m == nil {
		return
	}
	m.drafts.WithLabelValues(tier.String()).Inc()
	for _, tr := range traces {
		m.toolCalls.WithLabelValues(tr.ToolName, tr.Status.String()).Inc()
	}
}

func (m *Metrics) observeEscalation(to types.GenerationTier) {
	if m == nil {
		return
	}
	m.escalations.WithLabelValues(to.String()).Inc()
}

func (m *Metrics) observeMemorySync(status types.MemorySyncStatus) {
	if m == nil {
		return
	}
	m.memorySync.WithLabelValues(string(status)).Inc()
}
