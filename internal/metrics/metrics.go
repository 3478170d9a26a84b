// Package metrics provides Prometheus metrics for the goal market analysis.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"

	"github.com/cypherlabdev/goals-ev-service/internal/models"
)

// Metrics collects and exposes analysis metrics on its own registry
type Metrics struct {
	registry *prometheus.Registry

	EvaluationsTotal   *prometheus.CounterVec
	EvaluationDuration prometheus.Histogram
	ModelProbability   *prometheus.HistogramVec
	ModelConfidence    prometheus.Histogram
	OpportunitiesTotal *prometheus.CounterVec
	OpportunityEV      *prometheus.HistogramVec
	StakeAmount        *prometheus.HistogramVec
	Rejections         *prometheus.CounterVec
	Notifications      *prometheus.CounterVec

	CyclesTotal      *prometheus.CounterVec
	CycleDuration    prometheus.Histogram
	CycleRunning     prometheus.Gauge
	ProviderRequests *prometheus.CounterVec
	KafkaMessages    *prometheus.CounterVec
}

// NewMetrics creates a new metrics collector
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		EvaluationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goals_ev_evaluations_total",
				Help: "Fixtures evaluated, by league and criteria outcome",
			},
			[]string{"league", "reason"},
		),
		EvaluationDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "goals_ev_evaluation_duration_seconds",
				Help:    "Time to evaluate one fixture including caching",
				Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
			},
		),
		ModelProbability: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "goals_ev_model_probability",
				Help:    "Model probability per market",
				Buckets: prometheus.LinearBuckets(0.3, 0.05, 14),
			},
			[]string{"market"},
		),
		ModelConfidence: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "goals_ev_model_confidence",
				Help:    "Model confidence per scored fixture",
				Buckets: prometheus.LinearBuckets(0.4, 0.05, 13),
			},
		),
		OpportunitiesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goals_ev_opportunities_total",
				Help: "Value opportunities found, by league and market",
			},
			[]string{"league", "market"},
		),
		OpportunityEV: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "goals_ev_opportunity_ev_percent",
				Help:    "Expected value of recommended bets in percent",
				Buckets: []float64{5, 7.5, 10, 15, 20, 30, 50},
			},
			[]string{"market"},
		),
		StakeAmount: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "goals_ev_stake_amount",
				Help:    "Recommended stake in bankroll currency",
				Buckets: []float64{1, 5, 10, 20, 30, 40, 50, 100},
			},
			[]string{"market"},
		),
		Rejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goals_ev_market_rejections_total",
				Help: "Markets rejected by the EV gates, by reason",
			},
			[]string{"market", "reason"},
		),
		Notifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goals_ev_notifications_total",
				Help: "Chat notifications, by kind and status",
			},
			[]string{"kind", "status"},
		),
		CyclesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goals_ev_cycles_total",
				Help: "Analysis cycles, by status",
			},
			[]string{"status"},
		),
		CycleDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "goals_ev_cycle_duration_seconds",
				Help:    "Duration of a full analysis cycle",
				Buckets: prometheus.ExponentialBuckets(1, 2, 10),
			},
		),
		CycleRunning: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "goals_ev_cycle_running",
				Help: "1 while an analysis cycle is in progress",
			},
		),
		ProviderRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goals_ev_provider_requests_total",
				Help: "Statistics provider calls, by endpoint and source",
			},
			[]string{"endpoint", "source"},
		),
		KafkaMessages: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goals_ev_kafka_messages_total",
				Help: "Kafka messages, by direction and status",
			},
			[]string{"direction", "status"},
		),
	}

	m.registry.MustRegister(
		m.EvaluationsTotal,
		m.EvaluationDuration,
		m.ModelProbability,
		m.ModelConfidence,
		m.OpportunitiesTotal,
		m.OpportunityEV,
		m.StakeAmount,
		m.Rejections,
		m.Notifications,
		m.CyclesTotal,
		m.CycleDuration,
		m.CycleRunning,
		m.ProviderRequests,
		m.KafkaMessages,
	)

	return m
}

// Registry returns the Prometheus registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// OtherLeague labels evaluations of leagues outside the configured set
const OtherLeague = "other"

// RecordEvaluation records the outcome of one fixture evaluation under the given league label
func (m *Metrics) RecordEvaluation(eval *models.Evaluation, league string, durationSec float64) {
	m.EvaluationsTotal.WithLabelValues(league, string(eval.Criteria.Reason)).Inc()
	m.EvaluationDuration.Observe(durationSec)

	if eval.Probability != nil {
		m.ModelProbability.WithLabelValues(string(models.MarketOverLow)).Observe(eval.Probability.PLow)
		m.ModelProbability.WithLabelValues(string(models.MarketOverHigh)).Observe(eval.Probability.PHigh)
		m.ModelConfidence.Observe(eval.Probability.Confidence)
	}

	if eval.Comparison == nil {
		return
	}
	for _, exp := range eval.Comparison.Explanations {
		if exp.Rejected != models.RejectNone {
			m.Rejections.WithLabelValues(string(exp.Market), string(exp.Rejected)).Inc()
		}
	}
	if best := eval.Comparison.Best; best != nil {
		m.OpportunitiesTotal.WithLabelValues(league, string(best.Market)).Inc()
		m.OpportunityEV.WithLabelValues(string(best.Market)).Observe(best.EVPercent)
		m.StakeAmount.WithLabelValues(string(best.Market)).Observe(DecimalToFloat64(best.StakeAmount))
	}
}

// RecordNotification records a chat notification attempt
func (m *Metrics) RecordNotification(kind, status string) {
	m.Notifications.WithLabelValues(kind, status).Inc()
}

// RecordCycle records a finished analysis cycle
func (m *Metrics) RecordCycle(status string, durationSec float64) {
	m.CyclesTotal.WithLabelValues(status).Inc()
	m.CycleDuration.Observe(durationSec)
}

// SetCycleRunning flips the running gauge
func (m *Metrics) SetCycleRunning(running bool) {
	if running {
		m.CycleRunning.Set(1)
		return
	}
	m.CycleRunning.Set(0)
}

// RecordProviderRequest records a provider call served from the network or the cache
func (m *Metrics) RecordProviderRequest(endpoint, source string) {
	m.ProviderRequests.WithLabelValues(endpoint, source).Inc()
}

// RecordKafkaMessage records a consumed or produced Kafka message
func (m *Metrics) RecordKafkaMessage(direction, status string) {
	m.KafkaMessages.WithLabelValues(direction, status).Inc()
}

// DecimalToFloat64 converts decimal to float64 for metrics
func DecimalToFloat64(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}
