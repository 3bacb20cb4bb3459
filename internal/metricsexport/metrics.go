// Package metricsexport publishes per-day simulation scalars as Prometheus
// gauges/counters, in the same promauto style used elsewhere in the corpus
// for service-level observability.
package metricsexport

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/talgya/cooperationsim/internal/orchestrator"
)

var (
	// CooperationRate tracks the most recent day's cooperation rate, labeled
	// by scenario so multiple concurrent runs don't collide.
	CooperationRate = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "cooperationsim",
		Subsystem: "daily",
		Name:      "cooperation_rate",
		Help:      "Share of task executions with more than one participant on the most recent simulated day.",
	}, []string{"scenario"})

	// EnergyBalance tracks the day's summed reward shares minus energy costs.
	EnergyBalance = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "cooperationsim",
		Subsystem: "daily",
		Name:      "energy_balance",
		Help:      "Sum of task reward shares minus task energy costs on the most recent simulated day.",
	}, []string{"scenario"})

	// InequalityIndex tracks the mean Fehr-Schmidt utility of task reward
	// shares.
	InequalityIndex = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "cooperationsim",
		Subsystem: "daily",
		Name:      "inequality_index",
		Help:      "Inequality index of task reward shares on the most recent simulated day.",
	}, []string{"scenario"})

	// NetworkAssortativity tracks same-camp edge share.
	NetworkAssortativity = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "cooperationsim",
		Subsystem: "daily",
		Name:      "network_assortativity",
		Help:      "Share of social-network edges connecting agents in the same camp.",
	}, []string{"scenario"})

	// NetworkReciprocity tracks mutual-edge share.
	NetworkReciprocity = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "cooperationsim",
		Subsystem: "daily",
		Name:      "network_reciprocity",
		Help:      "Share of social-network edges with a reciprocal counterpart.",
	}, []string{"scenario"})

	// RiskIncidentsTotal accumulates task-execution injuries across days.
	RiskIncidentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cooperationsim",
		Subsystem: "daily",
		Name:      "risk_incidents_total",
		Help:      "Cumulative count of task-execution injuries.",
	}, []string{"scenario"})

	// DaysSimulatedTotal counts completed StepDay calls.
	DaysSimulatedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cooperationsim",
		Subsystem: "run",
		Name:      "days_simulated_total",
		Help:      "Cumulative number of simulated days.",
	}, []string{"scenario"})
)

// Observe records one day's DailyMetrics for scenario.
func Observe(scenario string, metrics orchestrator.DailyMetrics) {
	CooperationRate.WithLabelValues(scenario).Set(metrics.CooperationRate)
	EnergyBalance.WithLabelValues(scenario).Set(metrics.EnergyBalance)
	InequalityIndex.WithLabelValues(scenario).Set(metrics.InequalityIndex)
	NetworkAssortativity.WithLabelValues(scenario).Set(metrics.NetworkAssortativity)
	NetworkReciprocity.WithLabelValues(scenario).Set(metrics.NetworkReciprocity)
	RiskIncidentsTotal.WithLabelValues(scenario).Add(float64(metrics.RiskIncidents))
	DaysSimulatedTotal.WithLabelValues(scenario).Inc()
}
