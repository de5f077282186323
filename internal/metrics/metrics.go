// Package metrics provides the centralized Prometheus registry for the
// challenge tracker.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	RacesRecordedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "challenge_tracker",
		Name:      "races_recorded_total",
		Help:      "Total number of race results accepted into trackers",
	})
	SubmissionsRejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "challenge_tracker",
		Name:      "submissions_rejected_total",
		Help:      "Total number of rejected tracker mutations by reason",
	}, []string{"reason"})
	OddsRefreshesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "challenge_tracker",
		Name:      "odds_refreshes_total",
		Help:      "Total number of odds refresh cycles applied to trackers",
	})
	FeedFetchErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "challenge_tracker",
		Name:      "feed_fetch_errors_total",
		Help:      "Total number of failed bookmaker feed fetches by source",
	}, []string{"source"})
)

// Gauge metrics
var (
	TrackersActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "challenge_tracker",
		Name:      "trackers_active",
		Help:      "Number of trackers currently held in the store",
	})
	ValueBetsCurrent = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "challenge_tracker",
		Name:      "value_bets_current",
		Help:      "Participants currently classified as value per meeting",
	}, []string{"meeting"})
	SourcesReporting = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "challenge_tracker",
		Name:      "sources_reporting",
		Help:      "Bookmaker feeds that returned data on the last collection cycle",
	})
)

// Histogram metrics
var (
	MergeDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "challenge_tracker",
		Name:      "odds_merge_duration_seconds",
		Help:      "Duration of odds reconciliation per meeting in seconds",
		Buckets:   prometheus.DefBuckets,
	})
	AggregateDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "challenge_tracker",
		Name:      "standings_aggregate_duration_seconds",
		Help:      "Duration of standings replay per meeting in seconds",
		Buckets:   prometheus.DefBuckets,
	})
	CollectionDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "challenge_tracker",
		Name:      "feed_collection_duration_seconds",
		Help:      "Duration of a full multi-source collection cycle in seconds",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30},
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(RacesRecordedTotal)
		registry.MustRegister(SubmissionsRejectedTotal)
		registry.MustRegister(OddsRefreshesTotal)
		registry.MustRegister(FeedFetchErrorsTotal)

		registry.MustRegister(TrackersActive)
		registry.MustRegister(ValueBetsCurrent)
		registry.MustRegister(SourcesReporting)

		registry.MustRegister(MergeDuration)
		registry.MustRegister(AggregateDuration)
		registry.MustRegister(CollectionDuration)
	})
	return registry
}

// Handler returns an HTTP handler exposing the registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(InitRegistry(), promhttp.HandlerOpts{})
}
