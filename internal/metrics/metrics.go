package metrics

import (
	"net/http"
	"time"

	"bloodlink/pkg/types"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	OutcomeMatched   = "matched"
	OutcomeUnmatched = "unmatched"
	OutcomeInvalid   = "invalid"
	OutcomeError     = "error"
)

// Metrics holds the Prometheus collectors for the blood request flow. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	gatherer prometheus.Gatherer

	BloodRequests *prometheus.CounterVec
	DonorMatches  *prometheus.CounterVec
	MatchDuration prometheus.Histogram
}

// New registers the collectors with reg. Pass prometheus.NewRegistry() in tests.
func New(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		gatherer: reg,
		BloodRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bloodlink_blood_requests_total",
			Help: "Blood requests submitted, by outcome",
		}, []string{"outcome"}),
		DonorMatches: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bloodlink_donor_matches_total",
			Help: "Donors returned by the matching engine, by match type",
		}, []string{"match_type"}),
		MatchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "bloodlink_match_duration_seconds",
			Help:    "Time spent computing donor matches",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) IncBloodRequest(outcome string) {
	if m == nil {
		return
	}
	m.BloodRequests.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveMatch(result *types.MatchResult, took time.Duration) {
	if m == nil || result == nil {
		return
	}

	m.MatchDuration.Observe(took.Seconds())
	m.DonorMatches.WithLabelValues(string(types.MatchTypeExactSameCity)).Add(float64(len(result.MatchingDonors.ExactMatches)))
	m.DonorMatches.WithLabelValues(string(types.MatchTypeCompatibleSameCity)).Add(float64(len(result.MatchingDonors.CompatibleMatches)))
	m.DonorMatches.WithLabelValues(string(types.MatchTypeExactOtherCity)).Add(float64(len(result.MatchingDonors.OtherCityMatches)))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
