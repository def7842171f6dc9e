package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// OutcomeSuccess labels recommendation requests that produced rankings.
	OutcomeSuccess = "success"
	// OutcomeError labels failed recommendation requests.
	OutcomeError = "error"

	// SourceCommunity labels feedback entries shared across users.
	SourceCommunity = "community"
	// SourceUser labels feedback entries feeding a single user profile.
	SourceUser = "user"
)

var (
	recommendationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vizrec",
			Name:      "recommendations_total",
			Help:      "Total number of recommendation requests handled, partitioned by outcome.",
		},
		[]string{"outcome"},
	)

	recommendationDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "vizrec",
			Name:      "recommendation_seconds",
			Help:      "Recommendation pipeline latency in seconds.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2},
		},
	)

	feedbackEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vizrec",
			Name:      "feedback_events_total",
			Help:      "Total number of feedback events recorded, partitioned by source.",
		},
		[]string{"source"},
	)

	trackedUsers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "vizrec",
			Name:      "tracked_users",
			Help:      "Number of users with an open interaction tracking session.",
		},
	)
)

// Register attaches vizrec collectors to the supplied Prometheus registerer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		recommendationsTotal,
		recommendationDurationSeconds,
		feedbackEventsTotal,
		trackedUsers,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// ObserveRecommendation records a recommendation duration and outcome label.
func ObserveRecommendation(duration time.Duration, outcome string) {
	label := outcome
	if label != OutcomeError {
		label = OutcomeSuccess
	}
	recommendationsTotal.WithLabelValues(label).Inc()
	if duration < 0 {
		duration = 0
	}
	recommendationDurationSeconds.Observe(duration.Seconds())
}

// CountFeedback increments the feedback counter for the given source.
func CountFeedback(source string) {
	if source != SourceUser {
		source = SourceCommunity
	}
	feedbackEventsTotal.WithLabelValues(source).Inc()
}

// SetTrackedUsers reports the current number of open tracking sessions.
func SetTrackedUsers(n int) {
	trackedUsers.Set(float64(n))
}
