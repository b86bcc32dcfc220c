package metrics

import "github.com/prometheus/client_golang/prometheus"

// Service holds all the Prometheus metrics for the application.
type Service struct {
	MatchesRecorded    prometheus.Counter
	MatchesRejected    *prometheus.CounterVec
	RatingDelta        prometheus.Histogram
	RecordDuration     prometheus.Histogram
	SlackNotifSent     prometheus.Counter
	SlackNotifFailed   prometheus.Counter
	EventsPublished    prometheus.Counter
	StartupTimeSeconds prometheus.Gauge
}

// Rejection reasons used as the "reason" label of MatchesRejected.
const (
	ReasonDuplicatePlayer = "duplicate_player"
	ReasonTie             = "tie"
	ReasonInvalidPoints   = "invalid_points"
	ReasonInvalidDate     = "invalid_date"
	ReasonPlayerNotFound  = "player_not_found"
)
