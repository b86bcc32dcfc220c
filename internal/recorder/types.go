package recorder

import (
	"errors"
	"time"

	"github.com/mauv0809/doubles-ladder/internal/metrics"
	"github.com/mauv0809/doubles-ladder/internal/pubsub"
	"golang.org/x/sync/semaphore"
)

var ErrInvalidDate = errors.New("match date must be formatted as YYYY-MM-DD")

// errDryRun aborts the transaction of a dry run after everything was computed.
var errDryRun = errors.New("dry run")

// Recorder validates match submissions and applies them to the ladder atomically.
type Recorder struct {
	store    Store
	pubsub   pubsub.PubSubClient
	notifier Notifier
	metrics  metrics.Metrics
	gate     *semaphore.Weighted
	now      func() time.Time
}

// Submission is a reported match result. Team members may be given in any order.
type Submission struct {
	Team1       [2]int64 `json:"team1"`
	Team2       [2]int64 `json:"team2"`
	Team1Points int      `json:"team1_points"`
	Team2Points int      `json:"team2_points"`
	// Date is YYYY-MM-DD. Empty means today.
	Date string `json:"date,omitempty"`
}
