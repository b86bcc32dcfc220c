package http

import (
	"net/http"

	"github.com/mauv0809/doubles-ladder/internal/config"
	"github.com/mauv0809/doubles-ladder/internal/ladder"
	"github.com/mauv0809/doubles-ladder/internal/metrics"
	"github.com/mauv0809/doubles-ladder/internal/notifier"
	"github.com/mauv0809/doubles-ladder/internal/pubsub"
	"github.com/mauv0809/doubles-ladder/internal/recorder"
)

type Server struct {
	Store          ladder.LadderStore
	Recorder       *recorder.Recorder
	Metrics        metrics.Metrics
	MetricsHandler http.Handler
	Cfg            config.Config
	Notifier       notifier.Notifier
	Router         *http.ServeMux
	pubsub         pubsub.PubSubClient
}

type registerPlayerRequest struct {
	Name string `json:"name"`
}

// LeaderboardEntry is a ranked player.
type LeaderboardEntry struct {
	Rank int `json:"rank"`
	ladder.Player
}

type errorResponse struct {
	Error string `json:"error"`
}

// pushEnvelope is the body Pub/Sub push subscriptions POST to us.
type pushEnvelope struct {
	Subscription string `json:"subscription"`
	Message      struct {
		ID         string            `json:"messageId"`
		Data       string            `json:"data"` // base64-encoded message payload
		Attributes map[string]string `json:"attributes"`
	} `json:"message"`
}
