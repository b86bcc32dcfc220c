package http

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/mauv0809/doubles-ladder/internal/config"
	"github.com/mauv0809/doubles-ladder/internal/ladder"
	"github.com/mauv0809/doubles-ladder/internal/metrics"
	"github.com/mauv0809/doubles-ladder/internal/notifier"
	"github.com/mauv0809/doubles-ladder/internal/pubsub"
	"github.com/mauv0809/doubles-ladder/internal/recorder"
)

func NewServer(store ladder.LadderStore, rec *recorder.Recorder, metricsSvc metrics.Metrics, metricsHandler http.Handler, cfg config.Config, notifier notifier.Notifier, pubsub pubsub.PubSubClient) *Server {
	server := &Server{
		Store:          store,
		Recorder:       rec,
		Metrics:        metricsSvc,
		MetricsHandler: metricsHandler,
		Cfg:            cfg,
		Notifier:       notifier,
		Router:         http.NewServeMux(),
		pubsub:         pubsub,
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	// All handlers are wrapped with middleware using the Chain helper.
	// e.g. Chain(s.MyHandler(), paramsMiddleware, authMiddleware)
	base := []Middleware{middleware.RequestID, middleware.Recoverer, paramsMiddleware}
	slack := append(base[:len(base):len(base)], slackVerifier(s.Cfg.Slack.SigningSecret))

	s.Router.Handle("GET /metrics", s.MetricsHandler)
	s.Router.Handle("GET /health", Chain(s.HealthCheckHandler(), base...))

	s.Router.Handle("GET /players", Chain(s.ListPlayersHandler(), base...))
	s.Router.Handle("POST /players", Chain(s.RegisterPlayerHandler(), base...))
	s.Router.Handle("GET /players/{id}", Chain(s.GetPlayerHandler(), base...))
	s.Router.Handle("GET /players/{id}/history", Chain(s.RatingHistoryHandler(), base...))
	s.Router.Handle("GET /teams", Chain(s.ListTeamsHandler(), base...))
	s.Router.Handle("GET /matches", Chain(s.ListMatchesHandler(), base...))
	s.Router.Handle("POST /matches", Chain(s.RecordMatchHandler(), base...))
	s.Router.Handle("GET /leaderboard", Chain(s.LeaderboardHandler(), base...))

	s.Router.Handle("POST /slack/command/leaderboard", Chain(s.LeaderboardCommandHandler(), slack...))
	s.Router.Handle("POST /slack/command/player-stats", Chain(s.PlayerStatsCommandHandler(), slack...))
	s.Router.Handle("POST /slack/command/team-leaderboard", Chain(s.TeamLeaderboardCommandHandler(), slack...))

	s.Router.Handle("POST /scheduled/leaderboard", Chain(s.PostLeaderboardHandler(), base...))
	s.Router.Handle("POST /events/match-recorded", Chain(s.MatchRecordedHandler(), base...))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
