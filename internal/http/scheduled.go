package http

import (
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
)

// PostLeaderboardHandler posts the current standings to the Slack channel.
// It is meant to be hit by a scheduler.
func (s *Server) PostLeaderboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.FromContext(r.Context()).Info("Posting leaderboard...")
		isDryRun := isDryRunFromContext(r)

		players, err := s.Store.GetAllPlayers(r.Context())
		if err != nil {
			log.FromContext(r.Context()).Error("Failed to get players from store", "error", err)
			http.Error(w, "Failed to get players", http.StatusInternalServerError)
			return
		}
		if err := s.Notifier.SendLeaderboard(players, isDryRun); err != nil {
			log.FromContext(r.Context()).Error("Failed to post leaderboard", "error", err)
			http.Error(w, "Failed to post leaderboard", http.StatusBadGateway)
			return
		}

		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "Leaderboard posted.")
		log.FromContext(r.Context()).Info("Leaderboard posted.", "players", len(players))
	}
}
