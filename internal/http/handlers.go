package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/doubles-ladder/internal/ladder"
	"github.com/mauv0809/doubles-ladder/internal/rating"
	"github.com/mauv0809/doubles-ladder/internal/recorder"
	"github.com/mauv0809/doubles-ladder/internal/team"
)

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case rating.IsValidation(err),
		errors.Is(err, team.ErrSamePlayer),
		errors.Is(err, ladder.ErrInvalidName),
		errors.Is(err, recorder.ErrInvalidDate):
		return http.StatusBadRequest
	case errors.Is(err, ladder.ErrNotFound),
		errors.Is(err, rating.ErrPlayerNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Failed to write response", "error", err)
	}
}

// writeError hides internal errors from the client.
func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = http.StatusText(status)
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

func playerIDFromPath(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid player id %q", r.PathValue("id"))
	}
	return id, nil
}

func (s *Server) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.FromContext(r.Context()).Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

func (s *Server) ListPlayersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		players, err := s.Store.GetAllPlayers(r.Context())
		if err != nil {
			log.FromContext(r.Context()).Error("Failed to get players from store", "error", err)
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, players)
	}
}

func (s *Server) RegisterPlayerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerPlayerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid JSON"})
			return
		}
		player, err := s.Store.AddPlayer(r.Context(), req.Name)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, player)
	}
}

func (s *Server) GetPlayerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := playerIDFromPath(r)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		player, err := s.Store.GetPlayer(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, player)
	}
}

func (s *Server) RatingHistoryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := playerIDFromPath(r)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		history, err := s.Store.GetRatingHistory(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, history)
	}
}

func (s *Server) ListTeamsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		teams, err := s.Store.GetAllTeams(r.Context())
		if err != nil {
			log.FromContext(r.Context()).Error("Failed to get teams from store", "error", err)
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, teams)
	}
}

// ListMatchesHandler lists matches newest first. With ?group=date they are
// grouped per day.
func (s *Server) ListMatchesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matches, err := s.Store.GetAllMatches(r.Context())
		if err != nil {
			log.FromContext(r.Context()).Error("Failed to get matches from store", "error", err)
			writeError(w, err)
			return
		}
		if r.URL.Query().Get("group") == "date" {
			writeJSON(w, http.StatusOK, ladder.GroupMatchesByDate(matches))
			return
		}
		writeJSON(w, http.StatusOK, matches)
	}
}

func (s *Server) RecordMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var sub recorder.Submission
		if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid JSON"})
			return
		}
		isDryRun := isDryRunFromContext(r)
		record, err := s.Recorder.RecordMatch(r.Context(), sub, isDryRun)
		if err != nil {
			writeError(w, err)
			return
		}
		status := http.StatusCreated
		if isDryRun {
			status = http.StatusOK
		}
		writeJSON(w, status, record)
	}
}

func (s *Server) LeaderboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		players, err := s.Store.GetAllPlayers(r.Context())
		if err != nil {
			log.FromContext(r.Context()).Error("Failed to get players from store", "error", err)
			writeError(w, err)
			return
		}
		entries := make([]LeaderboardEntry, len(players))
		for i, p := range players {
			entries[i] = LeaderboardEntry{Rank: i + 1, Player: p}
		}
		writeJSON(w, http.StatusOK, entries)
	}
}
