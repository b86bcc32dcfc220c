package http

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/doubles-ladder/internal/ladder"
)

// MatchRecordedHandler receives match-recorded events from a Pub/Sub push
// subscription and posts the result to Slack. A non-2xx reply makes Pub/Sub retry.
func (s *Server) MatchRecordedHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bodyBytes, err := io.ReadAll(r.Body)
		if err != nil {
			log.FromContext(r.Context()).Error("Failed to read request body", "error", err)
			http.Error(w, "Failed to read request body", http.StatusInternalServerError)
			return
		}
		log.FromContext(r.Context()).Debug("Received match recorded message", "body", string(bodyBytes))

		var envelope pushEnvelope
		if err := json.Unmarshal(bodyBytes, &envelope); err != nil {
			log.FromContext(r.Context()).Error("Failed to unmarshal wrapper JSON", "error", err)
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}

		rawData, err := base64.StdEncoding.DecodeString(envelope.Message.Data)
		if err != nil {
			log.FromContext(r.Context()).Error("Failed to decode base64 data", "error", err)
			http.Error(w, "Invalid base64 data", http.StatusBadRequest)
			return
		}

		var record ladder.MatchRecord
		if err := s.pubsub.ProcessMessage(rawData, &record); err != nil {
			http.Error(w, "Invalid message payload", http.StatusBadRequest)
			return
		}
		if err := s.Recorder.HandleMatchRecorded(&record, isDryRunFromContext(r)); err != nil {
			log.FromContext(r.Context()).Error("Failed to handle match recorded event", "error", err, "matchID", record.Match.ID, "messageID", envelope.Message.ID)
			http.Error(w, "Failed to notify", http.StatusInternalServerError)
			return
		}
		w.Write([]byte("OK"))
	}
}
