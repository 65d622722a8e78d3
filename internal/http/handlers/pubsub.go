package handlers

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/league-reporter/internal/processor"
	"github.com/mauv0809/league-reporter/internal/pubsub"
)

// GamesChangedHandler receives the push subscription of the games-changed
// topic, rebuilds the league tables and tells the league channel.
func GamesChangedHandler(proc *processor.Processor, pubsubClient pubsub.PubSubClient) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bodyBytes, err := io.ReadAll(r.Body)
		if err != nil {
			log.Error("Failed to read request body", "error", err)
			http.Error(w, "Failed to read request body", http.StatusInternalServerError)
			return
		}
		log.Debug("Received games changed message", "body", string(bodyBytes))

		var pubsubMsg struct {
			Subscription string `json:"subscription"`
			Message      struct {
				Data string `json:"data"`
			} `json:"message"`
		}

		if err := json.Unmarshal(bodyBytes, &pubsubMsg); err != nil {
			log.Error("Failed to unmarshal wrapper JSON", "error", err)
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}

		rawData, err := base64.StdEncoding.DecodeString(pubsubMsg.Message.Data)
		if err != nil {
			log.Error("Failed to decode base64 data", "error", err)
			http.Error(w, "Invalid base64 data", http.StatusBadRequest)
			return
		}
		ev := pubsub.GamesChanged{}
		if err := pubsubClient.ProcessMessage(rawData, &ev); err != nil {
			log.Error("Failed to decode games changed event", "error", err)
			http.Error(w, "Invalid message data", http.StatusBadRequest)
			return
		}
		if err := proc.HandleGamesChanged(r.Context(), ev, IsDryRunFromContext(r)); err != nil {
			log.Error("Failed to handle games changed", "error", err, "kind", ev.Kind)
			http.Error(w, "Failed to handle games changed", http.StatusInternalServerError)
			return
		}
		w.Write([]byte("OK"))
	}
}

// RebuildHandler recomputes the player totals and standings on demand.
func RebuildHandler(proc *processor.Processor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if IsDryRunFromContext(r) {
			log.Info("[Dry Run] Would have rebuilt the league tables")
			fmt.Fprintln(w, "Dry run, nothing rebuilt.")
			return
		}
		summary, err := proc.Rebuild(r.Context())
		if err != nil {
			log.Error("Failed to rebuild league tables", "error", err)
			http.Error(w, "Failed to rebuild", http.StatusInternalServerError)
			return
		}
		respondJSON(w, summary)
	}
}
