package handlers

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/courtside/internal/notifier"
	"github.com/mauv0809/courtside/internal/processor"
	"github.com/mauv0809/courtside/internal/pubsub"
)

// PushMessage is the body Pub/Sub posts to a push subscription.
type PushMessage struct {
	Subscription string `json:"subscription"`
	Message      struct {
		Data string `json:"data"` // base64-encoded msgpack payload
	} `json:"message"`
}

// EventHandler receives push deliveries for /events/{topic}. A non-2xx reply
// makes Pub/Sub redeliver, so only decoding problems answer 400.
func EventHandler(p *processor.Processor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		event := pubsub.EventType(r.PathValue("topic"))
		if !event.Valid() {
			badRequest(w, "unknown event %q", event)
			return
		}

		bodyBytes, err := io.ReadAll(r.Body)
		if err != nil {
			log.Error("Failed to read request body", "error", err)
			http.Error(w, "Failed to read request body", http.StatusInternalServerError)
			return
		}
		log.Debug("Received push message", "event", event, "body", string(bodyBytes))

		var msg PushMessage
		if err := json.Unmarshal(bodyBytes, &msg); err != nil {
			log.Error("Failed to unmarshal wrapper JSON", "error", err)
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		rawData, err := base64.StdEncoding.DecodeString(msg.Message.Data)
		if err != nil {
			log.Error("Failed to decode base64 data", "error", err)
			http.Error(w, "Invalid base64 data", http.StatusBadRequest)
			return
		}

		if err := p.Handle(event, rawData, notifier.IsDryRun(r.Context())); err != nil {
			log.Error("Failed to process event", "event", event, "error", err)
			http.Error(w, "Failed to process event", http.StatusInternalServerError)
			return
		}
		w.Write([]byte("OK"))
	}
}
