package notification

import (
	"encoding/json"
	"log"

	"go-pharma-store/internal/ws"
)

// Message is a user-facing push payload. Metadata carries extras like the
// order id for admin notifications.
type Message struct {
	Title    string            `json:"title"`
	Body     string            `json:"body"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Dispatcher delivers a message to one recipient token. Delivery is
// fire-and-forget: callers must treat a returned error as non-fatal.
type Dispatcher interface {
	Notify(token string, msg Message) error
}

type hubDispatcher struct {
	hub *ws.Hub
}

// NewHubDispatcher sends notifications over the websocket hub to whichever
// connections registered the recipient's device token.
func NewHubDispatcher(hub *ws.Hub) Dispatcher {
	return &hubDispatcher{hub: hub}
}

func (d *hubDispatcher) Notify(token string, msg Message) error {
	payload, err := json.Marshal(map[string]interface{}{
		"type":     "notification",
		"title":    msg.Title,
		"body":     msg.Body,
		"metadata": msg.Metadata,
	})
	if err != nil {
		return err
	}
	d.hub.Direct <- ws.Envelope{Token: token, Payload: payload}
	return nil
}

// Send is the best-effort helper services use: it fans one message out to a
// set of recipient tokens and only logs failures.
func Send(d Dispatcher, tokens []string, msg Message) {
	for _, token := range tokens {
		if err := d.Notify(token, msg); err != nil {
			log.Printf("notification delivery failed for token %s: %v", token, err)
		}
	}
}
