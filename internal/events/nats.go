package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nats-io/nats.go"
)

// subjectPrefix is the root of the offer-event subject hierarchy, e.g.
// trueque.offers.accepted.
const subjectPrefix = "trueque.offers"

// NATSEmitter publishes offer events as JSON to a NATS subject per event
// type. Publish failures are logged and dropped; the offer has already
// committed by the time an event is emitted.
type NATSEmitter struct {
	conn *nats.Conn
}

// NewNATSEmitter connects to a NATS server.
func NewNATSEmitter(url string) (*NATSEmitter, error) {
	conn, err := nats.Connect(url, nats.Name("trueque"))
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS: %w", err)
	}
	return &NATSEmitter{conn: conn}, nil
}

func (e *NATSEmitter) Emit(_ context.Context, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		slog.Error("marshaling offer event", "event_id", ev.ID, "error", err)
		return
	}

	subject := subjectPrefix + "." + strings.TrimPrefix(string(ev.Type), "offer.")
	if err := e.conn.Publish(subject, data); err != nil {
		slog.Error("publishing offer event", "event_id", ev.ID, "subject", subject, "error", err)
	}
}

// Close drains the connection.
func (e *NATSEmitter) Close() {
	if err := e.conn.Drain(); err != nil {
		slog.Error("draining NATS connection", "error", err)
	}
}
