// Package events defines the outbound offer events the exchange engine
// publishes after a successful commit. Delivery is best-effort: emitters
// log failures and never propagate them back into the offer workflow.
package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/avillega/trueque/internal/model"
)

// Type identifies what happened to an offer.
type Type string

const (
	TypeOfferCreated   Type = "offer.created"
	TypeOfferAccepted  Type = "offer.accepted"
	TypeOfferRejected  Type = "offer.rejected"
	TypeOfferCanceled  Type = "offer.canceled"
	TypeOfferCompleted Type = "offer.completed"
)

// Event is the payload published for an offer transition.
type Event struct {
	ID                string    `json:"id"`
	Type              Type      `json:"type"`
	OfferID           int64     `json:"offer_id"`
	OfferingMemberID  int64     `json:"offering_member_id"`
	ReceivingMemberID int64     `json:"receiving_member_id"`
	OfferedItemID     int64     `json:"offered_item_id"`
	RequestedItemID   int64     `json:"requested_item_id"`
	OccurredAt        time.Time `json:"occurred_at"`
}

// New builds an event for an offer with a fresh event ID.
func New(t Type, offer *model.Offer) Event {
	return Event{
		ID:                uuid.NewString(),
		Type:              t,
		OfferID:           offer.ID,
		OfferingMemberID:  offer.OfferingMemberID,
		ReceivingMemberID: offer.ReceivingMemberID,
		OfferedItemID:     offer.OfferedItemID,
		RequestedItemID:   offer.RequestedItemID,
		OccurredAt:        time.Now().UTC(),
	}
}

// Emitter delivers offer events to interested parties (notification
// services, archival consumers). Implementations must not block the
// offer workflow on delivery problems.
type Emitter interface {
	Emit(ctx context.Context, ev Event)
}

// LogEmitter writes events to the structured log. It is the default
// emitter when no message bus is configured.
type LogEmitter struct{}

func (LogEmitter) Emit(_ context.Context, ev Event) {
	slog.Info("offer event",
		"event_id", ev.ID, "type", ev.Type, "offer", ev.OfferID,
		"offering_member", ev.OfferingMemberID, "receiving_member", ev.ReceivingMemberID)
}
