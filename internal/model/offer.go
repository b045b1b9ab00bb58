package model

import "time"

// Offer represents a proposed one-for-one exchange between two items owned
// by two different members. The member fields are a snapshot taken at
// creation time; item ownership only moves when an offer completes.
type Offer struct {
	ID                int64     `json:"id"`
	OfferingMemberID  int64     `json:"offering_member_id"`
	ReceivingMemberID int64     `json:"receiving_member_id"`
	OfferedItemID     int64     `json:"offered_item_id"`
	RequestedItemID   int64     `json:"requested_item_id"`
	Status            string    `json:"status"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`

	// Joined fields (not always populated).
	OfferingMemberName  string `json:"offering_member_name,omitempty"`
	ReceivingMemberName string `json:"receiving_member_name,omitempty"`
	OfferedItemName     string `json:"offered_item_name,omitempty"`
	OfferedItemStatus   string `json:"offered_item_status,omitempty"`
	RequestedItemName   string `json:"requested_item_name,omitempty"`
	RequestedItemStatus string `json:"requested_item_status,omitempty"`
}

// Offer statuses.
const (
	OfferStatusPending   = "pending"
	OfferStatusAccepted  = "accepted"
	OfferStatusRejected  = "rejected"
	OfferStatusCanceled  = "canceled"
	OfferStatusCompleted = "completed"
)

// offerTransitions enumerates the legal status edges. Rejected, canceled
// and completed are terminal.
var offerTransitions = map[string][]string{
	OfferStatusPending:  {OfferStatusAccepted, OfferStatusRejected, OfferStatusCanceled},
	OfferStatusAccepted: {OfferStatusCompleted},
}

// CanTransitionOffer reports whether an offer may move from one status to another.
func CanTransitionOffer(from, to string) bool {
	for _, next := range offerTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// OfferStatusTerminal reports whether a status permits no further transitions.
func OfferStatusTerminal(status string) bool {
	return len(offerTransitions[status]) == 0
}
