package model

import "time"

// Item represents a single clothing item listed for exchange.
type Item struct {
	ID          int64      `json:"id"`
	MemberID    int64      `json:"member_id"`
	Name        string     `json:"name"`
	Category    string     `json:"category"`
	Size        string     `json:"size"`
	Condition   string     `json:"condition,omitempty"`
	Description string     `json:"description,omitempty"`
	ImageMime   string     `json:"image_mime,omitempty"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`

	// Joined fields (not always populated).
	OwnerName string `json:"owner_name,omitempty"`
}

// Item statuses. An item moves to unavailable while it is reserved by a
// pending or accepted offer, and to exchanged once an offer completes.
const (
	ItemStatusAvailable   = "available"
	ItemStatusUnavailable = "unavailable"
	ItemStatusExchanged   = "exchanged"
)
