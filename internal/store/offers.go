package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/avillega/trueque/internal/model"
)

// Offer listing roles.
const (
	OfferRoleOffering  = "offering"
	OfferRoleReceiving = "receiving"
)

const offerColumns = `o.id, o.offering_member_id, o.receiving_member_id,
       o.offered_item_id, o.requested_item_id, o.status, o.created_at, o.updated_at,
       om.name AS offering_member_name, rm.name AS receiving_member_name,
       oi.name AS offered_item_name, oi.status AS offered_item_status,
       ri.name AS requested_item_name, ri.status AS requested_item_status`

const offerJoins = `FROM offers o
       JOIN members om ON om.id = o.offering_member_id
       JOIN members rm ON rm.id = o.receiving_member_id
       JOIN items oi ON oi.id = o.offered_item_id
       JOIN items ri ON ri.id = o.requested_item_id`

// CreateOffer inserts a pending offer and returns its ID. Precondition
// checks belong to the exchange engine, not here.
func CreateOffer(ctx context.Context, q Querier, offeringMemberID, receivingMemberID, offeredItemID, requestedItemID int64) (int64, error) {
	result, err := q.ExecContext(ctx,
		`INSERT INTO offers (offering_member_id, receiving_member_id, offered_item_id, requested_item_id, status)
		 VALUES (?, ?, ?, ?, ?)`,
		offeringMemberID, receivingMemberID, offeredItemID, requestedItemID, model.OfferStatusPending,
	)
	if err != nil {
		return 0, fmt.Errorf("creating offer: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting offer id: %w", err)
	}
	return id, nil
}

// GetOffer returns an offer by ID with member names and item summaries joined in.
func GetOffer(ctx context.Context, q Querier, id int64) (*model.Offer, error) {
	o := &model.Offer{}
	err := q.QueryRowContext(ctx,
		`SELECT `+offerColumns+` `+offerJoins+` WHERE o.id = ?`, id,
	).Scan(&o.ID, &o.OfferingMemberID, &o.ReceivingMemberID,
		&o.OfferedItemID, &o.RequestedItemID, &o.Status, &o.CreatedAt, &o.UpdatedAt,
		&o.OfferingMemberName, &o.ReceivingMemberName,
		&o.OfferedItemName, &o.OfferedItemStatus,
		&o.RequestedItemName, &o.RequestedItemStatus)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting offer: %w", err)
	}
	return o, nil
}

// HasPendingOfferForPair reports whether a pending offer already pairs the
// two items, in either direction.
func HasPendingOfferForPair(ctx context.Context, q Querier, itemA, itemB int64) (bool, error) {
	var count int
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM offers
		 WHERE status = ?
		   AND ((offered_item_id = ? AND requested_item_id = ?)
		     OR (offered_item_id = ? AND requested_item_id = ?))`,
		model.OfferStatusPending, itemA, itemB, itemB, itemA,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking pending offers: %w", err)
	}
	return count > 0, nil
}

// ListOffersByMember returns a member's offers, filtered by the role the
// member plays in them (offering or receiving), newest first.
func ListOffersByMember(ctx context.Context, q Querier, memberID int64, role string) ([]model.Offer, error) {
	var where string
	switch role {
	case OfferRoleOffering:
		where = `WHERE o.offering_member_id = ?`
	case OfferRoleReceiving:
		where = `WHERE o.receiving_member_id = ?`
	default:
		return nil, fmt.Errorf("unknown offer role %q", role)
	}

	rows, err := q.QueryContext(ctx,
		`SELECT `+offerColumns+` `+offerJoins+` `+where+` ORDER BY o.created_at DESC`,
		memberID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing offers: %w", err)
	}
	defer rows.Close()

	var offers []model.Offer
	for rows.Next() {
		var o model.Offer
		if err := rows.Scan(&o.ID, &o.OfferingMemberID, &o.ReceivingMemberID,
			&o.OfferedItemID, &o.RequestedItemID, &o.Status, &o.CreatedAt, &o.UpdatedAt,
			&o.OfferingMemberName, &o.ReceivingMemberName,
			&o.OfferedItemName, &o.OfferedItemStatus,
			&o.RequestedItemName, &o.RequestedItemStatus); err != nil {
			return nil, fmt.Errorf("scanning offer: %w", err)
		}
		offers = append(offers, o)
	}
	return offers, rows.Err()
}

// UpdateOfferStatus moves an offer from one status to another, guarded by
// the expected current status. It reports whether a row actually changed,
// so a caller racing against a concurrent transition sees false instead of
// silently overwriting the winner's write.
func UpdateOfferStatus(ctx context.Context, q Querier, id int64, from, to string) (bool, error) {
	result, err := q.ExecContext(ctx,
		`UPDATE offers SET status = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND status = ?`,
		to, id, from,
	)
	if err != nil {
		return false, fmt.Errorf("updating offer status: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking offer status update: %w", err)
	}
	return n > 0, nil
}

// TouchOffer writes the offer row without changing it. The exchange engine
// issues this as the first statement of a lifecycle transaction so SQLite
// takes the write lock before any read, serializing competing operations
// on the same offer instead of failing a late lock upgrade.
func TouchOffer(ctx context.Context, q Querier, id int64) error {
	_, err := q.ExecContext(ctx,
		`UPDATE offers SET updated_at = updated_at WHERE id = ?`, id,
	)
	if err != nil {
		return fmt.Errorf("locking offer: %w", err)
	}
	return nil
}

// TouchItems is TouchOffer's counterpart for offer initiation, where no
// offer row exists yet to lock through.
func TouchItems(ctx context.Context, q Querier, itemA, itemB int64) error {
	_, err := q.ExecContext(ctx,
		`UPDATE items SET updated_at = updated_at WHERE id IN (?, ?)`, itemA, itemB,
	)
	if err != nil {
		return fmt.Errorf("locking items: %w", err)
	}
	return nil
}
