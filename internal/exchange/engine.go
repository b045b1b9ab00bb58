// Package exchange implements the offer lifecycle engine: it validates
// preconditions, authorizes each action against the actor's role in the
// offer, and keeps offer status and the two reserved items consistent.
//
// Every operation runs as a single SQLite transaction that takes the write
// lock before reading, so the read-validate-write sequence for one offer is
// serialized against concurrent operations on the same records. The status
// change itself is a status-guarded update on top of that, so a racing
// loser always gets ErrInvalidStateTransition rather than a partial write.
package exchange

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/avillega/trueque/internal/events"
	"github.com/avillega/trueque/internal/model"
	"github.com/avillega/trueque/internal/store"
)

// Engine drives exchange offers through their lifecycle. It holds no
// per-request state; the acting user is an explicit parameter everywhere.
type Engine struct {
	db     *sql.DB
	events events.Emitter
}

// New creates an engine. A nil emitter falls back to logging events.
func New(db *sql.DB, emitter events.Emitter) *Engine {
	if emitter == nil {
		emitter = events.LogEmitter{}
	}
	return &Engine{db: db, events: emitter}
}

// Initiate creates a pending offer proposing the actor's offered item
// against another member's requested item, and reserves both items by
// setting them unavailable.
func (e *Engine) Initiate(ctx context.Context, actorUserID, offeredItemID, requestedItemID int64) (*model.Offer, error) {
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	// Take the write lock before reading item state.
	if err := store.TouchItems(ctx, tx, offeredItemID, requestedItemID); err != nil {
		return nil, err
	}

	member, err := store.GetMemberByUserID(ctx, tx, actorUserID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, ErrMemberProfileMissing
	}

	offered, err := store.GetItem(ctx, tx, offeredItemID)
	if err != nil {
		return nil, err
	}
	requested, err := store.GetItem(ctx, tx, requestedItemID)
	if err != nil {
		return nil, err
	}
	if offered == nil || requested == nil || offered.DeletedAt != nil || requested.DeletedAt != nil {
		return nil, ErrItemNotFound
	}

	if offered.MemberID != member.ID {
		return nil, fmt.Errorf("offered item belongs to someone else: %w", ErrOwnershipViolation)
	}
	if requested.MemberID == member.ID {
		return nil, fmt.Errorf("cannot request your own item: %w", ErrOwnershipViolation)
	}
	if offered.Status != model.ItemStatusAvailable || requested.Status != model.ItemStatusAvailable {
		return nil, ErrItemUnavailable
	}

	duplicate, err := store.HasPendingOfferForPair(ctx, tx, offeredItemID, requestedItemID)
	if err != nil {
		return nil, err
	}
	if duplicate {
		return nil, ErrDuplicateOffer
	}

	// The receiving member is snapshotted from the requested item's owner
	// at this moment; later ownership changes don't rewrite the offer.
	offerID, err := store.CreateOffer(ctx, tx, member.ID, requested.MemberID, offeredItemID, requestedItemID)
	if err != nil {
		return nil, err
	}

	// Soft-lock both items against competing offers.
	if err := store.UpdateItemStatusBatch(ctx, tx, []int64{offeredItemID, requestedItemID}, model.ItemStatusUnavailable); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing offer initiation: %w", err)
	}

	offer, err := store.GetOffer(ctx, e.db, offerID)
	if err != nil {
		return nil, err
	}

	slog.Info("offer initiated", "offer", offer.ID,
		"offering_member", offer.OfferingMemberID, "receiving_member", offer.ReceivingMemberID)
	e.events.Emit(ctx, events.New(events.TypeOfferCreated, offer))
	return offer, nil
}

// Accept moves a pending offer to accepted. Only the receiving member may
// accept. Both items are re-asserted unavailable.
//
// The item re-check deliberately tolerates items in either available or
// unavailable state: initiation already reserved them, so unavailable is
// the expected reading, but an available item is not treated as an error.
// Only an exchanged item blocks acceptance.
func (e *Engine) Accept(ctx context.Context, actorUserID, offerID int64) (*model.Offer, error) {
	return e.transition(ctx, actorUserID, offerID, model.OfferStatusAccepted, events.TypeOfferAccepted,
		func(offer *model.Offer, actor *model.Member) error {
			if offer.ReceivingMemberID != actor.ID {
				return fmt.Errorf("only the receiving member may accept: %w", ErrOwnershipViolation)
			}
			if offer.OfferedItemStatus == model.ItemStatusExchanged ||
				offer.RequestedItemStatus == model.ItemStatusExchanged {
				return ErrItemUnavailable
			}
			return nil
		},
		func(ctx context.Context, tx *sql.Tx, offer *model.Offer) error {
			return store.UpdateItemStatusBatch(ctx, tx,
				[]int64{offer.OfferedItemID, offer.RequestedItemID}, model.ItemStatusUnavailable)
		})
}

// Reject moves a pending offer to rejected and releases both items back to
// available. Only the receiving member may reject.
func (e *Engine) Reject(ctx context.Context, actorUserID, offerID int64) (*model.Offer, error) {
	return e.transition(ctx, actorUserID, offerID, model.OfferStatusRejected, events.TypeOfferRejected,
		func(offer *model.Offer, actor *model.Member) error {
			if offer.ReceivingMemberID != actor.ID {
				return fmt.Errorf("only the receiving member may reject: %w", ErrOwnershipViolation)
			}
			return nil
		},
		releaseItems)
}

// Cancel moves a pending offer to canceled and releases both items back to
// available. Only the offering member may cancel.
func (e *Engine) Cancel(ctx context.Context, actorUserID, offerID int64) (*model.Offer, error) {
	return e.transition(ctx, actorUserID, offerID, model.OfferStatusCanceled, events.TypeOfferCanceled,
		func(offer *model.Offer, actor *model.Member) error {
			if offer.OfferingMemberID != actor.ID {
				return fmt.Errorf("only the offering member may cancel: %w", ErrOwnershipViolation)
			}
			return nil
		},
		releaseItems)
}

// Complete executes the swap on an accepted offer: the offered item moves
// to the receiving member, the requested item to the offering member, and
// both are marked exchanged. Either participant may complete.
func (e *Engine) Complete(ctx context.Context, actorUserID, offerID int64) (*model.Offer, error) {
	return e.transition(ctx, actorUserID, offerID, model.OfferStatusCompleted, events.TypeOfferCompleted,
		func(offer *model.Offer, actor *model.Member) error {
			if offer.OfferingMemberID != actor.ID && offer.ReceivingMemberID != actor.ID {
				return fmt.Errorf("only a participant may complete: %w", ErrOwnershipViolation)
			}
			return nil
		},
		func(ctx context.Context, tx *sql.Tx, offer *model.Offer) error {
			// Resolve both participants fresh rather than trusting the
			// snapshot, so a profile deleted since creation surfaces as an
			// error instead of orphaning an item.
			offering, err := store.GetMember(ctx, tx, offer.OfferingMemberID)
			if err != nil {
				return err
			}
			receiving, err := store.GetMember(ctx, tx, offer.ReceivingMemberID)
			if err != nil {
				return err
			}
			if offering == nil || receiving == nil {
				return ErrOwnerResolution
			}

			if err := store.TransferItemOwnership(ctx, tx, offer.OfferedItemID, receiving.ID, model.ItemStatusExchanged); err != nil {
				return err
			}
			return store.TransferItemOwnership(ctx, tx, offer.RequestedItemID, offering.ID, model.ItemStatusExchanged)
		})
}

// releaseItems puts both items of a withdrawn offer back on the market.
// Skipping this would leak the pair into a permanently unavailable state.
func releaseItems(ctx context.Context, tx *sql.Tx, offer *model.Offer) error {
	return store.UpdateItemStatusBatch(ctx, tx,
		[]int64{offer.OfferedItemID, offer.RequestedItemID}, model.ItemStatusAvailable)
}

// transition runs one lifecycle step: lock, load, authorize, check the
// state edge, apply the item effects, CAS the offer status, commit, emit.
func (e *Engine) transition(ctx context.Context, actorUserID, offerID int64, to string, eventType events.Type,
	authorize func(offer *model.Offer, actor *model.Member) error,
	effect func(ctx context.Context, tx *sql.Tx, offer *model.Offer) error) (*model.Offer, error) {

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	// Take the write lock before reading offer state.
	if err := store.TouchOffer(ctx, tx, offerID); err != nil {
		return nil, err
	}

	actor, err := store.GetMemberByUserID(ctx, tx, actorUserID)
	if err != nil {
		return nil, err
	}
	if actor == nil {
		return nil, ErrMemberProfileMissing
	}

	offer, err := store.GetOffer(ctx, tx, offerID)
	if err != nil {
		return nil, err
	}
	if offer == nil {
		return nil, ErrOfferNotFound
	}

	if err := authorize(offer, actor); err != nil {
		return nil, err
	}

	if !model.CanTransitionOffer(offer.Status, to) {
		return nil, fmt.Errorf("offer is %s: %w", offer.Status, ErrInvalidStateTransition)
	}

	if err := effect(ctx, tx, offer); err != nil {
		return nil, err
	}

	changed, err := store.UpdateOfferStatus(ctx, tx, offerID, offer.Status, to)
	if err != nil {
		return nil, err
	}
	if !changed {
		return nil, ErrInvalidStateTransition
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing offer %s: %w", to, err)
	}

	updated, err := store.GetOffer(ctx, e.db, offerID)
	if err != nil {
		return nil, err
	}

	slog.Info("offer "+to, "offer", updated.ID, "actor_member", actor.ID)
	e.events.Emit(ctx, events.New(eventType, updated))
	return updated, nil
}
