package exchange

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"

	"github.com/avillega/trueque/internal/db"
	"github.com/avillega/trueque/internal/events"
	"github.com/avillega/trueque/internal/model"
	"github.com/avillega/trueque/internal/store"
)

// captureEmitter records emitted event types for assertions.
type captureEmitter struct {
	mu    sync.Mutex
	types []events.Type
}

func (c *captureEmitter) Emit(_ context.Context, ev events.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.types = append(c.types, ev.Type)
}

func seedMember(t *testing.T, database *sql.DB, email, name string) *model.Member {
	t.Helper()
	ctx := context.Background()

	user, err := store.CreateUser(ctx, database, email, "hash", model.RoleMember)
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	member, err := store.CreateMember(ctx, database, user.ID, name, "", nil, "", "", "")
	if err != nil {
		t.Fatalf("CreateMember: %v", err)
	}
	return member
}

func seedItem(t *testing.T, database *sql.DB, memberID int64, name string) *model.Item {
	t.Helper()
	item, err := store.CreateItem(context.Background(), database, memberID, name, "jacket", "M", "good", "")
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	return item
}

func itemStatus(t *testing.T, database *sql.DB, id int64) string {
	t.Helper()
	item, err := store.GetItem(context.Background(), database, id)
	if err != nil || item == nil {
		t.Fatalf("GetItem(%d): %v", id, err)
	}
	return item.Status
}

// setupSwap creates two members, one item each, and an engine.
func setupSwap(t *testing.T) (*sql.DB, *Engine, *captureEmitter, *model.Member, *model.Member, *model.Item, *model.Item) {
	t.Helper()
	database := db.NewTestDB(t)
	emitter := &captureEmitter{}
	engine := New(database, emitter)

	ana := seedMember(t, database, "ana@example.com", "Ana")
	beto := seedMember(t, database, "beto@example.com", "Beto")
	jacket := seedItem(t, database, ana.ID, "Denim jacket")
	boots := seedItem(t, database, beto.ID, "Leather boots")

	return database, engine, emitter, ana, beto, jacket, boots
}

func TestInitiateReservesBothItems(t *testing.T) {
	database, engine, _, ana, beto, jacket, boots := setupSwap(t)
	ctx := context.Background()

	offer, err := engine.Initiate(ctx, ana.UserID, jacket.ID, boots.ID)
	if err != nil {
		t.Fatalf("Initiate: %v", err)
	}

	if offer.Status != model.OfferStatusPending {
		t.Errorf("expected pending offer, got %q", offer.Status)
	}
	if offer.OfferingMemberID != ana.ID || offer.ReceivingMemberID != beto.ID {
		t.Errorf("wrong member snapshot: offering=%d receiving=%d", offer.OfferingMemberID, offer.ReceivingMemberID)
	}
	if got := itemStatus(t, database, jacket.ID); got != model.ItemStatusUnavailable {
		t.Errorf("offered item status = %q, want unavailable", got)
	}
	if got := itemStatus(t, database, boots.ID); got != model.ItemStatusUnavailable {
		t.Errorf("requested item status = %q, want unavailable", got)
	}
}

func TestInitiateOfferedItemNotOwned(t *testing.T) {
	database, engine, _, _, beto, jacket, boots := setupSwap(t)
	ctx := context.Background()

	// Beto tries to offer Ana's jacket.
	_, err := engine.Initiate(ctx, beto.UserID, jacket.ID, boots.ID)
	if !errors.Is(err, ErrOwnershipViolation) {
		t.Fatalf("expected ErrOwnershipViolation, got %v", err)
	}

	// No records created, nothing reserved.
	if got := itemStatus(t, database, jacket.ID); got != model.ItemStatusAvailable {
		t.Errorf("jacket status = %q, want available", got)
	}
	if got := itemStatus(t, database, boots.ID); got != model.ItemStatusAvailable {
		t.Errorf("boots status = %q, want available", got)
	}
	offers, err := store.ListOffersByMember(ctx, database, beto.ID, store.OfferRoleOffering)
	if err != nil {
		t.Fatalf("ListOffersByMember: %v", err)
	}
	if len(offers) != 0 {
		t.Errorf("expected no offers, got %d", len(offers))
	}
}

func TestInitiateRequestedItemOwnedByActor(t *testing.T) {
	database, engine, _, ana, _, jacket, _ := setupSwap(t)

	second := seedItem(t, database, ana.ID, "Wool scarf")

	_, err := engine.Initiate(context.Background(), ana.UserID, jacket.ID, second.ID)
	if !errors.Is(err, ErrOwnershipViolation) {
		t.Fatalf("expected ErrOwnershipViolation for self-trade, got %v", err)
	}
}

func TestInitiateItemNotFound(t *testing.T) {
	_, engine, _, ana, _, jacket, _ := setupSwap(t)

	_, err := engine.Initiate(context.Background(), ana.UserID, jacket.ID, 9999)
	if !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
}

func TestInitiateUnavailableItem(t *testing.T) {
	database, engine, _, ana, beto, jacket, boots := setupSwap(t)
	ctx := context.Background()

	other := seedItem(t, database, beto.ID, "Silk tie")

	// First offer reserves the boots.
	if _, err := engine.Initiate(ctx, ana.UserID, jacket.ID, boots.ID); err != nil {
		t.Fatalf("Initiate: %v", err)
	}

	// A second offer against the reserved boots must fail.
	scarf := seedItem(t, database, ana.ID, "Wool scarf")
	_, err := engine.Initiate(ctx, ana.UserID, scarf.ID, boots.ID)
	if !errors.Is(err, ErrItemUnavailable) {
		t.Fatalf("expected ErrItemUnavailable, got %v", err)
	}

	// The unreserved item is still tradable.
	if _, err := engine.Initiate(ctx, ana.UserID, scarf.ID, other.ID); err != nil {
		t.Fatalf("Initiate with free items: %v", err)
	}
}

func TestInitiateDuplicateReversedPair(t *testing.T) {
	database, engine, _, ana, beto, jacket, boots := setupSwap(t)
	ctx := context.Background()

	if _, err := engine.Initiate(ctx, ana.UserID, jacket.ID, boots.ID); err != nil {
		t.Fatalf("Initiate: %v", err)
	}

	// Force both items back to available so the duplicate check, not the
	// reservation, is what rejects the reverse offer.
	store.UpdateItemStatusBatch(ctx, database, []int64{jacket.ID, boots.ID}, model.ItemStatusAvailable)

	_, err := engine.Initiate(ctx, beto.UserID, boots.ID, jacket.ID)
	if !errors.Is(err, ErrDuplicateOffer) {
		t.Fatalf("expected ErrDuplicateOffer for reversed pair, got %v", err)
	}
}

func TestInitiateMemberProfileMissing(t *testing.T) {
	database, engine, _, _, _, jacket, boots := setupSwap(t)
	ctx := context.Background()

	// A user account with no member profile.
	user, err := store.CreateUser(ctx, database, "ghost@example.com", "hash", model.RoleMember)
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	_, err = engine.Initiate(ctx, user.ID, jacket.ID, boots.ID)
	if !errors.Is(err, ErrMemberProfileMissing) {
		t.Fatalf("expected ErrMemberProfileMissing, got %v", err)
	}
}

func TestAcceptByReceivingMember(t *testing.T) {
	database, engine, _, ana, beto, jacket, boots := setupSwap(t)
	ctx := context.Background()

	offer, _ := engine.Initiate(ctx, ana.UserID, jacket.ID, boots.ID)

	accepted, err := engine.Accept(ctx, beto.UserID, offer.ID)
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if accepted.Status != model.OfferStatusAccepted {
		t.Errorf("offer status = %q, want accepted", accepted.Status)
	}
	if got := itemStatus(t, database, jacket.ID); got != model.ItemStatusUnavailable {
		t.Errorf("jacket status = %q, want unavailable", got)
	}
	if got := itemStatus(t, database, boots.ID); got != model.ItemStatusUnavailable {
		t.Errorf("boots status = %q, want unavailable", got)
	}
}

func TestAcceptToleratesAvailableItems(t *testing.T) {
	database, engine, _, ana, beto, jacket, boots := setupSwap(t)
	ctx := context.Background()

	offer, _ := engine.Initiate(ctx, ana.UserID, jacket.ID, boots.ID)

	// Items released out-of-band: accept still succeeds and re-reserves.
	store.UpdateItemStatusBatch(ctx, database, []int64{jacket.ID, boots.ID}, model.ItemStatusAvailable)

	if _, err := engine.Accept(ctx, beto.UserID, offer.ID); err != nil {
		t.Fatalf("Accept after release: %v", err)
	}
	if got := itemStatus(t, database, jacket.ID); got != model.ItemStatusUnavailable {
		t.Errorf("jacket status = %q, want unavailable", got)
	}
}

func TestAcceptByOfferingMemberForbidden(t *testing.T) {
	_, engine, _, ana, _, jacket, boots := setupSwap(t)
	ctx := context.Background()

	offer, _ := engine.Initiate(ctx, ana.UserID, jacket.ID, boots.ID)

	_, err := engine.Accept(ctx, ana.UserID, offer.ID)
	if !errors.Is(err, ErrOwnershipViolation) {
		t.Fatalf("expected ErrOwnershipViolation, got %v", err)
	}
}

func TestAcceptTwiceFailsAndKeepsState(t *testing.T) {
	database, engine, _, ana, beto, jacket, boots := setupSwap(t)
	ctx := context.Background()

	offer, _ := engine.Initiate(ctx, ana.UserID, jacket.ID, boots.ID)
	if _, err := engine.Accept(ctx, beto.UserID, offer.ID); err != nil {
		t.Fatalf("first Accept: %v", err)
	}

	_, err := engine.Accept(ctx, beto.UserID, offer.ID)
	if !errors.Is(err, ErrInvalidStateTransition) {
		t.Fatalf("expected ErrInvalidStateTransition, got %v", err)
	}

	got, _ := store.GetOffer(ctx, database, offer.ID)
	if got.Status != model.OfferStatusAccepted {
		t.Errorf("offer status = %q, want accepted", got.Status)
	}
}

func TestRejectReleasesBothItems(t *testing.T) {
	database, engine, _, ana, beto, jacket, boots := setupSwap(t)
	ctx := context.Background()

	offer, _ := engine.Initiate(ctx, ana.UserID, jacket.ID, boots.ID)

	rejected, err := engine.Reject(ctx, beto.UserID, offer.ID)
	if err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if rejected.Status != model.OfferStatusRejected {
		t.Errorf("offer status = %q, want rejected", rejected.Status)
	}
	if got := itemStatus(t, database, jacket.ID); got != model.ItemStatusAvailable {
		t.Errorf("jacket status = %q, want available", got)
	}
	if got := itemStatus(t, database, boots.ID); got != model.ItemStatusAvailable {
		t.Errorf("boots status = %q, want available", got)
	}
}

func TestCancelByOfferingMember(t *testing.T) {
	database, engine, _, ana, beto, jacket, boots := setupSwap(t)
	ctx := context.Background()

	offer, _ := engine.Initiate(ctx, ana.UserID, jacket.ID, boots.ID)

	// Only the offering member may cancel.
	if _, err := engine.Cancel(ctx, beto.UserID, offer.ID); !errors.Is(err, ErrOwnershipViolation) {
		t.Fatalf("expected ErrOwnershipViolation for receiver cancel, got %v", err)
	}

	canceled, err := engine.Cancel(ctx, ana.UserID, offer.ID)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if canceled.Status != model.OfferStatusCanceled {
		t.Errorf("offer status = %q, want canceled", canceled.Status)
	}
	if got := itemStatus(t, database, jacket.ID); got != model.ItemStatusAvailable {
		t.Errorf("jacket status = %q, want available", got)
	}
}

func TestCancelAcceptedOfferForbidden(t *testing.T) {
	_, engine, _, ana, beto, jacket, boots := setupSwap(t)
	ctx := context.Background()

	offer, _ := engine.Initiate(ctx, ana.UserID, jacket.ID, boots.ID)
	engine.Accept(ctx, beto.UserID, offer.ID)

	_, err := engine.Cancel(ctx, ana.UserID, offer.ID)
	if !errors.Is(err, ErrInvalidStateTransition) {
		t.Fatalf("expected ErrInvalidStateTransition, got %v", err)
	}
}

func TestCompleteSwapsOwnership(t *testing.T) {
	database, engine, _, ana, beto, jacket, boots := setupSwap(t)
	ctx := context.Background()

	offer, _ := engine.Initiate(ctx, ana.UserID, jacket.ID, boots.ID)
	if _, err := engine.Accept(ctx, beto.UserID, offer.ID); err != nil {
		t.Fatalf("Accept: %v", err)
	}

	completed, err := engine.Complete(ctx, ana.UserID, offer.ID)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if completed.Status != model.OfferStatusCompleted {
		t.Errorf("offer status = %q, want completed", completed.Status)
	}

	gotJacket, _ := store.GetItem(ctx, database, jacket.ID)
	if gotJacket.MemberID != beto.ID {
		t.Errorf("jacket owner = %d, want %d (receiving member)", gotJacket.MemberID, beto.ID)
	}
	if gotJacket.Status != model.ItemStatusExchanged {
		t.Errorf("jacket status = %q, want exchanged", gotJacket.Status)
	}

	gotBoots, _ := store.GetItem(ctx, database, boots.ID)
	if gotBoots.MemberID != ana.ID {
		t.Errorf("boots owner = %d, want %d (offering member)", gotBoots.MemberID, ana.ID)
	}
	if gotBoots.Status != model.ItemStatusExchanged {
		t.Errorf("boots status = %q, want exchanged", gotBoots.Status)
	}
}

func TestCompletePendingOfferForbidden(t *testing.T) {
	_, engine, _, ana, _, jacket, boots := setupSwap(t)
	ctx := context.Background()

	offer, _ := engine.Initiate(ctx, ana.UserID, jacket.ID, boots.ID)

	_, err := engine.Complete(ctx, ana.UserID, offer.ID)
	if !errors.Is(err, ErrInvalidStateTransition) {
		t.Fatalf("expected ErrInvalidStateTransition for pending offer, got %v", err)
	}
}

func TestCompleteByNonParticipantForbidden(t *testing.T) {
	database, engine, _, ana, beto, jacket, boots := setupSwap(t)
	ctx := context.Background()

	carla := seedMember(t, database, "carla@example.com", "Carla")

	offer, _ := engine.Initiate(ctx, ana.UserID, jacket.ID, boots.ID)
	engine.Accept(ctx, beto.UserID, offer.ID)

	_, err := engine.Complete(ctx, carla.UserID, offer.ID)
	if !errors.Is(err, ErrOwnershipViolation) {
		t.Fatalf("expected ErrOwnershipViolation, got %v", err)
	}
}

func TestOfferNotFound(t *testing.T) {
	_, engine, _, ana, _, _, _ := setupSwap(t)

	_, err := engine.Accept(context.Background(), ana.UserID, 4242)
	if !errors.Is(err, ErrOfferNotFound) {
		t.Fatalf("expected ErrOfferNotFound, got %v", err)
	}
}

func TestConcurrentAcceptAndReject(t *testing.T) {
	database, engine, _, ana, beto, jacket, boots := setupSwap(t)
	ctx := context.Background()

	offer, err := engine.Initiate(ctx, ana.UserID, jacket.ID, boots.ID)
	if err != nil {
		t.Fatalf("Initiate: %v", err)
	}

	// Both actions race on the same pending offer; exactly one may win.
	var wg sync.WaitGroup
	var acceptErr, rejectErr error
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, acceptErr = engine.Accept(ctx, beto.UserID, offer.ID)
	}()
	go func() {
		defer wg.Done()
		_, rejectErr = engine.Reject(ctx, beto.UserID, offer.ID)
	}()
	wg.Wait()

	if (acceptErr == nil) == (rejectErr == nil) {
		t.Fatalf("expected exactly one winner: acceptErr=%v rejectErr=%v", acceptErr, rejectErr)
	}

	loser := acceptErr
	if loser == nil {
		loser = rejectErr
	}
	if !errors.Is(loser, ErrInvalidStateTransition) {
		t.Errorf("loser error = %v, want ErrInvalidStateTransition", loser)
	}

	// Item statuses must reflect only the winner's effect.
	got, _ := store.GetOffer(ctx, database, offer.ID)
	switch got.Status {
	case model.OfferStatusAccepted:
		if s := itemStatus(t, database, jacket.ID); s != model.ItemStatusUnavailable {
			t.Errorf("jacket status = %q, want unavailable after accept won", s)
		}
	case model.OfferStatusRejected:
		if s := itemStatus(t, database, jacket.ID); s != model.ItemStatusAvailable {
			t.Errorf("jacket status = %q, want available after reject won", s)
		}
	default:
		t.Errorf("unexpected offer status %q after race", got.Status)
	}
}

func TestLifecycleEventsEmitted(t *testing.T) {
	_, engine, emitter, ana, beto, jacket, boots := setupSwap(t)
	ctx := context.Background()

	offer, _ := engine.Initiate(ctx, ana.UserID, jacket.ID, boots.ID)
	engine.Accept(ctx, beto.UserID, offer.ID)
	engine.Complete(ctx, beto.UserID, offer.ID)

	want := []events.Type{events.TypeOfferCreated, events.TypeOfferAccepted, events.TypeOfferCompleted}
	emitter.mu.Lock()
	defer emitter.mu.Unlock()
	if len(emitter.types) != len(want) {
		t.Fatalf("emitted %d events, want %d: %v", len(emitter.types), len(want), emitter.types)
	}
	for i, typ := range want {
		if emitter.types[i] != typ {
			t.Errorf("event %d = %q, want %q", i, emitter.types[i], typ)
		}
	}
}

func TestFailedOperationEmitsNothing(t *testing.T) {
	_, engine, emitter, ana, _, jacket, boots := setupSwap(t)
	ctx := context.Background()

	offer, _ := engine.Initiate(ctx, ana.UserID, jacket.ID, boots.ID)

	// Offering member cannot accept; nothing beyond the creation event.
	engine.Accept(ctx, ana.UserID, offer.ID)

	emitter.mu.Lock()
	defer emitter.mu.Unlock()
	if len(emitter.types) != 1 || emitter.types[0] != events.TypeOfferCreated {
		t.Errorf("expected only the creation event, got %v", emitter.types)
	}
}
