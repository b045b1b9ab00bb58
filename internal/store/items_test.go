package store

import (
	"context"
	"testing"

	"github.com/avillega/trueque/internal/db"
	"github.com/avillega/trueque/internal/model"
)

func TestCreateAndGetItem(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	ana := newMember(t, database, "ana@example.com", "Ana")

	item, err := CreateItem(ctx, database, ana.ID, "Denim jacket", "jacket", "M", "good", "barely worn")
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	if item.Status != model.ItemStatusAvailable {
		t.Errorf("expected status 'available', got %q", item.Status)
	}
	if item.OwnerName != "Ana" {
		t.Errorf("expected owner name 'Ana', got %q", item.OwnerName)
	}
}

func TestListAvailableItemsFiltered(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	ana := newMember(t, database, "ana@example.com", "Ana")
	CreateItem(ctx, database, ana.ID, "Denim jacket", "jacket", "M", "", "")
	CreateItem(ctx, database, ana.ID, "Leather boots", "shoes", "42", "", "")
	reserved, _ := CreateItem(ctx, database, ana.ID, "Silk tie", "accessory", "one-size", "", "")
	UpdateItemStatus(ctx, database, reserved.ID, model.ItemStatusUnavailable)

	all, err := ListAvailableItems(ctx, database, "", "")
	if err != nil {
		t.Fatalf("ListAvailableItems: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 available items, got %d", len(all))
	}

	jackets, _ := ListAvailableItems(ctx, database, "jacket", "")
	if len(jackets) != 1 || jackets[0].Name != "Denim jacket" {
		t.Errorf("expected only the jacket, got %v", jackets)
	}

	sized, _ := ListAvailableItems(ctx, database, "shoes", "42")
	if len(sized) != 1 {
		t.Errorf("expected 1 item for shoes/42, got %d", len(sized))
	}
}

func TestListItemsByMember(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	ana := newMember(t, database, "ana@example.com", "Ana")
	beto := newMember(t, database, "beto@example.com", "Beto")
	CreateItem(ctx, database, ana.ID, "Denim jacket", "jacket", "M", "", "")
	CreateItem(ctx, database, beto.ID, "Leather boots", "shoes", "42", "", "")

	closet, err := ListItemsByMember(ctx, database, ana.ID)
	if err != nil {
		t.Fatalf("ListItemsByMember: %v", err)
	}
	if len(closet) != 1 || closet[0].Name != "Denim jacket" {
		t.Errorf("expected only Ana's jacket, got %v", closet)
	}
}

func TestUpdateItemStatusBatch(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	ana := newMember(t, database, "ana@example.com", "Ana")
	a, _ := CreateItem(ctx, database, ana.ID, "Denim jacket", "jacket", "M", "", "")
	b, _ := CreateItem(ctx, database, ana.ID, "Wool scarf", "accessory", "one-size", "", "")

	if err := UpdateItemStatusBatch(ctx, database, []int64{a.ID, b.ID}, model.ItemStatusUnavailable); err != nil {
		t.Fatalf("UpdateItemStatusBatch: %v", err)
	}

	for _, id := range []int64{a.ID, b.ID} {
		item, _ := GetItem(ctx, database, id)
		if item.Status != model.ItemStatusUnavailable {
			t.Errorf("item %d status = %q, want unavailable", id, item.Status)
		}
	}
}

func TestTransferItemOwnership(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	ana := newMember(t, database, "ana@example.com", "Ana")
	beto := newMember(t, database, "beto@example.com", "Beto")
	item, _ := CreateItem(ctx, database, ana.ID, "Denim jacket", "jacket", "M", "", "")

	if err := TransferItemOwnership(ctx, database, item.ID, beto.ID, model.ItemStatusExchanged); err != nil {
		t.Fatalf("TransferItemOwnership: %v", err)
	}

	got, _ := GetItem(ctx, database, item.ID)
	if got.MemberID != beto.ID {
		t.Errorf("owner = %d, want %d", got.MemberID, beto.ID)
	}
	if got.Status != model.ItemStatusExchanged {
		t.Errorf("status = %q, want exchanged", got.Status)
	}
	if got.OwnerName != "Beto" {
		t.Errorf("owner name = %q, want 'Beto'", got.OwnerName)
	}
}

func TestSoftDeleteItemHiddenFromCatalog(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	ana := newMember(t, database, "ana@example.com", "Ana")
	item, _ := CreateItem(ctx, database, ana.ID, "Denim jacket", "jacket", "M", "", "")
	DeleteItem(ctx, database, item.ID)

	items, _ := ListAvailableItems(ctx, database, "", "")
	if len(items) != 0 {
		t.Errorf("expected 0 items after soft delete, got %d", len(items))
	}

	// Should still be fetchable by ID (for offer history).
	got, _ := GetItem(ctx, database, item.ID)
	if got == nil {
		t.Error("expected soft-deleted item to still be fetchable by ID")
	}
}

func TestItemImage(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	ana := newMember(t, database, "ana@example.com", "Ana")
	item, _ := CreateItem(ctx, database, ana.ID, "Denim jacket", "jacket", "M", "", "")

	imageData := []byte("fake image data")
	SetItemImage(ctx, database, item.ID, imageData, "image/jpeg")

	data, mime, err := GetItemImage(ctx, database, item.ID)
	if err != nil {
		t.Fatalf("GetItemImage: %v", err)
	}
	if string(data) != "fake image data" {
		t.Errorf("expected image data, got %q", string(data))
	}
	if mime != "image/jpeg" {
		t.Errorf("expected mime 'image/jpeg', got %q", mime)
	}
}
