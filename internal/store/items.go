package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/avillega/trueque/internal/model"
)

// CreateItem registers a new clothing item owned by a member. New items
// start available.
func CreateItem(ctx context.Context, q Querier, memberID int64, name, category, size, condition, description string) (*model.Item, error) {
	result, err := q.ExecContext(ctx,
		`INSERT INTO items (member_id, name, category, size, condition, description)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		memberID, name, category, size, condition, description,
	)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting item id: %w", err)
	}

	return GetItem(ctx, q, id)
}

const itemColumns = `i.id, i.member_id, i.name, i.category, i.size, i.condition, i.description,
       i.image_mime, i.status, i.created_at, i.updated_at, i.deleted_at, m.name AS owner_name`

// GetItem returns an item by ID with its current owner's name joined in.
func GetItem(ctx context.Context, q Querier, id int64) (*model.Item, error) {
	item, err := scanItem(q.QueryRowContext(ctx,
		`SELECT `+itemColumns+`
		 FROM items i JOIN members m ON m.id = i.member_id
		 WHERE i.id = ?`, id,
	))
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// ListAvailableItems returns the browsable catalog: non-deleted available
// items, optionally filtered by category and size.
func ListAvailableItems(ctx context.Context, q Querier, category, size string) ([]model.Item, error) {
	query := `SELECT ` + itemColumns + `
	          FROM items i JOIN members m ON m.id = i.member_id
	          WHERE i.deleted_at IS NULL AND i.status = ?`
	args := []any{model.ItemStatusAvailable}

	if category != "" {
		query += ` AND i.category = ?`
		args = append(args, category)
	}
	if size != "" {
		query += ` AND i.size = ?`
		args = append(args, size)
	}

	query += ` ORDER BY i.created_at DESC`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing available items: %w", err)
	}
	defer rows.Close()

	return scanItems(rows)
}

// ListItemsByMember returns a member's closet, newest first.
func ListItemsByMember(ctx context.Context, q Querier, memberID int64) ([]model.Item, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+itemColumns+`
		 FROM items i JOIN members m ON m.id = i.member_id
		 WHERE i.deleted_at IS NULL AND i.member_id = ?
		 ORDER BY i.created_at DESC`, memberID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing member items: %w", err)
	}
	defer rows.Close()

	return scanItems(rows)
}

// UpdateItem updates an item's descriptive attributes. Status and ownership
// are never touched here; those move only through the exchange engine.
func UpdateItem(ctx context.Context, q Querier, id int64, name, category, size, condition, description string) error {
	_, err := q.ExecContext(ctx,
		`UPDATE items SET name = ?, category = ?, size = ?, condition = ?, description = ?,
		        updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND deleted_at IS NULL`,
		name, category, size, condition, description, id,
	)
	if err != nil {
		return fmt.Errorf("updating item: %w", err)
	}
	return nil
}

// UpdateItemStatus sets a single item's availability status.
func UpdateItemStatus(ctx context.Context, q Querier, id int64, status string) error {
	_, err := q.ExecContext(ctx,
		`UPDATE items SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		status, id,
	)
	if err != nil {
		return fmt.Errorf("updating item status: %w", err)
	}
	return nil
}

// UpdateItemStatusBatch sets the status of several items at once.
func UpdateItemStatusBatch(ctx context.Context, q Querier, ids []int64, status string) error {
	if len(ids) == 0 {
		return nil
	}

	placeholders := strings.Repeat("?, ", len(ids)-1) + "?"
	args := []any{status}
	for _, id := range ids {
		args = append(args, id)
	}

	_, err := q.ExecContext(ctx,
		`UPDATE items SET status = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id IN (`+placeholders+`)`, args...,
	)
	if err != nil {
		return fmt.Errorf("updating item statuses: %w", err)
	}
	return nil
}

// TransferItemOwnership moves an item to a new owner and sets its status in
// one statement, so catalog reads never see the ownership swap half-applied.
func TransferItemOwnership(ctx context.Context, q Querier, id, newMemberID int64, status string) error {
	_, err := q.ExecContext(ctx,
		`UPDATE items SET member_id = ?, status = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		newMemberID, status, id,
	)
	if err != nil {
		return fmt.Errorf("transferring item ownership: %w", err)
	}
	return nil
}

// DeleteItem soft-deletes an item.
func DeleteItem(ctx context.Context, q Querier, id int64) error {
	_, err := q.ExecContext(ctx,
		`UPDATE items SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NULL`,
		id,
	)
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	return nil
}

// SetItemImage sets an item's photo data.
func SetItemImage(ctx context.Context, q Querier, id int64, image []byte, mime string) error {
	_, err := q.ExecContext(ctx,
		`UPDATE items SET image = ?, image_mime = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND deleted_at IS NULL`,
		image, mime, id,
	)
	if err != nil {
		return fmt.Errorf("setting item image: %w", err)
	}
	return nil
}

// GetItemImage returns an item's photo data and MIME type.
func GetItemImage(ctx context.Context, q Querier, id int64) ([]byte, string, error) {
	var image []byte
	var mime sql.NullString
	err := q.QueryRowContext(ctx,
		`SELECT image, image_mime FROM items WHERE id = ?`, id,
	).Scan(&image, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting item image: %w", err)
	}
	return image, mime.String, nil
}

func scanItem(row *sql.Row) (*model.Item, error) {
	item := &model.Item{}
	var condition, description, imageMime sql.NullString
	err := row.Scan(&item.ID, &item.MemberID, &item.Name, &item.Category, &item.Size,
		&condition, &description, &imageMime, &item.Status,
		&item.CreatedAt, &item.UpdatedAt, &item.DeletedAt, &item.OwnerName)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	item.Condition = condition.String
	item.Description = description.String
	item.ImageMime = imageMime.String
	return item, nil
}

func scanItems(rows *sql.Rows) ([]model.Item, error) {
	var items []model.Item
	for rows.Next() {
		var item model.Item
		var condition, description, imageMime sql.NullString
		if err := rows.Scan(&item.ID, &item.MemberID, &item.Name, &item.Category, &item.Size,
			&condition, &description, &imageMime, &item.Status,
			&item.CreatedAt, &item.UpdatedAt, &item.DeletedAt, &item.OwnerName); err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		item.Condition = condition.String
		item.Description = description.String
		item.ImageMime = imageMime.String
		items = append(items, item)
	}
	return items, rows.Err()
}
