package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"itemvault/internal/model"
)

// ItemInput holds the fields a caller may supply for a new item. The owner is
// deliberately absent: it is stamped server-side from the authenticated
// caller's identity.
type ItemInput struct {
	Title       string
	Description string
}

// ItemPatch holds a partial item update. The owner is immutable and cannot
// appear here.
type ItemPatch struct {
	Title       *string
	Description *string
}

// CreateItem inserts a new item owned by ownerID. The foreign key guarantees
// the owner exists.
func CreateItem(ctx context.Context, db *sql.DB, in ItemInput, ownerID int64) (*model.Item, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO items (title, description, owner_id) VALUES (?, ?, ?)`,
		in.Title, in.Description, ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting item id: %w", err)
	}

	return GetItem(ctx, db, id)
}

// GetItem returns an item by ID, or (nil, nil) if absent.
func GetItem(ctx context.Context, db *sql.DB, id int64) (*model.Item, error) {
	item := &model.Item{}
	err := db.QueryRowContext(ctx,
		`SELECT id, title, description, owner_id, created_at, updated_at
		 FROM items WHERE id = ?`, id,
	).Scan(&item.ID, &item.Title, &item.Description, &item.OwnerID, &item.CreatedAt, &item.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// ListItems returns all items ordered by ID.
func ListItems(ctx context.Context, db *sql.DB) ([]model.Item, error) {
	return queryItems(ctx, db,
		`SELECT id, title, description, owner_id, created_at, updated_at
		 FROM items ORDER BY id`)
}

// ListItemsByOwner returns all items owned by ownerID, ordered by ID.
func ListItemsByOwner(ctx context.Context, db *sql.DB, ownerID int64) ([]model.Item, error) {
	return queryItems(ctx, db,
		`SELECT id, title, description, owner_id, created_at, updated_at
		 FROM items WHERE owner_id = ? ORDER BY id`, ownerID)
}

// UpdateItem applies a partial update to title and description. Nil fields
// are untouched; the owner never changes.
func UpdateItem(ctx context.Context, db *sql.DB, id int64, patch ItemPatch) (*model.Item, error) {
	var (
		sets []string
		args []any
	)

	if patch.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *patch.Title)
	}
	if patch.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *patch.Description)
	}

	if len(sets) > 0 {
		sets = append(sets, "updated_at = CURRENT_TIMESTAMP")
		args = append(args, id)

		query := fmt.Sprintf("UPDATE items SET %s WHERE id = ?", strings.Join(sets, ", "))
		result, err := db.ExecContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("updating item: %w", err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("updating item: %w", err)
		}
		if affected == 0 {
			return nil, fmt.Errorf("updating item %d: %w", id, ErrNotFound)
		}
	}

	item, err := GetItem(ctx, db, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("updating item %d: %w", id, ErrNotFound)
	}
	return item, nil
}

// DeleteItem removes an item.
func DeleteItem(ctx context.Context, db *sql.DB, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("deleting item %d: %w", id, ErrNotFound)
	}
	return nil
}

func queryItems(ctx context.Context, db *sql.DB, query string, args ...any) ([]model.Item, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		var item model.Item
		if err := rows.Scan(&item.ID, &item.Title, &item.Description, &item.OwnerID,
			&item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
