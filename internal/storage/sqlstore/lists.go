package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/julianstephens/lifeos/internal/models"
)

const bucketColumns = `id, user_id, title, description, category, priority, is_completed, completed_at,
       completion_notes, icon, order_index, created_at, updated_at`

const wishlistColumns = `id, user_id, name, description, category, priority, status, price, url, notes,
       purchased_at, order_index, created_at, updated_at`

func scanBucketItem(row rowScanner) (models.BucketListItem, error) {
	var b models.BucketListItem
	var description, completedAt, notes sql.NullString
	var category, priority, createdAt, updatedAt string

	err := row.Scan(&b.ID, &b.UserID, &b.Title, &description, &category, &priority, &b.IsCompleted, &completedAt,
		&notes, &b.Icon, &b.OrderIndex, &createdAt, &updatedAt)
	if err != nil {
		return models.BucketListItem{}, err
	}

	b.Description = stringPtr(description)
	b.CompletionNotes = stringPtr(notes)
	b.Category = models.BucketCategory(category)
	b.Priority = models.BucketPriority(priority)
	if b.CompletedAt, err = parseTimePtr("completed_at", completedAt); err != nil {
		return models.BucketListItem{}, err
	}
	if b.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return models.BucketListItem{}, err
	}
	if b.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
		return models.BucketListItem{}, err
	}
	return b, nil
}

func scanWishlistItem(row rowScanner) (models.WishlistItem, error) {
	var w models.WishlistItem
	var description, url, notes, purchasedAt sql.NullString
	var price sql.NullFloat64
	var category, status, createdAt, updatedAt string

	err := row.Scan(&w.ID, &w.UserID, &w.Name, &description, &category, &w.Priority, &status, &price, &url, &notes,
		&purchasedAt, &w.OrderIndex, &createdAt, &updatedAt)
	if err != nil {
		return models.WishlistItem{}, err
	}

	w.Description = stringPtr(description)
	w.URL = stringPtr(url)
	w.Notes = stringPtr(notes)
	w.Price = floatPtr(price)
	w.Category = models.WishlistCategory(category)
	w.Status = models.WishlistStatus(status)
	if w.PurchasedAt, err = parseTimePtr("purchased_at", purchasedAt); err != nil {
		return models.WishlistItem{}, err
	}
	if w.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return models.WishlistItem{}, err
	}
	if w.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
		return models.WishlistItem{}, err
	}
	return w, nil
}

func (s *Store) ListBucketItems(ctx context.Context) ([]models.BucketListItem, error) {
	defer s.track("list_bucket")()
	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, s.rebind(`
SELECT `+bucketColumns+`
FROM bucket_list_items WHERE user_id = ? ORDER BY order_index, created_at`), s.userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bucket items: %w", err)
	}
	defer rows.Close()

	items := []models.BucketListItem{}
	for rows.Next() {
		b, err := scanBucketItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, b)
	}
	return items, rows.Err()
}

func (s *Store) GetBucketItem(ctx context.Context, id string) (models.BucketListItem, error) {
	defer s.track("get_bucket")()
	db, err := s.conn()
	if err != nil {
		return models.BucketListItem{}, err
	}
	return s.getBucketItem(ctx, db, id)
}

func (s *Store) getBucketItem(ctx context.Context, q querier, id string) (models.BucketListItem, error) {
	row := q.QueryRowContext(ctx, s.rebind(`
SELECT `+bucketColumns+`
FROM bucket_list_items WHERE id = ? AND user_id = ?`), id, s.userID)
	b, err := scanBucketItem(row)
	if err != nil {
		return models.BucketListItem{}, notFound(err, "bucket item", id)
	}
	return b, nil
}

func (s *Store) CreateBucketItem(ctx context.Context, in models.CreateBucketItemInput) (models.BucketListItem, error) {
	defer s.track("create_bucket")()

	var b models.BucketListItem
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		order, err := s.nextOrder(ctx, tx, "bucket_list_items", "user_id", s.userID)
		if err != nil {
			return err
		}
		b = models.NewBucketItem(s.newID(), s.userID, in, s.now())
		b.OrderIndex = order
		_, err = tx.ExecContext(ctx, s.rebind(`
INSERT INTO bucket_list_items (`+bucketColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
			b.ID, b.UserID, b.Title, nullString(b.Description), string(b.Category), string(b.Priority),
			b.IsCompleted, formatTimePtr(b.CompletedAt), nullString(b.CompletionNotes), b.Icon, b.OrderIndex,
			formatTime(b.CreatedAt), formatTime(b.UpdatedAt))
		return err
	})
	if err != nil {
		return models.BucketListItem{}, fmt.Errorf("failed to create bucket item: %w", err)
	}
	return b, nil
}

func (s *Store) UpdateBucketItem(ctx context.Context, id string, patch models.UpdateBucketItemInput) (models.BucketListItem, error) {
	defer s.track("update_bucket")()

	var b models.BucketListItem
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		current, err := s.getBucketItem(ctx, tx, id)
		if err != nil {
			return err
		}
		b = models.ApplyBucketPatch(current, patch, s.now())
		return s.execOne(ctx, tx, "bucket item", id, `
UPDATE bucket_list_items SET title = ?, description = ?, category = ?, priority = ?, is_completed = ?,
       completed_at = ?, completion_notes = ?, icon = ?, order_index = ?, updated_at = ?
WHERE id = ? AND user_id = ?`,
			b.Title, nullString(b.Description), string(b.Category), string(b.Priority), b.IsCompleted,
			formatTimePtr(b.CompletedAt), nullString(b.CompletionNotes), b.Icon, b.OrderIndex, formatTime(b.UpdatedAt),
			id, s.userID)
	})
	if err != nil {
		return models.BucketListItem{}, fmt.Errorf("failed to update bucket item: %w", err)
	}
	return b, nil
}

func (s *Store) DeleteBucketItem(ctx context.Context, id string) error {
	defer s.track("delete_bucket")()
	db, err := s.conn()
	if err != nil {
		return err
	}
	if err := s.execOne(ctx, db, "bucket item", id, "DELETE FROM bucket_list_items WHERE id = ? AND user_id = ?", id, s.userID); err != nil {
		return fmt.Errorf("failed to delete bucket item: %w", err)
	}
	return nil
}

func (s *Store) ListWishlistItems(ctx context.Context) ([]models.WishlistItem, error) {
	defer s.track("list_wishlist")()
	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, s.rebind(`
SELECT `+wishlistColumns+`
FROM wishlist_items WHERE user_id = ? ORDER BY order_index, created_at`), s.userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list wishlist items: %w", err)
	}
	defer rows.Close()

	items := []models.WishlistItem{}
	for rows.Next() {
		w, err := scanWishlistItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, w)
	}
	return items, rows.Err()
}

func (s *Store) GetWishlistItem(ctx context.Context, id string) (models.WishlistItem, error) {
	defer s.track("get_wishlist")()
	db, err := s.conn()
	if err != nil {
		return models.WishlistItem{}, err
	}
	return s.getWishlistItem(ctx, db, id)
}

func (s *Store) getWishlistItem(ctx context.Context, q querier, id string) (models.WishlistItem, error) {
	row := q.QueryRowContext(ctx, s.rebind(`
SELECT `+wishlistColumns+`
FROM wishlist_items WHERE id = ? AND user_id = ?`), id, s.userID)
	w, err := scanWishlistItem(row)
	if err != nil {
		return models.WishlistItem{}, notFound(err, "wishlist item", id)
	}
	return w, nil
}

func (s *Store) CreateWishlistItem(ctx context.Context, in models.CreateWishlistInput) (models.WishlistItem, error) {
	defer s.track("create_wishlist")()

	var w models.WishlistItem
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		order, err := s.nextOrder(ctx, tx, "wishlist_items", "user_id", s.userID)
		if err != nil {
			return err
		}
		w = models.NewWishlistItem(s.newID(), s.userID, in, s.now())
		w.OrderIndex = order
		_, err = tx.ExecContext(ctx, s.rebind(`
INSERT INTO wishlist_items (`+wishlistColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
			w.ID, w.UserID, w.Name, nullString(w.Description), string(w.Category), w.Priority, string(w.Status),
			nullFloat(w.Price), nullString(w.URL), nullString(w.Notes), formatTimePtr(w.PurchasedAt), w.OrderIndex,
			formatTime(w.CreatedAt), formatTime(w.UpdatedAt))
		return err
	})
	if err != nil {
		return models.WishlistItem{}, fmt.Errorf("failed to create wishlist item: %w", err)
	}
	return w, nil
}

func (s *Store) UpdateWishlistItem(ctx context.Context, id string, patch models.UpdateWishlistInput) (models.WishlistItem, error) {
	defer s.track("update_wishlist")()

	var w models.WishlistItem
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		current, err := s.getWishlistItem(ctx, tx, id)
		if err != nil {
			return err
		}
		w = models.ApplyWishlistPatch(current, patch, s.now())
		return s.execOne(ctx, tx, "wishlist item", id, `
UPDATE wishlist_items SET name = ?, description = ?, category = ?, priority = ?, status = ?, price = ?,
       url = ?, notes = ?, purchased_at = ?, order_index = ?, updated_at = ?
WHERE id = ? AND user_id = ?`,
			w.Name, nullString(w.Description), string(w.Category), w.Priority, string(w.Status), nullFloat(w.Price),
			nullString(w.URL), nullString(w.Notes), formatTimePtr(w.PurchasedAt), w.OrderIndex, formatTime(w.UpdatedAt),
			id, s.userID)
	})
	if err != nil {
		return models.WishlistItem{}, fmt.Errorf("failed to update wishlist item: %w", err)
	}
	return w, nil
}

func (s *Store) DeleteWishlistItem(ctx context.Context, id string) error {
	defer s.track("delete_wishlist")()
	db, err := s.conn()
	if err != nil {
		return err
	}
	if err := s.execOne(ctx, db, "wishlist item", id, "DELETE FROM wishlist_items WHERE id = ? AND user_id = ?", id, s.userID); err != nil {
		return fmt.Errorf("failed to delete wishlist item: %w", err)
	}
	return nil
}
