package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"marketplace/internal/models"
)

// AppendInventoryEntry records a stock movement in the append-only ledger and
// adjusts the product's stock_quantity in the same transaction.
func (s *Store) AppendInventoryEntry(ctx context.Context, entry *models.InventoryEntry) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = tx.GetContext(ctx, entry, `
		INSERT INTO inventory (product_id, stock_change, reason)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`,
		entry.ProductID, entry.StockChange, entry.Reason)
	if err != nil {
		return fmt.Errorf("failed to append inventory entry: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE products SET stock_quantity = stock_quantity + $1 WHERE id = $2",
		entry.StockChange, entry.ProductID)
	if err != nil {
		return fmt.Errorf("failed to adjust stock quantity: %w", err)
	}

	return tx.Commit()
}

// GetInventoryByProductID retrieves the ledger for a product, newest first
func (s *Store) GetInventoryByProductID(ctx context.Context, productID uuid.UUID) ([]models.InventoryEntry, error) {
	var entries []models.InventoryEntry
	err := s.db.SelectContext(ctx, &entries,
		"SELECT * FROM inventory WHERE product_id = $1 ORDER BY created_at DESC", productID)
	return entries, err
}
