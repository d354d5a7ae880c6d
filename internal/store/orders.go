package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"marketplace/internal/models"
)

// PlaceOrderTx writes an order, its items, a pending payment and the `sale`
// inventory ledger rows in a single transaction. Stock is checked under a row
// lock so concurrent orders cannot oversell a product.
func (s *Store) PlaceOrderTx(ctx context.Context, order *models.Order, items []models.OrderItem, payment *models.Payment) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = tx.GetContext(ctx, order, `
		INSERT INTO orders (user_id, merchant_id, total_price, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		order.UserID, order.MerchantID, order.TotalPrice, order.Status)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	for i := range items {
		items[i].OrderID = order.ID

		var available int
		err = tx.GetContext(ctx, &available,
			"SELECT stock_quantity FROM products WHERE id = $1 FOR UPDATE", items[i].ProductID)
		if err != nil {
			return fmt.Errorf("failed to lock product %s: %w", items[i].ProductID, err)
		}
		if available < items[i].Quantity {
			return fmt.Errorf("insufficient stock for product %s: available=%d, requested=%d",
				items[i].ProductID, available, items[i].Quantity)
		}

		err = tx.GetContext(ctx, &items[i].ID, `
			INSERT INTO order_items (order_id, product_id, quantity, price)
			VALUES ($1, $2, $3, $4)
			RETURNING id`,
			items[i].OrderID, items[i].ProductID, items[i].Quantity, items[i].Price)
		if err != nil {
			return fmt.Errorf("failed to create order item: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO inventory (product_id, stock_change, reason)
			VALUES ($1, $2, $3)`,
			items[i].ProductID, -items[i].Quantity, models.InventoryReasonSale)
		if err != nil {
			return fmt.Errorf("failed to record sale: %w", err)
		}

		_, err = tx.ExecContext(ctx,
			"UPDATE products SET stock_quantity = stock_quantity - $1 WHERE id = $2",
			items[i].Quantity, items[i].ProductID)
		if err != nil {
			return fmt.Errorf("failed to decrement stock: %w", err)
		}
	}

	payment.OrderID = order.ID
	err = tx.GetContext(ctx, payment, `
		INSERT INTO payments (order_id, user_id, amount, method, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		payment.OrderID, payment.UserID, payment.Amount, payment.Method, payment.Status)
	if err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}

	return tx.Commit()
}

// GetOrderByID retrieves an order by ID
func (s *Store) GetOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, "SELECT * FROM orders WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("order not found: %s", id)
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrdersByUserID retrieves orders for a user
func (s *Store) GetOrdersByUserID(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.SelectContext(ctx, &orders,
		"SELECT * FROM orders WHERE user_id = $1 ORDER BY created_at DESC", userID)
	return orders, err
}

// GetOrdersByMerchantID retrieves orders placed against a merchant
func (s *Store) GetOrdersByMerchantID(ctx context.Context, merchantID uuid.UUID) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.SelectContext(ctx, &orders,
		"SELECT * FROM orders WHERE merchant_id = $1 ORDER BY created_at DESC", merchantID)
	return orders, err
}

// UpdateOrderStatus updates order status
func (s *Store) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE orders SET status = $1 WHERE id = $2", status, orderID)
	return err
}

// GetOrderItemsByOrderID retrieves all items for an order
func (s *Store) GetOrderItemsByOrderID(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error) {
	var items []models.OrderItem
	err := s.db.SelectContext(ctx, &items,
		"SELECT * FROM order_items WHERE order_id = $1", orderID)
	return items, err
}

// GetMerchantOwnerForOrder resolves the user owning the merchant an order
// was placed against
func (s *Store) GetMerchantOwnerForOrder(ctx context.Context, orderID uuid.UUID) (uuid.UUID, error) {
	var ownerID uuid.UUID
	err := s.db.GetContext(ctx, &ownerID, `
		SELECT m.owner_id
		FROM orders o
		JOIN merchants m ON m.id = o.merchant_id
		WHERE o.id = $1`, orderID)
	if err == sql.ErrNoRows {
		return uuid.Nil, fmt.Errorf("order not found: %s", orderID)
	}
	if err != nil {
		return uuid.Nil, err
	}
	return ownerID, nil
}

// GetPaymentByOrderID retrieves the latest payment for an order
func (s *Store) GetPaymentByOrderID(ctx context.Context, orderID uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	err := s.db.GetContext(ctx, &payment,
		"SELECT * FROM payments WHERE order_id = $1 ORDER BY created_at DESC LIMIT 1", orderID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("payment not found for order: %s", orderID)
	}
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// UpdatePaymentStatus updates payment status
func (s *Store) UpdatePaymentStatus(ctx context.Context, paymentID uuid.UUID, status string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE payments SET status = $1 WHERE id = $2", status, paymentID)
	return err
}
