package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"marketplace/internal/models"
)

// CreateCategory creates a new catalog category
func (s *Store) CreateCategory(ctx context.Context, category *models.Category) error {
	query := `INSERT INTO categories (name) VALUES ($1) RETURNING id`
	return s.db.GetContext(ctx, &category.ID, query, category.Name)
}

// GetCategories retrieves all categories
func (s *Store) GetCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := s.db.SelectContext(ctx, &categories, "SELECT * FROM categories ORDER BY name")
	return categories, err
}

// CreateProduct creates a new product
func (s *Store) CreateProduct(ctx context.Context, product *models.Product) error {
	query := `
		INSERT INTO products (merchant_id, category_id, name, description, price, stock_quantity)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	return s.db.GetContext(ctx, product, query,
		product.MerchantID, product.CategoryID, product.Name,
		product.Description, product.Price, product.StockQuantity)
}

// GetProductByID retrieves a product by ID
func (s *Store) GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := s.db.GetContext(ctx, &product, "SELECT * FROM products WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("product not found: %s", id)
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// GetProducts retrieves all products
func (s *Store) GetProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := s.db.SelectContext(ctx, &products, "SELECT * FROM products ORDER BY created_at DESC")
	return products, err
}

// GetProductsByCategory retrieves products in a category
func (s *Store) GetProductsByCategory(ctx context.Context, categoryID uuid.UUID) ([]models.Product, error) {
	var products []models.Product
	err := s.db.SelectContext(ctx, &products,
		"SELECT * FROM products WHERE category_id = $1 ORDER BY created_at DESC", categoryID)
	return products, err
}

// GetProductsByIDs retrieves multiple products by IDs
func (s *Store) GetProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}

	query, args, err := sqlx.In("SELECT * FROM products WHERE id IN (?)", ids)
	if err != nil {
		return nil, err
	}
	query = s.db.Rebind(query)

	var products []models.Product
	err = s.db.SelectContext(ctx, &products, query, args...)
	return products, err
}

// UpdateProduct updates a product's mutable fields
func (s *Store) UpdateProduct(ctx context.Context, product *models.Product) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE products
		SET category_id = $1, name = $2, description = $3, price = $4, stock_quantity = $5
		WHERE id = $6`,
		product.CategoryID, product.Name, product.Description,
		product.Price, product.StockQuantity, product.ID)
	return err
}

// DeleteProduct removes a product
func (s *Store) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM products WHERE id = $1", id)
	return err
}

// GetProductOwner resolves the user owning the merchant behind a product.
// The row-level policies for products and inventory key off this identity.
func (s *Store) GetProductOwner(ctx context.Context, productID uuid.UUID) (uuid.UUID, error) {
	var ownerID uuid.UUID
	err := s.db.GetContext(ctx, &ownerID, `
		SELECT m.owner_id
		FROM products p
		JOIN merchants m ON m.id = p.merchant_id
		WHERE p.id = $1`, productID)
	if err == sql.ErrNoRows {
		return uuid.Nil, fmt.Errorf("product not found: %s", productID)
	}
	if err != nil {
		return uuid.Nil, err
	}
	return ownerID, nil
}
