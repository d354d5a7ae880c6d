package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"marketplace/internal/authz"
	"marketplace/internal/models"
	"marketplace/internal/redisclient"
	"marketplace/internal/store"
	"marketplace/internal/util"
)

// CatalogService handles products and categories with a read-through cache
type CatalogService struct {
	secured *store.Secured
	redis   *redisclient.Client
	logger  *zap.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(secured *store.Secured, redis *redisclient.Client) *CatalogService {
	return &CatalogService{
		secured: secured,
		redis:   redis,
		logger:  util.GetLogger(),
	}
}

// CreateProductRequest represents a merchant adding a product
type CreateProductRequest struct {
	CategoryID    uuid.UUID `json:"category_id" binding:"required"`
	Name          string    `json:"name" binding:"required"`
	Description   string    `json:"description"`
	Price         int64     `json:"price" binding:"min=0"`
	StockQuantity int       `json:"stock_quantity" binding:"min=0"`
}

// CreateProduct adds a product under the caller's merchant
func (s *CatalogService) CreateProduct(ctx context.Context, sub authz.Subject, req *CreateProductRequest) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.CreateProduct")
	defer span.End()

	merchant, err := s.secured.GetOwnMerchant(ctx, sub)
	if err != nil {
		return nil, err
	}

	product := &models.Product{
		MerchantID:    merchant.ID,
		CategoryID:    req.CategoryID,
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		StockQuantity: req.StockQuantity,
	}

	if err := s.secured.CreateProduct(ctx, sub, product); err != nil {
		return nil, err
	}
	return product, nil
}

// GetProduct returns a product, serving from the cache when possible
func (s *CatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.GetProduct")
	defer span.End()

	cached, err := s.redis.GetProduct(ctx, id)
	if err != nil {
		s.logger.Warn("Product cache read failed", zap.Error(err))
	}
	if cached != nil {
		return cached, nil
	}

	product, err := s.secured.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.redis.SetProduct(ctx, product); err != nil {
		s.logger.Warn("Product cache write failed", zap.Error(err))
	}
	return product, nil
}

// ListProducts lists the catalog, optionally by category
func (s *CatalogService) ListProducts(ctx context.Context, categoryID uuid.UUID) ([]models.Product, error) {
	if categoryID != uuid.Nil {
		return s.secured.GetProductsByCategory(ctx, categoryID)
	}
	return s.secured.GetProducts(ctx)
}

// UpdateProduct updates a product and invalidates its cache entry
func (s *CatalogService) UpdateProduct(ctx context.Context, sub authz.Subject, product *models.Product) error {
	ctx, span := util.StartSpan(ctx, "CatalogService.UpdateProduct")
	defer span.End()

	if err := s.secured.UpdateProduct(ctx, sub, product); err != nil {
		return err
	}
	if err := s.redis.InvalidateProduct(ctx, product.ID); err != nil {
		s.logger.Warn("Product cache invalidation failed", zap.Error(err))
	}
	return nil
}

// DeleteProduct removes a product and its cache entry
func (s *CatalogService) DeleteProduct(ctx context.Context, sub authz.Subject, id uuid.UUID) error {
	if err := s.secured.DeleteProduct(ctx, sub, id); err != nil {
		return err
	}
	if err := s.redis.InvalidateProduct(ctx, id); err != nil {
		s.logger.Warn("Product cache invalidation failed", zap.Error(err))
	}
	return nil
}

// CreateCategory adds a category, admin only
func (s *CatalogService) CreateCategory(ctx context.Context, sub authz.Subject, name string) (*models.Category, error) {
	category := &models.Category{Name: name}
	if err := s.secured.CreateCategory(ctx, sub, category); err != nil {
		return nil, err
	}
	return category, nil
}

// ListCategories lists all categories
func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.secured.GetCategories(ctx)
}

// RestockProduct records a restock or return in the inventory ledger. The
// product cache entry is dropped since stock_quantity changed.
func (s *CatalogService) RestockProduct(ctx context.Context, sub authz.Subject, productID uuid.UUID, change int, reason string) (*models.InventoryEntry, error) {
	entry := &models.InventoryEntry{
		ProductID:   productID,
		StockChange: change,
		Reason:      reason,
	}
	if err := s.secured.AppendInventoryEntry(ctx, sub, entry); err != nil {
		return nil, err
	}
	if err := s.redis.InvalidateProduct(ctx, productID); err != nil {
		s.logger.Warn("Product cache invalidation failed", zap.Error(err))
	}
	return entry, nil
}

// GetInventory returns a product's stock ledger
func (s *CatalogService) GetInventory(ctx context.Context, sub authz.Subject, productID uuid.UUID) ([]models.InventoryEntry, error) {
	return s.secured.GetInventory(ctx, sub, productID)
}
