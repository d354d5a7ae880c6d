package redisclient

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"marketplace/internal/models"
	"marketplace/internal/util"
)

const (
	productTTL = 5 * time.Minute
	couponTTL  = time.Minute
)

type Client struct {
	rdb *redis.Client
}

// NewClient creates a new Redis client
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

func productKey(id uuid.UUID) string {
	return fmt.Sprintf("product:%s", id)
}

// GetProduct returns a cached product, or nil on a miss
func (c *Client) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	data, err := c.rdb.Get(ctx, productKey(id)).Bytes()
	if err == redis.Nil {
		util.ProductCacheMissesTotal.Inc()
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var product models.Product
	if err := json.Unmarshal(data, &product); err != nil {
		return nil, fmt.Errorf("failed to decode cached product: %w", err)
	}

	util.ProductCacheHitsTotal.Inc()
	return &product, nil
}

// SetProduct caches a product with TTL
func (c *Client) SetProduct(ctx context.Context, product *models.Product) error {
	data, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("failed to encode product: %w", err)
	}
	return c.rdb.Set(ctx, productKey(product.ID), data, productTTL).Err()
}

// InvalidateProduct drops a product from the cache after a write
func (c *Client) InvalidateProduct(ctx context.Context, id uuid.UUID) error {
	return c.rdb.Del(ctx, productKey(id)).Err()
}

func couponKey(code string) string {
	return fmt.Sprintf("coupon:%s", code)
}

// GetCoupon returns a cached coupon, or nil on a miss
func (c *Client) GetCoupon(ctx context.Context, code string) (*models.Coupon, error) {
	data, err := c.rdb.Get(ctx, couponKey(code)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var coupon models.Coupon
	if err := json.Unmarshal(data, &coupon); err != nil {
		return nil, fmt.Errorf("failed to decode cached coupon: %w", err)
	}
	return &coupon, nil
}

// SetCoupon caches a coupon with a short TTL
func (c *Client) SetCoupon(ctx context.Context, coupon *models.Coupon) error {
	data, err := json.Marshal(coupon)
	if err != nil {
		return fmt.Errorf("failed to encode coupon: %w", err)
	}
	return c.rdb.Set(ctx, couponKey(coupon.Code), data, couponTTL).Err()
}
