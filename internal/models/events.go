package models

import (
	"time"

	"github.com/google/uuid"
)

// Event types
const (
	EventTypeOrderPlaced        = "ORDER_PLACED"
	EventTypeOrderStatusChanged = "ORDER_STATUS_CHANGED"
	EventTypeReviewCreated      = "REVIEW_CREATED"
	EventTypePromoCreated       = "PROMO_CREATED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderPlacedEvent published when a customer places an order
type OrderPlacedEvent struct {
	BaseEvent
	OrderID    uuid.UUID       `json:"order_id"`
	UserID     uuid.UUID       `json:"user_id"`
	MerchantID uuid.UUID       `json:"merchant_id"`
	TotalPrice int64           `json:"total_price"`
	Items      []OrderItemData `json:"items"`
}

// OrderStatusChangedEvent published when a merchant transitions an order
type OrderStatusChangedEvent struct {
	BaseEvent
	OrderID   uuid.UUID `json:"order_id"`
	UserID    uuid.UUID `json:"user_id"`
	OldStatus string    `json:"old_status"`
	NewStatus string    `json:"new_status"`
}

// ReviewCreatedEvent published when a purchased product is reviewed
type ReviewCreatedEvent struct {
	BaseEvent
	ReviewID  uuid.UUID `json:"review_id"`
	UserID    uuid.UUID `json:"user_id"`
	ProductID uuid.UUID `json:"product_id"`
	Rating    int       `json:"rating"`
}

// PromoCreatedEvent published when an admin creates a coupon
type PromoCreatedEvent struct {
	BaseEvent
	CouponID           uuid.UUID `json:"coupon_id"`
	Code               string    `json:"code"`
	DiscountPercentage int       `json:"discount_percentage"`
	ExpiresAt          time.Time `json:"expires_at"`
}

// OrderItemData represents item data in events
type OrderItemData struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
	Price     int64     `json:"price"`
}
