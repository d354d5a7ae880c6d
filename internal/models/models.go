package models

import (
	"time"

	"github.com/google/uuid"
)

// User roles
const (
	RoleCustomer = "customer"
	RoleMerchant = "merchant"
	RoleAdmin    = "admin"
)

// Merchant statuses
const (
	MerchantStatusPending  = "pending"
	MerchantStatusApproved = "approved"
	MerchantStatusRejected = "rejected"
)

// Order statuses
const (
	OrderStatusPending   = "pending"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

// Payment methods
const (
	PaymentMethodStripe = "stripe"
	PaymentMethodMpesa  = "mpesa"
)

// Payment statuses
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
)

// Inventory ledger reasons
const (
	InventoryReasonSale    = "sale"
	InventoryReasonRestock = "restock"
	InventoryReasonReturn  = "return"
)

// Notification types
const (
	NotificationTypeOrder   = "order"
	NotificationTypePromo   = "promo"
	NotificationTypeGeneral = "general"
)

// User represents an account: customer, merchant owner or admin
type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         string    `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Merchant represents a seller storefront owned by a user
type Merchant struct {
	ID            uuid.UUID `db:"id" json:"id"`
	OwnerID       uuid.UUID `db:"owner_id" json:"owner_id"`
	BusinessName  string    `db:"business_name" json:"business_name"`
	BusinessEmail string    `db:"business_email" json:"business_email"`
	Status        string    `db:"status" json:"status"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// Category groups products in the catalog
type Category struct {
	ID   uuid.UUID `db:"id" json:"id"`
	Name string    `db:"name" json:"name"`
}

// Product represents a catalog item sold by a merchant
type Product struct {
	ID            uuid.UUID `db:"id" json:"id"`
	MerchantID    uuid.UUID `db:"merchant_id" json:"merchant_id"`
	CategoryID    uuid.UUID `db:"category_id" json:"category_id"`
	Name          string    `db:"name" json:"name"`
	Description   string    `db:"description" json:"description"`
	Price         int64     `db:"price" json:"price"`
	StockQuantity int       `db:"stock_quantity" json:"stock_quantity"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// InventoryEntry is one row in the append-only stock ledger
type InventoryEntry struct {
	ID          uuid.UUID `db:"id" json:"id"`
	ProductID   uuid.UUID `db:"product_id" json:"product_id"`
	StockChange int       `db:"stock_change" json:"stock_change"`
	Reason      string    `db:"reason" json:"reason"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Order represents a customer order against a single merchant
type Order struct {
	ID         uuid.UUID `db:"id" json:"id"`
	UserID     uuid.UUID `db:"user_id" json:"user_id"`
	MerchantID uuid.UUID `db:"merchant_id" json:"merchant_id"`
	TotalPrice int64     `db:"total_price" json:"total_price"`
	Status     string    `db:"status" json:"status"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// OrderItem represents one product line in an order
type OrderItem struct {
	ID        uuid.UUID `db:"id" json:"id"`
	OrderID   uuid.UUID `db:"order_id" json:"order_id"`
	ProductID uuid.UUID `db:"product_id" json:"product_id"`
	Quantity  int       `db:"quantity" json:"quantity"`
	Price     int64     `db:"price" json:"price"`
}

// Payment represents a payment attempt for an order
type Payment struct {
	ID        uuid.UUID `db:"id" json:"id"`
	OrderID   uuid.UUID `db:"order_id" json:"order_id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	Amount    int64     `db:"amount" json:"amount"`
	Method    string    `db:"method" json:"method"`
	Status    string    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Coupon represents a percentage discount code
type Coupon struct {
	ID                 uuid.UUID `db:"id" json:"id"`
	Code               string    `db:"code" json:"code"`
	DiscountPercentage int       `db:"discount_percentage" json:"discount_percentage"`
	ExpiresAt          time.Time `db:"expires_at" json:"expires_at"`
}

// Review represents a product review by a purchasing customer
type Review struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	ProductID uuid.UUID `db:"product_id" json:"product_id"`
	Rating    int       `db:"rating" json:"rating"`
	Comment   string    `db:"comment" json:"comment"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// WishlistItem represents a saved product for a user
type WishlistItem struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	ProductID uuid.UUID `db:"product_id" json:"product_id"`
}

// Notification represents a message delivered to a user
type Notification struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	Type      string    `db:"type" json:"type"`
	Message   string    `db:"message" json:"message"`
	IsRead    bool      `db:"is_read" json:"is_read"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Address represents a shipping address owned by a user
type Address struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	Line1     string    `db:"line1" json:"line1"`
	City      string    `db:"city" json:"city"`
	Country   string    `db:"country" json:"country"`
	IsDefault bool      `db:"is_default" json:"is_default"`
}

// ProcessedEvent for consumer idempotency
type ProcessedEvent struct {
	EventID     string    `db:"event_id"`
	EventType   string    `db:"event_type"`
	ProcessedAt time.Time `db:"processed_at"`
}
