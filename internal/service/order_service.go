package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"marketplace/internal/authz"
	"marketplace/internal/broker"
	"marketplace/internal/models"
	"marketplace/internal/store"
	"marketplace/internal/util"
)

// OrderService handles order placement and status transitions
type OrderService struct {
	secured        *store.Secured
	eventPublisher *broker.EventPublisher
	promos         *PromoService
	logger         *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(secured *store.Secured, eventPublisher *broker.EventPublisher, promos *PromoService) *OrderService {
	return &OrderService{
		secured:        secured,
		eventPublisher: eventPublisher,
		promos:         promos,
		logger:         util.GetLogger(),
	}
}

// PlaceOrderRequest represents a request to place an order
type PlaceOrderRequest struct {
	Items         []OrderItemRequest `json:"items" binding:"required,min=1"`
	PaymentMethod string             `json:"payment_method" binding:"required"`
	CouponCode    string             `json:"coupon_code,omitempty"`
}

// OrderItemRequest represents an item in an order
type OrderItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1"`
}

// PlaceOrderResponse represents the response after placing an order
type PlaceOrderResponse struct {
	OrderID    uuid.UUID `json:"order_id"`
	TotalPrice int64     `json:"total_price"`
	Status     string    `json:"status"`
}

// PlaceOrder validates items, computes the total (with an optional coupon
// discount), and writes order, items, pending payment and sale ledger rows in
// one transaction. An OrderPlaced event is published on success.
func (s *OrderService) PlaceOrder(ctx context.Context, sub authz.Subject, req *PlaceOrderRequest) (*PlaceOrderResponse, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.PlaceOrder")
	defer span.End()

	start := time.Now()
	defer func() {
		util.OrderPlacementLatency.Observe(time.Since(start).Seconds())
	}()

	switch req.PaymentMethod {
	case models.PaymentMethodStripe, models.PaymentMethodMpesa:
	default:
		util.OrdersFailedTotal.WithLabelValues("invalid_payment_method").Inc()
		return nil, fmt.Errorf("unsupported payment method: %s", req.PaymentMethod)
	}

	products, merchantID, err := s.validateItems(ctx, req.Items)
	if err != nil {
		util.OrdersFailedTotal.WithLabelValues("invalid_items").Inc()
		return nil, err
	}

	total := calculateTotal(req.Items, products)

	if req.CouponCode != "" {
		coupon, err := s.promos.ValidateCoupon(ctx, req.CouponCode)
		if err != nil {
			util.OrdersFailedTotal.WithLabelValues("invalid_coupon").Inc()
			return nil, err
		}
		total = applyDiscount(total, coupon.DiscountPercentage)
	}

	order := &models.Order{
		UserID:     sub.ID,
		MerchantID: merchantID,
		TotalPrice: total,
		Status:     models.OrderStatusPending,
	}

	items := make([]models.OrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, models.OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     products[item.ProductID].Price,
		})
	}

	payment := &models.Payment{
		UserID: sub.ID,
		Amount: total,
		Method: req.PaymentMethod,
		Status: models.PaymentStatusPending,
	}

	if err := s.secured.PlaceOrder(ctx, sub, order, items, payment); err != nil {
		if authz.IsNotAuthorized(err) {
			util.OrdersFailedTotal.WithLabelValues("unauthorized").Inc()
		} else {
			util.OrdersFailedTotal.WithLabelValues("db_error").Inc()
		}
		return nil, err
	}

	util.OrdersPlacedTotal.Inc()
	s.logger.Info("Order placed",
		zap.String("order_id", order.ID.String()),
		zap.String("user_id", sub.ID.String()),
		zap.Int64("total_price", total))

	eventItems := make([]models.OrderItemData, 0, len(items))
	for _, item := range items {
		eventItems = append(eventItems, models.OrderItemData{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}

	event := &models.OrderPlacedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderPlaced,
			Timestamp: time.Now(),
		},
		OrderID:    order.ID,
		UserID:     order.UserID,
		MerchantID: order.MerchantID,
		TotalPrice: order.TotalPrice,
		Items:      eventItems,
	}

	if err := s.eventPublisher.PublishOrderPlaced(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderPlaced event", zap.Error(err))
	}

	return &PlaceOrderResponse{
		OrderID:    order.ID,
		TotalPrice: order.TotalPrice,
		Status:     order.Status,
	}, nil
}

// validateItems resolves products and checks all items belong to one merchant
func (s *OrderService) validateItems(ctx context.Context, items []OrderItemRequest) (map[uuid.UUID]*models.Product, uuid.UUID, error) {
	productIDs := make([]uuid.UUID, len(items))
	for i, item := range items {
		productIDs[i] = item.ProductID
	}

	products, err := s.secured.GetProductsByIDs(ctx, productIDs)
	if err != nil {
		return nil, uuid.Nil, err
	}

	productMap := make(map[uuid.UUID]*models.Product)
	for i := range products {
		productMap[products[i].ID] = &products[i]
	}

	var merchantID uuid.UUID
	for _, id := range productIDs {
		product, ok := productMap[id]
		if !ok {
			return nil, uuid.Nil, fmt.Errorf("product not found: %s", id)
		}
		if merchantID == uuid.Nil {
			merchantID = product.MerchantID
		} else if merchantID != product.MerchantID {
			return nil, uuid.Nil, fmt.Errorf("order items must belong to a single merchant")
		}
	}

	return productMap, merchantID, nil
}

// calculateTotal sums item prices before any discount
func calculateTotal(items []OrderItemRequest, products map[uuid.UUID]*models.Product) int64 {
	var total int64
	for _, item := range items {
		total += products[item.ProductID].Price * int64(item.Quantity)
	}
	return total
}

// applyDiscount reduces a total by a percentage in [0,100]
func applyDiscount(total int64, percentage int) int64 {
	return total - total*int64(percentage)/100
}

// GetOrder retrieves an order with its items
func (s *OrderService) GetOrder(ctx context.Context, sub authz.Subject, orderID uuid.UUID) (*models.Order, []models.OrderItem, error) {
	return s.secured.GetOrder(ctx, sub, orderID)
}

// ListOrders lists the caller's orders
func (s *OrderService) ListOrders(ctx context.Context, sub authz.Subject) ([]models.Order, error) {
	return s.secured.GetOwnOrders(ctx, sub)
}

// UpdateStatus transitions an order and publishes the change
func (s *OrderService) UpdateStatus(ctx context.Context, sub authz.Subject, orderID uuid.UUID, status string) error {
	ctx, span := util.StartSpan(ctx, "OrderService.UpdateStatus")
	defer span.End()

	switch status {
	case models.OrderStatusPending, models.OrderStatusShipped,
		models.OrderStatusDelivered, models.OrderStatusCancelled:
	default:
		return fmt.Errorf("invalid order status: %s", status)
	}

	order, err := s.secured.UpdateOrderStatus(ctx, sub, orderID, status)
	if err != nil {
		return err
	}

	event := &models.OrderStatusChangedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderStatusChanged,
			Timestamp: time.Now(),
		},
		OrderID:   order.ID,
		UserID:    order.UserID,
		OldStatus: order.Status,
		NewStatus: status,
	}

	if err := s.eventPublisher.PublishOrderStatusChanged(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderStatusChanged event", zap.Error(err))
	}
	return nil
}

// GetPayment returns the payment for an order
func (s *OrderService) GetPayment(ctx context.Context, sub authz.Subject, orderID uuid.UUID) (*models.Payment, error) {
	return s.secured.GetPayment(ctx, sub, orderID)
}
