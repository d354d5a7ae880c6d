package store

import (
	"context"

	"github.com/google/uuid"

	"marketplace/internal/authz"
	"marketplace/internal/models"
)

// Secured wraps Store with row-level policy checks. Every method evaluates
// the applicable USING / WITH CHECK predicates for the caller before touching
// a row; a denial returns authz.NotAuthorizedError with nothing read or
// written. Services only ever hold a Secured, never the raw Store.
type Secured struct {
	store *Store
	auth  *authz.Authorizer
}

// NewSecured creates the authorizing wrapper around a store
func NewSecured(store *Store, auth *authz.Authorizer) *Secured {
	return &Secured{store: store, auth: auth}
}

func userObject(u *models.User) authz.Object {
	return authz.Object{Table: authz.TableUsers, ID: u.ID, OwnerID: u.ID}
}

func merchantObject(m *models.Merchant) authz.Object {
	return authz.Object{Table: authz.TableMerchants, ID: m.ID, OwnerID: m.OwnerID}
}

func orderObject(o *models.Order) authz.Object {
	return authz.Object{Table: authz.TableOrders, ID: o.ID, OwnerID: o.UserID}
}

func reviewObject(r *models.Review) authz.Object {
	return authz.Object{
		Table:     authz.TableReviews,
		ID:        r.ID,
		OwnerID:   r.UserID,
		ProductID: r.ProductID,
		Rating:    r.Rating,
	}
}

func wishlistObject(w *models.WishlistItem) authz.Object {
	return authz.Object{Table: authz.TableWishlist, ID: w.ID, OwnerID: w.UserID, ProductID: w.ProductID}
}

func addressObject(a *models.Address) authz.Object {
	return authz.Object{Table: authz.TableAddresses, ID: a.ID, OwnerID: a.UserID}
}

func notificationObject(n *models.Notification) authz.Object {
	return authz.Object{Table: authz.TableNotifications, ID: n.ID, OwnerID: n.UserID}
}

func paymentObject(p *models.Payment) authz.Object {
	return authz.Object{Table: authz.TablePayments, ID: p.ID, OwnerID: p.UserID}
}

// --- users ---

// GetUser returns a user row, visible to the account holder only
func (s *Secured) GetUser(ctx context.Context, sub authz.Subject, id uuid.UUID) (*models.User, error) {
	user, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.auth.Authorize(ctx, sub, authz.ActionSelect, userObject(user)); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateUserEmail lets a user change their own email
func (s *Secured) UpdateUserEmail(ctx context.Context, sub authz.Subject, id uuid.UUID, email string) error {
	user, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.auth.AuthorizeUpdate(ctx, sub, userObject(user), userObject(user)); err != nil {
		return err
	}
	return s.store.UpdateUserEmail(ctx, id, email)
}

// DeleteUser removes an account; dependent rows cascade
func (s *Secured) DeleteUser(ctx context.Context, sub authz.Subject, id uuid.UUID) error {
	user, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.auth.Authorize(ctx, sub, authz.ActionDelete, userObject(user)); err != nil {
		return err
	}
	return s.store.DeleteUser(ctx, id)
}

// --- merchants ---

// CreateMerchant files a merchant application owned by the caller
func (s *Secured) CreateMerchant(ctx context.Context, sub authz.Subject, merchant *models.Merchant) error {
	if err := s.auth.Authorize(ctx, sub, authz.ActionInsert, merchantObject(merchant)); err != nil {
		return err
	}
	return s.store.CreateMerchant(ctx, merchant)
}

// GetMerchant returns a merchant, visible to its owner only
func (s *Secured) GetMerchant(ctx context.Context, sub authz.Subject, id uuid.UUID) (*models.Merchant, error) {
	merchant, err := s.store.GetMerchantByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.auth.Authorize(ctx, sub, authz.ActionSelect, merchantObject(merchant)); err != nil {
		return nil, err
	}
	return merchant, nil
}

// GetOwnMerchant returns the merchant owned by the caller
func (s *Secured) GetOwnMerchant(ctx context.Context, sub authz.Subject) (*models.Merchant, error) {
	merchant, err := s.store.GetMerchantByOwnerID(ctx, sub.ID)
	if err != nil {
		return nil, err
	}
	if err := s.auth.Authorize(ctx, sub, authz.ActionSelect, merchantObject(merchant)); err != nil {
		return nil, err
	}
	return merchant, nil
}

// UpdateMerchant updates business details, owner only
func (s *Secured) UpdateMerchant(ctx context.Context, sub authz.Subject, merchant *models.Merchant) error {
	existing, err := s.store.GetMerchantByID(ctx, merchant.ID)
	if err != nil {
		return err
	}
	merchant.OwnerID = existing.OwnerID
	if err := s.auth.AuthorizeUpdate(ctx, sub, merchantObject(existing), merchantObject(merchant)); err != nil {
		return err
	}
	return s.store.UpdateMerchant(ctx, merchant)
}

// UpdateMerchantStatus transitions a merchant's approval status. Status
// transitions are controlled externally, so only admins pass.
func (s *Secured) UpdateMerchantStatus(ctx context.Context, sub authz.Subject, id uuid.UUID, status string) error {
	existing, err := s.store.GetMerchantByID(ctx, id)
	if err != nil {
		return err
	}
	if !sub.IsAdmin() {
		return authz.NotAuthorizedError{Subject: sub, Action: authz.ActionUpdate, Object: merchantObject(existing)}
	}
	return s.store.UpdateMerchantStatus(ctx, id, status)
}

// DeleteMerchant removes a merchant, owner only
func (s *Secured) DeleteMerchant(ctx context.Context, sub authz.Subject, id uuid.UUID) error {
	merchant, err := s.store.GetMerchantByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.auth.Authorize(ctx, sub, authz.ActionDelete, merchantObject(merchant)); err != nil {
		return err
	}
	return s.store.DeleteMerchant(ctx, id)
}

// --- catalog ---

// CreateCategory adds a catalog category, admin only
func (s *Secured) CreateCategory(ctx context.Context, sub authz.Subject, category *models.Category) error {
	obj := authz.Object{Table: authz.TableCategories, ID: category.ID}
	if err := s.auth.Authorize(ctx, sub, authz.ActionInsert, obj); err != nil {
		return err
	}
	return s.store.CreateCategory(ctx, category)
}

// GetCategories lists categories, public
func (s *Secured) GetCategories(ctx context.Context) ([]models.Category, error) {
	return s.store.GetCategories(ctx)
}

// CreateProduct adds a product under the caller's merchant
func (s *Secured) CreateProduct(ctx context.Context, sub authz.Subject, product *models.Product) error {
	merchant, err := s.store.GetMerchantByID(ctx, product.MerchantID)
	if err != nil {
		return err
	}
	obj := authz.Object{
		Table:           authz.TableProducts,
		ID:              product.ID,
		MerchantOwnerID: merchant.OwnerID,
	}
	if err := s.auth.Authorize(ctx, sub, authz.ActionInsert, obj); err != nil {
		return err
	}
	return s.store.CreateProduct(ctx, product)
}

// GetProduct returns a product; the catalog is public
func (s *Secured) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return s.store.GetProductByID(ctx, id)
}

// GetProducts lists the public catalog
func (s *Secured) GetProducts(ctx context.Context) ([]models.Product, error) {
	return s.store.GetProducts(ctx)
}

// GetProductsByCategory lists products in a category
func (s *Secured) GetProductsByCategory(ctx context.Context, categoryID uuid.UUID) ([]models.Product, error) {
	return s.store.GetProductsByCategory(ctx, categoryID)
}

// GetProductsByIDs retrieves multiple products; the catalog is public
func (s *Secured) GetProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	return s.store.GetProductsByIDs(ctx, ids)
}

func (s *Secured) productObjectWithOwner(ctx context.Context, product *models.Product) (authz.Object, error) {
	ownerID, err := s.store.GetProductOwner(ctx, product.ID)
	if err != nil {
		return authz.Object{}, err
	}
	return authz.Object{Table: authz.TableProducts, ID: product.ID, MerchantOwnerID: ownerID}, nil
}

// UpdateProduct updates a product, merchant owner only
func (s *Secured) UpdateProduct(ctx context.Context, sub authz.Subject, product *models.Product) error {
	existing, err := s.store.GetProductByID(ctx, product.ID)
	if err != nil {
		return err
	}
	obj, err := s.productObjectWithOwner(ctx, existing)
	if err != nil {
		return err
	}
	if err := s.auth.AuthorizeUpdate(ctx, sub, obj, obj); err != nil {
		return err
	}
	product.MerchantID = existing.MerchantID
	return s.store.UpdateProduct(ctx, product)
}

// DeleteProduct removes a product, merchant owner only
func (s *Secured) DeleteProduct(ctx context.Context, sub authz.Subject, id uuid.UUID) error {
	existing, err := s.store.GetProductByID(ctx, id)
	if err != nil {
		return err
	}
	obj, err := s.productObjectWithOwner(ctx, existing)
	if err != nil {
		return err
	}
	if err := s.auth.Authorize(ctx, sub, authz.ActionDelete, obj); err != nil {
		return err
	}
	return s.store.DeleteProduct(ctx, id)
}

// --- inventory ---

// AppendInventoryEntry records a stock movement, merchant owner only
func (s *Secured) AppendInventoryEntry(ctx context.Context, sub authz.Subject, entry *models.InventoryEntry) error {
	ownerID, err := s.store.GetProductOwner(ctx, entry.ProductID)
	if err != nil {
		return err
	}
	obj := authz.Object{
		Table:           authz.TableInventory,
		ProductID:       entry.ProductID,
		MerchantOwnerID: ownerID,
	}
	if err := s.auth.Authorize(ctx, sub, authz.ActionInsert, obj); err != nil {
		return err
	}
	return s.store.AppendInventoryEntry(ctx, entry)
}

// GetInventory returns a product's ledger, merchant owner only
func (s *Secured) GetInventory(ctx context.Context, sub authz.Subject, productID uuid.UUID) ([]models.InventoryEntry, error) {
	ownerID, err := s.store.GetProductOwner(ctx, productID)
	if err != nil {
		return nil, err
	}
	obj := authz.Object{
		Table:           authz.TableInventory,
		ProductID:       productID,
		MerchantOwnerID: ownerID,
	}
	if err := s.auth.Authorize(ctx, sub, authz.ActionSelect, obj); err != nil {
		return nil, err
	}
	return s.store.GetInventoryByProductID(ctx, productID)
}

// --- orders ---

// PlaceOrder writes an order with items and a pending payment, all owned by
// the caller. Insert policies for orders, order_items and payments are
// checked before the transaction starts.
func (s *Secured) PlaceOrder(ctx context.Context, sub authz.Subject, order *models.Order, items []models.OrderItem, payment *models.Payment) error {
	if err := s.auth.Authorize(ctx, sub, authz.ActionInsert, orderObject(order)); err != nil {
		return err
	}
	for i := range items {
		obj := authz.Object{
			Table:     authz.TableOrderItems,
			OwnerID:   order.UserID,
			ProductID: items[i].ProductID,
		}
		if err := s.auth.Authorize(ctx, sub, authz.ActionInsert, obj); err != nil {
			return err
		}
	}
	if err := s.auth.Authorize(ctx, sub, authz.ActionInsert, paymentObject(payment)); err != nil {
		return err
	}
	return s.store.PlaceOrderTx(ctx, order, items, payment)
}

// GetOrder returns an order with its items, customer only
func (s *Secured) GetOrder(ctx context.Context, sub authz.Subject, id uuid.UUID) (*models.Order, []models.OrderItem, error) {
	order, err := s.store.GetOrderByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if err := s.auth.Authorize(ctx, sub, authz.ActionSelect, orderObject(order)); err != nil {
		return nil, nil, err
	}
	items, err := s.store.GetOrderItemsByOrderID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return order, items, nil
}

// GetOwnOrders lists the caller's orders
func (s *Secured) GetOwnOrders(ctx context.Context, sub authz.Subject) ([]models.Order, error) {
	orders, err := s.store.GetOrdersByUserID(ctx, sub.ID)
	if err != nil {
		return nil, err
	}
	return authz.Filter(ctx, s.auth, sub, orders, func(o models.Order) authz.Object {
		return orderObject(&o)
	})
}

// UpdateOrderStatus transitions an order, allowed to the owner of the
// merchant the order was placed against
func (s *Secured) UpdateOrderStatus(ctx context.Context, sub authz.Subject, orderID uuid.UUID, status string) (*models.Order, error) {
	order, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	merchantOwner, err := s.store.GetMerchantOwnerForOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	obj := authz.Object{
		Table:           authz.TableOrders,
		ID:              order.ID,
		OwnerID:         order.UserID,
		MerchantOwnerID: merchantOwner,
	}
	if err := s.auth.AuthorizeUpdate(ctx, sub, obj, obj); err != nil {
		return nil, err
	}
	if err := s.store.UpdateOrderStatus(ctx, orderID, status); err != nil {
		return nil, err
	}
	return order, nil
}

// GetPayment returns the latest payment for an order, payer only
func (s *Secured) GetPayment(ctx context.Context, sub authz.Subject, orderID uuid.UUID) (*models.Payment, error) {
	payment, err := s.store.GetPaymentByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := s.auth.Authorize(ctx, sub, authz.ActionSelect, paymentObject(payment)); err != nil {
		return nil, err
	}
	return payment, nil
}

// --- reviews ---

// CreateReview inserts a review. The policy requires ownership, a rating in
// [1,5] and a recorded purchase of the product by the caller.
func (s *Secured) CreateReview(ctx context.Context, sub authz.Subject, review *models.Review) error {
	if err := s.auth.Authorize(ctx, sub, authz.ActionInsert, reviewObject(review)); err != nil {
		return err
	}
	return s.store.CreateReview(ctx, review)
}

// GetReviewsByProduct lists reviews for a product; reviews are public reads
func (s *Secured) GetReviewsByProduct(ctx context.Context, productID uuid.UUID) ([]models.Review, error) {
	return s.store.GetReviewsByProductID(ctx, productID)
}

// UpdateReview updates a review, author only, rating bounds re-checked
func (s *Secured) UpdateReview(ctx context.Context, sub authz.Subject, review *models.Review) error {
	existing, err := s.store.GetReviewByID(ctx, review.ID)
	if err != nil {
		return err
	}
	review.UserID = existing.UserID
	review.ProductID = existing.ProductID
	if err := s.auth.AuthorizeUpdate(ctx, sub, reviewObject(existing), reviewObject(review)); err != nil {
		return err
	}
	return s.store.UpdateReview(ctx, review)
}

// DeleteReview removes a review, author only
func (s *Secured) DeleteReview(ctx context.Context, sub authz.Subject, id uuid.UUID) error {
	existing, err := s.store.GetReviewByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.auth.Authorize(ctx, sub, authz.ActionDelete, reviewObject(existing)); err != nil {
		return err
	}
	return s.store.DeleteReview(ctx, id)
}

// --- wishlist ---

// AddWishlistItem saves a product to the caller's wishlist
func (s *Secured) AddWishlistItem(ctx context.Context, sub authz.Subject, item *models.WishlistItem) error {
	if err := s.auth.Authorize(ctx, sub, authz.ActionInsert, wishlistObject(item)); err != nil {
		return err
	}
	return s.store.CreateWishlistItem(ctx, item)
}

// GetWishlist lists the caller's wishlist
func (s *Secured) GetWishlist(ctx context.Context, sub authz.Subject) ([]models.WishlistItem, error) {
	items, err := s.store.GetWishlistByUserID(ctx, sub.ID)
	if err != nil {
		return nil, err
	}
	return authz.Filter(ctx, s.auth, sub, items, func(w models.WishlistItem) authz.Object {
		return wishlistObject(&w)
	})
}

// RemoveWishlistItem removes a wishlist entry, owner only
func (s *Secured) RemoveWishlistItem(ctx context.Context, sub authz.Subject, id uuid.UUID) error {
	existing, err := s.store.GetWishlistItemByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.auth.Authorize(ctx, sub, authz.ActionDelete, wishlistObject(existing)); err != nil {
		return err
	}
	return s.store.DeleteWishlistItem(ctx, id)
}

// --- addresses ---

// CreateAddress adds a shipping address owned by the caller
func (s *Secured) CreateAddress(ctx context.Context, sub authz.Subject, address *models.Address) error {
	if err := s.auth.Authorize(ctx, sub, authz.ActionInsert, addressObject(address)); err != nil {
		return err
	}
	return s.store.CreateAddress(ctx, address)
}

// GetAddresses lists the caller's addresses
func (s *Secured) GetAddresses(ctx context.Context, sub authz.Subject) ([]models.Address, error) {
	addresses, err := s.store.GetAddressesByUserID(ctx, sub.ID)
	if err != nil {
		return nil, err
	}
	return authz.Filter(ctx, s.auth, sub, addresses, func(a models.Address) authz.Object {
		return addressObject(&a)
	})
}

// UpdateAddress updates an address, owner only
func (s *Secured) UpdateAddress(ctx context.Context, sub authz.Subject, address *models.Address) error {
	existing, err := s.store.GetAddressByID(ctx, address.ID)
	if err != nil {
		return err
	}
	address.UserID = existing.UserID
	if err := s.auth.AuthorizeUpdate(ctx, sub, addressObject(existing), addressObject(address)); err != nil {
		return err
	}
	return s.store.UpdateAddress(ctx, address)
}

// DeleteAddress removes an address, owner only
func (s *Secured) DeleteAddress(ctx context.Context, sub authz.Subject, id uuid.UUID) error {
	existing, err := s.store.GetAddressByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.auth.Authorize(ctx, sub, authz.ActionDelete, addressObject(existing)); err != nil {
		return err
	}
	return s.store.DeleteAddress(ctx, id)
}

// --- notifications ---

// CreateNotification inserts a notification. Only the system subject (worker
// fan-out) or an admin passes the insert policy.
func (s *Secured) CreateNotification(ctx context.Context, sub authz.Subject, notification *models.Notification) error {
	if err := s.auth.Authorize(ctx, sub, authz.ActionInsert, notificationObject(notification)); err != nil {
		return err
	}
	return s.store.CreateNotification(ctx, notification)
}

// GetNotifications lists the caller's notifications
func (s *Secured) GetNotifications(ctx context.Context, sub authz.Subject) ([]models.Notification, error) {
	notifications, err := s.store.GetNotificationsByUserID(ctx, sub.ID)
	if err != nil {
		return nil, err
	}
	return authz.Filter(ctx, s.auth, sub, notifications, func(n models.Notification) authz.Object {
		return notificationObject(&n)
	})
}

// MarkNotificationRead marks a notification read, recipient only
func (s *Secured) MarkNotificationRead(ctx context.Context, sub authz.Subject, id uuid.UUID) error {
	existing, err := s.store.GetNotificationByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.auth.AuthorizeUpdate(ctx, sub, notificationObject(existing), notificationObject(existing)); err != nil {
		return err
	}
	return s.store.MarkNotificationRead(ctx, id)
}

// --- coupons ---

// CreateCoupon creates a discount code, admin only
func (s *Secured) CreateCoupon(ctx context.Context, sub authz.Subject, coupon *models.Coupon) error {
	obj := authz.Object{Table: authz.TableCoupons, ID: coupon.ID}
	if err := s.auth.Authorize(ctx, sub, authz.ActionInsert, obj); err != nil {
		return err
	}
	return s.store.CreateCoupon(ctx, coupon)
}

// GetCouponByCode looks up a coupon; codes are public reads
func (s *Secured) GetCouponByCode(ctx context.Context, code string) (*models.Coupon, error) {
	return s.store.GetCouponByCode(ctx, code)
}
