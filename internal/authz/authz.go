package authz

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"marketplace/internal/models"
	"marketplace/internal/util"
)

// Action is a row-level data operation.
type Action string

const (
	ActionSelect Action = "select"
	ActionInsert Action = "insert"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Table names with row-level policies. Any table/action pair without a
// registered rule is denied.
const (
	TableUsers         = "users"
	TableMerchants     = "merchants"
	TableCategories    = "categories"
	TableProducts      = "products"
	TableInventory     = "inventory"
	TableOrders        = "orders"
	TableOrderItems    = "order_items"
	TablePayments      = "payments"
	TableCoupons       = "coupons"
	TableReviews       = "reviews"
	TableWishlist      = "wishlist"
	TableNotifications = "notifications"
	TableAddresses     = "addresses"
)

// Subject is the caller identity a policy is evaluated against. The ID is
// supplied by the authentication layer; it is never derived here.
type Subject struct {
	ID   uuid.UUID
	Role string
}

// IsAdmin reports whether the subject holds the admin role.
func (s Subject) IsAdmin() bool {
	return s.Role == models.RoleAdmin
}

// SystemSubject is the identity internal workers act under (notification
// fan-out, seed bootstrap). It passes every policy the way an admin does.
func SystemSubject() Subject {
	return Subject{ID: uuid.Nil, Role: models.RoleAdmin}
}

// Object is the row snapshot a policy is evaluated against. Only the fields
// relevant to the row's table are populated.
type Object struct {
	Table string
	ID    uuid.UUID

	// OwnerID is the row's user_id (or owner_id for merchants).
	OwnerID uuid.UUID

	// MerchantOwnerID is the user owning the merchant behind the row, for
	// tables scoped to a merchant rather than a user (products, inventory,
	// order status transitions).
	MerchantOwnerID uuid.UUID

	// ProductID is set for reviews, wishlist and inventory rows.
	ProductID uuid.UUID

	// Rating is set for review rows.
	Rating int
}

// PurchaseChecker answers whether a user has bought a product through a
// recorded order. The review insert policy depends on it.
type PurchaseChecker interface {
	HasPurchased(ctx context.Context, userID, productID uuid.UUID) (bool, error)
}

// rule holds the two predicate phases for one table/action pair. using gates
// visibility of the existing row, check gates acceptance of the written row.
type rule struct {
	using         func(Subject, Object) bool
	check         func(Subject, Object) bool
	needsPurchase bool
}

func rowOwner(s Subject, o Object) bool {
	return o.OwnerID == s.ID
}

func merchantOwner(s Subject, o Object) bool {
	return o.MerchantOwnerID == s.ID
}

func anyone(Subject, Object) bool {
	return true
}

func nobody(Subject, Object) bool {
	return false
}

func ratingInRange(o Object) bool {
	return o.Rating >= 1 && o.Rating <= 5
}

// policies is the central policy table. Keeping every rule in one place keeps
// the fail-closed default auditable: a missing entry is a denial, not an
// oversight scattered across call sites.
var policies = map[string]map[Action]rule{
	TableReviews: {
		ActionSelect: {using: anyone},
		ActionInsert: {
			check: func(s Subject, o Object) bool {
				return rowOwner(s, o) && ratingInRange(o)
			},
			needsPurchase: true,
		},
		ActionUpdate: {
			using: rowOwner,
			check: func(s Subject, o Object) bool {
				return rowOwner(s, o) && ratingInRange(o)
			},
		},
		ActionDelete: {using: rowOwner},
	},
	TableUsers: {
		ActionSelect: {using: rowOwner},
		ActionUpdate: {using: rowOwner, check: rowOwner},
		ActionDelete: {using: rowOwner},
	},
	TableMerchants: {
		ActionSelect: {using: rowOwner},
		ActionInsert: {check: rowOwner},
		ActionUpdate: {using: rowOwner, check: rowOwner},
		ActionDelete: {using: rowOwner},
	},
	TableOrders: {
		ActionSelect: {using: rowOwner},
		ActionInsert: {check: rowOwner},
		ActionUpdate: {using: merchantOwner, check: merchantOwner},
	},
	TableOrderItems: {
		ActionSelect: {using: rowOwner},
		ActionInsert: {check: rowOwner},
	},
	TableWishlist: {
		ActionSelect: {using: rowOwner},
		ActionInsert: {check: rowOwner},
		ActionDelete: {using: rowOwner},
	},
	TableAddresses: {
		ActionSelect: {using: rowOwner},
		ActionInsert: {check: rowOwner},
		ActionUpdate: {using: rowOwner, check: rowOwner},
		ActionDelete: {using: rowOwner},
	},
	TableProducts: {
		ActionSelect: {using: anyone},
		ActionInsert: {check: merchantOwner},
		ActionUpdate: {using: merchantOwner, check: merchantOwner},
		ActionDelete: {using: merchantOwner},
	},
	TablePayments: {
		ActionSelect: {using: rowOwner},
		ActionInsert: {check: rowOwner},
	},
	TableNotifications: {
		ActionSelect: {using: rowOwner},
		ActionInsert: {check: nobody}, // system/admin fan-out only
		ActionUpdate: {using: rowOwner, check: rowOwner},
		ActionDelete: {using: rowOwner},
	},
	TableCategories: {
		ActionSelect: {using: anyone},
	},
	TableCoupons: {
		ActionSelect: {using: anyone},
	},
	TableInventory: {
		ActionSelect: {using: merchantOwner},
		ActionInsert: {check: merchantOwner},
	},
}

// Authorizer evaluates row-level policies. Each decision is stateless and
// re-evaluated per operation.
type Authorizer struct {
	purchases PurchaseChecker
	logger    *zap.Logger
}

// NewAuthorizer creates an authorizer backed by the given purchase repository.
func NewAuthorizer(purchases PurchaseChecker) *Authorizer {
	return &Authorizer{
		purchases: purchases,
		logger:    util.GetLogger(),
	}
}

// Authorize decides whether sub may perform action on the row described by
// obj. For select and delete the USING predicate runs against the existing
// row; for insert the WITH CHECK predicate runs against the written row. Use
// AuthorizeUpdate for updates, which involve both phases.
func (a *Authorizer) Authorize(ctx context.Context, sub Subject, action Action, obj Object) error {
	if sub.IsAdmin() {
		a.record(obj.Table, action, true)
		return nil
	}

	r, ok := lookup(obj.Table, action)
	if !ok {
		a.deny(sub, action, obj)
		return NotAuthorizedError{Subject: sub, Action: action, Object: obj}
	}

	var allowed bool
	switch action {
	case ActionInsert:
		allowed = r.check != nil && r.check(sub, obj)
		if allowed && r.needsPurchase {
			purchased, err := a.purchases.HasPurchased(ctx, sub.ID, obj.ProductID)
			if err != nil {
				return err
			}
			allowed = purchased
		}
	default:
		allowed = r.using != nil && r.using(sub, obj)
	}

	if !allowed {
		a.deny(sub, action, obj)
		return NotAuthorizedError{Subject: sub, Action: action, Object: obj}
	}

	a.record(obj.Table, action, true)
	return nil
}

// AuthorizeUpdate runs the USING predicate against the existing row and the
// WITH CHECK predicate against the updated row. Both must pass.
func (a *Authorizer) AuthorizeUpdate(ctx context.Context, sub Subject, existing, updated Object) error {
	if sub.IsAdmin() {
		a.record(existing.Table, ActionUpdate, true)
		return nil
	}

	r, ok := lookup(existing.Table, ActionUpdate)
	if !ok || r.using == nil || !r.using(sub, existing) ||
		r.check == nil || !r.check(sub, updated) {
		a.deny(sub, ActionUpdate, existing)
		return NotAuthorizedError{Subject: sub, Action: ActionUpdate, Object: existing}
	}

	a.record(existing.Table, ActionUpdate, true)
	return nil
}

// Filter returns the subset of items whose row object passes the select
// policy for sub.
func Filter[T any](ctx context.Context, a *Authorizer, sub Subject, items []T, objectOf func(T) Object) ([]T, error) {
	filtered := make([]T, 0, len(items))
	for _, item := range items {
		if err := a.Authorize(ctx, sub, ActionSelect, objectOf(item)); err != nil {
			if IsNotAuthorized(err) {
				continue
			}
			return nil, err
		}
		filtered = append(filtered, item)
	}
	return filtered, nil
}

func lookup(table string, action Action) (rule, bool) {
	actions, ok := policies[table]
	if !ok {
		return rule{}, false
	}
	r, ok := actions[action]
	return r, ok
}

func (a *Authorizer) deny(sub Subject, action Action, obj Object) {
	a.record(obj.Table, action, false)
	a.logger.Debug("Row access denied",
		zap.String("table", obj.Table),
		zap.String("action", string(action)),
		zap.String("subject_id", sub.ID.String()),
		zap.String("role", sub.Role))
}

func (a *Authorizer) record(table string, action Action, allowed bool) {
	decision := "denied"
	if allowed {
		decision = "allowed"
	}
	util.AuthzDecisionsTotal.WithLabelValues(table, string(action), decision).Inc()
}
