package authz

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace/internal/models"
)

// fakePurchases records which user bought which product
type fakePurchases struct {
	purchases map[uuid.UUID]map[uuid.UUID]bool
}

func newFakePurchases() *fakePurchases {
	return &fakePurchases{purchases: make(map[uuid.UUID]map[uuid.UUID]bool)}
}

func (f *fakePurchases) add(userID, productID uuid.UUID) {
	if f.purchases[userID] == nil {
		f.purchases[userID] = make(map[uuid.UUID]bool)
	}
	f.purchases[userID][productID] = true
}

func (f *fakePurchases) HasPurchased(_ context.Context, userID, productID uuid.UUID) (bool, error) {
	return f.purchases[userID][productID], nil
}

func customer(id uuid.UUID) Subject {
	return Subject{ID: id, Role: models.RoleCustomer}
}

func TestReviewInsertRequiresPurchase(t *testing.T) {
	userA := uuid.New()
	userB := uuid.New()
	product := uuid.New()

	purchases := newFakePurchases()
	purchases.add(userA, product)
	auth := NewAuthorizer(purchases)

	ctx := context.Background()

	review := Object{
		Table:     TableReviews,
		OwnerID:   userA,
		ProductID: product,
		Rating:    4,
	}

	// A bought the product, so A may review it
	err := auth.Authorize(ctx, customer(userA), ActionInsert, review)
	assert.NoError(t, err)

	// B never ordered the product
	reviewByB := review
	reviewByB.OwnerID = userB
	err = auth.Authorize(ctx, customer(userB), ActionInsert, reviewByB)
	require.Error(t, err)
	assert.True(t, IsNotAuthorized(err))

	// B cannot insert a review attributed to A either
	err = auth.Authorize(ctx, customer(userB), ActionInsert, review)
	require.Error(t, err)
	assert.True(t, IsNotAuthorized(err))
}

func TestReviewInsertRatingBounds(t *testing.T) {
	user := uuid.New()
	product := uuid.New()

	purchases := newFakePurchases()
	purchases.add(user, product)
	auth := NewAuthorizer(purchases)

	ctx := context.Background()

	for _, rating := range []int{1, 2, 3, 4, 5} {
		obj := Object{Table: TableReviews, OwnerID: user, ProductID: product, Rating: rating}
		assert.NoError(t, auth.Authorize(ctx, customer(user), ActionInsert, obj), "rating %d", rating)
	}

	for _, rating := range []int{0, -1, 6, 100} {
		obj := Object{Table: TableReviews, OwnerID: user, ProductID: product, Rating: rating}
		err := auth.Authorize(ctx, customer(user), ActionInsert, obj)
		assert.True(t, IsNotAuthorized(err), "rating %d must be denied", rating)
	}
}

func TestReviewUpdateKeepsRatingBounds(t *testing.T) {
	user := uuid.New()
	auth := NewAuthorizer(newFakePurchases())
	ctx := context.Background()

	existing := Object{Table: TableReviews, OwnerID: user, Rating: 4}

	updated := existing
	updated.Rating = 5
	assert.NoError(t, auth.AuthorizeUpdate(ctx, customer(user), existing, updated))

	updated.Rating = 9
	err := auth.AuthorizeUpdate(ctx, customer(user), existing, updated)
	assert.True(t, IsNotAuthorized(err))

	// a stranger cannot touch the review at all
	updated.Rating = 3
	err = auth.AuthorizeUpdate(ctx, customer(uuid.New()), existing, updated)
	assert.True(t, IsNotAuthorized(err))
}

func TestReviewsAreVisibleToEveryone(t *testing.T) {
	auth := NewAuthorizer(newFakePurchases())
	ctx := context.Background()

	obj := Object{Table: TableReviews, OwnerID: uuid.New()}
	assert.NoError(t, auth.Authorize(ctx, customer(uuid.New()), ActionSelect, obj))
}

func TestOwnedRowsDenyOtherUsers(t *testing.T) {
	owner := uuid.New()
	stranger := uuid.New()
	auth := NewAuthorizer(newFakePurchases())
	ctx := context.Background()

	tables := []string{TableWishlist, TableAddresses, TableOrders, TableNotifications, TablePayments}
	for _, table := range tables {
		obj := Object{Table: table, OwnerID: owner}

		assert.NoError(t, auth.Authorize(ctx, customer(owner), ActionSelect, obj), table)

		err := auth.Authorize(ctx, customer(stranger), ActionSelect, obj)
		assert.True(t, IsNotAuthorized(err), "%s select by stranger", table)
	}

	// delete on user-owned collections
	for _, table := range []string{TableWishlist, TableAddresses, TableReviews} {
		obj := Object{Table: table, OwnerID: owner}
		err := auth.Authorize(ctx, customer(stranger), ActionDelete, obj)
		assert.True(t, IsNotAuthorized(err), "%s delete by stranger", table)
	}
}

func TestMerchantVisibleToOwnerOnly(t *testing.T) {
	owner := uuid.New()
	stranger := uuid.New()
	auth := NewAuthorizer(newFakePurchases())
	ctx := context.Background()

	obj := Object{Table: TableMerchants, OwnerID: owner}

	for _, action := range []Action{ActionSelect, ActionDelete} {
		assert.NoError(t, auth.Authorize(ctx, customer(owner), action, obj))
		err := auth.Authorize(ctx, customer(stranger), action, obj)
		assert.True(t, IsNotAuthorized(err), "merchant %s by stranger", action)
	}

	assert.NoError(t, auth.AuthorizeUpdate(ctx, customer(owner), obj, obj))
	err := auth.AuthorizeUpdate(ctx, customer(stranger), obj, obj)
	assert.True(t, IsNotAuthorized(err))
}

func TestProductMutationsScopedToMerchantOwner(t *testing.T) {
	owner := uuid.New()
	stranger := uuid.New()
	auth := NewAuthorizer(newFakePurchases())
	ctx := context.Background()

	obj := Object{Table: TableProducts, MerchantOwnerID: owner}

	// catalog reads are public
	assert.NoError(t, auth.Authorize(ctx, customer(stranger), ActionSelect, obj))

	assert.NoError(t, auth.Authorize(ctx, customer(owner), ActionInsert, obj))
	err := auth.Authorize(ctx, customer(stranger), ActionInsert, obj)
	assert.True(t, IsNotAuthorized(err))

	err = auth.Authorize(ctx, customer(stranger), ActionDelete, obj)
	assert.True(t, IsNotAuthorized(err))
}

func TestOrderStatusUpdateByMerchantOwner(t *testing.T) {
	merchantOwner := uuid.New()
	orderCustomer := uuid.New()
	auth := NewAuthorizer(newFakePurchases())
	ctx := context.Background()

	obj := Object{Table: TableOrders, OwnerID: orderCustomer, MerchantOwnerID: merchantOwner}

	assert.NoError(t, auth.AuthorizeUpdate(ctx, customer(merchantOwner), obj, obj))

	// the customer owns the order but does not control its status
	err := auth.AuthorizeUpdate(ctx, customer(orderCustomer), obj, obj)
	assert.True(t, IsNotAuthorized(err))
}

func TestFailClosedWithoutPolicy(t *testing.T) {
	user := uuid.New()
	auth := NewAuthorizer(newFakePurchases())
	ctx := context.Background()

	cases := []struct {
		table  string
		action Action
	}{
		{TableOrders, ActionDelete},          // no delete policy defined
		{TableInventory, ActionUpdate},       // append-only ledger
		{TableInventory, ActionDelete},       // append-only ledger
		{TableCoupons, ActionInsert},         // admin only
		{TableCategories, ActionInsert},      // admin only
		{TableUsers, ActionInsert},           // registration bypasses sessions
		{TablePayments, ActionDelete},        // undefined
		{TableNotifications, ActionInsert},   // system fan-out only
		{"unknown_table", ActionSelect},      // table not registered at all
	}

	for _, tc := range cases {
		obj := Object{Table: tc.table, OwnerID: user, MerchantOwnerID: user}
		err := auth.Authorize(ctx, customer(user), tc.action, obj)
		assert.True(t, IsNotAuthorized(err), "%s %s must fail closed", tc.table, tc.action)
	}
}

func TestAdminPassesEveryPolicy(t *testing.T) {
	admin := Subject{ID: uuid.New(), Role: models.RoleAdmin}
	auth := NewAuthorizer(newFakePurchases())
	ctx := context.Background()

	obj := Object{Table: TableNotifications, OwnerID: uuid.New()}
	assert.NoError(t, auth.Authorize(ctx, admin, ActionInsert, obj))

	obj = Object{Table: TableCoupons}
	assert.NoError(t, auth.Authorize(ctx, admin, ActionInsert, obj))

	obj = Object{Table: TableMerchants, OwnerID: uuid.New()}
	assert.NoError(t, auth.AuthorizeUpdate(ctx, admin, obj, obj))
}

func TestSystemSubjectIsAdmin(t *testing.T) {
	assert.True(t, SystemSubject().IsAdmin())
}

func TestFilterDropsForeignRows(t *testing.T) {
	owner := uuid.New()
	auth := NewAuthorizer(newFakePurchases())
	ctx := context.Background()

	rows := []Object{
		{Table: TableAddresses, OwnerID: owner},
		{Table: TableAddresses, OwnerID: uuid.New()},
		{Table: TableAddresses, OwnerID: owner},
	}

	filtered, err := Filter(ctx, auth, customer(owner), rows, func(o Object) Object { return o })
	require.NoError(t, err)
	assert.Len(t, filtered, 2)
	for _, row := range filtered {
		assert.Equal(t, owner, row.OwnerID)
	}
}
