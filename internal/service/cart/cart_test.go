package cart

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/avolkov/storefront/internal/errs"
	"github.com/avolkov/storefront/internal/models"
	"github.com/avolkov/storefront/internal/repo"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Product{}, &models.CartItem{}))
	return db
}

func newService(t *testing.T) (*Service, *gorm.DB) {
	db := newTestDB(t)
	return NewService(repo.NewCart(db), repo.NewCatalog(db)), db
}

func seedProduct(t *testing.T, db *gorm.DB, p models.Product) models.Product {
	t.Helper()
	require.NoError(t, db.Create(&p).Error)
	return p
}

func TestAddItemAccumulates(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()

	p := seedProduct(t, db, models.Product{Name: "keyboard", Price: 49.99, Stock: 10})

	line, err := svc.AddItem(ctx, 1, p.ID, 2)
	require.NoError(t, err)
	require.Equal(t, uint(2), line.Quantity)

	line, err = svc.AddItem(ctx, 1, p.ID, 3)
	require.NoError(t, err)
	require.Equal(t, uint(5), line.Quantity)

	// 5 + 6 = 11 > 10: rejected, quantity untouched
	_, err = svc.AddItem(ctx, 1, p.ID, 6)
	require.ErrorIs(t, err, errs.ErrInsufficientStock)
	require.Contains(t, err.Error(), "keyboard")

	var item models.CartItem
	require.NoError(t, db.Where("user_id = ? AND product_id = ?", 1, p.ID).First(&item).Error)
	require.Equal(t, uint(5), item.Quantity)
}

func TestAddItemProductNotFound(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.AddItem(context.Background(), 1, 999, 1)
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestAddItemZeroQuantity(t *testing.T) {
	svc, db := newService(t)
	p := seedProduct(t, db, models.Product{Name: "mouse", Price: 10, Stock: 5})

	_, err := svc.AddItem(context.Background(), 1, p.ID, 0)
	require.ErrorIs(t, err, errs.ErrInvalidRequest)
}

func TestSetQuantity(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()

	p := seedProduct(t, db, models.Product{Name: "monitor", Price: 199, Stock: 4})

	_, err := svc.SetQuantity(ctx, 1, p.ID, 2)
	require.ErrorIs(t, err, errs.ErrNotFound)

	_, err = svc.AddItem(ctx, 1, p.ID, 1)
	require.NoError(t, err)

	_, err = svc.SetQuantity(ctx, 1, p.ID, 5)
	require.ErrorIs(t, err, errs.ErrInsufficientStock)

	line, err := svc.SetQuantity(ctx, 1, p.ID, 4)
	require.NoError(t, err)
	require.Equal(t, uint(4), line.Quantity)
}

func TestRemoveItemAndClear(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()

	p := seedProduct(t, db, models.Product{Name: "cable", Price: 5, Stock: 100})

	// removing a line that never existed is an error
	err := svc.RemoveItem(ctx, 1, p.ID)
	require.ErrorIs(t, err, errs.ErrNotFound)

	_, err = svc.AddItem(ctx, 1, p.ID, 3)
	require.NoError(t, err)
	require.NoError(t, svc.RemoveItem(ctx, 1, p.ID))

	// clear is idempotent, even on an empty cart
	require.NoError(t, svc.Clear(ctx, 1))
	require.NoError(t, svc.Clear(ctx, 1))
}

func TestGetCartTotalsAndOrdering(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()

	sale := 50.0
	p1 := seedProduct(t, db, models.Product{Name: "headset", Brand: "acme", Price: 60, SalePrice: &sale, Stock: 3})
	p2 := seedProduct(t, db, models.Product{Name: "webcam", Price: 25.50, Stock: 8})

	_, err := svc.AddItem(ctx, 7, p1.ID, 2)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, 7, p2.ID, 1)
	require.NoError(t, err)

	view, err := svc.GetCart(ctx, 7)
	require.NoError(t, err)
	require.Len(t, view.Items, 2)
	require.Equal(t, uint(3), view.ItemCount)
	// sale price, not list price: 50*2 + 25.50 = 125.50
	require.Equal(t, 125.50, view.Subtotal)
	// most recently added first
	require.Equal(t, p2.ID, view.Items[0].ProductID)
	require.Equal(t, "acme", view.Items[1].Product.Brand)

	// another user's cart stays empty
	other, err := svc.GetCart(ctx, 8)
	require.NoError(t, err)
	require.Empty(t, other.Items)
	require.Equal(t, 0.0, other.Subtotal)
}
