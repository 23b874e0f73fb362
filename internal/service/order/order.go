package order

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/avolkov/storefront/internal/errs"
	"github.com/avolkov/storefront/internal/models"
	"github.com/avolkov/storefront/internal/pricing"
	"github.com/avolkov/storefront/internal/repo"
)

const RoleAdmin = "admin"

type Service struct {
	Tx     *repo.TxManager
	Orders *repo.Orders
}

func NewService(tx *repo.TxManager, orders *repo.Orders) *Service {
	return &Service{Tx: tx, Orders: orders}
}

type PlaceLine struct {
	ProductID uint `json:"product_id"`
	Quantity  uint `json:"quantity"`
}

type PlaceInput struct {
	Items           []PlaceLine `json:"items"`
	ShippingAddress string      `json:"shipping_address"`
	Phone           string      `json:"phone"`
	PaymentMethod   string      `json:"payment_method"`
	Notes           string      `json:"notes"`
}

// newOrderNumber builds the human-facing order number. Uniqueness is
// advisory only: millisecond timestamp plus a 3-digit random suffix.
func newOrderNumber() string {
	return fmt.Sprintf("ORD-%d-%03d", time.Now().UnixMilli(), rand.IntN(1000))
}

// Place turns the requested lines into a persisted order. Every line is
// re-fetched and validated before any write; the order insert, the
// conditional stock decrements and the cart clear commit together or not at
// all. A single out-of-stock line aborts the whole order.
func (s *Service) Place(ctx context.Context, userID uint, in PlaceInput) (*models.Order, error) {
	if len(in.Items) == 0 {
		return nil, errs.InvalidRequestf("no order items")
	}
	if strings.TrimSpace(in.ShippingAddress) == "" {
		return nil, errs.InvalidRequestf("shipping address required")
	}
	for _, it := range in.Items {
		if it.Quantity < 1 {
			return nil, errs.InvalidRequestf("quantity must be at least 1 for product %d", it.ProductID)
		}
	}

	var order *models.Order
	err := s.Tx.WithinTx(ctx, func(st repo.Stores) error {
		snapshots := make([]models.OrderItem, 0, len(in.Items))
		lines := make([]pricing.Line, 0, len(in.Items))

		for _, it := range in.Items {
			p, err := st.Catalog.GetProduct(ctx, it.ProductID)
			if err != nil {
				return err
			}
			if p.Stock < it.Quantity {
				return errs.InsufficientStockf("insufficient stock for %s", p.Name)
			}

			price := p.EffectivePrice()
			snapshots = append(snapshots, models.OrderItem{
				ProductID: p.ID,
				Name:      p.Name,
				Image:     p.Image,
				Price:     price,
				Quantity:  it.Quantity,
			})
			lines = append(lines, pricing.Line{UnitPrice: price, Quantity: it.Quantity})
		}

		totals := pricing.ComputeTotals(lines)

		o := &models.Order{
			OrderNumber:     newOrderNumber(),
			UserID:          userID,
			Status:          models.OrderStatusPending,
			ShippingAddress: in.ShippingAddress,
			Phone:           in.Phone,
			PaymentMethod:   in.PaymentMethod,
			Notes:           in.Notes,
			ItemsPrice:      totals.ItemsPrice,
			TaxPrice:        totals.TaxPrice,
			ShippingPrice:   totals.ShippingPrice,
			TotalPrice:      totals.TotalPrice,
			Items:           snapshots,
		}
		if err := st.Orders.Create(ctx, o); err != nil {
			return err
		}

		for _, it := range in.Items {
			ok, err := st.Catalog.DecrementStockIfEnough(ctx, it.ProductID, it.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				// lost the race since validation; roll everything back
				return errs.InsufficientStockf("insufficient stock for product %d", it.ProductID)
			}
		}

		if err := st.Cart.Clear(ctx, userID); err != nil {
			return err
		}

		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// Get returns the order when the requester owns it or is an admin.
func (s *Service) Get(ctx context.Context, orderID, requesterID uint, requesterRole string) (*models.Order, error) {
	o, err := s.Orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != requesterID && requesterRole != RoleAdmin {
		return nil, errs.ErrForbidden
	}
	return o, nil
}

func (s *Service) ListByUser(ctx context.Context, userID uint) ([]models.Order, error) {
	return s.Orders.ListByUser(ctx, userID)
}

// List is the admin view: newest first, optional status filter.
func (s *Service) List(ctx context.Context, status string, offset, limit int) ([]models.Order, int64, error) {
	if status != "" && !models.ValidOrderStatus(status) {
		return nil, 0, errs.InvalidRequestf("invalid status %q", status)
	}
	return s.Orders.List(ctx, status, offset, limit)
}

// SetStatus overwrites the order status. Any of the five statuses may
// follow any other; only enum membership is checked.
func (s *Service) SetStatus(ctx context.Context, orderID uint, status string) (*models.Order, error) {
	if !models.ValidOrderStatus(status) {
		return nil, errs.InvalidRequestf("invalid status %q", status)
	}
	if err := s.Orders.UpdateStatus(ctx, orderID, status); err != nil {
		return nil, err
	}
	return s.Orders.FindByID(ctx, orderID)
}
