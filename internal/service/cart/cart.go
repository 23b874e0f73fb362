package cart

import (
	"context"
	"errors"

	"github.com/avolkov/storefront/internal/errs"
	"github.com/avolkov/storefront/internal/models"
	"github.com/avolkov/storefront/internal/pricing"
	"github.com/avolkov/storefront/internal/repo"
)

// Service is the cart ledger: one line per (user, product), quantity never
// above the product's current stock. The checks here are advisory; the real
// stock reservation happens at order placement.
type Service struct {
	Cart    *repo.Cart
	Catalog *repo.Catalog
}

func NewService(cart *repo.Cart, catalog *repo.Catalog) *Service {
	return &Service{Cart: cart, Catalog: catalog}
}

type Line struct {
	models.CartItem
	Product models.Product `json:"product"`
}

type View struct {
	Items     []Line  `json:"items"`
	Subtotal  float64 `json:"subtotal"`
	ItemCount uint    `json:"item_count"`
}

// AddItem creates the line or increments an existing one. Rejected when the
// resulting quantity would exceed the product's stock.
func (s *Service) AddItem(ctx context.Context, userID, productID, quantity uint) (*Line, error) {
	if quantity < 1 {
		return nil, errs.InvalidRequestf("quantity must be at least 1")
	}

	p, err := s.Catalog.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	existing, err := s.Cart.FindLine(ctx, userID, productID)
	if err != nil {
		return nil, err
	}

	var existingQty uint
	if existing != nil {
		existingQty = existing.Quantity
	}
	if existingQty+quantity > p.Stock {
		return nil, errs.InsufficientStockf("insufficient stock for %s", p.Name)
	}

	var item *models.CartItem
	if existing != nil {
		item, err = s.Cart.AddQuantity(ctx, userID, productID, quantity)
	} else {
		item = &models.CartItem{UserID: userID, ProductID: productID, Quantity: quantity}
		err = s.Cart.CreateLine(ctx, item)
	}
	if err != nil {
		return nil, err
	}

	return &Line{CartItem: *item, Product: *p}, nil
}

// SetQuantity overwrites the line quantity, rejecting values above stock.
func (s *Service) SetQuantity(ctx context.Context, userID, productID, quantity uint) (*Line, error) {
	if quantity < 1 {
		return nil, errs.InvalidRequestf("quantity must be at least 1")
	}

	existing, err := s.Cart.FindLine(ctx, userID, productID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, errs.NotFoundf("cart item not found")
	}

	p, err := s.Catalog.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if quantity > p.Stock {
		return nil, errs.InsufficientStockf("insufficient stock for %s", p.Name)
	}

	if _, err := s.Cart.SetQuantity(ctx, userID, productID, quantity); err != nil {
		return nil, err
	}
	existing.Quantity = quantity

	return &Line{CartItem: *existing, Product: *p}, nil
}

// RemoveItem deletes one line; removing a line that never existed is an
// error, unlike Clear.
func (s *Service) RemoveItem(ctx context.Context, userID, productID uint) error {
	deleted, err := s.Cart.DeleteLine(ctx, userID, productID)
	if err != nil {
		return err
	}
	if !deleted {
		return errs.NotFoundf("cart item not found")
	}
	return nil
}

func (s *Service) Clear(ctx context.Context, userID uint) error {
	return s.Cart.Clear(ctx, userID)
}

// GetCart returns the lines most-recently-added first, joined with current
// product data, plus the effective-price subtotal and total item count.
func (s *Service) GetCart(ctx context.Context, userID uint) (*View, error) {
	items, err := s.Cart.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	view := &View{Items: make([]Line, 0, len(items))}
	var subtotal float64
	for _, it := range items {
		p, err := s.Catalog.GetProduct(ctx, it.ProductID)
		if errors.Is(err, errs.ErrNotFound) {
			// product deleted since it was added; drop the line from the view
			continue
		}
		if err != nil {
			return nil, err
		}
		view.Items = append(view.Items, Line{CartItem: it, Product: *p})
		subtotal += p.EffectivePrice() * float64(it.Quantity)
		view.ItemCount += it.Quantity
	}
	view.Subtotal = pricing.Round2(subtotal)

	return view, nil
}
