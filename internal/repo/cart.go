package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/avolkov/storefront/internal/models"
)

type Cart struct {
	DB *gorm.DB
}

func NewCart(db *gorm.DB) *Cart {
	return &Cart{DB: db}
}

// ListByUser returns the user's cart lines, most recently added first.
func (r *Cart) ListByUser(ctx context.Context, userID uint) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// FindLine returns the (user, product) line, or nil when none exists.
func (r *Cart) FindLine(ctx context.Context, userID, productID uint) (*models.CartItem, error) {
	var item models.CartItem
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *Cart) CreateLine(ctx context.Context, item *models.CartItem) error {
	return r.DB.WithContext(ctx).Create(item).Error
}

// AddQuantity increments the line quantity in a single UPDATE so two rapid
// adds to the same line cannot lose each other's increment.
func (r *Cart) AddQuantity(ctx context.Context, userID, productID, qty uint) (*models.CartItem, error) {
	var item models.CartItem
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.CartItem{}).
			Where("user_id = ? AND product_id = ?", userID, productID).
			Update("quantity", gorm.Expr("quantity + ?", qty))
		if res.Error != nil {
			return res.Error
		}
		return tx.Where("user_id = ? AND product_id = ?", userID, productID).
			First(&item).Error
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// SetQuantity overwrites the line quantity. Returns false when no such line
// exists.
func (r *Cart) SetQuantity(ctx context.Context, userID, productID, qty uint) (bool, error) {
	res := r.DB.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Update("quantity", qty)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// DeleteLine removes the (user, product) line. Returns false when the line
// never existed.
func (r *Cart) DeleteLine(ctx context.Context, userID, productID uint) (bool, error) {
	res := r.DB.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.CartItem{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *Cart) Clear(ctx context.Context, userID uint) error {
	return r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.CartItem{}).Error
}
