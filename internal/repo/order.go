package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/avolkov/storefront/internal/errs"
	"github.com/avolkov/storefront/internal/models"
)

type Orders struct {
	DB *gorm.DB
}

func NewOrders(db *gorm.DB) *Orders {
	return &Orders{DB: db}
}

// Create persists the order together with its item snapshots.
func (r *Orders) Create(ctx context.Context, order *models.Order) error {
	return r.DB.WithContext(ctx).Create(order).Error
}

func (r *Orders) FindByID(ctx context.Context, id uint) (*models.Order, error) {
	var o models.Order
	if err := r.DB.WithContext(ctx).Preload("Items").First(&o, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFoundf("order %d not found", id)
		}
		return nil, err
	}
	return &o, nil
}

func (r *Orders) ListByUser(ctx context.Context, userID uint) ([]models.Order, error) {
	var orders []models.Order
	if err := r.DB.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// List returns orders for the admin surface, newest first, optionally
// filtered by status.
func (r *Orders) List(ctx context.Context, status string, offset, limit int) ([]models.Order, int64, error) {
	q := r.DB.WithContext(ctx).Model(&models.Order{})
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	if err := q.Preload("Items").
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *Orders) UpdateStatus(ctx context.Context, id uint, status string) error {
	res := r.DB.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errs.NotFoundf("order %d not found", id)
	}
	return nil
}
