package repo

import (
	"context"

	"gorm.io/gorm"
)

// Stores bundles the repositories rebuilt over a single transaction handle.
type Stores struct {
	Catalog *Catalog
	Cart    *Cart
	Orders  *Orders
}

type TxManager struct {
	DB *gorm.DB
}

func NewTxManager(db *gorm.DB) *TxManager {
	return &TxManager{DB: db}
}

// WithinTx runs fn inside one transaction; any error (including context
// cancellation) rolls everything back.
func (m *TxManager) WithinTx(ctx context.Context, fn func(s Stores) error) error {
	return m.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(Stores{
			Catalog: NewCatalog(tx),
			Cart:    NewCart(tx),
			Orders:  NewOrders(tx),
		})
	})
}
