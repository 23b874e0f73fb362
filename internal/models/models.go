package models

import (
	"time"
)

type Product struct {
	ID          uint     `gorm:"primaryKey;autoIncrement"  json:"id"`
	Name        string   `gorm:"not null"                  json:"name"`
	Description string   `json:"description"`
	Brand       string   `json:"brand"`
	Image       string   `json:"image"`
	Price       float64  `gorm:"not null"                  json:"price"`
	SalePrice   *float64 `json:"sale_price"`
	Stock       uint     `json:"stock"`
}

// EffectivePrice is the sale price when one is set, the list price otherwise.
func (p *Product) EffectivePrice() float64 {
	if p.SalePrice != nil {
		return *p.SalePrice
	}
	return p.Price
}

type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string `gorm:"unique;not null"          json:"username"`
	PasswordHash string `gorm:"not null"                 json:"-"`
	Role         string `gorm:"not null;default:user"    json:"role"`
}

type RefreshToken struct {
	ID        uint   `gorm:"primaryKey"          json:"id"`
	Token     string `gorm:"unique;not null"     json:"token"`
	UserID    uint   `gorm:"index;not null"      json:"user_id"`
	Role      string `gorm:"not null"            json:"role"`
	ExpiresAt int64  `gorm:"not null"            json:"expires_at"`
	Revoked   bool   `gorm:"default:false"       json:"revoked"`
}

type CartItem struct {
	ID        uint      `gorm:"primaryKey"                                  json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_user_product"       json:"user_id"`
	ProductID uint      `gorm:"not null;uniqueIndex:idx_user_product"       json:"product_id"`
	Quantity  uint      `gorm:"default:1;check:quantity>0"                  json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
}

const (
	OrderStatusPending    = "PENDING"
	OrderStatusProcessing = "PROCESSING"
	OrderStatusShipped    = "SHIPPED"
	OrderStatusDelivered  = "DELIVERED"
	OrderStatusCancelled  = "CANCELLED"
)

// ValidOrderStatus reports whether s is one of the five order statuses.
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

type Order struct {
	ID              uint        `gorm:"primaryKey"                  json:"id"`
	OrderNumber     string      `gorm:"index;not null"              json:"order_number"`
	UserID          uint        `gorm:"index;not null"              json:"user_id"`
	Status          string      `gorm:"not null;default:PENDING"    json:"status"`
	ShippingAddress string      `gorm:"not null"                    json:"shipping_address"`
	Phone           string      `json:"phone"`
	PaymentMethod   string      `json:"payment_method"`
	Notes           string      `json:"notes"`
	ItemsPrice      float64     `gorm:"not null"                    json:"items_price"`
	TaxPrice        float64     `gorm:"not null"                    json:"tax_price"`
	ShippingPrice   float64     `gorm:"not null"                    json:"shipping_price"`
	TotalPrice      float64     `gorm:"not null"                    json:"total_price"`
	CreatedAt       time.Time   `json:"created_at"`
	Items           []OrderItem `gorm:"constraint:OnDelete:CASCADE" json:"items"`
}

// OrderItem is the snapshot of a product at the moment the order was placed.
// It is never recomputed from the product after creation.
type OrderItem struct {
	ID        uint    `gorm:"primaryKey"      json:"id"`
	OrderID   uint    `gorm:"index;not null"  json:"order_id"`
	ProductID uint    `gorm:"not null"        json:"product_id"`
	Name      string  `gorm:"not null"        json:"name"`
	Image     string  `json:"image"`
	Price     float64 `gorm:"not null"        json:"price"`
	Quantity  uint    `gorm:"not null"        json:"quantity"`
}
