package models

import "time"

const (
	TableOrderOpen   = "open"
	TableOrderClosed = "closed"
)

// TableOrder is a mutable tab bound to a physical table number. At most one
// open order exists per table number. Checkout closes the order and creates
// the linked Sale; cancel closes it with no sale. Either way the rows stay
// for history.
type TableOrder struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	TableNumber    int       `gorm:"not null;index" json:"table_number"`
	Status         string    `gorm:"type:varchar(20);not null;default:'open'" json:"status"`
	Subtotal       float64   `gorm:"type:decimal(12,2);not null;default:0" json:"subtotal"`
	OpenedAt       time.Time `gorm:"not null" json:"opened_at"`
	OpenedByUserID *uint     `json:"opened_by_user_id,omitempty"`
	CashSessionID  *uint     `json:"cash_session_id,omitempty"`

	Items     []TableOrderItem `gorm:"foreignKey:TableOrderID" json:"items"`
	CreatedAt time.Time        `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time        `gorm:"not null" json:"updated_at"`
}

// TableOrderItem carries the same name/price snapshot as SaleItem; checkout
// copies these values into fresh SaleItems instead of migrating the rows.
type TableOrderItem struct {
	ID           uint    `gorm:"primaryKey" json:"id"`
	TableOrderID uint    `gorm:"not null;index" json:"table_order_id"`
	ProductID    uint    `gorm:"not null" json:"product_id"`
	ProductName  string  `gorm:"type:varchar(255);not null" json:"product_name"`
	Quantity     int     `gorm:"not null" json:"quantity"`
	Price        float64 `gorm:"type:decimal(10,2);not null" json:"price"`
	Subtotal     float64 `gorm:"type:decimal(12,2);not null" json:"subtotal"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}
