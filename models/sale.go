package models

import "time"

// Sale is an immutable ledger entry. The only mutation ever applied after
// creation is the void annotation, which flags the record without deleting
// it or reversing its effects.
type Sale struct {
	ID            uint          `gorm:"primaryKey" json:"id"`
	Total         float64       `gorm:"type:decimal(12,2);not null" json:"total"`
	Date          time.Time     `gorm:"not null;index" json:"date"`
	UserID        *uint         `gorm:"index" json:"user_id,omitempty"`
	User          *User         `gorm:"foreignKey:UserID" json:"user,omitempty"`
	CashSessionID *uint         `gorm:"index" json:"cash_session_id,omitempty"`
	TableOrderID  *uint         `gorm:"index" json:"table_order_id,omitempty"`
	PaymentMethod PaymentMethod `gorm:"type:varchar(20);not null" json:"payment_method"`
	SaleType      SaleType      `gorm:"type:varchar(20);not null;default:'normal'" json:"sale_type"`

	// Split detail for mixed payments; both zero otherwise.
	CashAmount     float64 `gorm:"type:decimal(12,2);not null;default:0" json:"cash_amount"`
	TransferAmount float64 `gorm:"type:decimal(12,2);not null;default:0" json:"transfer_amount"`

	Notes          string     `gorm:"type:text" json:"notes,omitempty"`
	VoidedAt       *time.Time `json:"voided_at,omitempty"`
	VoidedByUserID *uint      `json:"voided_by_user_id,omitempty"`
	VoidReason     string     `gorm:"type:text" json:"void_reason,omitempty"`

	Items     []SaleItem `gorm:"foreignKey:SaleID" json:"items"`
	CreatedAt time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time  `gorm:"not null" json:"updated_at"`
}

func (s *Sale) Voided() bool {
	return s.VoidedAt != nil
}

// SaleItem snapshots product name and price at sale time so later catalog
// edits never rewrite historical receipts.
type SaleItem struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	SaleID      uint    `gorm:"not null;index" json:"sale_id"`
	ProductID   uint    `gorm:"not null" json:"product_id"`
	ProductName string  `gorm:"type:varchar(255);not null" json:"product_name"`
	Quantity    int     `gorm:"not null" json:"quantity"`
	Price       float64 `gorm:"type:decimal(10,2);not null" json:"price"`
	Subtotal    float64 `gorm:"type:decimal(12,2);not null" json:"subtotal"`
}
