package models

import "time"

// CashSession is one drawer shift. Sales totals are running accumulators
// updated inside the sale transaction; declared_* are the cashier's counted
// amounts stamped once at close. Reconciliation is always derived from these
// fields, never stored.
type CashSession struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	OpenedAt       time.Time  `gorm:"not null" json:"opened_at"`
	ClosedAt       *time.Time `gorm:"index" json:"closed_at,omitempty"`
	OpenedByUserID uint       `gorm:"not null" json:"opened_by_user_id"`
	ClosedByUserID *uint      `json:"closed_by_user_id,omitempty"`

	OpeningCash      float64  `gorm:"type:decimal(12,2);not null" json:"opening_cash"`
	DeclaredCash     *float64 `gorm:"type:decimal(12,2)" json:"declared_cash,omitempty"`
	DeclaredCard     *float64 `gorm:"type:decimal(12,2)" json:"declared_card,omitempty"`
	DeclaredTransfer *float64 `gorm:"type:decimal(12,2)" json:"declared_transfer,omitempty"`

	SalesCashTotal     float64 `gorm:"type:decimal(12,2);not null;default:0" json:"sales_cash_total"`
	SalesCardTotal     float64 `gorm:"type:decimal(12,2);not null;default:0" json:"sales_card_total"`
	SalesTransferTotal float64 `gorm:"type:decimal(12,2);not null;default:0" json:"sales_transfer_total"`

	Notes     string    `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (cs *CashSession) Open() bool {
	return cs.ClosedAt == nil
}

// ExpectedCash is the system-side cash count: opening float plus every cash
// amount posted during the shift.
func (cs *CashSession) ExpectedCash() float64 {
	return cs.OpeningCash + cs.SalesCashTotal
}
