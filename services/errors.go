package services

import (
	"errors"
	"fmt"
)

// Sentinel errors for state violations. Controllers map these to HTTP
// statuses; the services themselves never translate or retry.
var (
	ErrSessionAlreadyOpen   = errors.New("a cash session is already open")
	ErrSessionNotFound      = errors.New("cash session not found")
	ErrSessionAlreadyClosed = errors.New("cash session is already closed")
	ErrNoCashSessionOpen    = errors.New("no cash session is open")
	ErrTableAlreadyOpen     = errors.New("table already has an open order")
	ErrOrderNotOpen         = errors.New("table order is not open")
	ErrEmptyOrder           = errors.New("table order has no items")
	ErrInvalidQuantity      = errors.New("quantity must be greater than zero")
	ErrAmountMismatch       = errors.New("mixed payment split does not match the order total")
	ErrInsufficientPayment  = errors.New("received amount is less than the total")
	ErrSaleAlreadyVoided    = errors.New("sale is already voided")
	ErrProductInOpenOrder   = errors.New("product is on an open table order")
)

// InsufficientStockError reports which product ran out. Raised by the
// advisory check when building a tab and, authoritatively, inside the sale
// transaction.
type InsufficientStockError struct {
	ProductID uint
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d", e.ProductID)
}
