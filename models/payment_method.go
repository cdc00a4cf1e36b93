package models

import "fmt"

// PaymentMethod enumerates how a sale was settled. Parsing happens once at
// the request boundary; everything below works with the typed value.
type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentCard     PaymentMethod = "card"
	PaymentTransfer PaymentMethod = "transfer"
	PaymentMixed    PaymentMethod = "mixed"
)

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch PaymentMethod(s) {
	case PaymentCash, PaymentCard, PaymentTransfer, PaymentMixed:
		return PaymentMethod(s), nil
	}
	return "", fmt.Errorf("unknown payment method %q", s)
}

// SaleType distinguishes revenue sales from house consumption (inventory
// leaves, no money enters).
type SaleType string

const (
	SaleNormal SaleType = "normal"
	SaleHouse  SaleType = "house"
)

func ParseSaleType(s string) (SaleType, error) {
	if s == "" {
		return SaleNormal, nil
	}
	switch SaleType(s) {
	case SaleNormal, SaleHouse:
		return SaleType(s), nil
	}
	return "", fmt.Errorf("unknown sale type %q", s)
}
