package services

import (
	"errors"
	"math"
	"time"

	"gorm.io/gorm"

	"github.com/yeremiapane/pos-app/models"
	"github.com/yeremiapane/pos-app/utils"
)

// AmountEpsilon is the tolerance used when comparing currency amounts.
const AmountEpsilon = 0.01

// SaleService is the single choke point for every inventory- or
// revenue-affecting transaction. Direct cart sales and table checkouts both
// funnel through CreateSale.
type SaleService struct {
	DB *gorm.DB
}

func NewSaleService(db *gorm.DB) *SaleService {
	return &SaleService{DB: db}
}

type SaleItemInput struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`

	// Snapshot overrides carried from a tab line. When set, the sale keeps
	// the price and name the customer accepted instead of whatever the
	// catalog row says at commit time.
	UnitPrice   *float64 `json:"-"`
	ProductName string   `json:"-"`
}

type SaleMeta struct {
	UserID        *uint
	PaymentMethod models.PaymentMethod
	CashSessionID *uint
	TableOrderID  *uint
	SaleType      models.SaleType
	// Split detail, only meaningful for mixed payments.
	CashAmount     float64
	TransferAmount float64
	Notes          string
}

// CreateSale runs the full effect as one transaction: stock decrement per
// item, sale + item inserts, session total posting. Any failure rolls the
// whole thing back.
func (ss *SaleService) CreateSale(items []SaleItemInput, meta SaleMeta) (*models.Sale, error) {
	var sale *models.Sale
	err := ss.DB.Transaction(func(tx *gorm.DB) error {
		var txErr error
		sale, txErr = ss.createSaleTx(tx, items, meta)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	utils.InfoLogger.Printf("Sale #%d created: total=%.2f method=%s type=%s",
		sale.ID, sale.Total, sale.PaymentMethod, sale.SaleType)
	return sale, nil
}

// createSaleTx is the transactional body; table checkout reuses it inside
// its own transaction so order close and sale insert commit together.
func (ss *SaleService) createSaleTx(tx *gorm.DB, items []SaleItemInput, meta SaleMeta) (*models.Sale, error) {
	if len(items) == 0 {
		return nil, ErrEmptyOrder
	}

	now := time.Now()
	sale := models.Sale{
		Date:          now,
		UserID:        meta.UserID,
		CashSessionID: meta.CashSessionID,
		TableOrderID:  meta.TableOrderID,
		PaymentMethod: meta.PaymentMethod,
		SaleType:      meta.SaleType,
		Notes:         meta.Notes,
	}

	var total float64
	for _, in := range items {
		if in.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}

		var product models.Product
		if err := tx.First(&product, in.ProductID).Error; err != nil {
			return nil, err
		}

		// Authoritative stock check: the guarded UPDATE either decrements
		// or matches no row, closing the race between any earlier advisory
		// check and this commit.
		res := tx.Model(&models.Product{}).
			Where("id = ? AND stock >= ?", in.ProductID, in.Quantity).
			UpdateColumn("stock", gorm.Expr("stock - ?", in.Quantity))
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, &InsufficientStockError{ProductID: in.ProductID}
		}

		price := product.Price
		name := product.Name
		if in.UnitPrice != nil {
			price = *in.UnitPrice
		}
		if in.ProductName != "" {
			name = in.ProductName
		}

		item := models.SaleItem{
			ProductID:   product.ID,
			ProductName: name,
			Quantity:    in.Quantity,
			Price:       price,
			Subtotal:    price * float64(in.Quantity),
		}
		if meta.SaleType == models.SaleHouse {
			// House consumption: inventory leaves, no revenue. Items are
			// snapshotted at zero so the receipt totals stay consistent.
			item.Price = 0
			item.Subtotal = 0
		}
		total += item.Subtotal
		sale.Items = append(sale.Items, item)
	}
	sale.Total = total

	cashPart, transferPart, cardPart, err := splitByMethod(&sale, meta)
	if err != nil {
		return nil, err
	}
	sale.CashAmount = cashPart
	sale.TransferAmount = transferPart

	if err := tx.Create(&sale).Error; err != nil {
		return nil, err
	}

	if meta.CashSessionID != nil && sale.SaleType == models.SaleNormal {
		if err := postToSessionTx(tx, *meta.CashSessionID, cashPart, cardPart, transferPart); err != nil {
			return nil, err
		}
	}

	return &sale, nil
}

// splitByMethod resolves how the sale total lands on the three session
// channels. This is the one place the payment method is switched on.
func splitByMethod(sale *models.Sale, meta SaleMeta) (cash, transfer, card float64, err error) {
	if sale.SaleType == models.SaleHouse {
		return 0, 0, 0, nil
	}
	switch meta.PaymentMethod {
	case models.PaymentCash:
		return sale.Total, 0, 0, nil
	case models.PaymentCard:
		return 0, 0, sale.Total, nil
	case models.PaymentTransfer:
		return 0, sale.Total, 0, nil
	case models.PaymentMixed:
		if math.Abs(meta.CashAmount+meta.TransferAmount-sale.Total) > AmountEpsilon {
			return 0, 0, 0, ErrAmountMismatch
		}
		return meta.CashAmount, meta.TransferAmount, 0, nil
	default:
		return 0, 0, 0, errors.New("unhandled payment method " + string(meta.PaymentMethod))
	}
}

// postToSessionTx adds the split amounts to the open session's running
// totals. The closed_at IS NULL guard makes posting against a closed
// session impossible even if the calling workflow slipped.
func postToSessionTx(tx *gorm.DB, sessionID uint, cash, card, transfer float64) error {
	res := tx.Model(&models.CashSession{}).
		Where("id = ? AND closed_at IS NULL", sessionID).
		UpdateColumns(map[string]interface{}{
			"sales_cash_total":     gorm.Expr("sales_cash_total + ?", cash),
			"sales_card_total":     gorm.Expr("sales_card_total + ?", card),
			"sales_transfer_total": gorm.Expr("sales_transfer_total + ?", transfer),
			"updated_at":           time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var session models.CashSession
		if err := tx.First(&session, sessionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSessionNotFound
			}
			return err
		}
		return ErrSessionAlreadyClosed
	}
	return nil
}

// VoidSale annotates a sale as voided for audit. It deliberately does not
// reverse stock or session totals: the goods already left the counter and
// the drawer already holds (or misses) the money.
func (ss *SaleService) VoidSale(saleID, userID uint, reason string) (*models.Sale, error) {
	var sale models.Sale
	err := ss.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Items").First(&sale, saleID).Error; err != nil {
			return err
		}
		if sale.Voided() {
			return ErrSaleAlreadyVoided
		}
		now := time.Now()
		sale.VoidedAt = &now
		sale.VoidedByUserID = &userID
		sale.VoidReason = reason
		return tx.Save(&sale).Error
	})
	if err != nil {
		return nil, err
	}
	utils.InfoLogger.Printf("Sale #%d voided by user %d: %s", sale.ID, userID, reason)
	return &sale, nil
}

func (ss *SaleService) GetAllSales() ([]models.Sale, error) {
	var sales []models.Sale
	if err := ss.DB.Preload("Items").Order("date DESC").Find(&sales).Error; err != nil {
		return nil, err
	}
	return sales, nil
}

func (ss *SaleService) GetSaleByID(id uint) (*models.Sale, error) {
	var sale models.Sale
	if err := ss.DB.Preload("Items").First(&sale, id).Error; err != nil {
		return nil, err
	}
	return &sale, nil
}
