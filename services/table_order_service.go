package services

import (
	"errors"
	"math"
	"time"

	"gorm.io/gorm"

	"github.com/yeremiapane/pos-app/models"
	"github.com/yeremiapane/pos-app/utils"
)

// TableOrderService manages open tabs. A tab never touches inventory while
// it is open: stock checks before checkout are advisory only, and the
// authoritative check runs inside the checkout transaction in the Sale
// Ledger. Two tabs can therefore both hold the last unit of a product; the
// second checkout is the one that fails.
type TableOrderService struct {
	DB       *gorm.DB
	Sales    *SaleService
	Sessions *CashSessionService
}

func NewTableOrderService(db *gorm.DB, sales *SaleService, sessions *CashSessionService) *TableOrderService {
	return &TableOrderService{DB: db, Sales: sales, Sessions: sessions}
}

func (ts *TableOrderService) OpenTable(tableNumber int, userID, sessionID *uint) (*models.TableOrder, error) {
	if tableNumber <= 0 {
		return nil, errors.New("table number must be positive")
	}

	var order models.TableOrder
	err := ts.DB.Transaction(func(tx *gorm.DB) error {
		var openCount int64
		if err := tx.Model(&models.TableOrder{}).
			Where("table_number = ? AND status = ?", tableNumber, models.TableOrderOpen).
			Count(&openCount).Error; err != nil {
			return err
		}
		if openCount > 0 {
			return ErrTableAlreadyOpen
		}

		order = models.TableOrder{
			TableNumber:    tableNumber,
			Status:         models.TableOrderOpen,
			OpenedAt:       time.Now(),
			OpenedByUserID: userID,
			CashSessionID:  sessionID,
		}
		return tx.Create(&order).Error
	})
	if err != nil {
		return nil, err
	}
	utils.InfoLogger.Printf("Table %d opened (order #%d)", tableNumber, order.ID)
	return &order, nil
}

// AddItem puts a product on the tab with name/price snapshotted. Adding the
// same product again merges into the existing line.
func (ts *TableOrderService) AddItem(orderID, productID uint, quantity int) (*models.TableOrder, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	err := ts.DB.Transaction(func(tx *gorm.DB) error {
		order, err := openOrderTx(tx, orderID)
		if err != nil {
			return err
		}

		var product models.Product
		if err := tx.First(&product, productID).Error; err != nil {
			return err
		}

		var item models.TableOrderItem
		err = tx.Where("table_order_id = ? AND product_id = ?", order.ID, productID).
			First(&item).Error
		switch {
		case err == nil:
			item.Quantity += quantity
		case errors.Is(err, gorm.ErrRecordNotFound):
			item = models.TableOrderItem{
				TableOrderID: order.ID,
				ProductID:    product.ID,
				ProductName:  product.Name,
				Quantity:     quantity,
				Price:        product.Price,
			}
		default:
			return err
		}

		// Advisory only; checkout re-validates atomically.
		if item.Quantity > product.Stock {
			return &InsufficientStockError{ProductID: product.ID}
		}

		item.Subtotal = item.Price * float64(item.Quantity)
		if err := tx.Save(&item).Error; err != nil {
			return err
		}
		return recomputeSubtotalTx(tx, order.ID)
	})
	if err != nil {
		return nil, err
	}
	return ts.GetOrder(orderID)
}

func (ts *TableOrderService) UpdateItemQuantity(itemID uint, quantity int) (*models.TableOrder, error) {
	if quantity <= 0 {
		// Callers that want the line gone should use RemoveItem.
		return nil, ErrInvalidQuantity
	}

	var orderID uint
	err := ts.DB.Transaction(func(tx *gorm.DB) error {
		var item models.TableOrderItem
		if err := tx.First(&item, itemID).Error; err != nil {
			return err
		}
		if _, err := openOrderTx(tx, item.TableOrderID); err != nil {
			return err
		}

		var product models.Product
		if err := tx.First(&product, item.ProductID).Error; err != nil {
			return err
		}
		if quantity > product.Stock {
			return &InsufficientStockError{ProductID: product.ID}
		}

		item.Quantity = quantity
		item.Subtotal = item.Price * float64(quantity)
		if err := tx.Save(&item).Error; err != nil {
			return err
		}
		orderID = item.TableOrderID
		return recomputeSubtotalTx(tx, item.TableOrderID)
	})
	if err != nil {
		return nil, err
	}
	return ts.GetOrder(orderID)
}

func (ts *TableOrderService) RemoveItem(itemID uint) (*models.TableOrder, error) {
	var orderID uint
	err := ts.DB.Transaction(func(tx *gorm.DB) error {
		var item models.TableOrderItem
		if err := tx.First(&item, itemID).Error; err != nil {
			return err
		}
		if _, err := openOrderTx(tx, item.TableOrderID); err != nil {
			return err
		}
		if err := tx.Delete(&item).Error; err != nil {
			return err
		}
		orderID = item.TableOrderID
		return recomputeSubtotalTx(tx, item.TableOrderID)
	})
	if err != nil {
		return nil, err
	}
	return ts.GetOrder(orderID)
}

type CheckoutInput struct {
	PaymentMethod  models.PaymentMethod
	SaleType       models.SaleType
	UserID         *uint
	CashAmount     float64
	TransferAmount float64
	ReceivedAmount float64
	Notes          string
}

// CheckoutResult carries the created sale plus the change owed, which is
// receipt display data and never persisted as a ledger field.
type CheckoutResult struct {
	Sale   *models.Sale `json:"sale"`
	Change float64      `json:"change"`
}

// Checkout converts the tab into an immutable sale. Order close, stock
// decrement, sale insert and session posting commit together or not at all.
func (ts *TableOrderService) Checkout(orderID uint, in CheckoutInput) (*CheckoutResult, error) {
	session, err := ts.Sessions.FindOpenSession()
	if err != nil {
		return nil, err
	}

	result := &CheckoutResult{}
	err = ts.DB.Transaction(func(tx *gorm.DB) error {
		order, err := openOrderTx(tx, orderID)
		if err != nil {
			return err
		}
		if len(order.Items) == 0 {
			return ErrEmptyOrder
		}

		if in.SaleType != models.SaleHouse {
			switch in.PaymentMethod {
			case models.PaymentMixed:
				if math.Abs(in.CashAmount+in.TransferAmount-order.Subtotal) > AmountEpsilon {
					return ErrAmountMismatch
				}
			case models.PaymentCash:
				if in.ReceivedAmount+AmountEpsilon < order.Subtotal {
					return ErrInsufficientPayment
				}
				result.Change = in.ReceivedAmount - order.Subtotal
			}
		}

		// Carry the tab's snapshots: the customer pays what the tab showed,
		// not what the catalog says now.
		items := make([]SaleItemInput, 0, len(order.Items))
		for i := range order.Items {
			it := order.Items[i]
			price := it.Price
			items = append(items, SaleItemInput{
				ProductID:   it.ProductID,
				Quantity:    it.Quantity,
				UnitPrice:   &price,
				ProductName: it.ProductName,
			})
		}

		sale, err := ts.Sales.createSaleTx(tx, items, SaleMeta{
			UserID:         in.UserID,
			PaymentMethod:  in.PaymentMethod,
			CashSessionID:  &session.ID,
			TableOrderID:   &order.ID,
			SaleType:       in.SaleType,
			CashAmount:     in.CashAmount,
			TransferAmount: in.TransferAmount,
			Notes:          in.Notes,
		})
		if err != nil {
			return err
		}
		result.Sale = sale

		return tx.Model(order).Update("status", models.TableOrderClosed).Error
	})
	if err != nil {
		return nil, err
	}
	utils.InfoLogger.Printf("Table order #%d checked out as sale #%d (change=%.2f)",
		orderID, result.Sale.ID, result.Change)
	return result, nil
}

// Cancel closes the tab with no sale. Nothing to compensate: an open tab
// never touched inventory or the drawer.
func (ts *TableOrderService) Cancel(orderID uint) (*models.TableOrder, error) {
	var order *models.TableOrder
	err := ts.DB.Transaction(func(tx *gorm.DB) error {
		var txErr error
		order, txErr = openOrderTx(tx, orderID)
		if txErr != nil {
			return txErr
		}
		return tx.Model(order).Update("status", models.TableOrderClosed).Error
	})
	if err != nil {
		return nil, err
	}
	utils.InfoLogger.Printf("Table order #%d cancelled", orderID)
	return order, nil
}

func (ts *TableOrderService) GetOrder(orderID uint) (*models.TableOrder, error) {
	var order models.TableOrder
	if err := ts.DB.Preload("Items").First(&order, orderID).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// TableStatus is one slot in the floor view.
type TableStatus struct {
	TableNumber int                `json:"table_number"`
	Occupied    bool               `json:"occupied"`
	Order       *models.TableOrder `json:"order,omitempty"`
}

func (ts *TableOrderService) GetTablesStatus(maxTables int) ([]TableStatus, error) {
	if maxTables <= 0 {
		maxTables = 12
	}

	var open []models.TableOrder
	if err := ts.DB.Preload("Items").
		Where("status = ?", models.TableOrderOpen).
		Find(&open).Error; err != nil {
		return nil, err
	}

	byNumber := make(map[int]*models.TableOrder, len(open))
	for i := range open {
		byNumber[open[i].TableNumber] = &open[i]
	}

	statuses := make([]TableStatus, 0, maxTables)
	for n := 1; n <= maxTables; n++ {
		st := TableStatus{TableNumber: n}
		if order, ok := byNumber[n]; ok {
			st.Occupied = true
			st.Order = order
		}
		statuses = append(statuses, st)
	}
	return statuses, nil
}

// HasOpenOrderWithProduct reports whether any open tab references the
// product; the catalog uses it to refuse deletes that would strand a tab.
func (ts *TableOrderService) HasOpenOrderWithProduct(productID uint) (bool, error) {
	var count int64
	err := ts.DB.Model(&models.TableOrderItem{}).
		Joins("JOIN table_orders ON table_orders.id = table_order_items.table_order_id").
		Where("table_order_items.product_id = ? AND table_orders.status = ?", productID, models.TableOrderOpen).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func openOrderTx(tx *gorm.DB, orderID uint) (*models.TableOrder, error) {
	var order models.TableOrder
	if err := tx.Preload("Items").First(&order, orderID).Error; err != nil {
		return nil, err
	}
	if order.Status != models.TableOrderOpen {
		return nil, ErrOrderNotOpen
	}
	return &order, nil
}

func recomputeSubtotalTx(tx *gorm.DB, orderID uint) error {
	var subtotal float64
	if err := tx.Model(&models.TableOrderItem{}).
		Where("table_order_id = ?", orderID).
		Select("COALESCE(SUM(subtotal), 0)").
		Scan(&subtotal).Error; err != nil {
		return err
	}
	return tx.Model(&models.TableOrder{}).
		Where("id = ?", orderID).
		Update("subtotal", subtotal).Error
}
