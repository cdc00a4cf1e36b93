package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/pos-app/events"
	"github.com/yeremiapane/pos-app/models"
	"github.com/yeremiapane/pos-app/services"
	"github.com/yeremiapane/pos-app/utils"
)

type TableOrderController struct {
	Tables   *services.TableOrderService
	Sessions *services.CashSessionService
	Receipts *services.ReceiptService
}

func NewTableOrderController(tables *services.TableOrderService, sessions *services.CashSessionService, receipts *services.ReceiptService) *TableOrderController {
	return &TableOrderController{Tables: tables, Sessions: sessions, Receipts: receipts}
}

// OpenTable -> start a tab on a table number
func (tc *TableOrderController) OpenTable(c *gin.Context) {
	tableNumber, err := strconv.Atoi(c.Param("table_number"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid table number"))
		return
	}

	var sessionID *uint
	if session, err := tc.Sessions.FindOpenSession(); err == nil {
		sessionID = &session.ID
	}

	order, err := tc.Tables.OpenTable(tableNumber, currentUserID(c), sessionID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	events.Broadcast(events.EventTableUpdate, order)
	utils.RespondJSON(c, http.StatusCreated, "Table opened", order)
}

func (tc *TableOrderController) GetTablesStatus(c *gin.Context) {
	maxTables, _ := strconv.Atoi(c.DefaultQuery("max_tables", "12"))

	statuses, err := tc.Tables.GetTablesStatus(maxTables)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Tables status", statuses)
}

func (tc *TableOrderController) GetOrder(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("order_id"))

	order, err := tc.Tables.GetOrder(uint(id))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table order detail", order)
}

// AddItem -> put a product on the tab (advisory stock check only)
func (tc *TableOrderController) AddItem(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("order_id"))

	var req struct {
		ProductID uint `json:"product_id" binding:"required"`
		Quantity  int  `json:"quantity" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := tc.Tables.AddItem(uint(id), req.ProductID, req.Quantity)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	events.Broadcast(events.EventTableUpdate, order)
	utils.RespondJSON(c, http.StatusOK, "Item added", order)
}

func (tc *TableOrderController) UpdateItemQuantity(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("item_id"))

	var req struct {
		Quantity int `json:"quantity" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := tc.Tables.UpdateItemQuantity(uint(id), req.Quantity)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	events.Broadcast(events.EventTableUpdate, order)
	utils.RespondJSON(c, http.StatusOK, "Item updated", order)
}

func (tc *TableOrderController) RemoveItem(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("item_id"))

	order, err := tc.Tables.RemoveItem(uint(id))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	events.Broadcast(events.EventTableUpdate, order)
	utils.RespondJSON(c, http.StatusOK, "Item removed", order)
}

// Checkout -> convert the tab into a sale and settle it against the open
// session. Returns the sale, the change owed and the rendered receipt.
func (tc *TableOrderController) Checkout(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("order_id"))

	var req struct {
		PaymentMethod  string  `json:"payment_method" binding:"required"`
		SaleType       string  `json:"sale_type"`
		CashAmount     float64 `json:"cash_amount"`
		TransferAmount float64 `json:"transfer_amount"`
		ReceivedAmount float64 `json:"received_amount"`
		Notes          string  `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	method, err := models.ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	saleType, err := models.ParseSaleType(req.SaleType)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	result, err := tc.Tables.Checkout(uint(id), services.CheckoutInput{
		PaymentMethod:  method,
		SaleType:       saleType,
		UserID:         currentUserID(c),
		CashAmount:     req.CashAmount,
		TransferAmount: req.TransferAmount,
		ReceivedAmount: req.ReceivedAmount,
		Notes:          req.Notes,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	events.Broadcast(events.EventSaleCreated, result.Sale)

	doc := tc.Receipts.Render(result.Sale, result.Change)
	utils.RespondJSON(c, http.StatusOK, "Table checked out", gin.H{
		"sale":    result.Sale,
		"change":  result.Change,
		"receipt": doc,
	})
}

// Cancel -> close the tab with no sale
func (tc *TableOrderController) Cancel(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("order_id"))

	order, err := tc.Tables.Cancel(uint(id))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	events.Broadcast(events.EventTableUpdate, order)
	utils.RespondJSON(c, http.StatusOK, "Table order cancelled", order)
}
