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

type SaleController struct {
	Sales    *services.SaleService
	Sessions *services.CashSessionService
	Receipts *services.ReceiptService
}

func NewSaleController(sales *services.SaleService, sessions *services.CashSessionService, receipts *services.ReceiptService) *SaleController {
	return &SaleController{Sales: sales, Sessions: sessions, Receipts: receipts}
}

// CreateSale -> direct cart sale (no table). Settles against the open
// session when one exists; a stand-alone sale outside session tracking is
// permitted at this layer.
func (sc *SaleController) CreateSale(c *gin.Context) {
	var req struct {
		Items []services.SaleItemInput `json:"items" binding:"required"`

		PaymentMethod  string  `json:"payment_method" binding:"required"`
		SaleType       string  `json:"sale_type"`
		CashAmount     float64 `json:"cash_amount"`
		TransferAmount float64 `json:"transfer_amount"`
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

	meta := services.SaleMeta{
		UserID:         currentUserID(c),
		PaymentMethod:  method,
		SaleType:       saleType,
		CashAmount:     req.CashAmount,
		TransferAmount: req.TransferAmount,
		Notes:          req.Notes,
	}
	if session, err := sc.Sessions.FindOpenSession(); err == nil {
		meta.CashSessionID = &session.ID
	} else if !errors.Is(err, services.ErrNoCashSessionOpen) {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	sale, err := sc.Sales.CreateSale(req.Items, meta)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	events.Broadcast(events.EventSaleCreated, sale)
	utils.RespondJSON(c, http.StatusCreated, "Sale created", sale)
}

func (sc *SaleController) GetAllSales(c *gin.Context) {
	sales, err := sc.Sales.GetAllSales()
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of sales", sales)
}

func (sc *SaleController) GetSaleByID(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("sale_id"))

	sale, err := sc.Sales.GetSaleByID(uint(id))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Sale detail", sale)
}

// VoidSale -> audit annotation, admin only. Stock and session totals stay
// as they were.
func (sc *SaleController) VoidSale(c *gin.Context) {
	roleInterface, _ := c.Get("role")
	if roleInterface != "admin" {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	id, _ := strconv.Atoi(c.Param("sale_id"))

	var req struct {
		Reason string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	userID := currentUserID(c)
	if userID == nil {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("user id not found in context"))
		return
	}

	sale, err := sc.Sales.VoidSale(uint(id), *userID, req.Reason)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	events.Broadcast(events.EventSaleVoided, sale)
	utils.RespondJSON(c, http.StatusOK, "Sale voided", sale)
}

// GetReceipt -> rendered document for display
func (sc *SaleController) GetReceipt(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("sale_id"))

	sale, err := sc.Sales.GetSaleByID(uint(id))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	doc := sc.Receipts.Render(sale, 0)
	utils.RespondJSON(c, http.StatusOK, "Receipt", doc)
}

// PrintReceipt -> render and hand to the printer. A print failure is
// reported but the sale stays committed.
func (sc *SaleController) PrintReceipt(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("sale_id"))

	sale, err := sc.Sales.GetSaleByID(uint(id))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	doc := sc.Receipts.Render(sale, 0)
	if err := sc.Receipts.Emit(doc); err != nil {
		utils.RespondError(c, http.StatusBadGateway, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Receipt printed", doc)
}
