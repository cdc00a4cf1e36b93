package Controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yeremiapane/pos-app/controllers"
	"github.com/yeremiapane/pos-app/models"
	"github.com/yeremiapane/pos-app/services"
	"github.com/yeremiapane/pos-app/utils"
)

func setupTestDBForTables(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	err = db.AutoMigrate(&models.User{}, &models.Product{}, &models.CashSession{},
		&models.Sale{}, &models.SaleItem{}, &models.TableOrder{}, &models.TableOrderItem{})
	if err != nil {
		t.Fatal(err)
	}
	db.Create(&models.User{Name: "ana", Role: "cashier", PinSalt: "s", PinHash: "h"})
	db.Create(&models.Product{Name: "Coffee", Price: 10, Stock: 20})
	return db
}

func setupTableRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.Default()

	saleSvc := services.NewSaleService(db)
	sessionSvc := services.NewCashSessionService(db)
	tableSvc := services.NewTableOrderService(db, saleSvc, sessionSvc)
	receiptSvc := services.NewReceiptService("Test POS", nil)

	sessionCtrl := controllers.NewCashSessionController(sessionSvc)
	tableCtrl := controllers.NewTableOrderController(tableSvc, sessionSvc, receiptSvc)

	authed := router.Group("/", fakeAuth(1, "cashier"))
	authed.POST("/cash-sessions", sessionCtrl.OpenSession)
	authed.POST("/cash-sessions/:session_id/close", sessionCtrl.CloseSession)
	authed.POST("/tables/:table_number/open", tableCtrl.OpenTable)
	authed.GET("/tables/status", tableCtrl.GetTablesStatus)
	authed.GET("/table-orders/:order_id", tableCtrl.GetOrder)
	authed.POST("/table-orders/:order_id/items", tableCtrl.AddItem)
	authed.PATCH("/table-order-items/:item_id", tableCtrl.UpdateItemQuantity)
	authed.DELETE("/table-order-items/:item_id", tableCtrl.RemoveItem)
	authed.POST("/table-orders/:order_id/checkout", tableCtrl.Checkout)
	authed.POST("/table-orders/:order_id/cancel", tableCtrl.Cancel)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf *bytes.Buffer
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		buf = bytes.NewBuffer(raw)
	} else {
		buf = bytes.NewBuffer(nil)
	}
	req, _ := http.NewRequest(method, path, buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestTableLifecycleOverHTTP(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForTables(t)
	router := setupTableRouter(db)

	// No drawer open yet: the tab can exist but checkout must refuse
	w := doJSON(t, router, "POST", "/tables/3/open", nil)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, "POST", "/table-orders/1/items", map[string]interface{}{
		"product_id": 1, "quantity": 2,
	})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, "POST", "/table-orders/1/checkout", map[string]interface{}{
		"payment_method": "cash", "received_amount": 50.0,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Open a drawer and retry
	w = doJSON(t, router, "POST", "/cash-sessions", map[string]interface{}{"opening_cash": 100.0})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, "POST", "/table-orders/1/checkout", map[string]interface{}{
		"payment_method": "cash", "received_amount": 50.0,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.InDelta(t, 30.0, data["change"].(float64), 0.001)
	receipt := data["receipt"].(map[string]interface{})
	assert.Contains(t, receipt["body"].(string), "Coffee")

	// The table is free again
	var openCount int64
	db.Model(&models.TableOrder{}).Where("status = ?", models.TableOrderOpen).Count(&openCount)
	assert.Zero(t, openCount)

	// Stock was decremented by the checkout
	var coffee models.Product
	require.NoError(t, db.First(&coffee, 1).Error)
	assert.Equal(t, 18, coffee.Stock)
}

func TestOpenTableTwiceConflicts(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForTables(t)
	router := setupTableRouter(db)

	w := doJSON(t, router, "POST", "/tables/5/open", nil)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, "POST", "/tables/5/open", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestTablesStatusEndpoint(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForTables(t)
	router := setupTableRouter(db)

	w := doJSON(t, router, "POST", "/tables/2/open", nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, "GET", "/tables/status?max_tables=4", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	statuses := resp["data"].([]interface{})
	require.Len(t, statuses, 4)
	occupied := 0
	for _, raw := range statuses {
		row := raw.(map[string]interface{})
		if row["occupied"].(bool) {
			occupied++
			assert.EqualValues(t, 2, row["table_number"].(float64))
		}
	}
	assert.Equal(t, 1, occupied)
}

func TestAddItemOnClosedOrder(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForTables(t)
	router := setupTableRouter(db)

	w := doJSON(t, router, "POST", "/tables/1/open", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	w = doJSON(t, router, "POST", "/table-orders/1/cancel", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, "POST", "/table-orders/1/items", map[string]interface{}{
		"product_id": 1, "quantity": 1,
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCheckoutInsufficientStock(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForTables(t)
	router := setupTableRouter(db)

	w := doJSON(t, router, "POST", "/cash-sessions", map[string]interface{}{"opening_cash": 0.0})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, "POST", "/tables/1/open", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	w = doJSON(t, router, "POST", "/table-orders/1/items", map[string]interface{}{
		"product_id": 1, "quantity": 5,
	})
	require.Equal(t, http.StatusOK, w.Code)

	// Stock drains between adding and paying
	require.NoError(t, db.Model(&models.Product{}).Where("id = ?", 1).
		Update("stock", 1).Error)

	w = doJSON(t, router, "POST", "/table-orders/1/checkout", map[string]interface{}{
		"payment_method": "card",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	// The tab survives the failed checkout
	w = doJSON(t, router, "GET", fmt.Sprintf("/table-orders/%d", 1), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	order := resp["data"].(map[string]interface{})
	assert.Equal(t, models.TableOrderOpen, order["status"].(string))
}
