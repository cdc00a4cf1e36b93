package Controllers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yeremiapane/pos-app/controllers"
	"github.com/yeremiapane/pos-app/models"
	"github.com/yeremiapane/pos-app/services"
	"github.com/yeremiapane/pos-app/utils"
)

func setupProductRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.Default()

	saleSvc := services.NewSaleService(db)
	sessionSvc := services.NewCashSessionService(db)
	tableSvc := services.NewTableOrderService(db, saleSvc, sessionSvc)
	productCtrl := controllers.NewProductController(db, tableSvc)
	tableCtrl := controllers.NewTableOrderController(tableSvc, sessionSvc, services.NewReceiptService("", nil))

	authed := router.Group("/", fakeAuth(1, "admin"))
	authed.POST("/products", productCtrl.CreateProduct)
	authed.GET("/products", productCtrl.GetAllProducts)
	authed.GET("/products/:product_id", productCtrl.GetProductByID)
	authed.PATCH("/products/:product_id", productCtrl.UpdateProduct)
	authed.DELETE("/products/:product_id", productCtrl.DeleteProduct)
	authed.POST("/tables/:table_number/open", tableCtrl.OpenTable)
	authed.POST("/table-orders/:order_id/items", tableCtrl.AddItem)
	return router
}

func TestProductCRUD(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForTables(t)
	router := setupProductRouter(db)

	w := doJSON(t, router, "POST", "/products", map[string]interface{}{
		"name": "Tea", "price": 8.5, "stock": 40,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, "PATCH", "/products/2", map[string]interface{}{
		"price": 9.0,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var tea models.Product
	require.NoError(t, db.First(&tea, 2).Error)
	assert.InDelta(t, 9.0, tea.Price, 0.001)
	assert.Equal(t, 40, tea.Stock)

	w = doJSON(t, router, "PATCH", "/products/2", map[string]interface{}{
		"price": -1.0,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req, _ := http.NewRequest("DELETE", "/products/2", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	var count int64
	db.Model(&models.Product{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestDeleteProductOnOpenTab(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForTables(t)
	router := setupProductRouter(db)

	w := doJSON(t, router, "POST", "/tables/1/open", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	w = doJSON(t, router, "POST", "/table-orders/1/items", map[string]interface{}{
		"product_id": 1, "quantity": 1,
	})
	require.Equal(t, http.StatusOK, w.Code)

	req, _ := http.NewRequest("DELETE", "/products/1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var count int64
	db.Model(&models.Product{}).Count(&count)
	assert.EqualValues(t, 1, count)
}
