package router

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/pos-app/controllers"
	"github.com/yeremiapane/pos-app/middlewares"
	"github.com/yeremiapane/pos-app/services"
)

func SetupRouter(db *gorm.DB, saleSvc *services.SaleService, sessionSvc *services.CashSessionService, tableSvc *services.TableOrderService) *gin.Engine {
	r := gin.Default()

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.LoggerMiddleware())

	// Read-only services live here; the mutating graph is shared with the
	// table monitor and injected by main.
	reportSvc := services.NewReportService(db)
	receiptSvc := services.NewReceiptService("POS", nil)

	// Controllers
	userCtrl := controllers.NewUserController(db)
	productCtrl := controllers.NewProductController(db, tableSvc)
	saleCtrl := controllers.NewSaleController(saleSvc, sessionSvc, receiptSvc)
	sessionCtrl := controllers.NewCashSessionController(sessionSvc)
	tableCtrl := controllers.NewTableOrderController(tableSvc, sessionSvc, receiptSvc)
	reportCtrl := controllers.NewReportController(reportSvc)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	public := r.Group("/")
	public.Use(middlewares.NewStrictRateLimiter())
	{
		public.POST("/register", userCtrl.Register)
		public.POST("/login", userCtrl.Login)
	}

	r.GET("/ws", middlewares.WebSocketAuthMiddleware(), controllers.HandleWS)

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	api := r.Group("/api")
	api.Use(middlewares.AuthMiddleware())
	{
		api.GET("/profile", userCtrl.GetProfile)
		api.GET("/users", userCtrl.GetAllUsers)

		// Catalog
		api.POST("/products", productCtrl.CreateProduct)
		api.GET("/products", productCtrl.GetAllProducts)
		api.GET("/products/:product_id", productCtrl.GetProductByID)
		api.PATCH("/products/:product_id", productCtrl.UpdateProduct)
		api.DELETE("/products/:product_id", productCtrl.DeleteProduct)

		// Sale ledger
		api.POST("/sales", saleCtrl.CreateSale)
		api.GET("/sales", saleCtrl.GetAllSales)
		api.GET("/sales/:sale_id", saleCtrl.GetSaleByID)
		api.POST("/sales/:sale_id/void", saleCtrl.VoidSale)
		api.GET("/sales/:sale_id/receipt", saleCtrl.GetReceipt)
		api.POST("/sales/:sale_id/receipt/print", saleCtrl.PrintReceipt)

		// Cash sessions
		api.POST("/cash-sessions", sessionCtrl.OpenSession)
		api.GET("/cash-sessions", sessionCtrl.ListSessions)
		api.GET("/cash-sessions/current", sessionCtrl.GetCurrentSession)
		api.GET("/cash-sessions/:session_id", sessionCtrl.GetSessionByID)
		api.POST("/cash-sessions/:session_id/close", sessionCtrl.CloseSession)

		// Tables / tabs
		api.POST("/tables/:table_number/open", tableCtrl.OpenTable)
		api.GET("/tables/status", tableCtrl.GetTablesStatus)
		api.GET("/table-orders/:order_id", tableCtrl.GetOrder)
		api.POST("/table-orders/:order_id/items", tableCtrl.AddItem)
		api.PATCH("/table-order-items/:item_id", tableCtrl.UpdateItemQuantity)
		api.DELETE("/table-order-items/:item_id", tableCtrl.RemoveItem)
		api.POST("/table-orders/:order_id/checkout", tableCtrl.Checkout)
		api.POST("/table-orders/:order_id/cancel", tableCtrl.Cancel)

		// Reports
		api.GET("/reports/period", reportCtrl.ByPeriod)
		api.GET("/reports/vendors", reportCtrl.ByVendor)
		api.GET("/reports/products", reportCtrl.ByProduct)
		api.GET("/reports/hours", reportCtrl.ByHour)
	}

	return r
}
