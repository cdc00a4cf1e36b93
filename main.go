package main

import (
	"log"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/yeremiapane/pos-app/config"
	"github.com/yeremiapane/pos-app/middlewares"
	"github.com/yeremiapane/pos-app/models"
	"github.com/yeremiapane/pos-app/router"
	"github.com/yeremiapane/pos-app/services"
	"github.com/yeremiapane/pos-app/utils"
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or error loading: %v", err)
	}

	utils.InitLogger()
}

func main() {
	db, err := config.InitDB()
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	autoMigrate(db)

	rateLimiter := middlewares.NewRateLimiter(50, 1)

	// One service graph, shared by the router and the monitor
	saleSvc := services.NewSaleService(db)
	sessionSvc := services.NewCashSessionService(db)
	tableSvc := services.NewTableOrderService(db, saleSvc, sessionSvc)

	// Push floor status to attached terminals
	maxTables := 12
	if v, err := strconv.Atoi(os.Getenv("MAX_TABLES")); err == nil && v > 0 {
		maxTables = v
	}
	monitor := services.NewTableMonitor(tableSvc, maxTables)
	monitor.Start()
	defer monitor.Stop()

	r := router.SetupRouter(db, saleSvc, sessionSvc, tableSvc)
	r.Use(rateLimiter.RateLimit())

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	utils.InfoLogger.Printf("Listening on port %s", port)
	if err := r.Run(":" + port); err != nil {
		utils.ErrorLogger.Fatal(err)
	}
}

func autoMigrate(db *gorm.DB) {
	err := db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.CashSession{},
		&models.Sale{},
		&models.SaleItem{},
		&models.TableOrder{},
		&models.TableOrderItem{},
	)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}
	utils.InfoLogger.Println("AutoMigrate completed.")
}
