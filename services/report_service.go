package services

import (
	"time"

	"gorm.io/gorm"

	"github.com/yeremiapane/pos-app/models"
)

// ReportService is read-only: every figure is derived from the sale ledger
// at query time. Voided sales and house consumption are excluded from
// revenue figures.
type ReportService struct {
	DB *gorm.DB
}

func NewReportService(db *gorm.DB) *ReportService {
	return &ReportService{DB: db}
}

func (rs *ReportService) revenueSales(start, end time.Time) *gorm.DB {
	return rs.DB.Model(&models.Sale{}).
		Where("date >= ? AND date < ? AND voided_at IS NULL AND sale_type = ?",
			start, end, models.SaleNormal)
}

type PeriodReport struct {
	Start         time.Time          `json:"start"`
	End           time.Time          `json:"end"`
	TotalRevenue  float64            `json:"total_revenue"`
	SaleCount     int64              `json:"sale_count"`
	AverageTicket float64            `json:"average_ticket"`
	ByMethod      map[string]float64 `json:"by_method"`
	HouseCount    int64              `json:"house_count"`
	VoidedCount   int64              `json:"voided_count"`
}

func (rs *ReportService) ByPeriod(start, end time.Time) (*PeriodReport, error) {
	report := &PeriodReport{Start: start, End: end, ByMethod: map[string]float64{}}

	if err := rs.revenueSales(start, end).Count(&report.SaleCount).Error; err != nil {
		return nil, err
	}
	if err := rs.revenueSales(start, end).
		Select("COALESCE(SUM(total), 0)").Scan(&report.TotalRevenue).Error; err != nil {
		return nil, err
	}
	if report.SaleCount > 0 {
		report.AverageTicket = report.TotalRevenue / float64(report.SaleCount)
	}

	var byMethod []struct {
		PaymentMethod string
		Revenue       float64
	}
	if err := rs.revenueSales(start, end).
		Select("payment_method, COALESCE(SUM(total), 0) as revenue").
		Group("payment_method").
		Scan(&byMethod).Error; err != nil {
		return nil, err
	}
	for _, row := range byMethod {
		report.ByMethod[row.PaymentMethod] = row.Revenue
	}

	rs.DB.Model(&models.Sale{}).
		Where("date >= ? AND date < ? AND sale_type = ?", start, end, models.SaleHouse).
		Count(&report.HouseCount)
	rs.DB.Model(&models.Sale{}).
		Where("date >= ? AND date < ? AND voided_at IS NOT NULL", start, end).
		Count(&report.VoidedCount)

	return report, nil
}

type VendorReport struct {
	UserID    uint    `json:"user_id"`
	UserName  string  `json:"user_name"`
	SaleCount int64   `json:"sale_count"`
	Revenue   float64 `json:"revenue"`
}

func (rs *ReportService) ByVendor(start, end time.Time) ([]VendorReport, error) {
	var rows []VendorReport
	err := rs.DB.Raw(`
		SELECT u.id AS user_id, u.name AS user_name,
		       COUNT(s.id) AS sale_count, COALESCE(SUM(s.total), 0) AS revenue
		FROM sales s
		JOIN users u ON u.id = s.user_id
		WHERE s.date >= ? AND s.date < ?
		  AND s.voided_at IS NULL AND s.sale_type = ?
		GROUP BY u.id, u.name
		ORDER BY revenue DESC
	`, start, end, models.SaleNormal).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

type ProductReport struct {
	ProductID   uint    `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int64   `json:"quantity"`
	Revenue     float64 `json:"revenue"`
}

func (rs *ReportService) ByProduct(start, end time.Time) ([]ProductReport, error) {
	var rows []ProductReport
	err := rs.DB.Raw(`
		SELECT si.product_id, si.product_name,
		       COALESCE(SUM(si.quantity), 0) AS quantity,
		       COALESCE(SUM(si.subtotal), 0) AS revenue
		FROM sale_items si
		JOIN sales s ON s.id = si.sale_id
		WHERE s.date >= ? AND s.date < ?
		  AND s.voided_at IS NULL AND s.sale_type = ?
		GROUP BY si.product_id, si.product_name
		ORDER BY quantity DESC
	`, start, end, models.SaleNormal).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

type HourReport struct {
	Hour      int     `json:"hour"`
	SaleCount int64   `json:"sale_count"`
	Revenue   float64 `json:"revenue"`
}

// ByHour buckets in Go instead of SQL so the same code runs against mysql
// and the in-memory sqlite used in tests.
func (rs *ReportService) ByHour(start, end time.Time) ([]HourReport, error) {
	var sales []models.Sale
	if err := rs.revenueSales(start, end).Find(&sales).Error; err != nil {
		return nil, err
	}

	buckets := make([]HourReport, 24)
	for h := range buckets {
		buckets[h].Hour = h
	}
	for _, sale := range sales {
		h := sale.Date.Hour()
		buckets[h].SaleCount++
		buckets[h].Revenue += sale.Total
	}
	return buckets, nil
}
