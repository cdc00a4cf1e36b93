package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/pos-app/services"
	"github.com/yeremiapane/pos-app/utils"
)

type ReportController struct {
	Reports *services.ReportService
}

func NewReportController(reports *services.ReportService) *ReportController {
	return &ReportController{Reports: reports}
}

// parseRange reads ?start=&end= as dates (2006-01-02) or RFC3339 stamps.
// Missing values default to today.
func parseRange(c *gin.Context) (time.Time, time.Time, error) {
	parse := func(s string) (time.Time, error) {
		if t, err := time.Parse("2006-01-02", s); err == nil {
			return t, nil
		}
		return time.Parse(time.RFC3339, s)
	}

	now := time.Now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 0, 1)

	if s := c.Query("start"); s != "" {
		t, err := parse(s)
		if err != nil {
			return start, end, errors.New("invalid start parameter")
		}
		start = t
	}
	if s := c.Query("end"); s != "" {
		t, err := parse(s)
		if err != nil {
			return start, end, errors.New("invalid end parameter")
		}
		end = t
	}
	if !end.After(start) {
		return start, end, errors.New("end must be after start")
	}
	return start, end, nil
}

func (rc *ReportController) ByPeriod(c *gin.Context) {
	start, end, err := parseRange(c)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	report, err := rc.Reports.ByPeriod(start, end)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Period report", report)
}

func (rc *ReportController) ByVendor(c *gin.Context) {
	start, end, err := parseRange(c)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	rows, err := rc.Reports.ByVendor(start, end)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Vendor report", rows)
}

func (rc *ReportController) ByProduct(c *gin.Context) {
	start, end, err := parseRange(c)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	rows, err := rc.Reports.ByProduct(start, end)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Product report", rows)
}

func (rc *ReportController) ByHour(c *gin.Context) {
	start, end, err := parseRange(c)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	rows, err := rc.Reports.ByHour(start, end)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Hourly report", rows)
}
