package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/pos-app/services"
	"github.com/yeremiapane/pos-app/utils"
)

// ErrNoPermission is returned on role check failures.
var ErrNoPermission = &CustomError{"You do not have permission"}

type CustomError struct {
	Message string
}

func (e *CustomError) Error() string {
	return e.Message
}

// respondServiceError translates domain errors into HTTP statuses. The
// services never see HTTP; this is the only place the mapping lives.
func respondServiceError(c *gin.Context, err error) {
	var stockErr *services.InsufficientStockError
	switch {
	case errors.As(err, &stockErr):
		utils.RespondError(c, http.StatusConflict, err)
	case errors.Is(err, services.ErrSessionAlreadyOpen),
		errors.Is(err, services.ErrSessionAlreadyClosed),
		errors.Is(err, services.ErrTableAlreadyOpen),
		errors.Is(err, services.ErrOrderNotOpen),
		errors.Is(err, services.ErrSaleAlreadyVoided):
		utils.RespondError(c, http.StatusConflict, err)
	case errors.Is(err, services.ErrNoCashSessionOpen),
		errors.Is(err, services.ErrEmptyOrder),
		errors.Is(err, services.ErrInvalidQuantity),
		errors.Is(err, services.ErrAmountMismatch),
		errors.Is(err, services.ErrInsufficientPayment),
		errors.Is(err, services.ErrProductInOpenOrder):
		utils.RespondError(c, http.StatusBadRequest, err)
	case errors.Is(err, services.ErrSessionNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		utils.RespondError(c, http.StatusNotFound, err)
	default:
		utils.RespondError(c, http.StatusInternalServerError, err)
	}
}

func currentUserID(c *gin.Context) *uint {
	if v, exists := c.Get("user_id"); exists {
		if id, ok := v.(uint); ok {
			return &id
		}
	}
	return nil
}
