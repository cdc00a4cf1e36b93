package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/pos-app/events"
	"github.com/yeremiapane/pos-app/services"
	"github.com/yeremiapane/pos-app/utils"
)

type CashSessionController struct {
	Sessions *services.CashSessionService
}

func NewCashSessionController(sessions *services.CashSessionService) *CashSessionController {
	return &CashSessionController{Sessions: sessions}
}

// OpenSession -> start a drawer shift
func (cc *CashSessionController) OpenSession(c *gin.Context) {
	var req struct {
		OpeningCash *float64 `json:"opening_cash" binding:"required"`
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

	session, err := cc.Sessions.OpenSession(*req.OpeningCash, *userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	events.Broadcast(events.EventSessionOpened, session)
	utils.RespondJSON(c, http.StatusCreated, "Cash session opened", session)
}

// CloseSession -> stamp declared amounts; reconciliation comes back derived
func (cc *CashSessionController) CloseSession(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("session_id"))

	var req struct {
		DeclaredCash     *float64 `json:"declared_cash" binding:"required"`
		DeclaredCard     *float64 `json:"declared_card" binding:"required"`
		DeclaredTransfer *float64 `json:"declared_transfer" binding:"required"`
		Notes            string   `json:"notes"`
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

	session, err := cc.Sessions.CloseSession(uint(id),
		*req.DeclaredCash, *req.DeclaredCard, *req.DeclaredTransfer, *userID, req.Notes)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	events.Broadcast(events.EventSessionClosed, session)
	utils.RespondJSON(c, http.StatusOK, "Cash session closed", gin.H{
		"session":        session,
		"reconciliation": services.Reconcile(session),
	})
}

// GetCurrentSession -> the single open session, if any
func (cc *CashSessionController) GetCurrentSession(c *gin.Context) {
	session, err := cc.Sessions.FindOpenSession()
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Current cash session", session)
}

// GetSessionByID -> detail plus derived reconciliation once closed
func (cc *CashSessionController) GetSessionByID(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("session_id"))

	session, err := cc.Sessions.GetSessionByID(uint(id))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	data := gin.H{"session": session}
	if !session.Open() {
		data["reconciliation"] = services.Reconcile(session)
	}
	utils.RespondJSON(c, http.StatusOK, "Cash session detail", data)
}

func (cc *CashSessionController) ListSessions(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	sessions, err := cc.Sessions.ListSessions(limit)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of cash sessions", sessions)
}
