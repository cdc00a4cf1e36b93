package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/yeremiapane/pos-app/models"
	"github.com/yeremiapane/pos-app/utils"
)

// CashSessionService drives the drawer lifecycle: Open -> Closed, never
// reopened. Only one session may be open process-wide; the check runs at
// open time against the store, never against in-memory state, so the app
// stays restartable.
type CashSessionService struct {
	DB *gorm.DB
}

func NewCashSessionService(db *gorm.DB) *CashSessionService {
	return &CashSessionService{DB: db}
}

func (cs *CashSessionService) OpenSession(openingCash float64, userID uint) (*models.CashSession, error) {
	if openingCash < 0 {
		return nil, errors.New("opening cash cannot be negative")
	}

	var session models.CashSession
	err := cs.DB.Transaction(func(tx *gorm.DB) error {
		var openCount int64
		if err := tx.Model(&models.CashSession{}).
			Where("closed_at IS NULL").Count(&openCount).Error; err != nil {
			return err
		}
		if openCount > 0 {
			return ErrSessionAlreadyOpen
		}

		session = models.CashSession{
			OpenedAt:       time.Now(),
			OpenedByUserID: userID,
			OpeningCash:    openingCash,
		}
		return tx.Create(&session).Error
	})
	if err != nil {
		return nil, err
	}
	utils.InfoLogger.Printf("Cash session #%d opened by user %d (opening=%.2f)",
		session.ID, userID, openingCash)
	return &session, nil
}

func (cs *CashSessionService) CloseSession(sessionID uint, declaredCash, declaredCard, declaredTransfer float64, userID uint, notes string) (*models.CashSession, error) {
	var session models.CashSession
	err := cs.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&session, sessionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSessionNotFound
			}
			return err
		}
		if !session.Open() {
			return ErrSessionAlreadyClosed
		}

		now := time.Now()
		session.ClosedAt = &now
		session.ClosedByUserID = &userID
		session.DeclaredCash = &declaredCash
		session.DeclaredCard = &declaredCard
		session.DeclaredTransfer = &declaredTransfer
		if notes != "" {
			session.Notes = notes
		}
		return tx.Save(&session).Error
	})
	if err != nil {
		return nil, err
	}

	rec := Reconcile(&session)
	utils.InfoLogger.Printf("Cash session #%d closed by user %d: diff cash=%.2f card=%.2f transfer=%.2f",
		session.ID, userID, rec.DiffCash, rec.DiffCard, rec.DiffTransfer)
	return &session, nil
}

// Reconciliation is the declared-vs-expected comparison per channel. It is
// recomputed on every read from the stored fields and never persisted, so
// it cannot drift from the source numbers.
type Reconciliation struct {
	ExpectedCash     float64 `json:"expected_cash"`
	ExpectedCard     float64 `json:"expected_card"`
	ExpectedTransfer float64 `json:"expected_transfer"`
	DeclaredCash     float64 `json:"declared_cash"`
	DeclaredCard     float64 `json:"declared_card"`
	DeclaredTransfer float64 `json:"declared_transfer"`
	DiffCash         float64 `json:"diff_cash"`
	DiffCard         float64 `json:"diff_card"`
	DiffTransfer     float64 `json:"diff_transfer"`
	DiffTotal        float64 `json:"diff_total"`
}

func Reconcile(session *models.CashSession) *Reconciliation {
	rec := &Reconciliation{
		ExpectedCash:     session.ExpectedCash(),
		ExpectedCard:     session.SalesCardTotal,
		ExpectedTransfer: session.SalesTransferTotal,
	}
	if session.DeclaredCash != nil {
		rec.DeclaredCash = *session.DeclaredCash
	}
	if session.DeclaredCard != nil {
		rec.DeclaredCard = *session.DeclaredCard
	}
	if session.DeclaredTransfer != nil {
		rec.DeclaredTransfer = *session.DeclaredTransfer
	}
	rec.DiffCash = rec.DeclaredCash - rec.ExpectedCash
	rec.DiffCard = rec.DeclaredCard - rec.ExpectedCard
	rec.DiffTransfer = rec.DeclaredTransfer - rec.ExpectedTransfer
	rec.DiffTotal = rec.DiffCash + rec.DiffCard + rec.DiffTransfer
	return rec
}

// FindOpenSession returns the single open session, or ErrNoCashSessionOpen.
func (cs *CashSessionService) FindOpenSession() (*models.CashSession, error) {
	var session models.CashSession
	if err := cs.DB.Where("closed_at IS NULL").First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoCashSessionOpen
		}
		return nil, err
	}
	return &session, nil
}

func (cs *CashSessionService) GetSessionByID(id uint) (*models.CashSession, error) {
	var session models.CashSession
	if err := cs.DB.First(&session, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &session, nil
}

func (cs *CashSessionService) ListSessions(limit int) ([]models.CashSession, error) {
	if limit <= 0 {
		limit = 50
	}
	var sessions []models.CashSession
	if err := cs.DB.Order("opened_at DESC").Limit(limit).Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}
