package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/pos-app/models"
)

func TestOpenSessionAllowsOnlyOne(t *testing.T) {
	db := setupTestDB(t)
	sessions := NewCashSessionService(db)
	user := seedUser(t, db, "ana")

	first, err := sessions.OpenSession(100, user.ID)
	require.NoError(t, err)
	assert.True(t, first.Open())

	_, err = sessions.OpenSession(50, user.ID)
	require.ErrorIs(t, err, ErrSessionAlreadyOpen)

	// Closing releases the slot
	_, err = sessions.CloseSession(first.ID, 100, 0, 0, user.ID, "")
	require.NoError(t, err)

	second, err := sessions.OpenSession(50, user.ID)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	var openCount int64
	db.Model(&models.CashSession{}).Where("closed_at IS NULL").Count(&openCount)
	assert.EqualValues(t, 1, openCount)
}

func TestOpenSessionNegativeFloat(t *testing.T) {
	db := setupTestDB(t)
	sessions := NewCashSessionService(db)
	user := seedUser(t, db, "ana")

	_, err := sessions.OpenSession(-1, user.ID)
	require.Error(t, err)
}

func TestCloseSessionErrors(t *testing.T) {
	db := setupTestDB(t)
	sessions := NewCashSessionService(db)
	user := seedUser(t, db, "ana")

	_, err := sessions.CloseSession(42, 0, 0, 0, user.ID, "")
	require.ErrorIs(t, err, ErrSessionNotFound)

	session, err := sessions.OpenSession(100, user.ID)
	require.NoError(t, err)
	_, err = sessions.CloseSession(session.ID, 100, 0, 0, user.ID, "")
	require.NoError(t, err)

	_, err = sessions.CloseSession(session.ID, 100, 0, 0, user.ID, "")
	require.ErrorIs(t, err, ErrSessionAlreadyClosed)
}

func TestReconciliationShortage(t *testing.T) {
	db := setupTestDB(t)
	sales := NewSaleService(db)
	sessions := NewCashSessionService(db)
	user := seedUser(t, db, "ana")
	coffee := seedProduct(t, db, "Coffee", 50.0, 10)

	session, err := sessions.OpenSession(100, user.ID)
	require.NoError(t, err)

	_, err = sales.CreateSale([]SaleItemInput{{ProductID: coffee.ID, Quantity: 1}},
		SaleMeta{
			PaymentMethod: models.PaymentCash,
			SaleType:      models.SaleNormal,
			CashSessionID: &session.ID,
		})
	require.NoError(t, err)

	// Drawer counted 140 against an expected 150: 10 short
	closed, err := sessions.CloseSession(session.ID, 140, 0, 0, user.ID, "")
	require.NoError(t, err)

	rec := Reconcile(closed)
	assert.InDelta(t, 150, rec.ExpectedCash, 0.001)
	assert.InDelta(t, -10, rec.DiffCash, 0.001)
}

func TestReconciliationBalancedShift(t *testing.T) {
	db := setupTestDB(t)
	sales := NewSaleService(db)
	sessions := NewCashSessionService(db)
	user := seedUser(t, db, "ana")
	coffee := seedProduct(t, db, "Coffee", 30.0, 10)
	cake := seedProduct(t, db, "Cake", 20.0, 10)

	session, err := sessions.OpenSession(100, user.ID)
	require.NoError(t, err)

	_, err = sales.CreateSale([]SaleItemInput{{ProductID: coffee.ID, Quantity: 1}},
		SaleMeta{PaymentMethod: models.PaymentCash, SaleType: models.SaleNormal, CashSessionID: &session.ID})
	require.NoError(t, err)
	_, err = sales.CreateSale([]SaleItemInput{{ProductID: cake.ID, Quantity: 1}},
		SaleMeta{PaymentMethod: models.PaymentCard, SaleType: models.SaleNormal, CashSessionID: &session.ID})
	require.NoError(t, err)

	closed, err := sessions.CloseSession(session.ID, 130, 20, 0, user.ID, "end of shift")
	require.NoError(t, err)

	rec := Reconcile(closed)
	assert.InDelta(t, 0, rec.DiffCash, 0.001)
	assert.InDelta(t, 0, rec.DiffCard, 0.001)
	assert.InDelta(t, 0, rec.DiffTransfer, 0.001)
	assert.InDelta(t, 0, rec.DiffTotal, 0.001)
}

func TestReconciliationIsDerivedNotStored(t *testing.T) {
	db := setupTestDB(t)
	sessions := NewCashSessionService(db)
	user := seedUser(t, db, "ana")

	session, err := sessions.OpenSession(100, user.ID)
	require.NoError(t, err)
	_, err = sessions.CloseSession(session.ID, 90, 0, 0, user.ID, "")
	require.NoError(t, err)

	// Recomputed from the stored fields on every read
	reloaded, err := sessions.GetSessionByID(session.ID)
	require.NoError(t, err)
	first := Reconcile(reloaded)
	second := Reconcile(reloaded)
	assert.Equal(t, first, second)
	assert.InDelta(t, -10, first.DiffCash, 0.001)
}

func TestFindOpenSession(t *testing.T) {
	db := setupTestDB(t)
	sessions := NewCashSessionService(db)
	user := seedUser(t, db, "ana")

	_, err := sessions.FindOpenSession()
	require.ErrorIs(t, err, ErrNoCashSessionOpen)

	opened, err := sessions.OpenSession(100, user.ID)
	require.NoError(t, err)

	found, err := sessions.FindOpenSession()
	require.NoError(t, err)
	assert.Equal(t, opened.ID, found.ID)
}

func TestListSessions(t *testing.T) {
	db := setupTestDB(t)
	sessions := NewCashSessionService(db)
	user := seedUser(t, db, "ana")

	for i := 0; i < 3; i++ {
		s, err := sessions.OpenSession(float64(10 * i), user.ID)
		require.NoError(t, err)
		_, err = sessions.CloseSession(s.ID, 0, 0, 0, user.ID, "")
		require.NoError(t, err)
	}

	list, err := sessions.ListSessions(2)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}
