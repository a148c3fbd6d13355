package interfaces

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pklimczu/FinTrack/internal/finance/application"
	"github.com/pklimczu/FinTrack/internal/finance/domain"
	"github.com/pklimczu/FinTrack/internal/finance/infrastructure"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBudgetFixture(now time.Time) (*BudgetHandler, *infrastructure.MockTransactionRepository, *infrastructure.MockBudgetGoalRepository) {
	transactionRepo := &infrastructure.MockTransactionRepository{}
	goalRepo := &infrastructure.MockBudgetGoalRepository{}
	service := application.NewBudgetService(goalRepo, application.NewAggregationService(transactionRepo))
	handler := NewBudgetHandler(service, respondJSON, respondError)
	handler.now = func() time.Time { return now }
	return handler, transactionRepo, goalRepo
}

func TestSaveGoalHandler_RoundTrip(t *testing.T) {
	handler, _, goalRepo := newBudgetFixture(time.Now().UTC())

	body := `{
		"monthly_income": "8000",
		"monthly_expenses": "3000",
		"savings_target": "4000",
		"category_limits": {"Food": "500"}
	}`
	rec := httptest.NewRecorder()
	handler.SaveGoal(rec, authenticatedRequest(t, http.MethodPut, "/api/budget/goal", body, "user-1"))
	assert.Equal(t, http.StatusOK, rec.Code)

	stored, err := goalRepo.Get("user-1")
	require.NoError(t, err)
	assert.True(t, stored.MonthlyIncome.Equal(decimal.RequireFromString("8000")))
	assert.Len(t, stored.CategoryLimits, 1)

	rec = httptest.NewRecorder()
	handler.GetGoal(rec, authenticatedRequest(t, http.MethodGet, "/api/budget/goal", "", "user-1"))
	assert.Equal(t, http.StatusOK, rec.Code)
	response := decodeBody(t, rec)
	data := response["data"].(map[string]interface{})
	assert.Equal(t, "8000", data["monthly_income"])
}

func TestSaveGoalHandler_NegativeTarget(t *testing.T) {
	handler, _, _ := newBudgetFixture(time.Now().UTC())

	body := `{"monthly_income": "-100", "category_limits": {"Food": "-1"}}`
	rec := httptest.NewRecorder()
	handler.SaveGoal(rec, authenticatedRequest(t, http.MethodPut, "/api/budget/goal", body, "user-1"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	response := decodeBody(t, rec)
	assert.Equal(t, []interface{}{"category_limits.Food", "monthly_income"}, response["errors"])
}

func TestGetGoalHandler_DefaultsToZeroGoal(t *testing.T) {
	handler, _, _ := newBudgetFixture(time.Now().UTC())

	rec := httptest.NewRecorder()
	handler.GetGoal(rec, authenticatedRequest(t, http.MethodGet, "/api/budget/goal", "", "user-1"))

	assert.Equal(t, http.StatusOK, rec.Code)
	response := decodeBody(t, rec)
	data := response["data"].(map[string]interface{})
	assert.Equal(t, "0", data["monthly_income"])
}

func TestGetStatusHandler(t *testing.T) {
	now := time.Date(2024, time.March, 20, 9, 0, 0, 0, time.UTC)
	handler, transactionRepo, goalRepo := newBudgetFixture(now)

	goal := domain.BudgetGoal{
		UserID:          "user-1",
		MonthlyExpenses: decimal.RequireFromString("10000"),
	}
	require.NoError(t, goalRepo.Save(&goal))
	seedRecord(transactionRepo, "user-1", domain.TypeExpense, "8000", time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC), "Food")

	rec := httptest.NewRecorder()
	handler.GetStatus(rec, authenticatedRequest(t, http.MethodGet, "/api/budget/status", "", "user-1"))

	assert.Equal(t, http.StatusOK, rec.Code)
	response := decodeBody(t, rec)
	data := response["data"].(map[string]interface{})
	expenses := data["expenses"].(map[string]interface{})
	assert.Equal(t, "80", expenses["progress"])
	assert.Equal(t, "warning", expenses["status"])
}

func TestGetStatusHandler_InvalidDate(t *testing.T) {
	handler, _, _ := newBudgetFixture(time.Now().UTC())

	rec := httptest.NewRecorder()
	handler.GetStatus(rec, authenticatedRequest(t, http.MethodGet, "/api/budget/status?date=20-03-2024", "", "user-1"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBudgetHandlers_Unauthorized(t *testing.T) {
	handler, _, _ := newBudgetFixture(time.Now().UTC())

	endpoints := map[string]http.HandlerFunc{
		"get goal":   handler.GetGoal,
		"save goal":  handler.SaveGoal,
		"get status": handler.GetStatus,
	}
	for name, endpoint := range endpoints {
		rec := httptest.NewRecorder()
		endpoint(rec, authenticatedRequest(t, http.MethodGet, "/api/budget/goal", "", ""))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, name)
	}
}
