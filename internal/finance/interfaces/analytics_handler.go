package interfaces

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/pklimczu/FinTrack/internal/finance/application"
	"github.com/shopspring/decimal"
)

const (
	defaultTrendDays = 30
	maxTrendDays     = 365
)

type AggregationServiceInterface interface {
	AggregateDay(userID string, date time.Time) (application.DailyAggregate, error)
	AggregateMonth(userID string, year int, month time.Month, currentDay int) (application.MonthlyAggregate, error)
	MonthByDay(userID string, year int, month time.Month) (map[int]application.DailyAggregate, error)
	AggregateTrend(userID string, endDate time.Time, numDays int) ([]application.TrendPoint, error)
}

type AnalyticsHandler struct {
	service      AggregationServiceInterface
	respondJSON  func(w http.ResponseWriter, status int, payload interface{})
	respondError func(w http.ResponseWriter, status int, message string, errors ...[]string)
	now          func() time.Time
}

func NewAnalyticsHandler(
	service AggregationServiceInterface,
	respondJSON func(w http.ResponseWriter, status int, payload interface{}),
	respondError func(w http.ResponseWriter, status int, message string, errors ...[]string),
) *AnalyticsHandler {
	if service == nil {
		log.Fatal("Service must not be nil")
		return nil
	}
	return &AnalyticsHandler{
		service:      service,
		respondJSON:  respondJSON,
		respondError: respondError,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// GetDashboard returns the daily and monthly aggregates for the requested
// date (default today) plus the month's category totals, in one response.
func (h *AnalyticsHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	date := h.now()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, "Invalid date format, expected YYYY-MM-DD")
			return
		}
		date = parsed
	}

	daily, err := h.service.AggregateDay(userID, date)
	if err != nil {
		log.Printf("dashboard daily aggregate failed: %v", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to compute dashboard")
		return
	}
	monthly, err := h.service.AggregateMonth(userID, date.Year(), date.Month(), date.Day())
	if err != nil {
		log.Printf("dashboard monthly aggregate failed: %v", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to compute dashboard")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data": map[string]interface{}{
			"daily":           daily,
			"monthly":         monthly,
			"category_totals": monthly.CategoryTotals,
		},
	})
}

type monthlyDayEntry struct {
	Income           decimal.Decimal `json:"income"`
	Expenses         decimal.Decimal `json:"expenses"`
	Balance          decimal.Decimal `json:"balance"`
	TransactionCount int             `json:"transaction_count"`
}

// GetMonthly returns a dense per-day map for (year, month); days without
// transactions are present with zero values.
func (h *AnalyticsHandler) GetMonthly(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	now := h.now()
	year, err := intParamDefault(r, "year", now.Year())
	if err != nil || year < 1970 || year > 9999 {
		h.respondError(w, http.StatusBadRequest, "Invalid year value")
		return
	}
	monthNum, err := intParamDefault(r, "month", int(now.Month()))
	if err != nil || monthNum < 1 || monthNum > 12 {
		h.respondError(w, http.StatusBadRequest, "Invalid month value")
		return
	}
	month := time.Month(monthNum)

	daily, err := h.service.MonthByDay(userID, year, month)
	if err != nil {
		log.Printf("monthly breakdown failed: %v", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to compute monthly breakdown")
		return
	}

	days := map[int]monthlyDayEntry{}
	for day := 1; day <= application.DaysInMonth(year, month); day++ {
		entry := monthlyDayEntry{
			Income:   decimal.Zero,
			Expenses: decimal.Zero,
			Balance:  decimal.Zero,
		}
		if aggregate, ok := daily[day]; ok {
			entry.Income = aggregate.TotalIncome
			entry.Expenses = aggregate.TotalExpenses
			entry.Balance = aggregate.Balance
			entry.TransactionCount = aggregate.TransactionCount
		}
		days[day] = entry
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data": map[string]interface{}{
			"year":  year,
			"month": monthNum,
			"days":  days,
		},
	})
}

// GetTrends returns a dense daily series ending today.
func (h *AnalyticsHandler) GetTrends(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	days, err := intParamDefault(r, "days", defaultTrendDays)
	if err != nil || days <= 0 || days > maxTrendDays {
		h.respondError(w, http.StatusBadRequest, "Invalid days value")
		return
	}

	series, err := h.service.AggregateTrend(userID, h.now(), days)
	if err != nil {
		log.Printf("trend aggregate failed: %v", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to compute trends")
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data":   series,
	})
}

func intParamDefault(r *http.Request, name string, defaultValue int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return defaultValue, nil
	}
	return strconv.Atoi(raw)
}
