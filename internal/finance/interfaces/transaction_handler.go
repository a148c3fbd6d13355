package interfaces

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/pklimczu/FinTrack/internal/finance/application"
	"github.com/pklimczu/FinTrack/internal/finance/domain"
	financeErrors "github.com/pklimczu/FinTrack/internal/finance/errors"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

type TransactionServiceInterface interface {
	CreateTransaction(transaction *domain.Transaction) error
	CreateTransactionsBulk(transactions []*domain.Transaction, userID string) error
	UpdateTransaction(userID string, transactionID int64, update domain.TransactionUpdate) (*domain.Transaction, error)
	DeleteTransaction(userID string, transactionID int64) error
	DeleteTransactions(userID string, transactionIDs []int64) ([]int64, error)
	GetUserTransactions(userID string, filter domain.TransactionFilter, limit, page int) ([]domain.Transaction, application.Pagination, error)
	GetTransactionsByDate(userID string, date time.Time) ([]domain.Transaction, error)
	GetTransactionsInDateRange(userID string, startDate, endDate time.Time) ([]domain.Transaction, error)
	GetCategories(userID string) ([]string, error)
	GetCategoryTotals(userID string, startDate, endDate time.Time) (map[string]decimal.Decimal, error)
}

type TransactionHandler struct {
	service      TransactionServiceInterface
	respondJSON  func(w http.ResponseWriter, status int, payload interface{})
	respondError func(w http.ResponseWriter, status int, message string, errors ...[]string)
}

func NewTransactionHandler(
	service TransactionServiceInterface,
	respondJSON func(w http.ResponseWriter, status int, payload interface{}),
	respondError func(w http.ResponseWriter, status int, message string, errors ...[]string),
) *TransactionHandler {
	if service == nil {
		log.Fatal("Service must not be nil")
		return nil
	}
	return &TransactionHandler{
		service:      service,
		respondJSON:  respondJSON,
		respondError: respondError,
	}
}

type transactionRequest struct {
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Date        string          `json:"date"`
	Description string          `json:"description"`
	Source      string          `json:"source"`
	Category    string          `json:"category"`
	Notes       string          `json:"notes"`
}

func (req *transactionRequest) toDomain(userID string) (*domain.Transaction, error) {
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return nil, financeErrors.NewValidationError("Invalid date format, expected YYYY-MM-DD", "date")
	}
	return &domain.Transaction{
		UserID:      userID,
		Type:        req.Type,
		Amount:      req.Amount,
		Date:        date,
		Description: req.Description,
		Source:      req.Source,
		Category:    req.Category,
		Notes:       req.Notes,
	}, nil
}

type transactionUpdateRequest struct {
	Amount      *decimal.Decimal `json:"amount"`
	Date        *string          `json:"date"`
	Description *string          `json:"description"`
	Source      *string          `json:"source"`
	Category    *string          `json:"category"`
	Notes       *string          `json:"notes"`
}

func (req *transactionUpdateRequest) toDomain() (domain.TransactionUpdate, error) {
	update := domain.TransactionUpdate{
		Amount:      req.Amount,
		Description: req.Description,
		Source:      req.Source,
		Category:    req.Category,
		Notes:       req.Notes,
	}
	if req.Date != nil {
		date, err := time.Parse(dateLayout, *req.Date)
		if err != nil {
			return domain.TransactionUpdate{}, financeErrors.NewValidationError("Invalid date format, expected YYYY-MM-DD", "date")
		}
		update.Date = &date
	}
	return update, nil
}

func (h *TransactionHandler) respondServiceError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case financeErrors.IsValidationError(err):
		h.respondError(w, http.StatusBadRequest, err.Error(), financeErrors.ValidationFields(err))
	case financeErrors.IsNotFoundError(err):
		h.respondError(w, http.StatusNotFound, err.Error())
	default:
		log.Printf("transaction handler error: %v", err)
		h.respondError(w, http.StatusInternalServerError, fallback)
	}
}

func (h *TransactionHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	transaction, err := req.toDomain(userID)
	if err != nil {
		h.respondServiceError(w, err, "Failed to create transaction")
		return
	}
	if err := h.service.CreateTransaction(transaction); err != nil {
		h.respondServiceError(w, err, "Failed to create transaction")
		return
	}
	h.respondJSON(w, http.StatusCreated, map[string]interface{}{
		"status":  "success",
		"message": "Transaction successfully created.",
		"data":    transaction,
	})
}

func (h *TransactionHandler) CreateTransactionsBulk(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	var req struct {
		Transactions []transactionRequest `json:"transactions"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.Transactions) == 0 {
		h.respondError(w, http.StatusBadRequest, "Invalid request body - no transactions provided")
		return
	}

	transactions := make([]*domain.Transaction, 0, len(req.Transactions))
	var parseErrors []string
	for i, row := range req.Transactions {
		transaction, err := row.toDomain(userID)
		if err != nil {
			parseErrors = append(parseErrors, financeErrors.NewIndexedValidationError(i+1, err.Error()).Error())
			continue
		}
		transactions = append(transactions, transaction)
	}
	if len(parseErrors) > 0 {
		h.respondError(w, http.StatusBadRequest, "Validation errors occurred", parseErrors)
		return
	}

	if err := h.service.CreateTransactionsBulk(transactions, userID); err != nil {
		if financeErrors.IsValidationErrors(err) {
			validationErrors := err.(*financeErrors.ValidationErrors)
			errorMessages := make([]string, len(validationErrors.Errors))
			for i, vErr := range validationErrors.Errors {
				errorMessages[i] = vErr.Error()
			}
			h.respondError(w, http.StatusBadRequest, "Validation errors occurred", errorMessages)
			return
		}
		log.Printf("bulk create failed: %v", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to create transactions")
		return
	}
	h.respondJSON(w, http.StatusCreated, map[string]interface{}{
		"status":  "success",
		"message": "Transactions successfully created.",
		"data":    transactions,
	})
}

func (h *TransactionHandler) GetUserTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	filter := domain.TransactionFilter{
		Type:     r.URL.Query().Get("type"),
		Category: r.URL.Query().Get("category"),
		Search:   r.URL.Query().Get("search"),
	}
	if filter.Type != "" && !domain.IsValidTransactionType(filter.Type) {
		h.respondError(w, http.StatusBadRequest, "Invalid transaction type")
		return
	}
	if startDateStr := r.URL.Query().Get("startDate"); startDateStr != "" {
		startDate, err := time.Parse(dateLayout, startDateStr)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, "Invalid start date format")
			return
		}
		filter.StartDate = &startDate
	}
	if endDateStr := r.URL.Query().Get("endDate"); endDateStr != "" {
		endDate, err := time.Parse(dateLayout, endDateStr)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, "Invalid end date format")
			return
		}
		filter.EndDate = &endDate
	}

	limit, err := positiveIntParam(r, "limit", 20)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid limit value")
		return
	}
	page, err := positiveIntParam(r, "page", 1)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid page value")
		return
	}

	transactions, pagination, err := h.service.GetUserTransactions(userID, filter, limit, page)
	if err != nil {
		log.Printf("list transactions failed: %v", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to retrieve transactions")
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":     "success",
		"message":    "Transactions retrieved successfully.",
		"data":       transactions,
		"pagination": pagination,
	})
}

func (h *TransactionHandler) GetTransactionsByDate(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	date, err := time.Parse(dateLayout, r.PathValue("date"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid date format, expected YYYY-MM-DD")
		return
	}
	transactions, err := h.service.GetTransactionsByDate(userID, date)
	if err != nil {
		log.Printf("list by date failed: %v", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to retrieve transactions")
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data":   transactions,
	})
}

func (h *TransactionHandler) GetTransactionsInRange(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	startDate, endDate, err := dateRangeParams(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	transactions, err := h.service.GetTransactionsInDateRange(userID, startDate, endDate)
	if err != nil {
		log.Printf("list in range failed: %v", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to retrieve transactions")
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data":   transactions,
	})
}

func (h *TransactionHandler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	transactionID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid transaction id")
		return
	}
	var req transactionUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	update, err := req.toDomain()
	if err != nil {
		h.respondServiceError(w, err, "Failed to update transaction")
		return
	}
	transaction, err := h.service.UpdateTransaction(userID, transactionID, update)
	if err != nil {
		h.respondServiceError(w, err, "Failed to update transaction")
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Transaction successfully updated.",
		"data":    transaction,
	})
}

func (h *TransactionHandler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	transactionID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid transaction id")
		return
	}
	if err := h.service.DeleteTransaction(userID, transactionID); err != nil {
		h.respondServiceError(w, err, "Failed to delete transaction")
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Transaction successfully deleted.",
		"data":    map[string]int64{"id": transactionID},
	})
}

func (h *TransactionHandler) DeleteTransactionsBulk(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	var req struct {
		IDs []int64 `json:"ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.IDs) == 0 {
		h.respondError(w, http.StatusBadRequest, "Invalid request body - no ids provided")
		return
	}
	deleted, err := h.service.DeleteTransactions(userID, req.IDs)
	if err != nil {
		log.Printf("bulk delete failed: %v", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to delete transactions")
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data": map[string]interface{}{
			"deleted_count": len(deleted),
			"deleted_ids":   deleted,
		},
	})
}

func (h *TransactionHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	names, err := h.service.GetCategories(userID)
	if err != nil {
		log.Printf("list categories failed: %v", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to retrieve categories")
		return
	}
	categories := make([]domain.CategoryInfo, len(names))
	for i, name := range names {
		categories[i] = domain.LookupCategory(name)
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data":   categories,
	})
}

func (h *TransactionHandler) GetCategoryTotals(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	startDate, endDate, err := dateRangeParams(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	totals, err := h.service.GetCategoryTotals(userID, startDate, endDate)
	if err != nil {
		log.Printf("category totals failed: %v", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to retrieve category totals")
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data":   totals,
	})
}

func positiveIntParam(r *http.Request, name string, defaultValue int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return 0, financeErrors.NewValidationError("Invalid "+name+" value", name)
	}
	return value, nil
}

// dateRangeParams reads startDate/endDate, defaulting to the start of the
// current year through today.
func dateRangeParams(r *http.Request) (time.Time, time.Time, error) {
	now := time.Now().UTC()
	startDate := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	endDate := now

	if raw := r.URL.Query().Get("startDate"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			return time.Time{}, time.Time{}, financeErrors.NewValidationError("Invalid start date format", "startDate")
		}
		startDate = parsed
	}
	if raw := r.URL.Query().Get("endDate"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			return time.Time{}, time.Time{}, financeErrors.NewValidationError("Invalid end date format", "endDate")
		}
		endDate = parsed
	}
	return startDate, endDate, nil
}
