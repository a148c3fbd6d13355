package interfaces

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/pklimczu/FinTrack/internal/finance/application"
	"github.com/pklimczu/FinTrack/internal/finance/domain"
	financeErrors "github.com/pklimczu/FinTrack/internal/finance/errors"
)

type BudgetServiceInterface interface {
	GetGoal(userID string) (*domain.BudgetGoal, error)
	SaveGoal(goal *domain.BudgetGoal) error
	Status(userID string, asOf time.Time) (application.BudgetStatus, error)
}

type BudgetHandler struct {
	service      BudgetServiceInterface
	respondJSON  func(w http.ResponseWriter, status int, payload interface{})
	respondError func(w http.ResponseWriter, status int, message string, errors ...[]string)
	now          func() time.Time
}

func NewBudgetHandler(
	service BudgetServiceInterface,
	respondJSON func(w http.ResponseWriter, status int, payload interface{}),
	respondError func(w http.ResponseWriter, status int, message string, errors ...[]string),
) *BudgetHandler {
	if service == nil {
		log.Fatal("Service must not be nil")
		return nil
	}
	return &BudgetHandler{
		service:      service,
		respondJSON:  respondJSON,
		respondError: respondError,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (h *BudgetHandler) GetGoal(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	goal, err := h.service.GetGoal(userID)
	if err != nil {
		log.Printf("get budget goal failed: %v", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to retrieve budget goal")
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data":   goal,
	})
}

func (h *BudgetHandler) SaveGoal(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	var goal domain.BudgetGoal
	if err := json.NewDecoder(r.Body).Decode(&goal); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	goal.UserID = userID
	if err := h.service.SaveGoal(&goal); err != nil {
		if financeErrors.IsValidationError(err) {
			h.respondError(w, http.StatusBadRequest, err.Error(), financeErrors.ValidationFields(err))
			return
		}
		log.Printf("save budget goal failed: %v", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to save budget goal")
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Budget goal saved.",
		"data":    goal,
	})
}

// GetStatus evaluates the goal against the month containing the requested
// date (default today).
func (h *BudgetHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	asOf := h.now()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, "Invalid date format, expected YYYY-MM-DD")
			return
		}
		asOf = parsed
	}
	status, err := h.service.Status(userID, asOf)
	if err != nil {
		log.Printf("budget status failed: %v", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to evaluate budget")
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data":   status,
	})
}
