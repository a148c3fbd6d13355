package domain

import (
	"sort"
	"time"

	financeErrors "github.com/pklimczu/FinTrack/internal/finance/errors"
	"github.com/shopspring/decimal"
)

// BudgetGoal holds the user-configured monthly targets compared against
// aggregates at read time. A zero target means "not set" and evaluates to 0%
// progress rather than an error.
type BudgetGoal struct {
	UserID          string                     `json:"-"`
	MonthlyIncome   decimal.Decimal            `json:"monthly_income"`
	MonthlyExpenses decimal.Decimal            `json:"monthly_expenses"`
	SavingsTarget   decimal.Decimal            `json:"savings_target"`
	CategoryLimits  map[string]decimal.Decimal `json:"category_limits"`
	UpdatedAt       time.Time                  `json:"updated_at"`
}

func (g *BudgetGoal) Validate() error {
	return validateNonNegative(map[string]decimal.Decimal{
		"monthly_income":   g.MonthlyIncome,
		"monthly_expenses": g.MonthlyExpenses,
		"savings_target":   g.SavingsTarget,
	}, g.CategoryLimits)
}

func validateNonNegative(targets map[string]decimal.Decimal, limits map[string]decimal.Decimal) error {
	var fields []string
	for field, value := range targets {
		if value.IsNegative() {
			fields = append(fields, field)
		}
	}
	for category, limit := range limits {
		if limit.IsNegative() {
			fields = append(fields, "category_limits."+category)
		}
	}
	if len(fields) > 0 {
		sort.Strings(fields)
		return financeErrors.NewValidationError("Budget targets must not be negative", fields...)
	}
	return nil
}

type BudgetGoalRepository interface {
	// Get returns the stored goal, or an all-zero goal if none exists yet.
	Get(userID string) (*BudgetGoal, error)
	Save(goal *BudgetGoal) error
}
