package infrastructure

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pklimczu/FinTrack/internal/finance/domain"
	"github.com/shopspring/decimal"
)

type PostgresBudgetGoalRepository struct {
	db *sql.DB
}

func NewPostgresBudgetGoalRepository(db *sql.DB) *PostgresBudgetGoalRepository {
	return &PostgresBudgetGoalRepository{db: db}
}

// Get returns the stored goal, or an all-zero goal when the user has never
// configured one. Category limits are stored as a JSONB map.
func (r *PostgresBudgetGoalRepository) Get(userID string) (*domain.BudgetGoal, error) {
	goal := domain.BudgetGoal{
		UserID:          userID,
		MonthlyIncome:   decimal.Zero,
		MonthlyExpenses: decimal.Zero,
		SavingsTarget:   decimal.Zero,
		CategoryLimits:  map[string]decimal.Decimal{},
	}
	var limitsJSON []byte
	err := r.db.QueryRow(`
		SELECT monthly_income, monthly_expenses, savings_target, category_limits, updated_at
		FROM budget_goals WHERE user_id = $1`,
		userID,
	).Scan(&goal.MonthlyIncome, &goal.MonthlyExpenses, &goal.SavingsTarget, &limitsJSON, &goal.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &goal, nil
		}
		return nil, err
	}
	if len(limitsJSON) > 0 {
		if err := json.Unmarshal(limitsJSON, &goal.CategoryLimits); err != nil {
			return nil, fmt.Errorf("decode category limits: %w", err)
		}
	}
	return &goal, nil
}

func (r *PostgresBudgetGoalRepository) Save(goal *domain.BudgetGoal) error {
	limitsJSON, err := json.Marshal(goal.CategoryLimits)
	if err != nil {
		return fmt.Errorf("encode category limits: %w", err)
	}
	return r.db.QueryRow(`
		INSERT INTO budget_goals (user_id, monthly_income, monthly_expenses, savings_target, category_limits)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE SET
			monthly_income = EXCLUDED.monthly_income,
			monthly_expenses = EXCLUDED.monthly_expenses,
			savings_target = EXCLUDED.savings_target,
			category_limits = EXCLUDED.category_limits,
			updated_at = NOW()
		RETURNING updated_at`,
		goal.UserID, goal.MonthlyIncome, goal.MonthlyExpenses, goal.SavingsTarget, limitsJSON,
	).Scan(&goal.UpdatedAt)
}
