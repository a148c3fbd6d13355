package infrastructure

import (
	"github.com/pklimczu/FinTrack/internal/finance/domain"
	"github.com/shopspring/decimal"
)

// MockBudgetGoalRepository is an in-memory BudgetGoalRepository for unit
// tests.
type MockBudgetGoalRepository struct {
	Goals map[string]domain.BudgetGoal
}

func (m *MockBudgetGoalRepository) Get(userID string) (*domain.BudgetGoal, error) {
	if goal, ok := m.Goals[userID]; ok {
		copied := goal
		return &copied, nil
	}
	return &domain.BudgetGoal{
		UserID:          userID,
		MonthlyIncome:   decimal.Zero,
		MonthlyExpenses: decimal.Zero,
		SavingsTarget:   decimal.Zero,
		CategoryLimits:  map[string]decimal.Decimal{},
	}, nil
}

func (m *MockBudgetGoalRepository) Save(goal *domain.BudgetGoal) error {
	if m.Goals == nil {
		m.Goals = map[string]domain.BudgetGoal{}
	}
	m.Goals[goal.UserID] = *goal
	return nil
}
