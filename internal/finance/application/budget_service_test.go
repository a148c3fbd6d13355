package application

import (
	"testing"
	"time"

	"github.com/pklimczu/FinTrack/internal/finance/domain"
	"github.com/pklimczu/FinTrack/internal/finance/infrastructure"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func monthlyAggregate(income, expenses string, categoryTotals map[string]string) MonthlyAggregate {
	totals := map[string]decimal.Decimal{}
	for category, amount := range categoryTotals {
		totals[category] = dec(amount)
	}
	return MonthlyAggregate{
		MonthlyIncome:   dec(income),
		MonthlyExpenses: dec(expenses),
		MonthlySavings:  dec(income).Sub(dec(expenses)),
		CategoryTotals:  totals,
	}
}

func goalWith(income, expenses, savings string) domain.BudgetGoal {
	return domain.BudgetGoal{
		MonthlyIncome:   dec(income),
		MonthlyExpenses: dec(expenses),
		SavingsTarget:   dec(savings),
	}
}

func TestEvaluateBudget_ExpensePaceAheadOfTimeIsWarning(t *testing.T) {
	aggregate := monthlyAggregate("0", "8000", nil)
	goal := goalWith("0", "10000", "0")

	status := EvaluateBudget(aggregate, goal, 20, 30, DefaultEvaluationPolicy())

	assert.True(t, status.Expenses.Progress.Equal(dec("80")))
	assert.True(t, status.TimeProgress.Round(1).Equal(dec("66.7")))
	assert.Equal(t, StatusWarning, status.Expenses.Status)
}

func TestEvaluateBudget_ExpenseClassification(t *testing.T) {
	goal := goalWith("0", "10000", "0")

	tests := []struct {
		name     string
		expenses string
		want     GoalStatus
	}{
		{"under time pace", "5000", StatusGood},
		{"exactly at time pace", "6000", StatusGood},
		{"ahead of pace but under limit", "9999", StatusWarning},
		{"at the limit", "10000", StatusWarning},
		{"over the limit", "10000.01", StatusDanger},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			aggregate := monthlyAggregate("0", tc.expenses, nil)
			status := EvaluateBudget(aggregate, goal, 18, 30, DefaultEvaluationPolicy())
			assert.Equal(t, tc.want, status.Expenses.Status)
		})
	}
}

// Increasing spend against a fixed goal must never improve the status.
func TestEvaluateBudget_ExpenseStatusMonotonic(t *testing.T) {
	goal := goalWith("0", "10000", "0")
	rank := map[GoalStatus]int{StatusGood: 0, StatusWarning: 1, StatusDanger: 2}

	previousRank := 0
	for spent := 0; spent <= 15000; spent += 250 {
		aggregate := monthlyAggregate("0", decimal.NewFromInt(int64(spent)).String(), nil)
		status := EvaluateBudget(aggregate, goal, 20, 30, DefaultEvaluationPolicy())
		currentRank := rank[status.Expenses.Status]
		assert.GreaterOrEqual(t, currentRank, previousRank,
			"status improved from rank %d to %d at spend %d", previousRank, currentRank, spent)
		previousRank = currentRank
	}
}

func TestEvaluateBudget_IncomeAndSavingsClassification(t *testing.T) {
	// day 15 of 30: timeProgress = 50; good >= 40, warning >= 25
	tests := []struct {
		name   string
		income string
		want   GoalStatus
	}{
		{"on pace", "5000", StatusGood},
		{"at good threshold", "4000", StatusGood},
		{"between thresholds", "3000", StatusWarning},
		{"at warning threshold", "2500", StatusWarning},
		{"far behind", "2499", StatusDanger},
	}
	goal := goalWith("10000", "0", "10000")
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			aggregate := monthlyAggregate(tc.income, "0", nil)
			status := EvaluateBudget(aggregate, goal, 15, 30, DefaultEvaluationPolicy())
			assert.Equal(t, tc.want, status.Income.Status)
			assert.Equal(t, tc.want, status.Savings.Status)
		})
	}
}

func TestEvaluateBudget_UnsetGoalsEvaluateToZeroProgress(t *testing.T) {
	aggregate := monthlyAggregate("5000", "3000", nil)
	status := EvaluateBudget(aggregate, domain.BudgetGoal{}, 15, 30, DefaultEvaluationPolicy())

	assert.True(t, status.Income.Progress.IsZero())
	assert.True(t, status.Expenses.Progress.IsZero())
	assert.True(t, status.Savings.Progress.IsZero())
	// zero expense progress is never worse than time progress
	assert.Equal(t, StatusGood, status.Expenses.Status)
}

func TestEvaluateBudget_CategoryLimits(t *testing.T) {
	aggregate := monthlyAggregate("0", "950", map[string]string{
		"Food":      "750",
		"Transport": "200",
	})
	goal := domain.BudgetGoal{
		MonthlyExpenses: dec("2000"),
		CategoryLimits: map[string]decimal.Decimal{
			"Food":          dec("500"),
			"Transport":     dec("600"),
			"Entertainment": dec("100"),
		},
	}

	status := EvaluateBudget(aggregate, goal, 10, 30, DefaultEvaluationPolicy())
	require.Len(t, status.Categories, 3)

	byName := map[string]CategoryBudgetStatus{}
	for _, category := range status.Categories {
		byName[category.Category] = category
	}

	food := byName["Food"]
	assert.True(t, food.OverBudget)
	assert.True(t, food.Remaining.IsZero())
	assert.True(t, food.Progress.Equal(dec("100")))
	assert.True(t, food.ProjectedSpent.Equal(dec("2250")))
	assert.False(t, food.OnTrack)

	transport := byName["Transport"]
	assert.False(t, transport.OverBudget)
	assert.True(t, transport.Remaining.Equal(dec("400")))
	assert.True(t, transport.ProjectedSpent.Equal(dec("600")))
	assert.True(t, transport.OnTrack)

	entertainment := byName["Entertainment"]
	assert.True(t, entertainment.Spent.IsZero())
	assert.True(t, entertainment.Remaining.Equal(dec("100")))
	assert.True(t, entertainment.Progress.IsZero())
	assert.True(t, entertainment.OnTrack)
}

func TestEvaluateBudget_CategoryZeroElapsedDays(t *testing.T) {
	aggregate := monthlyAggregate("0", "100", map[string]string{"Food": "100"})
	goal := domain.BudgetGoal{
		CategoryLimits: map[string]decimal.Decimal{"Food": dec("500")},
	}

	status := EvaluateBudget(aggregate, goal, 0, 30, DefaultEvaluationPolicy())
	require.Len(t, status.Categories, 1)
	assert.True(t, status.Categories[0].ProjectedSpent.IsZero())
	assert.True(t, status.Categories[0].OnTrack)
}

func TestBudgetService_Status(t *testing.T) {
	transactionRepo := &infrastructure.MockTransactionRepository{}
	seedTransaction(transactionRepo, "user-1", domain.TypeIncome, "4000", date(2024, time.March, 1), "")
	seedTransaction(transactionRepo, "user-1", domain.TypeExpense, "1500", date(2024, time.March, 10), "Food")

	goalRepo := &infrastructure.MockBudgetGoalRepository{}
	goal := goalWith("8000", "3000", "4000")
	goal.UserID = "user-1"
	require.NoError(t, goalRepo.Save(&goal))

	service := NewBudgetService(goalRepo, NewAggregationService(transactionRepo))

	status, err := service.Status("user-1", date(2024, time.March, 15))
	require.NoError(t, err)

	assert.True(t, status.Income.Progress.Equal(dec("50")))
	assert.True(t, status.Expenses.Progress.Equal(dec("50")))
	// 15 of 31 days elapsed, ~48.4% time progress; spending at 50% is warning
	assert.Equal(t, StatusWarning, status.Expenses.Status)
	assert.Equal(t, StatusGood, status.Income.Status)
}

func TestBudgetService_SaveGoalRejectsNegativeTargets(t *testing.T) {
	service := NewBudgetService(&infrastructure.MockBudgetGoalRepository{}, NewAggregationService(&infrastructure.MockTransactionRepository{}))

	goal := domain.BudgetGoal{
		UserID:        "user-1",
		MonthlyIncome: dec("-1"),
	}
	err := service.SaveGoal(&goal)
	require.Error(t, err)
}
