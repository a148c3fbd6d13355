package application

import (
	"sort"
	"time"

	"github.com/pklimczu/FinTrack/internal/finance/domain"
	"github.com/shopspring/decimal"
)

type GoalStatus string

const (
	StatusGood    GoalStatus = "good"
	StatusWarning GoalStatus = "warning"
	StatusDanger  GoalStatus = "danger"
)

// EvaluationPolicy holds the classification thresholds for income and savings
// goals, expressed as fractions of elapsed time. The defaults mirror common
// budgeting heuristics; they are policy, not business rules, so callers may
// tune them.
type EvaluationPolicy struct {
	GoodRatio    decimal.Decimal
	WarningRatio decimal.Decimal
}

func DefaultEvaluationPolicy() EvaluationPolicy {
	return EvaluationPolicy{
		GoodRatio:    decimal.NewFromFloat(0.8),
		WarningRatio: decimal.NewFromFloat(0.5),
	}
}

type GoalProgress struct {
	Progress decimal.Decimal `json:"progress"`
	Status   GoalStatus      `json:"status"`
}

// CategoryBudgetStatus reports one configured per-category limit against
// actual spend.
type CategoryBudgetStatus struct {
	Category       string          `json:"category"`
	Limit          decimal.Decimal `json:"limit"`
	Spent          decimal.Decimal `json:"spent"`
	Remaining      decimal.Decimal `json:"remaining"`
	Progress       decimal.Decimal `json:"progress"`
	OverBudget     bool            `json:"over_budget"`
	ProjectedSpent decimal.Decimal `json:"projected_spent"`
	OnTrack        bool            `json:"on_track"`
}

type BudgetStatus struct {
	TimeProgress decimal.Decimal        `json:"time_progress"`
	Income       GoalProgress           `json:"income"`
	Expenses     GoalProgress           `json:"expenses"`
	Savings      GoalProgress           `json:"savings"`
	Categories   []CategoryBudgetStatus `json:"categories"`
}

// EvaluateBudget classifies monthly actuals against the configured goal. It is
// a pure function of its inputs: no I/O, no clock reads.
//
// Expenses are good while the spend pace stays at or under the fraction of the
// month elapsed, warning while still under the limit, danger once over it.
// Income and savings compare progress against timeProgress scaled by the
// policy ratios.
func EvaluateBudget(aggregate MonthlyAggregate, goal domain.BudgetGoal, currentDay, daysInMonth int, policy EvaluationPolicy) BudgetStatus {
	timeProgress := decimal.Zero
	if daysInMonth > 0 {
		timeProgress = percentageOf(decimal.NewFromInt(int64(currentDay)), decimal.NewFromInt(int64(daysInMonth)))
	}

	expenseProgress := percentageOf(aggregate.MonthlyExpenses, goal.MonthlyExpenses)
	status := BudgetStatus{
		TimeProgress: timeProgress,
		Income: classifyTargetProgress(
			percentageOf(aggregate.MonthlyIncome, goal.MonthlyIncome), timeProgress, policy),
		Expenses: GoalProgress{
			Progress: expenseProgress,
			Status:   classifyExpenseProgress(expenseProgress, timeProgress),
		},
		Savings: classifyTargetProgress(
			percentageOf(aggregate.MonthlySavings, goal.SavingsTarget), timeProgress, policy),
	}

	categories := make([]string, 0, len(goal.CategoryLimits))
	for category := range goal.CategoryLimits {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	for _, category := range categories {
		limit := goal.CategoryLimits[category]
		spent := aggregate.CategoryTotals[category]
		status.Categories = append(status.Categories,
			evaluateCategory(category, limit, spent, currentDay, daysInMonth))
	}
	return status
}

func classifyExpenseProgress(expenseProgress, timeProgress decimal.Decimal) GoalStatus {
	switch {
	case expenseProgress.LessThanOrEqual(timeProgress):
		return StatusGood
	case expenseProgress.LessThanOrEqual(hundred):
		return StatusWarning
	default:
		return StatusDanger
	}
}

func classifyTargetProgress(progress, timeProgress decimal.Decimal, policy EvaluationPolicy) GoalProgress {
	result := GoalProgress{Progress: progress}
	switch {
	case progress.GreaterThanOrEqual(timeProgress.Mul(policy.GoodRatio)):
		result.Status = StatusGood
	case progress.GreaterThanOrEqual(timeProgress.Mul(policy.WarningRatio)):
		result.Status = StatusWarning
	default:
		result.Status = StatusDanger
	}
	return result
}

func evaluateCategory(category string, limit, spent decimal.Decimal, currentDay, daysInMonth int) CategoryBudgetStatus {
	remaining := limit.Sub(spent)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}
	progress := percentageOf(spent, limit)
	if progress.GreaterThan(hundred) {
		progress = hundred
	}
	projected := decimal.Zero
	if currentDay > 0 {
		projected = spent.Div(decimal.NewFromInt(int64(currentDay))).Mul(decimal.NewFromInt(int64(daysInMonth)))
	}
	return CategoryBudgetStatus{
		Category:       category,
		Limit:          limit,
		Spent:          spent,
		Remaining:      remaining,
		Progress:       progress,
		OverBudget:     spent.GreaterThan(limit),
		ProjectedSpent: projected,
		OnTrack:        projected.LessThanOrEqual(limit),
	}
}

// BudgetService persists goals and produces the evaluated status for a month.
type BudgetService struct {
	goals       domain.BudgetGoalRepository
	aggregation *AggregationService
	policy      EvaluationPolicy
}

func NewBudgetService(goals domain.BudgetGoalRepository, aggregation *AggregationService) *BudgetService {
	return &BudgetService{
		goals:       goals,
		aggregation: aggregation,
		policy:      DefaultEvaluationPolicy(),
	}
}

func (s *BudgetService) GetGoal(userID string) (*domain.BudgetGoal, error) {
	return s.goals.Get(userID)
}

func (s *BudgetService) SaveGoal(goal *domain.BudgetGoal) error {
	if err := goal.Validate(); err != nil {
		return err
	}
	if goal.CategoryLimits == nil {
		goal.CategoryLimits = map[string]decimal.Decimal{}
	}
	return s.goals.Save(goal)
}

// Status evaluates the user's goal against the month containing asOf, with
// asOf's day-of-month as the elapsed-time reference.
func (s *BudgetService) Status(userID string, asOf time.Time) (BudgetStatus, error) {
	goal, err := s.goals.Get(userID)
	if err != nil {
		return BudgetStatus{}, err
	}
	currentDay := asOf.Day()
	aggregate, err := s.aggregation.AggregateMonth(userID, asOf.Year(), asOf.Month(), currentDay)
	if err != nil {
		return BudgetStatus{}, err
	}
	return EvaluateBudget(aggregate, *goal, currentDay, aggregate.DaysInMonth, s.policy), nil
}
