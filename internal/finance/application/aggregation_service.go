package application

import (
	"time"

	"github.com/pklimczu/FinTrack/internal/finance/domain"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// percentageOf returns value/total*100, with a zero total defined as 0%.
func percentageOf(value, total decimal.Decimal) decimal.Decimal {
	if total.IsZero() {
		return decimal.Zero
	}
	return value.Div(total).Mul(hundred)
}

// DailyAggregate summarizes one user's transactions on one calendar date.
// It is derived on every request and never persisted.
type DailyAggregate struct {
	Date             time.Time                  `json:"date"`
	TotalIncome      decimal.Decimal            `json:"total_income"`
	TotalExpenses    decimal.Decimal            `json:"total_expenses"`
	Balance          decimal.Decimal            `json:"balance"`
	TransactionCount int                        `json:"transaction_count"`
	CategoryTotals   map[string]decimal.Decimal `json:"category_totals"`
}

// MonthlyAggregate summarizes a whole (year, month) and carries end-of-month
// projections based on the pace so far.
type MonthlyAggregate struct {
	Year              int                        `json:"year"`
	Month             time.Month                 `json:"month"`
	DaysInMonth       int                        `json:"days_in_month"`
	MonthlyIncome     decimal.Decimal            `json:"monthly_income"`
	MonthlyExpenses   decimal.Decimal            `json:"monthly_expenses"`
	MonthlySavings    decimal.Decimal            `json:"monthly_savings"`
	ActiveDays        int                        `json:"active_days"`
	TransactionCount  int                        `json:"transaction_count"`
	CategoryTotals    map[string]decimal.Decimal `json:"category_totals"`
	ProjectedIncome   decimal.Decimal            `json:"projected_income"`
	ProjectedExpenses decimal.Decimal            `json:"projected_expenses"`
}

// TrendPoint is one entry of a dense daily series.
type TrendPoint struct {
	Date     string          `json:"date"`
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
	Balance  decimal.Decimal `json:"balance"`
}

type AggregationService struct {
	repo domain.TransactionRepository
}

func NewAggregationService(repo domain.TransactionRepository) *AggregationService {
	return &AggregationService{repo: repo}
}

func newDailyAggregate(date time.Time) DailyAggregate {
	return DailyAggregate{
		Date:           date,
		TotalIncome:    decimal.Zero,
		TotalExpenses:  decimal.Zero,
		Balance:        decimal.Zero,
		CategoryTotals: map[string]decimal.Decimal{},
	}
}

func (agg *DailyAggregate) add(transaction domain.Transaction) {
	switch transaction.Type {
	case domain.TypeIncome:
		agg.TotalIncome = agg.TotalIncome.Add(transaction.Amount)
	case domain.TypeExpense:
		agg.TotalExpenses = agg.TotalExpenses.Add(transaction.Amount)
		if transaction.Category != "" {
			agg.CategoryTotals[transaction.Category] = agg.CategoryTotals[transaction.Category].Add(transaction.Amount)
		}
	}
	agg.Balance = agg.TotalIncome.Sub(agg.TotalExpenses)
	agg.TransactionCount++
}

// AggregateDay sums all transactions of one user on one calendar date. A user
// with no transactions that day yields an all-zero aggregate, not an error.
func (s *AggregationService) AggregateDay(userID string, date time.Time) (DailyAggregate, error) {
	transactions, err := s.repo.FindByDate(userID, date)
	if err != nil {
		return DailyAggregate{}, err
	}
	aggregate := newDailyAggregate(date)
	for _, transaction := range transactions {
		aggregate.add(transaction)
	}
	return aggregate, nil
}

// DaysInMonth returns the number of calendar days in (year, month), leap years
// included.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// AggregateMonth sums every day of (year, month) into one aggregate.
// currentDay is the 1-indexed day-of-month the caller is viewing; projections
// extrapolate the pace through currentDay to the full month, and a currentDay
// of 0 yields zero projections instead of dividing by zero.
func (s *AggregationService) AggregateMonth(userID string, year int, month time.Month, currentDay int) (MonthlyAggregate, error) {
	daysInMonth := DaysInMonth(year, month)
	daily, err := s.monthByDay(userID, year, month)
	if err != nil {
		return MonthlyAggregate{}, err
	}

	aggregate := MonthlyAggregate{
		Year:              year,
		Month:             month,
		DaysInMonth:       daysInMonth,
		MonthlyIncome:     decimal.Zero,
		MonthlyExpenses:   decimal.Zero,
		MonthlySavings:    decimal.Zero,
		CategoryTotals:    map[string]decimal.Decimal{},
		ProjectedIncome:   decimal.Zero,
		ProjectedExpenses: decimal.Zero,
	}
	for day := 1; day <= daysInMonth; day++ {
		dayAggregate, ok := daily[day]
		if !ok {
			continue
		}
		aggregate.MonthlyIncome = aggregate.MonthlyIncome.Add(dayAggregate.TotalIncome)
		aggregate.MonthlyExpenses = aggregate.MonthlyExpenses.Add(dayAggregate.TotalExpenses)
		aggregate.TransactionCount += dayAggregate.TransactionCount
		if dayAggregate.TransactionCount > 0 {
			aggregate.ActiveDays++
		}
		for category, amount := range dayAggregate.CategoryTotals {
			aggregate.CategoryTotals[category] = aggregate.CategoryTotals[category].Add(amount)
		}
	}
	aggregate.MonthlySavings = aggregate.MonthlyIncome.Sub(aggregate.MonthlyExpenses)

	if currentDay > 0 {
		days := decimal.NewFromInt(int64(daysInMonth))
		elapsed := decimal.NewFromInt(int64(currentDay))
		aggregate.ProjectedIncome = aggregate.MonthlyIncome.Div(elapsed).Mul(days)
		aggregate.ProjectedExpenses = aggregate.MonthlyExpenses.Div(elapsed).Mul(days)
	}
	return aggregate, nil
}

// MonthByDay returns the per-day aggregates of (year, month), keyed by
// 1-indexed day of month. Days without transactions are absent from the map.
func (s *AggregationService) MonthByDay(userID string, year int, month time.Month) (map[int]DailyAggregate, error) {
	return s.monthByDay(userID, year, month)
}

func (s *AggregationService) monthByDay(userID string, year int, month time.Month) (map[int]DailyAggregate, error) {
	startDate := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	endDate := time.Date(year, month, DaysInMonth(year, month), 0, 0, 0, 0, time.UTC)
	transactions, err := s.repo.FindInDateRange(userID, startDate, endDate)
	if err != nil {
		return nil, err
	}

	daily := make(map[int]DailyAggregate)
	for _, transaction := range transactions {
		day := transaction.Date.Day()
		dayAggregate, ok := daily[day]
		if !ok {
			dayAggregate = newDailyAggregate(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
		}
		dayAggregate.add(transaction)
		daily[day] = dayAggregate
	}
	return daily, nil
}

// AggregateTrend produces one point per calendar date from
// endDate-(numDays-1) through endDate inclusive, ascending. The series is
// dense: dates without transactions appear with all-zero values so chart
// rendering never needs to fill gaps.
func (s *AggregationService) AggregateTrend(userID string, endDate time.Time, numDays int) ([]TrendPoint, error) {
	if numDays <= 0 {
		return []TrendPoint{}, nil
	}
	endDate = truncateToDay(endDate)
	startDate := endDate.AddDate(0, 0, -(numDays - 1))
	transactions, err := s.repo.FindInDateRange(userID, startDate, endDate)
	if err != nil {
		return nil, err
	}

	byDate := make(map[string]*TrendPoint, numDays)
	series := make([]TrendPoint, 0, numDays)
	for day := 0; day < numDays; day++ {
		date := startDate.AddDate(0, 0, day).Format("2006-01-02")
		series = append(series, TrendPoint{
			Date:     date,
			Income:   decimal.Zero,
			Expenses: decimal.Zero,
			Balance:  decimal.Zero,
		})
	}
	for i := range series {
		byDate[series[i].Date] = &series[i]
	}

	for _, transaction := range transactions {
		point, ok := byDate[transaction.Date.Format("2006-01-02")]
		if !ok {
			continue
		}
		switch transaction.Type {
		case domain.TypeIncome:
			point.Income = point.Income.Add(transaction.Amount)
		case domain.TypeExpense:
			point.Expenses = point.Expenses.Add(transaction.Amount)
		}
		point.Balance = point.Income.Sub(point.Expenses)
	}
	return series, nil
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
