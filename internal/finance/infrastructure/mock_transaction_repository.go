package infrastructure

import (
	"database/sql"
	"sort"
	"strings"
	"time"

	"github.com/pklimczu/FinTrack/internal/finance/domain"
	financeErrors "github.com/pklimczu/FinTrack/internal/finance/errors"
	"github.com/shopspring/decimal"
)

// MockTransactionRepository is an in-memory TransactionRepository for unit
// tests. It mirrors the query semantics of the Postgres implementation,
// including owner scoping and ordering.
type MockTransactionRepository struct {
	Transactions []domain.Transaction
	nextID       int64
	clock        time.Time
}

func (m *MockTransactionRepository) Save(transaction *domain.Transaction) error {
	m.nextID++
	m.clock = m.clock.Add(time.Second)
	transaction.ID = m.nextID
	transaction.CreatedAt = m.clock
	transaction.UpdatedAt = m.clock
	m.Transactions = append(m.Transactions, *transaction)
	return nil
}

func (m *MockTransactionRepository) SaveWithTransaction(transaction *domain.Transaction, _ *sql.Tx) error {
	return m.Save(transaction)
}

func (m *MockTransactionRepository) BeginTransaction() (*sql.Tx, error) {
	return nil, nil
}

func (m *MockTransactionRepository) FindByID(userID string, transactionID int64) (*domain.Transaction, error) {
	for i := range m.Transactions {
		if m.Transactions[i].UserID == userID && m.Transactions[i].ID == transactionID {
			transaction := m.Transactions[i]
			return &transaction, nil
		}
	}
	return nil, financeErrors.ErrTransactionNotFound
}

func (m *MockTransactionRepository) FindByUser(userID string) ([]domain.Transaction, error) {
	var matched []domain.Transaction
	for _, transaction := range m.Transactions {
		if transaction.UserID == userID {
			matched = append(matched, transaction)
		}
	}
	sortByDateDesc(matched)
	return matched, nil
}

func (m *MockTransactionRepository) Update(userID string, transactionID int64, update domain.TransactionUpdate) (*domain.Transaction, error) {
	for i := range m.Transactions {
		if m.Transactions[i].UserID != userID || m.Transactions[i].ID != transactionID {
			continue
		}
		transaction := &m.Transactions[i]
		update.Apply(transaction)
		m.clock = m.clock.Add(time.Second)
		transaction.UpdatedAt = m.clock
		updated := *transaction
		return &updated, nil
	}
	return nil, financeErrors.ErrTransactionNotFound
}

func (m *MockTransactionRepository) Delete(userID string, transactionID int64) error {
	for i := range m.Transactions {
		if m.Transactions[i].UserID == userID && m.Transactions[i].ID == transactionID {
			m.Transactions = append(m.Transactions[:i], m.Transactions[i+1:]...)
			return nil
		}
	}
	return financeErrors.ErrTransactionNotFound
}

func (m *MockTransactionRepository) DeleteMany(userID string, transactionIDs []int64) ([]int64, error) {
	requested := make(map[int64]bool, len(transactionIDs))
	for _, id := range transactionIDs {
		requested[id] = true
	}
	var deleted []int64
	var kept []domain.Transaction
	for _, transaction := range m.Transactions {
		if transaction.UserID == userID && requested[transaction.ID] {
			deleted = append(deleted, transaction.ID)
			continue
		}
		kept = append(kept, transaction)
	}
	m.Transactions = kept
	return deleted, nil
}

func (m *MockTransactionRepository) List(userID string, filter domain.TransactionFilter, limit, page int) ([]domain.Transaction, int, error) {
	var matched []domain.Transaction
	for _, transaction := range m.Transactions {
		if transaction.UserID != userID {
			continue
		}
		if filter.Type != "" && transaction.Type != filter.Type {
			continue
		}
		if filter.Category != "" && transaction.Category != filter.Category {
			continue
		}
		if filter.StartDate != nil && transaction.Date.Before(*filter.StartDate) {
			continue
		}
		if filter.EndDate != nil && transaction.Date.After(*filter.EndDate) {
			continue
		}
		if filter.Search != "" {
			needle := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(transaction.Description), needle) &&
				!strings.Contains(strings.ToLower(transaction.Source), needle) &&
				!strings.Contains(strings.ToLower(transaction.Notes), needle) {
				continue
			}
		}
		matched = append(matched, transaction)
	}
	sortByDateDesc(matched)

	totalCount := len(matched)
	start := (page - 1) * limit
	if start >= totalCount {
		return nil, totalCount, nil
	}
	end := start + limit
	if end > totalCount {
		end = totalCount
	}
	return matched[start:end], totalCount, nil
}

func (m *MockTransactionRepository) FindByDate(userID string, date time.Time) ([]domain.Transaction, error) {
	var matched []domain.Transaction
	for _, transaction := range m.Transactions {
		if transaction.UserID == userID && sameDay(transaction.Date, date) {
			matched = append(matched, transaction)
		}
	}
	return matched, nil
}

func (m *MockTransactionRepository) FindInDateRange(userID string, startDate, endDate time.Time) ([]domain.Transaction, error) {
	var matched []domain.Transaction
	for _, transaction := range m.Transactions {
		if transaction.UserID != userID {
			continue
		}
		day := dayOf(transaction.Date)
		if day.Before(dayOf(startDate)) || day.After(dayOf(endDate)) {
			continue
		}
		matched = append(matched, transaction)
	}
	sortByDateDesc(matched)
	return matched, nil
}

func (m *MockTransactionRepository) CategoriesInUse(userID string) ([]string, error) {
	seen := map[string]bool{}
	var categories []string
	for _, transaction := range m.Transactions {
		if transaction.UserID != userID || transaction.Category == "" || seen[transaction.Category] {
			continue
		}
		seen[transaction.Category] = true
		categories = append(categories, transaction.Category)
	}
	sort.Strings(categories)
	return categories, nil
}

func (m *MockTransactionRepository) CategoryTotals(userID string, startDate, endDate time.Time) (map[string]decimal.Decimal, error) {
	totals := map[string]decimal.Decimal{}
	for _, transaction := range m.Transactions {
		if transaction.UserID != userID || transaction.Type != domain.TypeExpense || transaction.Category == "" {
			continue
		}
		day := dayOf(transaction.Date)
		if day.Before(dayOf(startDate)) || day.After(dayOf(endDate)) {
			continue
		}
		totals[transaction.Category] = totals[transaction.Category].Add(transaction.Amount)
	}
	return totals, nil
}

func sortByDateDesc(transactions []domain.Transaction) {
	sort.SliceStable(transactions, func(i, j int) bool {
		if !transactions[i].Date.Equal(transactions[j].Date) {
			return transactions[i].Date.After(transactions[j].Date)
		}
		return transactions[i].CreatedAt.After(transactions[j].CreatedAt)
	})
}

func sameDay(a, b time.Time) bool {
	return dayOf(a).Equal(dayOf(b))
}

func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
