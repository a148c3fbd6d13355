package domain

import (
	"database/sql"
	"strings"
	"time"

	financeErrors "github.com/pklimczu/FinTrack/internal/finance/errors"
	"github.com/shopspring/decimal"
)

const (
	TypeIncome  = "income"
	TypeExpense = "expense"
)

func IsValidTransactionType(transactionType string) bool {
	return transactionType == TypeIncome || transactionType == TypeExpense
}

// Transaction is a single income or expense record. Expenses carry a
// description and optionally a category; income carries a source.
type Transaction struct {
	ID          int64           `json:"id"`
	UserID      string          `json:"-"`
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description,omitempty"`
	Source      string          `json:"source,omitempty"`
	Category    string          `json:"category,omitempty"`
	Notes       string          `json:"notes,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (t *Transaction) Validate() error {
	var fields []string
	if !IsValidTransactionType(t.Type) {
		fields = append(fields, "type")
	}
	if !t.Amount.IsPositive() {
		fields = append(fields, "amount")
	}
	if t.Date.IsZero() {
		fields = append(fields, "date")
	}
	if t.Type == TypeExpense && strings.TrimSpace(t.Description) == "" {
		fields = append(fields, "description")
	}
	if t.Type == TypeIncome && strings.TrimSpace(t.Source) == "" {
		fields = append(fields, "source")
	}
	if len(fields) > 0 {
		return financeErrors.NewValidationError("Invalid transaction: "+strings.Join(fields, ", "), fields...)
	}
	return nil
}

// RoundToTwoDecimalPlaces normalizes the amount to currency precision before
// validation and persistence.
func (t *Transaction) RoundToTwoDecimalPlaces() {
	t.Amount = t.Amount.Round(2)
}

// TransactionUpdate carries a partial update; nil fields keep prior values.
type TransactionUpdate struct {
	Amount      *decimal.Decimal `json:"amount"`
	Date        *time.Time       `json:"date"`
	Description *string          `json:"description"`
	Source      *string          `json:"source"`
	Category    *string          `json:"category"`
	Notes       *string          `json:"notes"`
}

// Apply writes the supplied fields onto the transaction; nil fields leave the
// prior values untouched.
func (u *TransactionUpdate) Apply(t *Transaction) {
	if u.Amount != nil {
		t.Amount = *u.Amount
	}
	if u.Date != nil {
		t.Date = *u.Date
	}
	if u.Description != nil {
		t.Description = *u.Description
	}
	if u.Source != nil {
		t.Source = *u.Source
	}
	if u.Category != nil {
		t.Category = *u.Category
	}
	if u.Notes != nil {
		t.Notes = *u.Notes
	}
}

func (u *TransactionUpdate) Empty() bool {
	return u.Amount == nil && u.Date == nil && u.Description == nil &&
		u.Source == nil && u.Category == nil && u.Notes == nil
}

// TransactionFilter narrows List results. Zero values mean "no filter".
// Search is a free-text substring match and must always be bound as a query
// parameter, never concatenated into SQL.
type TransactionFilter struct {
	Type      string
	Category  string
	StartDate *time.Time
	EndDate   *time.Time
	Search    string
}

type TransactionRepository interface {
	Save(transaction *Transaction) error
	SaveWithTransaction(transaction *Transaction, tx *sql.Tx) error
	BeginTransaction() (*sql.Tx, error)
	FindByID(userID string, transactionID int64) (*Transaction, error)
	FindByUser(userID string) ([]Transaction, error)
	Update(userID string, transactionID int64, update TransactionUpdate) (*Transaction, error)
	Delete(userID string, transactionID int64) error
	DeleteMany(userID string, transactionIDs []int64) ([]int64, error)
	List(userID string, filter TransactionFilter, limit, page int) ([]Transaction, int, error)
	FindByDate(userID string, date time.Time) ([]Transaction, error)
	FindInDateRange(userID string, startDate, endDate time.Time) ([]Transaction, error)
	CategoriesInUse(userID string) ([]string, error)
	CategoryTotals(userID string, startDate, endDate time.Time) (map[string]decimal.Decimal, error)
}
