package application

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/pklimczu/FinTrack/internal/finance/domain"
	financeErrors "github.com/pklimczu/FinTrack/internal/finance/errors"
	"github.com/shopspring/decimal"
)

type TransactionService struct {
	repo domain.TransactionRepository
}

func NewTransactionService(repo domain.TransactionRepository) *TransactionService {
	return &TransactionService{repo: repo}
}

// CreateTransaction validates and inserts a single record. Validation runs
// before any mutation is attempted.
func (s *TransactionService) CreateTransaction(transaction *domain.Transaction) error {
	transaction.RoundToTwoDecimalPlaces()
	if err := transaction.Validate(); err != nil {
		return err
	}
	if transaction.Type == domain.TypeIncome {
		transaction.Category = ""
	}
	return s.repo.Save(transaction)
}

// CreateTransactionsBulk inserts many records in one database transaction.
// Every row is validated; any validation failure rolls the whole batch back
// and reports the offending rows by index. This is the strict counterpart of
// best-effort import.
func (s *TransactionService) CreateTransactionsBulk(transactions []*domain.Transaction, userID string) (err error) {
	tx, err := s.repo.BeginTransaction()
	if err != nil {
		return err
	}
	var validationErrors = &financeErrors.ValidationErrors{}
	defer func() {
		if p := recover(); p != nil {
			safeRollback(tx)
			panic(p)
		} else if err != nil {
			safeRollback(tx)
		} else if tx != nil {
			err = tx.Commit()
		}
	}()

	for i, transaction := range transactions {
		transaction.UserID = userID
		transaction.RoundToTwoDecimalPlaces()
		if vErr := transaction.Validate(); vErr != nil {
			validationErrors.Add(financeErrors.NewIndexedValidationError(i+1, vErr.Error()))
			continue
		}
		if transaction.Type == domain.TypeIncome {
			transaction.Category = ""
		}
		if err = s.repo.SaveWithTransaction(transaction, tx); err != nil {
			return fmt.Errorf("database error at transaction %d: %w", i+1, err)
		}
	}

	if len(validationErrors.Errors) > 0 {
		err = validationErrors
		return err
	}
	return nil
}

func safeRollback(tx *sql.Tx) {
	if tx == nil {
		return
	}
	if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
		log.Printf("Error during transaction rollback: %v", err)
	}
}

// UpdateTransaction applies a partial update; unsupplied fields keep their
// prior values and updated_at is refreshed.
func (s *TransactionService) UpdateTransaction(userID string, transactionID int64, update domain.TransactionUpdate) (*domain.Transaction, error) {
	if update.Empty() {
		return nil, financeErrors.NewValidationError("No fields to update")
	}
	if update.Amount != nil {
		rounded := update.Amount.Round(2)
		if !rounded.IsPositive() {
			return nil, financeErrors.NewValidationError("Amount must be greater than zero", "amount")
		}
		update.Amount = &rounded
	}
	existing, err := s.repo.FindByID(userID, transactionID)
	if err != nil {
		return nil, err
	}
	merged := *existing
	update.Apply(&merged)
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return s.repo.Update(userID, transactionID, update)
}

func (s *TransactionService) DeleteTransaction(userID string, transactionID int64) error {
	return s.repo.Delete(userID, transactionID)
}

// DeleteTransactions removes the listed ids and returns those actually
// deleted. Ids that do not belong to the user are silently skipped.
func (s *TransactionService) DeleteTransactions(userID string, transactionIDs []int64) ([]int64, error) {
	if len(transactionIDs) == 0 {
		return []int64{}, nil
	}
	deleted, err := s.repo.DeleteMany(userID, transactionIDs)
	if err != nil {
		return nil, err
	}
	if deleted == nil {
		return []int64{}, nil
	}
	return deleted, nil
}

// GetUserTransactions lists one page ordered by date descending, then
// creation time descending as a stable tie-break.
func (s *TransactionService) GetUserTransactions(userID string, filter domain.TransactionFilter, limit, page int) ([]domain.Transaction, Pagination, error) {
	transactions, totalCount, err := s.repo.List(userID, filter, limit, page)
	if err != nil {
		return nil, Pagination{}, err
	}
	if transactions == nil {
		transactions = []domain.Transaction{}
	}
	return transactions, NewPagination(page, limit, totalCount), nil
}

func (s *TransactionService) GetTransactionsByDate(userID string, date time.Time) ([]domain.Transaction, error) {
	transactions, err := s.repo.FindByDate(userID, date)
	if err != nil {
		return nil, err
	}
	if transactions == nil {
		return []domain.Transaction{}, nil
	}
	return transactions, nil
}

func (s *TransactionService) GetTransactionsInDateRange(userID string, startDate, endDate time.Time) ([]domain.Transaction, error) {
	transactions, err := s.repo.FindInDateRange(userID, startDate, endDate)
	if err != nil {
		return nil, err
	}
	if transactions == nil {
		return []domain.Transaction{}, nil
	}
	return transactions, nil
}

// GetCategories merges the fixed default category list with the categories the
// user already has in use.
func (s *TransactionService) GetCategories(userID string) ([]string, error) {
	inUse, err := s.repo.CategoriesInUse(userID)
	if err != nil {
		return nil, err
	}
	return domain.MergeWithDefaults(inUse), nil
}

// GetCategoryTotals sums expense amounts per category over a date range.
// Uncategorized expenses are excluded rather than bucketed.
func (s *TransactionService) GetCategoryTotals(userID string, startDate, endDate time.Time) (map[string]decimal.Decimal, error) {
	totals, err := s.repo.CategoryTotals(userID, startDate, endDate)
	if err != nil {
		return nil, err
	}
	if totals == nil {
		return map[string]decimal.Decimal{}, nil
	}
	return totals, nil
}
