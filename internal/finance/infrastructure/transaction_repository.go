package infrastructure

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pklimczu/FinTrack/internal/finance/domain"
	financeErrors "github.com/pklimczu/FinTrack/internal/finance/errors"
	"github.com/shopspring/decimal"
)

const transactionColumns = "id, user_id, type, amount, date, description, source, category, notes, created_at, updated_at"

type PostgresTransactionRepository struct {
	db *sql.DB
}

func NewPostgresTransactionRepository(db *sql.DB) *PostgresTransactionRepository {
	return &PostgresTransactionRepository{db: db}
}

func scanTransaction(row interface{ Scan(...interface{}) error }) (*domain.Transaction, error) {
	var transaction domain.Transaction
	err := row.Scan(
		&transaction.ID, &transaction.UserID, &transaction.Type, &transaction.Amount,
		&transaction.Date, &transaction.Description, &transaction.Source,
		&transaction.Category, &transaction.Notes, &transaction.CreatedAt, &transaction.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &transaction, nil
}

func (r *PostgresTransactionRepository) Save(transaction *domain.Transaction) error {
	query := `
		INSERT INTO transactions (user_id, type, amount, date, description, source, category, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`
	return r.db.QueryRow(query,
		transaction.UserID, transaction.Type, transaction.Amount, transaction.Date,
		transaction.Description, transaction.Source, transaction.Category, transaction.Notes,
	).Scan(&transaction.ID, &transaction.CreatedAt, &transaction.UpdatedAt)
}

func (r *PostgresTransactionRepository) SaveWithTransaction(transaction *domain.Transaction, tx *sql.Tx) error {
	query := `
		INSERT INTO transactions (user_id, type, amount, date, description, source, category, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`
	return tx.QueryRow(query,
		transaction.UserID, transaction.Type, transaction.Amount, transaction.Date,
		transaction.Description, transaction.Source, transaction.Category, transaction.Notes,
	).Scan(&transaction.ID, &transaction.CreatedAt, &transaction.UpdatedAt)
}

func (r *PostgresTransactionRepository) BeginTransaction() (*sql.Tx, error) {
	return r.db.Begin()
}

func (r *PostgresTransactionRepository) FindByID(userID string, transactionID int64) (*domain.Transaction, error) {
	query := fmt.Sprintf(`SELECT %s FROM transactions WHERE user_id = $1 AND id = $2`, transactionColumns)
	transaction, err := scanTransaction(r.db.QueryRow(query, userID, transactionID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, financeErrors.ErrTransactionNotFound
		}
		return nil, err
	}
	return transaction, nil
}

func (r *PostgresTransactionRepository) FindByUser(userID string) ([]domain.Transaction, error) {
	query := fmt.Sprintf(`SELECT %s FROM transactions WHERE user_id = $1 ORDER BY date DESC, created_at DESC`, transactionColumns)
	return r.queryTransactions(query, userID)
}

// Update builds a SET list from the supplied fields only. Every value is a
// bound parameter.
func (r *PostgresTransactionRepository) Update(userID string, transactionID int64, update domain.TransactionUpdate) (*domain.Transaction, error) {
	setClauses := []string{}
	args := []interface{}{}
	addSet := func(column string, value interface{}) {
		args = append(args, value)
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if update.Amount != nil {
		addSet("amount", *update.Amount)
	}
	if update.Date != nil {
		addSet("date", *update.Date)
	}
	if update.Description != nil {
		addSet("description", *update.Description)
	}
	if update.Source != nil {
		addSet("source", *update.Source)
	}
	if update.Category != nil {
		addSet("category", *update.Category)
	}
	if update.Notes != nil {
		addSet("notes", *update.Notes)
	}
	setClauses = append(setClauses, "updated_at = NOW()")

	args = append(args, userID, transactionID)
	query := fmt.Sprintf(`UPDATE transactions SET %s WHERE user_id = $%d AND id = $%d RETURNING %s`,
		strings.Join(setClauses, ", "), len(args)-1, len(args), transactionColumns)

	transaction, err := scanTransaction(r.db.QueryRow(query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, financeErrors.ErrTransactionNotFound
		}
		return nil, err
	}
	return transaction, nil
}

func (r *PostgresTransactionRepository) Delete(userID string, transactionID int64) error {
	result, err := r.db.Exec(`DELETE FROM transactions WHERE user_id = $1 AND id = $2`, userID, transactionID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return financeErrors.ErrTransactionNotFound
	}
	return nil
}

// DeleteMany removes the caller's rows among ids in one statement and returns
// the ids actually deleted; foreign ids are skipped, not errors.
func (r *PostgresTransactionRepository) DeleteMany(userID string, transactionIDs []int64) ([]int64, error) {
	rows, err := r.db.Query(
		`DELETE FROM transactions WHERE user_id = $1 AND id = ANY($2) RETURNING id`,
		userID, transactionIDs,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	deleted := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		deleted = append(deleted, id)
	}
	return deleted, rows.Err()
}

func (r *PostgresTransactionRepository) List(userID string, filter domain.TransactionFilter, limit, page int) ([]domain.Transaction, int, error) {
	conditions := []string{"user_id = $1"}
	args := []interface{}{userID}
	addCondition := func(condition string, value interface{}) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(condition, len(args)))
	}
	if filter.Type != "" {
		addCondition("type = $%d", filter.Type)
	}
	if filter.Category != "" {
		addCondition("category = $%d", filter.Category)
	}
	if filter.StartDate != nil {
		addCondition("date >= $%d", *filter.StartDate)
	}
	if filter.EndDate != nil {
		addCondition("date <= $%d", *filter.EndDate)
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		conditions = append(conditions,
			fmt.Sprintf("(description ILIKE $%d OR source ILIKE $%d OR notes ILIKE $%d)", n, n, n))
	}
	where := strings.Join(conditions, " AND ")

	var totalCount int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM transactions WHERE %s`, where)
	if err := r.db.QueryRow(countQuery, args...).Scan(&totalCount); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, (page-1)*limit)
	query := fmt.Sprintf(
		`SELECT %s FROM transactions WHERE %s ORDER BY date DESC, created_at DESC LIMIT $%d OFFSET $%d`,
		transactionColumns, where, len(args)-1, len(args))
	transactions, err := r.queryTransactions(query, args...)
	if err != nil {
		return nil, 0, err
	}
	return transactions, totalCount, nil
}

func (r *PostgresTransactionRepository) FindByDate(userID string, date time.Time) ([]domain.Transaction, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM transactions WHERE user_id = $1 AND date = $2 ORDER BY created_at DESC`,
		transactionColumns)
	return r.queryTransactions(query, userID, date)
}

func (r *PostgresTransactionRepository) FindInDateRange(userID string, startDate, endDate time.Time) ([]domain.Transaction, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM transactions WHERE user_id = $1 AND date BETWEEN $2 AND $3 ORDER BY date DESC, created_at DESC`,
		transactionColumns)
	return r.queryTransactions(query, userID, startDate, endDate)
}

func (r *PostgresTransactionRepository) CategoriesInUse(userID string) ([]string, error) {
	rows, err := r.db.Query(
		`SELECT DISTINCT category FROM transactions WHERE user_id = $1 AND category <> '' ORDER BY category`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var category string
		if err := rows.Scan(&category); err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

func (r *PostgresTransactionRepository) CategoryTotals(userID string, startDate, endDate time.Time) (map[string]decimal.Decimal, error) {
	rows, err := r.db.Query(`
		SELECT category, SUM(amount)
		FROM transactions
		WHERE user_id = $1 AND type = 'expense' AND category <> '' AND date BETWEEN $2 AND $3
		GROUP BY category`,
		userID, startDate, endDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := map[string]decimal.Decimal{}
	for rows.Next() {
		var category string
		var total decimal.Decimal
		if err := rows.Scan(&category, &total); err != nil {
			return nil, err
		}
		totals[category] = total
	}
	return totals, rows.Err()
}

func (r *PostgresTransactionRepository) queryTransactions(query string, args ...interface{}) ([]domain.Transaction, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transactions []domain.Transaction
	for rows.Next() {
		transaction, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, *transaction)
	}
	return transactions, rows.Err()
}
