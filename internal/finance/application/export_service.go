package application

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/pklimczu/FinTrack/internal/finance/domain"
	"github.com/shopspring/decimal"
)

const exportVersion = "1.0"

// UserProfile is the owner info embedded in an export snapshot.
type UserProfile struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Login string `json:"login"`
}

type ExportSnapshot struct {
	User         UserProfile          `json:"user"`
	Transactions []domain.Transaction `json:"transactions"`
	Settings     *domain.BudgetGoal   `json:"settings,omitempty"`
	ExportDate   time.Time            `json:"export_date"`
	Version      string               `json:"version"`
}

// ImportResult reports a best-effort import: one row failing never aborts the
// batch, the caller gets counts plus the per-row messages.
type ImportResult struct {
	Imported int      `json:"imported"`
	Failed   int      `json:"failed"`
	Errors   []string `json:"errors,omitempty"`
}

type ExportService struct {
	transactions *TransactionService
	budgets      *BudgetService
	repo         domain.TransactionRepository
}

func NewExportService(transactions *TransactionService, budgets *BudgetService, repo domain.TransactionRepository) *ExportService {
	return &ExportService{transactions: transactions, budgets: budgets, repo: repo}
}

func (s *ExportService) Export(profile UserProfile) (*ExportSnapshot, error) {
	transactions, err := s.repo.FindByUser(profile.ID)
	if err != nil {
		return nil, err
	}
	if transactions == nil {
		transactions = []domain.Transaction{}
	}
	goal, err := s.budgets.GetGoal(profile.ID)
	if err != nil {
		return nil, err
	}
	return &ExportSnapshot{
		User:         profile,
		Transactions: transactions,
		Settings:     goal,
		ExportDate:   time.Now().UTC(),
		Version:      exportVersion,
	}, nil
}

type importedTransaction struct {
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Date        string          `json:"date"`
	Description string          `json:"description"`
	Source      string          `json:"source"`
	Category    string          `json:"category"`
	Notes       string          `json:"notes"`
}

type importPayload struct {
	Transactions []importedTransaction `json:"transactions"`
	Settings     *domain.BudgetGoal    `json:"settings"`
}

// ImportJSON inserts every transaction row from a snapshot, tolerating per-row
// failures, then applies settings if present.
func (s *ExportService) ImportJSON(userID string, r io.Reader) (*ImportResult, error) {
	var payload importPayload
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode import payload: %w", err)
	}

	result := &ImportResult{}
	for i, row := range payload.Transactions {
		s.importRow(userID, i, row, result)
	}

	if payload.Settings != nil {
		payload.Settings.UserID = userID
		if err := s.budgets.SaveGoal(payload.Settings); err != nil {
			log.Printf("import: could not apply settings for user %s: %v", userID, err)
			result.Errors = append(result.Errors, fmt.Sprintf("settings: %v", err))
		}
	}
	return result, nil
}

// ImportCSV reads rows with the header
// type,amount,date,description,source,category,notes.
func (s *ExportService) ImportCSV(userID string, r io.Reader) (*ImportResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return &ImportResult{}, nil
	}

	header := records[0]
	column := make(map[string]int, len(header))
	for i, name := range header {
		column[strings.ToLower(strings.TrimSpace(name))] = i
	}
	field := func(record []string, name string) string {
		idx, ok := column[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	result := &ImportResult{}
	for i, record := range records[1:] {
		amount, err := decimal.NewFromString(field(record, "amount"))
		if err != nil {
			amount = decimal.Zero
		}
		row := importedTransaction{
			Type:        field(record, "type"),
			Amount:      amount,
			Date:        field(record, "date"),
			Description: field(record, "description"),
			Source:      field(record, "source"),
			Category:    field(record, "category"),
			Notes:       field(record, "notes"),
		}
		s.importRow(userID, i, row, result)
	}
	return result, nil
}

func (s *ExportService) importRow(userID string, index int, row importedTransaction, result *ImportResult) {
	date, err := time.Parse("2006-01-02", row.Date)
	if err != nil {
		result.Failed++
		result.Errors = append(result.Errors, fmt.Sprintf("row %d: invalid date %q", index+1, row.Date))
		return
	}
	transaction := &domain.Transaction{
		UserID:      userID,
		Type:        row.Type,
		Amount:      row.Amount,
		Date:        date,
		Description: row.Description,
		Source:      row.Source,
		Category:    row.Category,
		Notes:       row.Notes,
	}
	if err := s.transactions.CreateTransaction(transaction); err != nil {
		result.Failed++
		result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", index+1, err))
		log.Printf("import: row %d failed for user %s: %v", index+1, userID, err)
		return
	}
	result.Imported++
}
