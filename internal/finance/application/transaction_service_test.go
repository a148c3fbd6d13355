package application

import (
	"testing"
	"time"

	"github.com/pklimczu/FinTrack/internal/finance/domain"
	financeErrors "github.com/pklimczu/FinTrack/internal/finance/errors"
	"github.com/pklimczu/FinTrack/internal/finance/infrastructure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTransaction_ValidExpense(t *testing.T) {
	repo := &infrastructure.MockTransactionRepository{}
	service := NewTransactionService(repo)

	transaction := &domain.Transaction{
		UserID:      "user-1",
		Type:        domain.TypeExpense,
		Amount:      dec("49.999"),
		Date:        date(2024, time.March, 5),
		Description: "groceries",
		Category:    "Food",
	}
	require.NoError(t, service.CreateTransaction(transaction))

	assert.Equal(t, int64(1), transaction.ID)
	assert.True(t, transaction.Amount.Equal(dec("50")), "amount is rounded to two decimal places")
	assert.False(t, transaction.CreatedAt.IsZero())
}

func TestCreateTransaction_ValidationFailures(t *testing.T) {
	tests := []struct {
		name        string
		transaction domain.Transaction
		wantFields  []string
	}{
		{
			name: "missing type",
			transaction: domain.Transaction{
				Amount: dec("10"),
				Date:   date(2024, time.March, 5),
			},
			wantFields: []string{"type"},
		},
		{
			name: "unknown type",
			transaction: domain.Transaction{
				Type:   "transfer",
				Amount: dec("10"),
				Date:   date(2024, time.March, 5),
			},
			wantFields: []string{"type"},
		},
		{
			name: "non-positive amount",
			transaction: domain.Transaction{
				Type:        domain.TypeExpense,
				Amount:      dec("0"),
				Date:        date(2024, time.March, 5),
				Description: "groceries",
			},
			wantFields: []string{"amount"},
		},
		{
			name: "expense without description",
			transaction: domain.Transaction{
				Type:   domain.TypeExpense,
				Amount: dec("10"),
				Date:   date(2024, time.March, 5),
			},
			wantFields: []string{"description"},
		},
		{
			name: "income without source",
			transaction: domain.Transaction{
				Type:   domain.TypeIncome,
				Amount: dec("10"),
				Date:   date(2024, time.March, 5),
			},
			wantFields: []string{"source"},
		},
		{
			name: "missing date",
			transaction: domain.Transaction{
				Type:        domain.TypeExpense,
				Amount:      dec("10"),
				Description: "groceries",
			},
			wantFields: []string{"date"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			repo := &infrastructure.MockTransactionRepository{}
			service := NewTransactionService(repo)

			transaction := tc.transaction
			err := service.CreateTransaction(&transaction)
			require.Error(t, err)
			assert.True(t, financeErrors.IsValidationError(err))
			assert.Equal(t, tc.wantFields, financeErrors.ValidationFields(err))
			assert.Empty(t, repo.Transactions, "invalid records must not be persisted")
		})
	}
}

func TestCreateTransaction_IncomeDropsCategory(t *testing.T) {
	repo := &infrastructure.MockTransactionRepository{}
	service := NewTransactionService(repo)

	transaction := &domain.Transaction{
		UserID: "user-1",
		Type:   domain.TypeIncome,
		Amount: dec("2500"),
		Date:   date(2024, time.March, 1),
		Source: "salary",
		// categories only apply to expenses
		Category: "Food",
	}
	require.NoError(t, service.CreateTransaction(transaction))
	assert.Empty(t, repo.Transactions[0].Category)
}

func TestCreateTransactionsBulk_AllOrNothing(t *testing.T) {
	repo := &infrastructure.MockTransactionRepository{}
	service := NewTransactionService(repo)

	transactions := []*domain.Transaction{
		{Type: domain.TypeExpense, Amount: dec("10"), Date: date(2024, time.March, 1), Description: "coffee"},
		{Type: domain.TypeExpense, Amount: dec("-5"), Date: date(2024, time.March, 2), Description: "bad row"},
		{Type: "transfer", Amount: dec("5"), Date: date(2024, time.March, 3)},
	}

	err := service.CreateTransactionsBulk(transactions, "user-1")
	require.Error(t, err)

	var bulkErr *financeErrors.ValidationErrors
	require.ErrorAs(t, err, &bulkErr)
	require.Len(t, bulkErr.Errors, 2)
	assert.Contains(t, bulkErr.Errors[0].Error(), "transaction 2")
	assert.Contains(t, bulkErr.Errors[1].Error(), "transaction 3")
}

func TestCreateTransactionsBulk_AssignsOwner(t *testing.T) {
	repo := &infrastructure.MockTransactionRepository{}
	service := NewTransactionService(repo)

	transactions := []*domain.Transaction{
		{Type: domain.TypeIncome, Amount: dec("100"), Date: date(2024, time.March, 1), Source: "salary"},
		{Type: domain.TypeExpense, Amount: dec("20"), Date: date(2024, time.March, 2), Description: "lunch"},
	}
	require.NoError(t, service.CreateTransactionsBulk(transactions, "user-7"))

	require.Len(t, repo.Transactions, 2)
	for _, saved := range repo.Transactions {
		assert.Equal(t, "user-7", saved.UserID)
	}
}

func TestUpdateTransaction_PartialUpdate(t *testing.T) {
	repo := &infrastructure.MockTransactionRepository{}
	service := NewTransactionService(repo)
	seedTransaction(repo, "user-1", domain.TypeExpense, "30", date(2024, time.March, 5), "Food")

	newDescription := "dinner out"
	updated, err := service.UpdateTransaction("user-1", 1, domain.TransactionUpdate{
		Description: &newDescription,
	})
	require.NoError(t, err)

	assert.Equal(t, "dinner out", updated.Description)
	assert.True(t, updated.Amount.Equal(dec("30")), "unsupplied fields keep their values")
	assert.Equal(t, "Food", updated.Category)
	assert.True(t, updated.UpdatedAt.After(updated.CreatedAt))
}

func TestUpdateTransaction_RejectsBlankDescription(t *testing.T) {
	repo := &infrastructure.MockTransactionRepository{}
	service := NewTransactionService(repo)
	seedTransaction(repo, "user-1", domain.TypeExpense, "30", date(2024, time.March, 5), "Food")

	for _, blank := range []string{"", "   "} {
		_, err := service.UpdateTransaction("user-1", 1, domain.TransactionUpdate{Description: &blank})
		require.Error(t, err)
		assert.True(t, financeErrors.IsValidationError(err))
		assert.Equal(t, []string{"description"}, financeErrors.ValidationFields(err))
	}

	stored, err := repo.FindByID("user-1", 1)
	require.NoError(t, err)
	assert.Equal(t, "seeded expense", stored.Description)
}

func TestUpdateTransaction_RejectsBlankSource(t *testing.T) {
	repo := &infrastructure.MockTransactionRepository{}
	service := NewTransactionService(repo)
	seedTransaction(repo, "user-1", domain.TypeIncome, "1200", date(2024, time.March, 1), "")

	blank := ""
	_, err := service.UpdateTransaction("user-1", 1, domain.TransactionUpdate{Source: &blank})
	require.Error(t, err)
	assert.True(t, financeErrors.IsValidationError(err))
	assert.Equal(t, []string{"source"}, financeErrors.ValidationFields(err))

	stored, err := repo.FindByID("user-1", 1)
	require.NoError(t, err)
	assert.Equal(t, "seeded income", stored.Source)
}

func TestUpdateTransaction_NoFields(t *testing.T) {
	service := NewTransactionService(&infrastructure.MockTransactionRepository{})

	_, err := service.UpdateTransaction("user-1", 1, domain.TransactionUpdate{})
	require.Error(t, err)
	assert.True(t, financeErrors.IsValidationError(err))
}

func TestUpdateTransaction_RejectsNonPositiveAmount(t *testing.T) {
	repo := &infrastructure.MockTransactionRepository{}
	service := NewTransactionService(repo)
	seedTransaction(repo, "user-1", domain.TypeExpense, "30", date(2024, time.March, 5), "Food")

	zero := dec("0")
	_, err := service.UpdateTransaction("user-1", 1, domain.TransactionUpdate{Amount: &zero})
	require.Error(t, err)
	assert.True(t, financeErrors.IsValidationError(err))
	assert.Equal(t, []string{"amount"}, financeErrors.ValidationFields(err))
}

func TestUpdateTransaction_NotOwned(t *testing.T) {
	repo := &infrastructure.MockTransactionRepository{}
	service := NewTransactionService(repo)
	seedTransaction(repo, "owner", domain.TypeExpense, "30", date(2024, time.March, 5), "Food")

	newDescription := "hijacked"
	_, err := service.UpdateTransaction("intruder", 1, domain.TransactionUpdate{Description: &newDescription})
	require.Error(t, err)
	assert.True(t, financeErrors.IsNotFoundError(err))
	assert.Equal(t, "seeded expense", repo.Transactions[0].Description)
}

func TestDeleteTransaction_NotOwnedLeavesRecordIntact(t *testing.T) {
	repo := &infrastructure.MockTransactionRepository{}
	service := NewTransactionService(repo)
	seedTransaction(repo, "owner", domain.TypeExpense, "30", date(2024, time.March, 5), "Food")

	err := service.DeleteTransaction("intruder", 1)
	require.Error(t, err)
	assert.True(t, financeErrors.IsNotFoundError(err))
	assert.Len(t, repo.Transactions, 1)
}

func TestDeleteTransactions_SkipsUnknownAndForeignIDs(t *testing.T) {
	repo := &infrastructure.MockTransactionRepository{}
	service := NewTransactionService(repo)
	seedTransaction(repo, "user-1", domain.TypeExpense, "10", date(2024, time.March, 1), "")
	seedTransaction(repo, "user-1", domain.TypeExpense, "20", date(2024, time.March, 2), "")
	seedTransaction(repo, "user-2", domain.TypeExpense, "30", date(2024, time.March, 3), "")

	deleted, err := service.DeleteTransactions("user-1", []int64{1, 2, 3, 999})
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 2}, deleted)
	require.Len(t, repo.Transactions, 1)
	assert.Equal(t, "user-2", repo.Transactions[0].UserID)
}

func TestDeleteTransactions_EmptyInput(t *testing.T) {
	service := NewTransactionService(&infrastructure.MockTransactionRepository{})

	deleted, err := service.DeleteTransactions("user-1", nil)
	require.NoError(t, err)
	assert.Equal(t, []int64{}, deleted)
}

func TestGetUserTransactions_PaginationAndOrdering(t *testing.T) {
	repo := &infrastructure.MockTransactionRepository{}
	service := NewTransactionService(repo)
	for day := 1; day <= 47; day++ {
		seedTransaction(repo, "user-1", domain.TypeExpense, "10",
			date(2024, time.January, 1).AddDate(0, 0, day-1), "")
	}

	firstPage, pagination, err := service.GetUserTransactions("user-1", domain.TransactionFilter{}, 10, 1)
	require.NoError(t, err)
	assert.Len(t, firstPage, 10)
	assert.Equal(t, 47, pagination.TotalCount)
	assert.Equal(t, 5, pagination.TotalPages)
	assert.True(t, pagination.HasNext)
	assert.False(t, pagination.HasPrev)
	assert.True(t, firstPage[0].Date.After(firstPage[9].Date), "newest first")

	lastPage, pagination, err := service.GetUserTransactions("user-1", domain.TransactionFilter{}, 10, 5)
	require.NoError(t, err)
	assert.Len(t, lastPage, 7)
	assert.False(t, pagination.HasNext)
	assert.True(t, pagination.HasPrev)
}

func TestGetUserTransactions_PageBeyondEnd(t *testing.T) {
	repo := &infrastructure.MockTransactionRepository{}
	service := NewTransactionService(repo)
	seedTransaction(repo, "user-1", domain.TypeExpense, "10", date(2024, time.March, 1), "")

	transactions, pagination, err := service.GetUserTransactions("user-1", domain.TransactionFilter{}, 10, 3)
	require.NoError(t, err)
	assert.Empty(t, transactions)
	assert.NotNil(t, transactions)
	assert.Equal(t, 1, pagination.TotalCount)
}

func TestGetUserTransactions_Filters(t *testing.T) {
	repo := &infrastructure.MockTransactionRepository{}
	service := NewTransactionService(repo)
	seedTransaction(repo, "user-1", domain.TypeExpense, "10", date(2024, time.March, 1), "Food")
	seedTransaction(repo, "user-1", domain.TypeExpense, "20", date(2024, time.March, 2), "Transport")
	seedTransaction(repo, "user-1", domain.TypeIncome, "3000", date(2024, time.March, 3), "")

	byCategory, _, err := service.GetUserTransactions("user-1",
		domain.TransactionFilter{Category: "Food"}, 20, 1)
	require.NoError(t, err)
	require.Len(t, byCategory, 1)
	assert.Equal(t, "Food", byCategory[0].Category)

	byType, _, err := service.GetUserTransactions("user-1",
		domain.TransactionFilter{Type: domain.TypeIncome}, 20, 1)
	require.NoError(t, err)
	require.Len(t, byType, 1)
	assert.Equal(t, domain.TypeIncome, byType[0].Type)

	start := date(2024, time.March, 2)
	end := date(2024, time.March, 2)
	byRange, _, err := service.GetUserTransactions("user-1",
		domain.TransactionFilter{StartDate: &start, EndDate: &end}, 20, 1)
	require.NoError(t, err)
	require.Len(t, byRange, 1)
	assert.Equal(t, "Transport", byRange[0].Category)
}

func TestGetCategories_MergesDefaultsWithUsed(t *testing.T) {
	repo := &infrastructure.MockTransactionRepository{}
	service := NewTransactionService(repo)
	seedTransaction(repo, "user-1", domain.TypeExpense, "10", date(2024, time.March, 1), "Food")
	seedTransaction(repo, "user-1", domain.TypeExpense, "10", date(2024, time.March, 2), "Crypto")

	categories, err := service.GetCategories("user-1")
	require.NoError(t, err)

	assert.Contains(t, categories, "Crypto")
	assert.Contains(t, categories, "Food")
	counts := map[string]int{}
	for _, category := range categories {
		counts[category]++
	}
	assert.Equal(t, 1, counts["Food"], "categories already in the default set are not duplicated")
	assert.Len(t, categories, len(domain.DefaultCategories())+1)
}

func TestGetCategoryTotals_ExpensesOnlyWithinRange(t *testing.T) {
	repo := &infrastructure.MockTransactionRepository{}
	service := NewTransactionService(repo)
	seedTransaction(repo, "user-1", domain.TypeExpense, "10", date(2024, time.March, 1), "Food")
	seedTransaction(repo, "user-1", domain.TypeExpense, "15", date(2024, time.March, 10), "Food")
	seedTransaction(repo, "user-1", domain.TypeIncome, "3000", date(2024, time.March, 5), "")
	seedTransaction(repo, "user-1", domain.TypeExpense, "99", date(2024, time.April, 1), "Food")

	totals, err := service.GetCategoryTotals("user-1", date(2024, time.March, 1), date(2024, time.March, 31))
	require.NoError(t, err)

	require.Len(t, totals, 1)
	assert.True(t, totals["Food"].Equal(dec("25")))
}
