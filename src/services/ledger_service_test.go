package services

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/painelfinanceiro/backend/src/database"
	"github.com/username/painelfinanceiro/backend/src/models"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db))
	return db
}

func mv(pairs ...any) models.MonthlyValues {
	var out models.MonthlyValues
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, models.MonthValue{Month: pairs[i].(string), Value: pairs[i+1].(float64)})
	}
	return out
}

func sampleSnapshot(importID string) *models.ImportedFinancialData {
	return &models.ImportedFinancialData{
		ImportID: importID,
		Months:   []string{"jan/25", "fev/25"},
		Categories: []models.CategoryNode{
			{
				FinancialRecord: models.FinancialRecord{ID: "001", Name: "Moradia", Kind: models.KindCategory, Classification: models.Expense, MonthlyValues: mv("jan/25", -1500.0, "fev/25", -1000.0)},
				Subcategories: []models.FinancialRecord{
					{ID: "001.01", Name: "Aluguel", Kind: models.KindSubcategory, Classification: models.Expense, MonthlyValues: mv("jan/25", -1200.0, "fev/25", -800.0)},
					{ID: "001.02", Name: "Condomínio", Kind: models.KindSubcategory, Classification: models.Expense, MonthlyValues: mv("jan/25", -300.0, "fev/25", -200.0)},
				},
			},
			{
				FinancialRecord: models.FinancialRecord{ID: "002", Name: "Mercado", Kind: models.KindCategory, Classification: models.Expense, MonthlyValues: mv("jan/25", -500.0, "fev/25", 0.0)},
				Subcategories:   []models.FinancialRecord{},
			},
			{
				FinancialRecord: models.FinancialRecord{ID: "016", Name: "Receitas", Kind: models.KindCategory, Classification: models.Income, MonthlyValues: mv("jan/25", 4000.0, "fev/25", 5000.0)},
				Subcategories: []models.FinancialRecord{
					{ID: "016.01", Name: "Salário", Kind: models.KindSubcategory, Classification: models.Income, MonthlyValues: mv("jan/25", 4000.0, "fev/25", 5000.0)},
				},
			},
		},
		Orphans: []models.FinancialRecord{
			{ID: "099.01", Name: "Taxas", Kind: models.KindSubcategory, Classification: models.Expense, MonthlyValues: mv("jan/25", -50.0, "fev/25", -2000.0)},
		},
		MonthlyTotals: []models.MonthlyTotal{
			{Month: "jan/25", Income: 4000, Expense: 2000},
			{Month: "fev/25", Income: 5000, Expense: 3000},
		},
	}
}

func sampleRecord(id string) models.ImportRecord {
	return models.ImportRecord{
		ID:               id,
		FileName:         id + ".csv",
		DateImported:     time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		RowCount:         6,
		CategoryCount:    3,
		SubcategoryCount: 3,
	}
}

func TestLedgerService_EmptyStore(t *testing.T) {
	svc := NewLedgerService(openTestDB(t), nil)

	current, err := svc.GetCurrent()
	require.NoError(t, err)
	assert.Nil(t, current)

	history, err := svc.ListHistory()
	require.NoError(t, err)
	assert.Empty(t, history)

	assert.Nil(t, svc.GetImportedFinancialData())
	assert.Empty(t, svc.GetImportHistory())
	assert.Nil(t, svc.GetCategoryDataForMonth("001", "jan/25"))

	months, err := svc.AvailableMonths()
	require.NoError(t, err)
	assert.Empty(t, months)

	summary, err := svc.GetMonthSummary("")
	require.NoError(t, err)
	assert.Nil(t, summary)
}

func TestLedgerService_CommitReplaces(t *testing.T) {
	svc := NewLedgerService(openTestDB(t), nil)

	first := sampleSnapshot("imp-1")
	second := sampleSnapshot("imp-2")
	second.Categories = second.Categories[:1]

	require.NoError(t, svc.Commit(first))
	require.NoError(t, svc.Commit(second))

	current, err := svc.GetCurrent()
	require.NoError(t, err)
	assert.Equal(t, second, current)
}

func TestLedgerService_ReadsReturnCopies(t *testing.T) {
	svc := NewLedgerService(openTestDB(t), nil)
	require.NoError(t, svc.Commit(sampleSnapshot("imp-1")))

	got, err := svc.GetCurrent()
	require.NoError(t, err)
	got.Categories[0].Name = "changed"
	got.Categories[0].Subcategories[0].MonthlyValues[0].Value = 1

	again, err := svc.GetCurrent()
	require.NoError(t, err)
	assert.Equal(t, "Moradia", again.Categories[0].Name)
	assert.Equal(t, -1200.0, again.Categories[0].Subcategories[0].MonthlyValues[0].Value)
}

func TestLedgerService_History(t *testing.T) {
	svc := NewLedgerService(openTestDB(t), nil)

	require.NoError(t, svc.AppendHistory(sampleRecord("imp-1")))
	require.NoError(t, svc.AppendHistory(sampleRecord("imp-2")))

	history, err := svc.ListHistory()
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "imp-1", history[0].ID)
	assert.Equal(t, "imp-2", history[1].ID)
	assert.True(t, history[0].DateImported.Equal(sampleRecord("imp-1").DateImported))

	removed, err := svc.RemoveHistory("imp-1")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = svc.RemoveHistory("imp-1")
	require.NoError(t, err)
	assert.False(t, removed)

	history, err = svc.ListHistory()
	require.NoError(t, err)
	assert.Equal(t, []string{"imp-2"}, []string{history[0].ID})
}

// refuseHistoryWrites makes every write of the import history fail inside SQLite.
func refuseHistoryWrites(t *testing.T, db *sql.DB) {
	t.Helper()
	_, err := db.Exec(`CREATE TRIGGER refuse_history BEFORE INSERT ON stored_entries
		WHEN NEW.key = 'finance_import_history'
		BEGIN SELECT RAISE(ABORT, 'history write refused'); END;`)
	require.NoError(t, err)
}

func TestLedgerService_CommitImport(t *testing.T) {
	svc := NewLedgerService(openTestDB(t), nil)

	require.NoError(t, svc.CommitImport(sampleSnapshot("imp-1"), sampleRecord("imp-1")))
	require.NoError(t, svc.CommitImport(sampleSnapshot("imp-2"), sampleRecord("imp-2")))

	current, err := svc.GetCurrent()
	require.NoError(t, err)
	assert.Equal(t, "imp-2", current.ImportID)
	history, err := svc.ListHistory()
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "imp-1", history[0].ID)
	assert.Equal(t, "imp-2", history[1].ID)

	assert.ErrorIs(t, svc.CommitImport(nil, sampleRecord("imp-3")), ErrStorage)
}

func TestLedgerService_CommitImportIsAtomic(t *testing.T) {
	db := openTestDB(t)
	svc := NewLedgerService(db, nil)
	require.NoError(t, svc.CommitImport(sampleSnapshot("imp-old"), sampleRecord("imp-old")))
	refuseHistoryWrites(t, db)

	err := svc.CommitImport(sampleSnapshot("imp-new"), sampleRecord("imp-new"))

	assert.ErrorIs(t, err, ErrStorage)
	current, err := svc.GetCurrent()
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, "imp-old", current.ImportID, "snapshot write must be rolled back with the history write")
	history, err := svc.ListHistory()
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "imp-old", history[0].ID)
}

func TestLedgerService_PersistsAcrossInstances(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, NewLedgerService(db, nil).Commit(sampleSnapshot("imp-1")))
	require.NoError(t, NewLedgerService(db, nil).AppendHistory(sampleRecord("imp-1")))

	svc := NewLedgerService(db, nil)
	assert.Equal(t, "imp-1", svc.GetImportedFinancialData().ImportID)
	assert.Len(t, svc.GetImportHistory(), 1)
}

func TestLedgerService_ClearAllImportedData(t *testing.T) {
	svc := NewLedgerService(openTestDB(t), nil)
	require.NoError(t, svc.Commit(sampleSnapshot("imp-1")))
	require.NoError(t, svc.AppendHistory(sampleRecord("imp-1")))

	assert.True(t, svc.ClearAllImportedData())

	assert.Nil(t, svc.GetImportedFinancialData())
	assert.Empty(t, svc.GetImportHistory())
	assert.True(t, svc.ClearAllImportedData(), "clearing an empty store succeeds")
}

func TestLedgerService_RemoveImport(t *testing.T) {
	svc := NewLedgerService(openTestDB(t), nil)
	require.NoError(t, svc.AppendHistory(sampleRecord("imp-1")))
	require.NoError(t, svc.AppendHistory(sampleRecord("imp-2")))
	require.NoError(t, svc.Commit(sampleSnapshot("imp-2")))

	assert.False(t, svc.RemoveImport("missing"))

	assert.True(t, svc.RemoveImport("imp-1"))
	assert.NotNil(t, svc.GetImportedFinancialData(), "snapshot of another import is kept")

	assert.True(t, svc.RemoveImport("imp-2"))
	assert.Nil(t, svc.GetImportedFinancialData())
	assert.Empty(t, svc.GetImportHistory())
}

func TestLedgerService_GetCategoryForMonth(t *testing.T) {
	svc := NewLedgerService(openTestDB(t), nil)
	require.NoError(t, svc.Commit(sampleSnapshot("imp-1")))

	category, err := svc.GetCategoryForMonth("001", "fev/25")
	require.NoError(t, err)
	require.NotNil(t, category)
	assert.Equal(t, -1000.0, category.Value)
	assert.Equal(t, models.KindCategory, category.Kind)
	assert.Equal(t, []models.SubcategoryValue{
		{ID: "001.01", Name: "Aluguel", Value: -800},
		{ID: "001.02", Name: "Condomínio", Value: -200},
	}, category.Subcategories)

	sub, err := svc.GetCategoryForMonth("016.01", "JAN/25")
	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.Equal(t, 4000.0, sub.Value)
	assert.Empty(t, sub.Subcategories)

	orphan := svc.GetCategoryDataForMonth("099.01", "jan/25")
	require.NotNil(t, orphan)
	assert.Equal(t, -50.0, orphan.Value)

	missing, err := svc.GetCategoryForMonth("001", "mar/25")
	require.NoError(t, err)
	assert.Nil(t, missing)

	missing, err = svc.GetCategoryForMonth("404", "jan/25")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestLedgerService_MonthSummary(t *testing.T) {
	svc := NewLedgerService(openTestDB(t), nil)
	require.NoError(t, svc.Commit(sampleSnapshot("imp-1")))

	months, err := svc.AvailableMonths()
	require.NoError(t, err)
	assert.Equal(t, []string{"jan/25", "fev/25"}, months)

	first, err := svc.GetMonthSummary("jan/25")
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, 4000.0, first.TotalIncome)
	assert.Equal(t, 2000.0, first.TotalExpenses)
	assert.Equal(t, 2000.0, first.Result)
	assert.Empty(t, first.PreviousMonth)
	assert.Nil(t, first.IncomeChange)

	latest, err := svc.GetMonthSummary("")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "fev/25", latest.Month)
	assert.Equal(t, "jan/25", latest.PreviousMonth)
	require.NotNil(t, latest.IncomeChange)
	assert.Equal(t, 25.0, *latest.IncomeChange)
	assert.Equal(t, 50.0, *latest.ExpensesChange)
	assert.Equal(t, 0.0, *latest.ResultChange)

	unknown, err := svc.GetMonthSummary("dez/30")
	require.NoError(t, err)
	assert.Nil(t, unknown)
}

func TestLedgerService_ExpenseQueries(t *testing.T) {
	svc := NewLedgerService(openTestDB(t), nil)
	require.NoError(t, svc.Commit(sampleSnapshot("imp-1")))

	shares, err := svc.GetExpenseDistribution("jan/25")
	require.NoError(t, err)
	assert.Equal(t, []models.ExpenseShare{
		{ID: "001", Name: "Moradia", Value: 1500, Percent: 75},
		{ID: "002", Name: "Mercado", Value: 500, Percent: 25},
	}, shares)

	shares, err = svc.GetExpenseDistribution("fev/25")
	require.NoError(t, err)
	assert.Len(t, shares, 1, "zero-valued categories are left out")

	top, err := svc.GetTopExpenses("fev/25", 2)
	require.NoError(t, err)
	assert.Equal(t, []models.TopExpense{
		{ID: "099.01", Name: "Taxas", Value: 2000},
		{ID: "001.01", Name: "Aluguel", Value: 800},
	}, top)

	top, err = svc.GetTopExpenses("jan/25", 0)
	require.NoError(t, err)
	assert.Len(t, top, 3)
	assert.Equal(t, "001.01", top[0].ID)
}

func TestLedgerService_StorageErrorsDegrade(t *testing.T) {
	db := openTestDB(t)
	svc := NewLedgerService(db, nil)
	db.Close()

	_, err := svc.GetCurrent()
	assert.ErrorIs(t, err, ErrStorage)
	_, err = svc.ListHistory()
	assert.ErrorIs(t, err, ErrStorage)
	assert.ErrorIs(t, svc.Commit(sampleSnapshot("imp-1")), ErrStorage)
	assert.ErrorIs(t, svc.ClearAll(), ErrStorage)

	assert.Nil(t, svc.GetImportedFinancialData())
	assert.Empty(t, svc.GetImportHistory())
	assert.False(t, svc.RemoveImport("imp-1"))
	assert.False(t, svc.ClearAllImportedData())
}
