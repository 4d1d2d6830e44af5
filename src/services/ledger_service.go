// backend/src/services/ledger_service.go
package services

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
	"github.com/username/painelfinanceiro/backend/src/logger"
	"github.com/username/painelfinanceiro/backend/src/model"
	"github.com/username/painelfinanceiro/backend/src/models"
	"github.com/username/painelfinanceiro/backend/src/utils"
)

const (
	ckImportedData         = "ledger_imported_data"
	ckImportHistory        = "ledger_import_history"
	DefaultCacheExpiration = 15 * time.Minute
	CacheCleanupInterval   = 30 * time.Minute
	DefaultTopExpenses     = 5
)

type ledgerServiceImpl struct {
	db          *sql.DB
	reportCache *cache.Cache
}

func NewLedgerService(db *sql.DB, reportCache *cache.Cache) LedgerService {
	if reportCache == nil {
		reportCache = cache.New(DefaultCacheExpiration, CacheCleanupInterval)
	}
	return &ledgerServiceImpl{db: db, reportCache: reportCache}
}

func (s *ledgerServiceImpl) InvalidateCache() {
	s.reportCache.Delete(ckImportedData)
	s.reportCache.Delete(ckImportHistory)
	logger.L.Debug("Ledger cache invalidated")
}

// Commit replaces the current snapshot with data.
func (s *ledgerServiceImpl) Commit(data *models.ImportedFinancialData) error {
	if data == nil {
		return fmt.Errorf("%w: nothing to commit", ErrStorage)
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("%w: encoding snapshot: %v", ErrStorage, err)
	}
	defer s.InvalidateCache()
	if err := model.PutEntry(s.db, model.KeyImportedData, payload); err != nil {
		return fmt.Errorf("%w: saving snapshot: %v", ErrStorage, err)
	}
	logger.L.Info("Snapshot committed", "importID", data.ImportID, "categories", len(data.Categories), "months", len(data.Months))
	return nil
}

// CommitImport replaces the snapshot with data and appends record to the history.
// Both writes happen in one transaction: on failure neither is visible.
func (s *ledgerServiceImpl) CommitImport(data *models.ImportedFinancialData, record models.ImportRecord) error {
	if data == nil {
		return fmt.Errorf("%w: nothing to commit", ErrStorage)
	}
	history, err := s.history()
	if err != nil {
		return err
	}
	snapshot, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("%w: encoding snapshot: %v", ErrStorage, err)
	}
	updated := make([]models.ImportRecord, 0, len(history)+1)
	updated = append(append(updated, history...), record)
	historyPayload, err := json.Marshal(updated)
	if err != nil {
		return fmt.Errorf("%w: encoding import history: %v", ErrStorage, err)
	}

	defer s.InvalidateCache()
	dbTx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: beginning transaction: %v", ErrStorage, err)
	}
	defer dbTx.Rollback()

	err = model.PutEntries(dbTx,
		model.Entry{Key: model.KeyImportedData, Value: snapshot},
		model.Entry{Key: model.KeyImportHistory, Value: historyPayload},
	)
	if err != nil {
		return fmt.Errorf("%w: saving import: %v", ErrStorage, err)
	}
	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("%w: committing import: %v", ErrStorage, err)
	}
	logger.L.Info("Import committed", "importID", record.ID, "fileName", record.FileName, "categories", len(data.Categories))
	return nil
}

// GetCurrent returns the current snapshot, or nil when nothing has been imported.
func (s *ledgerServiceImpl) GetCurrent() (*models.ImportedFinancialData, error) {
	data, err := s.current()
	if err != nil {
		return nil, err
	}
	return data.Clone(), nil
}

// current returns the cached snapshot without copying. Callers must not modify it.
func (s *ledgerServiceImpl) current() (*models.ImportedFinancialData, error) {
	if cached, found := s.reportCache.Get(ckImportedData); found {
		return cached.(*models.ImportedFinancialData), nil
	}
	payload, ok, err := model.GetEntry(s.db, model.KeyImportedData)
	if err != nil {
		return nil, fmt.Errorf("%w: reading snapshot: %v", ErrStorage, err)
	}
	var data *models.ImportedFinancialData
	if ok {
		data = &models.ImportedFinancialData{}
		if err := json.Unmarshal(payload, data); err != nil {
			return nil, fmt.Errorf("%w: decoding snapshot: %v", ErrStorage, err)
		}
	}
	s.reportCache.Set(ckImportedData, data, cache.DefaultExpiration)
	return data, nil
}

// GetCategoryForMonth resolves a category or subcategory for one month.
// It returns nil when there is no snapshot, the id is unknown, or the record has no such month.
func (s *ledgerServiceImpl) GetCategoryForMonth(id, month string) (*models.CategoryMonthValue, error) {
	data, err := s.current()
	if err != nil || data == nil {
		return nil, err
	}

	for _, c := range data.Categories {
		if c.ID != id {
			continue
		}
		value, ok := c.MonthlyValues.Get(month)
		if !ok {
			return nil, nil
		}
		result := monthValue(c.FinancialRecord, month, value)
		result.Subcategories = []models.SubcategoryValue{}
		for _, sub := range c.Subcategories {
			v, _ := sub.MonthlyValues.Get(month)
			result.Subcategories = append(result.Subcategories, models.SubcategoryValue{ID: sub.ID, Name: sub.Name, Value: v})
		}
		return result, nil
	}

	for _, sub := range allSubcategories(data) {
		if sub.ID != id {
			continue
		}
		value, ok := sub.MonthlyValues.Get(month)
		if !ok {
			return nil, nil
		}
		return monthValue(sub, month, value), nil
	}
	return nil, nil
}

func monthValue(r models.FinancialRecord, month string, value float64) *models.CategoryMonthValue {
	return &models.CategoryMonthValue{
		ID:             r.ID,
		Name:           r.Name,
		Kind:           r.Kind,
		Classification: r.Classification,
		Month:          month,
		Value:          value,
	}
}

func allSubcategories(data *models.ImportedFinancialData) []models.FinancialRecord {
	var subs []models.FinancialRecord
	for _, c := range data.Categories {
		subs = append(subs, c.Subcategories...)
	}
	return append(subs, data.Orphans...)
}

func (s *ledgerServiceImpl) AppendHistory(record models.ImportRecord) error {
	history, err := s.history()
	if err != nil {
		return err
	}
	updated := make([]models.ImportRecord, 0, len(history)+1)
	updated = append(append(updated, history...), record)
	if err := s.saveHistory(updated); err != nil {
		return err
	}
	logger.L.Info("Import recorded in history", "importID", record.ID, "fileName", record.FileName)
	return nil
}

// ListHistory returns import records in insertion order.
func (s *ledgerServiceImpl) ListHistory() ([]models.ImportRecord, error) {
	history, err := s.history()
	if err != nil {
		return nil, err
	}
	return append([]models.ImportRecord{}, history...), nil
}

func (s *ledgerServiceImpl) history() ([]models.ImportRecord, error) {
	if cached, found := s.reportCache.Get(ckImportHistory); found {
		return cached.([]models.ImportRecord), nil
	}
	payload, ok, err := model.GetEntry(s.db, model.KeyImportHistory)
	if err != nil {
		return nil, fmt.Errorf("%w: reading import history: %v", ErrStorage, err)
	}
	history := []models.ImportRecord{}
	if ok {
		if err := json.Unmarshal(payload, &history); err != nil {
			return nil, fmt.Errorf("%w: decoding import history: %v", ErrStorage, err)
		}
	}
	s.reportCache.Set(ckImportHistory, history, cache.DefaultExpiration)
	return history, nil
}

func (s *ledgerServiceImpl) saveHistory(history []models.ImportRecord) error {
	payload, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("%w: encoding import history: %v", ErrStorage, err)
	}
	defer s.InvalidateCache()
	if err := model.PutEntry(s.db, model.KeyImportHistory, payload); err != nil {
		return fmt.Errorf("%w: saving import history: %v", ErrStorage, err)
	}
	return nil
}

// RemoveHistory deletes the record with id. It reports false when no such record exists.
func (s *ledgerServiceImpl) RemoveHistory(id string) (bool, error) {
	history, err := s.history()
	if err != nil {
		return false, err
	}
	kept := make([]models.ImportRecord, 0, len(history))
	for _, rec := range history {
		if rec.ID != id {
			kept = append(kept, rec)
		}
	}
	if len(kept) == len(history) {
		return false, nil
	}
	if err := s.saveHistory(kept); err != nil {
		return false, err
	}
	return true, nil
}

// ClearAll removes the snapshot and the history. Clearing an empty store succeeds.
func (s *ledgerServiceImpl) ClearAll() error {
	defer s.InvalidateCache()
	if err := model.DeleteEntries(s.db, model.KeyImportedData, model.KeyImportHistory); err != nil {
		return fmt.Errorf("%w: clearing imported data: %v", ErrStorage, err)
	}
	logger.L.Info("All imported data cleared")
	return nil
}

func (s *ledgerServiceImpl) GetImportHistory() []models.ImportRecord {
	history, err := s.ListHistory()
	if err != nil {
		logger.L.Error("Failed to load import history", "error", err)
		return []models.ImportRecord{}
	}
	return history
}

func (s *ledgerServiceImpl) GetImportedFinancialData() *models.ImportedFinancialData {
	data, err := s.GetCurrent()
	if err != nil {
		logger.L.Error("Failed to load imported financial data", "error", err)
		return nil
	}
	return data
}

func (s *ledgerServiceImpl) GetCategoryDataForMonth(id, month string) *models.CategoryMonthValue {
	result, err := s.GetCategoryForMonth(id, month)
	if err != nil {
		logger.L.Error("Failed to resolve category for month", "id", id, "month", month, "error", err)
		return nil
	}
	return result
}

// RemoveImport deletes one history record. When the current snapshot was produced by
// that import it is dropped too.
func (s *ledgerServiceImpl) RemoveImport(id string) bool {
	removed, err := s.RemoveHistory(id)
	if err != nil {
		logger.L.Error("Failed to remove import", "importID", id, "error", err)
		return false
	}
	if !removed {
		return false
	}

	data, err := s.current()
	if err != nil {
		logger.L.Error("Failed to check snapshot after removing import", "importID", id, "error", err)
		return true
	}
	if data != nil && data.ImportID == id {
		defer s.InvalidateCache()
		if err := model.DeleteEntries(s.db, model.KeyImportedData); err != nil {
			logger.L.Error("Failed to drop snapshot of removed import", "importID", id, "error", err)
		} else {
			logger.L.Info("Snapshot of removed import dropped", "importID", id)
		}
	}
	return true
}

func (s *ledgerServiceImpl) ClearAllImportedData() bool {
	if err := s.ClearAll(); err != nil {
		logger.L.Error("Failed to clear imported data", "error", err)
		return false
	}
	return true
}

// AvailableMonths lists the month columns of the current snapshot in file order.
func (s *ledgerServiceImpl) AvailableMonths() ([]string, error) {
	data, err := s.current()
	if err != nil {
		return nil, err
	}
	if data == nil {
		return []string{}, nil
	}
	return append([]string{}, data.Months...), nil
}

// resolveMonth maps month to its index in data.Months. An empty month selects the latest column.
func resolveMonth(data *models.ImportedFinancialData, month string) (int, bool) {
	if len(data.Months) == 0 {
		return -1, false
	}
	if month == "" {
		return len(data.Months) - 1, true
	}
	for i, m := range data.Months {
		if m == month {
			return i, true
		}
	}
	for i, m := range data.Months {
		if strings.EqualFold(m, month) {
			return i, true
		}
	}
	return -1, false
}

func totalFor(data *models.ImportedFinancialData, month string) models.MonthlyTotal {
	for _, t := range data.MonthlyTotals {
		if t.Month == month {
			return t
		}
	}
	return models.MonthlyTotal{Month: month}
}

// GetMonthSummary returns totals for month and their change against the preceding column.
// It returns nil when there is no snapshot or the month is unknown.
func (s *ledgerServiceImpl) GetMonthSummary(month string) (*models.MonthSummary, error) {
	data, err := s.current()
	if err != nil || data == nil {
		return nil, err
	}
	idx, ok := resolveMonth(data, month)
	if !ok {
		return nil, nil
	}

	cur := totalFor(data, data.Months[idx])
	income := decimal.NewFromFloat(cur.Income)
	expenses := decimal.NewFromFloat(cur.Expense)
	result := income.Sub(expenses)

	summary := &models.MonthSummary{
		Month:         data.Months[idx],
		TotalIncome:   utils.RoundFloat(cur.Income, 2),
		TotalExpenses: utils.RoundFloat(cur.Expense, 2),
		Result:        result.Round(2).InexactFloat64(),
	}
	if idx > 0 {
		prev := totalFor(data, data.Months[idx-1])
		prevIncome := decimal.NewFromFloat(prev.Income)
		prevExpenses := decimal.NewFromFloat(prev.Expense)
		summary.PreviousMonth = data.Months[idx-1]
		summary.IncomeChange = percentChange(income, prevIncome)
		summary.ExpensesChange = percentChange(expenses, prevExpenses)
		summary.ResultChange = percentChange(result, prevIncome.Sub(prevExpenses))
	}
	return summary, nil
}

// percentChange is nil when the previous value is zero.
func percentChange(cur, prev decimal.Decimal) *float64 {
	if prev.IsZero() {
		return nil
	}
	change := cur.Sub(prev).Div(prev.Abs()).Mul(decimal.NewFromInt(100)).Round(2).InexactFloat64()
	return &change
}

// GetExpenseDistribution splits the month's expense categories by magnitude, largest first.
func (s *ledgerServiceImpl) GetExpenseDistribution(month string) ([]models.ExpenseShare, error) {
	data, err := s.current()
	if err != nil {
		return nil, err
	}
	shares := []models.ExpenseShare{}
	if data == nil {
		return shares, nil
	}
	idx, ok := resolveMonth(data, month)
	if !ok {
		return shares, nil
	}
	label := data.Months[idx]

	total := decimal.Zero
	values := make([]decimal.Decimal, 0, len(data.Categories))
	for _, c := range data.Categories {
		if c.Classification != models.Expense {
			continue
		}
		v, _ := c.MonthlyValues.Get(label)
		amount := decimal.NewFromFloat(v).Abs()
		if amount.IsZero() {
			continue
		}
		total = total.Add(amount)
		values = append(values, amount)
		shares = append(shares, models.ExpenseShare{ID: c.ID, Name: c.Name, Value: amount.Round(2).InexactFloat64()})
	}
	for i := range shares {
		shares[i].Percent = values[i].Div(total).Mul(decimal.NewFromInt(100)).Round(2).InexactFloat64()
	}
	sort.SliceStable(shares, func(i, j int) bool { return shares[i].Value > shares[j].Value })
	return shares, nil
}

// GetTopExpenses ranks the month's expense subcategories by magnitude.
// A non-positive limit selects DefaultTopExpenses.
func (s *ledgerServiceImpl) GetTopExpenses(month string, limit int) ([]models.TopExpense, error) {
	data, err := s.current()
	if err != nil {
		return nil, err
	}
	top := []models.TopExpense{}
	if data == nil {
		return top, nil
	}
	idx, ok := resolveMonth(data, month)
	if !ok {
		return top, nil
	}
	label := data.Months[idx]
	if limit <= 0 {
		limit = DefaultTopExpenses
	}

	for _, sub := range allSubcategories(data) {
		if sub.Classification != models.Expense {
			continue
		}
		v, _ := sub.MonthlyValues.Get(label)
		amount := decimal.NewFromFloat(v).Abs()
		if amount.IsZero() {
			continue
		}
		top = append(top, models.TopExpense{ID: sub.ID, Name: sub.Name, Value: amount.Round(2).InexactFloat64()})
	}
	sort.SliceStable(top, func(i, j int) bool { return top[i].Value > top[j].Value })
	if len(top) > limit {
		top = top[:limit]
	}
	return top, nil
}
