// backend/src/services/interfaces.go
package services

import (
	"context"
	"errors"
	"io"

	"github.com/username/painelfinanceiro/backend/src/models"
)

// Define common service errors
var (
	ErrNoFileSelected   = errors.New("no file selected")
	ErrImportInProgress = errors.New("an import is already in progress")
	ErrNoPendingImport  = errors.New("no import is awaiting confirmation")
	ErrInvalidFormat    = errors.New("invalid file format")
	ErrReadFailed       = errors.New("file could not be read")
	ErrStorage          = errors.New("storage unavailable")

	// ErrImportSuperseded is returned to an import whose run was reset while it was processing.
	ErrImportSuperseded = errors.New("import was reset while processing")
)

// ProgressFunc receives advisory progress in percent.
type ProgressFunc func(percent int)

// ImportSource is the file handed to an import.
type ImportSource struct {
	FileName   string
	Reader     io.Reader
	OnProgress ProgressFunc
}

// ImportOutcome is the result of ProcessImport or ConfirmPendingImport.
// Record is nil while the import waits in Review.
type ImportOutcome struct {
	State           ImportState                   `json:"state"`
	DuplicatesFound int                           `json:"duplicatesFound"`
	Data            *models.ImportedFinancialData `json:"data"`
	Record          *models.ImportRecord          `json:"record,omitempty"`
	Warnings        []string                      `json:"warnings,omitempty"`
}

// ImportStatus is a point-in-time view of the import state machine.
type ImportStatus struct {
	State           ImportState `json:"state"`
	Progress        int         `json:"progress"`
	Message         string      `json:"message,omitempty"`
	DuplicatesFound int         `json:"duplicatesFound"`
	FileName        string      `json:"fileName,omitempty"`
}

// ImportService drives a ledger file through validation, classification,
// hierarchy building and aggregation, and commits the result.
//
// ProcessImport is destructive: once the header is accepted the current
// snapshot and the import history are purged before rows are processed.
type ImportService interface {
	ProcessImport(ctx context.Context, src ImportSource) (*ImportOutcome, error)
	ConfirmPendingImport(ctx context.Context) (*ImportOutcome, error)
	Reset()
	Status() ImportStatus
}

// LedgerService owns the persisted snapshot and import history.
// Every read returns a copy the caller may modify freely.
type LedgerService interface {
	Commit(data *models.ImportedFinancialData) error
	// CommitImport stores data and appends record in one transaction.
	CommitImport(data *models.ImportedFinancialData, record models.ImportRecord) error
	GetCurrent() (*models.ImportedFinancialData, error)
	GetCategoryForMonth(id, month string) (*models.CategoryMonthValue, error)
	AppendHistory(record models.ImportRecord) error
	ListHistory() ([]models.ImportRecord, error)
	RemoveHistory(id string) (bool, error)
	ClearAll() error

	// These never fail; storage errors are logged and reported as empty results.
	GetImportHistory() []models.ImportRecord
	GetImportedFinancialData() *models.ImportedFinancialData
	GetCategoryDataForMonth(id, month string) *models.CategoryMonthValue
	RemoveImport(id string) bool
	ClearAllImportedData() bool

	AvailableMonths() ([]string, error)
	GetMonthSummary(month string) (*models.MonthSummary, error)
	GetExpenseDistribution(month string) ([]models.ExpenseShare, error)
	GetTopExpenses(month string, limit int) ([]models.TopExpense, error)
	InvalidateCache()
}
