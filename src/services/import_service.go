// backend/src/services/import_service.go
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/username/painelfinanceiro/backend/src/logger"
	"github.com/username/painelfinanceiro/backend/src/models"
	"github.com/username/painelfinanceiro/backend/src/parsers"
	"github.com/username/painelfinanceiro/backend/src/parsers/ledger"
	"github.com/username/painelfinanceiro/backend/src/processors"
	"github.com/username/painelfinanceiro/backend/src/security/validation"
)

const processingProgressCap = 90

type pendingImport struct {
	data       *models.ImportedFinancialData
	record     models.ImportRecord
	duplicates int
	warnings   []string
}

type importServiceImpl struct {
	ledger      LedgerService
	classifier  processors.Classifier
	hierarchy   processors.HierarchyProcessor
	aggregation processors.AggregationProcessor
	now         func() time.Time

	mu       sync.Mutex
	state    ImportState
	run      int
	progress int
	message  string
	fileName string
	pending  *pendingImport
}

func NewImportService(
	ledgerService LedgerService,
	classifier processors.Classifier,
	hierarchy processors.HierarchyProcessor,
	aggregation processors.AggregationProcessor,
) ImportService {
	return &importServiceImpl{
		ledger:      ledgerService,
		classifier:  classifier,
		hierarchy:   hierarchy,
		aggregation: aggregation,
		now:         time.Now,
		state:       StateIdle,
	}
}

func (s *importServiceImpl) Status() ImportStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	status := ImportStatus{
		State:    s.state,
		Progress: s.progress,
		Message:  s.message,
		FileName: s.fileName,
	}
	if s.pending != nil {
		status.DuplicatesFound = s.pending.duplicates
	}
	return status
}

func (s *importServiceImpl) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state, _ = s.state.next(eventReset)
	s.run++
	s.progress = 0
	s.message = ""
	s.fileName = ""
	s.pending = nil
	logger.L.Info("Import state reset")
}

// ProcessImport reads src and either commits the result (no duplicates) or holds it
// for confirmation (duplicates found). Once the header is accepted the current
// snapshot and history are purged, so a later failure leaves the store empty.
// ctx is only checked before the file is read; row processing always runs to the end.
func (s *importServiceImpl) ProcessImport(ctx context.Context, src ImportSource) (*ImportOutcome, error) {
	if src.Reader == nil || strings.TrimSpace(src.FileName) == "" {
		return nil, ErrNoFileSelected
	}
	log := logger.FromContext(ctx).With("fileName", src.FileName)

	run, err := s.begin(src.FileName)
	if err != nil {
		log.Warn("Import rejected", "error", err)
		return nil, err
	}
	startTime := time.Now()
	log.Info("ProcessImport START")
	s.report(run, src.OnProgress, 0)

	if err := ctx.Err(); err != nil {
		s.cancel(run)
		log.Info("Import cancelled before reading", "error", err)
		return nil, err
	}
	if err := s.ensureCurrent(run); err != nil {
		return nil, s.fail(run, log, err)
	}

	parser, err := parsers.GetParser(src.FileName)
	if err != nil {
		return nil, s.fail(run, log, fmt.Errorf("%w: %v", ErrInvalidFormat, err))
	}
	rows, err := parser.Rows(src.Reader)
	if err != nil {
		return nil, s.fail(run, log, fmt.Errorf("%w: %v", ErrReadFailed, err))
	}
	if len(rows) == 0 || !ledger.ValidateHeader(rows[0]) {
		return nil, s.fail(run, log, fmt.Errorf("%w: expected header with ID, DESCRIÇÃO and month columns", ErrInvalidFormat))
	}
	monthColumns := ledger.MonthColumns(rows[0])

	previousIDs, err := s.purge(run)
	if err != nil {
		return nil, s.fail(run, log, err)
	}
	detector := processors.NewDuplicateDetector(previousIDs)
	log.Info("Previous snapshot and history purged")

	var categories, subcategories []models.FinancialRecord
	dataRows := rows[1:]
	lastReported := 0
	for i, fields := range dataRows {
		raw, ok := ledger.ParseRow(fields, monthColumns)
		if !ok {
			continue
		}
		name := validation.SanitizeDescription(raw.Description)
		if name == "" {
			log.Debug("Skipping row with empty description after sanitizing", "line", i+2, "id", raw.ID)
			continue
		}

		kind, class := s.classifier.Classify(raw.ID, name, raw.Values)
		record := models.FinancialRecord{
			ID:             raw.ID,
			Name:           name,
			Kind:           kind,
			Classification: class,
			MonthlyValues:  raw.Values,
			IsDuplicate:    detector.IsDuplicate(raw.ID),
		}
		if record.IsDuplicate {
			log.Debug("Duplicate record detected", "id", record.ID, "line", i+2)
		}
		if kind == models.KindSubcategory {
			subcategories = append(subcategories, record)
		} else {
			categories = append(categories, record)
		}

		if p := processingProgressCap * (i + 1) / len(dataRows); p > lastReported {
			lastReported = p
			s.report(run, src.OnProgress, p)
		}
	}

	months := make([]string, len(monthColumns))
	for i, mc := range monthColumns {
		months[i] = mc.Label
	}
	nodes := s.hierarchy.Attach(categories, subcategories)
	orphans := s.hierarchy.Orphans(categories, subcategories)
	var warnings []string
	if len(orphans) > 0 {
		orphanIDs := make([]string, len(orphans))
		for i, o := range orphans {
			orphanIDs[i] = o.ID
		}
		log.Warn("Subcategories without a parent category", "count", len(orphans), "ids", orphanIDs)
		warnings = append(warnings, fmt.Sprintf("%d subcategories have no parent category: %s", len(orphans), strings.Join(orphanIDs, ", ")))
	}

	importID := "imp-" + uuid.NewString()
	pending := &pendingImport{
		data: &models.ImportedFinancialData{
			ImportID:      importID,
			Months:        months,
			Categories:    nodes,
			Orphans:       orphans,
			MonthlyTotals: s.aggregation.Aggregate(categories, subcategories, months),
		},
		record: models.ImportRecord{
			ID:               importID,
			FileName:         src.FileName,
			DateImported:     s.now().UTC(),
			RowCount:         len(categories) + len(subcategories),
			CategoryCount:    len(categories),
			SubcategoryCount: len(subcategories),
			DuplicateCount:   detector.Count(),
			OrphanCount:      len(orphans),
		},
		duplicates: detector.Count(),
		warnings:   warnings,
	}

	outcome, err := s.finish(run, pending, log)
	if err != nil {
		return nil, err
	}
	s.report(run, src.OnProgress, 100)
	log.Info("ProcessImport END", "state", outcome.State, "rows", pending.record.RowCount, "duplicates", pending.duplicates, "duration", time.Since(startTime))
	return outcome, nil
}

// ConfirmPendingImport commits the dataset held in Review exactly as it was computed.
func (s *importServiceImpl) ConfirmPendingImport(ctx context.Context) (*ImportOutcome, error) {
	log := logger.FromContext(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()

	nextState, err := s.state.next(eventConfirm)
	if err != nil {
		return nil, err
	}
	pending := s.pending
	if pending == nil {
		return nil, ErrNoPendingImport
	}
	if err := s.commit(pending); err != nil {
		s.state = StateError
		s.message = err.Error()
		s.pending = nil
		log.Error("Failed to commit confirmed import", "importID", pending.record.ID, "error", err)
		return nil, err
	}
	s.state = nextState
	s.progress = 100
	s.message = "import confirmed"
	s.pending = nil
	log.Info("Pending import confirmed", "importID", pending.record.ID, "duplicates", pending.duplicates)
	return pending.outcome(StateSuccess, true), nil
}

func (s *importServiceImpl) begin(fileName string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	nextState, err := s.state.next(eventStart)
	if err != nil {
		return 0, err
	}
	s.state = nextState
	s.run++
	s.progress = 0
	s.message = ""
	s.fileName = fileName
	s.pending = nil
	return s.run, nil
}

// ensureCurrent fails with ErrImportSuperseded once Reset has replaced run.
func (s *importServiceImpl) ensureCurrent(run int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.run != run {
		return ErrImportSuperseded
	}
	return nil
}

// purge returns the ids of the current snapshot and clears the store. It holds the lock
// throughout so a run superseded by Reset can never clear data committed after it.
func (s *importServiceImpl) purge(run int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.run != run {
		return nil, ErrImportSuperseded
	}
	previous, err := s.ledger.GetCurrent()
	if err != nil {
		return nil, err
	}
	if err := s.ledger.ClearAll(); err != nil {
		return nil, err
	}
	return previous.Identifiers(), nil
}

// report records progress for run and forwards it to fn outside the lock.
func (s *importServiceImpl) report(run int, fn ProgressFunc, percent int) {
	s.mu.Lock()
	current := s.run == run
	if current && percent > s.progress {
		s.progress = percent
	}
	s.mu.Unlock()
	if current && fn != nil {
		fn(percent)
	}
}

func (s *importServiceImpl) cancel(run int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.run != run {
		return
	}
	s.state, _ = s.state.next(eventCancel)
	s.progress = 0
	s.message = "import cancelled"
}

func (s *importServiceImpl) fail(run int, log *slog.Logger, err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	log.Error("Import failed", "error", err)
	if s.run != run {
		return ErrImportSuperseded
	}
	s.state, _ = s.state.next(eventFail)
	s.message = err.Error()
	return err
}

func (s *importServiceImpl) finish(run int, pending *pendingImport, log *slog.Logger) (*ImportOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.run != run {
		log.Info("Discarding import result after reset")
		return nil, ErrImportSuperseded
	}

	if pending.duplicates > 0 {
		s.state, _ = s.state.next(eventDuplicates)
		s.pending = pending
		s.progress = 100
		s.message = fmt.Sprintf("%d duplicate records found, confirmation required", pending.duplicates)
		return pending.outcome(StateReview, false), nil
	}

	if err := s.commit(pending); err != nil {
		s.state, _ = s.state.next(eventFail)
		s.message = err.Error()
		log.Error("Failed to commit import", "error", err)
		return nil, err
	}
	s.state, _ = s.state.next(eventComplete)
	s.progress = 100
	s.message = "import completed"
	return pending.outcome(StateSuccess, true), nil
}

func (s *importServiceImpl) commit(p *pendingImport) error {
	return s.ledger.CommitImport(p.data, p.record)
}

func (p *pendingImport) outcome(state ImportState, committed bool) *ImportOutcome {
	out := &ImportOutcome{
		State:           state,
		DuplicatesFound: p.duplicates,
		Data:            p.data.Clone(),
		Warnings:        append([]string(nil), p.warnings...),
	}
	if committed {
		rec := p.record
		out.Record = &rec
	}
	return out
}
