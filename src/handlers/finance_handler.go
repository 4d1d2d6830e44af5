// backend/src/handlers/finance_handler.go
package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/username/painelfinanceiro/backend/src/logger"
	"github.com/username/painelfinanceiro/backend/src/security/validation"
	"github.com/username/painelfinanceiro/backend/src/services"
	"github.com/username/painelfinanceiro/backend/src/utils"
)

type FinanceHandler struct {
	ledgerService services.LedgerService
}

func NewFinanceHandler(service services.LedgerService) *FinanceHandler {
	return &FinanceHandler{ledgerService: service}
}

// monthParam reads the optional "month" query parameter. An empty value is allowed.
func monthParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	month := strings.TrimSpace(r.URL.Query().Get("month"))
	if month == "" {
		return "", true
	}
	if err := validation.ValidateMonthLabel(month); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return "", false
	}
	return month, true
}

// HandleGetData returns the whole current snapshot with ETag support.
func (h *FinanceHandler) HandleGetData(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	data := h.ledgerService.GetImportedFinancialData()
	if data == nil {
		utils.SendJSONError(w, "Ainda não existem dados importados.", http.StatusNotFound)
		return
	}

	currentETag, etagErr := utils.GenerateETag(data)
	if etagErr != nil {
		log.Error("Failed to generate ETag for financial data", "error", etagErr)
	}
	w.Header().Set("Cache-Control", "no-cache, private")

	if etagErr == nil && currentETag != "" {
		quotedETag := fmt.Sprintf("\"%s\"", currentETag)
		w.Header().Set("ETag", quotedETag)
		for _, cETag := range strings.Split(r.Header.Get("If-None-Match"), ",") {
			if strings.TrimSpace(cETag) == quotedETag {
				log.Debug("ETag match for financial data", "etag", currentETag)
				w.WriteHeader(http.StatusNotModified)
				return
			}
		}
	}
	utils.SendJSON(w, data, http.StatusOK)
}

func (h *FinanceHandler) HandleGetMonths(w http.ResponseWriter, r *http.Request) {
	months, err := h.ledgerService.AvailableMonths()
	if err != nil {
		logger.FromContext(r.Context()).Error("Error retrieving available months", "error", err)
		utils.SendJSONError(w, "Error retrieving available months", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, months, http.StatusOK)
}

// HandleGetCategory resolves a category or subcategory for ?month=.
func (h *FinanceHandler) HandleGetCategory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := validation.ValidateRecordID(id); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	month, ok := monthParam(w, r)
	if !ok {
		return
	}
	if month == "" {
		utils.SendJSONError(w, "month is required", http.StatusBadRequest)
		return
	}

	result := h.ledgerService.GetCategoryDataForMonth(id, month)
	if result == nil {
		utils.SendJSONError(w, fmt.Sprintf("Categoria %s não encontrada para %s.", id, month), http.StatusNotFound)
		return
	}
	utils.SendJSON(w, result, http.StatusOK)
}

func (h *FinanceHandler) HandleGetSummary(w http.ResponseWriter, r *http.Request) {
	month, ok := monthParam(w, r)
	if !ok {
		return
	}
	summary, err := h.ledgerService.GetMonthSummary(month)
	if err != nil {
		logger.FromContext(r.Context()).Error("Error retrieving month summary", "month", month, "error", err)
		utils.SendJSONError(w, "Error retrieving summary", http.StatusInternalServerError)
		return
	}
	if summary == nil {
		utils.SendJSONError(w, "Sem dados para o mês indicado.", http.StatusNotFound)
		return
	}
	utils.SendJSON(w, summary, http.StatusOK)
}

func (h *FinanceHandler) HandleGetExpenseDistribution(w http.ResponseWriter, r *http.Request) {
	month, ok := monthParam(w, r)
	if !ok {
		return
	}
	shares, err := h.ledgerService.GetExpenseDistribution(month)
	if err != nil {
		logger.FromContext(r.Context()).Error("Error retrieving expense distribution", "month", month, "error", err)
		utils.SendJSONError(w, "Error retrieving expense distribution", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, shares, http.StatusOK)
}

func (h *FinanceHandler) HandleGetTopExpenses(w http.ResponseWriter, r *http.Request) {
	month, ok := monthParam(w, r)
	if !ok {
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > validation.MaxTopExpensesLimit {
			utils.SendJSONError(w, fmt.Sprintf("limit must be between 1 and %d", validation.MaxTopExpensesLimit), http.StatusBadRequest)
			return
		}
		limit = n
	}
	top, err := h.ledgerService.GetTopExpenses(month, limit)
	if err != nil {
		logger.FromContext(r.Context()).Error("Error retrieving top expenses", "month", month, "error", err)
		utils.SendJSONError(w, "Error retrieving top expenses", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, top, http.StatusOK)
}
