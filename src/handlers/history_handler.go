package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/username/painelfinanceiro/backend/src/logger"
	"github.com/username/painelfinanceiro/backend/src/security/validation"
	"github.com/username/painelfinanceiro/backend/src/services"
	"github.com/username/painelfinanceiro/backend/src/utils"
)

type HistoryHandler struct {
	ledgerService services.LedgerService
}

func NewHistoryHandler(service services.LedgerService) *HistoryHandler {
	return &HistoryHandler{ledgerService: service}
}

func (h *HistoryHandler) HandleListHistory(w http.ResponseWriter, r *http.Request) {
	utils.SendJSON(w, h.ledgerService.GetImportHistory(), http.StatusOK)
}

// HandleRemoveImport deletes one history entry, and the snapshot if it came from that import.
func (h *HistoryHandler) HandleRemoveImport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := validation.ValidateStringNotEmpty(id, "import id"); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := validation.ValidateStringMaxLength(id, validation.DefaultMaxStringLength, "import id"); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if !h.ledgerService.RemoveImport(id) {
		logger.FromContext(r.Context()).Info("Import not removed", "importID", id)
		utils.SendJSONError(w, "Importação não encontrada.", http.StatusNotFound)
		return
	}
	utils.SendJSON(w, map[string]interface{}{"removed": true, "id": id}, http.StatusOK)
}

func (h *HistoryHandler) HandleClearAll(w http.ResponseWriter, r *http.Request) {
	if !h.ledgerService.ClearAllImportedData() {
		utils.SendJSONError(w, "Erro ao apagar os dados importados.", http.StatusInternalServerError)
		return
	}
	logger.FromContext(r.Context()).Info("Imported data cleared by request")
	w.WriteHeader(http.StatusNoContent)
}
