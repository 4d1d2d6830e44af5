// backend/src/handlers/import_handler.go
package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/username/painelfinanceiro/backend/src/config"
	"github.com/username/painelfinanceiro/backend/src/logger"
	"github.com/username/painelfinanceiro/backend/src/security/validation"
	"github.com/username/painelfinanceiro/backend/src/services"
	"github.com/username/painelfinanceiro/backend/src/utils"
)

type ImportHandler struct {
	importService services.ImportService
	maxUploadSize int64
}

func NewImportHandler(service services.ImportService, maxUploadSize int64) *ImportHandler {
	if maxUploadSize <= 0 {
		maxUploadSize = config.DefaultMaxUploadSizeBytes
	}
	return &ImportHandler{
		importService: service,
		maxUploadSize: maxUploadSize,
	}
}

// HandleImport accepts a multipart "file" field and runs the import synchronously.
// The previous snapshot and history are discarded once the file header is accepted.
func (h *ImportHandler) HandleImport(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		log.Warn("Failed to parse multipart form or request too large", "error", err, "limit", h.maxUploadSize)
		utils.SendJSONError(w, fmt.Sprintf("Falha ao processar ou o ficheiro é demasiado grande (max %d MB)", h.maxUploadSize/(1024*1024)), http.StatusBadRequest)
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		log.Warn("Failed to retrieve file from request", "error", err)
		utils.SendJSONError(w, "Nenhum ficheiro selecionado. Use o campo 'file'.", http.StatusBadRequest)
		return
	}
	defer file.Close()

	clientContentType := fileHeader.Header.Get("Content-Type")
	if err := validation.ValidateClientContentType(clientContentType); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	detected, err := validation.ValidateFileContentByMagicBytes(file, fileHeader.Filename)
	if err != nil {
		log.Warn("Server-side file content validation failed", "filename", fileHeader.Filename, "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	log.Info("Processing import request", "filename", fileHeader.Filename, "size", fileHeader.Size, "detectedType", detected)

	outcome, err := h.importService.ProcessImport(r.Context(), services.ImportSource{
		FileName: fileHeader.Filename,
		Reader:   file,
	})
	if err != nil {
		h.sendImportError(w, r, err)
		return
	}
	utils.SendJSON(w, outcome, http.StatusOK)
}

// HandleConfirm commits an import that is waiting in review.
func (h *ImportHandler) HandleConfirm(w http.ResponseWriter, r *http.Request) {
	outcome, err := h.importService.ConfirmPendingImport(r.Context())
	if err != nil {
		h.sendImportError(w, r, err)
		return
	}
	utils.SendJSON(w, outcome, http.StatusOK)
}

func (h *ImportHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	h.importService.Reset()
	utils.SendJSON(w, h.importService.Status(), http.StatusOK)
}

func (h *ImportHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	utils.SendJSON(w, h.importService.Status(), http.StatusOK)
}

func (h *ImportHandler) sendImportError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())
	switch {
	case errors.Is(err, services.ErrNoFileSelected):
		utils.SendJSONError(w, "Nenhum ficheiro selecionado.", http.StatusBadRequest)
	case errors.Is(err, services.ErrInvalidFormat):
		utils.SendJSONError(w, "Formato de ficheiro inválido. O cabeçalho deve conter ID, DESCRIÇÃO e colunas de meses (ex.: jan/25).", http.StatusUnprocessableEntity)
	case errors.Is(err, services.ErrReadFailed):
		utils.SendJSONError(w, "Não foi possível ler o ficheiro.", http.StatusBadRequest)
	case errors.Is(err, services.ErrImportInProgress):
		utils.SendJSONError(w, "Já existe uma importação em curso.", http.StatusConflict)
	case errors.Is(err, services.ErrNoPendingImport):
		utils.SendJSONError(w, "Não existe nenhuma importação a aguardar confirmação.", http.StatusConflict)
	case errors.Is(err, services.ErrImportSuperseded):
		utils.SendJSONError(w, "A importação foi reposta antes de terminar.", http.StatusConflict)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		log.Info("Import request cancelled by client", "error", err)
		utils.SendJSONError(w, "Importação cancelada.", http.StatusRequestTimeout)
	default:
		log.Error("Import failed", "error", err)
		msg := "Erro ao guardar os dados importados."
		if requestID, ok := GetRequestIDFromContext(r.Context()); ok {
			msg += " Referência: " + requestID
		}
		utils.SendJSONError(w, msg, http.StatusInternalServerError)
	}
}
