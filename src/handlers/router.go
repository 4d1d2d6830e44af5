package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/username/painelfinanceiro/backend/src/config"
	"github.com/username/painelfinanceiro/backend/src/utils"
)

// NewRouter wires the API routes. Mutating routes sit behind CSRFMiddleware.
func NewRouter(cfg *config.AppConfig, importHandler *ImportHandler, historyHandler *HistoryHandler, financeHandler *FinanceHandler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(ContextualLoggerMiddleware)
	r.Use(ProxyHeadersMiddleware)
	r.Use(CORSMiddleware(cfg.AllowedOrigins))
	r.Use(RateLimitMiddleware(cfg.RateLimitPerSecond, cfg.RateLimitBurst))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		utils.SendJSON(w, map[string]string{"message": "PainelFinanceiro Backend is running"}, http.StatusOK)
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/auth/csrf", GetCSRFToken)

		r.Group(func(r chi.Router) {
			r.Use(CSRFMiddleware)

			r.Post("/imports", importHandler.HandleImport)
			r.Post("/imports/confirm", importHandler.HandleConfirm)
			r.Post("/imports/reset", importHandler.HandleReset)
			r.Get("/imports/status", importHandler.HandleStatus)

			r.Get("/imports/history", historyHandler.HandleListHistory)
			r.Delete("/imports/history/{id}", historyHandler.HandleRemoveImport)
			r.Delete("/imports", historyHandler.HandleClearAll)

			r.Get("/finance/data", financeHandler.HandleGetData)
			r.Get("/finance/months", financeHandler.HandleGetMonths)
			r.Get("/finance/categories/{id}", financeHandler.HandleGetCategory)
			r.Get("/finance/summary", financeHandler.HandleGetSummary)
			r.Get("/finance/expenses/distribution", financeHandler.HandleGetExpenseDistribution)
			r.Get("/finance/expenses/top", financeHandler.HandleGetTopExpenses)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			utils.SendJSONError(w, "not found", http.StatusNotFound)
			return
		}
		http.NotFound(w, r)
	})
	return r
}
