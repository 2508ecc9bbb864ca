package balancete

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/demonstra-fin/demonstra/internal/platform/httpx"
)

// Handler serves the import API.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs the import handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(),
	}
}

// MountRoutes registers the import routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/import", h.Import)
	r.Get("/import/status", h.Status)
}

// Import reconciles and persists a parsed trial-balance batch.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	var req ImportRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	report, err := h.service.Import(r.Context(), req.Ano, req.Periodos, req.lineItems())
	if err != nil {
		h.logger.Error("import batch", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

// Status returns recent import summaries.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, StatusResponse{Processings: h.service.RecentImports()})
}
