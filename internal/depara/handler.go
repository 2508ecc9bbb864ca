package depara

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/demonstra-fin/demonstra/internal/platform/httpx"
)

// Handler serves the DEPARA management API.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs the DEPARA handler.
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

// MountRoutes registers the DEPARA routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/pending", h.Pending)
	r.Get("/classifications", h.Classifications)
	r.Put("/{accountCode}", h.Update)
}

// List renders the classification table for the reconciliation UI.
// Filters: status, group, search (conjunctive).
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	var filter Filter
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := Status(raw)
		if status != StatusOK && status != StatusPending {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "status must be OK or Pendente")
			return
		}
		filter.Status = &status
	}
	if group := r.URL.Query().Get("group"); group != "" {
		filter.Group = &group
	}
	filter.Search = r.URL.Query().Get("search")

	entries, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("list depara", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, ListResponse{Depara: entries, Total: len(entries)})
}

// Pending lists accounts awaiting manual classification.
func (h *Handler) Pending(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.Pending(r.Context())
	if err != nil {
		h.logger.Error("list pending", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, PendingResponse{Pending: entries, Total: len(entries)})
}

// Classifications lists all known classification labels.
func (h *Handler) Classifications(w http.ResponseWriter, r *http.Request) {
	labels, err := h.service.Classifications(r.Context())
	if err != nil {
		h.logger.Error("list classifications", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, ClassificationsResponse{Classifications: labels})
}

// Update confirms a classification for one account code.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	accountCode := chi.URLParam(r, "accountCode")

	var req UpdateClassificationRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	_, known := GroupFor(req.Classificacao)
	entry, err := h.service.Confirm(r.Context(), accountCode, req.Classificacao, req.GrupoDF)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			httpx.Problem(w, http.StatusNotFound, "Not Found", "account code not in DEPARA: "+accountCode)
		case errors.Is(err, ErrValidation):
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		default:
			h.logger.Error("confirm classification", slog.String("account_code", accountCode), slog.Any("error", err))
			httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		}
		return
	}

	h.logger.Info("classification confirmed",
		slog.String("account_code", accountCode),
		slog.String("classification", req.Classificacao))
	httpx.JSON(w, http.StatusOK, UpdateResponse{Entry: *entry, NewLineNeeded: !known})
}
