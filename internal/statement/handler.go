package statement

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/demonstra-fin/demonstra/internal/platform/httpx"
)

// Handler serves the built statements and indicators.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs the statement handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers the data routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/dre", h.statement(KindDRE))
	r.Get("/bp", h.statement(KindBP))
	r.Get("/dfc", h.statement(KindDFC))
	r.Get("/indicators", h.Indicators)
	r.Get("/summary", h.Summary)
}

func (h *Handler) statement(kind Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		year, ok := h.year(w, r)
		if !ok {
			return
		}
		result, err := h.service.Statement(r.Context(), kind, year)
		if err != nil {
			h.logger.Error("build statement", slog.String("kind", string(kind)), slog.Int("year", year), slog.Any("error", err))
			httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
			return
		}
		httpx.JSON(w, http.StatusOK, result)
	}
}

// Indicators serves the derived indicator set for one year.
func (h *Handler) Indicators(w http.ResponseWriter, r *http.Request) {
	year, ok := h.year(w, r)
	if !ok {
		return
	}
	set, err := h.service.Indicators(r.Context(), year)
	if err != nil {
		h.logger.Error("build indicators", slog.Int("year", year), slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, set)
}

// Summary reports the periods and years with imported data.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context())
	if err != nil {
		h.logger.Error("build summary", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

// year resolves the ano query parameter, defaulting to the most recent
// year with imported data and finally the current year.
func (h *Handler) year(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("ano")
	if raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil || year < 2000 || year > 2100 {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "ano must be a year between 2000 and 2100")
			return 0, false
		}
		return year, true
	}
	if summary, err := h.service.Summary(r.Context()); err == nil && len(summary.Years) > 0 {
		return summary.Years[len(summary.Years)-1], true
	}
	return time.Now().Year(), true
}
