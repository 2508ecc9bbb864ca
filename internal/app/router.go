package app

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"github.com/demonstra-fin/demonstra/internal/balancete"
	"github.com/demonstra-fin/demonstra/internal/depara"
	"github.com/demonstra-fin/demonstra/internal/statement"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	DeparaHandler    *depara.Handler
	ImportHandler    *balancete.Handler
	StatementHandler *statement.Handler
}

// NewRouter constructs the chi.Router with application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		if params.ImportHandler != nil {
			r.Group(func(r chi.Router) {
				limit := 10
				if params.Config != nil && params.Config.ImportRateLimit > 0 {
					limit = params.Config.ImportRateLimit
				}
				r.Use(httprate.LimitByIP(limit, time.Minute))
				params.ImportHandler.MountRoutes(r)
			})
		}
		if params.DeparaHandler != nil {
			r.Route("/depara", params.DeparaHandler.MountRoutes)
		}
		if params.StatementHandler != nil {
			r.Route("/data", params.StatementHandler.MountRoutes)
		}
	})

	return r
}
