package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	interviewHandler "github.com/zhouzirui/z-interview/internal/handler/interview"
	"github.com/zhouzirui/z-interview/internal/handler/live"
	"github.com/zhouzirui/z-interview/internal/handler/persona"
	middlewarePkg "github.com/zhouzirui/z-interview/internal/middleware"
	personaModel "github.com/zhouzirui/z-interview/internal/model/persona"
	"github.com/zhouzirui/z-interview/internal/service/archive"
	interviewService "github.com/zhouzirui/z-interview/internal/service/interview"
	"github.com/zhouzirui/z-interview/pkg/utils"
)

// NewRouter wires HTTP routes to core services. manager may be nil when no
// model is configured; persona and archive routes keep working.
func NewRouter(personas personaModel.Store, manager *interviewService.Manager, store archive.Store) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	// A nil *Manager must not become a non-nil Runner interface.
	var runner interviewHandler.Runner
	if manager != nil {
		runner = manager
	}

	personaHandler := persona.New(personas)
	interviewsHandler := interviewHandler.New(runner, store)
	liveHandler := live.New(runner, store)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]any{
			"status":   "ok",
			"ai":       runner != nil,
			"personas": len(personas.List()),
			"time":     time.Now().UTC().Format(time.RFC3339),
		})
	})

	r.Route("/api", func(api chi.Router) {
		personaHandler.RegisterRoutes(api)
		liveHandler.RegisterRoutes(api)
		interviewsHandler.RegisterRoutes(api)
	})

	return r
}
