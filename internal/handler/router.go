package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	authHandler "github.com/tanutchapol/backend-ChatBot/internal/handler/auth"
	"github.com/tanutchapol/backend-ChatBot/internal/handler/health"
	"github.com/tanutchapol/backend-ChatBot/internal/handler/session"
	sheetsHandler "github.com/tanutchapol/backend-ChatBot/internal/handler/sheets"
	"github.com/tanutchapol/backend-ChatBot/internal/handler/typhoon"
	middlewarePkg "github.com/tanutchapol/backend-ChatBot/internal/middleware"
)

// Routes bundles the handlers served by the gateway.
type Routes struct {
	Health  *health.Handler
	Sheets  *sheetsHandler.Handler
	Auth    *authHandler.Handler
	Typhoon *typhoon.Handler
	Session *session.Handler
}

// NewRouter wires HTTP routes to core services.
func NewRouter(routes Routes) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	routes.Health.RegisterRoutes(r)
	routes.Sheets.RegisterRoutes(r)

	r.Route("/auth", routes.Auth.RegisterRoutes)

	r.Route("/ai-typhon", func(api chi.Router) {
		routes.Typhoon.RegisterRoutes(api)
		routes.Session.RegisterRoutes(api)
	})

	return r
}
