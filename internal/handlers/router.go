package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"matrimony-backend/internal/middleware"
)

// Routes bundles the handlers mounted on the router
type Routes struct {
	Auth           middleware.Authenticator
	AllowedOrigins []string
	Profiles       *ProfileHandler
	Users          *UserHandler
	Moderation     *ModerationHandler
	WebSocket      *WebSocketHandler
}

// NewRouter builds the HTTP router
func NewRouter(routes Routes) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)

	origins := routes.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	if routes.WebSocket != nil {
		r.Get("/ws", routes.WebSocket.HandleWebSocket)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.AuthMiddleware(routes.Auth))

		r.Post("/sessions", routes.Users.StartSession)
		r.Put("/users/me/push-token", routes.Users.UpdatePushToken)

		r.Route("/profile", func(r chi.Router) {
			r.Get("/", routes.Profiles.GetProfile)
			r.Post("/", routes.Profiles.CreateProfile)
			r.Post("/ready", routes.Profiles.MarkReady)
			r.Get("/{section}", routes.Profiles.GetSection)
			r.Put("/{section}", routes.Profiles.UpdateSection)
		})

		r.Route("/moderation", func(r chi.Router) {
			r.Use(middleware.RequireModerator)
			r.Get("/pending", routes.Moderation.ListPending)
			r.Post("/pending/{id}/approve", routes.Moderation.Approve)
			r.Post("/pending/{id}/reject", routes.Moderation.Reject)
			r.Get("/profiles/{userID}", routes.Moderation.GetProfile)
		})
	})

	return r
}
