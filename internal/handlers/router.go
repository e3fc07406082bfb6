// internal/handlers/router.go
package handlers

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"taskhub/internal/auth"
	"taskhub/internal/handlers/tasks"
	"taskhub/internal/handlers/users"
	"taskhub/internal/middleware"
	"taskhub/internal/realtime"
	"taskhub/internal/repo"
)

func RegisterRoutes(mux *chi.Mux, store repo.Store, events realtime.Events, svc auth.Service) {
	th := tasks.New(store, events)
	uh := users.New(store)

	mux.Route("/api/auth", func(sr chi.Router) {
		// same window the legacy deployment used
		sr.Use(httprate.LimitByIP(100, 15*time.Minute))

		sr.Post("/register", svc.RegisterHandler())
		sr.Post("/login", svc.LoginHandler())
		sr.Post("/refresh-token", svc.RefreshHandler())
		sr.With(middleware.RequireAuth(store, svc.Tokens)).Post("/logout", svc.LogoutHandler())
		sr.With(middleware.RequireAuth(store, svc.Tokens)).Get("/me", svc.MeHandler())
	})

	mux.Route("/api/tasks", func(sr chi.Router) {
		// Apply auth to the whole group ONCE
		sr.Use(middleware.RequireAuth(store, svc.Tokens))

		sr.Get("/", th.List)
		sr.Post("/", th.Create)
		sr.Patch("/{taskID}", th.Update)
		sr.Delete("/{taskID}", th.Delete)
	})

	mux.Route("/api/users", func(sr chi.Router) {
		sr.Use(middleware.RequireAuth(store, svc.Tokens))

		sr.Get("/", uh.List)
	})
}
