package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/jdalton/taskwell-api/internal/api"
	apimiddleware "github.com/jdalton/taskwell-api/internal/api/middleware"
)

// setupRouter builds the route tree with its middleware chain.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(apimiddleware.TraceMiddleware)

	authHandler := api.NewAuthHandler(app.userStore, app.jwtService, app.passwordVerifier)
	authMiddleware := apimiddleware.NewAuthMiddleware(app.jwtService)
	taskHandler := api.NewTaskHandler(app.taskService)
	tagHandler := api.NewTagHandler(app.tagStore)
	reminderHandler := api.NewReminderHandler(app.reminderStore, app.taskStore)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/refresh", authHandler.RefreshToken)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Get("/tasks", taskHandler.List)
			r.Post("/tasks", taskHandler.Create)
			r.Get("/tasks/{id}", taskHandler.Get)
			r.Patch("/tasks/{id}", taskHandler.Update)
			r.Delete("/tasks/{id}", taskHandler.Delete)
			r.Post("/tasks/{id}/toggle-complete", taskHandler.ToggleComplete)
			r.Get("/tasks/{id}/history", taskHandler.History)

			r.Get("/tags", tagHandler.List)
			r.Post("/tags", tagHandler.Create)
			r.Get("/tags/{id}", tagHandler.Get)
			r.Delete("/tags/{id}", tagHandler.Delete)

			r.Get("/reminders", reminderHandler.List)
			r.Get("/reminders/{id}", reminderHandler.Get)
			r.Delete("/reminders/{id}", reminderHandler.Delete)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
