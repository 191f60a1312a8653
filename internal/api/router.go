package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(h *Handler, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// State and view resolution.
	r.Get("/state", h.State)
	r.Get("/view", h.View)
	r.Post("/view", h.ChangeView)
	r.Post("/search", h.Search)

	// Posts CRUD and interactions.
	r.Get("/posts", h.ListPosts)
	r.Post("/posts", h.CreatePost)
	r.Get("/posts/{id}", h.GetPost)
	r.Put("/posts/{id}", h.UpdatePost)
	r.Delete("/posts/{id}", h.DeletePost)
	r.Post("/posts/{id}/select", h.SelectPost)
	r.Post("/posts/{id}/like", h.ToggleLike)
	r.Post("/posts/{id}/bookmark", h.ToggleBookmark)
	r.Post("/posts/{id}/comments", h.AddComment)
	r.Delete("/posts/{id}/comments/{commentID}", h.DeleteComment)
	r.Post("/posts/{id}/share", h.SharePost)

	// Session flow.
	r.Post("/session/login", h.Login)
	r.Post("/session/signup", h.Signup)
	r.Post("/session/signout", h.SignOut)

	// Profile and settings.
	r.Get("/profile", h.GetProfile)
	r.Put("/profile", h.UpdateProfile)
	r.Get("/settings", h.GetSettings)
	r.Put("/settings/theme", h.SetTheme)
	r.Post("/settings/notifications/{channel}/toggle", h.ToggleNotification)
	r.Post("/settings/privacy/{field}/toggle", h.TogglePrivacy)

	// Tasks.
	r.Get("/tasks", h.ListTasks)
	r.Post("/tasks", h.CreateTask)
	r.Post("/tasks/clear-completed", h.ClearCompletedTasks)
	r.Put("/tasks/{id}", h.UpdateTask)
	r.Post("/tasks/{id}/toggle", h.ToggleTask)
	r.Delete("/tasks/{id}", h.DeleteTask)

	// Feedback and survey.
	r.Post("/feedback", h.SubmitFeedback)
	r.Post("/survey", h.SubmitSurvey)

	// Enrichment and uploads.
	r.Get("/locations", h.Locations)
	r.Get("/techtalk", h.TechTalk)
	r.Post("/images", h.UploadImage)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
