package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/pulse/internal/apperr"
	"github.com/starford/pulse/internal/enrich"
	"github.com/starford/pulse/internal/feed"
	"github.com/starford/pulse/internal/images"
	"github.com/starford/pulse/internal/mail"
	"github.com/starford/pulse/internal/models"
	"github.com/starford/pulse/internal/share"
	"github.com/starford/pulse/internal/state"
	"github.com/starford/pulse/internal/tasks"
	"github.com/starford/pulse/internal/view"
)

const maxBodyBytes = 10 << 20

// Handler holds API route handlers.
type Handler struct {
	store     *state.Store
	shares    *share.Service
	locations *enrich.Locations
	talks     *enrich.TalkGenerator
	relay     *mail.Relay
	baseURL   string
}

// NewHandler creates a new Handler. relay may be nil when no mail
// credentials are configured.
func NewHandler(store *state.Store, shares *share.Service, locations *enrich.Locations, talks *enrich.TalkGenerator, relay *mail.Relay, baseURL string) *Handler {
	return &Handler{
		store:     store,
		shares:    shares,
		locations: locations,
		talks:     talks,
		relay:     relay,
		baseURL:   baseURL,
	}
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id, err == nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return false
	}
	return true
}

// writeActionError maps a store error to a response status.
func writeActionError(w http.ResponseWriter, err error, op string) {
	if errors.Is(err, apperr.ErrValidation) {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	if errors.Is(err, apperr.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	slog.Error(op+" failed", slog.String("error", err.Error()))
	writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
}

// State handles GET /api/state.
func (h *Handler) State(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Snapshot())
}

// View handles GET /api/view: the resolved descriptor for the current screen.
func (h *Handler) View(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, view.Resolve(h.store.Snapshot()))
}

// ChangeView handles POST /api/view.
func (h *Handler) ChangeView(w http.ResponseWriter, r *http.Request) {
	var req ViewChangeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.store.ChangeView(models.View(req.View)); err != nil {
		writeActionError(w, err, "change view")
		return
	}
	writeJSON(w, http.StatusOK, view.Resolve(h.store.Snapshot()))
}

// Search handles POST /api/search: persists the query and returns the
// filtered home view.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if !decodeBody(w, r, &req) {
		return
	}
	h.store.SetSearchQuery(req.Query)
	writeJSON(w, http.StatusOK, view.Resolve(h.store.Snapshot()))
}

// ListPosts handles GET /api/posts with an optional transient ?q filter.
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	snap := h.store.Snapshot()
	list := feed.Filter(snap.Newsletters, r.URL.Query().Get("q"))
	writeJSON(w, http.StatusOK, map[string]any{
		"posts": list,
		"total": len(list),
	})
}

// GetPost handles GET /api/posts/{id}.
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid post id"))
		return
	}
	n, found := feed.FindByID(h.store.Snapshot().Newsletters, id)
	if !found {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	writeJSON(w, http.StatusOK, n)
}

// CreatePost handles POST /api/posts.
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req models.PostDraft
	if !decodeBody(w, r, &req) {
		return
	}
	created, err := h.store.CreatePost(req)
	if err != nil {
		writeActionError(w, err, "create post")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// UpdatePost handles PUT /api/posts/{id}.
func (h *Handler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid post id"))
		return
	}
	var req models.Newsletter
	if !decodeBody(w, r, &req) {
		return
	}
	if _, found := feed.FindByID(h.store.Snapshot().Newsletters, id); !found {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	req.ID = id
	h.store.UpdatePost(req)
	writeJSON(w, http.StatusOK, req)
}

// DeletePost handles DELETE /api/posts/{id}.
func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid post id"))
		return
	}
	h.store.DeletePost(id)
	w.WriteHeader(http.StatusNoContent)
}

// SelectPost handles POST /api/posts/{id}/select: opens the article view.
func (h *Handler) SelectPost(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid post id"))
		return
	}
	h.store.SelectArticle(id)
	writeJSON(w, http.StatusOK, view.Resolve(h.store.Snapshot()))
}

// ToggleLike handles POST /api/posts/{id}/like.
func (h *Handler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid post id"))
		return
	}
	writeJSON(w, http.StatusOK, ToggleResponse{ID: id, Active: h.store.ToggleLike(id)})
}

// ToggleBookmark handles POST /api/posts/{id}/bookmark.
func (h *Handler) ToggleBookmark(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid post id"))
		return
	}
	writeJSON(w, http.StatusOK, ToggleResponse{ID: id, Active: h.store.ToggleBookmark(id)})
}

// AddComment handles POST /api/posts/{id}/comments.
func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid post id"))
		return
	}
	var req CommentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.store.AddComment(id, req.Text); err != nil {
		writeActionError(w, err, "add comment")
		return
	}
	n, found := feed.FindByID(h.store.Snapshot().Newsletters, id)
	if !found {
		// Missing post is a silent no-op in the collection; report it here.
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	writeJSON(w, http.StatusCreated, n)
}

// DeleteComment handles DELETE /api/posts/{id}/comments/{commentID}.
func (h *Handler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid post id"))
		return
	}
	commentID, ok := pathID(r, "commentID")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid comment id"))
		return
	}
	h.store.DeleteComment(id, commentID)
	w.WriteHeader(http.StatusNoContent)
}

// SharePost handles POST /api/posts/{id}/share.
func (h *Handler) SharePost(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid post id"))
		return
	}
	n, found := feed.FindByID(h.store.Snapshot().Newsletters, id)
	if !found {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	payload := share.PayloadFor(n, h.baseURL)
	method, err := h.shares.Share(payload)
	if err != nil {
		slog.Error("share failed", slog.Int64("post", id), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("share failed"))
		return
	}
	writeJSON(w, http.StatusOK, ShareResponse{
		Method: method,
		Title:  payload.Title,
		Text:   payload.Text,
		URL:    payload.URL,
	})
}

// Login handles POST /api/session/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginDraft
	if !decodeBody(w, r, &req) {
		return
	}
	h.store.Login(req)
	writeJSON(w, http.StatusOK, view.Resolve(h.store.Snapshot()))
}

// Signup handles POST /api/session/signup.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req models.SignupDraft
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.store.Signup(req); err != nil {
		writeActionError(w, err, "signup")
		return
	}
	writeJSON(w, http.StatusOK, view.Resolve(h.store.Snapshot()))
}

// SignOut handles POST /api/session/signout.
func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	h.store.SignOut()
	writeJSON(w, http.StatusOK, view.Resolve(h.store.Snapshot()))
}

// GetProfile handles GET /api/profile.
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Snapshot().UserProfile)
}

// UpdateProfile handles PUT /api/profile.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req models.UserProfile
	if !decodeBody(w, r, &req) {
		return
	}
	h.store.UpdateProfile(req)
	writeJSON(w, http.StatusOK, h.store.Snapshot().UserProfile)
}

// GetSettings handles GET /api/settings.
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Snapshot().AccountSettings)
}

// SetTheme handles PUT /api/settings/theme.
func (h *Handler) SetTheme(w http.ResponseWriter, r *http.Request) {
	var req ThemeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.store.SetTheme(req.Theme); err != nil {
		writeActionError(w, err, "set theme")
		return
	}
	writeJSON(w, http.StatusOK, h.store.Snapshot().AccountSettings)
}

// ToggleNotification handles POST /api/settings/notifications/{channel}/toggle.
func (h *Handler) ToggleNotification(w http.ResponseWriter, r *http.Request) {
	if err := h.store.ToggleNotification(chi.URLParam(r, "channel")); err != nil {
		writeActionError(w, err, "toggle notification")
		return
	}
	writeJSON(w, http.StatusOK, h.store.Snapshot().AccountSettings)
}

// TogglePrivacy handles POST /api/settings/privacy/{field}/toggle.
func (h *Handler) TogglePrivacy(w http.ResponseWriter, r *http.Request) {
	if err := h.store.TogglePrivacy(chi.URLParam(r, "field")); err != nil {
		writeActionError(w, err, "toggle privacy")
		return
	}
	writeJSON(w, http.StatusOK, h.store.Snapshot().AccountSettings)
}

// ListTasks handles GET /api/tasks with an optional ?filter.
func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	filter := r.URL.Query().Get("filter")
	if filter == "" {
		filter = tasks.FilterAll
	}
	list := tasks.List(h.store.Snapshot().Tasks, filter)
	writeJSON(w, http.StatusOK, map[string]any{
		"tasks": list,
		"total": len(list),
	})
}

// CreateTask handles POST /api/tasks.
func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req TaskRequest
	if !decodeBody(w, r, &req) {
		return
	}
	created, err := h.store.AddTask(req.Title, req.Description)
	if err != nil {
		writeActionError(w, err, "create task")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// UpdateTask handles PUT /api/tasks/{id}.
func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid task id"))
		return
	}
	var req TaskRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if _, found := tasks.FindByID(h.store.Snapshot().Tasks, id); !found {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	if err := h.store.UpdateTask(id, req.Title, req.Description); err != nil {
		writeActionError(w, err, "update task")
		return
	}
	updated, _ := tasks.FindByID(h.store.Snapshot().Tasks, id)
	writeJSON(w, http.StatusOK, updated)
}

// ToggleTask handles POST /api/tasks/{id}/toggle.
func (h *Handler) ToggleTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid task id"))
		return
	}
	h.store.ToggleTask(id)
	task, found := tasks.FindByID(h.store.Snapshot().Tasks, id)
	if !found {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// DeleteTask handles DELETE /api/tasks/{id}.
func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid task id"))
		return
	}
	h.store.DeleteTask(id)
	w.WriteHeader(http.StatusNoContent)
}

// ClearCompletedTasks handles POST /api/tasks/clear-completed.
func (h *Handler) ClearCompletedTasks(w http.ResponseWriter, r *http.Request) {
	h.store.ClearCompletedTasks()
	list := tasks.List(h.store.Snapshot().Tasks, tasks.FilterAll)
	writeJSON(w, http.StatusOK, map[string]any{
		"tasks": list,
		"total": len(list),
	})
}

// SubmitFeedback handles POST /api/feedback.
func (h *Handler) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	var req state.FeedbackDraft
	if !decodeBody(w, r, &req) {
		return
	}
	created, err := h.store.SubmitFeedback(req)
	if err != nil {
		writeActionError(w, err, "submit feedback")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// SubmitSurvey handles POST /api/survey. The response is persisted
// first; the mail relay is best-effort and never fails the request.
func (h *Handler) SubmitSurvey(w http.ResponseWriter, r *http.Request) {
	var req state.SurveyDraft
	if !decodeBody(w, r, &req) {
		return
	}
	created, err := h.store.SubmitSurvey(req)
	if err != nil {
		writeActionError(w, err, "submit survey")
		return
	}
	relayed := false
	if h.relay != nil {
		transport, sendErr := h.relay.SendSurvey(r.Context(), created)
		if sendErr != nil {
			slog.Warn("survey relay failed", slog.String("error", sendErr.Error()))
		} else {
			slog.Info("survey relayed", slog.String("transport", transport))
			relayed = true
		}
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"survey":  created,
		"relayed": relayed,
	})
}

// Locations handles GET /api/locations?q=.
func (h *Handler) Locations(w http.ResponseWriter, r *http.Request) {
	suggestions := h.locations.Search(r.Context(), r.URL.Query().Get("q"))
	if suggestions == nil {
		suggestions = []string{}
	}
	writeJSON(w, http.StatusOK, LocationsResponse{Suggestions: suggestions})
}

// TechTalk handles GET /api/techtalk.
func (h *Handler) TechTalk(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.talks.Generate(r.Context()))
}

// UploadImage handles POST /api/images (multipart/form-data, field "file").
// The image is downscaled and returned as an inline data URL.
func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseMultipartForm(maxBodyBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("file too large or invalid multipart"))
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("missing 'file' field in multipart form"))
		return
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read file"))
		return
	}
	dataURL, err := images.Compress(raw, images.MaxDimension)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("unsupported image"))
		return
	}
	writeJSON(w, http.StatusCreated, ImageUploadResponse{
		DataURL: dataURL,
		Size:    len(dataURL),
	})
}
