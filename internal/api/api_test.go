package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/starford/pulse/internal/enrich"
	"github.com/starford/pulse/internal/models"
	"github.com/starford/pulse/internal/share"
	"github.com/starford/pulse/internal/state"
	"github.com/starford/pulse/internal/testutil"
)

// testEnv sets up a temp slice store, state store, and router for testing.
// authToken="" means disabled mode; non-empty means token mode.
func testEnv(t *testing.T, authToken string) (*state.Store, http.Handler) {
	t.Helper()

	store := testutil.TestStore(t)

	geo := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[{"name":"Lisbon","admin1":"Lisboa","country":"Portugal"}]}`))
	}))
	t.Cleanup(geo.Close)
	content := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"title":"alpha beta gamma delta epsilon","body":"body text"}`))
	}))
	t.Cleanup(content.Close)

	h := NewHandler(
		store,
		share.NewService(share.WithNative(func(share.Payload) error { return nil })),
		enrich.NewLocations(enrich.WithGeocodingURL(geo.URL)),
		enrich.NewTalkGenerator(enrich.WithContentURL(content.URL)),
		nil,
		"https://pulse.example.com",
	)
	return store, NewRouter(h, authToken != "", authToken, nil)
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreateAndGetPost(t *testing.T) {
	_, router := testEnv(t, "")

	w := doJSON(t, router, http.MethodPost, "/posts", models.PostDraft{
		Title:   "Quarterly All Hands",
		Excerpt: "Agenda and logistics.",
		Tags:    "allhands, q2",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}
	var created models.Newsletter
	_ = json.Unmarshal(w.Body.Bytes(), &created)
	if created.Author != "You" || created.Role != "Staff Member" || created.Date != "Just now" {
		t.Errorf("defaults not applied: %+v", created)
	}
	if len(created.Tags) != 2 {
		t.Errorf("tags = %v", created.Tags)
	}

	w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/posts/%d", created.ID), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	var got models.Newsletter
	_ = json.Unmarshal(w.Body.Bytes(), &got)
	if got.Title != "Quarterly All Hands" {
		t.Errorf("title = %q", got.Title)
	}
}

func TestCreatePostValidation(t *testing.T) {
	_, router := testEnv(t, "")
	w := doJSON(t, router, http.MethodPost, "/posts", models.PostDraft{Title: "  ", Excerpt: "x"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestGetPostNotFound(t *testing.T) {
	_, router := testEnv(t, "")
	if w := doJSON(t, router, http.MethodGet, "/posts/9999", nil); w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	if w := doJSON(t, router, http.MethodGet, "/posts/abc", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestLikeToggleDoesNotMutateStoredCount(t *testing.T) {
	store, router := testEnv(t, "")
	target := store.Snapshot().Newsletters[0]

	w := doJSON(t, router, http.MethodPost, fmt.Sprintf("/posts/%d/like", target.ID), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("like status = %d", w.Code)
	}
	var toggled ToggleResponse
	_ = json.Unmarshal(w.Body.Bytes(), &toggled)
	if !toggled.Active {
		t.Error("first toggle should report active")
	}

	w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/posts/%d", target.ID), nil)
	var got models.Newsletter
	_ = json.Unmarshal(w.Body.Bytes(), &got)
	if got.Likes != target.Likes {
		t.Errorf("stored likes mutated: %d, want %d", got.Likes, target.Likes)
	}

	w = doJSON(t, router, http.MethodPost, fmt.Sprintf("/posts/%d/like", target.ID), nil)
	_ = json.Unmarshal(w.Body.Bytes(), &toggled)
	if toggled.Active {
		t.Error("second toggle should report inactive")
	}
}

func TestCommentsFlow(t *testing.T) {
	store, router := testEnv(t, "")
	target := store.Snapshot().Newsletters[0]

	w := doJSON(t, router, http.MethodPost, fmt.Sprintf("/posts/%d/comments", target.ID), CommentRequest{Text: "Nice work"})
	if w.Code != http.StatusCreated {
		t.Fatalf("add comment status = %d, body = %s", w.Code, w.Body.String())
	}
	var n models.Newsletter
	_ = json.Unmarshal(w.Body.Bytes(), &n)
	if n.Comments != len(n.CommentsList) || n.Comments != target.Comments+1 {
		t.Errorf("counter = %d, list = %d", n.Comments, len(n.CommentsList))
	}

	if w := doJSON(t, router, http.MethodPost, fmt.Sprintf("/posts/%d/comments", target.ID), CommentRequest{Text: "   "}); w.Code != http.StatusBadRequest {
		t.Errorf("blank comment status = %d, want 400", w.Code)
	}

	last := n.CommentsList[len(n.CommentsList)-1]
	w = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/posts/%d/comments/%d", target.ID, last.ID), nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete comment status = %d", w.Code)
	}
}

func TestViewEndpoints(t *testing.T) {
	_, router := testEnv(t, "")

	w := doJSON(t, router, http.MethodGet, "/view", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("view status = %d", w.Code)
	}
	var d struct {
		View string `json:"view"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &d)
	if d.View != "landing" {
		t.Errorf("initial view = %q", d.View)
	}

	w = doJSON(t, router, http.MethodPost, "/view", ViewChangeRequest{View: "task-manager"})
	if w.Code != http.StatusOK {
		t.Fatalf("change view status = %d", w.Code)
	}
	_ = json.Unmarshal(w.Body.Bytes(), &d)
	if d.View != "task-manager" {
		t.Errorf("view = %q", d.View)
	}

	if w := doJSON(t, router, http.MethodPost, "/view", ViewChangeRequest{View: "nope"}); w.Code != http.StatusBadRequest {
		t.Errorf("unknown view status = %d, want 400", w.Code)
	}
}

func TestSearchPersistsSanitizedQuery(t *testing.T) {
	store, router := testEnv(t, "")
	w := doJSON(t, router, http.MethodPost, "/search", SearchRequest{Query: "{road}map"})
	if w.Code != http.StatusOK {
		t.Fatalf("search status = %d", w.Code)
	}
	if got := store.Snapshot().SearchQuery; got != "roadmap" {
		t.Errorf("persisted query = %q", got)
	}
}

func TestSessionFlow(t *testing.T) {
	store, router := testEnv(t, "")

	w := doJSON(t, router, http.MethodPost, "/session/signup", models.SignupDraft{
		Name: "Dana", Email: "d@example.com", Password: "a", ConfirmPassword: "b",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("mismatched passwords status = %d", w.Code)
	}

	w = doJSON(t, router, http.MethodPost, "/session/login", models.LoginDraft{Email: "d@example.com", Password: "pw"})
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d", w.Code)
	}
	if snap := store.Snapshot(); !snap.Authenticated || snap.CurrentView != models.ViewHome {
		t.Errorf("after login: %+v", snap.CurrentView)
	}

	w = doJSON(t, router, http.MethodPost, "/session/signout", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("signout status = %d", w.Code)
	}
	if snap := store.Snapshot(); snap.Authenticated || snap.CurrentView != models.ViewLanding {
		t.Errorf("after signout: auth=%v view=%q", snap.Authenticated, snap.CurrentView)
	}
}

func TestSettingsToggles(t *testing.T) {
	_, router := testEnv(t, "")

	w := doJSON(t, router, http.MethodPost, "/settings/notifications/push/toggle", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("toggle status = %d", w.Code)
	}
	var settings models.AccountSettings
	_ = json.Unmarshal(w.Body.Bytes(), &settings)
	if settings.Notifications.Push {
		t.Error("push still enabled after toggle")
	}
	if !settings.Notifications.Email || !settings.Notifications.Newsletter {
		t.Errorf("siblings changed: %+v", settings.Notifications)
	}

	if w := doJSON(t, router, http.MethodPost, "/settings/notifications/sms/toggle", nil); w.Code != http.StatusBadRequest {
		t.Errorf("unknown channel status = %d", w.Code)
	}

	w = doJSON(t, router, http.MethodPut, "/settings/theme", ThemeRequest{Theme: "dark"})
	if w.Code != http.StatusOK {
		t.Fatalf("theme status = %d", w.Code)
	}
	_ = json.Unmarshal(w.Body.Bytes(), &settings)
	if settings.Theme != models.ThemeDark {
		t.Errorf("theme = %q", settings.Theme)
	}
}

func TestTasksEndpoints(t *testing.T) {
	_, router := testEnv(t, "")

	w := doJSON(t, router, http.MethodPost, "/tasks", TaskRequest{Title: "Prep deck", Description: "for Friday"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create task status = %d", w.Code)
	}
	var created models.Task
	_ = json.Unmarshal(w.Body.Bytes(), &created)

	if w := doJSON(t, router, http.MethodPost, "/tasks", TaskRequest{Title: " "}); w.Code != http.StatusBadRequest {
		t.Errorf("blank task status = %d", w.Code)
	}

	w = doJSON(t, router, http.MethodPost, fmt.Sprintf("/tasks/%d/toggle", created.ID), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("toggle status = %d", w.Code)
	}
	var toggled models.Task
	_ = json.Unmarshal(w.Body.Bytes(), &toggled)
	if !toggled.Completed {
		t.Error("task not completed after toggle")
	}

	w = doJSON(t, router, http.MethodGet, "/tasks?filter=completed", nil)
	var listing struct {
		Tasks []models.Task `json:"tasks"`
		Total int           `json:"total"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &listing)
	if listing.Total != 1 {
		t.Errorf("completed total = %d", listing.Total)
	}

	w = doJSON(t, router, http.MethodPost, "/tasks/clear-completed", nil)
	_ = json.Unmarshal(w.Body.Bytes(), &listing)
	if listing.Total != 0 {
		t.Errorf("total after clear = %d", listing.Total)
	}
}

func TestFeedbackEndpoint(t *testing.T) {
	_, router := testEnv(t, "")

	w := doJSON(t, router, http.MethodPost, "/feedback", state.FeedbackDraft{Name: "Dana"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("invalid feedback status = %d", w.Code)
	}

	w = doJSON(t, router, http.MethodPost, "/feedback", state.FeedbackDraft{
		Name: "Dana", Email: "dana@example.com", Rating: 4, Comment: "smooth release",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("feedback status = %d, body = %s", w.Code, w.Body.String())
	}
	var created models.Feedback
	_ = json.Unmarshal(w.Body.Bytes(), &created)
	if created.Category != models.FeedbackGeneral || created.ID == 0 {
		t.Errorf("created = %+v", created)
	}
}

func TestSurveyEndpoint(t *testing.T) {
	_, router := testEnv(t, "")

	w := doJSON(t, router, http.MethodPost, "/survey", state.SurveyDraft{JobSatisfaction: 9})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("invalid survey status = %d", w.Code)
	}

	w = doJSON(t, router, http.MethodPost, "/survey", state.SurveyDraft{JobSatisfaction: 4, Recommend: 5})
	if w.Code != http.StatusCreated {
		t.Fatalf("survey status = %d", w.Code)
	}
	var resp struct {
		Relayed bool `json:"relayed"`
		Survey  struct {
			ID int64 `json:"id"`
		} `json:"survey"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Relayed {
		t.Error("relayed without a configured relay")
	}
	if resp.Survey.ID == 0 {
		t.Error("survey id missing")
	}
}

func TestSharePost(t *testing.T) {
	store, router := testEnv(t, "")
	target := store.Snapshot().Newsletters[0]

	w := doJSON(t, router, http.MethodPost, fmt.Sprintf("/posts/%d/share", target.ID), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("share status = %d", w.Code)
	}
	var resp ShareResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Method != "native" {
		t.Errorf("method = %q", resp.Method)
	}
	if resp.URL != fmt.Sprintf("https://pulse.example.com/posts/%d", target.ID) {
		t.Errorf("url = %q", resp.URL)
	}
}

func TestLocationsEndpoint(t *testing.T) {
	_, router := testEnv(t, "")
	w := doJSON(t, router, http.MethodGet, "/locations?q=lis", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("locations status = %d", w.Code)
	}
	var resp LocationsResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Suggestions) != 1 || resp.Suggestions[0] != "Lisbon, Lisboa Portugal" {
		t.Errorf("suggestions = %v", resp.Suggestions)
	}
}

func TestTechTalkEndpoint(t *testing.T) {
	_, router := testEnv(t, "")
	w := doJSON(t, router, http.MethodGet, "/techtalk", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("techtalk status = %d", w.Code)
	}
	var talk enrich.TechTalk
	_ = json.Unmarshal(w.Body.Bytes(), &talk)
	if talk.Title == "" || talk.Duration == "" {
		t.Errorf("talk = %+v", talk)
	}
}

func TestUploadImage(t *testing.T) {
	_, router := testEnv(t, "")

	var imgBuf bytes.Buffer
	if err := png.Encode(&imgBuf, image.NewRGBA(image.Rect(0, 0, 10, 10))); err != nil {
		t.Fatal(err)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "avatar.png")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write(imgBuf.Bytes()); err != nil {
		t.Fatal(err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/images", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("upload status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp ImageUploadResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if !strings.HasPrefix(resp.DataURL, "data:image/png;base64,") {
		t.Errorf("dataUrl prefix wrong: %.40q", resp.DataURL)
	}
}

func TestAuthMiddleware(t *testing.T) {
	_, router := testEnv(t, "secret-token")

	req := httptest.NewRequest(http.MethodGet, "/state", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("missing token status = %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/state", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("wrong token status = %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/state", nil)
	req.Header.Set("Authorization", "Bearer secret-token")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("valid token status = %d", w.Code)
	}
}
