package state

import (
	"fmt"
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/starford/pulse/internal/apperr"
	"github.com/starford/pulse/internal/feed"
	"github.com/starford/pulse/internal/models"
	"github.com/starford/pulse/internal/sanitize"
	"github.com/starford/pulse/internal/storage"
	"github.com/starford/pulse/internal/tasks"
)

// Store is the single source of truth for application state. Actions
// mutate the snapshot under a lock, flush the affected slices whole to
// the durable store, and then notify the change observer. Persistence
// failures are best-effort: the in-memory state stays authoritative.
type Store struct {
	mu       sync.Mutex
	kv       storage.Provider
	now      func() time.Time
	taskID   tasks.IDGen
	onChange func(keys ...string)
	snap     Snapshot
}

// Option configures a Store.
type Option func(*Store)

// WithClock injects the time source used for timestamps and clock ids.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithOnChange sets the observer called with the keys of every flushed
// slice. It runs outside the store lock.
func WithOnChange(fn func(keys ...string)) Option {
	return func(s *Store) { s.onChange = fn }
}

// Load constructs a Store by reading every persisted slice with a
// type-appropriate fallback: landing view, seed newsletters, default
// profile and settings, empty collections.
func Load(kv storage.Provider, opts ...Option) *Store {
	s := &Store{
		kv:  kv,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.taskID = func() int64 { return s.now().UnixMilli() }

	s.snap = Snapshot{
		CurrentView:       storage.ReadJSON(kv, KeyCurrentView, models.ViewLanding),
		LikedPosts:        storage.ReadJSON(kv, KeyLikedPosts, []int64{}),
		BookmarkedPosts:   storage.ReadJSON(kv, KeyBookmarkedPosts, []int64{}),
		LoginData:         storage.ReadJSON(kv, KeyLoginData, models.LoginDraft{}),
		SignupData:        storage.ReadJSON(kv, KeySignupData, models.SignupDraft{}),
		SelectedArticleID: storage.ReadJSON(kv, KeySelectedArticleID, int64(1)),
		Newsletters:       storage.ReadJSON(kv, KeyNewsletters, feed.Seed()),
		NewPost:           models.EmptyPostDraft(),
		UserProfile:       storage.ReadJSON(kv, KeyUserProfile, models.DefaultProfile()),
		AccountSettings:   storage.ReadJSON(kv, KeyAccountSettings, models.DefaultSettings()),
		SearchQuery:       storage.ReadJSON(kv, KeySearchQuery, ""),
		Tasks:             storage.ReadJSON(kv, KeyTasks, []models.Task{}),
		Feedbacks:         storage.ReadJSON(kv, KeyFeedbacks, []models.Feedback{}),
		Surveys:           storage.ReadJSON(kv, KeySurveys, []models.SurveyResponse{}),
		Authenticated:     storage.ReadJSON(kv, KeyAuthenticated, false),
	}
	return s
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.Clone()
}

// flushLocked serializes the named slices whole to the durable store.
// Must be called with the lock held.
func (s *Store) flushLocked(keys ...string) {
	for _, key := range keys {
		storage.WriteJSON(s.kv, key, s.sliceValueLocked(key))
	}
}

func (s *Store) sliceValueLocked(key string) any {
	switch key {
	case KeyCurrentView:
		return s.snap.CurrentView
	case KeyLikedPosts:
		return s.snap.LikedPosts
	case KeyBookmarkedPosts:
		return s.snap.BookmarkedPosts
	case KeyLoginData:
		return s.snap.LoginData
	case KeySignupData:
		return s.snap.SignupData
	case KeySelectedArticleID:
		return s.snap.SelectedArticleID
	case KeyNewsletters:
		return s.snap.Newsletters
	case KeyUserProfile:
		return s.snap.UserProfile
	case KeyAccountSettings:
		return s.snap.AccountSettings
	case KeySearchQuery:
		return s.snap.SearchQuery
	case KeyTasks:
		return s.snap.Tasks
	case KeyFeedbacks:
		return s.snap.Feedbacks
	case KeySurveys:
		return s.snap.Surveys
	case KeyAuthenticated:
		return s.snap.Authenticated
	default:
		return nil
	}
}

func (s *Store) notify(keys ...string) {
	if s.onChange != nil && len(keys) > 0 {
		s.onChange(keys...)
	}
}

// Reload re-reads one slice from the durable store into memory,
// keeping the current value as the fallback. Used by the store watcher
// when another process writes the slice: the external writer wins.
func (s *Store) Reload(key string) {
	s.mu.Lock()
	switch key {
	case KeyCurrentView:
		s.snap.CurrentView = storage.ReadJSON(s.kv, key, s.snap.CurrentView)
	case KeyLikedPosts:
		s.snap.LikedPosts = storage.ReadJSON(s.kv, key, s.snap.LikedPosts)
	case KeyBookmarkedPosts:
		s.snap.BookmarkedPosts = storage.ReadJSON(s.kv, key, s.snap.BookmarkedPosts)
	case KeyLoginData:
		s.snap.LoginData = storage.ReadJSON(s.kv, key, s.snap.LoginData)
	case KeySignupData:
		s.snap.SignupData = storage.ReadJSON(s.kv, key, s.snap.SignupData)
	case KeySelectedArticleID:
		s.snap.SelectedArticleID = storage.ReadJSON(s.kv, key, s.snap.SelectedArticleID)
	case KeyNewsletters:
		s.snap.Newsletters = storage.ReadJSON(s.kv, key, s.snap.Newsletters)
	case KeyUserProfile:
		s.snap.UserProfile = storage.ReadJSON(s.kv, key, s.snap.UserProfile)
	case KeyAccountSettings:
		s.snap.AccountSettings = storage.ReadJSON(s.kv, key, s.snap.AccountSettings)
	case KeySearchQuery:
		s.snap.SearchQuery = storage.ReadJSON(s.kv, key, s.snap.SearchQuery)
	case KeyTasks:
		s.snap.Tasks = storage.ReadJSON(s.kv, key, s.snap.Tasks)
	case KeyFeedbacks:
		s.snap.Feedbacks = storage.ReadJSON(s.kv, key, s.snap.Feedbacks)
	case KeySurveys:
		s.snap.Surveys = storage.ReadJSON(s.kv, key, s.snap.Surveys)
	case KeyAuthenticated:
		s.snap.Authenticated = storage.ReadJSON(s.kv, key, s.snap.Authenticated)
	default:
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	s.notify(key)
}

// ChangeView performs a pure view transition. Navigation is flat: any
// valid tag is reachable from any other. Unknown tags are rejected.
func (s *Store) ChangeView(v models.View) error {
	if !v.Valid() {
		return fmt.Errorf("state: unknown view %q: %w", v, apperr.ErrValidation)
	}
	s.mu.Lock()
	s.snap.CurrentView = v
	s.flushLocked(KeyCurrentView)
	s.mu.Unlock()
	s.notify(KeyCurrentView)
	return nil
}

// SelectArticle records the selected article id and opens the article
// view. The id is not checked against the collection; the view router's
// fallback-to-first rule covers stale references.
func (s *Store) SelectArticle(id int64) {
	s.mu.Lock()
	s.snap.SelectedArticleID = id
	s.snap.CurrentView = models.ViewArticle
	s.flushLocked(KeySelectedArticleID, KeyCurrentView)
	s.mu.Unlock()
	s.notify(KeySelectedArticleID, KeyCurrentView)
}

// ToggleLike flips the post's membership in the liked set and reports
// the new membership. It never touches the Newsletter record: the
// displayed count is derived as likes + membership.
func (s *Store) ToggleLike(postID int64) bool {
	s.mu.Lock()
	s.snap.LikedPosts = toggleMembership(s.snap.LikedPosts, postID)
	liked := contains(s.snap.LikedPosts, postID)
	s.flushLocked(KeyLikedPosts)
	s.mu.Unlock()
	s.notify(KeyLikedPosts)
	return liked
}

// ToggleBookmark flips the post's membership in the bookmarked set.
func (s *Store) ToggleBookmark(postID int64) bool {
	s.mu.Lock()
	s.snap.BookmarkedPosts = toggleMembership(s.snap.BookmarkedPosts, postID)
	marked := contains(s.snap.BookmarkedPosts, postID)
	s.flushLocked(KeyBookmarkedPosts)
	s.mu.Unlock()
	s.notify(KeyBookmarkedPosts)
	return marked
}

// SetSearchQuery stores the sanitized search input.
func (s *Store) SetSearchQuery(q string) {
	s.mu.Lock()
	s.snap.SearchQuery = sanitize.Query(q)
	s.flushLocked(KeySearchQuery)
	s.mu.Unlock()
	s.notify(KeySearchQuery)
}

// SetLoginDraft persists the login form buffer as the user types.
func (s *Store) SetLoginDraft(d models.LoginDraft) {
	s.mu.Lock()
	s.snap.LoginData = d
	s.flushLocked(KeyLoginData)
	s.mu.Unlock()
	s.notify(KeyLoginData)
}

// SetSignupDraft persists the signup form buffer as the user types.
func (s *Store) SetSignupDraft(d models.SignupDraft) {
	s.mu.Lock()
	s.snap.SignupData = d
	s.flushLocked(KeySignupData)
	s.mu.Unlock()
	s.notify(KeySignupData)
}

// Login accepts the submitted credentials and transitions to the home
// view. This is a UI-flow simulation: credentials are buffered, not
// validated against any identity provider.
func (s *Store) Login(d models.LoginDraft) {
	s.mu.Lock()
	s.snap.LoginData = d
	s.snap.Authenticated = true
	s.snap.CurrentView = models.ViewHome
	s.flushLocked(KeyLoginData, KeyAuthenticated, KeyCurrentView)
	s.mu.Unlock()
	s.notify(KeyLoginData, KeyAuthenticated, KeyCurrentView)
}

// Signup accepts the submitted form and transitions to the home view.
// The only enforced rule is that password equals confirmPassword.
func (s *Store) Signup(d models.SignupDraft) error {
	if d.Password != d.ConfirmPassword {
		return fmt.Errorf("state: passwords do not match: %w", apperr.ErrValidation)
	}
	s.mu.Lock()
	s.snap.SignupData = d
	s.snap.Authenticated = true
	s.snap.CurrentView = models.ViewHome
	s.flushLocked(KeySignupData, KeyAuthenticated, KeyCurrentView)
	s.mu.Unlock()
	s.notify(KeySignupData, KeyAuthenticated, KeyCurrentView)
	return nil
}

// SignOut clears the authenticated flag and returns to the landing view.
func (s *Store) SignOut() {
	s.mu.Lock()
	s.snap.Authenticated = false
	s.snap.CurrentView = models.ViewLanding
	s.flushLocked(KeyAuthenticated, KeyCurrentView)
	s.mu.Unlock()
	s.notify(KeyAuthenticated, KeyCurrentView)
}

// SetPostDraft replaces the ephemeral new-post buffer. The buffer is
// only merged into the collection on CreatePost.
func (s *Store) SetPostDraft(d models.PostDraft) {
	s.mu.Lock()
	s.snap.NewPost = d
	s.mu.Unlock()
}

// SetNewComment replaces the ephemeral comment buffer.
func (s *Store) SetNewComment(text string) {
	s.mu.Lock()
	s.snap.NewComment = text
	s.mu.Unlock()
}

// CreatePost validates and sanitizes the draft, prepends the new record,
// resets the draft buffer, and transitions to the home view. On error
// no state is mutated.
func (s *Store) CreatePost(d models.PostDraft) (models.Newsletter, error) {
	s.mu.Lock()
	list, created, err := feed.Create(s.snap.Newsletters, d)
	if err != nil {
		s.mu.Unlock()
		return models.Newsletter{}, err
	}
	s.snap.Newsletters = list
	s.snap.NewPost = models.EmptyPostDraft()
	s.snap.CurrentView = models.ViewHome
	s.flushLocked(KeyNewsletters, KeyCurrentView)
	s.mu.Unlock()
	s.notify(KeyNewsletters, KeyCurrentView)
	return created, nil
}

// UpdatePost replaces a newsletter wholesale; missing ids are a no-op.
func (s *Store) UpdatePost(n models.Newsletter) {
	s.mu.Lock()
	s.snap.Newsletters = feed.UpdateByID(s.snap.Newsletters, n.ID, n)
	s.flushLocked(KeyNewsletters)
	s.mu.Unlock()
	s.notify(KeyNewsletters)
}

// DeletePost removes a newsletter; missing ids are a no-op.
func (s *Store) DeletePost(id int64) {
	s.mu.Lock()
	s.snap.Newsletters = feed.DeleteByID(s.snap.Newsletters, id)
	s.flushLocked(KeyNewsletters)
	s.mu.Unlock()
	s.notify(KeyNewsletters)
}

// AddComment appends a comment to the newsletter and clears the comment
// buffer. A missing newsletter id is a no-op, matching the collection
// contract.
func (s *Store) AddComment(postID int64, text string) error {
	s.mu.Lock()
	list, err := feed.AddComment(s.snap.Newsletters, postID, feed.DefaultAuthor, text)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.snap.Newsletters = list
	s.snap.NewComment = ""
	s.flushLocked(KeyNewsletters)
	s.mu.Unlock()
	s.notify(KeyNewsletters)
	return nil
}

// DeleteComment removes a comment from the newsletter; double deletes
// leave the counter at the floor.
func (s *Store) DeleteComment(postID, commentID int64) {
	s.mu.Lock()
	s.snap.Newsletters = feed.RemoveComment(s.snap.Newsletters, postID, commentID)
	s.flushLocked(KeyNewsletters)
	s.mu.Unlock()
	s.notify(KeyNewsletters)
}

// UpdateProfile commits a wholesale profile edit and returns to the
// profile view. Free-text fields are sanitized.
func (s *Store) UpdateProfile(p models.UserProfile) {
	p.Name = sanitize.Text(p.Name)
	p.Email = sanitize.Text(p.Email)
	p.Location = sanitize.Text(p.Location)
	p.Department = sanitize.Text(p.Department)
	s.mu.Lock()
	s.snap.UserProfile = p
	s.snap.CurrentView = models.ViewProfile
	s.flushLocked(KeyUserProfile, KeyCurrentView)
	s.mu.Unlock()
	s.notify(KeyUserProfile, KeyCurrentView)
}

// SetTheme switches the color theme, rewriting the whole settings record.
func (s *Store) SetTheme(theme string) error {
	if theme != models.ThemeLight && theme != models.ThemeDark {
		return fmt.Errorf("state: unknown theme %q: %w", theme, apperr.ErrValidation)
	}
	s.mu.Lock()
	s.snap.AccountSettings.Theme = theme
	s.flushLocked(KeyAccountSettings)
	s.mu.Unlock()
	s.notify(KeyAccountSettings)
	return nil
}

// ToggleNotification flips one notification channel. The whole settings
// record is rewritten atomically; sibling fields are untouched.
func (s *Store) ToggleNotification(channel string) error {
	s.mu.Lock()
	n := &s.snap.AccountSettings.Notifications
	switch channel {
	case "email":
		n.Email = !n.Email
	case "push":
		n.Push = !n.Push
	case "newsletter":
		n.Newsletter = !n.Newsletter
	default:
		s.mu.Unlock()
		return fmt.Errorf("state: unknown notification channel %q: %w", channel, apperr.ErrValidation)
	}
	s.flushLocked(KeyAccountSettings)
	s.mu.Unlock()
	s.notify(KeyAccountSettings)
	return nil
}

// TogglePrivacy flips one privacy field, rewriting the whole record.
func (s *Store) TogglePrivacy(field string) error {
	s.mu.Lock()
	p := &s.snap.AccountSettings.Privacy
	switch field {
	case "profileVisible":
		p.ProfileVisible = !p.ProfileVisible
	case "showActivity":
		p.ShowActivity = !p.ShowActivity
	default:
		s.mu.Unlock()
		return fmt.Errorf("state: unknown privacy field %q: %w", field, apperr.ErrValidation)
	}
	s.flushLocked(KeyAccountSettings)
	s.mu.Unlock()
	s.notify(KeyAccountSettings)
	return nil
}

// AddTask appends a task to the shared collection.
func (s *Store) AddTask(title, description string) (models.Task, error) {
	s.mu.Lock()
	list, created, err := tasks.Add(s.snap.Tasks, title, description, s.taskID)
	if err != nil {
		s.mu.Unlock()
		return models.Task{}, err
	}
	s.snap.Tasks = list
	s.flushLocked(KeyTasks)
	s.mu.Unlock()
	s.notify(KeyTasks)
	return created, nil
}

// UpdateTask replaces a task's title and description.
func (s *Store) UpdateTask(id int64, title, description string) error {
	s.mu.Lock()
	list, err := tasks.Update(s.snap.Tasks, id, title, description)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.snap.Tasks = list
	s.flushLocked(KeyTasks)
	s.mu.Unlock()
	s.notify(KeyTasks)
	return nil
}

// ToggleTask flips a task's completed flag.
func (s *Store) ToggleTask(id int64) {
	s.mu.Lock()
	s.snap.Tasks = tasks.ToggleCompleted(s.snap.Tasks, id)
	s.flushLocked(KeyTasks)
	s.mu.Unlock()
	s.notify(KeyTasks)
}

// DeleteTask removes a task; missing ids are a no-op.
func (s *Store) DeleteTask(id int64) {
	s.mu.Lock()
	s.snap.Tasks = tasks.DeleteByID(s.snap.Tasks, id)
	s.flushLocked(KeyTasks)
	s.mu.Unlock()
	s.notify(KeyTasks)
}

// ClearCompletedTasks removes every completed task.
func (s *Store) ClearCompletedTasks() {
	s.mu.Lock()
	s.snap.Tasks = tasks.ClearCompleted(s.snap.Tasks)
	s.flushLocked(KeyTasks)
	s.mu.Unlock()
	s.notify(KeyTasks)
}

// FeedbackDraft is the submitted feedback form.
type FeedbackDraft struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Rating   int    `json:"rating"`
	Comment  string `json:"comment"`
	Category string `json:"category"`
}

// Validate enforces the required-rating rule (a zero rating is the
// unselected state) along with the required identity fields.
func (d FeedbackDraft) Validate() error {
	err := validation.Errors{
		"name":     validation.Validate(d.Name, validation.Required),
		"email":    validation.Validate(d.Email, validation.Required, is.Email),
		"rating":   validation.Validate(d.Rating, validation.Required, validation.Min(1), validation.Max(5)),
		"category": validation.Validate(d.Category, validation.In(models.FeedbackGeneral, models.FeedbackBug, models.FeedbackFeature, models.FeedbackSupport)),
	}.Filter()
	if err != nil {
		return fmt.Errorf("state: %w: %v", apperr.ErrValidation, err)
	}
	return nil
}

// SubmitFeedback validates the form, prepends the record, and returns to
// the home view. On error no state is mutated.
func (s *Store) SubmitFeedback(d FeedbackDraft) (models.Feedback, error) {
	if err := d.Validate(); err != nil {
		return models.Feedback{}, err
	}
	if d.Category == "" {
		d.Category = models.FeedbackGeneral
	}
	s.mu.Lock()
	f := models.Feedback{
		ID:        s.now().UnixMilli(),
		Name:      sanitize.Text(d.Name),
		Email:     sanitize.Text(d.Email),
		Rating:    d.Rating,
		Comment:   sanitize.Text(d.Comment),
		Category:  d.Category,
		Timestamp: s.now().UTC().Format(time.RFC3339),
	}
	s.snap.Feedbacks = append([]models.Feedback{f}, s.snap.Feedbacks...)
	s.snap.CurrentView = models.ViewHome
	s.flushLocked(KeyFeedbacks, KeyCurrentView)
	s.mu.Unlock()
	s.notify(KeyFeedbacks, KeyCurrentView)
	return f, nil
}

// SurveyDraft is the submitted employee survey form. Ratings are 0-5;
// zero means unanswered and is accepted.
type SurveyDraft struct {
	JobSatisfaction   int    `json:"jobSatisfaction"`
	WorkLifeBalance   int    `json:"workLifeBalance"`
	TeamCollaboration int    `json:"teamCollaboration"`
	ManagementSupport int    `json:"managementSupport"`
	CareerDevelopment int    `json:"careerDevelopment"`
	WorkEnvironment   int    `json:"workEnvironment"`
	Feedback          string `json:"feedback"`
	Improvements      string `json:"improvements"`
	Recommend         int    `json:"recommend"`
}

// Validate bounds every rating to the 0-5 scale.
func (d SurveyDraft) Validate() error {
	ratings := map[string]int{
		"jobSatisfaction":   d.JobSatisfaction,
		"workLifeBalance":   d.WorkLifeBalance,
		"teamCollaboration": d.TeamCollaboration,
		"managementSupport": d.ManagementSupport,
		"careerDevelopment": d.CareerDevelopment,
		"workEnvironment":   d.WorkEnvironment,
		"recommend":         d.Recommend,
	}
	errs := validation.Errors{}
	for field, v := range ratings {
		errs[field] = validation.Validate(v, validation.Min(0), validation.Max(5))
	}
	if err := errs.Filter(); err != nil {
		return fmt.Errorf("state: %w: %v", apperr.ErrValidation, err)
	}
	return nil
}

// SubmitSurvey persists the response (newest-first) and returns to the
// home view. Relaying the response by email is the caller's concern and
// is best-effort only.
func (s *Store) SubmitSurvey(d SurveyDraft) (models.SurveyResponse, error) {
	if err := d.Validate(); err != nil {
		return models.SurveyResponse{}, err
	}
	s.mu.Lock()
	r := models.SurveyResponse{
		ID:                s.now().UnixMilli(),
		JobSatisfaction:   d.JobSatisfaction,
		WorkLifeBalance:   d.WorkLifeBalance,
		TeamCollaboration: d.TeamCollaboration,
		ManagementSupport: d.ManagementSupport,
		CareerDevelopment: d.CareerDevelopment,
		WorkEnvironment:   d.WorkEnvironment,
		Feedback:          sanitize.Text(d.Feedback),
		Improvements:      sanitize.Text(d.Improvements),
		Recommend:         d.Recommend,
		SubmittedAt:       s.now().UTC().Format(time.RFC3339),
	}
	s.snap.Surveys = append([]models.SurveyResponse{r}, s.snap.Surveys...)
	s.snap.CurrentView = models.ViewHome
	s.flushLocked(KeySurveys, KeyCurrentView)
	s.mu.Unlock()
	s.notify(KeySurveys, KeyCurrentView)
	return r, nil
}
