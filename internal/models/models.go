// Package models defines the domain types for Pulse.
package models

// Comment is a reader comment owned by exactly one Newsletter.
// Its id is unique within the parent's comment list only.
type Comment struct {
	ID     int64  `json:"id"`
	Author string `json:"author"`
	Text   string `json:"text"`
	Date   string `json:"date"`
}

// Newsletter is a staff newsletter post. The Comments counter is
// denormalized from len(CommentsList) and must stay in sync on every
// comment mutation. Likes holds the base count only; the current user's
// like toggle lives in the liked-posts set, never here.
type Newsletter struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Author       string    `json:"author"`
	Role         string    `json:"role,omitempty"`
	Date         string    `json:"date"`
	Category     string    `json:"category"`
	Excerpt      string    `json:"excerpt"`
	Likes        int       `json:"likes"`
	Comments     int       `json:"comments"`
	Views        int       `json:"views"`
	Tags         []string  `json:"tags"`
	Image        string    `json:"image"`
	Images       []string  `json:"images,omitempty"`
	CommentsList []Comment `json:"commentsList"`
}

// Task is an independent to-do item with its own persisted collection.
type Task struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

// Feedback is one submitted platform-feedback record.
type Feedback struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
	Category  string `json:"category"`
	Timestamp string `json:"timestamp"`
}

// Feedback categories accepted by SubmitFeedback.
const (
	FeedbackGeneral = "general"
	FeedbackBug     = "bug"
	FeedbackFeature = "feature"
	FeedbackSupport = "support"
)

// SurveyResponse is one submitted employee survey. Ratings are 1-5.
type SurveyResponse struct {
	ID                int64  `json:"id"`
	JobSatisfaction   int    `json:"jobSatisfaction"`
	WorkLifeBalance   int    `json:"workLifeBalance"`
	TeamCollaboration int    `json:"teamCollaboration"`
	ManagementSupport int    `json:"managementSupport"`
	CareerDevelopment int    `json:"careerDevelopment"`
	WorkEnvironment   int    `json:"workEnvironment"`
	Feedback          string `json:"feedback"`
	Improvements      string `json:"improvements"`
	Recommend         int    `json:"recommend"`
	SubmittedAt       string `json:"submittedAt"`
}

// UserProfile is the singleton profile record, mutated wholesale via an
// edit-and-commit flow.
type UserProfile struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Location       string `json:"location"`
	ProfilePicture string `json:"profilePicture"`
	Department     string `json:"department"`
	JoinedDate     string `json:"joinedDate"`
}

// Themes accepted by AccountSettings.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// NotificationSettings are the per-channel notification toggles.
type NotificationSettings struct {
	Email      bool `json:"email"`
	Push       bool `json:"push"`
	Newsletter bool `json:"newsletter"`
}

// PrivacySettings are the profile privacy toggles.
type PrivacySettings struct {
	ProfileVisible bool `json:"profileVisible"`
	ShowActivity   bool `json:"showActivity"`
}

// AccountSettings is the singleton settings record. Any single field
// toggle rewrites the whole record; sibling fields must be preserved.
type AccountSettings struct {
	Theme         string               `json:"theme"`
	Notifications NotificationSettings `json:"notifications"`
	Privacy       PrivacySettings      `json:"privacy"`
}

// DefaultProfile returns the profile applied when no slice is persisted.
func DefaultProfile() UserProfile {
	return UserProfile{
		Department: "Product Team",
		JoinedDate: "January 2024",
	}
}

// DefaultSettings returns the settings applied when no slice is persisted.
func DefaultSettings() AccountSettings {
	return AccountSettings{
		Theme: ThemeLight,
		Notifications: NotificationSettings{
			Email:      true,
			Push:       true,
			Newsletter: true,
		},
		Privacy: PrivacySettings{
			ProfileVisible: true,
			ShowActivity:   true,
		},
	}
}

// LoginDraft is the ephemeral login form buffer.
type LoginDraft struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignupDraft is the ephemeral signup form buffer.
type SignupDraft struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	Department      string `json:"department"`
}

// PostDraft is the uncommitted new-post form buffer. Tags is the raw
// comma-separated input; it is split and cleaned only on submission.
type PostDraft struct {
	Title    string   `json:"title"`
	Category string   `json:"category"`
	Excerpt  string   `json:"excerpt"`
	Tags     string   `json:"tags"`
	Images   []string `json:"images"`
}

// EmptyPostDraft returns the draft state after a reset.
func EmptyPostDraft() PostDraft {
	return PostDraft{Category: "Product Updates", Images: []string{}}
}
