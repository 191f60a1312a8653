// Package state owns the single in-memory application state and keeps it
// consistent with the durable slice store. Every mutating action is
// applied immutably to the snapshot and followed by a whole-slice flush.
package state

import (
	"sort"

	"github.com/starford/pulse/internal/models"
)

// Persisted slice keys. Each key holds one independently serialized
// value; there is no cross-slice referential integrity at the storage
// layer (the view router's fallback rule is the only safety net).
const (
	KeyCurrentView       = "currentView"
	KeyLikedPosts        = "likedPosts"
	KeyBookmarkedPosts   = "bookmarkedPosts"
	KeyLoginData         = "loginData"
	KeySignupData        = "signupData"
	KeySelectedArticleID = "selectedArticleId"
	KeyNewsletters       = "newsletters"
	KeyUserProfile       = "userProfile"
	KeyAccountSettings   = "accountSettings"
	KeySearchQuery       = "searchQuery"
	KeyTasks             = "tasks"
	KeyFeedbacks         = "feedbacks"
	KeySurveys           = "surveys"
	KeyAuthenticated     = "isAuthenticated"
)

// Keys returns every persisted slice key.
func Keys() []string {
	return []string{
		KeyCurrentView,
		KeyLikedPosts,
		KeyBookmarkedPosts,
		KeyLoginData,
		KeySignupData,
		KeySelectedArticleID,
		KeyNewsletters,
		KeyUserProfile,
		KeyAccountSettings,
		KeySearchQuery,
		KeyTasks,
		KeyFeedbacks,
		KeySurveys,
		KeyAuthenticated,
	}
}

// Snapshot is one coherent view of the whole application state. The
// NewPost and NewComment buffers are ephemeral form state and are not
// persisted; everything else maps one-to-one onto a slice key.
type Snapshot struct {
	CurrentView       models.View             `json:"currentView"`
	LikedPosts        []int64                 `json:"likedPosts"`
	BookmarkedPosts   []int64                 `json:"bookmarkedPosts"`
	LoginData         models.LoginDraft       `json:"loginData"`
	SignupData        models.SignupDraft      `json:"signupData"`
	SelectedArticleID int64                   `json:"selectedArticleId"`
	Newsletters       []models.Newsletter     `json:"newsletters"`
	NewPost           models.PostDraft        `json:"newPost"`
	NewComment        string                  `json:"newComment"`
	UserProfile       models.UserProfile      `json:"userProfile"`
	AccountSettings   models.AccountSettings  `json:"accountSettings"`
	SearchQuery       string                  `json:"searchQuery"`
	Tasks             []models.Task           `json:"tasks"`
	Feedbacks         []models.Feedback       `json:"feedbacks"`
	Surveys           []models.SurveyResponse `json:"surveys"`
	Authenticated     bool                    `json:"isAuthenticated"`
}

// Clone returns a deep copy so callers can hold a snapshot without
// racing against later actions.
func (s Snapshot) Clone() Snapshot {
	out := s
	out.LikedPosts = append([]int64{}, s.LikedPosts...)
	out.BookmarkedPosts = append([]int64{}, s.BookmarkedPosts...)
	out.Newsletters = make([]models.Newsletter, len(s.Newsletters))
	for i, n := range s.Newsletters {
		n.Tags = append([]string{}, n.Tags...)
		n.Images = append([]string(nil), n.Images...)
		n.CommentsList = append([]models.Comment{}, n.CommentsList...)
		out.Newsletters[i] = n
	}
	out.NewPost.Images = append([]string{}, s.NewPost.Images...)
	out.Tasks = append([]models.Task{}, s.Tasks...)
	out.Feedbacks = append([]models.Feedback{}, s.Feedbacks...)
	out.Surveys = append([]models.SurveyResponse{}, s.Surveys...)
	return out
}

// toggleMembership flips id's membership in the sorted set ids.
func toggleMembership(ids []int64, id int64) []int64 {
	out := make([]int64, 0, len(ids)+1)
	found := false
	for _, v := range ids {
		if v == id {
			found = true
			continue
		}
		out = append(out, v)
	}
	if !found {
		out = append(out, id)
		sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	}
	return out
}

// contains reports id's membership in ids.
func contains(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
