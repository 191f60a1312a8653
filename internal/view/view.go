// Package view renders a state snapshot into the descriptor for the
// current screen. Resolution is pure: it never mutates the snapshot and
// derives everything it shows, including per-user like counts.
package view

import (
	"github.com/starford/pulse/internal/feed"
	"github.com/starford/pulse/internal/models"
	"github.com/starford/pulse/internal/state"
	"github.com/starford/pulse/internal/tasks"
)

// Card is a newsletter decorated with the current user's relationship
// to it. DisplayedLikes is the stored count plus the like membership.
type Card struct {
	models.Newsletter
	DisplayedLikes int  `json:"displayedLikes"`
	Liked          bool `json:"liked"`
	Bookmarked     bool `json:"bookmarked"`
}

// Stat is one headline figure on the home dashboard.
type Stat struct {
	Label  string `json:"label"`
	Value  string `json:"value"`
	Change string `json:"change"`
}

// Descriptor is everything a client needs to draw the current view.
// Only the fields the view uses are populated.
type Descriptor struct {
	View        models.View             `json:"view"`
	Cards       []Card                  `json:"cards,omitempty"`
	Article     *Card                   `json:"article,omitempty"`
	Login       *models.LoginDraft      `json:"login,omitempty"`
	Signup      *models.SignupDraft     `json:"signup,omitempty"`
	Draft       *models.PostDraft       `json:"draft,omitempty"`
	Profile     *models.UserProfile     `json:"profile,omitempty"`
	Settings    *models.AccountSettings `json:"settings,omitempty"`
	Tasks       []models.Task           `json:"tasks,omitempty"`
	SearchQuery string                  `json:"searchQuery,omitempty"`
	Stats       []Stat                  `json:"stats,omitempty"`
	Categories  []string                `json:"categories,omitempty"`
	Surveys     []models.SurveyResponse `json:"surveys,omitempty"`
	Feedbacks   []models.Feedback       `json:"feedbacks,omitempty"`
}

// homeStats are the static dashboard figures.
func homeStats() []Stat {
	return []Stat{
		{Label: "Active Staff", Value: "247", Change: "+12%"},
		{Label: "Newsletter Views", Value: "1.2K", Change: "+8%"},
		{Label: "Discussions", Value: "89", Change: "+23%"},
		{Label: "Engagement", Value: "94%", Change: "+5%"},
	}
}

// Resolve maps a snapshot to its view descriptor. An unknown view tag
// in the snapshot falls back to the home view rather than failing, so
// a stale persisted tag never wedges the app.
func Resolve(s state.Snapshot) Descriptor {
	switch s.CurrentView {
	case models.ViewLanding:
		return Descriptor{View: models.ViewLanding}

	case models.ViewLogin:
		login := s.LoginData
		return Descriptor{View: models.ViewLogin, Login: &login}

	case models.ViewSignup:
		signup := s.SignupData
		return Descriptor{View: models.ViewSignup, Signup: &signup}

	case models.ViewHome:
		return home(s)

	case models.ViewArticle:
		return article(s)

	case models.ViewCreate:
		draft := s.NewPost
		return Descriptor{View: models.ViewCreate, Draft: &draft, Categories: feed.Categories()}

	case models.ViewProfile:
		profile := s.UserProfile
		return Descriptor{
			View:    models.ViewProfile,
			Profile: &profile,
			Cards:   cards(s, bookmarkedOnly(s)),
		}

	case models.ViewEditProfile:
		profile := s.UserProfile
		return Descriptor{View: models.ViewEditProfile, Profile: &profile}

	case models.ViewSettings:
		settings := s.AccountSettings
		return Descriptor{View: models.ViewSettings, Settings: &settings}

	case models.ViewTaskManager:
		return Descriptor{View: models.ViewTaskManager, Tasks: tasks.List(s.Tasks, tasks.FilterAll)}

	case models.ViewFeedback:
		return Descriptor{View: models.ViewFeedback, Feedbacks: s.Feedbacks}

	case models.ViewSurvey:
		return Descriptor{View: models.ViewSurvey, Surveys: s.Surveys}

	default:
		return home(s)
	}
}

func home(s state.Snapshot) Descriptor {
	return Descriptor{
		View:        models.ViewHome,
		Cards:       cards(s, feed.Filter(s.Newsletters, s.SearchQuery)),
		SearchQuery: s.SearchQuery,
		Stats:       homeStats(),
		Categories:  feed.Categories(),
	}
}

// article resolves the selected newsletter, falling back to the first
// one when the selected id no longer exists. Article is nil only when
// the collection is empty.
func article(s state.Snapshot) Descriptor {
	d := Descriptor{View: models.ViewArticle}
	n, ok := feed.FindByID(s.Newsletters, s.SelectedArticleID)
	if !ok {
		if len(s.Newsletters) == 0 {
			return d
		}
		n = s.Newsletters[0]
	}
	card := decorate(s, n)
	d.Article = &card
	return d
}

func cards(s state.Snapshot, list []models.Newsletter) []Card {
	out := make([]Card, 0, len(list))
	for _, n := range list {
		out = append(out, decorate(s, n))
	}
	return out
}

func decorate(s state.Snapshot, n models.Newsletter) Card {
	liked := containsID(s.LikedPosts, n.ID)
	displayed := n.Likes
	if liked {
		displayed++
	}
	return Card{
		Newsletter:     n,
		DisplayedLikes: displayed,
		Liked:          liked,
		Bookmarked:     containsID(s.BookmarkedPosts, n.ID),
	}
}

func bookmarkedOnly(s state.Snapshot) []models.Newsletter {
	out := make([]models.Newsletter, 0, len(s.BookmarkedPosts))
	for _, n := range s.Newsletters {
		if containsID(s.BookmarkedPosts, n.ID) {
			out = append(out, n)
		}
	}
	return out
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
