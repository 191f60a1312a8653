package models

// View is a tag identifying one of the flat, mutually exclusive
// application views. Tags persist as plain strings so the currentView
// slice round-trips storage unchanged.
type View string

const (
	ViewLanding     View = "landing"
	ViewLogin       View = "login"
	ViewSignup      View = "signup"
	ViewHome        View = "home"
	ViewArticle     View = "article"
	ViewCreate      View = "create"
	ViewProfile     View = "profile"
	ViewEditProfile View = "edit-profile"
	ViewSettings    View = "settings"
	ViewFeedback    View = "feedback"
	ViewTaskManager View = "task-manager"
	ViewSurvey      View = "survey"
)

// Views returns every valid view tag. The view router's tests iterate
// this list, so adding a tag here without a router branch fails the suite.
func Views() []View {
	return []View{
		ViewLanding,
		ViewLogin,
		ViewSignup,
		ViewHome,
		ViewArticle,
		ViewCreate,
		ViewProfile,
		ViewEditProfile,
		ViewSettings,
		ViewFeedback,
		ViewTaskManager,
		ViewSurvey,
	}
}

// Valid reports whether v is a known view tag.
func (v View) Valid() bool {
	for _, known := range Views() {
		if v == known {
			return true
		}
	}
	return false
}
