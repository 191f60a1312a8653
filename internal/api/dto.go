package api

// ViewChangeRequest selects the screen to show.
type ViewChangeRequest struct {
	View string `json:"view"`
}

// SearchRequest updates the persisted search query.
type SearchRequest struct {
	Query string `json:"query"`
}

// CommentRequest is the body for adding a comment to a post.
type CommentRequest struct {
	Text string `json:"text"`
}

// TaskRequest is the body for creating or updating a task.
type TaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// ThemeRequest switches the color theme.
type ThemeRequest struct {
	Theme string `json:"theme"`
}

// ToggleResponse reports the membership state after a like or bookmark
// toggle.
type ToggleResponse struct {
	ID     int64 `json:"id"`
	Active bool  `json:"active"`
}

// ShareResponse reports how a post was shared.
type ShareResponse struct {
	Method string `json:"method"`
	Title  string `json:"title"`
	Text   string `json:"text"`
	URL    string `json:"url"`
}

// ImageUploadResponse carries the compressed inline image.
type ImageUploadResponse struct {
	DataURL string `json:"dataUrl"`
	Size    int    `json:"size"`
}

// LocationsResponse wraps location suggestions.
type LocationsResponse struct {
	Suggestions []string `json:"suggestions"`
}
