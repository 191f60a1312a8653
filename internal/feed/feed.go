// Package feed holds the Newsletter collection and its mutation
// operations. All operations are immutable: they return a new collection
// and never modify their input, so a failed action leaves state untouched.
package feed

import (
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/pulse/internal/apperr"
	"github.com/starford/pulse/internal/models"
	"github.com/starford/pulse/internal/sanitize"
)

// Defaults applied to records created through the platform.
const (
	DefaultAuthor    = "You"
	DefaultRole      = "Staff Member"
	DefaultDate      = "Just now"
	PlaceholderImage = "/api/placeholder/400/200"
)

// ValidateDraft rejects drafts whose title or excerpt is empty or
// whitespace-only.
func ValidateDraft(d models.PostDraft) error {
	err := validation.Errors{
		"title":   validation.Validate(strings.TrimSpace(d.Title), validation.Required),
		"excerpt": validation.Validate(strings.TrimSpace(d.Excerpt), validation.Required),
	}.Filter()
	if err != nil {
		return fmt.Errorf("feed: %w: %v", apperr.ErrValidation, err)
	}
	return nil
}

// NextID returns a fresh newsletter id: one past the highest id ever
// observed in the collection, so ids never collide even after deletions.
func NextID(list []models.Newsletter) int64 {
	var max int64
	for _, n := range list {
		if n.ID > max {
			max = n.ID
		}
	}
	return max + 1
}

func nextCommentID(list []models.Comment) int64 {
	var max int64
	for _, c := range list {
		if c.ID > max {
			max = c.ID
		}
	}
	return max + 1
}

// Create builds a newsletter from the draft and prepends it
// (newest-first). All free text is sanitized before storage; the primary
// image is the first upload, or the placeholder when none was uploaded.
func Create(list []models.Newsletter, d models.PostDraft) ([]models.Newsletter, models.Newsletter, error) {
	if err := ValidateDraft(d); err != nil {
		return nil, models.Newsletter{}, err
	}

	image := PlaceholderImage
	if len(d.Images) > 0 {
		image = d.Images[0]
	}

	n := models.Newsletter{
		ID:           NextID(list),
		Title:        sanitize.Text(d.Title),
		Author:       DefaultAuthor,
		Role:         DefaultRole,
		Date:         DefaultDate,
		Category:     d.Category,
		Excerpt:      sanitize.Text(d.Excerpt),
		Tags:         SplitTags(d.Tags),
		Image:        image,
		Images:       d.Images,
		CommentsList: []models.Comment{},
	}

	out := make([]models.Newsletter, 0, len(list)+1)
	out = append(out, n)
	out = append(out, list...)
	return out, n, nil
}

// UpdateByID replaces the record matching id. A missing id is a no-op,
// not an error: a concurrent writer may have deleted the record.
func UpdateByID(list []models.Newsletter, id int64, replacement models.Newsletter) []models.Newsletter {
	out := make([]models.Newsletter, len(list))
	copy(out, list)
	for i, n := range out {
		if n.ID == id {
			replacement.ID = id
			out[i] = replacement
			break
		}
	}
	return out
}

// DeleteByID filters out the record matching id; missing ids are a no-op.
func DeleteByID(list []models.Newsletter, id int64) []models.Newsletter {
	out := make([]models.Newsletter, 0, len(list))
	for _, n := range list {
		if n.ID != id {
			out = append(out, n)
		}
	}
	return out
}

// AddComment appends a sanitized comment to the matching newsletter and
// increments its counter by exactly one. Other newsletters are untouched.
// Empty or whitespace-only text is a validation error.
func AddComment(list []models.Newsletter, newsletterID int64, author, text string) ([]models.Newsletter, error) {
	clean := sanitize.Text(text)
	if clean == "" {
		return nil, fmt.Errorf("feed: comment text required: %w", apperr.ErrValidation)
	}

	out := make([]models.Newsletter, len(list))
	copy(out, list)
	for i, n := range out {
		if n.ID != newsletterID {
			continue
		}
		comments := make([]models.Comment, len(n.CommentsList), len(n.CommentsList)+1)
		copy(comments, n.CommentsList)
		comments = append(comments, models.Comment{
			ID:     nextCommentID(comments),
			Author: author,
			Text:   clean,
			Date:   DefaultDate,
		})
		n.CommentsList = comments
		n.Comments = len(comments)
		out[i] = n
		break
	}
	return out, nil
}

// RemoveComment removes the comment from the matching newsletter and
// keeps the counter equal to the list length, never below zero. Removing
// an already-removed comment changes nothing.
func RemoveComment(list []models.Newsletter, newsletterID, commentID int64) []models.Newsletter {
	out := make([]models.Newsletter, len(list))
	copy(out, list)
	for i, n := range out {
		if n.ID != newsletterID {
			continue
		}
		comments := make([]models.Comment, 0, len(n.CommentsList))
		for _, c := range n.CommentsList {
			if c.ID != commentID {
				comments = append(comments, c)
			}
		}
		n.CommentsList = comments
		n.Comments = len(comments)
		out[i] = n
		break
	}
	return out
}

// SplitTags turns raw comma-separated input into clean tag tokens:
// split, trimmed, sanitized, empties dropped.
func SplitTags(raw string) []string {
	out := []string{}
	for _, tok := range strings.Split(raw, ",") {
		if tag := sanitize.Text(tok); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}

// Filter returns the newsletters whose title contains query,
// case-insensitively. An empty query returns the full collection.
func Filter(list []models.Newsletter, query string) []models.Newsletter {
	if query == "" {
		return list
	}
	q := strings.ToLower(query)
	out := []models.Newsletter{}
	for _, n := range list {
		if strings.Contains(strings.ToLower(n.Title), q) {
			out = append(out, n)
		}
	}
	return out
}

// FindByID returns the newsletter matching id.
func FindByID(list []models.Newsletter, id int64) (models.Newsletter, bool) {
	for _, n := range list {
		if n.ID == id {
			return n, true
		}
	}
	return models.Newsletter{}, false
}
