// Package tasks holds the Task collection and its mutation operations.
// Two surfaces operate on the same persisted collection (the in-app
// manager and the standalone CLI), so every mutation goes through these
// functions to keep id and ordering invariants identical.
package tasks

import (
	"fmt"
	"strings"
	"time"

	"github.com/starford/pulse/internal/apperr"
	"github.com/starford/pulse/internal/models"
	"github.com/starford/pulse/internal/sanitize"
)

// IDGen produces a fresh task id. Tasks use wall-clock milliseconds;
// tests inject a deterministic generator.
type IDGen func() int64

// ClockID is the production id generator.
func ClockID() int64 {
	return time.Now().UnixMilli()
}

// Filter names for List.
const (
	FilterAll       = "all"
	FilterActive    = "active"
	FilterCompleted = "completed"
)

// Add appends a new task (insertion order) with a sanitized title and
// description. Empty or whitespace-only titles are rejected.
func Add(list []models.Task, title, description string, nextID IDGen) ([]models.Task, models.Task, error) {
	clean := sanitize.Text(title)
	if clean == "" {
		return nil, models.Task{}, fmt.Errorf("tasks: title required: %w", apperr.ErrValidation)
	}
	t := models.Task{
		ID:          nextID(),
		Title:       clean,
		Description: sanitize.Text(description),
	}
	out := make([]models.Task, len(list), len(list)+1)
	copy(out, list)
	return append(out, t), t, nil
}

// Update replaces the title and description of the matching task.
// A missing id is a no-op; an empty title is a validation error.
func Update(list []models.Task, id int64, title, description string) ([]models.Task, error) {
	clean := sanitize.Text(title)
	if clean == "" {
		return nil, fmt.Errorf("tasks: title required: %w", apperr.ErrValidation)
	}
	out := make([]models.Task, len(list))
	copy(out, list)
	for i, t := range out {
		if t.ID == id {
			t.Title = clean
			t.Description = sanitize.Text(description)
			out[i] = t
			break
		}
	}
	return out, nil
}

// ToggleCompleted flips the completed flag of the matching task. Each
// call flips exactly once relative to the current state; missing ids are
// a no-op.
func ToggleCompleted(list []models.Task, id int64) []models.Task {
	out := make([]models.Task, len(list))
	copy(out, list)
	for i, t := range out {
		if t.ID == id {
			t.Completed = !t.Completed
			out[i] = t
			break
		}
	}
	return out
}

// DeleteByID filters out the matching task; missing ids are a no-op.
func DeleteByID(list []models.Task, id int64) []models.Task {
	out := make([]models.Task, 0, len(list))
	for _, t := range list {
		if t.ID != id {
			out = append(out, t)
		}
	}
	return out
}

// ClearCompleted removes every completed task.
func ClearCompleted(list []models.Task) []models.Task {
	out := make([]models.Task, 0, len(list))
	for _, t := range list {
		if !t.Completed {
			out = append(out, t)
		}
	}
	return out
}

// List returns the tasks matching filter (all, active, or completed).
// Unknown filters behave like "all".
func List(list []models.Task, filter string) []models.Task {
	switch strings.ToLower(filter) {
	case FilterActive:
		out := []models.Task{}
		for _, t := range list {
			if !t.Completed {
				out = append(out, t)
			}
		}
		return out
	case FilterCompleted:
		out := []models.Task{}
		for _, t := range list {
			if t.Completed {
				out = append(out, t)
			}
		}
		return out
	default:
		return list
	}
}

// FindByID returns the task matching id.
func FindByID(list []models.Task, id int64) (models.Task, bool) {
	for _, t := range list {
		if t.ID == id {
			return t, true
		}
	}
	return models.Task{}, false
}
