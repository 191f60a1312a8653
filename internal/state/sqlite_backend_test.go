package state_test

import (
	"testing"

	"github.com/starford/pulse/internal/models"
	"github.com/starford/pulse/internal/state"
	"github.com/starford/pulse/internal/testutil"
)

// The store is backend-agnostic; this exercises the same load/flush
// cycle over the sqlite provider.
func TestStoreOverSQLite(t *testing.T) {
	db := testutil.TestDB(t)

	store := state.Load(db)
	if err := store.ChangeView(models.ViewTaskManager); err != nil {
		t.Fatalf("ChangeView: %v", err)
	}
	task, err := store.AddTask("Wire up the sqlite backend", "")
	if err != nil {
		t.Fatalf("AddTask: %v", err)
	}
	store.ToggleTask(task.ID)

	reloaded := state.Load(db)
	snap := reloaded.Snapshot()
	if snap.CurrentView != models.ViewTaskManager {
		t.Errorf("currentView = %q, want %q", snap.CurrentView, models.ViewTaskManager)
	}
	if len(snap.Tasks) != 1 {
		t.Fatalf("tasks = %d, want 1", len(snap.Tasks))
	}
	if got := snap.Tasks[0]; got.ID != task.ID || !got.Completed {
		t.Errorf("task = %+v, want id %d completed", got, task.ID)
	}
}
