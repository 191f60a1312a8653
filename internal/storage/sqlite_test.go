package storage

import (
	"os"
	"testing"
)

func tempSQLite(t *testing.T) *SQLite {
	t.Helper()
	dbFile, err := os.CreateTemp("", "pulse-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := OpenSQLite(dbFile.Name())
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSQLiteDSNKeepsExistingOptions(t *testing.T) {
	cases := []struct {
		dsn  string
		want string
	}{
		{"pulse.db", "pulse.db?_journal_mode=WAL&_busy_timeout=5000"},
		{"pulse.db?cache=shared", "pulse.db?cache=shared&_journal_mode=WAL&_busy_timeout=5000"},
		{"file:pulse.db?mode=rwc", "file:pulse.db?mode=rwc&_journal_mode=WAL&_busy_timeout=5000"},
	}
	for _, tc := range cases {
		if got := sqliteDSN(tc.dsn); got != tc.want {
			t.Errorf("sqliteDSN(%q) = %q, want %q", tc.dsn, got, tc.want)
		}
	}
}

func TestOpenSQLiteWithDSNOptions(t *testing.T) {
	dbFile, err := os.CreateTemp("", "pulse-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := OpenSQLite(dbFile.Name() + "?cache=shared")
	if err != nil {
		t.Fatalf("OpenSQLite with options: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Write("tasks", []byte(`[]`)); err != nil {
		t.Fatalf("Write: %v", err)
	}
}

func TestSQLiteWriteAndRead(t *testing.T) {
	s := tempSQLite(t)
	if err := s.Write("userProfile", []byte(`{"name":"A"}`)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("userProfile")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != `{"name":"A"}` {
		t.Errorf("value = %q", got)
	}
}

func TestSQLiteOverwrite(t *testing.T) {
	s := tempSQLite(t)
	_ = s.Write("currentView", []byte(`"landing"`))
	if err := s.Write("currentView", []byte(`"home"`)); err != nil {
		t.Fatalf("second Write: %v", err)
	}
	got, _ := s.Read("currentView")
	if string(got) != `"home"` {
		t.Errorf("value = %q", got)
	}
}

func TestSQLiteReadAbsentKey(t *testing.T) {
	s := tempSQLite(t)
	if _, err := s.Read("tasks"); !IsNotFound(err) {
		t.Errorf("err = %v, want not found", err)
	}
}

func TestSQLiteDelete(t *testing.T) {
	s := tempSQLite(t)
	_ = s.Write("feedbacks", []byte(`[]`))
	if err := s.Delete("feedbacks"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Read("feedbacks"); !IsNotFound(err) {
		t.Errorf("err after delete = %v", err)
	}
	if err := s.Delete("feedbacks"); err != nil {
		t.Errorf("second Delete: %v", err)
	}
}
