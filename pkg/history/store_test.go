package history

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

var drivers = []string{DriverSQLite, DriverSQLite3}

// openTemp opens a store in a temporary directory.
func openTemp(t *testing.T, driver string) (*Store, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "history.db")
	store, err := Open(Config{Driver: driver, Path: path})
	if err != nil {
		t.Fatalf("Open(%s) error = %v", driver, err)
	}
	t.Cleanup(func() { store.Close() })
	return store, path
}

func record(id, kind string, started time.Time, passed bool) Record {
	return Record{
		ID:        id,
		Kind:      kind,
		StartedAt: started,
		Duration:  1500 * time.Millisecond,
		Passed:    passed,
		Summary:   kind + " run " + id,
		Payload:   json.RawMessage(`{"id":"` + id + `"}`),
	}
}

func TestOpen(t *testing.T) {
	for _, driver := range drivers {
		t.Run(driver, func(t *testing.T) {
			store, path := openTemp(t, driver)

			if _, err := os.Stat(path); err != nil {
				t.Errorf("database file not created: %v", err)
			}
			if err := store.Ping(context.Background()); err != nil {
				t.Errorf("Ping() error = %v", err)
			}
		})
	}
}

func TestOpen_Errors(t *testing.T) {
	if _, err := Open(Config{Driver: "postgres", Path: "x.db"}); err == nil {
		t.Error("expected error for unsupported driver")
	}
	if _, err := Open(Config{Path: " "}); err == nil {
		t.Error("expected error for empty path")
	}
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()

	store, err := Open(Config{Path: path})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := store.Save(ctx, record("a", "doctor", time.Now(), true)); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	store.Close()

	store, err = Open(Config{Path: path})
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer store.Close()

	if _, err := store.Get(ctx, "a"); err != nil {
		t.Errorf("record lost across reopen: %v", err)
	}
}

func TestSaveAndGet(t *testing.T) {
	for _, driver := range drivers {
		t.Run(driver, func(t *testing.T) {
			store, _ := openTemp(t, driver)
			ctx := context.Background()

			started := time.Date(2026, 3, 1, 12, 0, 0, 123, time.UTC)
			want := record("run-1", "probe", started, false)

			if err := store.Save(ctx, want); err != nil {
				t.Fatalf("Save() error = %v", err)
			}

			got, err := store.Get(ctx, "run-1")
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}

			if got.ID != want.ID || got.Kind != want.Kind || got.Summary != want.Summary {
				t.Errorf("Get() = %+v, want %+v", got, want)
			}
			if !got.StartedAt.Equal(started) {
				t.Errorf("StartedAt = %v, want %v", got.StartedAt, started)
			}
			if got.Duration != want.Duration {
				t.Errorf("Duration = %v, want %v", got.Duration, want.Duration)
			}
			if got.Passed {
				t.Error("Passed = true, want false")
			}
			if string(got.Payload) != string(want.Payload) {
				t.Errorf("Payload = %s, want %s", got.Payload, want.Payload)
			}
		})
	}
}

func TestSave_ReplacesAndRequiresID(t *testing.T) {
	store, _ := openTemp(t, DriverSQLite)
	ctx := context.Background()

	if err := store.Save(ctx, Record{Kind: "env"}); err == nil {
		t.Error("expected error for empty id")
	}

	rec := record("same", "env", time.Now(), false)
	store.Save(ctx, rec)
	rec.Passed = true
	rec.Payload = nil
	if err := store.Save(ctx, rec); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := store.Get(ctx, "same")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !got.Passed || got.Payload != nil {
		t.Errorf("record not replaced: %+v", got)
	}
}

func TestGet_NotFound(t *testing.T) {
	store, _ := openTemp(t, DriverSQLite)

	_, err := store.Get(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestList(t *testing.T) {
	for _, driver := range drivers {
		t.Run(driver, func(t *testing.T) {
			store, _ := openTemp(t, driver)
			ctx := context.Background()

			base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
			for i, r := range []Record{
				record("1", "doctor", base, true),
				record("2", "probe", base.Add(time.Minute), false),
				record("3", "doctor", base.Add(2*time.Minute), false),
				record("4", "env", base.Add(3*time.Minute), true),
			} {
				if err := store.Save(ctx, r); err != nil {
					t.Fatalf("Save(%d) error = %v", i, err)
				}
			}

			tests := []struct {
				name   string
				filter Filter
				want   []string
			}{
				{"all newest first", Filter{}, []string{"4", "3", "2", "1"}},
				{"by kind", Filter{Kind: "doctor"}, []string{"3", "1"}},
				{"limit", Filter{Limit: 2}, []string{"4", "3"}},
				{"since", Filter{Since: base.Add(90 * time.Second)}, []string{"4", "3"}},
				{"kind and limit", Filter{Kind: "doctor", Limit: 1}, []string{"3"}},
				{"no match", Filter{Kind: "smoke"}, []string{}},
			}

			for _, tt := range tests {
				t.Run(tt.name, func(t *testing.T) {
					got, err := store.List(ctx, tt.filter)
					if err != nil {
						t.Fatalf("List() error = %v", err)
					}
					if len(got) != len(tt.want) {
						t.Fatalf("List() returned %d records, want %d", len(got), len(tt.want))
					}
					for i, id := range tt.want {
						if got[i].ID != id {
							t.Errorf("record %d = %s, want %s", i, got[i].ID, id)
						}
					}
				})
			}
		})
	}
}

func TestPrune(t *testing.T) {
	store, _ := openTemp(t, DriverSQLite)
	ctx := context.Background()

	now := time.Now()
	store.Save(ctx, record("old-1", "probe", now.Add(-48*time.Hour), true))
	store.Save(ctx, record("old-2", "probe", now.Add(-25*time.Hour), true))
	store.Save(ctx, record("new", "probe", now.Add(-time.Hour), true))

	n, err := store.Prune(ctx, now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if n != 2 {
		t.Errorf("Prune() = %d, want 2", n)
	}

	remaining, _ := store.List(ctx, Filter{})
	if len(remaining) != 1 || remaining[0].ID != "new" {
		t.Errorf("remaining = %+v", remaining)
	}

	n, err = store.Prune(ctx, now.Add(-24*time.Hour))
	if err != nil || n != 0 {
		t.Errorf("second Prune() = %d, %v", n, err)
	}
}

func TestMemoryDatabase(t *testing.T) {
	store, err := Open(Config{Path: ":memory:"})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.Save(ctx, record("m", "env", time.Now(), true)); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if _, err := store.Get(ctx, "m"); err != nil {
		t.Errorf("Get() error = %v", err)
	}
}

func TestStorageError(t *testing.T) {
	cause := errors.New("disk I/O error")
	err := newStorageError(DriverSQLite, "save", cause)

	if !errors.Is(err, cause) {
		t.Error("StorageError should unwrap to its cause")
	}
	want := "history storage error [driver=sqlite, operation=save]: disk I/O error"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
