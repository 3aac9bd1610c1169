package job

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := NewStore(dbPath)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func TestJobCRUD(t *testing.T) {
	store := newTestStore(t)

	j := NewJob("job-1", SourceGitHub, "octo/demo")
	if j.Status != StatusPending {
		t.Fatalf("new job status = %s", j.Status)
	}
	if err := store.Create(j); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := store.Get("job-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Source != SourceGitHub || got.Target != "octo/demo" || got.Status != StatusPending {
		t.Fatalf("unexpected job: %+v", got)
	}

	got.Status = StatusComplete
	got.FileCount = 7
	got.ProjectType = "web_app"
	got.CharCount = 4200
	if err := store.Update(got); err != nil {
		t.Fatalf("update: %v", err)
	}

	got2, err := store.Get("job-1")
	if err != nil {
		t.Fatalf("get updated: %v", err)
	}
	if got2.Status != StatusComplete || got2.FileCount != 7 || got2.ProjectType != "web_app" {
		t.Fatalf("update not persisted: %+v", got2)
	}
	if !got2.UpdatedAt.After(got2.CreatedAt) && !got2.UpdatedAt.Equal(got2.CreatedAt) {
		t.Fatalf("updated_at went backwards: %+v", got2)
	}
}

func TestJobGetMissing(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.Get("nope"); err == nil {
		t.Fatal("expected error for missing job")
	}
}

func TestJobListNewestFirst(t *testing.T) {
	store := newTestStore(t)

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		j := NewJob(fmt.Sprintf("job-%d", i), SourceInline, "snippet")
		j.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		j.UpdatedAt = j.CreatedAt
		if err := store.Create(j); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}

	jobs, err := store.List(0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(jobs) != 3 {
		t.Fatalf("listed %d jobs, want 3", len(jobs))
	}
	if jobs[0].ID != "job-2" || jobs[2].ID != "job-0" {
		t.Fatalf("order = [%s %s %s]", jobs[0].ID, jobs[1].ID, jobs[2].ID)
	}

	limited, err := store.List(2)
	if err != nil {
		t.Fatalf("list limited: %v", err)
	}
	if len(limited) != 2 || limited[0].ID != "job-2" {
		t.Fatalf("limited = %+v", limited)
	}
}

func TestJobErrorStatus(t *testing.T) {
	store := newTestStore(t)

	j := NewJob("job-err", SourceUpload, "main.py")
	if err := store.Create(j); err != nil {
		t.Fatalf("create: %v", err)
	}

	j.Status = StatusError
	j.Error = "all file fetches failed"
	if err := store.Update(j); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := store.Get("job-err")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != StatusError || got.Error != "all file fetches failed" {
		t.Fatalf("error not persisted: %+v", got)
	}
}
