package library

import (
	"testing"
	"time"
)

func TestContentHashHex(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"hello world", "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"},
		{"", "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"},
	}
	for _, tt := range tests {
		if got := ContentHashHex([]byte(tt.in)); got != tt.want {
			t.Errorf("ContentHashHex(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if ContentHashHex([]byte("aaa")) == ContentHashHex([]byte("bbb")) {
		t.Error("expected different hashes for different inputs")
	}
}

func TestJob_StateTransitions(t *testing.T) {
	job := NewJob("test-1", nil)
	if job.Status != StatusQueued {
		t.Fatalf("expected queued, got %q", job.Status)
	}

	transitions := []struct {
		status JobStatus
		phase  string
	}{
		{StatusListing, "listing laws"},
		{StatusParsing, "parsing laws"},
		{StatusCompleted, "done"},
	}

	for _, tr := range transitions {
		before := job.UpdatedAt
		time.Sleep(time.Millisecond)
		job.SetStatus(tr.status, tr.phase)

		snap := job.Snapshot()
		if snap.Status != tr.status || snap.Phase != tr.phase {
			t.Errorf("expected %q/%q, got %q/%q", tr.status, tr.phase, snap.Status, snap.Phase)
		}
		if !snap.UpdatedAt.After(before) {
			t.Errorf("expected UpdatedAt to advance after SetStatus(%q)", tr.status)
		}
	}
}

func TestJob_Progress(t *testing.T) {
	job := NewJob("progress", []string{"刑法"})
	job.SetTotalLaws(3)
	job.AddParsed(120, false)
	job.AddParsed(80, true)
	job.AddError("刑法/a.doc: no readable text in document")

	snap := job.Snapshot()
	want := Progress{TotalLaws: 3, LawsParsed: 2, Cached: 1, Words: 200}
	if snap.Progress.TotalLaws != want.TotalLaws || snap.Progress.LawsParsed != want.LawsParsed ||
		snap.Progress.Cached != want.Cached || snap.Progress.Words != want.Words {
		t.Errorf("progress = %+v, want %+v", snap.Progress, want)
	}
	if job.ErrorCount() != 1 || len(snap.Progress.Errors) != 1 {
		t.Errorf("expected one error, got %v", snap.Progress.Errors)
	}
	if snap.Categories[0] != "刑法" {
		t.Errorf("unexpected categories %v", snap.Categories)
	}
}

func TestJob_SnapshotIsACopy(t *testing.T) {
	job := NewJob("copy", nil)
	job.AddError("first")
	snap := job.Snapshot()
	job.AddError("second")

	if len(snap.Progress.Errors) != 1 {
		t.Errorf("snapshot changed after later error: %v", snap.Progress.Errors)
	}
}

func TestJob_SnapshotSlicesNotNil(t *testing.T) {
	snap := NewJob("snap-test", nil).Snapshot()
	if snap.Progress.Errors == nil || snap.Categories == nil {
		t.Error("expected non-nil slices in snapshot")
	}
}

func TestJobStore_PutGet(t *testing.T) {
	store := NewJobStore(time.Hour)
	store.Put(NewJob("store-1", nil))

	got := store.Get("store-1")
	if got == nil || got.ID != "store-1" {
		t.Fatalf("expected job store-1, got %+v", got)
	}
	if store.Get("nonexistent") != nil {
		t.Error("expected nil for missing job")
	}
}

func TestJobStore_TTLCleanup(t *testing.T) {
	store := NewJobStore(50 * time.Millisecond)
	store.Put(NewJob("old", nil))

	time.Sleep(100 * time.Millisecond)
	store.Put(NewJob("new", nil))

	store.Cleanup()

	if store.Get("old") != nil {
		t.Error("expected expired job to be cleaned up")
	}
	if store.Get("new") == nil {
		t.Error("expected fresh job to survive cleanup")
	}
	if store.Len() != 1 {
		t.Errorf("expected 1 job left, got %d", store.Len())
	}
}
