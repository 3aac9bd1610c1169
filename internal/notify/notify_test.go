package notify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/docugen/docugen/internal/job"
)

type recordingNotifier struct {
	got *job.Job
	err error
}

func (r *recordingNotifier) NotifyJobDone(ctx context.Context, j *job.Job) error {
	r.got = j
	return r.err
}

func TestMessage(t *testing.T) {
	j := &job.Job{Target: "octo/demo", Status: job.StatusComplete, FileCount: 5, CharCount: 3000}
	got := Message(j)
	if !strings.Contains(got, "octo/demo") || !strings.Contains(got, "5 files") {
		t.Fatalf("message = %q", got)
	}

	j = &job.Job{Target: "octo/demo", Status: job.StatusError, Error: "no files found in repository"}
	got = Message(j)
	if !strings.Contains(got, "failed") || !strings.Contains(got, "no files found") {
		t.Fatalf("error message = %q", got)
	}
}

func TestNotifyAllAbsorbsFailures(t *testing.T) {
	failing := &recordingNotifier{err: errors.New("channel gone")}
	working := &recordingNotifier{}
	j := &job.Job{ID: "j1", Target: "octo/demo", Status: job.StatusComplete}

	NotifyAll(context.Background(), []Notifier{failing, nil, working}, j)

	if working.got == nil || working.got.ID != "j1" {
		t.Fatal("working notifier not called after earlier failure")
	}
}

func TestNewSlackNotifierUnconfigured(t *testing.T) {
	if n := NewSlackNotifier("", "general"); n != nil {
		t.Fatal("expected nil without token")
	}
	if n := NewSlackNotifier("xoxb-token", ""); n != nil {
		t.Fatal("expected nil without channel")
	}
}

func TestNewTelegramNotifierUnconfigured(t *testing.T) {
	n, err := NewTelegramNotifier("", 0)
	if err != nil || n != nil {
		t.Fatalf("got %v, %v; want nil, nil", n, err)
	}
}
