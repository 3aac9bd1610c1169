package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	gogh "github.com/google/go-github/v68/github"
)

// newTestClient wires a Client against an httptest server. The rate-limit
// sleep is replaced with a no-op that records the requested wait.
func newTestClient(t *testing.T, h http.Handler) (*Client, *[]time.Duration) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	gh := gogh.NewClient(srv.Client())
	base, err := url.Parse(srv.URL + "/")
	if err != nil {
		t.Fatalf("parse base url: %v", err)
	}
	gh.BaseURL = base

	var waits []time.Duration
	c := &Client{gh: gh, sleep: func(ctx context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	}}
	return c, &waits
}

func writeRateLimited(w http.ResponseWriter, reset time.Time) {
	w.Header().Set("X-RateLimit-Limit", "60")
	w.Header().Set("X-RateLimit-Remaining", "0")
	w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", reset.Unix()))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	fmt.Fprint(w, `{"message":"API rate limit exceeded"}`)
}

func TestListDirectoryRetriesOnceAfterRateLimit(t *testing.T) {
	var calls int
	c, waits := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			writeRateLimited(w, time.Now().Add(-time.Minute)) // reset already passed
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[{"type":"file","name":"main.go","path":"main.go","size":12,"sha":"abc"}]`)
	}))

	entries, err := c.ListDirectory(context.Background(), Address{Owner: "o", Repo: "r"}, "")
	if err != nil {
		t.Fatalf("list directory: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected exactly one retry (2 calls), got %d", calls)
	}
	if len(*waits) != 1 || (*waits)[0] != 0 {
		t.Fatalf("expected a single zero wait for a passed reset, got %v", *waits)
	}
	if len(entries) != 1 || entries[0].Name != "main.go" || !entries[0].IsFile() {
		t.Fatalf("unexpected entries: %+v", entries)
	}
}

func TestListDirectorySecondRateLimitIsFatal(t *testing.T) {
	var calls int
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		writeRateLimited(w, time.Now().Add(-time.Minute))
	}))

	_, err := c.ListDirectory(context.Background(), Address{Owner: "o", Repo: "r"}, "")
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("got %v, want ErrRateLimited", err)
	}
	if calls != 2 {
		t.Fatalf("expected exactly 2 calls (no second retry), got %d", calls)
	}
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusNotFound, ErrNotFound},
		{http.StatusForbidden, ErrAccessDenied}, // no rate-limit headers
		{http.StatusUnauthorized, ErrAccessDenied},
		{http.StatusBadGateway, ErrUnexpectedStatus},
	}
	for _, tt := range tests {
		c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(tt.status)
			fmt.Fprint(w, `{"message":"nope"}`)
		}))
		_, err := c.ListDirectory(context.Background(), Address{Owner: "o", Repo: "r"}, "x")
		if !errors.Is(err, tt.want) {
			t.Fatalf("status %d: got %v, want %v", tt.status, err, tt.want)
		}
	}
}

func TestGetFileContentDecodesBase64(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"type":"file","name":"a.py","path":"a.py","size":7,"content":"cHJpbnQoKQ==","encoding":"base64"}`)
	}))

	got, err := c.GetFileContent(context.Background(), Address{Owner: "o", Repo: "r"}, "a.py")
	if err != nil {
		t.Fatalf("get content: %v", err)
	}
	if got != "print()" {
		t.Fatalf("content = %q", got)
	}
}

func TestGetTree(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/repos/o/r":
			fmt.Fprint(w, `{"default_branch":"main","size":42,"language":"Go"}`)
		case "/repos/o/r/languages":
			fmt.Fprint(w, `{"Go":1000}`)
		case "/repos/o/r/git/trees/main":
			fmt.Fprint(w, `{"sha":"t","tree":[
				{"path":"src","type":"tree","sha":"d1"},
				{"path":"src/app.py","type":"blob","size":10,"sha":"b1"},
				{"path":"README.md","type":"blob","size":5,"sha":"b2"},
				{"path":"module","type":"commit","sha":"s1"}
			]}`)
		default:
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"message":"Not Found"}`)
		}
	}))

	entries, err := c.GetTree(context.Background(), Address{Owner: "o", Repo: "r"}, "")
	if err != nil {
		t.Fatalf("get tree: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries (submodule skipped), got %d: %+v", len(entries), entries)
	}
	if entries[1].Path != "src/app.py" || entries[1].Depth != 1 || !entries[1].IsFile() {
		t.Fatalf("unexpected entry: %+v", entries[1])
	}
	if entries[0].Path != "src" || !entries[0].IsDir() {
		t.Fatalf("unexpected entry: %+v", entries[0])
	}
}

func TestGetTreeWithRefSkipsMetadata(t *testing.T) {
	var requested []string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested = append(requested, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/repos/o/r/git/trees/dev":
			fmt.Fprint(w, `{"sha":"t","tree":[{"path":"main.go","type":"blob","size":3,"sha":"b1"}]}`)
		default:
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"message":"Not Found"}`)
		}
	}))

	entries, err := c.GetTree(context.Background(), Address{Owner: "o", Repo: "r"}, "dev")
	if err != nil {
		t.Fatalf("get tree: %v", err)
	}
	if len(entries) != 1 || entries[0].Path != "main.go" {
		t.Fatalf("entries = %+v", entries)
	}
	for _, path := range requested {
		if path == "/repos/o/r" {
			t.Fatal("resolved metadata despite an explicit ref")
		}
	}
}

func TestGetTreeUnavailable(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/repos/o/r":
			fmt.Fprint(w, `{"default_branch":"main"}`)
		default:
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"message":"Not Found"}`)
		}
	}))

	_, err := c.GetTree(context.Background(), Address{Owner: "o", Repo: "r"}, "")
	if !errors.Is(err, ErrTreeUnavailable) {
		t.Fatalf("got %v, want ErrTreeUnavailable", err)
	}
}

func TestGetRepoMetadata(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/repos/o/r":
			fmt.Fprint(w, `{"default_branch":"","size":7,"language":"Python","description":"demo"}`)
		case "/repos/o/r/languages":
			fmt.Fprint(w, `{"Python":900,"Shell":100}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	meta, err := c.GetRepoMetadata(context.Background(), Address{Owner: "o", Repo: "r"})
	if err != nil {
		t.Fatalf("get metadata: %v", err)
	}
	if meta.DefaultBranch != "main" {
		t.Fatalf("empty default branch should fall back to main, got %q", meta.DefaultBranch)
	}
	if meta.Language != "Python" || meta.Languages["Shell"] != 100 {
		t.Fatalf("unexpected metadata: %+v", meta)
	}
}
