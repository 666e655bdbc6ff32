// Package githubtest provides an in-memory hosting service for tests.
// It serves the REST API, raw file and archive URL shapes used by the github package.
package githubtest

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"
)

// Commit is a commit served for a reference.
type Commit struct {
	SHA  string
	Date time.Time
}

// Repo holds the fixtures served for one repository.
type Repo struct {
	// Tags in listing order.
	Tags []string

	// Branches in listing order.
	Branches []string

	// Files maps a reference to the files readable at that reference (path -> content).
	Files map[string]map[string]string

	// Commits maps a reference to its head commit.
	Commits map[string]Commit

	// AheadBy maps "base...head" to the ahead_by count.
	AheadBy map[string]int

	// Archives maps a reference to the zip archive served for it.
	Archives map[string][]byte
}

// Server is a fake hosting service.
type Server struct {
	*httptest.Server

	// PageSize enables pagination of tag and branch listings when positive.
	PageSize int

	mu         sync.Mutex
	repos      map[string]*Repo
	statuses   map[string]int
	requests   []string
	userAgents map[string]struct{}
}

// NewServer starts a fake hosting service that is closed when the test ends.
func NewServer(t testing.TB) *Server {
	t.Helper()

	s := &Server{
		repos:      make(map[string]*Repo),
		statuses:   make(map[string]int),
		userAgents: make(map[string]struct{}),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)

	return s
}

// APIURL is the base URL of the fake REST API.
func (s *Server) APIURL() string { return s.URL + "/api" }

// RawURL is the base URL of the fake raw content host.
func (s *Server) RawURL() string { return s.URL + "/raw" }

// WebURL is the base URL of the fake archive host.
func (s *Server) WebURL() string { return s.URL + "/web" }

// AddRepo registers fixtures for "owner/name".
func (s *Server) AddRepo(path string, repo *Repo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.repos[path] = repo
}

// SetStatus forces the given status for requests to the exact URL path.
func (s *Server) SetStatus(path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[path] = status
}

// Requests returns the URL paths requested so far, in order.
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.requests))
	copy(out, s.requests)
	return out
}

// UserAgents returns the distinct User-Agent headers received.
func (s *Server) UserAgents() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.userAgents))
	for ua := range s.userAgents {
		out = append(out, ua)
	}
	return out
}

// Zip builds a zip archive from the entries, written in the given order.
// Entries ending in "/" are written as directories.
func Zip(t testing.TB, entries ...Entry) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, e := range entries {
		f, err := w.Create(e.Name)
		if err != nil {
			t.Fatalf("create zip entry %s: %v", e.Name, err)
		}
		if strings.HasSuffix(e.Name, "/") {
			continue
		}
		if _, err := f.Write([]byte(e.Content)); err != nil {
			t.Fatalf("write zip entry %s: %v", e.Name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}

	return buf.Bytes()
}

// Entry is a single zip entry.
type Entry struct {
	Name    string
	Content string
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.requests = append(s.requests, r.URL.Path)
	s.userAgents[r.UserAgent()] = struct{}{}
	status, forced := s.statuses[r.URL.Path]
	s.mu.Unlock()

	if forced {
		w.WriteHeader(status)
		return
	}

	switch {
	case strings.HasPrefix(r.URL.Path, "/api/repos/"):
		s.handleAPI(w, r, strings.TrimPrefix(r.URL.Path, "/api/repos/"))
	case strings.HasPrefix(r.URL.Path, "/raw/"):
		s.handleRaw(w, strings.TrimPrefix(r.URL.Path, "/raw/"))
	case strings.HasPrefix(r.URL.Path, "/web/"):
		s.handleWeb(w, strings.TrimPrefix(r.URL.Path, "/web/"))
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) lookup(rest string) (*Repo, string, bool) {
	parts := strings.SplitN(rest, "/", 3)
	if len(parts) < 2 {
		return nil, "", false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	repo, ok := s.repos[parts[0]+"/"+parts[1]]
	if !ok {
		return nil, "", false
	}
	if len(parts) == 2 {
		return repo, "", true
	}
	return repo, parts[2], true
}

func (s *Server) handleAPI(w http.ResponseWriter, r *http.Request, rest string) {
	repo, tail, ok := s.lookup(rest)
	if !ok {
		http.NotFound(w, r)
		return
	}

	switch {
	case tail == "tags":
		s.writeRefs(w, r, repo.Tags, repo.Commits)
	case tail == "branches":
		s.writeRefs(w, r, repo.Branches, repo.Commits)
	case strings.HasPrefix(tail, "commits/"):
		c, ok := repo.Commits[strings.TrimPrefix(tail, "commits/")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		writeJSON(w, map[string]any{
			"sha": c.SHA,
			"commit": map[string]any{
				"author": map[string]any{"date": c.Date.UTC().Format(time.RFC3339)},
			},
		})
	case strings.HasPrefix(tail, "compare/"):
		n, ok := repo.AheadBy[strings.TrimPrefix(tail, "compare/")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		writeJSON(w, map[string]any{"ahead_by": n})
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) writeRefs(w http.ResponseWriter, r *http.Request, names []string, commits map[string]Commit) {
	refs := make([]map[string]any, 0, len(names))
	for _, name := range names {
		refs = append(refs, map[string]any{
			"name":   name,
			"commit": map[string]any{"sha": commits[name].SHA},
		})
	}

	if s.PageSize > 0 {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		page = max(page, 1)
		start := min((page-1)*s.PageSize, len(refs))
		end := min(start+s.PageSize, len(refs))
		if end < len(refs) {
			next := *r.URL
			q := next.Query()
			q.Set("page", strconv.Itoa(page+1))
			next.RawQuery = q.Encode()
			w.Header().Set("Link", fmt.Sprintf(`<%s%s>; rel="next"`, s.URL, next.RequestURI()))
		}
		refs = refs[start:end]
	}

	writeJSON(w, refs)
}

func (s *Server) handleRaw(w http.ResponseWriter, rest string) {
	repo, tail, ok := s.lookup(rest)
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	for ref, files := range repo.Files {
		path, found := strings.CutPrefix(tail, ref+"/")
		if !found {
			continue
		}
		if content, ok := files[path]; ok {
			_, _ = w.Write([]byte(content))
			return
		}
	}

	w.WriteHeader(http.StatusNotFound)
}

func (s *Server) handleWeb(w http.ResponseWriter, rest string) {
	repo, tail, ok := s.lookup(rest)
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	var ref string
	switch {
	case strings.HasPrefix(tail, "zipball/"):
		ref = strings.TrimPrefix(tail, "zipball/")
	case strings.HasPrefix(tail, "archive/refs/heads/") && strings.HasSuffix(tail, ".zip"):
		ref = strings.TrimSuffix(strings.TrimPrefix(tail, "archive/refs/heads/"), ".zip")
	default:
		w.WriteHeader(http.StatusNotFound)
		return
	}

	data, ok := repo.Archives[ref]
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	_, _ = w.Write(data)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
