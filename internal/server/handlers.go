package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/docugen/docugen/internal/fileutil"
	"github.com/docugen/docugen/internal/github"
	"github.com/docugen/docugen/internal/job"
	"github.com/docugen/docugen/internal/notify"
)

// maxUploadBytes caps uploaded source files.
const maxUploadBytes = 10 << 20

// --- Request/Response types ---

type generateRequest struct {
	Code     string `json:"code"`
	IsBase64 bool   `json:"isBase64"`
}

type githubRequest struct {
	GitHubURL string `json:"github_url"`
	MaxFiles  int    `json:"max_files"`
}

type documentationResponse struct {
	Markdown string `json:"markdown"`
	JobID    string `json:"job_id"`
}

type downloadRequest struct {
	MarkdownContent string `json:"markdown_content"`
	FilenamePrefix  string `json:"filename_prefix"`
}

type downloadResponse struct {
	Token    string `json:"token"`
	Filename string `json:"filename"`
	URL      string `json:"url"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// --- Documentation handlers ---

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Code == "" {
		writeError(w, http.StatusBadRequest, "code cannot be empty")
		return
	}

	code := req.Code
	if req.IsBase64 {
		decoded, err := fileutil.DecodeBase64(req.Code)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("error decoding base64: %v", err))
			return
		}
		code = decoded
	}

	s.generateSnippet(w, r, job.SourceInline, "snippet", code)
}

func (s *Server) handleFromFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file upload is required")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "reading upload failed")
		return
	}
	if !fileutil.IsText(content) {
		writeError(w, http.StatusBadRequest, "file could not be decoded as text, upload a text file containing code")
		return
	}
	if fileutil.LanguageFor(header.Filename) == "Unknown" {
		log.Printf("Upload %s has an unrecognized extension, documenting anyway", header.Filename)
	}

	s.generateSnippet(w, r, job.SourceUpload, header.Filename, string(content))
}

// generateSnippet runs snippet documentation for the inline and upload paths.
func (s *Server) generateSnippet(w http.ResponseWriter, r *http.Request, source job.Source, target, code string) {
	j := s.startJob(source, target)

	markdown, err := s.generator.FromCode(r.Context(), code)
	if err != nil {
		s.failJob(j, err)
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("error generating documentation: %v", err))
		return
	}

	j.FileCount = 1
	j.CharCount = len(markdown)
	s.completeJob(j)

	writeJSON(w, http.StatusOK, documentationResponse{Markdown: markdown, JobID: j.ID})
}

func (s *Server) handleFromGitHub(w http.ResponseWriter, r *http.Request) {
	var req githubRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	addr, err := github.ParseAddress(req.GitHubURL)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	j := s.startJob(job.SourceGitHub, addr.Slug())

	bundle, err := s.assembler.Assemble(r.Context(), addr, req.MaxFiles)
	if err != nil {
		s.failJob(j, err)
		writeError(w, statusFor(err), err.Error())
		return
	}

	markdown, err := s.generator.FromBundle(r.Context(), bundle)
	if err != nil {
		s.failJob(j, err)
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("error generating documentation: %v", err))
		return
	}

	j.FileCount = len(bundle.Contents)
	j.ProjectType = bundle.Strategy.ProjectType
	j.CharCount = len(markdown)
	s.completeJob(j)

	writeJSON(w, http.StatusOK, documentationResponse{Markdown: markdown, JobID: j.ID})
}

// --- Download handlers ---

func (s *Server) handleCreateDownload(w http.ResponseWriter, r *http.Request) {
	var req downloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.MarkdownContent == "" {
		writeError(w, http.StatusBadRequest, "markdown content cannot be empty")
		return
	}
	if req.FilenamePrefix == "" {
		req.FilenamePrefix = "documentation"
	}

	path, err := fileutil.CreateTempFile(req.MarkdownContent, ".md")
	if err != nil {
		writeError(w, http.StatusInternalServerError, "error creating download")
		log.Printf("Error creating download file: %v", err)
		return
	}

	token := uuid.New().String()
	filename := fileutil.TimestampedFilename(fileutil.SafeFilename(req.FilenamePrefix), ".md")

	s.mu.Lock()
	s.downloads[token] = download{path: path, filename: filename}
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, downloadResponse{
		Token:    token,
		Filename: filename,
		URL:      "/api/docs/download/" + token,
	})
}

// handleDownload serves a prepared file once, then removes it.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	s.mu.Lock()
	d, ok := s.downloads[token]
	if ok {
		delete(s.downloads, token)
	}
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "download not found or already used")
		return
	}
	defer os.Remove(d.path)

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", d.filename))
	http.ServeFile(w, r, d.path)
}

// --- Repository browsing ---

func (s *Server) handleListContents(w http.ResponseWriter, r *http.Request) {
	addr, err := github.ParseAddress(r.URL.Query().Get("url"))
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	entries, err := s.fetcher.ListDirectory(r.Context(), addr, addr.Path)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	if entries == nil {
		entries = []github.FileEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// --- Cache handlers ---

func (s *Server) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.cache.Stats())
}

func (s *Server) handleCacheClear(w http.ResponseWriter, r *http.Request) {
	removed := s.cache.Clear()
	writeJSON(w, http.StatusOK, map[string]int{"removed": removed})
}

// --- Job handlers ---

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := s.store.List(50)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list jobs")
		log.Printf("Error listing jobs: %v", err)
		return
	}
	if jobs == nil {
		jobs = []*job.Job{}
	}
	writeJSON(w, http.StatusOK, jobs)
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	j, err := s.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	writeJSON(w, http.StatusOK, j)
}

// --- Job lifecycle helpers ---

func (s *Server) startJob(source job.Source, target string) *job.Job {
	j := job.NewJob(uuid.New().String()[:8], source, target)
	j.Status = job.StatusRunning
	if err := s.store.Create(j); err != nil {
		log.Printf("Error recording job: %v", err)
	}
	return j
}

func (s *Server) completeJob(j *job.Job) {
	j.Status = job.StatusComplete
	s.finishJob(j)
}

func (s *Server) failJob(j *job.Job, err error) {
	log.Printf("Job %s failed: %v", j.ID, err)
	j.Status = job.StatusError
	j.Error = err.Error()
	s.finishJob(j)
}

func (s *Server) finishJob(j *job.Job) {
	if err := s.store.Update(j); err != nil {
		log.Printf("Error updating job %s: %v", j.ID, err)
	}
	if len(s.notifiers) > 0 {
		go func(done job.Job) {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			notify.NotifyAll(ctx, s.notifiers, &done)
		}(*j)
	}
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
