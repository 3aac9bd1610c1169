// Package server provides the docugen HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/docugen/docugen/internal/assembler"
	"github.com/docugen/docugen/internal/cache"
	"github.com/docugen/docugen/internal/config"
	"github.com/docugen/docugen/internal/docs"
	"github.com/docugen/docugen/internal/github"
	"github.com/docugen/docugen/internal/job"
	"github.com/docugen/docugen/internal/notify"
	"github.com/docugen/docugen/internal/prioritizer"
	"github.com/docugen/docugen/internal/summarizer"
)

// Server is the docugen HTTP API server.
type Server struct {
	config    *config.Config
	store     *job.Store
	cache     *cache.Cache
	fetcher   assembler.Fetcher
	assembler *assembler.Assembler
	generator *docs.Generator
	notifiers []notify.Notifier
	router    chi.Router

	mu        sync.Mutex
	downloads map[string]download
}

// download is a prepared file waiting to be fetched by token.
type download struct {
	path     string
	filename string
}

// New creates a Server with all dependencies.
func New(cfg *config.Config) (*Server, error) {
	store, err := job.NewStore(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("initializing job store: %w", err)
	}

	llm, err := summarizer.FromEnv()
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("initializing summarizer: %w", err)
	}

	fetcher := github.NewClient(cfg.GitHubToken)
	fileCache := cache.New(cfg.CacheConfig())

	s := &Server{
		config:  cfg,
		store:   store,
		cache:   fileCache,
		fetcher: fetcher,
		assembler: assembler.New(fetcher, prioritizer.New(llm), fileCache).
			WithBudget(cfg.FileBudget).
			WithWorkers(cfg.FetchWorkers),
		generator: docs.New(llm),
		downloads: make(map[string]download),
	}

	if cfg.SlackEnabled() {
		s.notifiers = append(s.notifiers, notify.NewSlackNotifier(cfg.SlackBotToken, cfg.SlackChannel))
		log.Println("Slack notifications enabled")
	}
	if cfg.TelegramEnabled() {
		tg, err := notify.NewTelegramNotifier(cfg.TelegramBotToken, cfg.TelegramChatID)
		if err != nil {
			log.Printf("Warning: failed to initialize Telegram notifier: %v", err)
		} else if tg != nil {
			s.notifiers = append(s.notifiers, tg)
			log.Println("Telegram notifications enabled")
		}
	}

	s.router = s.buildRouter()
	return s, nil
}

// Start runs the HTTP server until the context is canceled.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.config.ServerAddr,
		Handler: s.router,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Printf("docugen server listening on %s", s.config.ServerAddr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	s.cleanupDownloads()
	return s.store.Close()
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(5 * time.Minute))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.config.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/docs", func(r chi.Router) {
			r.Post("/generate", s.handleGenerate)
			r.Post("/from-file", s.handleFromFile)
			r.Post("/from-github", s.handleFromGitHub)
			r.Post("/download", s.handleCreateDownload)
			r.Get("/download/{token}", s.handleDownload)
		})

		r.Get("/github/contents", s.handleListContents)

		r.Route("/cache", func(r chi.Router) {
			r.Get("/stats", s.handleCacheStats)
			r.Post("/clear", s.handleCacheClear)
		})

		r.Get("/jobs", s.handleListJobs)
		r.Get("/jobs/{id}", s.handleGetJob)
	})

	// Health check.
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "service": "docugen"})
	})

	return r
}

// statusFor maps pipeline errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, github.ErrInvalidAddress):
		return http.StatusBadRequest
	case errors.Is(err, github.ErrNotFound),
		errors.Is(err, assembler.ErrNoFilesFound),
		errors.Is(err, assembler.ErrNoRelevantFiles):
		return http.StatusNotFound
	case errors.Is(err, github.ErrAccessDenied):
		return http.StatusForbidden
	case errors.Is(err, github.ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) cleanupDownloads() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for token, d := range s.downloads {
		os.Remove(d.path)
		delete(s.downloads, token)
	}
}
