// Package http serves the dashboard UI and its htmx partials.
package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/parliyanto/Cash-Tracker/internal/auth"
	"github.com/parliyanto/Cash-Tracker/internal/cache"
	"github.com/parliyanto/Cash-Tracker/internal/core"
	"github.com/parliyanto/Cash-Tracker/internal/finance"
	"github.com/parliyanto/Cash-Tracker/internal/log"
	"github.com/parliyanto/Cash-Tracker/internal/services"
	appweb "github.com/parliyanto/Cash-Tracker/web"
)

type Server struct {
	http.Server
	templates *template.Template
	logger    *log.Logger

	transactions *services.TransactionService
	settings     finance.SettingsRepository
	auth         *auth.Service

	rateLimiter *rateLimiter

	// summaryCache holds one dashboard summary per user, invalidated on any
	// transaction mutation for that user.
	summaryCache *cache.LRUCache[core.Summary]
	cacheManager *cache.Manager

	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run server.
func NewServer(addr string, transactions *services.TransactionService, settings finance.SettingsRepository, authSvc *auth.Service, logger *log.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		logger:       logger.WithComponent(log.ComponentHTTP),
		transactions: transactions,
		settings:     settings,
		auth:         authSvc,
		rateLimiter:  newRateLimiter(),
		summaryCache: cache.NewLRUCache[core.Summary](500, 5*time.Minute),
		cacheManager: cache.NewManager(),
	}

	s.cacheManager.Register(s.summaryCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		s.logger.Warn("Failed parsing templates", "error", err)
	}
	s.templates = t

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600, immutable")
			static.ServeHTTP(w, r)
		}))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", "error", err)
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /{$}", s.wrap(s.handleIndex))
	mux.HandleFunc("POST /login", s.wrap(s.handleLogin))
	mux.HandleFunc("POST /logout", s.wrap(s.withUser(s.handleLogout)))

	mux.HandleFunc("GET /dashboard", s.wrap(s.withUser(s.handleDashboard)))

	mux.HandleFunc("GET /transactions", s.wrap(s.withUser(s.handleTransactionsPage)))
	mux.HandleFunc("POST /transactions", s.wrap(s.withUser(s.handleCreateTransaction)))
	mux.HandleFunc("POST /transactions/{id}", s.wrap(s.withUser(s.handleUpdateTransaction)))
	mux.HandleFunc("POST /transactions/{id}/delete", s.wrap(s.withUser(s.handleDeleteTransaction)))
	// UI partials
	mux.HandleFunc("GET /ui/transactions", s.wrap(s.withUser(s.handleTransactionList)))

	mux.HandleFunc("GET /settings", s.wrap(s.withUser(s.handleSettingsPage)))
	mux.HandleFunc("POST /settings", s.wrap(s.withUser(s.handleSaveSettings)))
	mux.HandleFunc("POST /settings/clear-transactions", s.wrap(s.withUser(s.handleClearTransactions)))

	return s
}

// wrap adds security headers, rate limiting and request logging.
func (s *Server) wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)
		requestID := generateRequestID()

		ctx := context.WithValue(r.Context(), log.LoggerContextKey, s.logger.With(log.FieldRequestID, requestID))
		r = r.WithContext(ctx)

		// Mutations are rate limited per client; reads are not.
		if r.Method == http.MethodPost && !s.rateLimiter.allow(clientIP) {
			s.logger.WarnContext(ctx, "Rate limit exceeded",
				log.FieldClientIP, clientIP,
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self' https://unpkg.com; style-src 'self' 'unsafe-inline'; img-src 'self' data:; connect-src 'self'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		s.logger.InfoContext(ctx, "Request completed",
			log.FieldRequestID, requestID,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldStatusCode, rw.statusCode,
			log.FieldDuration, time.Since(start).Milliseconds(),
			log.FieldClientIP, clientIP)
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		http.Error(w, "templates not loaded", http.StatusServiceUnavailable)
		return
	}
	// Cheap storage check: an empty list still round-trips the database.
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	if _, err := s.transactions.List(ctx, "readiness-probe", core.TransactionFilter{}, core.SortDateDesc); err != nil {
		s.logger.ErrorContext(ctx, "Readiness check failed", "error", err)
		http.Error(w, "storage unavailable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// Shutdown stops the cleanup goroutines before shutting down the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func (s *Server) invalidateSummary(userID string) {
	s.summaryCache.Delete(userID)
}

// summarize returns the user's dashboard summary, serving from cache when
// fresh.
func (s *Server) summarize(ctx context.Context, userID string) (core.Summary, error) {
	if summary, found := s.summaryCache.Get(userID); found {
		s.logger.DebugContext(ctx, "Summary cache hit", "user_id", userID)
		return summary, nil
	}

	all, err := s.transactions.List(ctx, userID, core.TransactionFilter{}, core.SortDateDesc)
	if err != nil {
		return core.Summary{}, err
	}
	summary := core.Summarize(all)
	s.summaryCache.Set(userID, summary)
	return summary, nil
}
