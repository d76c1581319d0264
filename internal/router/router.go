package router

import (
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/pomorix/service-core-go/internal/auth"
	"github.com/pomorix/service-core-go/internal/badge"
	badgerepo "github.com/pomorix/service-core-go/internal/badge/repo"
	"github.com/pomorix/service-core-go/internal/bugreport"
	"github.com/pomorix/service-core-go/internal/session"
	sessionrepo "github.com/pomorix/service-core-go/internal/session/repo"
	"github.com/pomorix/service-core-go/internal/settings"
	"github.com/pomorix/service-core-go/internal/streak"
	streakrepo "github.com/pomorix/service-core-go/internal/streak/repo"
	"github.com/pomorix/service-core-go/internal/task"
	"github.com/pomorix/service-core-go/internal/user"
	userrepo "github.com/pomorix/service-core-go/internal/user/repo"
	"github.com/pomorix/service-core-go/pkg/utilities"
)

// loggingResponseWriter wraps http.ResponseWriter to capture status and size.
type loggingResponseWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.status = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Write(b []byte) (int, error) {
	if lrw.status == 0 {
		lrw.status = http.StatusOK
	}
	n, err := lrw.ResponseWriter.Write(b)
	lrw.size += n
	return n, err
}

// LoggingMiddleware returns a middleware that logs requests at debug level using the provided sugared logger.
func LoggingMiddleware(logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			lrw := &loggingResponseWriter{ResponseWriter: w}
			next.ServeHTTP(lrw, r)
			dur := time.Since(start)
			status := lrw.status
			if status == 0 {
				status = http.StatusOK
			}
			logger.Debugw("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"remote", r.RemoteAddr,
				"status", status,
				"duration_ms", float64(dur.Microseconds())/1000.0,
				"size", lrw.size,
			)
		})
	}
}

// SecurityHeadersMiddleware returns a middleware that sets common HTTP security headers.
func SecurityHeadersMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "no-referrer-when-downgrade")
			w.Header().Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")
			if w.Header().Get("Content-Security-Policy") == "" {
				w.Header().Set("Content-Security-Policy", "default-src 'self'; object-src 'none'; base-uri 'self';")
			}
			if r.TLS != nil {
				w.Header().Set("Strict-Transport-Security", "max-age=2592000; includeSubDomains")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RegisterRoutes wires every domain service and mounts the HTTP handlers on
// the standard library's http.ServeMux using method-qualified patterns.
func RegisterRoutes(db *sqlx.DB, tokens *auth.TokenService, logger *zap.SugaredLogger) http.Handler {
	mux := http.NewServeMux()
	clock := clockwork.NewRealClock()

	// repos feed services, services feed handlers; the session service
	// drives streak and badge updates after completion
	settingsHandler := settings.NewHandler(db, logger)
	streakSvc := streak.NewService(streakrepo.NewStreakRepo(db), clock, logger)
	badgeSvc := badge.NewService(badgerepo.NewBadgeRepo(db), streakSvc, clock, logger)
	sessionSvc := session.NewService(
		sessionrepo.NewSessionStore(db),
		settingsHandler.Svc(),
		streakSvc,
		badgeSvc,
		clock,
		logger,
	)
	userSvc := user.NewService(userrepo.NewUserRepo(db), tokens, streakSvc, settingsHandler.Svc(), clock, logger)

	sessionHandler := session.NewHandler(sessionSvc, logger)
	taskHandler := task.NewHandler(db, logger)
	streakHandler := streak.NewHandler(streakSvc, logger)
	badgeHandler := badge.NewHandler(badgeSvc, logger)
	userHandler := user.NewHandler(userSvc, logger)
	bugreportHandler := bugreport.NewHandler(db, logger)

	// public routes
	mux.HandleFunc("GET /pomorix-api/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("POST /pomorix-api/auth/signin", userHandler.Signin)
	mux.HandleFunc("GET /pomorix-api/.well-known/jwks.json", func(w http.ResponseWriter, r *http.Request) {
		utilities.WriteJSON(w, http.StatusOK, tokens.JWKS())
	})

	// authenticated routes
	authmw := auth.Middleware(tokens, logger)
	protected := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, authmw(fn))
	}

	protected("POST /pomorix-api/sessions/start", sessionHandler.Start)
	protected("GET /pomorix-api/sessions/current", sessionHandler.Current)
	protected("POST /pomorix-api/sessions/pause", sessionHandler.Pause)
	protected("POST /pomorix-api/sessions/resume", sessionHandler.Resume)
	protected("POST /pomorix-api/sessions/complete", sessionHandler.Complete)
	protected("POST /pomorix-api/sessions/abort", sessionHandler.Abort)

	protected("POST /pomorix-api/tasks", taskHandler.Create)
	protected("GET /pomorix-api/tasks", taskHandler.List)
	protected("GET /pomorix-api/tasks/{id}", taskHandler.Get)
	protected("PATCH /pomorix-api/tasks/{id}", taskHandler.Update)
	protected("POST /pomorix-api/tasks/{id}/toggle-active", taskHandler.ToggleActive)
	protected("DELETE /pomorix-api/tasks/{id}", taskHandler.Delete)
	protected("POST /pomorix-api/tasks/{id}/restore", taskHandler.Restore)

	protected("GET /pomorix-api/settings", settingsHandler.Get)
	protected("PATCH /pomorix-api/settings", settingsHandler.Update)
	protected("POST /pomorix-api/settings/reset", settingsHandler.Reset)

	protected("GET /pomorix-api/streaks", streakHandler.Get)
	protected("GET /pomorix-api/streaks/stats", streakHandler.TotalStats)

	protected("GET /pomorix-api/badges", badgeHandler.Definitions)
	protected("GET /pomorix-api/badges/unlocked", badgeHandler.Unlocked)

	protected("GET /pomorix-api/profile", userHandler.Profile)

	protected("POST /pomorix-api/bug-reports", bugreportHandler.Create)
	protected("GET /pomorix-api/bug-reports", bugreportHandler.List)

	return LoggingMiddleware(logger)(SecurityHeadersMiddleware()(mux))
}
