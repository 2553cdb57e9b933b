package server

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/ArcBlock/super-linter-api-sub000/internal/common"
	"github.com/ArcBlock/super-linter-api-sub000/internal/handlers"
	"github.com/ArcBlock/super-linter-api-sub000/internal/models"
)

// middleware wraps an http.Handler with additional behavior
type middleware func(http.Handler) http.Handler

// withMiddleware applies middlewares in reverse order so the first
// listed runs outermost.
func withMiddleware(h http.Handler, middlewares ...middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// responseWriter captures the status code for logging and metrics
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Hijack lets the websocket upgrade pass through the wrapper
func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := rw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	return hijacker.Hijack()
}

// recoveryMiddleware converts handler panics into 500 envelopes
func recoveryMiddleware(logger arbor.ILogger) middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error().
						Str("path", r.URL.Path).
						Str("method", r.Method).
						Msg(fmt.Sprintf("Panic in handler: %v", rec))
					handlers.WriteErrorResponse(w, r, fmt.Errorf("internal server error"))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// requestIDMiddleware assigns a correlation ID to every request
func requestIDMiddleware() middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get("X-Request-ID")
			if requestID == "" {
				requestID = common.NewRequestID()
			}
			w.Header().Set("X-Request-ID", requestID)
			next.ServeHTTP(w, r.WithContext(handlers.WithRequestID(r.Context(), requestID)))
		})
	}
}

// corsMiddleware adds CORS headers and answers preflight requests
func corsMiddleware() middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// loggingMiddleware logs every request with its status and duration
func loggingMiddleware(logger arbor.ILogger) middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(rw, r)

			logger.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", rw.statusCode).
				Str("duration", time.Since(start).String()).
				Str("request_id", handlers.RequestIDFromContext(r.Context())).
				Msg("Request completed")
		})
	}
}

// clientLimiter tracks one client's token bucket
type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiterPool hands out per-client rate limiters keyed by remote IP.
// Idle entries are reaped opportunistically on lookup.
type limiterPool struct {
	mu      sync.Mutex
	clients map[string]*clientLimiter
	rps     rate.Limit
	burst   int
}

func newLimiterPool(rps float64, burst int) *limiterPool {
	return &limiterPool{
		clients: make(map[string]*clientLimiter),
		rps:     rate.Limit(rps),
		burst:   burst,
	}
}

func (p *limiterPool) allow(ip string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := time.Now()
	entry, ok := p.clients[ip]
	if !ok {
		if len(p.clients) > 10000 {
			for key, c := range p.clients {
				if now.Sub(c.lastSeen) > 10*time.Minute {
					delete(p.clients, key)
				}
			}
		}
		entry = &clientLimiter{limiter: rate.NewLimiter(p.rps, p.burst)}
		p.clients[ip] = entry
	}
	entry.lastSeen = now
	return entry.limiter.Allow()
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if idx := strings.IndexByte(fwd, ','); idx > 0 {
			return strings.TrimSpace(fwd[:idx])
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// rateLimitMiddleware throttles clients by IP using token buckets
func rateLimitMiddleware(cfg *common.RateLimitConfig, logger arbor.ILogger) middleware {
	pool := newLimiterPool(cfg.RequestsPerSecond, cfg.Burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			if !pool.allow(ip) {
				logger.Warn().Str("client", ip).Str("path", r.URL.Path).Msg("Rate limit exceeded")
				w.Header().Set("Retry-After", "1")
				handlers.WriteErrorResponse(w, r, &models.RateLimitError{RetryAfter: time.Second})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// metricsMiddleware records method, route, status and latency for every
// request. Lint routes collapse into a single "/{linter}/{format}" label
// to keep metric cardinality bounded.
func metricsMiddleware(record func(r *http.Request, route string, status int, duration time.Duration, cacheHit bool)) middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(rw, r)

			cacheHit := rw.Header().Get("X-Cache") == "HIT"
			record(r, routeLabel(r), rw.statusCode, time.Since(start), cacheHit)
		})
	}
}

// routeLabel normalizes a request path to a bounded label set
func routeLabel(r *http.Request) string {
	path := r.URL.Path
	switch {
	case path == "/health" || path == "/metrics" || path == "/linters" || path == "/ws":
		return path
	case path == "/cache" || strings.HasPrefix(path, "/cache/"):
		return "/cache"
	case strings.HasPrefix(path, "/jobs/"):
		if path == "/jobs/stats" {
			return "/jobs/stats"
		}
		return "/jobs/{id}"
	case strings.HasSuffix(path, "/async"):
		return "/{linter}/{format}/async"
	case strings.Count(path, "/") >= 3:
		return "/{linter}/{format}/{encoded}"
	default:
		return "/{linter}/{format}"
	}
}

// drainMiddleware rejects new work once shutdown has begun
func drainMiddleware(draining func() bool) middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if draining() {
				handlers.WriteErrorResponse(w, r, &models.ServiceUnavailableError{Message: "server is shutting down"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
