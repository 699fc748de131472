package server

import (
	"bufio"
	"crypto/subtle"
	"fmt"
	"log"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/livetemplate/mailcraft/internal/config"
)

// Middleware wraps a handler.
type Middleware func(http.Handler) http.Handler

// Chain applies mws so the first one is outermost.
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// CORSMiddleware adds CORS headers to responses.
// If origins is empty or nil, CORS headers are not added.
// authHeaderName is included in Access-Control-Allow-Headers when non-empty.
func CORSMiddleware(origins []string, authHeaderName string) Middleware {
	return func(next http.Handler) http.Handler {
		if len(origins) == 0 {
			return next
		}

		allowHeaders := "Content-Type, Authorization, X-API-Key"
		if authHeaderName != "" && authHeaderName != "Authorization" && authHeaderName != "X-API-Key" {
			allowHeaders += ", " + authHeaderName
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			allowed, allowAll := false, false
			for _, o := range origins {
				if o == "*" {
					allowed, allowAll = true, true
					break
				}
				if o == origin {
					allowed = true
					break
				}
			}

			if allowed && origin != "" {
				if allowAll {
					w.Header().Set("Access-Control-Allow-Origin", "*")
				} else {
					w.Header().Set("Access-Control-Allow-Origin", origin)
					w.Header().Add("Vary", "Origin")
				}
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", allowHeaders)
				w.Header().Set("Access-Control-Max-Age", "86400")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// SecurityHeadersMiddleware adds security headers to all responses. The
// exported HTML uses inline styles and remote or embedded images.
func SecurityHeadersMiddleware() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
			w.Header().Set("Content-Security-Policy",
				"default-src 'self'; "+
					"style-src 'self' 'unsafe-inline'; "+
					"img-src 'self' data: https:; "+
					"connect-src 'self'; "+
					"frame-ancestors 'none'")

			next.ServeHTTP(w, r)
		})
	}
}

// AuthMiddleware requires the configured API key. Without a key every
// request passes through.
func AuthMiddleware(authCfg *config.AuthConfig) Middleware {
	return func(next http.Handler) http.Handler {
		key := authCfg.GetAPIKey()
		if key == "" {
			return next
		}
		headerName := authCfg.GetHeaderName()

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			token := r.Header.Get(headerName)
			if token == "" {
				writeError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			// Handle "Authorization: Bearer <token>" format
			if headerName == "Authorization" {
				bearer, ok := strings.CutPrefix(token, "Bearer ")
				if !ok || bearer == "" {
					writeError(w, http.StatusUnauthorized, "invalid authorization format, expected Bearer token")
					return
				}
				token = bearer
			}

			if subtle.ConstantTimeCompare([]byte(token), []byte(key)) != 1 {
				writeError(w, http.StatusUnauthorized, "invalid API key")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// LoggingMiddleware logs each request when debug is on.
func LoggingMiddleware(debug bool) Middleware {
	return func(next http.Handler) http.Handler {
		if !debug {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)
			log.Printf("[Server] %s %s %d (%v)", r.Method, r.URL.Path, sw.status, time.Since(start))
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// Hijack passes WebSocket upgrades through to the underlying writer.
func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	w.status = http.StatusSwitchingProtocols
	return hj.Hijack()
}
