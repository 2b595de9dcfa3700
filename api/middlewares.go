package main

import (
	"context"
	"log"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type identityContext string

const identityContextKey identityContext = "identityContextKey"

func identityFromRequest(r *http.Request) *identity {
	ident, _ := r.Context().Value(identityContextKey).(*identity)
	return ident
}

func withIdentity(r *http.Request, ident *identity) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), identityContextKey, ident))
}

// authenticateBearer trusts verified claims as-is; no database round-trip.
// Missing credentials are 401, a failed verification is 403.
func (app *application) authenticateBearer(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", "Authorization")
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeError(w, http.StatusUnauthorized, "missing authentication token")
			return
		}
		parts := strings.Fields(authHeader)
		if len(parts) != 2 || parts[0] != "Bearer" {
			writeError(w, http.StatusUnauthorized, "missing authentication token")
			return
		}
		ident, err := verifyToken(app.config.jwt.secret, parts[1])
		if err != nil {
			writeError(w, http.StatusForbidden, "invalid or expired token")
			return
		}
		next.ServeHTTP(w, withIdentity(r, ident))
	}
}

// authenticateAPIKey resolves the identity from storage on every request;
// keys never expire, so role changes must take effect immediately.
func (app *application) authenticateAPIKey(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get("x-api-key")
		if key == "" {
			writeError(w, http.StatusUnauthorized, "missing API key")
			return
		}
		u, err := app.storage.getUserByAPIKey(key)
		if err != nil {
			app.writeServerError(w, err, "middlewares.authenticateAPIKey", nil)
			return
		}
		if u == nil {
			writeError(w, http.StatusUnauthorized, "invalid API key")
			return
		}
		ident := &identity{ID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role}
		next.ServeHTTP(w, withIdentity(r, ident))
	}
}

func (app *application) logRequests(next http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Printf("%s %s", r.Method, r.URL.Path)
		next.ServeHTTP(w, r)
	}
}

func (app *application) rateLimit(next http.Handler) http.HandlerFunc {
	type client struct {
		limiter  *rate.Limiter
		lastSeen time.Time
	}
	var (
		mu      sync.Mutex
		clients = make(map[string]client)
	)
	go func() {
		for {
			time.Sleep(time.Minute)
			func() {
				mu.Lock()
				defer mu.Unlock()
				for ip, client := range clients {
					if time.Since(client.lastSeen) >= time.Minute*3 {
						delete(clients, ip)
					}
				}
			}()
		}
	}()
	perSecond := rate.Limit(float64(app.config.limiter.requestsPerMinute) / 60.0)
	return func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			app.writeServerError(w, err, "middlewares.rateLimit", nil)
			return
		}
		mu.Lock()
		c, ok := clients[ip]
		if !ok {
			c = client{
				limiter: rate.NewLimiter(perSecond, app.config.limiter.burst),
			}
		}
		c.lastSeen = time.Now()
		clients[ip] = c
		if !c.limiter.Allow() {
			mu.Unlock()
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		mu.Unlock()
		next.ServeHTTP(w, r)
	}
}

func (app *application) enableCORS(next http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", "Origin")
		w.Header().Add("Vary", "Access-Control-Request-Method")

		origin := r.Header.Get("Origin")
		if origin != "" {
			for _, o := range app.config.cors.trustedOrigins {
				if origin == o || o == "*" {
					w.Header().Set("Access-Control-Allow-Origin", origin)
					// preflight request
					if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
						w.Header().Set("Access-Control-Allow-Methods", "OPTIONS, GET, POST, PUT, PATCH, DELETE")
						w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, x-api-key")
						w.WriteHeader(http.StatusOK)
						return
					}
					break
				}
			}
		}
		next.ServeHTTP(w, r)
	}
}
