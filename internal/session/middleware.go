package session

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

type ctxKey string

const sessionIDKey ctxKey = "session_id"

// Middleware authenticates requests with a Bearer session token and checks
// the session still exists in the store.
type Middleware struct {
	secret []byte
	store  *Store
}

func NewMiddleware(secret []byte, store *Store) Middleware {
	return Middleware{secret: secret, store: store}
}

func (m Middleware) Wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h := r.Header.Get("Authorization")
		if !strings.HasPrefix(h, "Bearer ") {
			http.Error(w, "missing token", http.StatusUnauthorized)
			return
		}

		id, err := ParseToken(m.secret, strings.TrimPrefix(h, "Bearer "))
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
		if _, err := m.store.Get(id); err != nil {
			http.Error(w, "session expired", http.StatusUnauthorized)
			return
		}

		next(w, r.WithContext(ContextWithID(r.Context(), id)))
	}
}

// ContextWithID attaches an authenticated session ID to the context.
func ContextWithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionIDKey, id)
}

// IDFromContext returns the authenticated session ID.
func IDFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(sessionIDKey)
	if v == nil {
		return "", false
	}
	id, ok := v.(string)
	return id, ok
}

// CreateHandler issues a new session and its bearer token. POST /session.
func CreateHandler(secret []byte, store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		id := store.Create()
		token, err := GenerateToken(secret, id)
		if err != nil {
			http.Error(w, "token error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"token": token})
	}
}
