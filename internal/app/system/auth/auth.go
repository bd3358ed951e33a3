// Package auth resolves the acting user for every request.
//
// The mobile client authenticates with a bearer JWT issued at login; browser
// sessions use a signed cookie. Either way the resolved user is placed in the
// request context and handlers read it with CurrentUser(r). There is no
// process-wide "current user"; the context value is the only channel.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

const (
	isAuthKey   = "is_authenticated"
	userIDKey   = "user_id"
	userNameKey = "user_name"
	userMailKey = "user_email"

	bearerPrefix = "Bearer "
)

// SessionUser is what we cache in the session / token and inject into
// r.Context().
type SessionUser struct {
	ID       string
	Username string
	Email    string
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the acting user and a found flag.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok
}

// WithTestUser injects a user directly into the request context,
// bypassing session and token resolution. Tests only.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return withUser(r, u)
}

// Manager owns the cookie store and the token signing key.
type Manager struct {
	store       *sessions.CookieStore
	sessionName string
	jwtKey      []byte
	tokenTTL    time.Duration
	log         *zap.Logger
}

// tokenClaims is the JWT payload for bearer authentication.
type tokenClaims struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}

var (
	// ErrInvalidToken is returned for malformed, forged, or mis-signed tokens.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken is returned for tokens past their expiry.
	ErrExpiredToken = errors.New("token has expired")
)

// NewManager builds a Manager. An empty sessionKey is rejected in production
// mode (secure=true); in dev a random key is generated so the server still
// starts, at the cost of sessions not surviving a restart.
func NewManager(sessionKey, sessionName, domain string, secure bool, tokenTTL time.Duration, logger *zap.Logger) (*Manager, error) {
	if sessionKey == "" {
		if secure {
			return nil, fmt.Errorf("session key is empty; provide ≥32 random chars")
		}
		sessionKey = string(securecookie.GenerateRandomKey(32))
		logger.Warn("session key not configured; generated a transient dev key")
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	opts := &sessions.Options{
		Domain:   domain,
		Path:     "/",
		Secure:   secure,
		HttpOnly: true,
	}
	if secure {
		opts.SameSite = http.SameSiteNoneMode
	} else {
		opts.SameSite = http.SameSiteLaxMode
	}
	store.Options = opts

	return &Manager{
		store:       store,
		sessionName: sessionName,
		jwtKey:      []byte(sessionKey),
		tokenTTL:    tokenTTL,
		log:         logger,
	}, nil
}

// SignIn records the user in the session cookie.
func (m *Manager) SignIn(w http.ResponseWriter, r *http.Request, u *SessionUser) error {
	sess, _ := m.store.Get(r, m.sessionName)
	sess.Values[isAuthKey] = true
	sess.Values[userIDKey] = u.ID
	sess.Values[userNameKey] = u.Username
	sess.Values[userMailKey] = u.Email
	return sess.Save(r, w)
}

// SignOut clears the session cookie.
func (m *Manager) SignOut(w http.ResponseWriter, r *http.Request) error {
	sess, _ := m.store.Get(r, m.sessionName)
	sess.Values = map[any]any{}
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

// IssueToken signs a bearer token for the mobile client.
func (m *Manager) IssueToken(u *SessionUser) (string, error) {
	now := time.Now()
	claims := &tokenClaims{
		Username: u.Username,
		Email:    u.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.tokenTTL)),
			Issuer:    "underwraps",
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(m.jwtKey)
}

// ParseToken validates a bearer token and returns the user it names.
func (m *Manager) ParseToken(raw string) (*SessionUser, error) {
	tok, err := jwt.ParseWithClaims(raw, &tokenClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.jwtKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	claims, ok := tok.Claims.(*tokenClaims)
	if !ok || !tok.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return &SessionUser{
		ID:       claims.Subject,
		Username: claims.Username,
		Email:    claims.Email,
	}, nil
}

// LoadUser injects the acting user into the request context if the request
// carries a valid bearer token or session cookie. Anonymous requests pass
// through untouched.
func (m *Manager) LoadUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h := r.Header.Get("Authorization"); strings.HasPrefix(h, bearerPrefix) {
			if u, err := m.ParseToken(strings.TrimPrefix(h, bearerPrefix)); err == nil {
				next.ServeHTTP(w, withUser(r, u))
				return
			}
			// Fall through: an invalid token is treated as anonymous, and
			// RequireSignedIn turns that into a 401.
		}

		sess, _ := m.store.Get(r, m.sessionName)
		if isAuth, _ := sess.Values[isAuthKey].(bool); isAuth {
			u := &SessionUser{
				ID:       getString(sess, userIDKey),
				Username: getString(sess, userNameKey),
				Email:    getString(sess, userMailKey),
			}
			r = withUser(r, u)
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSignedIn ensures there is a user in context (set by LoadUser).
// API callers get a 401 JSON envelope.
func (m *Manager) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); ok {
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"code":"unauthorized","message":"Please sign in to continue."}}`))
	})
}

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

func getString(s *sessions.Session, key string) string {
	if v, ok := s.Values[key].(string); ok {
		return v
	}
	return ""
}
