// Package session ties HTTP requests to a session id carried in a signed cookie.
package session

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"

	"github.com/MrSnakeDoc/utmgen/internal/logger"
)

// CookieName is the name of the session cookie.
const CookieName = "utmgen_session"

type ctxKey struct{}

// Options configures the cookie codec.
type Options struct {
	HashKey  []byte        // HMAC key; a random one is generated when empty
	BlockKey []byte        // optional AES key, nil keeps the value signed but readable
	Secure   bool          // Secure cookie attribute
	MaxAge   time.Duration // cookie lifetime, refreshed on every request
}

// Manager resolves the session id of each request, minting one when needed.
type Manager struct {
	codec  *securecookie.SecureCookie
	secure bool
	maxAge time.Duration
	newID  func() string
	logger logger.Logger
}

// NewManager builds a session manager.
func NewManager(opts Options, log logger.Logger) *Manager {
	hashKey := opts.HashKey
	if len(hashKey) == 0 {
		log.Warn("no cookie hash key configured, using a random key (sessions will not survive restarts)")
		hashKey = securecookie.GenerateRandomKey(64)
	}

	maxAge := opts.MaxAge
	if maxAge <= 0 {
		maxAge = 12 * time.Hour
	}

	// securecookie treats any non-nil block key as an AES key.
	var blockKey []byte
	if len(opts.BlockKey) > 0 {
		blockKey = opts.BlockKey
	}

	codec := securecookie.New(hashKey, blockKey)
	codec.MaxAge(int(maxAge.Seconds()))

	return &Manager{
		codec:  codec,
		secure: opts.Secure,
		maxAge: maxAge,
		newID:  uuid.NewString,
		logger: log,
	}
}

// Middleware attaches the session id to the request context and (re)issues the cookie.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := m.read(r)
		if !ok {
			id = m.newID()
			m.logger.Debug("new session", logger.String("session_id", id))
		}

		if err := m.write(w, id); err != nil {
			m.logger.Error("failed to encode session cookie", logger.Error(err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithID(r.Context(), id)))
	})
}

// Clear expires the session cookie.
func (m *Manager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (m *Manager) read(r *http.Request) (string, bool) {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return "", false
	}

	var id string
	if err := m.codec.Decode(CookieName, c.Value, &id); err != nil {
		m.logger.Debug("discarding invalid session cookie", logger.Error(err))
		return "", false
	}
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return id, true
}

func (m *Manager) write(w http.ResponseWriter, id string) error {
	encoded, err := m.codec.Encode(CookieName, id)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    encoded,
		Path:     "/",
		MaxAge:   int(m.maxAge.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// WithID returns a context carrying the session id.
func WithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the session id set by the middleware.
func FromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ctxKey{}).(string)
	return id, ok && id != ""
}
