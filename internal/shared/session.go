// Package shared holds cross-cutting admin concerns: browser sessions, CSRF
// tokens, list filters, the submission audit trail and the duplicate-submit
// guard.
package shared

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/stockroom-wms/stockroom/internal/forms"
)

// SessionManager orchestrates cookie based sessions backed by Redis. A
// session owns the form instances an admin has open plus any session-level
// transient notices (e.g. reference-data fetch failures).
type SessionManager struct {
	client     *redis.Client
	cookieName string
	ttl        time.Duration
	secure     bool
}

// Session holds per-request session data.
type Session struct {
	ID        string
	values    map[string]string
	formIDs   map[string]bool
	notices   []forms.Notice
	manager   *SessionManager
	isNew     bool
	dirty     bool
	destroyed bool
}

type sessionPayload struct {
	Values  map[string]string `json:"values"`
	FormIDs map[string]bool   `json:"form_ids"`
	Notices []forms.Notice    `json:"notices"`
}

// NewSessionManager constructs a SessionManager.
func NewSessionManager(client *redis.Client, cookieName string, ttl time.Duration, secure bool) *SessionManager {
	return &SessionManager{
		client:     client,
		cookieName: cookieName,
		ttl:        ttl,
		secure:     secure,
	}
}

// TTL reports the configured session lifetime.
func (sm *SessionManager) TTL() time.Duration {
	return sm.ttl
}

// Load loads or creates a new session for request.
func (sm *SessionManager) Load(ctx context.Context, r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(sm.cookieName)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return sm.newSession(), nil
		}
		return nil, err
	}

	payload, err := sm.client.Get(ctx, sm.redisKey(cookie.Value)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			sess := sm.newSession()
			sess.ID = cookie.Value
			return sess, nil
		}
		return nil, err
	}

	var stored sessionPayload
	if err := json.Unmarshal(payload, &stored); err != nil {
		return nil, err
	}

	sess := sm.newSession()
	sess.ID = cookie.Value
	sess.values = stored.Values
	sess.formIDs = stored.FormIDs
	sess.notices = stored.Notices
	sess.isNew = false
	if sess.values == nil {
		sess.values = make(map[string]string)
	}
	if sess.formIDs == nil {
		sess.formIDs = make(map[string]bool)
	}
	return sess, nil
}

// Commit persists the session and writes cookie headers as needed.
func (sm *SessionManager) Commit(ctx context.Context, w http.ResponseWriter, r *http.Request, sess *Session) error {
	if sess == nil {
		return nil
	}

	if sess.destroyed {
		if err := sm.client.Del(ctx, sm.redisKey(sess.ID)).Err(); err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		http.SetCookie(w, &http.Cookie{
			Name:     sm.cookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   sm.secure,
			SameSite: http.SameSiteStrictMode,
		})
		return nil
	}

	if sess.isNew && sess.ID == "" {
		sess.ID = sm.generateSessionID()
	}
	if !sess.dirty && !sess.isNew {
		return nil
	}

	payload, err := json.Marshal(sessionPayload{
		Values:  sess.values,
		FormIDs: sess.formIDs,
		Notices: sess.activeNotices(time.Now()),
	})
	if err != nil {
		return err
	}
	if err := sm.client.Set(ctx, sm.redisKey(sess.ID), payload, sm.ttl).Err(); err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sm.cookieName,
		Value:    sess.ID,
		Path:     "/",
		MaxAge:   int(sm.ttl.Seconds()),
		HttpOnly: true,
		Secure:   sm.secure,
		SameSite: http.SameSiteStrictMode,
	})
	return nil
}

func (sm *SessionManager) newSession() *Session {
	return &Session{
		values:  make(map[string]string),
		formIDs: make(map[string]bool),
		manager: sm,
		isNew:   true,
	}
}

func (sm *SessionManager) redisKey(id string) string {
	return "stockroom:session:" + id
}

func (sm *SessionManager) generateSessionID() string {
	buf := make([]byte, 32)
	_, _ = rand.Read(buf)
	return base64.RawURLEncoding.EncodeToString(buf)
}

// Get returns a stored session value.
func (s *Session) Get(key string) string {
	return s.values[key]
}

// Set stores a session value.
func (s *Session) Set(key, value string) {
	s.values[key] = value
	s.dirty = true
}

// MarkForm records that this session owns a form instance.
func (s *Session) MarkForm(formID string) {
	s.formIDs[formID] = true
	s.dirty = true
}

// OwnsForm reports whether the form instance belongs to this session.
func (s *Session) OwnsForm(formID string) bool {
	return s.formIDs[formID]
}

// ForgetForm removes a form instance from the session after close/cancel.
func (s *Session) ForgetForm(formID string) {
	delete(s.formIDs, formID)
	s.dirty = true
}

// FormIDs lists the session's open form instances.
func (s *Session) FormIDs() []string {
	ids := make([]string, 0, len(s.formIDs))
	for id := range s.formIDs {
		ids = append(ids, id)
	}
	return ids
}

// AddNotice records a transient session-level notice (5 second TTL).
func (s *Session) AddNotice(kind, message string) {
	s.notices = append(s.notices, forms.Notice{
		Kind:    kind,
		Message: message,
		Expires: time.Now().Add(forms.NoticeTTL),
	})
	s.dirty = true
}

// Notices returns notices that have not expired yet.
func (s *Session) Notices() []forms.Notice {
	return s.activeNotices(time.Now())
}

func (s *Session) activeNotices(now time.Time) []forms.Notice {
	kept := make([]forms.Notice, 0, len(s.notices))
	for _, n := range s.notices {
		if n.Expires.After(now) {
			kept = append(kept, n)
		}
	}
	return kept
}

// Destroy removes the session on commit.
func (s *Session) Destroy() {
	s.destroyed = true
	s.dirty = true
}

type sessionCtxKey struct{}

// ContextWithSession attaches the request session; the session middleware
// calls this before any handler runs.
func ContextWithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionCtxKey{}, sess)
}

// SessionFromContext returns the request session, or nil outside the
// middleware (e.g. tests driving handlers directly).
func SessionFromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionCtxKey{}).(*Session)
	return sess
}
