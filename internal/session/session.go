package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mrirakib04/sks-web/internal/backend"
	"github.com/mrirakib04/sks-web/internal/domain"
	"github.com/mrirakib04/sks-web/internal/notify"
)

const (
	TokenCookie = "token"

	LogoutNotice = "Logout Successful"
)

var (
	ErrNotLoggedIn  = errors.New("not logged in")
	ErrInvalidEmail = errors.New("email is required")
)

type Backend interface {
	IssueToken(ctx context.Context, email string) error
	RevokeToken(ctx context.Context) error
	User(ctx context.Context, email string) (domain.User, error)
	CreateUser(ctx context.Context, u domain.User) error
	Cookies() []*http.Cookie
	ClearCookies()
}

// Identity is what the identity provider tells us about the shopper.
type Identity struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Image string `json:"image"`
}

// Session tracks the logged-in shopper. The backend keeps the real session in
// an httpOnly token cookie; this type mirrors who that cookie belongs to.
type Session struct {
	mu   sync.RWMutex
	user *domain.User

	backend  Backend
	notifier notify.Notifier
	now      func() time.Time
	log      *slog.Logger
}

func New(b Backend, notifier notify.Notifier, log *slog.Logger) *Session {
	if notifier == nil {
		notifier = notify.Discard{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Session{
		backend:  b,
		notifier: notifier,
		now:      time.Now,
		log:      log.With("component", "session"),
	}
}

// Login exchanges the identity for a backend session and loads the user
// record, creating it with no role on first login. The identity is taken as
// given: the gateway must only be reachable behind the identity provider
// that verified it.
func (s *Session) Login(ctx context.Context, id Identity) (domain.User, error) {
	email := strings.TrimSpace(id.Email)
	if email == "" {
		return domain.User{}, ErrInvalidEmail
	}

	if err := s.backend.IssueToken(ctx, email); err != nil {
		return domain.User{}, fmt.Errorf("issue token: %w", err)
	}

	user, err := s.backend.User(ctx, email)
	if errors.Is(err, backend.ErrNotFound) {
		user = domain.User{
			Name:  id.Name,
			Email: email,
			Image: id.Image,
			Role:  domain.RoleNone,
		}
		if err := s.backend.CreateUser(ctx, user); err != nil {
			return domain.User{}, fmt.Errorf("register user: %w", err)
		}
		s.log.Info("registered new user", "email", email)
	} else if err != nil {
		return domain.User{}, fmt.Errorf("load user: %w", err)
	}

	s.mu.Lock()
	s.user = &user
	s.mu.Unlock()
	return user, nil
}

func (s *Session) Logout(ctx context.Context) error {
	if err := s.backend.RevokeToken(ctx); err != nil {
		s.notifier.Notify(notify.LevelError, err.Error())
		return fmt.Errorf("revoke token: %w", err)
	}
	s.backend.ClearCookies()

	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()

	s.notifier.Notify(notify.LevelWarning, LogoutNotice)
	return nil
}

// User returns the logged-in user while the session is valid.
func (s *Session) User() (domain.User, error) {
	s.mu.RLock()
	u := s.user
	s.mu.RUnlock()

	if u == nil || !s.tokenValid() {
		return domain.User{}, ErrNotLoggedIn
	}
	return *u, nil
}

func (s *Session) Authenticated() bool {
	_, err := s.User()
	return err == nil
}

// tokenValid is false only when the token cookie is present and its exp
// claim has passed. The signature is the backend's business.
func (s *Session) tokenValid() bool {
	raw := ""
	for _, ck := range s.backend.Cookies() {
		if ck.Name == TokenCookie {
			raw = ck.Value
			break
		}
	}
	if raw == "" {
		return true
	}

	exp, err := TokenExpiry(raw)
	if err != nil {
		s.log.Debug("token cookie is not a readable jwt", "error", err)
		return true
	}
	return exp.IsZero() || s.now().Before(exp)
}

// TokenExpiry reads the exp claim of a JWT without verifying it. A token
// without exp yields the zero time.
func TokenExpiry(raw string) (time.Time, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return time.Time{}, err
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, err
	}
	if exp == nil {
		return time.Time{}, nil
	}
	return exp.Time, nil
}
