// Package session holds the bearer token issued by the backend's OAuth callback and the
// identity it names. Token validity is the backend's concern; the claims are only read
// to show who is signed in and to notice expiry.
package session

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// ErrNoToken is returned by Token when nobody is signed in
var ErrNoToken = errors.New("no session token")

// User is the identity carried in the session token
type User struct {
	ID       string `json:"sub"`
	Email    string `json:"email"`
	GoogleID string `json:"google_id"`
}

type claims struct {
	Email    string `json:"email"`
	GoogleID string `json:"google_id"`
	jwt.RegisteredClaims
}

// Session tracks the signed-in user. It satisfies core.Authorizer and oauth2.TokenSource.
type Session struct {
	mu     sync.RWMutex
	token  string
	user   User
	expiry time.Time
	logger *zap.Logger
	now    func() time.Time
}

// New creates an empty, signed-out session
func New(logger *zap.Logger) *Session {
	return &Session{logger: logger, now: time.Now}
}

// Login stores the token handed back by the auth callback
func (s *Session) Login(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrNoToken
	}
	c, err := parseClaims(token)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.user = User{ID: c.Subject, Email: c.Email, GoogleID: c.GoogleID}
	s.expiry = time.Time{}
	if c.ExpiresAt != nil {
		s.expiry = c.ExpiresAt.Time
	}
	s.logger.Debug("Signed in", zap.String("subject", c.Subject), zap.Time("expires", s.expiry))
	return nil
}

// Logout forgets the token. Components stop calling the backend from here on.
func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.user = User{}
	s.expiry = time.Time{}
	s.logger.Info("Signed out")
}

// IsAuthenticated reports whether a token is held and has not expired
func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.validLocked()
}

// CurrentUser returns the signed-in identity
func (s *Session) CurrentUser() (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.validLocked() {
		return User{}, false
	}
	return s.user, true
}

// Token implements oauth2.TokenSource
func (s *Session) Token() (*oauth2.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == "" {
		return nil, ErrNoToken
	}
	return &oauth2.Token{
		AccessToken: s.token,
		TokenType:   "Bearer",
		Expiry:      s.expiry,
	}, nil
}

func (s *Session) validLocked() bool {
	if s.token == "" {
		return false
	}
	return s.expiry.IsZero() || s.now().Before(s.expiry)
}

// parseClaims reads the claims of a JWT without checking its signature
func parseClaims(token string) (claims, error) {
	var c claims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &c); err != nil {
		return c, fmt.Errorf("malformed session token: %w", err)
	}
	return c, nil
}
