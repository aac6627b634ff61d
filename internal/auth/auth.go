package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"docshare/internal/config"
)

var (
	// ErrAnonymousDisabled is returned when anonymous identity issuance is
	// switched off; identity-gated operations stay refused until a custom
	// token is presented instead.
	ErrAnonymousDisabled = errors.New("anonymous sign-ins are disabled")
	ErrInvalidToken      = errors.New("invalid session token")
	ErrSessionExpired    = errors.New("session expired")
)

// Session is a resolved identity for one browser/client context.
type Session struct {
	UserID    string    `json:"user_id"`
	Anonymous bool      `json:"anonymous"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Service issues and verifies session tokens. Tokens are HS256 JWTs carrying
// the identity in "sub"; anonymous identities are minted UUIDs.
type Service struct {
	secret           []byte
	ttl              time.Duration
	anonymousEnabled bool
}

// NewService builds the session service from config.
func NewService(cfg config.AuthConfig) (*Service, error) {
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("auth jwt secret is required")
	}
	ttl := time.Duration(cfg.SessionTTLSec) * time.Second
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Service{
		secret:           []byte(cfg.JWTSecret),
		ttl:              ttl,
		anonymousEnabled: cfg.AnonymousEnabled,
	}, nil
}

// Anonymous mints a fresh anonymous identity and returns its session and
// signed token. Fails with ErrAnonymousDisabled when issuance is switched off.
func (s *Service) Anonymous() (*Session, string, error) {
	if !s.anonymousEnabled {
		return nil, "", ErrAnonymousDisabled
	}
	now := time.Now().UTC()
	sess := &Session{
		UserID:    uuid.NewString(),
		Anonymous: true,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.ttl),
	}
	token, err := s.sign(sess)
	if err != nil {
		return nil, "", err
	}
	return sess, token, nil
}

// SignInWithToken verifies a custom token signed with the shared secret and
// resolves it to a session. The token itself remains the session credential.
func (s *Service) SignInWithToken(raw string) (*Session, error) {
	return s.Verify(raw)
}

// Verify parses and validates a session token.
func (s *Service) Verify(raw string) (*Session, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrSessionExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok || !tok.Valid {
		return nil, ErrInvalidToken
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, ErrInvalidToken
	}

	sess := &Session{UserID: sub}
	if anon, ok := claims["anon"].(bool); ok {
		sess.Anonymous = anon
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		sess.IssuedAt = iat.Time
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		sess.ExpiresAt = exp.Time
	}
	return sess, nil
}

func (s *Service) sign(sess *Session) (string, error) {
	claims := jwt.MapClaims{
		"sub":  sess.UserID,
		"anon": sess.Anonymous,
		"iat":  sess.IssuedAt.Unix(),
		"exp":  sess.ExpiresAt.Unix(),
	}
	jt := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return jt.SignedString(s.secret)
}
