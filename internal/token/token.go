// Package token issues and verifies signed, time-bounded access and refresh tokens.
//
// Tokens are stateless HS256 JWTs. There is no server-side session table, so a
// token cannot be revoked before its exp; refresh rotation hands out a new pair
// but the previous refresh token stays valid until it expires.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/and161185/openstudio/internal/errs"
	"github.com/and161185/openstudio/internal/model"
	"github.com/golang-jwt/jwt/v5"
)

// Default lifetimes.
const (
	DefaultAccessTTL  = 3600 * time.Second
	DefaultRefreshTTL = 604800 * time.Second
)

// Kind separates access tokens from refresh tokens.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

// Claims is the signed payload: {"sub","email","exp","typ"}.
type Claims struct {
	Email string `json:"email"`
	Kind  Kind   `json:"typ"`
	jwt.RegisteredClaims
}

// Option configures a Service.
type Option func(*Service)

// WithAccessTTL overrides DefaultAccessTTL.
func WithAccessTTL(d time.Duration) Option { return func(s *Service) { s.accessTTL = d } }

// WithRefreshTTL overrides DefaultRefreshTTL.
func WithRefreshTTL(d time.Duration) Option { return func(s *Service) { s.refreshTTL = d } }

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// Service signs and verifies tokens with one process-wide secret.
// The secret is copied at construction and only read afterwards.
type Service struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// New constructs a Service. An empty secret is rejected.
func New(secret []byte, opts ...Option) (*Service, error) {
	if len(secret) == 0 {
		return nil, errors.New("token: empty signing secret")
	}
	s := &Service{
		secret:     append([]byte(nil), secret...),
		accessTTL:  DefaultAccessTTL,
		refreshTTL: DefaultRefreshTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.accessTTL <= 0 || s.refreshTTL <= 0 {
		return nil, errors.New("token: non-positive ttl")
	}
	return s, nil
}

// AccessTTL reports the configured access lifetime.
func (s *Service) AccessTTL() time.Duration { return s.accessTTL }

// RefreshTTL reports the configured refresh lifetime.
func (s *Service) RefreshTTL() time.Duration { return s.refreshTTL }

// IssueAccess returns an access token for subject and its expiry.
func (s *Service) IssueAccess(subject, email string) (string, time.Time, error) {
	return s.issue(subject, email, KindAccess, s.accessTTL)
}

// IssueRefresh returns a refresh token for subject and its expiry.
func (s *Service) IssueRefresh(subject, email string) (string, time.Time, error) {
	return s.issue(subject, email, KindRefresh, s.refreshTTL)
}

// IssuePair returns a fresh access/refresh pair.
func (s *Service) IssuePair(subject, email string) (model.Tokens, error) {
	access, aexp, err := s.IssueAccess(subject, email)
	if err != nil {
		return model.Tokens{}, err
	}
	refresh, rexp, err := s.IssueRefresh(subject, email)
	if err != nil {
		return model.Tokens{}, err
	}
	return model.Tokens{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  aexp,
		RefreshExpiresAt: rexp,
	}, nil
}

// issue creates a signed HS256 JWT. exp is truncated to whole seconds.
func (s *Service) issue(subject, email string, kind Kind, ttl time.Duration) (string, time.Time, error) {
	exp := s.now().Add(ttl).Truncate(time.Second)
	claims := Claims{
		Email: email,
		Kind:  kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%w: sign token: %v", errs.ErrInternal, err)
	}
	return signed, exp, nil
}

// Verify checks the signature first, then compares exp with the clock.
// A token is expired when exp < now; exp == now is still accepted.
func (s *Service) Verify(tokenString string) (Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", errs.ErrTokenInvalid, err)
	}
	if claims.ExpiresAt == nil || claims.Subject == "" {
		return Claims{}, fmt.Errorf("%w: missing sub or exp", errs.ErrTokenInvalid)
	}
	if claims.ExpiresAt.Unix() < s.now().Unix() {
		return Claims{}, errs.ErrTokenExpired
	}
	return claims, nil
}

// VerifyAccess verifies tokenString and requires an access token.
func (s *Service) VerifyAccess(tokenString string) (Claims, error) {
	return s.verifyKind(tokenString, KindAccess)
}

// VerifyRefresh verifies tokenString and requires a refresh token.
func (s *Service) VerifyRefresh(tokenString string) (Claims, error) {
	return s.verifyKind(tokenString, KindRefresh)
}

func (s *Service) verifyKind(tokenString string, want Kind) (Claims, error) {
	c, err := s.Verify(tokenString)
	if err != nil {
		return Claims{}, err
	}
	if c.Kind != want {
		return Claims{}, errs.ErrWrongTokenKind
	}
	return c, nil
}

// Refresh verifies a refresh token and issues a new pair for the same subject and email.
func (s *Service) Refresh(refreshToken string) (model.Tokens, error) {
	c, err := s.VerifyRefresh(refreshToken)
	if err != nil {
		return model.Tokens{}, err
	}
	return s.IssuePair(c.Subject, c.Email)
}
