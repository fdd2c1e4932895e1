// Package service contains application use cases over the entity repositories.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/and161185/openstudio/internal/errs"
	"github.com/and161185/openstudio/internal/limiter"
	"github.com/and161185/openstudio/internal/metrics"
	"github.com/and161185/openstudio/internal/model"
	"github.com/and161185/openstudio/internal/token"
	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"
)

// LoginInput is a validated login request. Identifier is a username or an email.
type LoginInput struct {
	Identifier string
	Password   string
	IP         string
}

// AuthService defines authentication operations.
type AuthService interface {
	// Register creates a user and returns it with a fresh token pair.
	Register(ctx context.Context, in RegisterInput) (model.User, model.Tokens, error)
	// Login applies rate limiting, verifies credentials and issues a token pair.
	Login(ctx context.Context, in LoginInput) (model.Tokens, model.User, error)
	// Refresh rotates a refresh token into a new pair.
	Refresh(ctx context.Context, refreshToken string) (model.Tokens, error)
	// Authenticate resolves an access token to its user id.
	Authenticate(ctx context.Context, accessToken string) (uuid.UUID, error)
}

type AuthServiceImpl struct {
	creds  *CredentialStore
	tokens *token.Service
	lim    limiter.Limiter
	log    *zap.Logger
}

// NewAuthService constructs AuthService with required dependencies. log may be nil.
func NewAuthService(creds *CredentialStore, tokens *token.Service, lim limiter.Limiter, log *zap.Logger) *AuthServiceImpl {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthServiceImpl{creds: creds, tokens: tokens, lim: lim, log: log}
}

// Register creates the user and issues tokens for it.
func (s *AuthServiceImpl) Register(ctx context.Context, in RegisterInput) (model.User, model.Tokens, error) {
	u, err := s.creds.Register(ctx, in)
	if err != nil {
		s.count("register", err)
		return model.User{}, model.Tokens{}, err
	}
	tok, err := s.tokens.IssuePair(u.ID.String(), u.Email)
	if err != nil {
		s.count("register", err)
		return model.User{}, model.Tokens{}, err
	}
	s.count("register", nil)
	s.log.Info("user registered", zap.Stringer("user_id", u.ID))
	return u.Public(), tok, nil
}

// Login authenticates with rate limiting by (account, ip).
func (s *AuthServiceImpl) Login(ctx context.Context, in LoginInput) (model.Tokens, model.User, error) {
	tok, u, err := s.login(ctx, in)
	s.count("login", err)
	return tok, u, err
}

func (s *AuthServiceImpl) login(ctx context.Context, in LoginInput) (model.Tokens, model.User, error) {
	ipHash := limiter.HashIP(in.IP)
	key, err := s.limitKey(ctx, in.Identifier)
	if err != nil {
		return model.Tokens{}, model.User{}, err
	}

	allowed, _, err := s.lim.Allow(ctx, key, ipHash)
	if err != nil {
		return model.Tokens{}, model.User{}, err
	}
	if !allowed {
		return model.Tokens{}, model.User{}, errs.ErrRateLimited
	}

	u, err := s.creds.Verify(ctx, in.Identifier, in.Password)
	if err != nil {
		if !errors.Is(err, errs.ErrUnauthorized) {
			return model.Tokens{}, model.User{}, err
		}
		if blocked, _, ferr := s.lim.Failure(ctx, key, ipHash); ferr == nil && blocked {
			s.log.Warn("login locked", zap.String("identifier", in.Identifier))
			return model.Tokens{}, model.User{}, errs.ErrRateLimited
		}
		return model.Tokens{}, model.User{}, errs.ErrUnauthorized
	}

	_ = s.lim.Success(ctx, key, ipHash)

	tok, err := s.tokens.IssuePair(u.ID.String(), u.Email)
	if err != nil {
		return model.Tokens{}, model.User{}, err
	}
	return tok, u.Public(), nil
}

// limitKey maps the username and email forms of one account to a single
// limiter key. Unknown identifiers are keyed by their trimmed text.
func (s *AuthServiceImpl) limitKey(ctx context.Context, identifier string) (string, error) {
	identifier = strings.TrimSpace(identifier)
	u, found, err := s.creds.lookup(ctx, identifier)
	if err != nil {
		return "", err
	}
	if found {
		return "user:" + u.ID.String(), nil
	}
	return "ident:" + identifier, nil
}

// Refresh verifies a refresh token and issues a new pair. Every token failure
// is reported as errs.ErrUnauthorized to the caller.
func (s *AuthServiceImpl) Refresh(_ context.Context, refreshToken string) (model.Tokens, error) {
	tok, err := s.tokens.Refresh(refreshToken)
	s.count("refresh", err)
	if err != nil {
		if errors.Is(err, errs.ErrUnauthorized) {
			s.log.Debug("refresh rejected", zap.Error(err))
			return model.Tokens{}, errs.ErrUnauthorized
		}
		return model.Tokens{}, err
	}
	return tok, nil
}

// Authenticate verifies an access token and returns its subject.
func (s *AuthServiceImpl) Authenticate(_ context.Context, accessToken string) (uuid.UUID, error) {
	c, err := s.tokens.VerifyAccess(accessToken)
	if err != nil {
		s.count("authenticate", err)
		if errors.Is(err, errs.ErrUnauthorized) {
			return uuid.Nil, errs.ErrUnauthorized
		}
		return uuid.Nil, err
	}
	id, err := uuid.FromString(c.Subject)
	if err != nil {
		s.count("authenticate", errs.ErrUnauthorized)
		return uuid.Nil, fmt.Errorf("%w: bad subject", errs.ErrUnauthorized)
	}
	s.count("authenticate", nil)
	return id, nil
}

func (s *AuthServiceImpl) count(event string, err error) {
	metrics.AuthEventsTotal.WithLabelValues(event, resultLabel(err)).Inc()
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, errs.ErrAlreadyExists):
		return "conflict"
	case errors.Is(err, errs.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, errs.ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, errs.ErrInvalidArgument):
		return "invalid"
	default:
		return "error"
	}
}
