package token

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/and161185/openstudio/internal/errs"
	"github.com/golang-jwt/jwt/v5"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newSvc(t *testing.T) (*Service, *fakeClock) {
	t.Helper()
	clk := &fakeClock{t: time.Unix(1_700_000_000, 0).UTC()}
	s, err := New([]byte("supersecretkey"), WithClock(clk.Now))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s, clk
}

func payload(t *testing.T, tok string) map[string]any {
	t.Helper()
	parts := strings.Split(tok, ".")
	if len(parts) != 3 {
		t.Fatalf("not a JWS: %q", tok)
	}
	raw, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	return m
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()
	if _, err := New(nil); err == nil {
		t.Fatalf("want error on empty secret")
	}
	if _, err := New([]byte("k"), WithAccessTTL(0)); err == nil {
		t.Fatalf("want error on zero ttl")
	}
	s, err := New([]byte("k"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if s.AccessTTL() != 3600*time.Second || s.RefreshTTL() != 604800*time.Second {
		t.Fatalf("defaults: access=%v refresh=%v", s.AccessTTL(), s.RefreshTTL())
	}
}

func TestNew_CopiesSecret(t *testing.T) {
	t.Parallel()
	secret := []byte("secret")
	s, err := New(secret)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	tok, _, err := s.IssueAccess("sub", "a@b.c")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	secret[0] = 'X'
	if _, err := s.Verify(tok); err != nil {
		t.Fatalf("mutating caller's slice must not affect service: %v", err)
	}
}

func TestIssueAccess_RoundTripAndWireShape(t *testing.T) {
	t.Parallel()
	s, clk := newSvc(t)

	tok, exp, err := s.IssueAccess("3f1c7f4e-0000-4000-8000-000000000001", "bob@x.com")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if want := clk.Now().Add(3600 * time.Second); !exp.Equal(want) {
		t.Fatalf("exp=%v want %v", exp, want)
	}

	c, err := s.Verify(tok)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if c.Subject != "3f1c7f4e-0000-4000-8000-000000000001" || c.Email != "bob@x.com" || c.Kind != KindAccess {
		t.Fatalf("claims mismatch: %+v", c)
	}

	m := payload(t, tok)
	if m["sub"] != "3f1c7f4e-0000-4000-8000-000000000001" || m["email"] != "bob@x.com" || m["typ"] != "access" {
		t.Fatalf("payload mismatch: %v", m)
	}
	if got, ok := m["exp"].(float64); !ok || int64(got) != clk.Now().Unix()+3600 {
		t.Fatalf("exp must be integer epoch seconds: %v", m["exp"])
	}
}

func TestIssueRefresh_Lifetime(t *testing.T) {
	t.Parallel()
	s, clk := newSvc(t)

	tok, exp, err := s.IssueRefresh("sub", "e@x.com")
	if err != nil {
		t.Fatalf("IssueRefresh: %v", err)
	}
	if exp.Unix()-clk.Now().Unix() != 604800 {
		t.Fatalf("refresh lifetime = %ds", exp.Unix()-clk.Now().Unix())
	}
	c, err := s.VerifyRefresh(tok)
	if err != nil || c.Kind != KindRefresh {
		t.Fatalf("VerifyRefresh: %+v %v", c, err)
	}
}

func TestVerify_ExpiryBoundary(t *testing.T) {
	t.Parallel()
	s, clk := newSvc(t)

	tok, _, err := s.IssueAccess("sub", "e@x.com")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}

	clk.Advance(3599 * time.Second)
	if _, err := s.Verify(tok); err != nil {
		t.Fatalf("valid 1s before exp: %v", err)
	}
	clk.Advance(time.Second) // now == exp
	if _, err := s.Verify(tok); err != nil {
		t.Fatalf("exp == now must be accepted: %v", err)
	}
	clk.Advance(time.Second) // exp < now
	_, err = s.Verify(tok)
	if !errors.Is(err, errs.ErrTokenExpired) {
		t.Fatalf("want ErrTokenExpired, got %v", err)
	}
	if !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("expired must be an Unauthorized kind")
	}
}

func TestVerify_RefreshExpiryBoundary(t *testing.T) {
	t.Parallel()
	s, clk := newSvc(t)

	tok, _, err := s.IssueRefresh("sub", "e@x.com")
	if err != nil {
		t.Fatalf("IssueRefresh: %v", err)
	}
	clk.Advance(604800 * time.Second)
	if _, err := s.VerifyRefresh(tok); err != nil {
		t.Fatalf("refresh valid at exp: %v", err)
	}
	clk.Advance(time.Second)
	if _, err := s.VerifyRefresh(tok); !errors.Is(err, errs.ErrTokenExpired) {
		t.Fatalf("want ErrTokenExpired, got %v", err)
	}
}

func TestVerify_ExpiredButCorrectlySigned(t *testing.T) {
	t.Parallel()
	s, clk := newSvc(t)

	claims := Claims{
		Email: "e@x.com",
		Kind:  KindAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "sub",
			ExpiresAt: jwt.NewNumericDate(clk.Now().Add(-time.Hour)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("supersecretkey"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := s.Verify(tok); !errors.Is(err, errs.ErrTokenExpired) {
		t.Fatalf("want ErrTokenExpired, got %v", err)
	}
}

func TestVerify_Invalid(t *testing.T) {
	t.Parallel()
	s, clk := newSvc(t)

	good, _, err := s.IssueAccess("sub", "e@x.com")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}

	other, err := New([]byte("another-secret"), WithClock(clk.Now))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	foreign, _, _ := other.IssueAccess("sub", "e@x.com")

	hs384, _ := jwt.NewWithClaims(jwt.SigningMethodHS384, Claims{
		Kind:             KindAccess,
		RegisteredClaims: jwt.RegisteredClaims{Subject: "sub", ExpiresAt: jwt.NewNumericDate(clk.Now().Add(time.Hour))},
	}).SignedString([]byte("supersecretkey"))

	noExp, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Kind:             KindAccess,
		RegisteredClaims: jwt.RegisteredClaims{Subject: "sub"},
	}).SignedString([]byte("supersecretkey"))

	parts := strings.Split(good, ".")
	tampered := parts[0] + "." + base64.RawURLEncoding.EncodeToString([]byte(`{"sub":"admin","email":"e@x.com","typ":"access","exp":9999999999}`)) + "." + parts[2]

	for name, tok := range map[string]string{
		"garbage":   "this-is-not-a-jwt",
		"empty":     "",
		"foreign":   foreign,
		"wrong alg": hs384,
		"no exp":    noExp,
		"tampered":  tampered,
		"truncated": good[:len(good)-4],
	} {
		_, err := s.Verify(tok)
		if !errors.Is(err, errs.ErrTokenInvalid) {
			t.Fatalf("%s: want ErrTokenInvalid, got %v", name, err)
		}
		if !errors.Is(err, errs.ErrUnauthorized) {
			t.Fatalf("%s: must be Unauthorized kind", name)
		}
	}
}

func TestVerifyKind_RejectsMismatch(t *testing.T) {
	t.Parallel()
	s, _ := newSvc(t)

	access, _, _ := s.IssueAccess("sub", "e@x.com")
	refresh, _, _ := s.IssueRefresh("sub", "e@x.com")

	if _, err := s.VerifyRefresh(access); !errors.Is(err, errs.ErrWrongTokenKind) {
		t.Fatalf("access as refresh: want ErrWrongTokenKind, got %v", err)
	}
	if _, err := s.VerifyAccess(refresh); !errors.Is(err, errs.ErrWrongTokenKind) {
		t.Fatalf("refresh as access: want ErrWrongTokenKind, got %v", err)
	}
	if _, err := s.Refresh(access); !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("Refresh(access) must be unauthorized, got %v", err)
	}
}

func TestRefresh_RotatesPair(t *testing.T) {
	t.Parallel()
	s, clk := newSvc(t)

	orig, err := s.IssuePair("sub-1", "e@x.com")
	if err != nil {
		t.Fatalf("IssuePair: %v", err)
	}

	clk.Advance(10 * time.Minute)
	next, err := s.Refresh(orig.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	if !next.AccessExpiresAt.After(orig.AccessExpiresAt) {
		t.Fatalf("new access exp %v must be after %v", next.AccessExpiresAt, orig.AccessExpiresAt)
	}
	if got := next.AccessExpiresAt.Unix() - clk.Now().Unix(); got != 3600 {
		t.Fatalf("new access lifetime = %ds", got)
	}
	if got := next.RefreshExpiresAt.Unix() - clk.Now().Unix(); got != 604800 {
		t.Fatalf("new refresh lifetime = %ds", got)
	}

	c, err := s.VerifyAccess(next.AccessToken)
	if err != nil || c.Subject != "sub-1" || c.Email != "e@x.com" {
		t.Fatalf("rotated access claims: %+v %v", c, err)
	}

	// no revocation list: the old refresh token keeps working until its own exp
	if _, err := s.Refresh(orig.RefreshToken); err != nil {
		t.Fatalf("old refresh token should remain valid: %v", err)
	}
}

func TestRefresh_Expired(t *testing.T) {
	t.Parallel()
	s, clk := newSvc(t)

	pair, err := s.IssuePair("sub", "e@x.com")
	if err != nil {
		t.Fatalf("IssuePair: %v", err)
	}
	clk.Advance(604801 * time.Second)
	if _, err := s.Refresh(pair.RefreshToken); !errors.Is(err, errs.ErrTokenExpired) {
		t.Fatalf("want ErrTokenExpired, got %v", err)
	}
}

func TestService_ConcurrentUse(t *testing.T) {
	t.Parallel()
	s, _ := newSvc(t)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tok, _, err := s.IssueAccess("sub", "e@x.com")
			if err != nil {
				t.Errorf("IssueAccess: %v", err)
				return
			}
			if _, err := s.VerifyAccess(tok); err != nil {
				t.Errorf("VerifyAccess: %v", err)
			}
		}()
	}
	wg.Wait()
}
