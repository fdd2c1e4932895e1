// Package config loads server configuration from the environment and flags.
// Flags win over environment values.
package config

import (
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Server holds the tracker server settings.
type Server struct {
	Addr        string `env:"TRACKER_ADDR" envDefault:":8443"`
	MetricsAddr string `env:"TRACKER_METRICS_ADDR" envDefault:":9090"`
	Dev         bool   `env:"TRACKER_DEV"`

	JWTSecret  string        `env:"TRACKER_JWT_SECRET"`
	AccessTTL  time.Duration `env:"TRACKER_ACCESS_TTL" envDefault:"1h"`
	RefreshTTL time.Duration `env:"TRACKER_REFRESH_TTL" envDefault:"168h"`

	RPS   float64 `env:"TRACKER_RPS" envDefault:"50"`
	Burst int     `env:"TRACKER_BURST" envDefault:"100"`

	LoginWindow   time.Duration `env:"TRACKER_LOGIN_WINDOW" envDefault:"15m"`
	LoginMaxFails int           `env:"TRACKER_LOGIN_MAX_FAILS" envDefault:"5"`
	LoginBlock    time.Duration `env:"TRACKER_LOGIN_BLOCK" envDefault:"15m"`

	TLSCert string `env:"TRACKER_TLS_CERT"`
	TLSKey  string `env:"TRACKER_TLS_KEY"`
}

// Load reads environ (nil means the process environment) and then args.
func Load(fs *flag.FlagSet, args []string, environ map[string]string) (Server, error) {
	var c Server
	opts := env.Options{}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(&c, opts); err != nil {
		return Server{}, fmt.Errorf("parse env: %w", err)
	}

	fs.StringVar(&c.Addr, "addr", c.Addr, "gRPC listen address")
	fs.StringVar(&c.MetricsAddr, "metrics-addr", c.MetricsAddr, "Prometheus listen address, empty disables")
	fs.BoolVar(&c.Dev, "dev", c.Dev, "enable server reflection (dev only)")
	fs.StringVar(&c.JWTSecret, "jwt-key", c.JWTSecret, "HS256 signing key (required)")
	fs.DurationVar(&c.AccessTTL, "access-ttl", c.AccessTTL, "access token TTL")
	fs.DurationVar(&c.RefreshTTL, "refresh-ttl", c.RefreshTTL, "refresh token TTL")
	fs.Float64Var(&c.RPS, "rps", c.RPS, "per-peer requests per second, 0 disables")
	fs.IntVar(&c.Burst, "burst", c.Burst, "per-peer burst")
	fs.DurationVar(&c.LoginWindow, "login-window", c.LoginWindow, "failed login window")
	fs.IntVar(&c.LoginMaxFails, "login-max-fails", c.LoginMaxFails, "failures before lockout, 0 disables")
	fs.DurationVar(&c.LoginBlock, "login-block", c.LoginBlock, "lockout duration")
	fs.StringVar(&c.TLSCert, "tls-cert", c.TLSCert, "TLS certificate (PEM)")
	fs.StringVar(&c.TLSKey, "tls-key", c.TLSKey, "TLS private key (PEM)")

	if args == nil {
		args = []string{}
	}
	if err := fs.Parse(args); err != nil {
		return Server{}, err
	}
	if err := c.Validate(); err != nil {
		return Server{}, err
	}
	return c, nil
}

// Validate checks cross-field constraints.
func (c Server) Validate() error {
	switch {
	case c.JWTSecret == "":
		return errors.New("missing jwt signing key (TRACKER_JWT_SECRET or --jwt-key)")
	case c.AccessTTL <= 0 || c.RefreshTTL <= 0:
		return errors.New("token TTLs must be positive")
	case (c.TLSCert == "") != (c.TLSKey == ""):
		return errors.New("tls cert and key must be set together")
	}
	return nil
}

// TLS reports whether TLS material is configured.
func (c Server) TLS() bool { return c.TLSCert != "" }
