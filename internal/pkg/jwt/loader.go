// internal/pkg/jwt/loader.go
package jwt

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	DefaultAccessTTL  = time.Hour
	DefaultRefreshTTL = 7 * 24 * time.Hour
)

type Config struct {
	Secret     string
	Algorithm  string
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Codec signs and verifies session tokens with a symmetric secret. It is
// built once at startup and never mutated, so it is safe for concurrent use.
type Codec struct {
	secret     []byte
	method     jwt.SigningMethod
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// Option customises a Codec at construction.
type Option func(*Codec)

// WithClock replaces time.Now for issuance and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) {
		c.now = now
	}
}

func LoadAndBuild(cfg Config, opts ...Option) (*Codec, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("jwt secret is empty")
	}

	alg := strings.ToUpper(strings.TrimSpace(cfg.Algorithm))
	if alg == "" {
		alg = jwt.SigningMethodHS256.Alg()
	}
	method, ok := jwt.GetSigningMethod(alg).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("unsupported jwt algorithm %q: only HMAC algorithms are allowed", cfg.Algorithm)
	}

	if cfg.AccessTTL < 0 || cfg.RefreshTTL < 0 {
		return nil, fmt.Errorf("token lifetimes must be positive")
	}
	if cfg.AccessTTL == 0 {
		cfg.AccessTTL = DefaultAccessTTL
	}
	if cfg.RefreshTTL == 0 {
		cfg.RefreshTTL = DefaultRefreshTTL
	}

	c := &Codec{
		secret:     []byte(cfg.Secret),
		method:     method,
		issuer:     cfg.Issuer,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

func (c *Codec) AccessTTL() time.Duration {
	return c.accessTTL
}

func (c *Codec) RefreshTTL() time.Duration {
	return c.refreshTTL
}

// Algorithm returns the configured signing algorithm name.
func (c *Codec) Algorithm() string {
	return c.method.Alg()
}

// Now returns the codec's notion of the current time.
func (c *Codec) Now() time.Time {
	return c.now()
}
