package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Config defines a public type used by fpgate APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	TTL time.Duration
	// SigningKey is the symmetric HS256 key held only in-process.
	SigningKey []byte
	Issuer     string
}

// TokenMeta carries informational claims stamped into a token alongside the
// subject. They describe the issuance context and are not re-verified.
type TokenMeta struct {
	DeviceID  string
	IP        string
	UserAgent string
}

// Claims defines a public type used by fpgate APIs.
//
// Claims instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Claims struct {
	DeviceID  string `json:"deviceId,omitempty"`
	IP        string `json:"ip,omitempty"`
	UserAgent string `json:"userAgent,omitempty"`
	jwt.RegisteredClaims
}

// Manager defines a public type used by fpgate APIs.
//
// Manager instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Manager struct {
	config Config
}

// NewManager validates the codec configuration. HS256 is the only supported
// method; expiry is compared exactly, with no leeway.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.TTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	if len(cfg.SigningKey) == 0 {
		return nil, errors.New("hs256 requires signing key")
	}
	return &Manager{config: cfg}, nil
}

// Issue signs a token bound to subject (the fingerprint) with iat = now and
// exp = now + TTL.
func (m *Manager) Issue(subject string, meta TokenMeta, now time.Time) (string, error) {
	claims := Claims{
		DeviceID:  meta.DeviceID,
		IP:        meta.IP,
		UserAgent: meta.UserAgent,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.config.TTL)),
		},
	}
	if m.config.Issuer != "" {
		claims.Issuer = m.config.Issuer
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.config.SigningKey)
}

// Parse verifies structure, signature, and expiry, returning the claims.
// Any malformed, mis-signed, or expired token yields an error.
func (m *Manager) Parse(tokenStr string) (*Claims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if m.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(m.config.Issuer))
	}

	parser := jwt.NewParser(options...)
	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return m.config.SigningKey, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

// TTL reports the configured token lifetime.
func (m *Manager) TTL() time.Duration {
	return m.config.TTL
}
