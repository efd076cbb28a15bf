package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/vector-admin/backend/internal/config"
	"github.com/vector-admin/backend/internal/model"
)

// TokenKind separates the two credentials minted at login. A token presented
// as the wrong kind is rejected even when its signature holds.
type TokenKind string

const (
	TokenKindAccess  TokenKind = "access"
	TokenKindRefresh TokenKind = "refresh"
)

type tokenClaims struct {
	Role model.Role `json:"role"`
	Kind string     `json:"typ"`
	jwt.RegisteredClaims
}

// TokenIssuer mints and validates the signed bearer tokens. Secret and
// signing method are fixed for the process lifetime; rotating the secret
// invalidates every outstanding token.
type TokenIssuer struct {
	secret     []byte
	method     jwt.SigningMethod
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewTokenIssuer(cfg config.AuthConfig) (*TokenIssuer, error) {
	if cfg.SecretKey == "" {
		return nil, fmt.Errorf("%w: SECRET_KEY is required", ErrMisconfigured)
	}
	method := jwt.GetSigningMethod(cfg.Algorithm)
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("%w: unsupported ALGORITHM %q", ErrMisconfigured, cfg.Algorithm)
	}
	if cfg.AccessTTLSeconds <= 0 || cfg.RefreshTTLSeconds <= 0 {
		return nil, fmt.Errorf("%w: token lifetimes must be positive", ErrMisconfigured)
	}
	return &TokenIssuer{
		secret:     []byte(cfg.SecretKey),
		method:     method,
		accessTTL:  time.Duration(cfg.AccessTTLSeconds) * time.Second,
		refreshTTL: time.Duration(cfg.RefreshTTLSeconds) * time.Second,
		now:        time.Now,
	}, nil
}

func (t *TokenIssuer) AccessTTL() time.Duration {
	return t.accessTTL
}

// IssueAccess signs a short-lived token authorizing individual requests.
func (t *TokenIssuer) IssueAccess(subject string, role model.Role) (string, error) {
	return t.issue(subject, role, TokenKindAccess, t.accessTTL)
}

// IssueRefresh signs the long-lived token used only to mint new pairs.
func (t *TokenIssuer) IssueRefresh(subject string, role model.Role) (string, error) {
	return t.issue(subject, role, TokenKindRefresh, t.refreshTTL)
}

func (t *TokenIssuer) issue(subject string, role model.Role, kind TokenKind, ttl time.Duration) (string, error) {
	now := t.now()
	claims := tokenClaims{
		Role: role,
		Kind: string(kind),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(t.method, claims).SignedString(t.secret)
}

// Validate checks signature, expiry and kind. Every failure collapses to
// ErrUnauthorized so callers cannot probe which check rejected the token.
// Expiry is exclusive with zero leeway: a token presented at exactly its
// exp instant is already invalid.
func (t *TokenIssuer) Validate(tokenStr string, kind TokenKind) (string, model.Role, error) {
	claims := &tokenClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrUnauthorized
		}
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{t.method.Alg()}),
		jwt.WithTimeFunc(t.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return "", "", ErrUnauthorized
	}
	if claims.Kind != string(kind) || claims.Subject == "" {
		return "", "", ErrUnauthorized
	}
	return claims.Subject, claims.Role, nil
}
