package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lestrrat-go/httprc/v3"
	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"
)

var ErrInvalidToken = errors.New("invalid token")

// TokenService issues HS256 access tokens whose subject is the user id, and
// verifies them. When a remote key set is registered, tokens that fail local
// verification are checked against it.
type TokenService struct {
	key    jwk.Key
	issuer string
	ttl    time.Duration

	jwksCache *jwk.Cache
	jwksURL   string
}

func NewTokenService(signingKey []byte, issuer string, ttl time.Duration) (*TokenService, error) {
	if len(signingKey) == 0 {
		return nil, fmt.Errorf("token signing key is empty")
	}

	key, err := jwk.Import(signingKey)
	if err != nil {
		return nil, fmt.Errorf("import signing key: %w", err)
	}

	return &TokenService{
		key:    key,
		issuer: issuer,
		ttl:    ttl,
	}, nil
}

// UseRemoteKeySet registers jwksURL with a refreshing cache.
func (s *TokenService) UseRemoteKeySet(ctx context.Context, jwksURL string) error {
	cache, err := jwk.NewCache(ctx, httprc.NewClient())
	if err != nil {
		return fmt.Errorf("failed to initialize jwk cache: %w", err)
	}

	if err := cache.Register(ctx, jwksURL); err != nil {
		return fmt.Errorf("failed to register jwks url with cache: %w", err)
	}

	s.jwksCache = cache
	s.jwksURL = jwksURL
	return nil
}

func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

func (s *TokenService) Issue(userID string) (string, error) {
	now := time.Now()

	token, err := jwt.NewBuilder().
		Subject(userID).
		Issuer(s.issuer).
		IssuedAt(now).
		Expiration(now.Add(s.ttl)).
		Build()
	if err != nil {
		return "", fmt.Errorf("build token: %w", err)
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256(), s.key))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return string(signed), nil
}

// Verify validates raw and returns its subject.
func (s *TokenService) Verify(ctx context.Context, raw string) (string, error) {
	token, err := jwt.Parse([]byte(raw),
		jwt.WithKey(jwa.HS256(), s.key),
		jwt.WithValidate(true),
		jwt.WithIssuer(s.issuer),
	)
	if err != nil && s.jwksCache != nil {
		set, lookupErr := s.jwksCache.Lookup(ctx, s.jwksURL)
		if lookupErr != nil {
			return "", fmt.Errorf("%w: fetch jwks: %v", ErrInvalidToken, lookupErr)
		}
		token, err = jwt.Parse([]byte(raw), jwt.WithKeySet(set), jwt.WithValidate(true))
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	subject, ok := token.Subject()
	if !ok || subject == "" {
		return "", fmt.Errorf("%w: no subject claim", ErrInvalidToken)
	}

	return subject, nil
}
