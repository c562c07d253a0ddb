package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jws"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/garsonhq/backend-garson/internal/common"
)

const roleClaim = "role"

// ErrInvalidCredentials is returned for unknown names, wrong PINs, and
// deactivated accounts alike.
var ErrInvalidCredentials = errors.New("auth: invalid credentials")

type waiterSource interface {
	GetWaiterByName(ctx context.Context, name string) (Waiter, error)
	GetWaiter(ctx context.Context, id uuid.UUID) (Waiter, error)
}

// Service signs and verifies waiter access tokens. Waiters authenticate with
// a name and short PIN; the PIN is stored as an argon2id hash.
type Service struct {
	waiters   waiterSource
	secret    []byte
	issuer    string
	audience  string
	accessTTL time.Duration
	clockSkew time.Duration
	signer    jwa.SignatureAlgorithm
	validator TokenValidator
	now       func() time.Time
}

// Config groups Service dependencies.
type Config struct {
	Waiters   waiterSource
	Secret    string
	Issuer    string
	Audience  string
	AccessTTL time.Duration
	ClockSkew time.Duration
}

// NewService constructs the auth service.
func NewService(cfg Config) (*Service, error) {
	if strings.TrimSpace(cfg.Secret) == "" {
		return nil, errors.New("auth: secret is required")
	}
	ttl := cfg.AccessTTL
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	skew := cfg.ClockSkew
	if skew <= 0 {
		skew = time.Minute
	}
	issuer := cfg.Issuer
	if issuer == "" {
		issuer = "garson"
	}
	audience := cfg.Audience
	if audience == "" {
		audience = "garson-floor"
	}
	return &Service{
		waiters:   cfg.Waiters,
		secret:    []byte(cfg.Secret),
		issuer:    issuer,
		audience:  audience,
		accessTTL: ttl,
		clockSkew: skew,
		signer:    jwa.HS256,
		validator: TokenValidator{
			Issuer:    issuer,
			Audience:  audience,
			ClockSkew: skew,
			Algorithm: jwa.HS256,
		},
		now: time.Now,
	}, nil
}

// WithNow overrides the clock, for tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// LoginResult carries the signed token and the authenticated account.
type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Waiter    Waiter    `json:"waiter"`
}

// Login verifies a name/PIN pair and issues an access token. All failure
// modes collapse into ErrInvalidCredentials so the response does not leak
// which part was wrong.
func (s *Service) Login(ctx context.Context, name, pin string) (LoginResult, error) {
	waiter, err := s.waiters.GetWaiterByName(ctx, strings.TrimSpace(name))
	if err != nil {
		if errors.Is(err, ErrWaiterNotFound) {
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, err
	}
	if !waiter.Active {
		return LoginResult{}, ErrInvalidCredentials
	}
	match, err := argon2id.ComparePasswordAndHash(pin, waiter.PINHash)
	if err != nil || !match {
		return LoginResult{}, ErrInvalidCredentials
	}

	token, expiresAt, err := s.signAccessToken(waiter)
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{Token: token, ExpiresAt: expiresAt, Waiter: waiter}, nil
}

// ParseAccessToken verifies a bearer token and returns the waiter id and role.
func (s *Service) ParseAccessToken(token string) (string, string, error) {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return "", "", common.NewAppError("UNAUTHORIZED", "missing token", http.StatusUnauthorized, nil)
	}
	algorithm, err := extractTokenAlgorithm(trimmed)
	if err != nil {
		return "", "", common.NewAppError("UNAUTHORIZED", "invalid token", http.StatusUnauthorized, err)
	}
	if algorithm != s.validator.Algorithm {
		return "", "", common.NewAppError("UNAUTHORIZED", "invalid token", http.StatusUnauthorized,
			fmt.Errorf("unexpected token algorithm %s", algorithm))
	}
	parsed, err := jwt.ParseString(trimmed, jwt.WithKey(algorithm, s.secret))
	if err != nil {
		return "", "", common.NewAppError("UNAUTHORIZED", "invalid token", http.StatusUnauthorized, err)
	}
	if err := s.validator.Validate(parsed, algorithm, s.now()); err != nil {
		return "", "", common.NewAppError("UNAUTHORIZED", "invalid token", http.StatusUnauthorized, err)
	}
	role := ""
	if v, ok := parsed.Get(roleClaim); ok {
		role, _ = v.(string)
	}
	return parsed.Subject(), role, nil
}

func (s *Service) signAccessToken(waiter Waiter) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.accessTTL)
	token, err := jwt.NewBuilder().
		Subject(waiter.ID.String()).
		Issuer(s.issuer).
		Audience([]string{s.audience}).
		IssuedAt(now).
		NotBefore(now.Add(-s.clockSkew)).
		Expiration(expiresAt).
		Claim(roleClaim, string(waiter.Role)).
		Build()
	if err != nil {
		return "", time.Time{}, err
	}
	signed, err := jwt.Sign(token, jwt.WithKey(s.signer, s.secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return string(signed), expiresAt, nil
}

// extractTokenAlgorithm reads the algorithm from the protected headers before
// verification so tokens claiming "none" or a foreign algorithm never reach
// the parser with a key attached.
func extractTokenAlgorithm(token string) (jwa.SignatureAlgorithm, error) {
	message, err := jws.ParseString(token)
	if err != nil {
		return "", err
	}
	signatures := message.Signatures()
	if len(signatures) == 0 {
		return "", errors.New("auth: token contains no signatures")
	}
	var algorithm jwa.SignatureAlgorithm
	for _, sig := range signatures {
		headers := sig.ProtectedHeaders()
		if headers == nil {
			return "", errors.New("auth: token missing protected headers")
		}
		alg := headers.Algorithm()
		if alg == "" {
			return "", errors.New("auth: token missing algorithm")
		}
		if alg == jwa.NoSignature {
			return "", errors.New("auth: token uses none algorithm")
		}
		if algorithm == "" {
			algorithm = alg
		} else if algorithm != alg {
			return "", errors.New("auth: mixed token algorithms detected")
		}
	}
	return algorithm, nil
}

// HashPIN produces the argon2id hash stored for a waiter PIN.
func HashPIN(pin string) (string, error) {
	return argon2id.CreateHash(pin, argon2id.DefaultParams)
}
