package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sentinel/internal/caching"
	"sentinel/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const sessionIssuer = "sentinel"

var ErrInvalidSession = errors.New("invalid session")

// SessionClaims is the payload of the session cookie.
type SessionClaims struct {
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// UserID returns the subject as a UUID.
func (c *SessionClaims) UserID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}

// SessionService mints and checks the signed session token set at login.
type SessionService interface {
	Issue(user *models.User) (token string, expiresAt time.Time, err error)
	Parse(ctx context.Context, token string) (*SessionClaims, error)
	Revoke(ctx context.Context, claims *SessionClaims) error
}

type sessionService struct {
	cache  caching.CacheService
	secret []byte
	ttl    time.Duration
	log    logrus.FieldLogger
	now    func() time.Time
}

func NewSessionService(cache caching.CacheService, secret string, ttl time.Duration, log logrus.FieldLogger) SessionService {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &sessionService{
		cache:  cache,
		secret: []byte(secret),
		ttl:    ttl,
		log:    log,
		now:    time.Now,
	}
}

func (s *sessionService) Issue(user *models.User) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)
	claims := SessionClaims{
		Roles: models.EffectiveRoles(user.Roles),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    sessionIssuer,
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign session token: %w", err)
	}
	return token, expiresAt, nil
}

func (s *sessionService) Parse(ctx context.Context, token string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(sessionIssuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidSession
	}
	if _, err := claims.UserID(); err != nil {
		return nil, ErrInvalidSession
	}

	revoked, err := s.cache.IsSessionRevoked(ctx, claims.ID)
	if err != nil {
		s.log.WithError(err).Warn("session revocation check failed")
	} else if revoked {
		return nil, ErrInvalidSession
	}
	return claims, nil
}

func (s *sessionService) Revoke(ctx context.Context, claims *SessionClaims) error {
	if claims == nil || claims.ExpiresAt == nil {
		return nil
	}
	return s.cache.RevokeSession(ctx, claims.ID, claims.ExpiresAt.Sub(s.now()))
}
