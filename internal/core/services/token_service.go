package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/comitanigiacomo/goalmate-engine/internal/core/domain"
)

const userLookupTimeout = 2 * time.Second

// TokenService issues and checks HS256 access tokens whose subject is the
// user id.
type TokenService struct {
	secret []byte
	issuer string
	ttl    time.Duration
	users  domain.UserRepository
	now    func() time.Time
}

func NewTokenService(secret, issuer string, ttl time.Duration, users domain.UserRepository) *TokenService {
	return &TokenService{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		users:  users,
		now:    time.Now,
	}
}

func (s *TokenService) GenerateToken(userID string) (string, error) {
	issued := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		Issuer:    s.issuer,
		IssuedAt:  jwt.NewNumericDate(issued),
		ExpiresAt: jwt.NewNumericDate(issued.Add(s.ttl)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("token service: signing: %w", err)
	}
	return signed, nil
}

func (s *TokenService) parse(tokenString string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", domain.ErrInvalidToken)
	}
	return claims, nil
}

// ValidateToken returns the subject of a well-formed, unexpired token whose
// user still exists. Token problems wrap domain.ErrInvalidToken; storage
// failures do not.
func (s *TokenService) ValidateToken(ctx context.Context, tokenString string) (string, error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, userLookupTimeout)
	defer cancel()

	if _, err := s.users.GetByID(ctx, claims.Subject); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", fmt.Errorf("%w: user no longer exists", domain.ErrInvalidToken)
		}
		return "", fmt.Errorf("token service: user lookup: %w", err)
	}

	return claims.Subject, nil
}
