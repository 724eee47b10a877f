package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"github.com/dineqr/dineqr/internal/models"
)

// DefaultSessionTTL defines the validity period for session tokens.
const DefaultSessionTTL = 30 * 24 * time.Hour

// TokenConfig bundles the configuration required to build a TokenService.
type TokenConfig struct {
	Secret     string
	Issuer     string
	SessionTTL time.Duration
	Clock      func() time.Time
}

// SessionClaims represents the custom claims embedded in issued session tokens.
type SessionClaims struct {
	UserID string `json:"uid"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// TokenService issues and validates the signed, stateless session tokens that
// ride in the session cookie. Tokens are never stored server-side; only expiry
// or the client discarding the cookie ends a session.
type TokenService struct {
	db     *gorm.DB
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService constructs a TokenService instance from the required configuration.
func NewTokenService(db *gorm.DB, cfg TokenConfig) (*TokenService, error) {
	if db == nil {
		return nil, errors.New("token service: db is required")
	}
	if cfg.Secret == "" {
		return nil, errors.New("token service: secret must be provided")
	}

	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}

	now := time.Now
	if cfg.Clock != nil {
		now = cfg.Clock
	}

	return &TokenService{
		db:     db,
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
		ttl:    ttl,
		now:    now,
	}, nil
}

// Issue signs a session token for the given user identity.
func (s *TokenService) Issue(userID, email string) (string, error) {
	if userID == "" {
		return "", errors.New("token service: user id is required")
	}

	now := s.now()
	claims := &SessionClaims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    s.issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("token service: sign token: %w", err)
	}

	return signed, nil
}

// Verify parses and validates a session token. It never returns an error:
// any failure (bad signature, wrong algorithm, expiry, missing claims) yields
// ok=false so callers uniformly treat invalid tokens as anonymous.
func (s *TokenService) Verify(tokenString string) (*SessionClaims, bool) {
	if tokenString == "" {
		return nil, false
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)

	var claims SessionClaims
	_, err := parser.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, false
	}

	if s.issuer != "" && claims.Issuer != s.issuer {
		return nil, false
	}
	if claims.UserID == "" {
		return nil, false
	}

	return &claims, true
}

// ResolveUser turns a session token into the owning user record, selecting
// only public profile fields. It returns nil for an empty or invalid token,
// and nil when the token verifies but the user no longer exists.
func (s *TokenService) ResolveUser(ctx context.Context, tokenString string) (*models.User, error) {
	claims, ok := s.Verify(tokenString)
	if !ok {
		return nil, nil
	}

	var user models.User
	err := s.db.WithContext(ctx).
		Select("id", "email", "full_name", "country_name", "created_at", "updated_at").
		First(&user, "id = ?", claims.UserID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("token service: load user: %w", err)
	}

	return &user, nil
}
