package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTokenTTL is the session token lifetime.
const DefaultTokenTTL = time.Hour

// CustomClaims extends JWT standard claims with the caller's role,
// organization and managed-user set.
type CustomClaims struct {
	jwt.RegisteredClaims
	Role           Role     `json:"role"`
	OrganizationID string   `json:"org,omitempty"`
	ManagedUserIDs []string `json:"mgd,omitempty"`
}

// TokenService issues and verifies HS256 session tokens with a single
// process-wide secret. It is safe for concurrent use.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService returns a TokenService signing with secret. A zero ttl
// means DefaultTokenTTL. An empty secret is rejected.
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Issue signs a token for id, valid for the service TTL from now.
func (s *TokenService) Issue(id *Identity) (string, error) {
	if id == nil || id.ID == "" {
		return "", fmt.Errorf("%w: missing subject", ErrTokenIssuance)
	}

	now := s.now()
	claims := CustomClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			ID:        uuid.NewString(),
		},
		Role:           id.Role,
		OrganizationID: id.OrganizationID,
		ManagedUserIDs: id.ManagedUserIDs,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTokenIssuance, err)
	}
	return signed, nil
}

// Verify checks the token's algorithm, signature, expiry and claims and
// returns the identity it carries. Every failure is ErrInvalidToken.
func (s *TokenService) Verify(tokenString string) (*Identity, error) {
	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{}, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" || !IsValidRole(claims.Role) {
		return nil, ErrInvalidToken
	}

	return &Identity{
		ID:             claims.Subject,
		Role:           claims.Role,
		OrganizationID: claims.OrganizationID,
		ManagedUserIDs: claims.ManagedUserIDs,
	}, nil
}

// ParseBearer extracts the token from an "Authorization: Bearer <token>"
// header value. The scheme is matched case-insensitively.
func ParseBearer(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}
