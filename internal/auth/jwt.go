package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/straye-as/sales-assistant-api/internal/config"
)

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrExpiredToken  = errors.New("token has expired")
	ErrMissingTenant = errors.New("token missing tenant_id claim")
	ErrNotConfigured = errors.New("token authentication not configured")
)

// Claims are the dashboard token claims
type Claims struct {
	TenantID string `json:"tenant_id"`
	jwt.RegisteredClaims
}

// JWTValidator issues and validates HMAC-signed tenant dashboard tokens
type JWTValidator struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewJWTValidator creates a validator from the auth config
func NewJWTValidator(cfg *config.AuthConfig) *JWTValidator {
	return &JWTValidator{
		secret: []byte(cfg.JWTSecret),
		issuer: cfg.Issuer,
		now:    time.Now,
	}
}

// ValidateToken validates a token and returns the principal it grants
func (v *JWTValidator) ValidateToken(tokenString string) (*Principal, error) {
	if len(v.secret) == 0 {
		return nil, ErrNotConfigured
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(v.now),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.TenantID == "" {
		return nil, ErrMissingTenant
	}
	tenantID, err := uuid.Parse(claims.TenantID)
	if err != nil {
		return nil, fmt.Errorf("%w: tenant_id is not a uuid", ErrInvalidToken)
	}

	return &Principal{
		Subject:  claims.Subject,
		AuthType: AuthTypeJWT,
		TenantID: &tenantID,
	}, nil
}

// IssueToken signs a token for subject scoped to tenantID
func (v *JWTValidator) IssueToken(subject string, tenantID uuid.UUID, ttl time.Duration) (string, error) {
	if len(v.secret) == 0 {
		return "", ErrNotConfigured
	}

	now := v.now()
	claims := Claims{
		TenantID: tenantID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}
