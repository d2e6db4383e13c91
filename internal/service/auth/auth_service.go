package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"stock-empire/internal/domain"
	"stock-empire/internal/service"
	"stock-empire/pkg/errors"
	"stock-empire/pkg/logger"
)

// Service implements the AuthService interface for identity provider sessions
type Service struct {
	secret []byte
	logger *logger.Logger
	now    func() time.Time
}

// NewService creates a new auth service. Sessions are HMAC-signed JWTs.
func NewService(jwtSecret string, logger *logger.Logger) service.AuthService {
	return &Service{
		secret: []byte(jwtSecret),
		logger: logger,
		now:    time.Now,
	}
}

// ValidateToken verifies a session token and returns its claims. The tier is
// read from public_metadata.tier, then from a top-level tier claim.
func (s *Service) ValidateToken(ctx context.Context, tokenString string) (*domain.AuthClaims, error) {
	tokenString = strings.TrimSpace(strings.TrimPrefix(tokenString, "Bearer "))
	if !isJWTToken(tokenString) {
		s.logger.Debug("Unrecognized token format")
		return nil, errors.NewAuthenticationError("Unrecognized token format")
	}

	if len(s.secret) == 0 {
		s.logger.Error("IDENTITY_JWT_SECRET not configured")
		return nil, errors.NewAuthenticationError("JWT validation not configured")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Verify the signing algorithm
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))

	if err != nil || !token.Valid {
		s.logger.WithError(err).Debug("Failed to parse/validate JWT token")
		return nil, errors.NewAuthenticationError("Invalid JWT token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.NewAuthenticationError("Invalid JWT token")
	}

	authClaims := &domain.AuthClaims{
		Sub:   getStringValue(claims, "sub"),
		Email: getStringValue(claims, "email"),
		Tier:  tierFromClaims(claims),
		Exp:   getInt64Value(claims, "exp"),
	}

	// Ensure we have at least an identifier
	if authClaims.Sub == "" {
		s.logger.Debug("No user identifier found in JWT token")
		return nil, errors.NewAuthenticationError("Invalid JWT token: no user identifier")
	}

	s.logger.WithFields(map[string]interface{}{
		"user_id": authClaims.Sub,
		"tier":    string(authClaims.Tier),
	}).Debug("JWT token validated successfully")
	return authClaims, nil
}

func tierFromClaims(claims jwt.MapClaims) domain.Tier {
	if meta, ok := claims["public_metadata"].(map[string]interface{}); ok {
		if tier := getStringValue(meta, "tier"); tier != "" {
			return domain.ParseTier(tier)
		}
	}
	return domain.ParseTier(getStringValue(claims, "tier"))
}

func isJWTToken(token string) bool {
	// JWT tokens have exactly 3 non-empty segments separated by dots
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return false
	}
	for _, p := range parts {
		if p == "" {
			return false
		}
	}
	return true
}

// Helper functions to safely extract values from claim maps
func getStringValue(m map[string]interface{}, key string) string {
	if val, ok := m[key].(string); ok {
		return val
	}
	return ""
}

func getInt64Value(m map[string]interface{}, key string) int64 {
	if val, ok := m[key].(float64); ok {
		return int64(val)
	}
	return 0
}
