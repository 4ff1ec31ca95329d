package middleware

import (
	"errors"
	"fmt"
	"strings"

	"synapse/internal/config"
	"synapse/internal/domain"
	"synapse/internal/logger"
	"synapse/internal/util"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const (
	AuthorizationHeader = "Authorization"
	BearerSchema        = "Bearer "
	UserIDKey           = "userID"   // Key for storing UserID in fiber.Ctx locals
	UsernameKey         = "username" // Key for storing the display username
)

// Claims is the payload of tokens issued by the external auth provider.
type Claims struct {
	Email        string                 `json:"email,omitempty"`
	UserMetadata map[string]interface{} `json:"user_metadata,omitempty"`
	jwt.RegisteredClaims
}

// Username picks the best display name carried by the token.
func (c *Claims) Username() string {
	for _, key := range []string{"username", "full_name", "name"} {
		if v, ok := c.UserMetadata[key].(string); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	if at := strings.Index(c.Email, "@"); at > 0 {
		return c.Email[:at]
	}
	return "Unknown"
}

// TokenVerifier parses and verifies a bearer token.
type TokenVerifier interface {
	Verify(tokenString string) (*Claims, error)
}

// HMACVerifier checks HS256 tokens signed with a shared secret.
type HMACVerifier struct {
	secret   []byte
	audience string
}

func NewHMACVerifier(cfg config.AuthConfig) (*HMACVerifier, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT secret cannot be empty")
	}
	return &HMACVerifier{secret: []byte(cfg.JWTSecret), audience: cfg.Audience}, nil
}

func (v *HMACVerifier) Verify(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	if !util.IsUUID(claims.Subject) {
		return nil, errors.New("token subject is not a user id")
	}
	return claims, nil
}

// Protected requires a valid bearer token and stores the caller's id and
// username in the request locals.
func Protected(verifier TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(AuthorizationHeader)
		if authHeader == "" {
			return domain.NewUnauthorizedError("Authorization header is missing")
		}
		if !strings.HasPrefix(authHeader, BearerSchema) {
			return domain.NewUnauthorizedError("Authorization scheme is not Bearer")
		}
		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, BearerSchema))
		if tokenString == "" {
			return domain.NewUnauthorizedError("Token is empty")
		}

		claims, err := verifier.Verify(tokenString)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				logger.Get().Debug("JWT token expired", zap.String("path", c.Path()))
				return domain.NewUnauthorizedError("Token has expired")
			}
			logger.Get().Warn("JWT validation failed", zap.String("path", c.Path()), zap.Error(err))
			return domain.NewUnauthorizedError("Invalid token")
		}

		c.Locals(UserIDKey, claims.Subject)
		c.Locals(UsernameKey, claims.Username())
		return c.Next()
	}
}

// UserID returns the authenticated caller, or "" outside Protected routes.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(UserIDKey).(string)
	return id
}

func Username(c *fiber.Ctx) string {
	name, _ := c.Locals(UsernameKey).(string)
	return name
}
