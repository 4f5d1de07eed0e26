package middleware

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

const userIDKey = "user_id"

// AuthConfig holds configuration for the auth middleware
type AuthConfig struct {
	// Secret is the HMAC secret for bearer token validation.
	Secret []byte
	// AllowHeaderFallback accepts an X-User-ID header instead of a bearer
	// token. Development and test use only.
	AllowHeaderFallback bool
}

// AuthMiddleware returns a Fiber middleware for Bearer token authentication.
// The authenticated subject becomes the vault-owning user identity.
func AuthMiddleware(config AuthConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		var token string
		if strings.HasPrefix(authHeader, "Bearer ") {
			token = strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		}

		if token == "" {
			if config.AllowHeaderFallback {
				if userID := c.Get("X-User-ID"); userID != "" {
					c.Locals(userIDKey, userID)
					return c.Next()
				}
			}
			c.Set("WWW-Authenticate", `Bearer realm="Access to protected resource"`)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing or invalid Bearer token",
			})
		}

		claims := jwt.RegisteredClaims{}
		_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return config.Secret, nil
		})
		if err != nil {
			c.Set("WWW-Authenticate", `Bearer realm="Access to protected resource"`)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":   "Invalid token",
				"details": err.Error(),
			})
		}
		if claims.Subject == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Token has no subject",
			})
		}

		c.Locals(userIDKey, claims.Subject)
		return c.Next()
	}
}

// GetAuthenticatedUserID retrieves the authenticated user identity from the
// Fiber context. Returns an empty string if the request was not authenticated.
func GetAuthenticatedUserID(c *fiber.Ctx) string {
	userID, _ := c.Locals(userIDKey).(string)
	return userID
}
