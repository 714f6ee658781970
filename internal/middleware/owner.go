package middleware

import (
	"fmt"
	"strings"

	"github.com/dgrijalva/jwt-go"
	"github.com/gofiber/fiber/v2"
)

// OwnerLocalKey is the fiber locals key holding the owner principal.
const OwnerLocalKey = "owner"

// Owner resolves who owns the records written by a request.
//
// Without a secret every request is attributed to defaultOwner. With a
// secret, requests must carry an HS256 "Bearer" token whose "owner" claim
// (or "sub" when absent) names the owner; others are rejected with 401.
func Owner(defaultOwner, jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if jwtSecret == "" {
			c.Locals(OwnerLocalKey, defaultOwner)
			return c.Next()
		}

		authHeader := c.Get(fiber.HeaderAuthorization)
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			return fiber.NewError(fiber.StatusUnauthorized, "Authorization header format must be 'Bearer <token>'")
		}

		owner, err := ownerFromToken(parts[1], []byte(jwtSecret))
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}
		c.Locals(OwnerLocalKey, owner)
		return c.Next()
	}
}

// OwnerFrom returns the owner stored by the Owner middleware.
func OwnerFrom(c *fiber.Ctx) string {
	owner, _ := c.Locals(OwnerLocalKey).(string)
	return owner
}

func ownerFromToken(tokenString string, secret []byte) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("invalid token")
	}
	for _, key := range []string{"owner", "sub"} {
		if owner, ok := claims[key].(string); ok && owner != "" {
			return owner, nil
		}
	}
	return "", fmt.Errorf("token carries no owner")
}
