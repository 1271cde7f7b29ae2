package middleware

import (
	"fmt"
	"os"
	"strings"

	"marketplace-booking/constants"
	"marketplace-booking/types"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// RequireRoles creates a middleware that only passes sessions carrying one of
// the given roles.
func RequireRoles(roles ...string) fiber.Handler {
	return isAuthenticated(roles)
}

// RequireAuthentication only requires a valid session without a specific role
func RequireAuthentication() fiber.Handler {
	return isAuthenticated([]string{constants.RoleAny})
}

func isAuthenticated(roles []string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(
				types.ErrorResponse(types.ErrCodeAuthRequired, "Missing bearer token"))
		}

		claims, err := VerifyJWT(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(
				types.ErrorResponse(types.ErrCodeAuthRequired, "Invalid or expired session"))
		}

		c.Locals("user", claims)

		if !roleAllowed(claims, roles) {
			return c.Status(fiber.StatusUnauthorized).JSON(
				types.ErrorResponse(types.ErrCodeAuthRequired, "Session role not permitted for this action"))
		}

		return c.Next()
	}
}

func roleAllowed(claims jwt.MapClaims, roles []string) bool {
	if len(roles) == 0 {
		return true
	}
	role, _ := claims["role"].(string)
	// Admin sessions pass every role gate
	if role == constants.RoleAdmin {
		return true
	}
	for _, r := range roles {
		if r == constants.RoleAny || r == role {
			return true
		}
	}
	return false
}

// VerifyJWT verifies an HMAC-signed session token and returns its claims.
func VerifyJWT(tokenString string) (jwt.MapClaims, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is not configured")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse JWT: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid JWT token")
	}
	return claims, nil
}
