package middleware

import (
	"strings"

	"github.com/abaraemmanuel62/Crypto-Payroll-Disbursement/config"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

func extractToken(c *fiber.Ctx) (string, error) {
	auth := c.Get("Authorization")
	if auth == "" {
		return "", fiber.NewError(fiber.StatusUnauthorized, "No token provided")
	}

	parts := strings.Split(auth, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", fiber.NewError(fiber.StatusUnauthorized, "Invalid token format")
	}

	return parts[1], nil
}

// RequireAuth parses the bearer token and exposes its claims to handlers.
// The engine still re-checks the principal against the owner on every
// mutating call; this gate only keeps unauthenticated traffic out.
func RequireAuth(c *fiber.Ctx) error {
	token, err := extractToken(c)
	if err != nil {
		return err
	}

	claims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(config.AppConfig.JWTSecret), nil
	})

	if err != nil {
		return c.Status(401).JSON(fiber.Map{
			"error": "Invalid or expired token",
		})
	}

	c.Locals("claims", claims)
	c.Locals("principal", claims["principal"])

	return c.Next()
}

// Principal returns the authenticated caller identity, or "" when the
// request carried no valid token.
func Principal(c *fiber.Ctx) string {
	if p, ok := c.Locals("principal").(string); ok {
		return p
	}
	return ""
}
