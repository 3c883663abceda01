package middleware

import (
	"strings"
	"time"

	"passkey_auth_ms/config"
	"passkey_auth_ms/services"

	"github.com/gofiber/fiber/v2"
)

// AuthMiddleware accepts either the session cookie minted by the
// passkey login or a Bearer access token. Both resolve to a userId in
// the request locals.
func AuthMiddleware(redis services.IRedisService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if sessionId := c.Cookies("session_id"); sessionId != "" {
			session, err := redis.GetLoginSession(sessionId)
			if err == nil {
				c.Locals("userId", session.UserID)
				return c.Next()
			}
		}

		authHeader := c.Get("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing or invalid token",
			})
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		secret := config.Conf.Application.Security.Secret
		issuer := config.Conf.Application.Security.Issuer
		acctm := config.Conf.Application.Security.TokenValidityInSeconds
		reftm := config.Conf.Application.Security.TokenValidityInSecondsForRememberMe
		jwt := services.NewJWTService([]byte(secret), issuer, time.Duration(acctm)*time.Second, time.Duration(reftm)*time.Second)

		token, err := jwt.ParseJWT(tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Token parse error",
			})
		}

		claims, err := jwt.GetClaims(token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid token",
			})
		}
		if sub, ok := claims["sub"].(float64); ok {
			c.Locals("userId", uint(sub))
		}

		return c.Next()
	}
}
