package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Windi-Fikriyansyah/talentlink_be/internal/utils"
)

const CookieName = "jm_token"

// JWTFromCookie reads the token from the jm_token cookie, falling back to an
// Authorization: Bearer header, and stores the verified claims in "user".
func JWTFromCookie(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenStr := c.Cookies(CookieName)
		if tokenStr == "" {
			auth := c.Get(fiber.HeaderAuthorization)
			if strings.HasPrefix(auth, "Bearer ") {
				tokenStr = strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			}
		}
		if tokenStr == "" {
			return fiber.ErrUnauthorized
		}

		claims, err := utils.ParseJWT(secret, tokenStr)
		if err != nil {
			return fiber.ErrUnauthorized
		}

		c.Locals("user", claims)
		return c.Next()
	}
}
