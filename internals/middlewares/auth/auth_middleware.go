package auth

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/princekumar-dev/MSEC-Academics-sub001/internals/configs"
	helper "github.com/princekumar-dev/MSEC-Academics-sub001/internals/helpers"
)

// AuthMiddleware verifies the bearer token and stashes the caller's identity
// in Locals for downstream handlers.
func AuthMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if configs.JWTSecret == "" {
			log.Println("[ERROR] JWT_SECRET is empty")
			return fiber.NewError(fiber.StatusInternalServerError, "Missing JWT secret")
		}

		tokenString := helper.GetRawAccessToken(c)
		if tokenString == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - missing token")
		}

		claims, err := helper.ParseAccessToken(tokenString)
		if err != nil {
			log.Println("[ERROR] Token parse failed:", err)
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - invalid token")
		}

		c.Locals("user_id", claims.UserID)
		c.Locals("userEmail", claims.Email)
		c.Locals("userName", claims.Name)
		c.Locals("userRole", claims.Role)
		helper.SetRawAccessTokenLocals(c, tokenString)

		return c.Next()
	}
}
