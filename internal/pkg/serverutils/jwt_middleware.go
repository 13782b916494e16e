package serverutils

import (
	"github.com/gofiber/fiber/v2"
)

// NewJwtMiddleware authenticates REST calls through the injected
// verifier and stashes the user id for controllers. Observers see every
// verified token; used to keep the profile cache warm.
func NewJwtMiddleware(verifier TokenVerifier, observers ...ClaimsObserver) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		authHeader := ctx.Get("Authorization")
		if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Missing token"})
		}

		claims, err := verifier.Verify(authHeader[7:])
		if err != nil {
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid token"})
		}

		for _, o := range observers {
			o.Observe(claims)
		}

		ctx.Locals("user_id", claims.UserID.String())
		return ctx.Next()
	}
}
