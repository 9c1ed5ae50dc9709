package serverutils

import (
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const (
	// AnonymousUserHeader lets unauthenticated deployments keep sessions apart per browser.
	AnonymousUserHeader = "X-Companion-User"
	AnonymousUserId     = "anonymous"

	// Browsers cannot set headers on a websocket handshake, so the query is a fallback
	tokenQuery         = "token"
	anonymousUserQuery = "user"
)

// NewJwtMiddleware validates bearer tokens signed with secret and stores the user_id claim.
// With an empty secret, auth is off and the user id comes from AnonymousUserHeader.
func NewJwtMiddleware(secret string) fiber.Handler {
	if secret == "" {
		return func(ctx *fiber.Ctx) error {
			userId := ctx.Get(AnonymousUserHeader)
			if userId == "" {
				userId = ctx.Query(anonymousUserQuery)
			}
			if userId == "" {
				userId = AnonymousUserId
			}
			ctx.Locals("user_id", userId)
			return ctx.Next()
		}
	}

	return func(ctx *fiber.Ctx) error {
		tokenStr := ctx.Query(tokenQuery)
		if authHeader := ctx.Get("Authorization"); len(authHeader) > 7 && authHeader[:7] == "Bearer " {
			tokenStr = authHeader[7:]
		}
		if tokenStr == "" {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Missing token"))
		}

		token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Invalid token"))
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Invalid claims"))
		}
		userId, ok := claims["user_id"].(string)
		if !ok || userId == "" {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Invalid claims"))
		}

		ctx.Locals("user_id", userId)
		return ctx.Next()
	}
}

// UserId returns the id stored by the jwt middleware.
func UserId(ctx *fiber.Ctx) string {
	userId, _ := ctx.Locals("user_id").(string)
	return userId
}
