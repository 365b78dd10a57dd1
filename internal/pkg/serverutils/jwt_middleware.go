package serverutils

import (
	"errors"
	"strings"

	"notekeeper-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	AccessTokenCookie = "access_token"

	localUserId      = "user_id"
	localAccessToken = "access_token"
)

// TokenFromRequest returns the bearer token, falling back to the cookie.
func TokenFromRequest(ctx *fiber.Ctx) string {
	authHeader := ctx.Get(fiber.HeaderAuthorization)
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ctx.Cookies(AccessTokenCookie)
}

// JwtMiddleware rejects the request with 401 unless it carries a valid,
// unrevoked access token.
func JwtMiddleware(auth service.IAuthService) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		tokenStr := TokenFromRequest(ctx)
		if tokenStr == "" {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Missing token"))
		}

		userId, err := auth.Authenticate(ctx.UserContext(), tokenStr)
		if err != nil {
			if errors.Is(err, service.ErrInvalidToken) {
				return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Invalid token"))
			}
			return err
		}

		ctx.Locals(localUserId, userId)
		ctx.Locals(localAccessToken, tokenStr)
		return ctx.Next()
	}
}

// JwtPageMiddleware is the HTML counterpart: unauthenticated requests are
// redirected to loginPath.
func JwtPageMiddleware(auth service.IAuthService, loginPath string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		tokenStr := TokenFromRequest(ctx)
		if tokenStr == "" {
			return ctx.Redirect(loginPath, fiber.StatusSeeOther)
		}

		userId, err := auth.Authenticate(ctx.UserContext(), tokenStr)
		if err != nil {
			if errors.Is(err, service.ErrInvalidToken) {
				ctx.ClearCookie(AccessTokenCookie)
				return ctx.Redirect(loginPath, fiber.StatusSeeOther)
			}
			return err
		}

		ctx.Locals(localUserId, userId)
		ctx.Locals(localAccessToken, tokenStr)
		return ctx.Next()
	}
}

// UserID returns the authenticated caller set by the JWT middleware.
func UserID(ctx *fiber.Ctx) (uuid.UUID, bool) {
	id, ok := ctx.Locals(localUserId).(uuid.UUID)
	return id, ok && id != uuid.Nil
}

func AccessToken(ctx *fiber.Ctx) string {
	s, _ := ctx.Locals(localAccessToken).(string)
	return s
}
