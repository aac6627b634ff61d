package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"docshare/internal/auth"
	"docshare/internal/http/middleware"
)

// signInResponse carries a freshly issued session and its bearer token.
type signInResponse struct {
	Token   string        `json:"token"`
	Session *auth.Session `json:"session"`
}

type tokenSignInRequest struct {
	Token string `json:"token"`
}

// AnonymousSignIn mints a fresh anonymous identity.
//
// @Summary Create an anonymous session
// @Tags auth
// @Produce json
// @Success 201 {object} signInResponse
// @Failure 403 {object} errorPayload
// @Router /auth/anonymous [post]
func AnonymousSignIn(svc *auth.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, token, err := svc.Anonymous()
		if err != nil {
			if errors.Is(err, auth.ErrAnonymousDisabled) {
				return writeError(c, fiber.StatusForbidden, "ANONYMOUS_DISABLED", err.Error())
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.Status(fiber.StatusCreated).JSON(signInResponse{Token: token, Session: sess})
	}
}

// TokenSignIn resolves a caller-supplied custom token to a session. The token
// itself remains the credential for subsequent requests.
//
// @Summary Sign in with a custom token
// @Tags auth
// @Accept json
// @Produce json
// @Success 200 {object} signInResponse
// @Failure 401 {object} errorPayload
// @Router /auth/token [post]
func TokenSignIn(svc *auth.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req tokenSignInRequest
		if err := c.BodyParser(&req); err != nil || req.Token == "" {
			return writeError(c, fiber.StatusBadRequest, "TOKEN_REQUIRED", "token is required")
		}

		sess, err := svc.SignInWithToken(req.Token)
		if err != nil {
			return writeError(c, fiber.StatusUnauthorized, "INVALID_TOKEN", "invalid or expired token")
		}
		return c.JSON(signInResponse{Token: req.Token, Session: sess})
	}
}

// GetSession returns the caller's resolved session.
//
// @Summary Inspect the current session
// @Tags auth
// @Produce json
// @Success 200 {object} auth.Session
// @Failure 401 {object} errorPayload
// @Router /auth/session [get]
func GetSession() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess := middleware.SessionFromCtx(c)
		if sess == nil {
			return fiber.NewError(fiber.StatusUnauthorized, "no session")
		}
		return c.JSON(sess)
	}
}
