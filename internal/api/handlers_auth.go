package api

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/skinior/skinior-api/internal/models"
	"github.com/skinior/skinior-api/internal/services"
)

type credentialsInput struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

type userView struct {
	ID                 string `json:"id"`
	Email              string `json:"email"`
	DisplayName        string `json:"displayName"`
	MustChangePassword bool   `json:"mustChangePassword"`
	CreatedAt          string `json:"createdAt"`
}

type authResult struct {
	Token     string   `json:"token"`
	ExpiresAt string   `json:"expiresAt"`
	User      userView `json:"user"`
}

func newUserView(user *models.User) userView {
	return userView{
		ID:                 user.ID,
		Email:              user.Email,
		DisplayName:        user.DisplayName,
		MustChangePassword: user.MustChangePassword,
		CreatedAt:          user.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func (handler *Handler) Register(c *fiber.Ctx) error {
	input := credentialsInput{}
	if err := c.BodyParser(&input); err != nil {
		return handler.badRequestBody(c)
	}

	user, err := handler.authService.Register(c.UserContext(), input.Email, input.Password, input.DisplayName)
	if err != nil {
		if errors.Is(err, services.ErrAuthCredentialsInvalid) {
			return handler.apiError(c, fiber.StatusBadRequest, codeInvalidParameters, "errors.invalid_parameters", map[string]string{
				"email": "a valid email and a password are required",
			})
		}
		return handler.respondError(c, err)
	}

	return handler.respondWithToken(c, fiber.StatusCreated, &user, "auth.registered")
}

func (handler *Handler) Login(c *fiber.Ctx) error {
	ctx := c.UserContext()
	limiterKey := requestLimiterKey(c)
	now := handler.now()

	blocked, err := handler.loginLimiter.tooManyRecent(ctx, limiterKey, now, loginAttemptLimit, loginAttemptWindow)
	if err != nil {
		return handler.respondError(c, err)
	}
	if blocked {
		return handler.apiError(c, fiber.StatusTooManyRequests, codeTooManyAttempts, "errors.too_many_attempts", nil)
	}

	input := credentialsInput{}
	if err := c.BodyParser(&input); err != nil {
		return handler.badRequestBody(c)
	}

	user, err := handler.authService.Authenticate(ctx, input.Email, input.Password)
	if err != nil {
		if errors.Is(err, services.ErrAuthCredentialsInvalid) {
			if limitErr := handler.loginLimiter.addFailure(ctx, limiterKey, now, loginAttemptWindow); limitErr != nil {
				handler.log.Warn("record login failure", "error", limitErr)
			}
		}
		return handler.respondError(c, err)
	}

	if err := handler.loginLimiter.reset(ctx, limiterKey); err != nil {
		handler.log.Warn("reset login limiter", "error", err)
	}
	return handler.respondWithToken(c, fiber.StatusOK, &user, "auth.logged_in")
}

func (handler *Handler) Me(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return handler.apiError(c, fiber.StatusUnauthorized, codeUnauthorized, "errors.unauthorized", nil)
	}
	return handler.respond(c, fiber.StatusOK, newUserView(user), "auth.profile")
}

func (handler *Handler) respondWithToken(c *fiber.Ctx, status int, user *models.User, messageKey string) error {
	token, expiresAt, err := handler.buildToken(user)
	if err != nil {
		return handler.respondError(c, err)
	}
	return handler.respond(c, status, authResult{
		Token:     token,
		ExpiresAt: expiresAt.UTC().Format(time.RFC3339),
		User:      newUserView(user),
	}, messageKey)
}
