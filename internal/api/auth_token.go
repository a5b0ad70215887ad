package api

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/skinior/skinior-api/internal/models"
)

var (
	errMissingBearerToken = errors.New("missing bearer token")
	errInvalidToken       = errors.New("invalid token")
)

type authClaims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

func (handler *Handler) buildToken(user *models.User) (string, time.Time, error) {
	now := handler.now()
	expiresAt := now.Add(handler.tokenTTL)

	claims := authClaims{
		UserID: user.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(handler.secretKey)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func (handler *Handler) parseToken(tokenValue string) (*authClaims, error) {
	claims := &authClaims{}
	token, err := jwt.ParseWithClaims(tokenValue, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return handler.secretKey, nil
	}, jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return nil, errInvalidToken
	}
	if strings.TrimSpace(claims.UserID) == "" {
		return nil, errInvalidToken
	}
	return claims, nil
}

func (handler *Handler) authenticateRequest(c *fiber.Ctx) (*models.User, error) {
	header := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	scheme, tokenValue, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(tokenValue) == "" {
		return nil, errMissingBearerToken
	}

	claims, err := handler.parseToken(strings.TrimSpace(tokenValue))
	if err != nil {
		return nil, err
	}

	user, err := handler.authService.FindByID(c.UserContext(), claims.UserID)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
