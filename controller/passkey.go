package controller

import (
	"errors"
	"time"

	"passkey_auth_ms/config"
	"passkey_auth_ms/dtos/request"
	"passkey_auth_ms/services"
	"passkey_auth_ms/webauthn"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type IPasskeyController interface {
	LoginStart(c *fiber.Ctx) error
	LoginFinish(c *fiber.Ctx) error
	Profile(c *fiber.Ctx) error
}

type PasskeyController struct {
	service services.IPasskeyService
	logger  *zap.Logger
}

func NewPasskeyController(service services.IPasskeyService, logger *zap.Logger) IPasskeyController {
	return &PasskeyController{service: service, logger: logger}
}

func (pc *PasskeyController) LoginStart(c *fiber.Ctx) error {
	options, err := pc.service.LoginStart()
	if err != nil {
		pc.logger.Error("passkey login start failed", zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "temporarily unavailable"})
	}
	return c.JSON(options)
}

// LoginFinish maps every ceremony failure to the same generic
// rejection. The specific kind is only logged: the client must not
// learn which check failed.
func (pc *PasskeyController) LoginFinish(c *fiber.Ctx) error {
	body := c.Locals("body").(*request.FinishPasskeyLoginRequest)

	result, err := pc.service.LoginFinish(body)
	if err != nil {
		var ceremonyErr *webauthn.CeremonyError
		var storageErr *webauthn.StorageError
		switch {
		case errors.As(err, &ceremonyErr):
			pc.logger.Warn("passkey login rejected",
				zap.String("kind", ceremonyErr.Kind),
				zap.String("detail", ceremonyErr.Msg),
				zap.String("ip", c.IP()),
			)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "authentication failed"})
		case errors.As(err, &storageErr):
			pc.logger.Error("passkey login storage failure", zap.String("op", storageErr.Op), zap.Error(storageErr.Err))
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "temporarily unavailable"})
		default:
			pc.logger.Error("passkey login failed", zap.Error(err))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "authentication failed"})
		}
	}

	c.Cookie(&fiber.Cookie{
		Name:     "session_id",
		Value:    result.SessionId,
		HTTPOnly: true,
		Secure:   true,
		SameSite: fiber.CookieSameSiteStrictMode,
		Expires:  time.Now().Add(time.Duration(config.Conf.Application.Security.SessionValidityInSeconds) * time.Second),
	})
	return c.JSON(result)
}

func (pc *PasskeyController) Profile(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}
	profile, err := pc.service.GetProfile(userId)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "user not found"})
	}
	return c.JSON(profile)
}
