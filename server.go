package main

import (
	"time"

	"passkey_auth_ms/config"
	"passkey_auth_ms/controller"
	"passkey_auth_ms/dtos/request"
	"passkey_auth_ms/middleware"
	"passkey_auth_ms/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type Server struct {
	PasskeyController controller.IPasskeyController
	RedisService      services.IRedisService
	Logger            *zap.Logger
}

// NOTE: Server Constructor
func NewServer(
	PasskeyController controller.IPasskeyController,
	RedisService services.IRedisService,
	Logger *zap.Logger,
) *Server {
	return &Server{
		PasskeyController: PasskeyController,
		RedisService:      RedisService,
		Logger:            Logger,
	}
}

// NOTE: Start Fiber Server
func (s *Server) Start() *fiber.App {
	app := fiber.New()

	app.Use(middleware.RecoveryMiddleware())
	app.Use(middleware.LoggingMiddleware(s.Logger))
	app.Use(middleware.GlobalRateLimiter())

	// NOTE: Define API paths (context path and grouping by version)
	contextPath := app.Group(config.Conf.Application.Server.ContextPath)
	apiVersion := contextPath.Group(config.Conf.Application.Server.ApiVersion)

	authGroup := apiVersion.Group("/auth")
	passkeyGroup := authGroup.Group("/passkey")
	passkeyGroup.Post("/login/start",
		middleware.RouteRateLimiter(10, 30*time.Second),
		s.PasskeyController.LoginStart)
	passkeyGroup.Post("/login/finish",
		middleware.RouteRateLimiter(10, 30*time.Second),
		middleware.ValidateBody[request.FinishPasskeyLoginRequest](),
		s.PasskeyController.LoginFinish)
	passkeyGroup.Get("/me",
		middleware.AuthMiddleware(s.RedisService),
		s.PasskeyController.Profile)

	return app
}
