package config

import (
	"PabrikGolang/database/postgres"
	assistantHandler "PabrikGolang/internal/api/assistant/handler"
	assistantRepository "PabrikGolang/internal/api/assistant/repository"
	assistantService "PabrikGolang/internal/api/assistant/service"
	"PabrikGolang/internal/middleware"
	"PabrikGolang/internal/tooling"
	"PabrikGolang/pkg/gemini"
	chatGPT "PabrikGolang/pkg/openai"
	"PabrikGolang/pkg/redis"
	"PabrikGolang/pkg/toolkit"
	"PabrikGolang/pkg/utils"
	"PabrikGolang/pkg/whatsapp"
	"context"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type ServerOption func(*Server) error

type Server struct {
	engine         *fiber.App
	db             *sqlx.DB
	log            *logrus.Logger
	middleware     middleware.Middleware
	validator      *validator.Validate
	utils          utils.IUtils
	handlers       []handler
	redisServer    redis.IRedis
	whatsappClient whatsapp.IWhatsappSender
	geminiClient   gemini.IGemini
	chatGPTClient  chatGPT.IChatGPT
	toolRegistry   toolkit.IRegistry

	housekeepingCancel context.CancelFunc
}

type handler interface {
	Start(srv fiber.Router)
}

func NewServer(options ...ServerOption) (*Server, error) {
	server := &Server{}

	for _, option := range options {
		if err := option(server); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if server.engine == nil {
		return nil, fmt.Errorf("fiber app is required")
	}
	if server.log == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return server, nil
}

func WithFiber(fiberApp *fiber.App) ServerOption {
	return func(s *Server) error {
		s.engine = fiberApp
		return nil
	}
}

func WithLogger(logger *logrus.Logger) ServerOption {
	return func(s *Server) error {
		s.log = logger
		return nil
	}
}

func WithValidator(validator *validator.Validate) ServerOption {
	return func(s *Server) error {
		s.validator = validator
		return nil
	}
}

func WithDatabase() ServerOption {
	return func(s *Server) error {
		db, err := postgres.New()
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to connect to database: %v", err)
			}
			return fmt.Errorf("failed to create database connection: %w", err)
		}
		s.db = db
		return nil
	}
}

func WithRedisServer(redisServer redis.IRedis) ServerOption {
	return func(s *Server) error {
		s.redisServer = redisServer
		return nil
	}
}

func WithMiddleware() ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before middleware")
		}
		s.middleware = middleware.New(s.log)
		return nil
	}
}

// WithWhatsappClient connects the ops alert channel. It is optional: when
// WHATSAPP_ENABLED is not "true" the server runs without alerting.
func WithWhatsappClient() ServerOption {
	return func(s *Server) error {
		if os.Getenv("WHATSAPP_ENABLED") != "true" {
			if s.log != nil {
				s.log.Info("WhatsApp alerting disabled")
			}
			return nil
		}

		client, err := whatsapp.New()
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to initialize WhatsApp client: %v", err)
			}
			return fmt.Errorf("failed to create WhatsApp client: %w", err)
		}
		s.whatsappClient = client
		return nil
	}
}

func WithGeminiClient() ServerOption {
	return func(s *Server) error {
		client, err := gemini.NewGeminiClient()
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to create Gemini client: %v", err)
			}
			return fmt.Errorf("failed to create Gemini client: %w", err)
		}
		s.geminiClient = client
		return nil
	}
}

func WithChatGPTClient() ServerOption {
	return func(s *Server) error {
		s.chatGPTClient = chatGPT.NewChatGPT()
		return nil
	}
}

func WithUtils() ServerOption {
	return func(s *Server) error {
		s.utils = utils.New()
		return nil
	}
}

// WithToolRegistry builds the tool registry and wires the built-in factory
// operation tools. Requires the database option to run first.
func WithToolRegistry() ServerOption {
	return func(s *Server) error {
		if s.db == nil {
			return fmt.Errorf("database must be initialized before tool registry")
		}
		registry := toolkit.NewRegistry()
		if err := tooling.RegisterDefaults(registry, s.db, s.log); err != nil {
			return fmt.Errorf("failed to register default tools: %w", err)
		}
		s.toolRegistry = registry
		return nil
	}
}

func (s *Server) RegisterHandler() {
	// Assistant Domain
	assistantRepo := assistantRepository.New(s.db, s.log)
	assistantServices := assistantService.New(
		s.log,
		assistantRepo,
		s.toolRegistry,
		s.redisServer,
		s.chatGPTClient,
		s.geminiClient,
		s.utils,
		s.whatsappClient,
		os.Getenv("OPS_ALERT_PHONE"),
	)
	assistantHandlers := assistantHandler.New(s.log, s.validator, s.middleware, assistantServices)

	housekeepingCtx, cancel := context.WithCancel(context.Background())
	s.housekeepingCancel = cancel
	go assistantServices.RunHousekeeping(housekeepingCtx)

	s.setupHealthCheck()
	s.handlers = append(s.handlers, assistantHandlers)
}

func (s *Server) Run() error {
	router := s.engine.Group("/api/v1")
	s.engine.Use(s.middleware.NewRequestIDMiddleware())
	s.engine.Use(s.middleware.NewRateLimiter)
	s.engine.Use(s.middleware.NewLoggingMiddleware)

	for _, h := range s.handlers {
		h.Start(router)
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "3000"
	}

	if err := s.engine.Listen(fmt.Sprintf(":%s", port)); err != nil {
		if s.housekeepingCancel != nil {
			s.housekeepingCancel()
		}
		if s.whatsappClient != nil {
			s.whatsappClient.Disconnect()
		}
		return err
	}

	return nil
}

func (s *Server) setupHealthCheck() {
	s.engine.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{
			"message": "Server is Healthy!",
		})
	})
}
