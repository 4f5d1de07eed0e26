package api

import (
	"fmt"
	"net"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"go.uber.org/zap"

	"github.com/purvik6062/safe-core-wallet-deployment/internal/api/middleware"
	"github.com/purvik6062/safe-core-wallet-deployment/internal/services"
)

type APIServer struct {
	app            *fiber.App
	orchestrator   services.OrchestratorService
	vaultService   services.VaultService
	networkService services.NetworkService
	authConfig     middleware.AuthConfig
	logger         *zap.Logger
	port           int
}

func NewAPIServer(orchestrator services.OrchestratorService, vaultService services.VaultService, networkService services.NetworkService, authConfig middleware.AuthConfig, zapLogger *zap.Logger) *APIServer {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	// Add middleware
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))

	server := &APIServer{
		app:            app,
		orchestrator:   orchestrator,
		vaultService:   vaultService,
		networkService: networkService,
		authConfig:     authConfig,
		logger:         zapLogger,
	}
	server.setupRoutes()
	return server
}

func (s *APIServer) setupRoutes() {
	v1 := s.app.Group("/api/v1", middleware.AuthMiddleware(s.authConfig))

	v1.Post("/vaults", s.handleCreateVault)
	v1.Get("/vaults", s.handleListVaults)
	v1.Get("/vaults/summary", s.handleVaultSummary)
	v1.Get("/vaults/:id", s.handleGetVault)
	v1.Post("/vaults/:id/networks", s.handleExpandVault)
	v1.Patch("/vaults/:id/status", s.handleSetStatus)
	v1.Get("/networks", s.handleListNetworks)

	// Health check
	s.app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(map[string]string{"status": "ok"})
	})
}

// Start starts the server on the given port, or a random available port when
// port is nil.
func (s *APIServer) Start(port *int) (int, error) {
	selectedPort := 0
	if port != nil {
		selectedPort = *port
	}
	if selectedPort == 0 {
		listener, err := net.Listen("tcp", ":0")
		if err != nil {
			return 0, fmt.Errorf("failed to find available port: %w", err)
		}
		selectedPort = listener.Addr().(*net.TCPAddr).Port
		listener.Close()
	}
	s.port = selectedPort

	go func() {
		if err := s.app.Listen(fmt.Sprintf(":%d", selectedPort)); err != nil {
			s.logger.Error("api server stopped", zap.Error(err))
		}
	}()

	return selectedPort, nil
}

func (s *APIServer) Shutdown() error {
	return s.app.Shutdown()
}

func (s *APIServer) GetPort() int {
	return s.port
}

// App exposes the fiber app for tests.
func (s *APIServer) App() *fiber.App {
	return s.app
}
