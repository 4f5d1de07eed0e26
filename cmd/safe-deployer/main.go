package main

import (
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	_ "github.com/joho/godotenv/autoload" // Automatically load .env file if present
	"go.uber.org/zap"

	"github.com/purvik6062/safe-core-wallet-deployment/internal/api"
	"github.com/purvik6062/safe-core-wallet-deployment/internal/api/middleware"
	"github.com/purvik6062/safe-core-wallet-deployment/internal/services"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Sync()

	// Get port from environment or use default
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	parsedPort, err := strconv.Atoi(port)
	if err != nil {
		logger.Fatal("invalid port number", zap.String("port", port))
	}

	// Deployer key pays for and signs creation transactions on every network
	deployerKeyHex := os.Getenv("DEPLOYER_PRIVATE_KEY")
	if deployerKeyHex == "" {
		logger.Fatal("DEPLOYER_PRIVATE_KEY is required")
	}
	deployerKey, err := crypto.HexToECDSA(strings.TrimPrefix(deployerKeyHex, "0x"))
	if err != nil {
		logger.Fatal("invalid deployer private key", zap.Error(err))
	}
	deployerAddress := crypto.PubkeyToAddress(deployerKey.PublicKey).Hex()

	// Service co-signer is the second owner on every vault; defaults to the
	// deployer account
	coSignerAddress := os.Getenv("CO_SIGNER_ADDRESS")
	if coSignerAddress == "" {
		coSignerAddress = deployerAddress
	}

	confirmationTimeout := services.DefaultConfirmationTimeout
	if raw := os.Getenv("CONFIRMATION_TIMEOUT_SECONDS"); raw != "" {
		seconds, err := strconv.Atoi(raw)
		if err != nil {
			logger.Fatal("invalid confirmation timeout", zap.String("value", raw))
		}
		confirmationTimeout = time.Duration(seconds) * time.Second
	}

	// Initialize database: postgres when configured, sqlite otherwise
	var dbService services.DBService
	if postgresURL := os.Getenv("POSTGRES_URL"); postgresURL != "" {
		dbService, err = services.NewPostgresDBService(postgresURL)
	} else {
		homePath, homeErr := os.UserHomeDir()
		if homeErr != nil {
			logger.Fatal("failed to resolve home directory", zap.Error(homeErr))
		}
		dbService, err = services.NewSqliteDBService(homePath + "/safe-deployer.db")
	}
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}

	// Initialize services
	networkService := services.NewNetworkService(services.DefaultNetworks())
	vaultService := services.NewVaultService(dbService.GetDB())
	clientFactory := services.NewEthereumClientFactory(deployerKey)
	executor := services.NewExecutorService(networkService, clientFactory, deployerAddress, confirmationTimeout, logger)
	guard := services.NewAttemptGuard()
	orchestrator := services.NewOrchestratorService(vaultService, networkService, executor, guard, coSignerAddress, logger)

	authConfig := middleware.AuthConfig{Secret: []byte(os.Getenv("JWT_SECRET"))}
	if len(authConfig.Secret) == 0 {
		logger.Warn("JWT_SECRET not set, accepting X-User-ID header authentication")
		authConfig.AllowHeaderFallback = true
	}

	apiServer := api.NewAPIServer(orchestrator, vaultService, networkService, authConfig, logger)
	startedPort, err := apiServer.Start(&parsedPort)
	if err != nil {
		logger.Fatal("failed to start API server", zap.Error(err))
	}
	logger.Info("API server started",
		zap.Int("port", startedPort),
		zap.String("deployer", deployerAddress))

	// Set up graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	logger.Info("shutting down server")
	if err := apiServer.Shutdown(); err != nil {
		logger.Error("error shutting down API server", zap.Error(err))
	}
	if err := dbService.Close(); err != nil {
		logger.Error("error closing database", zap.Error(err))
	}
}
