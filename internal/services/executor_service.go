package services

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/purvik6062/safe-core-wallet-deployment/internal/models"
)

// DefaultConfirmationTimeout bounds the receipt wait of one attempt. It is
// sized to cover several block intervals on the slowest supported network.
const DefaultConfirmationTimeout = 3 * time.Minute

// ExecutorService drives one deployment attempt end-to-end against one
// network. It never touches persistent storage and never retries; re-invoking
// an attempt is safe because a pre-existing contract short-circuits to a
// successful result.
type ExecutorService interface {
	Deploy(ctx context.Context, networkKey string, params models.VaultCreationParameters) (*models.NetworkDeploymentRecord, error)
}

type executorService struct {
	networkService      NetworkService
	clientFactory       WalletClientFactory
	deployerAddress     string
	confirmationTimeout time.Duration
	logger              *zap.Logger
}

// NewExecutorService creates the per-network deployment executor.
func NewExecutorService(networkService NetworkService, clientFactory WalletClientFactory, deployerAddress string, confirmationTimeout time.Duration, logger *zap.Logger) ExecutorService {
	if confirmationTimeout <= 0 {
		confirmationTimeout = DefaultConfirmationTimeout
	}
	return &executorService{
		networkService:      networkService,
		clientFactory:       clientFactory,
		deployerAddress:     deployerAddress,
		confirmationTimeout: confirmationTimeout,
		logger:              logger,
	}
}

// Deploy attempts the vault deployment on one network. Every failure is
// returned as a *DeploymentError tagged with the network key.
func (s *executorService) Deploy(ctx context.Context, networkKey string, params models.VaultCreationParameters) (*models.NetworkDeploymentRecord, error) {
	network, err := s.networkService.Resolve(networkKey)
	if err != nil {
		return nil, err
	}

	client, err := s.clientFactory(network)
	if err != nil {
		return nil, NewDeploymentError(ErrCodeSubmissionError, networkKey, err)
	}
	defer client.Close()

	predictedAddress, err := client.PredictAddress(params)
	if err != nil {
		return nil, NewDeploymentError(ErrCodeInvalidParameters, networkKey, err)
	}

	record := models.NetworkDeploymentRecord{
		NetworkKey:  networkKey,
		ChainID:     network.ChainID,
		Address:     predictedAddress,
		Status:      models.DeploymentStatusPending,
		AttemptedAt: time.Now(),
	}

	// Idempotency: a contract already at the predicted address means a
	// previous attempt (or another caller) succeeded. No transaction needed.
	exists, err := client.CodeExistsAt(ctx, predictedAddress)
	if err != nil {
		return nil, NewDeploymentError(ErrCodeSubmissionError, networkKey, err)
	}
	if exists {
		s.logger.Info("contract already deployed",
			zap.String("network", networkKey),
			zap.String("address", predictedAddress))
		record.Status = models.DeploymentStatusDeployed
		record.IsActive = true
		record.IsExisting = true
		record.ExplorerURL = network.ExplorerLink("address", predictedAddress)
		record.CompletedAt = time.Now()
		return &record, nil
	}

	balance, err := client.GetNativeBalance(ctx, s.deployerAddress)
	if err != nil {
		return nil, NewDeploymentError(ErrCodeSubmissionError, networkKey, err)
	}
	if balance.Sign() == 0 {
		return nil, NewDeploymentError(ErrCodeInsufficientFunds, networkKey,
			errors.New("deployer account holds zero native balance"))
	}

	txHash, err := client.SubmitCreation(ctx, params)
	if err != nil {
		return nil, NewDeploymentError(ErrCodeSubmissionError, networkKey, err)
	}
	record.TxHash = txHash
	s.logger.Info("creation transaction submitted",
		zap.String("network", networkKey),
		zap.String("tx_hash", txHash))

	waitCtx, cancel := context.WithTimeout(ctx, s.confirmationTimeout)
	defer cancel()

	receipt, err := client.WaitForReceipt(waitCtx, txHash)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, NewDeploymentError(ErrCodeConfirmationTimeout, networkKey, err)
		}
		return nil, NewDeploymentError(ErrCodeConfirmationFailed, networkKey, err)
	}
	if !receipt.Success {
		return nil, NewDeploymentError(ErrCodeConfirmationFailed, networkKey,
			errors.New("creation transaction reverted"))
	}

	// A successful receipt is not trusted on its own: the expected code must
	// actually be present at the predicted address.
	deployed, err := client.CodeExistsAt(ctx, predictedAddress)
	if err != nil {
		return nil, NewDeploymentError(ErrCodeVerificationFailed, networkKey, err)
	}
	if !deployed {
		return nil, NewDeploymentError(ErrCodeVerificationFailed, networkKey,
			errors.New("no contract code at predicted address after confirmation"))
	}

	record.Status = models.DeploymentStatusDeployed
	record.IsActive = true
	record.BlockNumber = receipt.BlockNumber
	record.GasUsed = receipt.GasUsed
	record.ExplorerURL = network.ExplorerLink("tx", txHash)
	record.CompletedAt = time.Now()

	s.logger.Info("vault deployed",
		zap.String("network", networkKey),
		zap.String("address", predictedAddress),
		zap.Uint64("block", receipt.BlockNumber))

	return &record, nil
}
