package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/purvik6062/safe-core-wallet-deployment/internal/models"
	"github.com/purvik6062/safe-core-wallet-deployment/internal/utils"
)

// CreateVaultOptions are the caller-supplied inputs for a new vault.
type CreateVaultOptions struct {
	// OwnerAddress is the end-user owner address. The service co-signer is
	// always appended as the second owner.
	OwnerAddress string `validate:"required,eth_addr"`
	// Threshold is the number of owner signatures required to execute.
	// Defaults to 1.
	Threshold   int      `validate:"omitempty,min=1"`
	Name        string   `validate:"omitempty,max=120"`
	Description string   `validate:"omitempty,max=1000"`
	Tags        []string `validate:"omitempty,dive,max=40"`
}

// AggregateDeploymentResult is the merged outcome of one orchestration call.
// For expansion it contains only the incrementally attempted networks.
type AggregateDeploymentResult struct {
	VaultID              string                                    `json:"vault_id"`
	CreationParameters   models.VaultCreationParameters            `json:"creation_parameters"`
	PerNetwork           map[string]models.NetworkDeploymentRecord `json:"per_network"`
	CommonAddress        string                                    `json:"common_address,omitempty"`
	DeterminismViolation bool                                      `json:"determinism_violation"`
	SuccessCount         int                                       `json:"success_count"`
	FailureCount         int                                       `json:"failure_count"`
	Status               models.VaultStatus                        `json:"status"`
}

// OrchestratorService coordinates multi-network vault deployment: one shared
// creation parameter set, concurrent per-network attempts with independent
// failures, and one persisted aggregate outcome.
type OrchestratorService interface {
	CreateVault(ctx context.Context, userID string, networks []string, opts CreateVaultOptions) (*AggregateDeploymentResult, error)
	ExpandVault(ctx context.Context, vaultID string, networks []string) (*AggregateDeploymentResult, error)
	SetStatus(ctx context.Context, vaultID string, status models.VaultStatus) (*models.VaultRecord, error)
}

type orchestratorService struct {
	vaultService    VaultService
	networkService  NetworkService
	executor        ExecutorService
	guard           AttemptGuard
	coSignerAddress string
	validator       *validator.Validate
	logger          *zap.Logger
}

// NewOrchestratorService creates the deployment orchestrator. The guard is an
// injected instance so tests can isolate in-flight state per case.
func NewOrchestratorService(vaultService VaultService, networkService NetworkService, executor ExecutorService, guard AttemptGuard, coSignerAddress string, logger *zap.Logger) OrchestratorService {
	return &orchestratorService{
		vaultService:    vaultService,
		networkService:  networkService,
		executor:        executor,
		guard:           guard,
		coSignerAddress: coSignerAddress,
		validator:       validator.New(),
		logger:          logger,
	}
}

// CreateVault generates fresh creation parameters, persists an initializing
// record, and fans deployment attempts out across the requested networks.
// Zero successful networks is an aggregate failure; the record is kept in
// initializing state so expansion can retry later.
func (s *orchestratorService) CreateVault(ctx context.Context, userID string, networks []string, opts CreateVaultOptions) (*AggregateDeploymentResult, error) {
	if err := s.validator.Struct(opts); err != nil {
		return nil, NewVaultError(ErrCodeInvalidParameters, "invalid vault options: %w", err)
	}

	networks = dedupeKeys(networks)
	if len(networks) == 0 {
		return nil, NewVaultError(ErrCodeInvalidParameters, "at least one network is required")
	}
	// All-or-nothing validation: no attempt starts if any key is unknown.
	if err := s.validateNetworks(networks); err != nil {
		return nil, err
	}

	saltNonce, err := utils.GenerateSaltNonce(userID)
	if err != nil {
		return nil, NewVaultError(ErrCodeInvalidParameters, "failed to generate salt: %w", err)
	}

	threshold := opts.Threshold
	if threshold == 0 {
		threshold = 1
	}
	params := models.VaultCreationParameters{
		Owners:    []string{opts.OwnerAddress, s.coSignerAddress},
		Threshold: threshold,
		SaltNonce: saltNonce,
	}
	if threshold > len(params.Owners) {
		return nil, NewVaultError(ErrCodeInvalidParameters,
			"threshold %d exceeds owner count %d", threshold, len(params.Owners))
	}

	now := time.Now()
	vault := &models.VaultRecord{
		ID:                 uuid.NewString(),
		UserID:             userID,
		Name:               opts.Name,
		Description:        opts.Description,
		CreationParameters: params,
		Deployments:        make(map[string]models.NetworkDeploymentRecord),
		Status:             models.VaultStatusInitializing,
		Analytics:          models.VaultAnalytics{TotalValueWei: "0"},
		LastActivityAt:     now,
	}
	if len(opts.Tags) > 0 {
		vault.Tags = models.JSON{"tags": opts.Tags}
	}
	if err := s.vaultService.CreateVault(vault); err != nil {
		return nil, err
	}

	s.logger.Info("vault creation started",
		zap.String("vault_id", vault.ID),
		zap.String("user_id", userID),
		zap.Strings("networks", networks))

	return s.deployAndSettle(ctx, vault, networks)
}

// ExpandVault deploys an existing vault to additional networks, reusing its
// fixed creation parameters. Networks that already carry an active deployment
// are skipped, not errors.
func (s *orchestratorService) ExpandVault(ctx context.Context, vaultID string, networks []string) (*AggregateDeploymentResult, error) {
	vault, err := s.vaultService.GetVault(vaultID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewVaultError(ErrCodeVaultNotFound, "vault %s not found", vaultID)
		}
		return nil, err
	}

	networks = dedupeKeys(networks)
	if err := s.validateNetworks(networks); err != nil {
		return nil, err
	}

	pending := make([]string, 0, len(networks))
	for _, key := range networks {
		if vault.HasActiveDeployment(key) {
			s.logger.Debug("network already covered, skipping",
				zap.String("vault_id", vaultID),
				zap.String("network", key))
			continue
		}
		pending = append(pending, key)
	}
	if len(pending) == 0 {
		return nil, NewVaultError(ErrCodeNoNetworksToExpand,
			"vault %s is already deployed on all requested networks", vaultID)
	}

	s.logger.Info("vault expansion started",
		zap.String("vault_id", vaultID),
		zap.Strings("networks", pending))

	return s.deployAndSettle(ctx, vault, pending)
}

// SetStatus is an administrative override: any status value is accepted at
// any time. Deployment records are untouched.
func (s *orchestratorService) SetStatus(ctx context.Context, vaultID string, status models.VaultStatus) (*models.VaultRecord, error) {
	if !status.IsValid() {
		return nil, NewVaultError(ErrCodeInvalidParameters, "invalid vault status %q", status)
	}

	vault, err := s.vaultService.GetVault(vaultID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewVaultError(ErrCodeVaultNotFound, "vault %s not found", vaultID)
		}
		return nil, err
	}

	s.logger.Info("vault status override",
		zap.String("vault_id", vaultID),
		zap.String("from", string(vault.Status)),
		zap.String("to", string(status)))

	vault.Status = status
	vault.LastActivityAt = time.Now()
	if err := s.vaultService.ReplaceVault(vault); err != nil {
		return nil, err
	}
	return vault, nil
}

type attemptOutcome struct {
	networkKey string
	record     *models.NetworkDeploymentRecord
	err        *DeploymentError
}

// deployAndSettle fans one executor call per network out concurrently,
// harvests every outcome (settle all, discard none), merges them into the
// vault record commutatively, and persists the result.
func (s *orchestratorService) deployAndSettle(ctx context.Context, vault *models.VaultRecord, networks []string) (*AggregateDeploymentResult, error) {
	outcomes := make(chan attemptOutcome, len(networks))
	var wg sync.WaitGroup

	for _, networkKey := range networks {
		wg.Add(1)
		go func(networkKey string) {
			defer wg.Done()

			if !s.guard.TryAcquire(vault.ID, networkKey) {
				outcomes <- attemptOutcome{
					networkKey: networkKey,
					err: NewDeploymentError(ErrCodeSubmissionError, networkKey,
						errors.New("deployment attempt already in flight")),
				}
				return
			}
			defer s.guard.Release(vault.ID, networkKey)

			record, err := s.executor.Deploy(ctx, networkKey, vault.CreationParameters)
			if err != nil {
				var deployErr *DeploymentError
				if !errors.As(err, &deployErr) {
					deployErr = NewDeploymentError(ErrCodeSubmissionError, networkKey, err)
				}
				outcomes <- attemptOutcome{networkKey: networkKey, err: deployErr}
				return
			}
			outcomes <- attemptOutcome{networkKey: networkKey, record: record}
		}(networkKey)
	}

	wg.Wait()
	close(outcomes)

	perNetwork := make(map[string]models.NetworkDeploymentRecord, len(networks))
	failures := make(map[string]*DeploymentError)
	successes := make([]models.NetworkDeploymentRecord, 0, len(networks))

	for outcome := range outcomes {
		if outcome.err != nil {
			s.logger.Warn("deployment attempt failed",
				zap.String("vault_id", vault.ID),
				zap.String("network", outcome.networkKey),
				zap.Error(outcome.err))
			failures[outcome.networkKey] = outcome.err
			perNetwork[outcome.networkKey] = s.failedRecord(outcome.networkKey, outcome.err)
			continue
		}
		successes = append(successes, *outcome.record)
		perNetwork[outcome.networkKey] = *outcome.record
	}

	commonAddress, violation := CheckAddressDeterminism(successes)
	if violation {
		s.logger.Warn("address determinism violation",
			zap.String("vault_id", vault.ID),
			zap.Strings("networks", networks))
	}

	for key, record := range perNetwork {
		vault.Deployments[key] = record
	}
	if len(successes) > 0 && vault.Status == models.VaultStatusInitializing {
		vault.Status = models.VaultStatusActive
	}
	vault.LastActivityAt = time.Now()
	if err := s.vaultService.ReplaceVault(vault); err != nil {
		return nil, err
	}

	if len(successes) == 0 {
		return nil, &AggregateDeploymentError{VaultID: vault.ID, PerNetwork: failures}
	}

	return &AggregateDeploymentResult{
		VaultID:              vault.ID,
		CreationParameters:   vault.CreationParameters,
		PerNetwork:           perNetwork,
		CommonAddress:        commonAddress,
		DeterminismViolation: violation,
		SuccessCount:         len(successes),
		FailureCount:         len(failures),
		Status:               vault.Status,
	}, nil
}

func (s *orchestratorService) failedRecord(networkKey string, deployErr *DeploymentError) models.NetworkDeploymentRecord {
	now := time.Now()
	record := models.NetworkDeploymentRecord{
		NetworkKey:   networkKey,
		Status:       models.DeploymentStatusFailed,
		ErrorMessage: deployErr.Error(),
		AttemptedAt:  now,
		CompletedAt:  now,
	}
	if network, err := s.networkService.Resolve(networkKey); err == nil {
		record.ChainID = network.ChainID
	}
	return record
}

func (s *orchestratorService) validateNetworks(networks []string) error {
	for _, key := range networks {
		if _, err := s.networkService.Resolve(key); err != nil {
			return err
		}
	}
	return nil
}

func dedupeKeys(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	deduped := make([]string, 0, len(keys))
	for _, key := range keys {
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		deduped = append(deduped, key)
	}
	return deduped
}
