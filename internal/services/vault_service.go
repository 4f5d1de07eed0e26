package services

import (
	"github.com/purvik6062/safe-core-wallet-deployment/internal/models"
	"gorm.io/gorm"
)

// VaultSummary aggregates vault counts and pass-through usage analytics for
// one user.
type VaultSummary struct {
	TotalVaults           int64                        `json:"total_vaults"`
	VaultsByStatus        map[models.VaultStatus]int64 `json:"vaults_by_status"`
	TotalDeployments      int                          `json:"total_deployments"`
	TotalTransactionCount uint64                       `json:"total_transaction_count"`
}

// VaultService is the persistent vault record store. Writes are whole-record
// overwrites; the store guarantees single-record atomicity only, so concurrent
// writers to the same vault are last-writer-wins.
type VaultService interface {
	CreateVault(vault *models.VaultRecord) error
	GetVault(id string) (*models.VaultRecord, error)
	ReplaceVault(vault *models.VaultRecord) error
	ListVaultsByUser(userID string) ([]models.VaultRecord, error)
	CountVaultsByStatus() (map[models.VaultStatus]int64, error)
	AggregateAnalytics(userID string) (*VaultSummary, error)
}

type vaultService struct {
	db *gorm.DB
}

// NewVaultService creates a new VaultService
func NewVaultService(db *gorm.DB) VaultService {
	return &vaultService{db: db}
}

// CreateVault persists a new vault record
func (s *vaultService) CreateVault(vault *models.VaultRecord) error {
	return s.db.Create(vault).Error
}

// GetVault returns a vault record by its ID
func (s *vaultService) GetVault(id string) (*models.VaultRecord, error) {
	var vault models.VaultRecord
	err := s.db.First(&vault, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &vault, nil
}

// ReplaceVault overwrites the full vault record
func (s *vaultService) ReplaceVault(vault *models.VaultRecord) error {
	return s.db.Save(vault).Error
}

// ListVaultsByUser returns all vault records owned by a user
func (s *vaultService) ListVaultsByUser(userID string) ([]models.VaultRecord, error) {
	var vaults []models.VaultRecord
	err := s.db.Where("user_id = ?", userID).Order("created_at desc").Find(&vaults).Error
	return vaults, err
}

// CountVaultsByStatus returns the number of vaults in each lifecycle status
func (s *vaultService) CountVaultsByStatus() (map[models.VaultStatus]int64, error) {
	type statusCount struct {
		Status models.VaultStatus
		Count  int64
	}
	var rows []statusCount
	err := s.db.Model(&models.VaultRecord{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[models.VaultStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// AggregateAnalytics summarizes a user's vaults: status counts, successful
// deployment totals, and pass-through transaction counts.
func (s *vaultService) AggregateAnalytics(userID string) (*VaultSummary, error) {
	vaults, err := s.ListVaultsByUser(userID)
	if err != nil {
		return nil, err
	}

	summary := &VaultSummary{
		TotalVaults:    int64(len(vaults)),
		VaultsByStatus: make(map[models.VaultStatus]int64),
	}
	for _, vault := range vaults {
		summary.VaultsByStatus[vault.Status]++
		summary.TotalDeployments += len(vault.DeployedNetworkKeys())
		summary.TotalTransactionCount += vault.Analytics.TransactionCount
	}
	return summary, nil
}
