package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/purvik6062/safe-core-wallet-deployment/internal/models"
)

func newTestVault(userID string, status models.VaultStatus) *models.VaultRecord {
	return &models.VaultRecord{
		ID:     uuid.NewString(),
		UserID: userID,
		Name:   "test vault",
		CreationParameters: models.VaultCreationParameters{
			Owners:    []string{testOwner, testCoSigner},
			Threshold: 1,
			SaltNonce: "0x01",
		},
		Deployments: make(map[string]models.NetworkDeploymentRecord),
		Status:      status,
		Analytics:   models.VaultAnalytics{TotalValueWei: "0"},
	}
}

func TestVaultService(t *testing.T) {
	// Setup test database
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.VaultRecord{}))

	service := NewVaultService(db)

	t.Run("CreateAndGetVault", func(t *testing.T) {
		vault := newTestVault("user-1", models.VaultStatusInitializing)
		require.NoError(t, service.CreateVault(vault))

		loaded, err := service.GetVault(vault.ID)
		require.NoError(t, err)
		assert.Equal(t, vault.ID, loaded.ID)
		assert.Equal(t, "user-1", loaded.UserID)
		assert.Equal(t, []string{testOwner, testCoSigner}, loaded.CreationParameters.Owners)
		assert.Equal(t, models.VaultStatusInitializing, loaded.Status)
	})

	t.Run("GetMissingVault", func(t *testing.T) {
		_, err := service.GetVault("does-not-exist")
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})

	t.Run("ReplaceVaultOverwritesDeploymentMap", func(t *testing.T) {
		vault := newTestVault("user-2", models.VaultStatusInitializing)
		require.NoError(t, service.CreateVault(vault))

		vault.Deployments["net1"] = models.NetworkDeploymentRecord{
			NetworkKey: "net1",
			ChainID:    1001,
			Address:    "0xABC",
			Status:     models.DeploymentStatusDeployed,
			IsActive:   true,
		}
		vault.Status = models.VaultStatusActive
		require.NoError(t, service.ReplaceVault(vault))

		loaded, err := service.GetVault(vault.ID)
		require.NoError(t, err)
		assert.Equal(t, models.VaultStatusActive, loaded.Status)
		require.Len(t, loaded.Deployments, 1)
		assert.Equal(t, "0xABC", loaded.Deployments["net1"].Address)
		assert.True(t, loaded.Deployments["net1"].IsActive)
	})

	t.Run("ListVaultsByUser", func(t *testing.T) {
		require.NoError(t, service.CreateVault(newTestVault("user-3", models.VaultStatusActive)))
		require.NoError(t, service.CreateVault(newTestVault("user-3", models.VaultStatusSuspended)))
		require.NoError(t, service.CreateVault(newTestVault("user-4", models.VaultStatusActive)))

		vaults, err := service.ListVaultsByUser("user-3")
		require.NoError(t, err)
		assert.Len(t, vaults, 2)
		for _, vault := range vaults {
			assert.Equal(t, "user-3", vault.UserID)
		}
	})

	t.Run("CountVaultsByStatus", func(t *testing.T) {
		counts, err := service.CountVaultsByStatus()
		require.NoError(t, err)
		assert.GreaterOrEqual(t, counts[models.VaultStatusActive], int64(2))
		assert.GreaterOrEqual(t, counts[models.VaultStatusSuspended], int64(1))
	})

	t.Run("AggregateAnalytics", func(t *testing.T) {
		vault := newTestVault("user-5", models.VaultStatusActive)
		vault.Deployments["net1"] = models.NetworkDeploymentRecord{
			NetworkKey: "net1",
			Status:     models.DeploymentStatusDeployed,
			IsActive:   true,
		}
		vault.Deployments["net2"] = models.NetworkDeploymentRecord{
			NetworkKey: "net2",
			Status:     models.DeploymentStatusFailed,
		}
		vault.Analytics.TransactionCount = 7
		require.NoError(t, service.CreateVault(vault))

		summary, err := service.AggregateAnalytics("user-5")
		require.NoError(t, err)
		assert.Equal(t, int64(1), summary.TotalVaults)
		assert.Equal(t, int64(1), summary.VaultsByStatus[models.VaultStatusActive])
		assert.Equal(t, 1, summary.TotalDeployments)
		assert.Equal(t, uint64(7), summary.TotalTransactionCount)
	})
}
