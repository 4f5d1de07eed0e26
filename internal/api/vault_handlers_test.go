package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math/big"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/purvik6062/safe-core-wallet-deployment/internal/api/middleware"
	"github.com/purvik6062/safe-core-wallet-deployment/internal/models"
	"github.com/purvik6062/safe-core-wallet-deployment/internal/services"
)

const testVaultAddress = "0xABC0000000000000000000000000000000000001"

// stubWalletClient always deploys successfully at a fixed address.
type stubWalletClient struct {
	failBalance bool
}

func (f *stubWalletClient) PredictAddress(params models.VaultCreationParameters) (string, error) {
	return testVaultAddress, nil
}

func (f *stubWalletClient) CodeExistsAt(ctx context.Context, address string) (bool, error) {
	return true, nil
}

func (f *stubWalletClient) GetNativeBalance(ctx context.Context, account string) (*big.Int, error) {
	if f.failBalance {
		return big.NewInt(0), nil
	}
	return big.NewInt(1e18), nil
}

func (f *stubWalletClient) SubmitCreation(ctx context.Context, params models.VaultCreationParameters) (string, error) {
	return "0xtxhash", nil
}

func (f *stubWalletClient) WaitForReceipt(ctx context.Context, txHash string) (*services.DeploymentReceipt, error) {
	return &services.DeploymentReceipt{TxHash: txHash, BlockNumber: 1, GasUsed: 1, Success: true}, nil
}

func (f *stubWalletClient) Close() {}

func newTestServer(t *testing.T) *APIServer {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.VaultRecord{}))

	networks := []models.Network{
		{Key: "net1", Name: "Network One", ChainID: 1001, RPC: "http://localhost:8545", ExplorerURL: "https://one.example/{type}/{value}"},
		{Key: "net2", Name: "Network Two", ChainID: 1002, RPC: "http://localhost:8546", ExplorerURL: "https://two.example/{type}/{value}"},
	}
	networkService := services.NewNetworkService(networks)
	vaultService := services.NewVaultService(db)
	factory := func(network *models.Network) (services.WalletClient, error) {
		return &stubWalletClient{}, nil
	}
	executor := services.NewExecutorService(networkService, factory, "0xdeployer", time.Minute, zap.NewNop())
	orchestrator := services.NewOrchestratorService(vaultService, networkService, executor, services.NewAttemptGuard(), "0x2222222222222222222222222222222222222222", zap.NewNop())

	return NewAPIServer(orchestrator, vaultService, networkService, middleware.AuthConfig{AllowHeaderFallback: true}, zap.NewNop())
}

func doRequest(t *testing.T, server *APIServer, method, path, userID string, body any) (int, map[string]any) {
	t.Helper()

	var payload io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		payload = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, payload)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}

	resp, err := server.App().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var decoded map[string]any
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp.StatusCode, decoded
}

func createTestVault(t *testing.T, server *APIServer, userID string) string {
	t.Helper()

	status, body := doRequest(t, server, "POST", "/api/v1/vaults", userID, map[string]any{
		"networks":      []string{"net1", "net2"},
		"owner_address": "0x1111111111111111111111111111111111111111",
		"name":          "test vault",
	})
	require.Equal(t, 201, status)
	vaultID, _ := body["vault_id"].(string)
	require.NotEmpty(t, vaultID)
	return vaultID
}

func TestVaultHandlers(t *testing.T) {
	t.Run("CreateVault", func(t *testing.T) {
		server := newTestServer(t)

		status, body := doRequest(t, server, "POST", "/api/v1/vaults", "user-1", map[string]any{
			"networks":      []string{"net1", "net2"},
			"owner_address": "0x1111111111111111111111111111111111111111",
			"name":          "savings",
		})
		require.Equal(t, 201, status)
		assert.Equal(t, testVaultAddress, body["common_address"])
		assert.Equal(t, false, body["determinism_violation"])
		assert.Equal(t, "active", body["status"])

		perNetwork, ok := body["per_network"].(map[string]any)
		require.True(t, ok)
		assert.Len(t, perNetwork, 2)
	})

	t.Run("CreateVaultRequiresAuth", func(t *testing.T) {
		server := newTestServer(t)

		status, _ := doRequest(t, server, "POST", "/api/v1/vaults", "", map[string]any{
			"networks":      []string{"net1"},
			"owner_address": "0x1111111111111111111111111111111111111111",
		})
		assert.Equal(t, 401, status)
	})

	t.Run("CreateVaultUnknownNetwork", func(t *testing.T) {
		server := newTestServer(t)

		status, body := doRequest(t, server, "POST", "/api/v1/vaults", "user-1", map[string]any{
			"networks":      []string{"atlantis"},
			"owner_address": "0x1111111111111111111111111111111111111111",
		})
		assert.Equal(t, 400, status)
		assert.Contains(t, body["error"], "UNKNOWN_NETWORK")
	})

	t.Run("GetVault", func(t *testing.T) {
		server := newTestServer(t)
		vaultID := createTestVault(t, server, "user-1")

		status, body := doRequest(t, server, "GET", "/api/v1/vaults/"+vaultID, "user-1", nil)
		require.Equal(t, 200, status)
		assert.Equal(t, vaultID, body["id"])
		assert.Equal(t, "active", body["status"])
	})

	t.Run("GetVaultHiddenFromOtherUsers", func(t *testing.T) {
		server := newTestServer(t)
		vaultID := createTestVault(t, server, "user-1")

		status, _ := doRequest(t, server, "GET", "/api/v1/vaults/"+vaultID, "user-2", nil)
		assert.Equal(t, 404, status)
	})

	t.Run("ExpandVaultAlreadyCovered", func(t *testing.T) {
		server := newTestServer(t)
		vaultID := createTestVault(t, server, "user-1")

		status, body := doRequest(t, server, "POST", "/api/v1/vaults/"+vaultID+"/networks", "user-1", map[string]any{
			"networks": []string{"net1", "net2"},
		})
		assert.Equal(t, 400, status)
		assert.Contains(t, body["error"], "NO_NETWORKS_TO_EXPAND")
	})

	t.Run("SetStatus", func(t *testing.T) {
		server := newTestServer(t)
		vaultID := createTestVault(t, server, "user-1")

		status, body := doRequest(t, server, "PATCH", "/api/v1/vaults/"+vaultID+"/status", "user-1", map[string]any{
			"status": "suspended",
		})
		require.Equal(t, 200, status)
		assert.Equal(t, "suspended", body["status"])
	})

	t.Run("SetStatusRejectsUnknownValue", func(t *testing.T) {
		server := newTestServer(t)
		vaultID := createTestVault(t, server, "user-1")

		status, _ := doRequest(t, server, "PATCH", "/api/v1/vaults/"+vaultID+"/status", "user-1", map[string]any{
			"status": "exploded",
		})
		assert.Equal(t, 400, status)
	})

	t.Run("ListVaults", func(t *testing.T) {
		server := newTestServer(t)
		createTestVault(t, server, "user-1")
		createTestVault(t, server, "user-1")
		createTestVault(t, server, "user-2")

		status, body := doRequest(t, server, "GET", "/api/v1/vaults", "user-1", nil)
		require.Equal(t, 200, status)
		vaults, ok := body["vaults"].([]any)
		require.True(t, ok)
		assert.Len(t, vaults, 2)
	})

	t.Run("VaultSummary", func(t *testing.T) {
		server := newTestServer(t)
		createTestVault(t, server, "user-1")

		status, body := doRequest(t, server, "GET", "/api/v1/vaults/summary", "user-1", nil)
		require.Equal(t, 200, status)
		assert.Equal(t, float64(1), body["total_vaults"])
		assert.Equal(t, float64(2), body["total_deployments"])
	})

	t.Run("ListNetworks", func(t *testing.T) {
		server := newTestServer(t)

		status, body := doRequest(t, server, "GET", "/api/v1/networks", "user-1", nil)
		require.Equal(t, 200, status)
		networks, ok := body["networks"].([]any)
		require.True(t, ok)
		assert.Len(t, networks, 2)
	})

	t.Run("HealthCheckIsPublic", func(t *testing.T) {
		server := newTestServer(t)

		status, body := doRequest(t, server, "GET", "/health", "", nil)
		require.Equal(t, 200, status)
		assert.Equal(t, "ok", body["status"])
	})
}
