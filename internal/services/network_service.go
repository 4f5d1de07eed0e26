package services

import (
	"os"
	"sort"
	"strings"

	"github.com/purvik6062/safe-core-wallet-deployment/internal/models"
)

// NetworkService is the static catalog of supported deployment targets.
type NetworkService interface {
	Resolve(networkKey string) (*models.Network, error)
	List() []models.Network
}

type networkService struct {
	networks map[string]models.Network
}

// NewNetworkService creates a registry over the given networks. The registry
// is read-only after construction.
func NewNetworkService(networks []models.Network) NetworkService {
	byKey := make(map[string]models.Network, len(networks))
	for _, network := range networks {
		byKey[network.Key] = network
	}
	return &networkService{networks: byKey}
}

// Resolve returns the configuration for a network key
func (s *networkService) Resolve(networkKey string) (*models.Network, error) {
	network, ok := s.networks[networkKey]
	if !ok {
		return nil, NewDeploymentError(ErrCodeUnknownNetwork, networkKey, nil)
	}
	return &network, nil
}

// List returns all registered networks ordered by key.
func (s *networkService) List() []models.Network {
	networks := make([]models.Network, 0, len(s.networks))
	for _, network := range s.networks {
		networks = append(networks, network)
	}
	sort.Slice(networks, func(i, j int) bool {
		return networks[i].Key < networks[j].Key
	})
	return networks
}

// DefaultNetworks returns the compiled-in network catalog. RPC endpoints can
// be overridden per network with RPC_URL_<KEY> environment variables.
func DefaultNetworks() []models.Network {
	networks := []models.Network{
		{
			Key:                  "ethereum",
			Name:                 "Ethereum Mainnet",
			ChainID:              1,
			RPC:                  "https://eth.llamarpc.com",
			ExplorerURL:          "https://etherscan.io/{type}/{value}",
			NativeCurrencySymbol: "ETH",
		},
		{
			Key:                  "sepolia",
			Name:                 "Sepolia Testnet",
			ChainID:              11155111,
			RPC:                  "https://rpc.sepolia.org",
			ExplorerURL:          "https://sepolia.etherscan.io/{type}/{value}",
			NativeCurrencySymbol: "ETH",
			Testnet:              true,
		},
		{
			Key:                  "polygon",
			Name:                 "Polygon",
			ChainID:              137,
			RPC:                  "https://polygon-rpc.com",
			ExplorerURL:          "https://polygonscan.com/{type}/{value}",
			NativeCurrencySymbol: "MATIC",
		},
		{
			Key:                  "arbitrum",
			Name:                 "Arbitrum One",
			ChainID:              42161,
			RPC:                  "https://arb1.arbitrum.io/rpc",
			ExplorerURL:          "https://arbiscan.io/{type}/{value}",
			NativeCurrencySymbol: "ETH",
		},
		{
			Key:                  "optimism",
			Name:                 "OP Mainnet",
			ChainID:              10,
			RPC:                  "https://mainnet.optimism.io",
			ExplorerURL:          "https://optimistic.etherscan.io/{type}/{value}",
			NativeCurrencySymbol: "ETH",
		},
		{
			Key:                  "base",
			Name:                 "Base",
			ChainID:              8453,
			RPC:                  "https://mainnet.base.org",
			ExplorerURL:          "https://basescan.org/{type}/{value}",
			NativeCurrencySymbol: "ETH",
		},
	}

	for i := range networks {
		envKey := "RPC_URL_" + strings.ToUpper(networks[i].Key)
		if override := os.Getenv(envKey); override != "" {
			networks[i].RPC = override
		}
	}
	return networks
}
