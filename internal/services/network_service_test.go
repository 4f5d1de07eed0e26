package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNetworkService(t *testing.T) {
	service := NewNetworkService(testNetworks())

	t.Run("ResolveKnownNetwork", func(t *testing.T) {
		network, err := service.Resolve("net2")
		require.NoError(t, err)
		assert.Equal(t, uint64(1002), network.ChainID)
		assert.Equal(t, "Network Two", network.Name)
	})

	t.Run("ResolveUnknownNetwork", func(t *testing.T) {
		_, err := service.Resolve("atlantis")
		require.Error(t, err)
		assert.True(t, HasCode(err, ErrCodeUnknownNetwork))

		var deployErr *DeploymentError
		require.ErrorAs(t, err, &deployErr)
		assert.Equal(t, "atlantis", deployErr.NetworkKey)
	})

	t.Run("ListIsSortedByKey", func(t *testing.T) {
		networks := service.List()
		require.Len(t, networks, 3)
		assert.Equal(t, "net1", networks[0].Key)
		assert.Equal(t, "net2", networks[1].Key)
		assert.Equal(t, "net3", networks[2].Key)
	})

	t.Run("DefaultNetworksAreRegistered", func(t *testing.T) {
		defaults := NewNetworkService(DefaultNetworks())
		network, err := defaults.Resolve("sepolia")
		require.NoError(t, err)
		assert.Equal(t, uint64(11155111), network.ChainID)
		assert.True(t, network.Testnet)
	})
}
