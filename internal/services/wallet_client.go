package services

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/purvik6062/safe-core-wallet-deployment/internal/constants"
	"github.com/purvik6062/safe-core-wallet-deployment/internal/models"
)

const receiptPollInterval = 2 * time.Second

// DeploymentReceipt is the confirmation result of a creation transaction.
type DeploymentReceipt struct {
	TxHash      string
	BlockNumber uint64
	GasUsed     uint64
	Success     bool
}

// WalletClient is the chain primitive the executor drives one deployment
// attempt through. Implementations are scoped to a single network.
type WalletClient interface {
	// PredictAddress computes the deterministic deployment address from the
	// creation parameters alone. The computation is network-independent so
	// the same parameters predict the same address on every chain.
	PredictAddress(params models.VaultCreationParameters) (string, error)
	CodeExistsAt(ctx context.Context, address string) (bool, error)
	GetNativeBalance(ctx context.Context, account string) (*big.Int, error)
	// SubmitCreation signs and submits the proxy creation transaction and
	// returns its hash.
	SubmitCreation(ctx context.Context, params models.VaultCreationParameters) (string, error)
	// WaitForReceipt polls until the transaction is mined or ctx expires.
	WaitForReceipt(ctx context.Context, txHash string) (*DeploymentReceipt, error)
	Close()
}

// WalletClientFactory yields a WalletClient bound to one network. Injected so
// tests can substitute fakes per network.
type WalletClientFactory func(network *models.Network) (WalletClient, error)

type ethereumWalletClient struct {
	client          *ethclient.Client
	signer          types.Signer
	deployerKey     *ecdsa.PrivateKey
	deployerAddress common.Address
	factoryABI      abi.ABI
}

// NewEthereumWalletClient dials the network's RPC endpoint and returns a
// client that deploys through the canonical proxy factory.
func NewEthereumWalletClient(network *models.Network, deployerKey *ecdsa.PrivateKey) (WalletClient, error) {
	client, err := ethclient.Dial(network.RPC)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s rpc: %w", network.Key, err)
	}

	factoryABI, err := abi.JSON(strings.NewReader(constants.ProxyFactoryABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse factory ABI: %w", err)
	}

	return &ethereumWalletClient{
		client:          client,
		signer:          types.NewLondonSigner(new(big.Int).SetUint64(network.ChainID)),
		deployerKey:     deployerKey,
		deployerAddress: crypto.PubkeyToAddress(deployerKey.PublicKey),
		factoryABI:      factoryABI,
	}, nil
}

// NewEthereumClientFactory returns a factory producing one dialed client per
// network, all signing with the same deployer key.
func NewEthereumClientFactory(deployerKey *ecdsa.PrivateKey) WalletClientFactory {
	return func(network *models.Network) (WalletClient, error) {
		return NewEthereumWalletClient(network, deployerKey)
	}
}

func (c *ethereumWalletClient) PredictAddress(params models.VaultCreationParameters) (string, error) {
	return PredictVaultAddress(params)
}

// PredictVaultAddress computes the CREATE2 deployment address from the
// creation parameters alone. Its inputs are chain-independent, so the same
// parameters predict the same address on every network where the factory
// exists at its canonical address.
func PredictVaultAddress(params models.VaultCreationParameters) (string, error) {
	initializer, err := encodeInitializer(params)
	if err != nil {
		return "", err
	}

	saltNonce, err := parseSaltNonce(params.SaltNonce)
	if err != nil {
		return "", err
	}

	// CREATE2 salt: keccak256(keccak256(initializer) ++ saltNonce)
	salt := crypto.Keccak256Hash(
		crypto.Keccak256(initializer),
		common.BigToHash(saltNonce).Bytes(),
	)

	creationCode, err := hexutil.Decode(constants.ProxyCreationCode)
	if err != nil {
		return "", fmt.Errorf("failed to decode proxy creation code: %w", err)
	}
	deploymentData := append(creationCode, common.LeftPadBytes(common.HexToAddress(constants.SingletonAddress).Bytes(), 32)...)

	address := crypto.CreateAddress2(
		common.HexToAddress(constants.ProxyFactoryAddress),
		salt,
		crypto.Keccak256(deploymentData),
	)
	return address.Hex(), nil
}

func (c *ethereumWalletClient) CodeExistsAt(ctx context.Context, address string) (bool, error) {
	code, err := c.client.CodeAt(ctx, common.HexToAddress(address), nil)
	if err != nil {
		return false, fmt.Errorf("failed to fetch code: %w", err)
	}
	return len(code) > 0, nil
}

func (c *ethereumWalletClient) GetNativeBalance(ctx context.Context, account string) (*big.Int, error) {
	balance, err := c.client.BalanceAt(ctx, common.HexToAddress(account), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch balance: %w", err)
	}
	return balance, nil
}

func (c *ethereumWalletClient) SubmitCreation(ctx context.Context, params models.VaultCreationParameters) (string, error) {
	initializer, err := encodeInitializer(params)
	if err != nil {
		return "", err
	}
	saltNonce, err := parseSaltNonce(params.SaltNonce)
	if err != nil {
		return "", err
	}

	calldata, err := c.factoryABI.Pack("createProxyWithNonce",
		common.HexToAddress(constants.SingletonAddress),
		initializer,
		saltNonce,
	)
	if err != nil {
		return "", fmt.Errorf("failed to encode factory call: %w", err)
	}

	nonce, err := c.client.PendingNonceAt(ctx, c.deployerAddress)
	if err != nil {
		return "", fmt.Errorf("failed to fetch nonce: %w", err)
	}

	gasTipCap, err := c.client.SuggestGasTipCap(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to fetch gas tip cap: %w", err)
	}
	header, err := c.client.HeaderByNumber(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to fetch latest header: %w", err)
	}
	gasFeeCap := new(big.Int).Add(gasTipCap, new(big.Int).Mul(header.BaseFee, big.NewInt(2)))

	factory := common.HexToAddress(constants.ProxyFactoryAddress)
	tx := types.NewTx(&types.DynamicFeeTx{
		Nonce:     nonce,
		To:        &factory,
		GasFeeCap: gasFeeCap,
		GasTipCap: gasTipCap,
		Gas:       constants.DeploymentGasLimit,
		Data:      calldata,
	})

	signedTx, err := types.SignTx(tx, c.signer, c.deployerKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign transaction: %w", err)
	}
	if err := c.client.SendTransaction(ctx, signedTx); err != nil {
		return "", fmt.Errorf("failed to send transaction: %w", err)
	}

	return signedTx.Hash().Hex(), nil
}

func (c *ethereumWalletClient) WaitForReceipt(ctx context.Context, txHash string) (*DeploymentReceipt, error) {
	hash := common.HexToHash(txHash)

	receipt, err := retry.DoWithData(func() (*types.Receipt, error) {
		return c.client.TransactionReceipt(ctx, hash)
	},
		retry.Context(ctx),
		retry.Attempts(0),
		retry.Delay(receiptPollInterval),
		retry.DelayType(retry.FixedDelay),
		retry.RetryIf(func(err error) bool {
			return errors.Is(err, ethereum.NotFound)
		}),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, err
	}

	return &DeploymentReceipt{
		TxHash:      txHash,
		BlockNumber: receipt.BlockNumber.Uint64(),
		GasUsed:     receipt.GasUsed,
		Success:     receipt.Status == types.ReceiptStatusSuccessful,
	}, nil
}

func (c *ethereumWalletClient) Close() {
	c.client.Close()
}

var (
	setupABIOnce sync.Once
	setupABI     abi.ABI
	setupABIErr  error
)

// encodeInitializer packs the wallet setup call from the creation parameters.
// Only owners and threshold vary per vault; everything else is fixed so the
// initializer, and with it the predicted address, is network-independent.
func encodeInitializer(params models.VaultCreationParameters) ([]byte, error) {
	setupABIOnce.Do(func() {
		setupABI, setupABIErr = abi.JSON(strings.NewReader(constants.WalletSetupABI))
	})
	if setupABIErr != nil {
		return nil, fmt.Errorf("failed to parse setup ABI: %w", setupABIErr)
	}

	owners := make([]common.Address, 0, len(params.Owners))
	for _, owner := range params.Owners {
		if !common.IsHexAddress(owner) {
			return nil, fmt.Errorf("invalid owner address: %s", owner)
		}
		owners = append(owners, common.HexToAddress(owner))
	}

	initializer, err := setupABI.Pack("setup",
		owners,
		big.NewInt(int64(params.Threshold)),
		common.Address{},
		[]byte{},
		common.HexToAddress(constants.FallbackHandlerAddress),
		common.Address{},
		big.NewInt(0),
		common.Address{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to encode setup call: %w", err)
	}
	return initializer, nil
}

func parseSaltNonce(saltNonce string) (*big.Int, error) {
	raw, err := hexutil.Decode(saltNonce)
	if err != nil {
		return nil, fmt.Errorf("invalid salt nonce %q: %w", saltNonce, err)
	}
	return new(big.Int).SetBytes(raw), nil
}
