package constants

// Canonical factory deployment shared by every supported network. The
// deterministic-address scheme only holds on networks where these contracts
// exist at these addresses.
const (
	// ProxyFactoryAddress is the wallet proxy factory (v1.3.0).
	ProxyFactoryAddress = "0xa6B71E26C5e0845f74c812102Ca7114b6a896AB2"
	// SingletonAddress is the wallet implementation the proxies delegate to.
	SingletonAddress = "0x3E5c63644E683549055b9Be8653de26E0B4CD36E"
	// FallbackHandlerAddress handles token callbacks for deployed wallets.
	FallbackHandlerAddress = "0xf48f2B2d2a534e402487b3ee7C18c33Aec0Fe5e4"
)

// ProxyCreationCode is the creation bytecode of the factory's proxy contract,
// an input to the CREATE2 address derivation.
const ProxyCreationCode = "0x608060405234801561001057600080fd5b506040516101e63803806101e68339818101604052602081101561003357600080fd5b8101908080519060200190929190505050600073ffffffffffffffffffffffffffffffffffffffff168173ffffffffffffffffffffffffffffffffffffffff1614156100ca576040517f08c379a00000000000000000000000000000000000000000000000000000000081526004018080602001828103825260228152602001806101c46022913960400191505060405180910390fd5b806000806101000a81548173ffffffffffffffffffffffffffffffffffffffff021916908373ffffffffffffffffffffffffffffffffffffffff16021790555060ab806101196000396000f3fe608060405273ffffffffffffffffffffffffffffffffffffffff600054167fa619486e0000000000000000000000000000000000000000000000000000000060003514156050578060005260206000f35b3660008037600080366000845af43d6000803e60008114156070573d6000fd5b3d6000f3fea2646970667358221220d1429297349653a4918076d650332de1a1068c5f3e07c5c82360c277770b955264736f6c63430007060033496e76616c69642073696e676c65746f6e20616464726573732070726f7669646564"

// ProxyFactoryABI covers the single factory method used for deployment.
const ProxyFactoryABI = `[{"inputs":[{"internalType":"address","name":"_singleton","type":"address"},{"internalType":"bytes","name":"initializer","type":"bytes"},{"internalType":"uint256","name":"saltNonce","type":"uint256"}],"name":"createProxyWithNonce","outputs":[{"internalType":"contract GnosisSafeProxy","name":"proxy","type":"address"}],"stateMutability":"nonpayable","type":"function"}]`

// WalletSetupABI covers the wallet initializer encoded into the proxy
// deployment. Owners and threshold are the only caller-controlled inputs.
const WalletSetupABI = `[{"inputs":[{"internalType":"address[]","name":"_owners","type":"address[]"},{"internalType":"uint256","name":"_threshold","type":"uint256"},{"internalType":"address","name":"to","type":"address"},{"internalType":"bytes","name":"data","type":"bytes"},{"internalType":"address","name":"fallbackHandler","type":"address"},{"internalType":"address","name":"paymentToken","type":"address"},{"internalType":"uint256","name":"payment","type":"uint256"},{"internalType":"address","name":"paymentReceiver","type":"address"}],"name":"setup","outputs":[],"stateMutability":"nonpayable","type":"function"}]`

// DeploymentGasLimit caps the proxy creation transaction.
const DeploymentGasLimit uint64 = 500_000
