package models

import "strings"

// Network describes one target blockchain. The registry is config-driven and
// read-only at runtime; networks are not persisted.
type Network struct {
	// Key is the short identifier used in requests and deployment records
	// (e.g. "sepolia", "arbitrum").
	Key string `json:"key"`
	// Name is the human-readable network name.
	Name string `json:"name"`
	// ChainID is the EVM chain id.
	ChainID uint64 `json:"chain_id"`
	// RPC is the JSON-RPC endpoint URL.
	RPC string `json:"rpc"`
	// ExplorerURL is a template with {type} ("tx" or "address") and {value}
	// placeholders.
	ExplorerURL string `json:"explorer_url"`
	// NativeCurrencySymbol is the gas currency symbol (ETH, MATIC, ...).
	NativeCurrencySymbol string `json:"native_currency_symbol"`
	// Testnet marks non-production networks.
	Testnet bool `json:"testnet"`
}

// ExplorerLink renders the explorer URL template for a tx hash or address.
func (n Network) ExplorerLink(linkType, value string) string {
	if n.ExplorerURL == "" {
		return ""
	}
	url := strings.ReplaceAll(n.ExplorerURL, "{type}", linkType)
	return strings.ReplaceAll(url, "{value}", value)
}
