package utils

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// GenerateSaltNonce derives a fresh 32-byte salt nonce for a new vault from
// the owning user's identity, a high-resolution timestamp and random bytes.
// Distinct vaults get distinct deployment addresses with overwhelming
// probability; collisions are not separately guarded.
func GenerateSaltNonce(userID string) (string, error) {
	entropy := make([]byte, 16)
	if _, err := rand.Read(entropy); err != nil {
		return "", fmt.Errorf("failed to read salt entropy: %w", err)
	}

	preimage := fmt.Sprintf("%s:%d:%x", userID, time.Now().UnixNano(), entropy)
	return hexutil.Encode(crypto.Keccak256([]byte(preimage))), nil
}
