package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
)

// JSON is a custom type for free-form JSON fields
type JSON map[string]interface{}

// Implement the driver.Valuer interface for JSON type
func (j JSON) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Implement the sql.Scanner interface for JSON type
func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	case nil:
		*j = nil
		return nil
	default:
		return errors.New("type assertion to []byte failed")
	}

	if len(bytes) == 0 {
		*j = nil
		return nil
	}

	return json.Unmarshal(bytes, j)
}

// VaultCreationParameters is the fixed tuple that determines a vault's
// deterministic address. Immutable once persisted: expansion to new networks
// must reuse these values verbatim.
type VaultCreationParameters struct {
	// Owners are the wallet owner addresses in order. At least two: the
	// end-user address plus the service co-signer address.
	Owners []string `json:"owners"`
	// Threshold is the number of owner signatures required to execute.
	Threshold int `json:"threshold"`
	// SaltNonce is the hex-encoded salt that makes the deployment address
	// reproducible across networks.
	SaltNonce string `json:"salt_nonce"`
}

// NetworkDeploymentRecord is one deployment attempt outcome for one
// (vault, network) pair.
type NetworkDeploymentRecord struct {
	NetworkKey  string           `json:"network_key"`
	ChainID     uint64           `json:"chain_id"`
	Address     string           `json:"address,omitempty"`
	Status      DeploymentStatus `json:"status"`
	TxHash      string           `json:"tx_hash,omitempty"`
	BlockNumber uint64           `json:"block_number,omitempty"`
	GasUsed     uint64           `json:"gas_used,omitempty"`
	ExplorerURL string           `json:"explorer_url,omitempty"`
	IsActive    bool             `json:"is_active"`
	// IsExisting distinguishes "discovered already deployed" from "freshly
	// deployed by this attempt".
	IsExisting   bool      `json:"is_existing"`
	ErrorMessage string    `json:"error_message,omitempty"`
	AttemptedAt  time.Time `json:"attempted_at"`
	CompletedAt  time.Time `json:"completed_at,omitempty"`
}

// VaultAnalytics holds usage counters maintained by out-of-core collaborators.
// The orchestrator carries them as opaque pass-through state.
type VaultAnalytics struct {
	TransactionCount uint64 `json:"transaction_count"`
	TotalValueWei    string `json:"total_value_wei"`
}

// VaultRecord is the aggregate root for one multi-network vault.
type VaultRecord struct {
	ID          string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID      string `gorm:"index;not null;type:varchar(255)" json:"user_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Tags        JSON   `gorm:"type:text" json:"tags,omitempty"`

	CreationParameters VaultCreationParameters `gorm:"serializer:json" json:"creation_parameters"`

	// Deployments maps network key to that network's deployment record. The
	// map only grows or has entries updated in place; it is never shrunk.
	Deployments map[string]NetworkDeploymentRecord `gorm:"serializer:json" json:"deployments"`

	Status    VaultStatus    `gorm:"default:initializing;index" json:"status"`
	Analytics VaultAnalytics `gorm:"serializer:json" json:"analytics"`

	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	LastActivityAt time.Time      `json:"last_activity_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

// DeployedNetworkKeys returns the keys of all networks with an active,
// successfully deployed record.
func (v *VaultRecord) DeployedNetworkKeys() []string {
	keys := make([]string, 0, len(v.Deployments))
	for key, record := range v.Deployments {
		if record.Status == DeploymentStatusDeployed && record.IsActive {
			keys = append(keys, key)
		}
	}
	return keys
}

// HasActiveDeployment reports whether the vault already has an active,
// deployed record on the given network.
func (v *VaultRecord) HasActiveDeployment(networkKey string) bool {
	record, ok := v.Deployments[networkKey]
	return ok && record.Status == DeploymentStatusDeployed && record.IsActive
}
