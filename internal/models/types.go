package models

// VaultStatus is the aggregate lifecycle status of a vault record.
type VaultStatus string

// DeploymentStatus is the status of one per-network deployment attempt.
type DeploymentStatus string

const (
	VaultStatusInitializing VaultStatus = "initializing"
	VaultStatusActive       VaultStatus = "active"
	VaultStatusSuspended    VaultStatus = "suspended"
	VaultStatusArchived     VaultStatus = "archived"
)

const (
	DeploymentStatusPending  DeploymentStatus = "pending"
	DeploymentStatusDeployed DeploymentStatus = "deployed"
	DeploymentStatusFailed   DeploymentStatus = "failed"
)

// IsValid reports whether s is one of the known vault statuses.
func (s VaultStatus) IsValid() bool {
	switch s {
	case VaultStatusInitializing, VaultStatusActive, VaultStatusSuspended, VaultStatusArchived:
		return true
	}
	return false
}
