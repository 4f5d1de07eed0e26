package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrorCode classifies deployment failures.
type ErrorCode string

const (
	ErrCodeUnknownNetwork      ErrorCode = "UNKNOWN_NETWORK"
	ErrCodeInsufficientFunds   ErrorCode = "INSUFFICIENT_FUNDS"
	ErrCodeSubmissionError     ErrorCode = "SUBMISSION_ERROR"
	ErrCodeConfirmationTimeout ErrorCode = "CONFIRMATION_TIMEOUT"
	ErrCodeConfirmationFailed  ErrorCode = "CONFIRMATION_FAILED"
	ErrCodeVerificationFailed  ErrorCode = "VERIFICATION_FAILED"
	ErrCodeVaultNotFound       ErrorCode = "VAULT_NOT_FOUND"
	ErrCodeNoNetworksToExpand  ErrorCode = "NO_NETWORKS_TO_EXPAND"
	ErrCodeInvalidParameters   ErrorCode = "INVALID_PARAMETERS"
	// ErrCodeAllDeploymentsFailed is the aggregate-level code raised when
	// every fanned-out attempt in one orchestration call failed.
	ErrCodeAllDeploymentsFailed ErrorCode = "ALL_DEPLOYMENTS_FAILED"
)

// DeploymentError is a typed failure tagged with the network it occurred on.
// Vault-level failures (vault not found, unknown network in the request) carry
// an empty NetworkKey.
type DeploymentError struct {
	Code       ErrorCode
	NetworkKey string
	Err        error
}

func (e *DeploymentError) Error() string {
	if e.NetworkKey == "" {
		if e.Err == nil {
			return string(e.Code)
		}
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	}
	if e.Err == nil {
		return fmt.Sprintf("%s [%s]", e.Code, e.NetworkKey)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Code, e.NetworkKey, e.Err)
}

func (e *DeploymentError) Unwrap() error {
	return e.Err
}

// NewDeploymentError wraps err as a typed failure on one network.
func NewDeploymentError(code ErrorCode, networkKey string, err error) *DeploymentError {
	return &DeploymentError{Code: code, NetworkKey: networkKey, Err: err}
}

// NewVaultError wraps a vault-level precondition failure with no network tag.
func NewVaultError(code ErrorCode, format string, args ...any) *DeploymentError {
	return &DeploymentError{Code: code, Err: fmt.Errorf(format, args...)}
}

// HasCode reports whether err carries the given deployment error code.
func HasCode(err error, code ErrorCode) bool {
	var deployErr *DeploymentError
	if errors.As(err, &deployErr) {
		return deployErr.Code == code
	}
	var aggErr *AggregateDeploymentError
	if errors.As(err, &aggErr) {
		return code == ErrCodeAllDeploymentsFailed
	}
	return false
}

// AggregateDeploymentError carries every per-network failure from an
// orchestration call in which zero networks succeeded.
type AggregateDeploymentError struct {
	VaultID    string
	PerNetwork map[string]*DeploymentError
}

func (e *AggregateDeploymentError) Error() string {
	keys := make([]string, 0, len(e.PerNetwork))
	for key := range e.PerNetwork {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, e.PerNetwork[key].Error())
	}
	return fmt.Sprintf("%s: vault %s: %s", ErrCodeAllDeploymentsFailed, e.VaultID, strings.Join(parts, "; "))
}
