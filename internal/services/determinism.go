package services

import (
	"strings"

	"github.com/purvik6062/safe-core-wallet-deployment/internal/models"
)

// CheckAddressDeterminism compares the addresses of all successful deployment
// results from one orchestration call. It returns the common address when
// every successful deployment landed at the same address, or an empty address
// with violation=true when two or more distinct addresses appear. A violation
// is warning-class: the successful deployments still stand, but callers must
// not assume a single address for the vault.
func CheckAddressDeterminism(records []models.NetworkDeploymentRecord) (commonAddress string, violation bool) {
	for _, record := range records {
		if record.Status != models.DeploymentStatusDeployed || record.Address == "" {
			continue
		}
		if commonAddress == "" {
			commonAddress = record.Address
			continue
		}
		if !strings.EqualFold(commonAddress, record.Address) {
			return "", true
		}
	}
	return commonAddress, false
}
