package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/purvik6062/safe-core-wallet-deployment/internal/api/middleware"
	"github.com/purvik6062/safe-core-wallet-deployment/internal/models"
	"github.com/purvik6062/safe-core-wallet-deployment/internal/services"
)

type createVaultRequest struct {
	Networks     []string `json:"networks"`
	OwnerAddress string   `json:"owner_address"`
	Threshold    int      `json:"threshold"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Tags         []string `json:"tags"`
}

type expandVaultRequest struct {
	Networks []string `json:"networks"`
}

type setStatusRequest struct {
	Status models.VaultStatus `json:"status"`
}

// handleCreateVault deploys a new vault across the requested networks.
// Partial failures are part of a 201 payload; only zero successes is an error.
func (s *APIServer) handleCreateVault(c *fiber.Ctx) error {
	userID := middleware.GetAuthenticatedUserID(c)

	var req createVaultRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	result, err := s.orchestrator.CreateVault(c.Context(), userID, req.Networks, services.CreateVaultOptions{
		OwnerAddress: req.OwnerAddress,
		Threshold:    req.Threshold,
		Name:         req.Name,
		Description:  req.Description,
		Tags:         req.Tags,
	})
	if err != nil {
		return s.deploymentErrorResponse(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(result)
}

// handleExpandVault deploys an existing vault to additional networks.
func (s *APIServer) handleExpandVault(c *fiber.Ctx) error {
	userID := middleware.GetAuthenticatedUserID(c)
	vaultID := c.Params("id")

	vault, err := s.vaultService.GetVault(vaultID)
	if err != nil || vault.UserID != userID {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Vault not found"})
	}

	var req expandVaultRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	result, err := s.orchestrator.ExpandVault(c.Context(), vaultID, req.Networks)
	if err != nil {
		return s.deploymentErrorResponse(c, err)
	}

	return c.JSON(result)
}

// handleSetStatus applies an administrative status override.
func (s *APIServer) handleSetStatus(c *fiber.Ctx) error {
	userID := middleware.GetAuthenticatedUserID(c)
	vaultID := c.Params("id")

	vault, err := s.vaultService.GetVault(vaultID)
	if err != nil || vault.UserID != userID {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Vault not found"})
	}

	var req setStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	updated, err := s.orchestrator.SetStatus(c.Context(), vaultID, req.Status)
	if err != nil {
		return s.deploymentErrorResponse(c, err)
	}

	return c.JSON(updated)
}

func (s *APIServer) handleGetVault(c *fiber.Ctx) error {
	userID := middleware.GetAuthenticatedUserID(c)

	vault, err := s.vaultService.GetVault(c.Params("id"))
	if err != nil || vault.UserID != userID {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Vault not found"})
	}

	return c.JSON(vault)
}

func (s *APIServer) handleListVaults(c *fiber.Ctx) error {
	userID := middleware.GetAuthenticatedUserID(c)

	vaults, err := s.vaultService.ListVaultsByUser(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to list vaults"})
	}

	return c.JSON(fiber.Map{"vaults": vaults})
}

func (s *APIServer) handleVaultSummary(c *fiber.Ctx) error {
	userID := middleware.GetAuthenticatedUserID(c)

	summary, err := s.vaultService.AggregateAnalytics(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to aggregate vaults"})
	}

	return c.JSON(summary)
}

func (s *APIServer) handleListNetworks(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"networks": s.networkService.List()})
}

// deploymentErrorResponse maps orchestrator errors onto HTTP statuses:
// vault not found -> 404, validation-class errors -> 400, all deployments
// failed -> 500 with per-network detail attached.
func (s *APIServer) deploymentErrorResponse(c *fiber.Ctx, err error) error {
	var aggErr *services.AggregateDeploymentError
	if errors.As(err, &aggErr) {
		perNetwork := make(map[string]fiber.Map, len(aggErr.PerNetwork))
		for key, deployErr := range aggErr.PerNetwork {
			perNetwork[key] = fiber.Map{
				"code":    deployErr.Code,
				"message": deployErr.Error(),
			}
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":       "All deployments failed",
			"vault_id":    aggErr.VaultID,
			"per_network": perNetwork,
		})
	}

	switch {
	case services.HasCode(err, services.ErrCodeVaultNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case services.HasCode(err, services.ErrCodeUnknownNetwork),
		services.HasCode(err, services.ErrCodeNoNetworksToExpand),
		services.HasCode(err, services.ErrCodeInvalidParameters):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
}
