package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// MeHandler exposes the caller's own profile and navigation.
type MeHandler struct {
	directory *service.DirectoryService
}

// NewMeHandler constructs handler.
func NewMeHandler(directory *service.DirectoryService) *MeHandler {
	return &MeHandler{directory: directory}
}

// Me GET /me.
func (h *MeHandler) Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	return c.JSON(fiber.Map{"data": dto.FromProfile(principal.Profile)})
}

// UpdateProfile PATCH /me. Edits the caller's own full name and avatar.
func (h *MeHandler) UpdateProfile(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	profile, err := h.directory.UpdateProfile(c.Context(), principal.Profile.ID, req.FullName, req.AvatarURL)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromProfile(profile)})
}

// Navigation GET /me/navigation. The item set derives from the stored
// role resolved by the auth middleware, the same source the route
// guards use.
func (h *MeHandler) Navigation(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	return c.JSON(fiber.Map{"data": service.NavigationForRole(principal.Role())})
}
