package handlers

import (
	"apotek/internal/middleware"
	"apotek/internal/models"
	"apotek/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// UserHandler serves the authenticated user's profile.
type UserHandler struct {
	service  *services.UserService
	validate *validator.Validate
}

func NewUserHandler(service *services.UserService) *UserHandler {
	return &UserHandler{service: service, validate: validator.New()}
}

func (h *UserHandler) RegisterRoutes(router fiber.Router) {
	users := router.Group("/users")
	users.Get("/me", h.HandleGetProfile)
	users.Patch("/me", h.HandleUpdateProfile)
}

func (h *UserHandler) HandleGetProfile(c *fiber.Ctx) error {
	user, err := h.service.GetProfile(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, err, "Could not retrieve profile")
	}
	return c.JSON(user)
}

// HandleUpdateProfile applies a partial update; absent fields stay unchanged.
func (h *UserHandler) HandleUpdateProfile(c *fiber.Ctx) error {
	var patch models.UserPatch
	if ok, err := validateBody(c, h.validate, &patch); !ok {
		return err
	}

	user, err := h.service.UpdateProfile(c.UserContext(), middleware.UserID(c), patch)
	if err != nil {
		return respondError(c, err, "Could not update profile")
	}
	return c.JSON(user)
}
