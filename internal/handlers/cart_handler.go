package handlers

import (
	"apotek/internal/middleware"
	"apotek/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// CartHandler handles HTTP requests for the caller's cart.
type CartHandler struct {
	service  *services.CartService
	validate *validator.Validate
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(service *services.CartService) *CartHandler {
	return &CartHandler{service: service, validate: validator.New()}
}

// RegisterRoutes registers the cart routes with the Fiber app.
func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	cart := router.Group("/cart")
	cart.Get("/", h.HandleGetCart)
	cart.Delete("/", h.HandleClearCart)
	cart.Post("/items", h.HandleAddItem)
	cart.Put("/items/:id", h.HandleUpdateItem)
	cart.Delete("/items/:id", h.HandleRemoveItem)
	cart.Post("/validate-prescriptions", h.HandleValidate)
}

func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	view, err := h.service.GetCart(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, err, "Could not retrieve cart")
	}
	return c.JSON(view)
}

func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	var in services.AddCartItemInput
	if ok, err := validateBody(c, h.validate, &in); !ok {
		return err
	}

	line, err := h.service.AddItem(c.UserContext(), middleware.UserID(c), in)
	if err != nil {
		return respondError(c, err, "Could not add item to cart")
	}
	return c.Status(fiber.StatusCreated).JSON(line)
}

// UpdateQuantityRequest is the body of PUT /cart/items/:id.
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

func (h *CartHandler) HandleUpdateItem(c *fiber.Ctx) error {
	itemID, ok := uintParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid cart item ID", nil)
	}
	var req UpdateQuantityRequest
	if ok, err := validateBody(c, h.validate, &req); !ok {
		return err
	}

	line, err := h.service.UpdateItem(c.UserContext(), middleware.UserID(c), itemID, req.Quantity)
	if err != nil {
		return respondError(c, err, "Could not update cart item")
	}
	return c.JSON(line)
}

func (h *CartHandler) HandleRemoveItem(c *fiber.Ctx) error {
	itemID, ok := uintParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid cart item ID", nil)
	}
	if err := h.service.RemoveItem(c.UserContext(), middleware.UserID(c), itemID); err != nil {
		return respondError(c, err, "Could not remove cart item")
	}
	return c.JSON(fiber.Map{"message": "Item removed from cart"})
}

func (h *CartHandler) HandleClearCart(c *fiber.Ctx) error {
	if err := h.service.Clear(c.UserContext(), middleware.UserID(c)); err != nil {
		return respondError(c, err, "Could not clear cart")
	}
	return c.JSON(fiber.Map{"message": "Cart cleared"})
}

// HandleValidate reports which cart lines can be ordered as they stand.
func (h *CartHandler) HandleValidate(c *fiber.Ctx) error {
	result, err := h.service.ValidateCart(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, err, "Could not validate cart")
	}
	return c.JSON(result)
}
