package handlers

import (
	"fmt"

	"apotek/internal/middleware"
	"apotek/internal/models"
	"apotek/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service  *services.OrderService
	validate *validator.Validate
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService) *OrderHandler {
	return &OrderHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the order routes with the Fiber app.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Get("/", h.HandleGetOrders)
	orderRoutes.Post("/", h.HandleCreateOrder)
	orderRoutes.Get("/:id", h.HandleGetOrderByID)
	orderRoutes.Patch("/:id/status", h.HandleUpdateOrderStatus)
	orderRoutes.Get("/:id/track", h.HandleTrackOrder)
	orderRoutes.Post("/:id/delivery-proof", h.HandleDeliveryProof)
}

// HandleGetOrders lists the caller's orders, newest first.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	orders, err := h.service.ListOrders(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, err, "Could not retrieve orders")
	}
	return c.JSON(orders)
}

// HandleGetOrderByID retrieves a single order owned by the caller.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	orderID := c.Params("id")
	order, err := h.service.GetOrder(c.UserContext(), middleware.UserID(c), orderID)
	if err != nil {
		return respondError(c, err, fmt.Sprintf("Could not retrieve order %s", orderID))
	}
	return c.JSON(order)
}

// CreateOrderRequest is the body of POST /orders. Items come from the
// caller's cart.
type CreateOrderRequest struct {
	DeliveryAddress string `json:"delivery_address" validate:"required"`
}

// HandleCreateOrder checks out the caller's cart.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	var req CreateOrderRequest
	if ok, err := validateBody(c, h.validate, &req); !ok {
		return err
	}

	order, err := h.service.PlaceOrder(c.UserContext(), middleware.UserID(c), req.DeliveryAddress)
	if err != nil {
		return respondError(c, err, "Order creation failed")
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}

// UpdateStatusRequest is the body of PATCH /orders/:id/status.
type UpdateStatusRequest struct {
	Status models.OrderStatus `json:"status" validate:"required"`
}

// HandleUpdateOrderStatus moves an order along its lifecycle.
func (h *OrderHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	orderID := c.Params("id")
	var req UpdateStatusRequest
	if ok, err := validateBody(c, h.validate, &req); !ok {
		return err
	}

	order, err := h.service.UpdateStatus(c.UserContext(), orderID, req.Status)
	if err != nil {
		return respondError(c, err, "Order update failed")
	}
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Order %s status updated successfully to %s", orderID, order.Status),
		"order":   order,
	})
}

// HandleTrackOrder returns the delivery tracking record of an order.
func (h *OrderHandler) HandleTrackOrder(c *fiber.Ctx) error {
	tracking, err := h.service.Track(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err, "Could not retrieve tracking")
	}
	return c.JSON(tracking)
}

// DeliveryProofRequest is the body of POST /orders/:id/delivery-proof.
type DeliveryProofRequest struct {
	ImageURL  *string `json:"image_url" validate:"omitempty,url"`
	Signature *string `json:"signature"`
}

// HandleDeliveryProof records proof of delivery for an order.
func (h *OrderHandler) HandleDeliveryProof(c *fiber.Ctx) error {
	var req DeliveryProofRequest
	if ok, err := validateBody(c, h.validate, &req); !ok {
		return err
	}

	proof, err := h.service.RecordDeliveryProof(c.UserContext(), c.Params("id"), req.ImageURL, req.Signature)
	if err != nil {
		return respondError(c, err, "Could not record delivery proof")
	}
	return c.Status(fiber.StatusCreated).JSON(proof)
}
