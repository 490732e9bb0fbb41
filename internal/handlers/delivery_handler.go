package handlers

import (
	"apotek/internal/middleware"
	"apotek/internal/models"
	"apotek/internal/services"
	"apotek/pkg/geo"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// DeliveryHandler serves delivery estimates, provider lookups and
// emergency dispatch.
type DeliveryHandler struct {
	delivery  *services.DeliveryService
	emergency *services.EmergencyService
	validate  *validator.Validate
}

// NewDeliveryHandler creates a new DeliveryHandler.
func NewDeliveryHandler(delivery *services.DeliveryService, emergency *services.EmergencyService) *DeliveryHandler {
	return &DeliveryHandler{
		delivery:  delivery,
		emergency: emergency,
		validate:  validator.New(),
	}
}

// RegisterPublicRoutes registers the lookups that need no authentication.
func (h *DeliveryHandler) RegisterPublicRoutes(router fiber.Router) {
	delivery := router.Group("/delivery")
	delivery.Get("/estimate", h.HandleEstimate)
	delivery.Get("/nearby-pharmacies", h.HandleNearbyPharmacies)
	delivery.Get("/partners", h.HandleAvailablePartners)
}

// RegisterRoutes registers the emergency dispatch routes.
func (h *DeliveryHandler) RegisterRoutes(router fiber.Router) {
	emergency := router.Group("/delivery/emergency")
	emergency.Post("/", h.HandleRequestEmergency)
	emergency.Get("/:id", h.HandleGetEmergency)
	emergency.Post("/:id/assign", h.HandleAssignEmergency)
	emergency.Patch("/:id/status", h.HandleUpdateEmergencyStatus)
}

// LocationQuery is the query string shared by the estimate and nearby lookups.
type LocationQuery struct {
	UserLatitude  *float64 `query:"user_latitude" validate:"required,latitude"`
	UserLongitude *float64 `query:"user_longitude" validate:"required,longitude"`
	MedicineID    uint     `query:"medicine_id" validate:"required"`
}

func (h *DeliveryHandler) parseLocation(c *fiber.Ctx) (geo.Point, uint, bool, error) {
	var q LocationQuery
	if err := c.QueryParser(&q); err != nil {
		return geo.Point{}, 0, false, badRequest(c, "Invalid query parameters", err)
	}
	if ok, err := validateStruct(c, h.validate, &q); !ok {
		return geo.Point{}, 0, false, err
	}
	return geo.Point{Lat: *q.UserLatitude, Lon: *q.UserLongitude}, q.MedicineID, true, nil
}

// HandleEstimate quotes a standard delivery. An unavailable medicine still
// answers 200 with a zeroed estimate.
func (h *DeliveryHandler) HandleEstimate(c *fiber.Ctx) error {
	ref, medicineID, ok, err := h.parseLocation(c)
	if !ok {
		return err
	}
	estimate, err := h.delivery.Estimate(c.UserContext(), ref, medicineID)
	if err != nil {
		return respondError(c, err, "Could not estimate delivery")
	}
	return c.JSON(estimate)
}

func (h *DeliveryHandler) HandleNearbyPharmacies(c *fiber.Ctx) error {
	ref, medicineID, ok, err := h.parseLocation(c)
	if !ok {
		return err
	}
	pharmacies, err := h.delivery.NearbyPharmacies(c.UserContext(), ref, medicineID)
	if err != nil {
		return respondError(c, err, "Could not find nearby pharmacies")
	}
	return c.JSON(pharmacies)
}

func (h *DeliveryHandler) HandleAvailablePartners(c *fiber.Ctx) error {
	partners, err := h.delivery.AvailablePartners(c.UserContext())
	if err != nil {
		return respondError(c, err, "Could not retrieve delivery partners")
	}
	return c.JSON(partners)
}

func (h *DeliveryHandler) HandleRequestEmergency(c *fiber.Ctx) error {
	var in services.EmergencyInput
	if ok, err := validateBody(c, h.validate, &in); !ok {
		return err
	}

	req, err := h.emergency.RequestEmergency(c.UserContext(), middleware.UserID(c), in)
	if err != nil {
		return respondError(c, err, "Emergency request failed")
	}
	return c.Status(fiber.StatusCreated).JSON(req)
}

func (h *DeliveryHandler) HandleGetEmergency(c *fiber.Ctx) error {
	req, err := h.emergency.Get(c.UserContext(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err, "Could not retrieve emergency request")
	}
	return c.JSON(req)
}

// HandleAssignEmergency reserves a delivery partner for a pending request.
func (h *DeliveryHandler) HandleAssignEmergency(c *fiber.Ctx) error {
	req, err := h.emergency.Assign(c.UserContext(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err, "Could not assign delivery partner")
	}
	return c.JSON(req)
}

// EmergencyStatusRequest is the body of PATCH /delivery/emergency/:id/status.
type EmergencyStatusRequest struct {
	Status models.EmergencyStatus `json:"status" validate:"required,oneof=assigned completed cancelled"`
}

func (h *DeliveryHandler) HandleUpdateEmergencyStatus(c *fiber.Ctx) error {
	var body EmergencyStatusRequest
	if ok, err := validateBody(c, h.validate, &body); !ok {
		return err
	}

	req, err := h.emergency.UpdateStatus(c.UserContext(), middleware.UserID(c), c.Params("id"), body.Status)
	if err != nil {
		return respondError(c, err, "Emergency update failed")
	}
	return c.JSON(req)
}
