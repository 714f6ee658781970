package handlers

import (
	"strconv"

	"contacts/internal/middleware"
	"contacts/internal/models"
	"contacts/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	defaultLimit = 10
	defaultPage  = 1
)

// ContactHandler handles HTTP requests for contacts.
type ContactHandler struct {
	service *services.ContactService
	log     *zap.Logger
}

// NewContactHandler creates a new ContactHandler.
func NewContactHandler(service *services.ContactService, log *zap.Logger) *ContactHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ContactHandler{
		service: service,
		log:     log,
	}
}

// RegisterRoutes registers the contact routes. The middlewares guard every
// route except the ping.
func (h *ContactHandler) RegisterRoutes(router fiber.Router, middlewares ...fiber.Handler) {
	router.Get("/ping", h.HandlePing)

	contactRoutes := router.Group("", middlewares...)
	contactRoutes.Post("/", h.HandleCreateContact)
	contactRoutes.Get("/", h.HandleListContacts)
	contactRoutes.Get("/:id", h.HandleGetContact)
	contactRoutes.Patch("/:id", h.HandleUpdateContact)
	contactRoutes.Delete("/:id", h.HandleDeleteContact)
}

// HandlePing is a liveness check.
func (h *ContactHandler) HandlePing(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).SendString("Hi from server")
}

// HandleCreateContact creates a contact from the request body. An uploaded
// "avatarFile" takes precedence over the avatar field.
func (h *ContactHandler) HandleCreateContact(c *fiber.Ctx) error {
	attrs, err := parseAttributes(c)
	if err != nil {
		return errorResponse(c, h.log, err)
	}

	contact, err := h.service.Create(c.UserContext(), middleware.OwnerFrom(c), attrs, avatarUpload(c))
	if err != nil {
		return errorResponse(c, h.log, err)
	}
	return success(c, "Contact created successfully!", contact)
}

// HandleGetContact returns a contact, or null data when it does not exist.
func (h *ContactHandler) HandleGetContact(c *fiber.Ctx) error {
	contact, err := h.service.Get(c.UserContext(), contactID(c))
	if err != nil {
		return errorResponse(c, h.log, err)
	}
	return success(c, "success", contact)
}

// HandleListContacts returns one page of contacts selected by the limit and
// page query parameters.
func (h *ContactHandler) HandleListContacts(c *fiber.Ctx) error {
	limit := positiveQueryInt(c, "limit", defaultLimit)
	page := positiveQueryInt(c, "page", defaultPage)

	contacts, err := h.service.List(c.UserContext(), limit, page)
	if err != nil {
		return errorResponse(c, h.log, err)
	}
	return success(c, "success", contacts)
}

// HandleUpdateContact applies the fields present in the body to a contact and
// returns it as stored afterwards.
func (h *ContactHandler) HandleUpdateContact(c *fiber.Ctx) error {
	attrs, err := parseAttributes(c)
	if err != nil {
		return errorResponse(c, h.log, err)
	}

	contact, err := h.service.Update(c.UserContext(), contactID(c), middleware.OwnerFrom(c), attrs, avatarUpload(c))
	if err != nil {
		return errorResponse(c, h.log, err)
	}
	return success(c, "success", contact)
}

// HandleDeleteContact deletes a contact and returns it as it was.
func (h *ContactHandler) HandleDeleteContact(c *fiber.Ctx) error {
	contact, err := h.service.Delete(c.UserContext(), contactID(c))
	if err != nil {
		return errorResponse(c, h.log, err)
	}
	return success(c, "success", contact)
}

// parseAttributes reads JSON, urlencoded or multipart bodies. An empty body
// yields empty attributes.
func parseAttributes(c *fiber.Ctx) (models.ContactAttributes, error) {
	var attrs models.ContactAttributes
	if len(c.Body()) == 0 {
		return attrs, nil
	}
	if err := c.BodyParser(&attrs); err != nil {
		return attrs, fiber.NewError(fiber.StatusBadRequest, "Invalid request body: "+err.Error())
	}
	return attrs, nil
}

func avatarUpload(c *fiber.Ctx) *services.Upload {
	fh, err := c.FormFile("avatarFile")
	if err != nil {
		return nil
	}
	return &services.Upload{File: fh, Origin: c.BaseURL()}
}

// contactID parses the :id parameter. Anything that is not a positive
// integer becomes 0, which matches no contact.
func contactID(c *fiber.Ctx) uint {
	id, err := strconv.ParseUint(c.Params("id"), 10, 0)
	if err != nil {
		return 0
	}
	return uint(id)
}

func positiveQueryInt(c *fiber.Ctx, key string, def int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil || v <= 0 {
		return def
	}
	return v
}
