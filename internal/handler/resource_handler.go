package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/sigra-edu/sigra-api/internal/middleware"
	"github.com/sigra-edu/sigra-api/internal/service"
	"github.com/sigra-edu/sigra-api/internal/utils"
)

// ResourceHandler wires course resource HTTP routes.
type ResourceHandler struct {
	service service.ResourceService
	logger  zerolog.Logger
}

// NewResourceHandler constructs the handler.
func NewResourceHandler(service service.ResourceService, logger zerolog.Logger) *ResourceHandler {
	return &ResourceHandler{
		service: service,
		logger:  logger.With().Str("component", "resource_handler").Logger(),
	}
}

// RegisterCourseRoutes attaches resource endpoints nested under a course.
func (h *ResourceHandler) RegisterCourseRoutes(router fiber.Router) {
	router.Get("/:code/resources", h.list)
	router.Post("/:code/resources", middleware.WithAuth(h.upload, middleware.AuthOptions{Role: middleware.AuthRoleTeacher}))
}

func (h *ResourceHandler) list(c *fiber.Ctx) error {
	code := courseCodeParam(c)
	if code == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "course code is required")
	}

	resources, err := h.service.ListByCourse(c.UserContext(), actorFromContext(c), code)
	if err != nil {
		return h.resourceError(c, err, "failed to list resources")
	}

	return utils.SendSuccess(c, "resources retrieved", resources)
}

func (h *ResourceHandler) upload(c *fiber.Ctx) error {
	code := courseCodeParam(c)
	if code == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "course code is required")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "file is required")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "could not read uploaded file")
	}
	defer func() { _ = file.Close() }()

	resource, err := h.service.Upload(c.UserContext(), actorFromContext(c), code, c.FormValue("title"), fileHeader.Filename, file)
	if err != nil {
		return h.resourceError(c, err, "failed to upload resource")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "resource uploaded", resource)
}

func (h *ResourceHandler) resourceError(c *fiber.Ctx, err error, message string) error {
	switch {
	case errors.Is(err, service.ErrResourceTitleRequired):
		return utils.SendError(c, fiber.StatusBadRequest, "resource title is required")
	case errors.Is(err, service.ErrResourceTooLarge):
		return utils.SendError(c, fiber.StatusRequestEntityTooLarge, "resource file too large")
	case errors.Is(err, service.ErrResourceTypeNotAllowed):
		return utils.SendError(c, fiber.StatusUnsupportedMediaType, "resource file type not allowed")
	case errors.Is(err, service.ErrStorageUnavailable):
		return utils.SendError(c, fiber.StatusServiceUnavailable, "file storage is not configured")
	case errors.Is(err, service.ErrCourseNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "course not found")
	case errors.Is(err, service.ErrNotCourseOwner):
		return utils.SendError(c, fiber.StatusForbidden, "course not owned by teacher")
	}
	requestLogger(h.logger, c).Error().Err(err).Msg(message)
	return utils.SendError(c, fiber.StatusInternalServerError, message)
}
