package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/sigra-edu/sigra-api/internal/dto"
	"github.com/sigra-edu/sigra-api/internal/middleware"
	"github.com/sigra-edu/sigra-api/internal/service"
	"github.com/sigra-edu/sigra-api/internal/utils"
)

// ActivityHandler wires activity HTTP routes.
type ActivityHandler struct {
	service service.ActivityService
	logger  zerolog.Logger
}

// NewActivityHandler constructs the handler.
func NewActivityHandler(service service.ActivityService, logger zerolog.Logger) *ActivityHandler {
	return &ActivityHandler{
		service: service,
		logger:  logger.With().Str("component", "activity_handler").Logger(),
	}
}

// RegisterOutcomeRoutes attaches activity endpoints nested under an outcome.
func (h *ActivityHandler) RegisterOutcomeRoutes(router fiber.Router) {
	router.Get("/:id/activities", h.listByOutcome)
	router.Post("/:id/activities", middleware.WithAuth(h.create, middleware.AuthOptions{Role: middleware.AuthRoleTeacher}))
}

// RegisterTypes attaches the activity type catalog endpoint.
func (h *ActivityHandler) RegisterTypes(router fiber.Router) {
	router.Get("", h.listTypes)
}

func (h *ActivityHandler) listByOutcome(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	enrollmentID, err := parseQueryUint(c, "enrollment_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid enrollment_id")
	}

	links, err := h.service.ListByOutcome(c.UserContext(), actorFromContext(c), id, enrollmentID)
	if err != nil {
		return h.activityError(c, err, "failed to list activities")
	}

	return utils.SendSuccess(c, "activities retrieved", links)
}

func (h *ActivityHandler) create(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.ActivityCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	link, err := h.service.Create(c.UserContext(), actorFromContext(c), id, payload)
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		if errors.Is(err, service.ErrWeightExceeded) {
			return utils.SendError(c, fiber.StatusConflict, "outcome weight allocation exceeded")
		}
		return h.activityError(c, err, "failed to create activity")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "activity created", link)
}

func (h *ActivityHandler) listTypes(c *fiber.Ctx) error {
	types, err := h.service.ListTypes(c.UserContext())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list activity types")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list activity types")
	}

	return utils.SendSuccess(c, "activity types retrieved", types)
}

func (h *ActivityHandler) activityError(c *fiber.Ctx, err error, message string) error {
	switch {
	case errors.Is(err, service.ErrOutcomeNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "outcome not found")
	case errors.Is(err, service.ErrNotCourseOwner):
		return utils.SendError(c, fiber.StatusForbidden, "course not owned by teacher")
	case errors.Is(err, service.ErrCourseNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "course not found")
	case errors.Is(err, service.ErrEnrollmentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "enrollment not found")
	case errors.Is(err, service.ErrIndicatorNotInOutcome):
		return utils.SendError(c, fiber.StatusBadRequest, "indicator does not belong to the outcome")
	}
	requestLogger(h.logger, c).Error().Err(err).Msg(message)
	return utils.SendError(c, fiber.StatusInternalServerError, message)
}
