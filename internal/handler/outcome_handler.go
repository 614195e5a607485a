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

// OutcomeHandler wires learning outcome and indicator HTTP routes.
type OutcomeHandler struct {
	service service.OutcomeService
	logger  zerolog.Logger
}

// NewOutcomeHandler constructs the handler.
func NewOutcomeHandler(service service.OutcomeService, logger zerolog.Logger) *OutcomeHandler {
	return &OutcomeHandler{
		service: service,
		logger:  logger.With().Str("component", "outcome_handler").Logger(),
	}
}

// RegisterCourseRoutes attaches outcome endpoints nested under a course.
func (h *OutcomeHandler) RegisterCourseRoutes(router fiber.Router) {
	router.Get("/:code/outcomes", h.listByCourse)
	router.Post("/:code/outcomes", middleware.WithAuth(h.create, middleware.AuthOptions{Role: middleware.AuthRoleTeacher}))
}

// Register attaches outcome-scoped endpoints.
func (h *OutcomeHandler) Register(router fiber.Router) {
	router.Get("/:id/indicators", h.listIndicators)
	router.Post("/:id/indicators", middleware.WithAuth(h.createIndicator, middleware.AuthOptions{Role: middleware.AuthRoleTeacher}))
	router.Get("/:id/validation", h.validation)
}

func (h *OutcomeHandler) listByCourse(c *fiber.Ctx) error {
	code := courseCodeParam(c)
	if code == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "course code is required")
	}

	outcomes, err := h.service.ListByCourse(c.UserContext(), code)
	if err != nil {
		return h.outcomeError(c, err, "failed to list outcomes")
	}

	return utils.SendSuccess(c, "outcomes retrieved", outcomes)
}

func (h *OutcomeHandler) create(c *fiber.Ctx) error {
	code := courseCodeParam(c)
	if code == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "course code is required")
	}

	var payload dto.OutcomeCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	outcome, err := h.service.Create(c.UserContext(), actorFromContext(c), code, payload)
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		return h.outcomeError(c, err, "failed to create outcome")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "outcome created", outcome)
}

func (h *OutcomeHandler) listIndicators(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	indicators, err := h.service.ListIndicators(c.UserContext(), id)
	if err != nil {
		return h.outcomeError(c, err, "failed to list indicators")
	}

	return utils.SendSuccess(c, "indicators retrieved", indicators)
}

func (h *OutcomeHandler) createIndicator(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.IndicatorCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	indicator, err := h.service.CreateIndicator(c.UserContext(), actorFromContext(c), id, payload)
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		return h.outcomeError(c, err, "failed to create indicator")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "indicator created", indicator)
}

func (h *OutcomeHandler) validation(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	report, err := h.service.Validation(c.UserContext(), id)
	if err != nil {
		return h.outcomeError(c, err, "failed to validate outcome weights")
	}

	return utils.SendSuccess(c, "outcome validation computed", report)
}

func (h *OutcomeHandler) outcomeError(c *fiber.Ctx, err error, message string) error {
	switch {
	case errors.Is(err, service.ErrOutcomeNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "outcome not found")
	case errors.Is(err, service.ErrCourseNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "course not found")
	case errors.Is(err, service.ErrNotCourseOwner):
		return utils.SendError(c, fiber.StatusForbidden, "course not owned by teacher")
	}
	requestLogger(h.logger, c).Error().Err(err).Msg(message)
	return utils.SendError(c, fiber.StatusInternalServerError, message)
}
