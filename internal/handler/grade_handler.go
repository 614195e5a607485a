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

// GradeHandler wires grade HTTP routes.
type GradeHandler struct {
	service service.GradeService
	logger  zerolog.Logger
}

// NewGradeHandler constructs the handler.
func NewGradeHandler(service service.GradeService, logger zerolog.Logger) *GradeHandler {
	return &GradeHandler{
		service: service,
		logger:  logger.With().Str("component", "grade_handler").Logger(),
	}
}

// Register attaches grade endpoints to the router group.
func (h *GradeHandler) Register(router fiber.Router) {
	router.Post("", middleware.WithAuth(h.upsert, middleware.AuthOptions{Role: middleware.AuthRoleTeacher}))
}

// RegisterEnrollmentRoutes attaches grade reads nested under an enrollment.
func (h *GradeHandler) RegisterEnrollmentRoutes(router fiber.Router) {
	router.Get("/:id/grades", h.listByEnrollment)
}

func (h *GradeHandler) upsert(c *fiber.Ctx) error {
	var payload dto.GradeUpsertRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	grade, err := h.service.Upsert(c.UserContext(), actorFromContext(c), payload)
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		return h.gradeError(c, err, "failed to record grade")
	}

	return utils.SendSuccess(c, "grade recorded", grade)
}

func (h *GradeHandler) listByEnrollment(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	grades, err := h.service.ListByEnrollment(c.UserContext(), actorFromContext(c), id)
	if err != nil {
		return h.gradeError(c, err, "failed to list grades")
	}

	return utils.SendSuccess(c, "grades retrieved", grades)
}

func (h *GradeHandler) gradeError(c *fiber.Ctx, err error, message string) error {
	switch {
	case errors.Is(err, service.ErrGradeOutOfRange):
		return utils.SendError(c, fiber.StatusBadRequest, "grade value must be between 0 and 5")
	case errors.Is(err, service.ErrEnrollmentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "enrollment not found")
	case errors.Is(err, service.ErrActivityLinkNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "activity link not found")
	case errors.Is(err, service.ErrGradeScopeMismatch):
		return utils.SendError(c, fiber.StatusConflict, "activity link does not belong to the enrollment course")
	case errors.Is(err, service.ErrIndicatorNotInOutcome):
		return utils.SendError(c, fiber.StatusBadRequest, "indicator does not belong to the outcome")
	case errors.Is(err, service.ErrNotCourseOwner):
		return utils.SendError(c, fiber.StatusForbidden, "course not owned by teacher")
	}
	requestLogger(h.logger, c).Error().Err(err).Msg(message)
	return utils.SendError(c, fiber.StatusInternalServerError, message)
}
