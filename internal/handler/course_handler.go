package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/sigra-edu/sigra-api/internal/middleware"
	"github.com/sigra-edu/sigra-api/internal/service"
	"github.com/sigra-edu/sigra-api/internal/utils"
)

// CourseHandler wires course HTTP routes.
type CourseHandler struct {
	service  service.CourseService
	progress service.ProgressService
	logger   zerolog.Logger
}

// NewCourseHandler constructs the handler.
func NewCourseHandler(service service.CourseService, progress service.ProgressService, logger zerolog.Logger) *CourseHandler {
	return &CourseHandler{
		service:  service,
		progress: progress,
		logger:   logger.With().Str("component", "course_handler").Logger(),
	}
}

// Register attaches course endpoints to the router group.
func (h *CourseHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/:code/students", middleware.WithAuth(h.roster, middleware.AuthOptions{Role: middleware.AuthRoleTeacher}))
	router.Get("/:code/periods", h.periods)
	router.Get("/:code/enrollment", middleware.WithAuth(h.myEnrollment, middleware.AuthOptions{Role: middleware.AuthRoleStudent}))
	router.Get("/:code/validation", h.validation)
	router.Get("/:code/indicator-chart", h.indicatorChart)
}

func (h *CourseHandler) list(c *fiber.Ctx) error {
	courses, err := h.service.ListForActor(c.UserContext(), actorFromContext(c))
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list courses")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list courses")
	}

	return utils.SendSuccess(c, "courses retrieved", courses)
}

func (h *CourseHandler) roster(c *fiber.Ctx) error {
	code := courseCodeParam(c)
	if code == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "course code is required")
	}

	periodID, err := parseQueryUint(c, "period_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid period_id")
	}

	roster, err := h.service.Roster(c.UserContext(), actorFromContext(c), code, periodID)
	if err != nil {
		return h.courseError(c, err, "failed to load roster")
	}

	return utils.SendSuccess(c, "roster retrieved", roster)
}

func (h *CourseHandler) periods(c *fiber.Ctx) error {
	code := courseCodeParam(c)
	if code == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "course code is required")
	}

	periods, err := h.service.Periods(c.UserContext(), code)
	if err != nil {
		return h.courseError(c, err, "failed to load periods")
	}

	return utils.SendSuccess(c, "periods retrieved", periods)
}

func (h *CourseHandler) myEnrollment(c *fiber.Ctx) error {
	code := courseCodeParam(c)
	if code == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "course code is required")
	}

	ref, err := h.service.MyEnrollment(c.UserContext(), actorFromContext(c), code)
	if err != nil {
		return h.courseError(c, err, "failed to resolve enrollment")
	}

	return utils.SendSuccess(c, "enrollment resolved", ref)
}

func (h *CourseHandler) validation(c *fiber.Ctx) error {
	code := courseCodeParam(c)
	if code == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "course code is required")
	}

	report, err := h.service.Validation(c.UserContext(), code)
	if err != nil {
		return h.courseError(c, err, "failed to validate course weights")
	}

	return utils.SendSuccess(c, "course validation computed", report)
}

func (h *CourseHandler) indicatorChart(c *fiber.Ctx) error {
	code := courseCodeParam(c)
	if code == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "course code is required")
	}

	studentID, err := parseQueryUint(c, "student_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid student_id")
	}

	rows, err := h.progress.IndicatorChart(c.UserContext(), actorFromContext(c), code, studentID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrStudentRequired):
			return utils.SendError(c, fiber.StatusBadRequest, "student_id is required")
		case errors.Is(err, service.ErrEnrollmentNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "enrollment not found")
		}
		return h.courseError(c, err, "failed to compute indicator chart")
	}

	return utils.SendSuccess(c, "indicator chart computed", rows)
}

func (h *CourseHandler) courseError(c *fiber.Ctx, err error, message string) error {
	switch {
	case errors.Is(err, service.ErrCourseNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "course not found")
	case errors.Is(err, service.ErrNotCourseOwner):
		return utils.SendError(c, fiber.StatusForbidden, "course not owned by teacher")
	}
	requestLogger(h.logger, c).Error().Err(err).Msg(message)
	return utils.SendError(c, fiber.StatusInternalServerError, message)
}

func courseCodeParam(c *fiber.Ctx) string {
	return strings.TrimSpace(c.Params("code"))
}
