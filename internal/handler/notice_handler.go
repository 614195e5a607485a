package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/sigra-edu/sigra-api/internal/service"
	"github.com/sigra-edu/sigra-api/internal/utils"
)

// NoticeHandler exposes the derived task and notice report.
type NoticeHandler struct {
	service service.NoticeService
	logger  zerolog.Logger
}

// NewNoticeHandler constructs the handler.
func NewNoticeHandler(service service.NoticeService, logger zerolog.Logger) *NoticeHandler {
	return &NoticeHandler{
		service: service,
		logger:  logger.With().Str("component", "notice_handler").Logger(),
	}
}

// Register attaches the notice endpoints to the router group.
func (h *NoticeHandler) Register(router fiber.Router) {
	router.Get("/notices", h.report)
}

func (h *NoticeHandler) report(c *fiber.Ctx) error {
	report, err := h.service.Report(c.UserContext(), actorFromContext(c))
	if err != nil {
		if errors.Is(err, service.ErrNoticesForStudentsOnly) {
			return utils.SendError(c, fiber.StatusForbidden, "notice reports are only available to students")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to derive notice report")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to derive notice report")
	}

	return utils.SendSuccess(c, "notice report derived", report)
}
