package contract_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/require"

	"github.com/sigra-edu/sigra-api/internal/dto"
	"github.com/sigra-edu/sigra-api/internal/handler"
	"github.com/sigra-edu/sigra-api/internal/service"
)

type stubNoticeService struct {
	report dto.NoticeReport
}

func (s stubNoticeService) Report(context.Context, service.Actor) (dto.NoticeReport, error) {
	return s.report, nil
}

func TestNoticeReportContract(t *testing.T) {
	schemaPath, err := filepath.Abs(filepath.Join("..", "contracts", "notice_report.schema.json"))
	require.NoError(t, err)

	compiler := jsonschema.NewCompiler()
	schema, err := compiler.Compile("file://" + schemaPath)
	require.NoError(t, err)

	now := time.Now().UTC()
	due := now.Add(72 * time.Hour)
	report := dto.NoticeReport{
		Tasks: []dto.Task{
			{
				CourseCode:   "MATH-201",
				CourseName:   "Linear Algebra",
				OutcomeID:    4,
				LinkID:       11,
				ActivityName: "Workshop 2",
				Weight:       25,
				DueDate:      &due,
			},
			{
				CourseCode:   "MATH-201",
				CourseName:   "Linear Algebra",
				OutcomeID:    4,
				LinkID:       12,
				ActivityName: "Final Project",
				Weight:       40,
				DueDate:      nil,
			},
		},
		Notices: []dto.Notice{
			{
				Kind:       dto.NoticeKindDeadline,
				CourseCode: "MATH-201",
				CourseName: "Linear Algebra",
				Message:    "Workshop 2 is due this week in Linear Algebra",
			},
			{
				Kind:       dto.NoticeKindAtRisk,
				CourseCode: "PHYS-101",
				CourseName: "Mechanics",
				Message:    "Your average in Mechanics is 2.40, below the passing mark",
			},
		},
		Standings: []dto.CourseStanding{
			{CourseCode: "MATH-201", CourseName: "Linear Algebra", Average: ptrFloat(3.8)},
			{CourseCode: "PHYS-101", CourseName: "Mechanics", Average: ptrFloat(2.4)},
			{CourseCode: "CHEM-110", CourseName: "General Chemistry", Average: nil},
		},
		Skipped: []dto.SkippedItem{
			{Scope: "course CHEM-110 grades", Reason: "record not found"},
		},
		GeneratedAt: now,
	}

	svc := stubNoticeService{report: report}
	noticeHandler := handler.NewNoticeHandler(svc, zerolog.Nop())

	app := fiber.New()
	group := app.Group("/api/v1/me", func(c *fiber.Ctx) error {
		c.Locals("user_id", uint(1))
		c.Locals("user_role", "student")
		return c.Next()
	})
	noticeHandler.Register(group)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me/notices", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	var payload interface{}
	require.NoError(t, json.Unmarshal(body, &payload))
	require.NoError(t, schema.Validate(payload))
}

func ptrFloat(v float64) *float64 {
	return &v
}
