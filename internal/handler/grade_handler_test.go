package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/sigra-edu/sigra-api/internal/dto"
	"github.com/sigra-edu/sigra-api/internal/handler"
	"github.com/sigra-edu/sigra-api/internal/models"
	"github.com/sigra-edu/sigra-api/internal/service"
)

type mockGradeService struct {
	lastActor   service.Actor
	lastPayload dto.GradeUpsertRequest
	response    dto.GradeResponse
	err         error
}

func (m *mockGradeService) Upsert(_ context.Context, actor service.Actor, payload dto.GradeUpsertRequest) (dto.GradeResponse, error) {
	m.lastActor = actor
	m.lastPayload = payload
	if m.err != nil {
		return dto.GradeResponse{}, m.err
	}
	return m.response, nil
}

func (m *mockGradeService) ListByEnrollment(_ context.Context, actor service.Actor, _ uint) ([]dto.GradeResponse, error) {
	m.lastActor = actor
	if m.err != nil {
		return nil, m.err
	}
	return []dto.GradeResponse{m.response}, nil
}

func newGradeApp(svc service.GradeService, role string) *fiber.App {
	app := fiber.New()
	group := app.Group("/api/v1/grades", func(c *fiber.Ctx) error {
		c.Locals("user_id", uint(7))
		c.Locals("user_role", role)
		return c.Next()
	})
	handler.NewGradeHandler(svc, zerolog.New(io.Discard)).Register(group)
	return app
}

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(target))
}

func TestGradeHandler_UpsertSuccess(t *testing.T) {
	value := 4.5
	svc := &mockGradeService{response: dto.GradeResponse{ID: 1, EnrollmentID: 3, ActivityOutcomeID: 9, Value: &value}}
	app := newGradeApp(svc, models.RoleTeacher)

	body, err := json.Marshal(dto.GradeUpsertRequest{EnrollmentID: 3, ActivityOutcomeID: 9, Value: &value})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/grades", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var response struct {
		Success bool              `json:"success"`
		Data    dto.GradeResponse `json:"data"`
		Message string            `json:"message"`
	}
	decodeResponse(t, resp, &response)

	require.True(t, response.Success)
	require.Equal(t, "grade recorded", response.Message)
	require.Equal(t, uint(1), response.Data.ID)
	require.Equal(t, uint(7), svc.lastActor.ID)
	require.Equal(t, models.RoleTeacher, svc.lastActor.Role)
}

func TestGradeHandler_UpsertRejectsStudents(t *testing.T) {
	svc := &mockGradeService{}
	app := newGradeApp(svc, models.RoleStudent)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/grades", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	require.Zero(t, svc.lastPayload.EnrollmentID)
}

func TestGradeHandler_ServiceErrors(t *testing.T) {
	value := 3.0
	cases := []struct {
		name       string
		err        error
		statusCode int
	}{
		{name: "out of range", err: service.ErrGradeOutOfRange, statusCode: fiber.StatusBadRequest},
		{name: "missing enrollment", err: service.ErrEnrollmentNotFound, statusCode: fiber.StatusNotFound},
		{name: "scope mismatch", err: service.ErrGradeScopeMismatch, statusCode: fiber.StatusConflict},
		{name: "not owner", err: service.ErrNotCourseOwner, statusCode: fiber.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockGradeService{err: tc.err}
			app := newGradeApp(svc, models.RoleTeacher)

			body, err := json.Marshal(dto.GradeUpsertRequest{EnrollmentID: 1, ActivityOutcomeID: 2, Value: &value})
			require.NoError(t, err)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/grades", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")

			resp, err := app.Test(req)
			require.NoError(t, err)
			require.Equal(t, tc.statusCode, resp.StatusCode)
		})
	}
}
