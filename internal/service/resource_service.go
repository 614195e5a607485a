package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/sigra-edu/sigra-api/internal/dto"
	"github.com/sigra-edu/sigra-api/internal/models"
	"github.com/sigra-edu/sigra-api/internal/observability"
	"github.com/sigra-edu/sigra-api/internal/repository"
)

// ErrResourceTooLarge indicates the uploaded file exceeds the size limit.
var ErrResourceTooLarge = errors.New("resource file too large")

// ErrResourceTypeNotAllowed indicates the detected content type is outside
// the allow-list.
var ErrResourceTypeNotAllowed = errors.New("resource file type not allowed")

// ErrResourceTitleRequired indicates the upload is missing a title.
var ErrResourceTitleRequired = errors.New("resource title is required")

// ErrStorageUnavailable indicates no file storage backend is configured.
var ErrStorageUnavailable = errors.New("file storage is not configured")

// FileStorage persists uploaded files and returns a public URL.
type FileStorage interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
}

// Content types accepted for course resources. Detection is sniffed from the
// bytes, not taken from the client headers.
var allowedResourceTypes = map[string]struct{}{
	"application/pdf":    {},
	"application/zip":    {},
	"image/png":          {},
	"image/jpeg":         {},
	"text/plain":         {},
	"application/msword": {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {},
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":       {},
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": {},
}

// ResourceService lists and uploads course resource files.
type ResourceService interface {
	ListByCourse(ctx context.Context, actor Actor, courseCode string) ([]dto.ResourceResponse, error)
	Upload(ctx context.Context, actor Actor, courseCode, title, filename string, file io.Reader) (dto.ResourceResponse, error)
}

type resourceService struct {
	resources     repository.ResourceRepository
	courses       CourseService
	enrollments   repository.EnrollmentRepository
	storage       FileStorage
	notifications NotificationService
	maxBytes      int64
	logger        zerolog.Logger
}

// NewResourceService constructs the resource service. Storage and the
// notification service are optional; uploads fail without storage.
func NewResourceService(resources repository.ResourceRepository, courses CourseService, enrollments repository.EnrollmentRepository, storage FileStorage, notifications NotificationService, maxSizeMB int, logger zerolog.Logger) ResourceService {
	return &resourceService{
		resources:     resources,
		courses:       courses,
		enrollments:   enrollments,
		storage:       storage,
		notifications: notifications,
		maxBytes:      int64(maxSizeMB) * 1024 * 1024,
		logger:        logger.With().Str("component", "resource_service").Logger(),
	}
}

// ListByCourse returns the course's shared files. Teachers must own the
// course; students must hold an enrollment in it.
func (s *resourceService) ListByCourse(ctx context.Context, actor Actor, courseCode string) ([]dto.ResourceResponse, error) {
	course, err := s.resolveForActor(ctx, actor, courseCode)
	if err != nil {
		return nil, err
	}

	resources, err := s.resources.ListByCourse(ctx, course.ID)
	if err != nil {
		return nil, err
	}
	return dto.NewResourceResponseSlice(resources), nil
}

// Upload stores the file, records the resource and notifies every student
// enrolled in the course.
func (s *resourceService) Upload(ctx context.Context, actor Actor, courseCode, title, filename string, file io.Reader) (dto.ResourceResponse, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return dto.ResourceResponse{}, ErrResourceTitleRequired
	}
	if s.storage == nil {
		return dto.ResourceResponse{}, ErrStorageUnavailable
	}

	course, err := s.courses.ResolveOwned(ctx, actor, courseCode)
	if err != nil {
		return dto.ResourceResponse{}, err
	}

	// Read one byte past the limit so an exactly-at-limit file still passes.
	data, err := io.ReadAll(io.LimitReader(file, s.maxBytes+1))
	if err != nil {
		return dto.ResourceResponse{}, err
	}
	if int64(len(data)) > s.maxBytes {
		observability.ResourceUploadsRejected().WithLabelValues("too_large").Inc()
		return dto.ResourceResponse{}, ErrResourceTooLarge
	}

	detected := mimetype.Detect(data)
	if _, ok := allowedResourceTypes[detected.String()]; !ok {
		observability.ResourceUploadsRejected().WithLabelValues("unsupported_type").Inc()
		s.logger.Warn().Str("mime", detected.String()).Str("filename", filename).Msg("rejected resource upload")
		return dto.ResourceResponse{}, ErrResourceTypeNotAllowed
	}

	url, err := s.storage.Upload(ctx, filename, bytes.NewReader(data))
	if err != nil {
		return dto.ResourceResponse{}, err
	}

	resource := models.Resource{
		CourseID: course.ID,
		Title:    title,
		FileURL:  url,
	}
	if err := s.resources.Create(ctx, &resource); err != nil {
		return dto.ResourceResponse{}, err
	}

	s.notifyEnrolled(ctx, course, resource)

	return dto.NewResourceResponse(resource), nil
}

func (s *resourceService) resolveForActor(ctx context.Context, actor Actor, courseCode string) (models.Course, error) {
	if actor.IsTeacher() {
		return s.courses.ResolveOwned(ctx, actor, courseCode)
	}

	course, err := s.courses.ResolveAny(ctx, courseCode)
	if err != nil {
		return models.Course{}, err
	}
	if _, err := s.enrollments.LatestForStudentCourse(ctx, actor.ID, course.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Course{}, ErrCourseNotFound
		}
		return models.Course{}, err
	}
	return course, nil
}

func (s *resourceService) notifyEnrolled(ctx context.Context, course models.Course, resource models.Resource) {
	if s.notifications == nil {
		return
	}

	enrollments, err := s.enrollments.ListByCourse(ctx, course.ID, nil)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to list enrollments for resource notification")
		return
	}

	for _, enrollment := range enrollments {
		_, err := s.notifications.Publish(ctx, dto.NotificationCreateRequest{
			UserRef: models.UserRef(models.RoleStudent, enrollment.StudentID),
			Kind:    models.NotificationKindResource,
			Message: fmt.Sprintf("New resource in %s: %s", course.Name, resource.Title),
			Payload: map[string]interface{}{
				"course_code": course.Code,
				"resource_id": resource.ID,
				"file_url":    resource.FileURL,
			},
		})
		if err != nil {
			s.logger.Warn().Err(err).Uint("student_id", enrollment.StudentID).Msg("failed to publish resource notification")
		}
	}
}
