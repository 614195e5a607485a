package dto

import (
	"time"

	"github.com/sigra-edu/sigra-api/internal/models"
)

// ResourceResponse is the serialized representation of a course resource.
type ResourceResponse struct {
	ID         uint      `json:"id"`
	CourseID   uint      `json:"course_id"`
	Title      string    `json:"title"`
	FileURL    string    `json:"file_url"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// NewResourceResponse converts a model into a DTO.
func NewResourceResponse(model models.Resource) ResourceResponse {
	return ResourceResponse{
		ID:         model.ID,
		CourseID:   model.CourseID,
		Title:      model.Title,
		FileURL:    model.FileURL,
		UploadedAt: model.UploadedAt,
	}
}

// NewResourceResponseSlice converts a slice of models into DTOs.
func NewResourceResponseSlice(resources []models.Resource) []ResourceResponse {
	responses := make([]ResourceResponse, 0, len(resources))
	for _, resource := range resources {
		responses = append(responses, NewResourceResponse(resource))
	}
	return responses
}
