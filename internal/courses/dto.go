package courses

import (
	"time"

	"github.com/google/uuid"

	"github.com/coursehive/coursehive-backend/pkg/db/models"
)

// CourseDTO is the API-facing representation of a course.
type CourseDTO struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	PriceCents  int64     `json:"price_cents"`
	ImageURL    string    `json:"image_url"`
	CreatorID   uuid.UUID `json:"creator_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewCourseDTO maps the persistence model to its API shape.
func NewCourseDTO(course *models.Course) *CourseDTO {
	if course == nil {
		return nil
	}
	return &CourseDTO{
		ID:          course.ID,
		Title:       course.Title,
		Description: course.Description,
		PriceCents:  course.PriceCents,
		ImageURL:    course.ImageURL,
		CreatorID:   course.CreatorID,
		CreatedAt:   course.CreatedAt,
		UpdatedAt:   course.UpdatedAt,
	}
}

// NewCourseDTOs maps a slice of course rows.
func NewCourseDTOs(rows []models.Course) []CourseDTO {
	out := make([]CourseDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *NewCourseDTO(&rows[i]))
	}
	return out
}
