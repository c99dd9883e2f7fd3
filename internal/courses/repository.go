package courses

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/coursehive/coursehive-backend/pkg/db/models"
)

// Repository wires together course persistence helpers.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts a new course row.
func (r *Repository) Create(ctx context.Context, course *models.Course) (*models.Course, error) {
	if err := r.db.WithContext(ctx).Create(course).Error; err != nil {
		return nil, err
	}
	return course, nil
}

// FindByID loads a course by its identifier.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Course, error) {
	var course models.Course
	if err := r.db.WithContext(ctx).First(&course, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

// FindOwned loads a course only when it belongs to the given creator.
func (r *Repository) FindOwned(ctx context.Context, id, creatorID uuid.UUID) (*models.Course, error) {
	var course models.Course
	err := r.db.WithContext(ctx).
		First(&course, "id = ? AND creator_id = ?", id, creatorID).
		Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

// List returns all courses newest first.
func (r *Repository) List(ctx context.Context) ([]models.Course, error) {
	var rows []models.Course
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&rows).
		Error
	return rows, err
}

// UpdateOwned writes the given columns when the course belongs to the creator.
// The returned count is zero when the row is missing or owned by someone else.
func (r *Repository) UpdateOwned(ctx context.Context, id, creatorID uuid.UUID, columns map[string]any) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Course{}).
		Where("id = ? AND creator_id = ?", id, creatorID).
		Updates(columns)
	return result.RowsAffected, result.Error
}

// DeleteOwned removes the course when it belongs to the creator.
func (r *Repository) DeleteOwned(ctx context.Context, id, creatorID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND creator_id = ?", id, creatorID).
		Delete(&models.Course{})
	return result.RowsAffected, result.Error
}
