package purchases

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/coursehive/coursehive-backend/pkg/db/models"
)

// Repository wires together purchase persistence helpers.
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

// Create inserts a new purchase row. The unique constraint on
// (user_id, course_id) rejects a second purchase of the same course.
func (r *Repository) Create(ctx context.Context, purchase *models.Purchase) (*models.Purchase, error) {
	if err := r.db.WithContext(ctx).Create(purchase).Error; err != nil {
		return nil, err
	}
	return purchase, nil
}

// SetPaymentIntentID records the created intent on the purchase row.
func (r *Repository) SetPaymentIntentID(ctx context.Context, purchaseID uuid.UUID, intentID string) error {
	return r.db.WithContext(ctx).
		Model(&models.Purchase{}).
		Where("id = ?", purchaseID).
		Update("payment_intent_id", intentID).
		Error
}

// FindByUserAndCourse loads an existing purchase for the pair, if any.
func (r *Repository) FindByUserAndCourse(ctx context.Context, userID, courseID uuid.UUID) (*models.Purchase, error) {
	var purchase models.Purchase
	err := r.db.WithContext(ctx).
		First(&purchase, "user_id = ? AND course_id = ?", userID, courseID).
		Error
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

// ListByUser returns the user's purchases newest first.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Purchase, error) {
	var rows []models.Purchase
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).
		Error
	return rows, err
}
