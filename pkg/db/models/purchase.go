package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UniquePurchasePerUserCourse is the constraint backing duplicate detection.
const UniquePurchasePerUserCourse = "uq_purchases_user_course"

// Purchase records one user's paid access to one course.
type Purchase struct {
	ID              uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID          uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:uq_purchases_user_course"`
	CourseID        uuid.UUID `gorm:"column:course_id;type:uuid;not null;uniqueIndex:uq_purchases_user_course"`
	AmountCents     int64     `gorm:"column:amount_cents;not null"`
	PaymentIntentID string    `gorm:"column:payment_intent_id;not null"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
}

// BeforeCreate assigns an identifier when the database default is unavailable.
func (p *Purchase) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
