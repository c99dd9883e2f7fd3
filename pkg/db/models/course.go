package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Course represents a published course listing.
type Course struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Title         string    `gorm:"column:title;not null"`
	Description   string    `gorm:"column:description;not null"`
	PriceCents    int64     `gorm:"column:price_cents;not null"`
	ImagePublicID string    `gorm:"column:image_public_id;not null"`
	ImageURL      string    `gorm:"column:image_url;not null"`
	CreatorID     uuid.UUID `gorm:"column:creator_id;type:uuid;not null;index"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns an identifier when the database default is unavailable.
func (c *Course) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
