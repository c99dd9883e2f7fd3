package courses

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/coursehive/coursehive-backend/pkg/cloudinary"
	"github.com/coursehive/coursehive-backend/pkg/db"
	"github.com/coursehive/coursehive-backend/pkg/db/models"
	pkgerrors "github.com/coursehive/coursehive-backend/pkg/errors"
	"github.com/coursehive/coursehive-backend/pkg/logger"
)

// Service exposes course catalog management operations.
type Service interface {
	CreateCourse(ctx context.Context, creatorID uuid.UUID, input CreateCourseInput) (*CourseDTO, error)
	UpdateCourse(ctx context.Context, creatorID, courseID uuid.UUID, input UpdateCourseInput) (*CourseDTO, error)
	DeleteCourse(ctx context.Context, creatorID, courseID uuid.UUID) error
	ListCourses(ctx context.Context) ([]CourseDTO, error)
	GetCourse(ctx context.Context, courseID uuid.UUID) (*CourseDTO, error)
}

// ImageUpload carries the raw bytes of a submitted course image.
type ImageUpload struct {
	Filename string
	Data     []byte
}

// CreateCourseInput holds the validated payload to create a course.
type CreateCourseInput struct {
	Title       string
	Description string
	PriceCents  int64
	Image       ImageUpload
}

// UpdateCourseInput holds optional mutation values for a course.
// Nil fields are left untouched.
type UpdateCourseInput struct {
	Title       *string
	Description *string
	PriceCents  *int64
	Image       *ImageUpload
}

type service struct {
	repo           *Repository
	dbClient       *db.Client
	uploader       cloudinary.Uploader
	logg           *logger.Logger
	maxUploadBytes int64
}

// NewService constructs a course service instance.
func NewService(repo *Repository, dbClient *db.Client, uploader cloudinary.Uploader, logg *logger.Logger, maxUploadBytes int64) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("course repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if uploader == nil {
		return nil, fmt.Errorf("uploader required")
	}
	if maxUploadBytes <= 0 {
		return nil, fmt.Errorf("max upload bytes must be positive")
	}
	return &service{
		repo:           repo,
		dbClient:       dbClient,
		uploader:       uploader,
		logg:           logg,
		maxUploadBytes: maxUploadBytes,
	}, nil
}

// CreateCourse uploads the image, then persists the course row. The uploaded
// asset is destroyed again when the insert fails.
func (s *service) CreateCourse(ctx context.Context, creatorID uuid.UUID, input CreateCourseInput) (*CourseDTO, error) {
	if err := validateCourseFields(input.Title, input.Description, input.PriceCents); err != nil {
		return nil, err
	}
	if err := s.validateImage(input.Image); err != nil {
		return nil, err
	}

	asset, err := s.uploadImage(ctx, input.Image)
	if err != nil {
		return nil, err
	}

	course := &models.Course{
		Title:         strings.TrimSpace(input.Title),
		Description:   strings.TrimSpace(input.Description),
		PriceCents:    input.PriceCents,
		ImagePublicID: asset.PublicID,
		ImageURL:      asset.URL,
		CreatorID:     creatorID,
	}

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		_, err := s.repo.WithTx(tx).Create(ctx, course)
		return err
	}); err != nil {
		s.destroyAsset(ctx, asset.PublicID)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert course")
	}

	return NewCourseDTO(course), nil
}

// UpdateCourse applies the provided fields to a course owned by the creator.
func (s *service) UpdateCourse(ctx context.Context, creatorID, courseID uuid.UUID, input UpdateCourseInput) (*CourseDTO, error) {
	if input.Title == nil && input.Description == nil && input.PriceCents == nil && input.Image == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one field must be provided")
	}
	if input.Title != nil && strings.TrimSpace(*input.Title) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title cannot be empty")
	}
	if input.Description != nil && strings.TrimSpace(*input.Description) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "description cannot be empty")
	}
	if input.PriceCents != nil && *input.PriceCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price_cents must be positive")
	}

	// Absence and ownership are reported separately: a missing course is
	// plain not-found, an existing course owned by someone else is not.
	existing, err := s.repo.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "course not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load course")
	}
	if existing.CreatorID != creatorID {
		return nil, pkgerrors.New(pkgerrors.CodeNotCourseOwner, "course not found or you are not authorized")
	}

	columns := map[string]any{}
	if input.Title != nil {
		columns["title"] = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		columns["description"] = strings.TrimSpace(*input.Description)
	}
	if input.PriceCents != nil {
		columns["price_cents"] = *input.PriceCents
	}

	var newAsset *cloudinary.Asset
	if input.Image != nil {
		if err := s.validateImage(*input.Image); err != nil {
			return nil, err
		}
		newAsset, err = s.uploadImage(ctx, *input.Image)
		if err != nil {
			return nil, err
		}
		columns["image_public_id"] = newAsset.PublicID
		columns["image_url"] = newAsset.URL
	}

	affected, err := s.repo.UpdateOwned(ctx, courseID, creatorID, columns)
	if err != nil {
		if newAsset != nil {
			s.destroyAsset(ctx, newAsset.PublicID)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update course")
	}
	if affected == 0 {
		if newAsset != nil {
			s.destroyAsset(ctx, newAsset.PublicID)
		}
		return nil, pkgerrors.New(pkgerrors.CodeNotCourseOwner, "course not found or you are not authorized")
	}

	if newAsset != nil && existing.ImagePublicID != "" {
		s.destroyAsset(ctx, existing.ImagePublicID)
	}

	updated, err := s.repo.FindByID(ctx, courseID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load course")
	}
	return NewCourseDTO(updated), nil
}

// DeleteCourse removes an owned course and then its stored image.
func (s *service) DeleteCourse(ctx context.Context, creatorID, courseID uuid.UUID) error {
	existing, err := s.repo.FindOwned(ctx, courseID, creatorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotCourseOwner, "course not found or you are not authorized")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load course")
	}

	affected, err := s.repo.DeleteOwned(ctx, courseID, creatorID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete course")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotCourseOwner, "course not found or you are not authorized")
	}

	if existing.ImagePublicID != "" {
		s.destroyAsset(ctx, existing.ImagePublicID)
	}
	return nil
}

// ListCourses returns the full catalog newest first.
func (s *service) ListCourses(ctx context.Context) ([]CourseDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list courses")
	}
	return NewCourseDTOs(rows), nil
}

// GetCourse loads a single course by ID.
func (s *service) GetCourse(ctx context.Context, courseID uuid.UUID) (*CourseDTO, error) {
	course, err := s.repo.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "course not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load course")
	}
	return NewCourseDTO(course), nil
}

func (s *service) validateImage(image ImageUpload) error {
	if len(image.Data) == 0 {
		return pkgerrors.New(pkgerrors.CodeUpload, "image file is required")
	}
	if int64(len(image.Data)) > s.maxUploadBytes {
		return pkgerrors.New(pkgerrors.CodeUpload, fmt.Sprintf("image exceeds the %d byte limit", s.maxUploadBytes))
	}
	_, err := sniffImageMimeType(image.Data)
	return err
}

func (s *service) uploadImage(ctx context.Context, image ImageUpload) (*cloudinary.Asset, error) {
	asset, err := s.uploader.Upload(ctx, bytes.NewReader(image.Data))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeTimeout, err, "image upload timed out")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeUpload, err, "image upload failed")
	}
	return asset, nil
}

// destroyAsset is best-effort cleanup; failures are logged, not surfaced.
func (s *service) destroyAsset(ctx context.Context, publicID string) {
	if publicID == "" {
		return
	}
	if err := s.uploader.Destroy(ctx, publicID); err != nil && s.logg != nil {
		ctx = s.logg.WithField(ctx, "public_id", publicID)
		s.logg.Error(ctx, "asset.cleanup_failed", err)
	}
}

func validateCourseFields(title, description string, priceCents int64) error {
	if strings.TrimSpace(title) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	if strings.TrimSpace(description) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "description is required")
	}
	if priceCents <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "price_cents must be positive")
	}
	return nil
}
