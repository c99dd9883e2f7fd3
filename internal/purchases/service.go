package purchases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	coursesvc "github.com/coursehive/coursehive-backend/internal/courses"
	"github.com/coursehive/coursehive-backend/pkg/db"
	"github.com/coursehive/coursehive-backend/pkg/db/models"
	pkgerrors "github.com/coursehive/coursehive-backend/pkg/errors"
	"github.com/coursehive/coursehive-backend/pkg/logger"
	"github.com/coursehive/coursehive-backend/pkg/metrics"
)

const defaultIntentTimeout = 15 * time.Second

// Service exposes the course purchase flow.
type Service interface {
	PurchaseCourse(ctx context.Context, userID, courseID uuid.UUID) (*PurchaseDTO, error)
	ListPurchases(ctx context.Context, userID uuid.UUID) ([]PurchaseDTO, error)
}

// PurchaseDTO is the API-facing representation of a completed purchase.
// Course is populated on a fresh purchase, not on history listings.
type PurchaseDTO struct {
	ID              uuid.UUID            `json:"id"`
	CourseID        uuid.UUID            `json:"course_id"`
	Course          *coursesvc.CourseDTO `json:"course,omitempty"`
	AmountCents     int64                `json:"amount_cents"`
	Currency        string               `json:"currency"`
	PaymentIntentID string               `json:"payment_intent_id"`
	ClientSecret    string               `json:"client_secret,omitempty"`
	CreatedAt       time.Time            `json:"created_at"`
}

type courseReader interface {
	GetCourse(ctx context.Context, courseID uuid.UUID) (*coursesvc.CourseDTO, error)
}

type service struct {
	repo          *Repository
	dbClient      *db.Client
	stripeClient  StripePaymentClient
	courses       courseReader
	logg          *logger.Logger
	metrics       *metrics.PurchaseMetrics
	currency      string
	intentTimeout time.Duration
}

// NewService constructs a purchase service instance.
func NewService(
	repo *Repository,
	dbClient *db.Client,
	stripeClient StripePaymentClient,
	courses courseReader,
	logg *logger.Logger,
	purchaseMetrics *metrics.PurchaseMetrics,
	currency string,
	intentTimeout time.Duration,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("purchase repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if stripeClient == nil {
		return nil, fmt.Errorf("stripe client required")
	}
	if courses == nil {
		return nil, fmt.Errorf("course reader required")
	}
	if currency == "" {
		currency = "usd"
	}
	if intentTimeout <= 0 {
		intentTimeout = defaultIntentTimeout
	}
	return &service{
		repo:          repo,
		dbClient:      dbClient,
		stripeClient:  stripeClient,
		courses:       courses,
		logg:          logg,
		metrics:       purchaseMetrics,
		currency:      currency,
		intentTimeout: intentTimeout,
	}, nil
}

// PurchaseCourse creates the purchase row and payment intent atomically.
// The unique constraint on (user_id, course_id) serializes concurrent
// attempts; losing transactions surface as duplicate purchases. A failed
// intent rolls the purchase row back.
func (s *service) PurchaseCourse(ctx context.Context, userID, courseID uuid.UUID) (*PurchaseDTO, error) {
	course, err := s.courses.GetCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	var (
		purchase     *models.Purchase
		clientSecret string
	)

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		row := &models.Purchase{
			UserID:      userID,
			CourseID:    courseID,
			AmountCents: course.PriceCents,
		}
		if _, err := txRepo.Create(ctx, row); err != nil {
			if db.IsUniqueViolation(err, models.UniquePurchasePerUserCourse) {
				s.metrics.IncRejected("duplicate")
				return pkgerrors.New(pkgerrors.CodeDuplicatePurchase, "course already purchased")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert purchase")
		}

		intent, err := s.createIntent(ctx, course.PriceCents)
		if err != nil {
			return err
		}

		if err := txRepo.SetPaymentIntentID(ctx, row.ID, intent.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: record payment intent")
		}
		row.PaymentIntentID = intent.ID
		clientSecret = intent.ClientSecret
		purchase = row
		return nil
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "purchase course")
	}

	s.metrics.IncCompleted(s.currency)

	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"course_id":    courseID.String(),
			"purchase_id":  purchase.ID.String(),
			"amount_cents": purchase.AmountCents,
		})
		s.logg.Info(logCtx, "purchase.completed")
	}

	dto := newPurchaseDTO(purchase, s.currency)
	dto.Course = course
	dto.ClientSecret = clientSecret
	return dto, nil
}

// ListPurchases returns the caller's purchase history.
func (s *service) ListPurchases(ctx context.Context, userID uuid.UUID) ([]PurchaseDTO, error) {
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list purchases")
	}
	out := make([]PurchaseDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *newPurchaseDTO(&rows[i], s.currency))
	}
	return out, nil
}

func (s *service) createIntent(ctx context.Context, amountCents int64) (*stripe.PaymentIntent, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.intentTimeout)
	defer cancel()

	start := time.Now()
	intent, err := s.stripeClient.CreateIntent(callCtx, &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(amountCents),
		Currency:           stripe.String(s.currency),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || callCtx.Err() != nil {
			s.metrics.ObserveIntentDuration("timeout", time.Since(start))
			s.metrics.IncRejected("timeout")
			return nil, pkgerrors.Wrap(pkgerrors.CodeTimeout, err, "payment intent timed out")
		}
		s.metrics.ObserveIntentDuration("error", time.Since(start))
		s.metrics.IncRejected("payment")
		return nil, pkgerrors.Wrap(pkgerrors.CodePayment, err, "create payment intent")
	}

	s.metrics.ObserveIntentDuration("ok", time.Since(start))
	return intent, nil
}

func newPurchaseDTO(purchase *models.Purchase, currency string) *PurchaseDTO {
	if purchase == nil {
		return nil
	}
	return &PurchaseDTO{
		ID:              purchase.ID,
		CourseID:        purchase.CourseID,
		AmountCents:     purchase.AmountCents,
		Currency:        currency,
		PaymentIntentID: purchase.PaymentIntentID,
		CreatedAt:       purchase.CreatedAt,
	}
}
