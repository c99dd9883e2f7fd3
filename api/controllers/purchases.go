package controllers

import (
	"net/http"

	"github.com/coursehive/coursehive-backend/api/responses"
	coursesvc "github.com/coursehive/coursehive-backend/internal/courses"
	purchasesvc "github.com/coursehive/coursehive-backend/internal/purchases"
	pkgerrors "github.com/coursehive/coursehive-backend/pkg/errors"
	"github.com/coursehive/coursehive-backend/pkg/logger"
)

type purchasePayload struct {
	Message      string                   `json:"message"`
	Course       *coursesvc.CourseDTO     `json:"course"`
	ClientSecret string                   `json:"client_secret"`
	Purchase     *purchasesvc.PurchaseDTO `json:"purchase"`
}

// PurchaseCourse creates a payment intent for the course and records the purchase.
func PurchaseCourse(svc purchasesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "purchase service unavailable"))
			return
		}

		userID, err := creatorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		courseID, err := parseCourseID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		purchase, err := svc.PurchaseCourse(r.Context(), userID, courseID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		course := purchase.Course
		secret := purchase.ClientSecret
		purchase.Course = nil
		purchase.ClientSecret = ""

		responses.WriteSuccessStatus(w, http.StatusCreated, purchasePayload{
			Message:      "course purchased successfully",
			Course:       course,
			ClientSecret: secret,
			Purchase:     purchase,
		})
	}
}

// ListPurchases returns the caller's purchase history.
func ListPurchases(svc purchasesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "purchase service unavailable"))
			return
		}

		userID, err := creatorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		purchases, err := svc.ListPurchases(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, purchases)
	}
}
