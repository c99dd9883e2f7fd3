package controllers

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/coursehive/coursehive-backend/api/middleware"
	"github.com/coursehive/coursehive-backend/api/responses"
	"github.com/coursehive/coursehive-backend/api/validators"
	coursesvc "github.com/coursehive/coursehive-backend/internal/courses"
	"github.com/coursehive/coursehive-backend/pkg/config"
	pkgerrors "github.com/coursehive/coursehive-backend/pkg/errors"
	"github.com/coursehive/coursehive-backend/pkg/logger"
)

// multipart form memory limit before spilling to disk
const multipartMemoryLimit = 4 << 20

type coursesPayload struct {
	Courses []coursesvc.CourseDTO `json:"courses"`
}

type coursePayload struct {
	Course *coursesvc.CourseDTO `json:"course"`
}

type courseMessagePayload struct {
	Message string               `json:"message"`
	Course  *coursesvc.CourseDTO `json:"course"`
}

type messagePayload struct {
	Message string `json:"message"`
}

// ListCourses returns the full catalog. Responds 201 for backward
// compatibility with existing API clients.
func ListCourses(svc coursesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "course service unavailable"))
			return
		}

		courses, err := svc.ListCourses(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, coursesPayload{Courses: courses})
	}
}

// GetCourse returns a single course by ID.
func GetCourse(svc coursesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "course service unavailable"))
			return
		}

		// an unparseable id can never name a course
		courseID, err := parseCourseID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "course not found"))
			return
		}

		course, err := svc.GetCourse(r.Context(), courseID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, coursePayload{Course: course})
	}
}

// CreateCourse handles multipart course creation with an image upload.
func CreateCourse(svc coursesvc.Service, mediaCfg config.MediaConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "course service unavailable"))
			return
		}

		creatorID, err := creatorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := decodeCreateCourseForm(r, mediaCfg.MaxUploadBytes())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		course, err := svc.CreateCourse(r.Context(), creatorID, *input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, courseMessagePayload{
			Message: "course created successfully",
			Course:  course,
		})
	}
}

// UpdateCourse applies a partial update to an owned course. Responds 201
// for backward compatibility with existing API clients.
func UpdateCourse(svc coursesvc.Service, mediaCfg config.MediaConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "course service unavailable"))
			return
		}

		creatorID, err := creatorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		courseID, err := parseCourseID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := decodeUpdateCourseInput(r, mediaCfg.MaxUploadBytes())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		course, err := svc.UpdateCourse(r.Context(), creatorID, courseID, *input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, courseMessagePayload{
			Message: "course updated successfully",
			Course:  course,
		})
	}
}

// DeleteCourse removes an owned course.
func DeleteCourse(svc coursesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "course service unavailable"))
			return
		}

		creatorID, err := creatorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		courseID, err := parseCourseID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteCourse(r.Context(), creatorID, courseID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, messagePayload{Message: "course deleted successfully"})
	}
}

type updateCourseRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	PriceCents  *int64  `json:"price_cents,omitempty" validate:"omitempty,gt=0"`
}

func decodeCreateCourseForm(r *http.Request, maxUploadBytes int64) (*coursesvc.CreateCourseInput, error) {
	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form")
	}

	priceCents, err := parsePriceCents(r.FormValue("price_cents"))
	if err != nil {
		return nil, err
	}

	image, err := readImageFile(r, maxUploadBytes)
	if err != nil {
		return nil, err
	}

	return &coursesvc.CreateCourseInput{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		PriceCents:  priceCents,
		Image:       *image,
	}, nil
}

func decodeUpdateCourseInput(r *http.Request, maxUploadBytes int64) (*coursesvc.UpdateCourseInput, error) {
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		return decodeUpdateCourseForm(r, maxUploadBytes)
	}

	var payload updateCourseRequest
	if err := validators.DecodeJSONBody(r, &payload); err != nil {
		return nil, err
	}
	return &coursesvc.UpdateCourseInput{
		Title:       payload.Title,
		Description: payload.Description,
		PriceCents:  payload.PriceCents,
	}, nil
}

func decodeUpdateCourseForm(r *http.Request, maxUploadBytes int64) (*coursesvc.UpdateCourseInput, error) {
	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form")
	}

	input := &coursesvc.UpdateCourseInput{}
	if values, ok := r.MultipartForm.Value["title"]; ok && len(values) > 0 {
		input.Title = &values[0]
	}
	if values, ok := r.MultipartForm.Value["description"]; ok && len(values) > 0 {
		input.Description = &values[0]
	}
	if values, ok := r.MultipartForm.Value["price_cents"]; ok && len(values) > 0 {
		priceCents, err := parsePriceCents(values[0])
		if err != nil {
			return nil, err
		}
		input.PriceCents = &priceCents
	}

	if _, _, err := r.FormFile("image"); err == nil {
		image, err := readImageFile(r, maxUploadBytes)
		if err != nil {
			return nil, err
		}
		input.Image = image
	}

	return input, nil
}

func readImageFile(r *http.Request, maxUploadBytes int64) (*coursesvc.ImageUpload, error) {
	file, header, err := r.FormFile("image")
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUpload, err, "image file is required")
	}
	defer file.Close()

	// read one extra byte so oversized files fail the service-side cap
	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUpload, err, "reading image file")
	}

	return &coursesvc.ImageUpload{
		Filename: header.Filename,
		Data:     data,
	}, nil
}

func parsePriceCents(raw string) (int64, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "price_cents is required")
	}
	priceCents, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "price_cents must be an integer")
	}
	if priceCents <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "price_cents must be positive")
	}
	return priceCents, nil
}

func parseCourseID(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "courseId")
	courseID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid course id")
	}
	return courseID, nil
}

func creatorFromContext(r *http.Request) (uuid.UUID, error) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	uid, err := uuid.Parse(userID)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user id")
	}
	return uid, nil
}
