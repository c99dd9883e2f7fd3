package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/coursehive/coursehive-backend/api/middleware"
	coursesvc "github.com/coursehive/coursehive-backend/internal/courses"
	"github.com/coursehive/coursehive-backend/pkg/config"
	pkgerrors "github.com/coursehive/coursehive-backend/pkg/errors"
	"github.com/coursehive/coursehive-backend/pkg/logger"
)

type fakeCourseService struct {
	createInput *coursesvc.CreateCourseInput
	updateInput *coursesvc.UpdateCourseInput
	deletedID   uuid.UUID
	course      coursesvc.CourseDTO
	err         error
}

func (f *fakeCourseService) CreateCourse(ctx context.Context, creatorID uuid.UUID, input coursesvc.CreateCourseInput) (*coursesvc.CourseDTO, error) {
	f.createInput = &input
	if f.err != nil {
		return nil, f.err
	}
	course := f.course
	course.CreatorID = creatorID
	return &course, nil
}

func (f *fakeCourseService) UpdateCourse(ctx context.Context, creatorID, courseID uuid.UUID, input coursesvc.UpdateCourseInput) (*coursesvc.CourseDTO, error) {
	f.updateInput = &input
	if f.err != nil {
		return nil, f.err
	}
	course := f.course
	course.ID = courseID
	return &course, nil
}

func (f *fakeCourseService) DeleteCourse(ctx context.Context, creatorID, courseID uuid.UUID) error {
	f.deletedID = courseID
	return f.err
}

func (f *fakeCourseService) ListCourses(ctx context.Context) ([]coursesvc.CourseDTO, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []coursesvc.CourseDTO{f.course}, nil
}

func (f *fakeCourseService) GetCourse(ctx context.Context, courseID uuid.UUID) (*coursesvc.CourseDTO, error) {
	if f.err != nil {
		return nil, f.err
	}
	course := f.course
	course.ID = courseID
	return &course, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{Output: io.Discard})
}

func testMediaConfig() config.MediaConfig {
	return config.MediaConfig{MaxUploadMB: 5}
}

func requestWithUser(r *http.Request, userID uuid.UUID) *http.Request {
	return r.WithContext(middleware.WithUserID(r.Context(), userID.String()))
}

func requestWithCourseParam(r *http.Request, courseID string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("courseId", courseID)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, routeCtx))
}

func decodeErrorCode(t *testing.T, body *bytes.Buffer) string {
	t.Helper()
	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(body).Decode(&envelope); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	return envelope.Error.Code
}

func multipartCourseBody(t *testing.T, fields map[string]string, imageName string, imageData []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("write field %s: %v", key, err)
		}
	}
	if imageName != "" {
		part, err := writer.CreateFormFile("image", imageName)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write(imageData); err != nil {
			t.Fatalf("write image: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return body, writer.FormDataContentType()
}

func TestListCoursesHandler(t *testing.T) {
	svc := &fakeCourseService{course: coursesvc.CourseDTO{Title: "Intro to Go"}}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/course", nil)
	rec := httptest.NewRecorder()

	ListCourses(svc, testLogger())(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	var envelope struct {
		Data struct {
			Courses []coursesvc.CourseDTO `json:"courses"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(envelope.Data.Courses) != 1 || envelope.Data.Courses[0].Title != "Intro to Go" {
		t.Fatalf("unexpected payload: %+v", envelope.Data)
	}
}

func TestGetCourseHandler(t *testing.T) {
	t.Run("returns course", func(t *testing.T) {
		svc := &fakeCourseService{course: coursesvc.CourseDTO{Title: "Intro to Go"}}
		courseID := uuid.New()
		req := requestWithCourseParam(httptest.NewRequest(http.MethodGet, "/api/v1/course/"+courseID.String(), nil), courseID.String())
		rec := httptest.NewRecorder()

		GetCourse(svc, testLogger())(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("malformed id reads as not found", func(t *testing.T) {
		svc := &fakeCourseService{}
		req := requestWithCourseParam(httptest.NewRequest(http.MethodGet, "/api/v1/course/not-a-uuid", nil), "not-a-uuid")
		rec := httptest.NewRecorder()

		GetCourse(svc, testLogger())(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		if code := decodeErrorCode(t, rec.Body); code != string(pkgerrors.CodeNotFound) {
			t.Fatalf("expected not found code, got %s", code)
		}
	})

	t.Run("missing course maps to 404", func(t *testing.T) {
		svc := &fakeCourseService{err: pkgerrors.New(pkgerrors.CodeNotFound, "course not found")}
		courseID := uuid.New()
		req := requestWithCourseParam(httptest.NewRequest(http.MethodGet, "/api/v1/course/"+courseID.String(), nil), courseID.String())
		rec := httptest.NewRecorder()

		GetCourse(svc, testLogger())(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}

func TestCreateCourseHandler(t *testing.T) {
	t.Run("accepts multipart form", func(t *testing.T) {
		svc := &fakeCourseService{course: coursesvc.CourseDTO{Title: "Intro to Go"}}
		body, contentType := multipartCourseBody(t, map[string]string{
			"title":       "Intro to Go",
			"description": "Build services from scratch",
			"price_cents": "4999",
		}, "cover.png", []byte{0x89, 'P', 'N', 'G'})

		req := requestWithUser(httptest.NewRequest(http.MethodPost, "/api/v1/course", body), uuid.New())
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()

		CreateCourse(svc, testMediaConfig(), testLogger())(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d body %s", rec.Code, rec.Body.String())
		}
		if svc.createInput == nil {
			t.Fatal("service was not called")
		}
		if svc.createInput.PriceCents != 4999 {
			t.Fatalf("expected price passthrough, got %d", svc.createInput.PriceCents)
		}
		if svc.createInput.Image.Filename != "cover.png" {
			t.Fatalf("expected image filename, got %s", svc.createInput.Image.Filename)
		}
	})

	t.Run("rejects missing user context", func(t *testing.T) {
		svc := &fakeCourseService{}
		body, contentType := multipartCourseBody(t, map[string]string{"title": "x"}, "", nil)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/course", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()

		CreateCourse(svc, testMediaConfig(), testLogger())(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("rejects missing image", func(t *testing.T) {
		svc := &fakeCourseService{}
		body, contentType := multipartCourseBody(t, map[string]string{
			"title":       "Intro to Go",
			"description": "desc",
			"price_cents": "100",
		}, "", nil)
		req := requestWithUser(httptest.NewRequest(http.MethodPost, "/api/v1/course", body), uuid.New())
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()

		CreateCourse(svc, testMediaConfig(), testLogger())(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		if code := decodeErrorCode(t, rec.Body); code != string(pkgerrors.CodeUpload) {
			t.Fatalf("expected upload code, got %s", code)
		}
	})

	t.Run("rejects non-positive prices", func(t *testing.T) {
		for _, price := range []string{"-5", "0"} {
			svc := &fakeCourseService{}
			body, contentType := multipartCourseBody(t, map[string]string{
				"title":       "Intro to Go",
				"description": "desc",
				"price_cents": price,
			}, "cover.png", []byte{0x89, 'P', 'N', 'G'})
			req := requestWithUser(httptest.NewRequest(http.MethodPost, "/api/v1/course", body), uuid.New())
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()

			CreateCourse(svc, testMediaConfig(), testLogger())(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("price %s: expected 400, got %d", price, rec.Code)
			}
			if svc.createInput != nil {
				t.Fatalf("price %s: service must not be called", price)
			}
		}
	})
}

func TestUpdateCourseHandler(t *testing.T) {
	t.Run("json partial update responds 201", func(t *testing.T) {
		svc := &fakeCourseService{course: coursesvc.CourseDTO{Title: "Advanced Go"}}
		courseID := uuid.New()
		payload := strings.NewReader(`{"title":"Advanced Go"}`)
		req := requestWithCourseParam(
			requestWithUser(httptest.NewRequest(http.MethodPut, "/api/v1/course/"+courseID.String(), payload), uuid.New()),
			courseID.String(),
		)
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()

		UpdateCourse(svc, testMediaConfig(), testLogger())(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d body %s", rec.Code, rec.Body.String())
		}
		if svc.updateInput == nil || svc.updateInput.Title == nil || *svc.updateInput.Title != "Advanced Go" {
			t.Fatalf("expected title in input, got %+v", svc.updateInput)
		}
		if svc.updateInput.Description != nil {
			t.Fatal("absent fields must stay nil")
		}
	})

	t.Run("multipart update forwards new image", func(t *testing.T) {
		svc := &fakeCourseService{course: coursesvc.CourseDTO{}}
		courseID := uuid.New()
		body, contentType := multipartCourseBody(t, map[string]string{"price_cents": "2500"}, "new.jpg", []byte{0xFF, 0xD8, 0xFF})
		req := requestWithCourseParam(
			requestWithUser(httptest.NewRequest(http.MethodPut, "/api/v1/course/"+courseID.String(), body), uuid.New()),
			courseID.String(),
		)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()

		UpdateCourse(svc, testMediaConfig(), testLogger())(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d", rec.Code)
		}
		if svc.updateInput == nil || svc.updateInput.Image == nil {
			t.Fatalf("expected image in input, got %+v", svc.updateInput)
		}
		if svc.updateInput.PriceCents == nil || *svc.updateInput.PriceCents != 2500 {
			t.Fatalf("expected price in input, got %+v", svc.updateInput.PriceCents)
		}
	})

	t.Run("unknown json field is rejected", func(t *testing.T) {
		svc := &fakeCourseService{}
		courseID := uuid.New()
		payload := strings.NewReader(`{"creator_id":"` + uuid.NewString() + `"}`)
		req := requestWithCourseParam(
			requestWithUser(httptest.NewRequest(http.MethodPut, "/api/v1/course/"+courseID.String(), payload), uuid.New()),
			courseID.String(),
		)
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()

		UpdateCourse(svc, testMediaConfig(), testLogger())(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("ownership failure presents as 404", func(t *testing.T) {
		svc := &fakeCourseService{err: pkgerrors.New(pkgerrors.CodeNotCourseOwner, "course not found or you are not authorized")}
		courseID := uuid.New()
		payload := strings.NewReader(`{"title":"hijack"}`)
		req := requestWithCourseParam(
			requestWithUser(httptest.NewRequest(http.MethodPut, "/api/v1/course/"+courseID.String(), payload), uuid.New()),
			courseID.String(),
		)
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()

		UpdateCourse(svc, testMediaConfig(), testLogger())(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		if code := decodeErrorCode(t, rec.Body); code != string(pkgerrors.CodeNotCourseOwner) {
			t.Fatalf("expected owner code, got %s", code)
		}
	})
}

func TestDeleteCourseHandler(t *testing.T) {
	t.Run("responds 200 with status payload", func(t *testing.T) {
		svc := &fakeCourseService{}
		courseID := uuid.New()
		req := requestWithCourseParam(
			requestWithUser(httptest.NewRequest(http.MethodDelete, "/api/v1/course/"+courseID.String(), nil), uuid.New()),
			courseID.String(),
		)
		rec := httptest.NewRecorder()

		DeleteCourse(svc, testLogger())(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if svc.deletedID != courseID {
			t.Fatalf("expected delete of %s, got %s", courseID, svc.deletedID)
		}
		var envelope struct {
			Data struct {
				Message string `json:"message"`
			} `json:"data"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if envelope.Data.Message != "course deleted successfully" {
			t.Fatalf("unexpected payload: %+v", envelope.Data)
		}
	})

	t.Run("missing user context is unauthorized", func(t *testing.T) {
		svc := &fakeCourseService{}
		courseID := uuid.New()
		req := requestWithCourseParam(httptest.NewRequest(http.MethodDelete, "/api/v1/course/"+courseID.String(), nil), courseID.String())
		rec := httptest.NewRecorder()

		DeleteCourse(svc, testLogger())(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})
}
