package responses

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	pkgerrors "github.com/coursehive/coursehive-backend/pkg/errors"
	"github.com/coursehive/coursehive-backend/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{Output: io.Discard})
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) (code, message string) {
	t.Helper()
	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return envelope.Error.Code, envelope.Error.Message
}

func TestWriteSuccess(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteSuccess(rec, map[string]string{"hello": "world"})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected json content type, got %q", ct)
	}
	var envelope struct {
		Data map[string]string `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Data["hello"] != "world" {
		t.Fatalf("unexpected payload: %+v", envelope.Data)
	}
}

func TestWriteError(t *testing.T) {
	t.Run("status follows the error code", func(t *testing.T) {
		cases := []struct {
			code   pkgerrors.Code
			status int
		}{
			{pkgerrors.CodeValidation, http.StatusBadRequest},
			{pkgerrors.CodeUnauthorized, http.StatusUnauthorized},
			{pkgerrors.CodeForbidden, http.StatusForbidden},
			{pkgerrors.CodeNotFound, http.StatusNotFound},
			{pkgerrors.CodeNotCourseOwner, http.StatusNotFound},
			{pkgerrors.CodeDuplicatePurchase, http.StatusBadRequest},
			{pkgerrors.CodePayment, http.StatusBadGateway},
			{pkgerrors.CodeTimeout, http.StatusGatewayTimeout},
			{pkgerrors.CodeIdempotency, http.StatusConflict},
			{pkgerrors.CodeRateLimit, http.StatusTooManyRequests},
			{pkgerrors.CodeDependency, http.StatusServiceUnavailable},
			{pkgerrors.CodeInternal, http.StatusInternalServerError},
		}
		for _, tc := range cases {
			rec := httptest.NewRecorder()
			WriteError(context.Background(), testLogger(), rec, pkgerrors.New(tc.code, "boom"))
			if rec.Code != tc.status {
				t.Fatalf("code %s: expected %d, got %d", tc.code, tc.status, rec.Code)
			}
		}
	})

	t.Run("safe codes pass the message through", func(t *testing.T) {
		rec := httptest.NewRecorder()
		WriteError(context.Background(), testLogger(), rec, pkgerrors.New(pkgerrors.CodeValidation, "title is required"))

		code, message := decodeError(t, rec)
		if code != string(pkgerrors.CodeValidation) {
			t.Fatalf("unexpected code %s", code)
		}
		if message != "title is required" {
			t.Fatalf("expected passthrough message, got %q", message)
		}
	})

	t.Run("internal details are hidden", func(t *testing.T) {
		rec := httptest.NewRecorder()
		WriteError(context.Background(), testLogger(), rec, pkgerrors.New(pkgerrors.CodeInternal, "pg connection refused at 10.0.0.5"))

		_, message := decodeError(t, rec)
		if message != "internal server error" {
			t.Fatalf("internal message must not leak, got %q", message)
		}
	})

	t.Run("payment failures use the public message", func(t *testing.T) {
		rec := httptest.NewRecorder()
		WriteError(context.Background(), testLogger(), rec, pkgerrors.New(pkgerrors.CodePayment, "stripe: card_declined for cus_123"))

		_, message := decodeError(t, rec)
		if message != "payment processing failed" {
			t.Fatalf("payment message must not leak, got %q", message)
		}
	})

	t.Run("untyped errors become internal", func(t *testing.T) {
		rec := httptest.NewRecorder()
		WriteError(context.Background(), testLogger(), rec, errors.New("raw failure"))

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}
		code, _ := decodeError(t, rec)
		if code != string(pkgerrors.CodeInternal) {
			t.Fatalf("expected internal code, got %s", code)
		}
	})
}
