package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestMetadataFor(t *testing.T) {
	t.Run("known codes", func(t *testing.T) {
		cases := map[Code]int{
			CodeValidation:        http.StatusBadRequest,
			CodeNotFound:          http.StatusNotFound,
			CodeNotCourseOwner:    http.StatusNotFound,
			CodeDuplicatePurchase: http.StatusBadRequest,
			CodeUpload:            http.StatusBadRequest,
			CodePayment:           http.StatusBadGateway,
			CodeTimeout:           http.StatusGatewayTimeout,
		}
		for code, want := range cases {
			if got := MetadataFor(code).HTTPStatus; got != want {
				t.Fatalf("code %s: expected status %d, got %d", code, want, got)
			}
		}
	})

	t.Run("unknown code falls back to internal", func(t *testing.T) {
		meta := MetadataFor(Code("NOPE"))
		if meta.HTTPStatus != http.StatusInternalServerError {
			t.Fatalf("expected 500 fallback, got %d", meta.HTTPStatus)
		}
	})
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stdErrors.New("boom")
	err := Wrap(CodeDependency, cause, "db: insert course")

	if !stdErrors.Is(err, cause) {
		t.Fatal("expected wrapped cause to be reachable via errors.Is")
	}
	if typed := As(fmt.Errorf("outer: %w", err)); typed == nil || typed.Code() != CodeDependency {
		t.Fatalf("expected typed error through wrapping, got %v", typed)
	}
}

func TestAsNilAndUntyped(t *testing.T) {
	if As(nil) != nil {
		t.Fatal("expected nil for nil error")
	}
	if As(stdErrors.New("plain")) != nil {
		t.Fatal("expected nil for untyped error")
	}
}

func TestDumpChain(t *testing.T) {
	err := Wrap(CodePayment, stdErrors.New("stripe unavailable"), "create payment intent")
	dump := Dump(err)

	if dump.Code != CodePayment {
		t.Fatalf("expected payment code, got %s", dump.Code)
	}
	if len(dump.Chain) != 2 {
		t.Fatalf("expected 2 chain entries, got %d", len(dump.Chain))
	}
}
