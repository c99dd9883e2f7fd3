package courses

import (
	"testing"

	pkgerrors "github.com/coursehive/coursehive-backend/pkg/errors"
)

func pngBytes() []byte {
	return []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 13, 'I', 'H', 'D', 'R'}
}

func jpegBytes() []byte {
	return []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}
}

func TestSniffImageMimeType(t *testing.T) {
	t.Run("png allowed", func(t *testing.T) {
		detected, err := sniffImageMimeType(pngBytes())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if detected != "image/png" {
			t.Fatalf("expected image/png, got %s", detected)
		}
	})

	t.Run("jpeg allowed", func(t *testing.T) {
		detected, err := sniffImageMimeType(jpegBytes())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if detected != "image/jpeg" {
			t.Fatalf("expected image/jpeg, got %s", detected)
		}
	})

	t.Run("gif rejected", func(t *testing.T) {
		_, err := sniffImageMimeType([]byte("GIF89a\x01\x00\x01\x00"))
		if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUpload {
			t.Fatalf("expected upload error, got %v", err)
		}
	})

	t.Run("empty rejected", func(t *testing.T) {
		_, err := sniffImageMimeType(nil)
		if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUpload {
			t.Fatalf("expected upload error, got %v", err)
		}
	})

	t.Run("declared type is ignored", func(t *testing.T) {
		// bytes matter, not the filename or content-type header
		_, err := sniffImageMimeType([]byte("<html><body>not an image</body></html>"))
		if err == nil {
			t.Fatal("expected rejection of non-image bytes")
		}
	})
}
