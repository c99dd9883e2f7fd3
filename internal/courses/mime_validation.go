package courses

import (
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	pkgerrors "github.com/coursehive/coursehive-backend/pkg/errors"
)

var allowedImageMimeTypes = []string{"image/png", "image/jpeg"}

// sniffImageMimeType inspects the file bytes and returns the detected type
// when it is on the allowlist. Declared content types are not trusted.
func sniffImageMimeType(data []byte) (string, error) {
	if len(data) == 0 {
		return "", pkgerrors.New(pkgerrors.CodeUpload, "image file is empty")
	}

	detected := mimetype.Detect(data)
	for _, allowed := range allowedImageMimeTypes {
		if detected.Is(allowed) {
			return allowed, nil
		}
	}

	return "", pkgerrors.New(pkgerrors.CodeUpload, fmt.Sprintf(
		"unsupported image type %s, expected %s",
		detected.String(),
		humanReadableList(allowedImageMimeTypes),
	))
}

func humanReadableList(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return fmt.Sprintf("%s or %s", items[0], items[1])
	default:
		return fmt.Sprintf("%s, or %s", strings.Join(items[:len(items)-1], ", "), items[len(items)-1])
	}
}
