// Package storage persists uploaded images and reports the URL they are
// served from.
package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"
)

// ImageTypes maps every accepted image MIME type to the file extension it is
// stored under.
var ImageTypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ImageStore saves an uploaded image under name and returns its public URL.
type ImageStore interface {
	Save(ctx context.Context, name, contentType string, body io.Reader) (string, error)
}

// Extension returns the stored extension for contentType and whether the
// type is accepted at all. Parameters such as charset are ignored.
func Extension(contentType string) (string, bool) {
	mediaType := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	ext, ok := ImageTypes[mediaType]
	return ext, ok
}

// ObjectName builds the image-<unix millis><ext> name uploads are stored as.
func ObjectName(now time.Time, ext string) string {
	return fmt.Sprintf("image-%d%s", now.UnixMilli(), ext)
}

// AllowedTypes lists the accepted MIME types in a stable order for messages.
func AllowedTypes() []string {
	return []string{"image/png", "image/jpeg", "image/gif", "image/webp"}
}
