package services

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// MaxImageSize is the upload limit for clothing photos (5MB).
const MaxImageSize int64 = 5 * 1024 * 1024

var ErrImageTooLarge = errors.New("image exceeds 5MB limit")
var ErrUnsupportedImageType = errors.New("unsupported image type")

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// DetectImageType sniffs the content and returns its MIME type and file extension.
func DetectImageType(content []byte) (string, string, error) {
	if int64(len(content)) > MaxImageSize {
		return "", "", ErrImageTooLarge
	}
	mimeType := http.DetectContentType(content)
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = mimeType[:i]
	}
	ext, ok := allowedImageTypes[mimeType]
	if !ok {
		return "", "", fmt.Errorf("%w: %s", ErrUnsupportedImageType, mimeType)
	}
	return mimeType, ext, nil
}

func ImageKeyPrefix(userID string) string {
	return fmt.Sprintf("clothes/%s/", userID)
}

func NewImageKey(userID string, at time.Time, ext string) string {
	return fmt.Sprintf("%s%d%s", ImageKeyPrefix(userID), at.UnixMilli(), ext)
}

// OwnsImageKey reports whether key was issued to userID and has no path tricks.
func OwnsImageKey(userID, key string) bool {
	prefix := ImageKeyPrefix(userID)
	if !strings.HasPrefix(key, prefix) {
		return false
	}
	rest := strings.TrimPrefix(key, prefix)
	return rest != "" && !strings.Contains(rest, "/") && !strings.Contains(rest, "..")
}

