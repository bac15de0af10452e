package controllers

import (
	"context"
	"sync"
	"time"

	"wardrobeapi/languageutil"
	"wardrobeapi/models"
	"wardrobeapi/services"

	"github.com/getsentry/sentry-go"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const timeLayout = "2006-01-02T15:04:05Z"

func currentUserID(c echo.Context) (string, bool) {
	userID, ok := c.Get(currentUserKey).(string)
	return userID, ok && userID != ""
}

func currentLanguage(c echo.Context) models.Language {
	if lang, ok := c.Get(languageKey).(models.Language); ok {
		return lang
	}
	return models.DefaultLanguage
}

func errorJSON(c echo.Context, status int, key string) error {
	return c.JSON(status, map[string]string{"error": languageutil.Text(string(currentLanguage(c)), key)})
}

type ClothingItemResponse struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Category      string  `json:"category"`
	CategoryLabel string  `json:"category_label"`
	Color         string  `json:"color"`
	ImageKey      string  `json:"image_key"`
	ImageURL      string  `json:"image_url"`
	Description   *string `json:"description"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
}

// ImageURLResolver turns stored object keys into readable URLs.
type ImageURLResolver struct {
	URLCache   services.URLCacheServiceProvider
	AWSService services.AWSServiceProvider
	BucketName string
	Logger     *zap.Logger
}

// ReadURL tries the cache first and presigns directly when the cache itself fails.
// An empty string is returned when both fail.
func (r *ImageURLResolver) ReadURL(ctx context.Context, objectKey string) string {
	if objectKey == "" {
		return ""
	}
	url, err := r.URLCache.GetReadURL(ctx, objectKey)
	if err == nil {
		return url
	}
	r.Logger.Warn("url cache failed, presigning directly", zap.String("key", objectKey), zap.Error(err))
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("failure_type", "cache_system")
		scope.SetExtra("objectKey", objectKey)
		sentry.CaptureException(err)
	})

	fallbackUrl, fallbackErr := r.AWSService.GetPresignedR2FileReadURL(ctx, r.BucketName, objectKey)
	if fallbackErr != nil {
		r.Logger.Error("direct presign failed", zap.String("key", objectKey), zap.Error(fallbackErr))
		sentry.CaptureException(fallbackErr)
		return ""
	}
	return fallbackUrl
}

// Responses builds item responses with image URLs resolved concurrently, keeping order.
func (r *ImageURLResolver) Responses(ctx context.Context, items []models.ClothingItem, lang models.Language) []ClothingItemResponse {
	responses := make([]ClothingItemResponse, len(items))
	var wg sync.WaitGroup
	for i, item := range items {
		wg.Add(1)
		go func(index int, item models.ClothingItem) {
			defer wg.Done()
			responses[index] = newClothingItemResponse(item, r.ReadURL(ctx, item.ImageURL), lang)
		}(i, item)
	}
	wg.Wait()
	return responses
}

func newClothingItemResponse(item models.ClothingItem, imageURL string, lang models.Language) ClothingItemResponse {
	return ClothingItemResponse{
		ID:            item.ID,
		Name:          item.Name,
		Category:      string(item.Category),
		CategoryLabel: item.Category.Label(lang),
		Color:         item.Color,
		ImageKey:      item.ImageURL,
		ImageURL:      imageURL,
		Description:   item.Description,
		CreatedAt:     item.CreatedAt.UTC().Format(timeLayout),
		UpdatedAt:     item.UpdatedAt.UTC().Format(timeLayout),
	}
}

func requestContext(c echo.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), timeout)
}
