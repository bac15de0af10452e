package controllers

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"wardrobeapi/languageutil"
	"wardrobeapi/models"
	"wardrobeapi/services"
	"wardrobeapi/storage"
	"wardrobeapi/tasks"

	"github.com/getsentry/sentry-go"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const storeTimeout = 10 * time.Second

type CreateClothingIn struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Category    string  `json:"category" validate:"required,category"`
	Color       string  `json:"color" validate:"required,max=30"`
	ImageKey    string  `json:"image_key" validate:"required,max=300"`
	Description *string `json:"description" validate:"omitempty,max=500"`
}

type ImageUploadedResponse struct {
	ImageKey string `json:"image_key"`
	ImageURL string `json:"image_url"`
}

type ClothesListResponse struct {
	Items []ClothingItemResponse `json:"items"`
}

type ClothesController struct {
	Store      storage.ItemStore
	AWSService services.AWSServiceProvider
	Images     *ImageURLResolver
	Enqueuer   tasks.Enqueuer
	BucketName string
	Logger     *zap.Logger
}

func (controller *ClothesController) ClothingRoutes(g *echo.Group) {
	g.GET("/options", controller.Options)
	g.POST("/images", controller.UploadImage)
	g.POST("/items", controller.CreateClothing)
	g.GET("/items", controller.ListClothes)
	g.DELETE("/items/:id", controller.DeleteClothing)
}

func (controller *ClothesController) Options(c echo.Context) error {
	lang := currentLanguage(c)
	return c.JSON(http.StatusOK, models.WardrobeOptionsOut{
		Categories:      models.CategoryOptions(lang),
		SuggestedColors: models.SuggestedColors(lang),
	})
}

func (controller *ClothesController) UploadImage(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return errorJSON(c, http.StatusUnauthorized, languageutil.MsgUnauthorized)
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, languageutil.MsgFileRequired)
	}
	if fileHeader.Size > services.MaxImageSize {
		return errorJSON(c, http.StatusRequestEntityTooLarge, languageutil.MsgFileTooLarge)
	}
	file, err := fileHeader.Open()
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, languageutil.MsgFileRequired)
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, services.MaxImageSize+1))
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, languageutil.MsgFileRequired)
	}
	contentType, ext, err := services.DetectImageType(content)
	switch {
	case errors.Is(err, services.ErrImageTooLarge):
		return errorJSON(c, http.StatusRequestEntityTooLarge, languageutil.MsgFileTooLarge)
	case err != nil:
		return errorJSON(c, http.StatusBadRequest, languageutil.MsgUnsupportedImage)
	}

	key := services.NewImageKey(userID, time.Now(), ext)
	ctx, cancel := requestContext(c, storeTimeout)
	defer cancel()
	if err := controller.AWSService.PutObject(ctx, controller.BucketName, key, contentType, content); err != nil {
		controller.Logger.Error("image upload failed", zap.String("user_id", userID), zap.String("key", key), zap.Error(err))
		sentry.CaptureException(err)
		return errorJSON(c, http.StatusBadGateway, languageutil.MsgUploadFailed)
	}

	return c.JSON(http.StatusCreated, ImageUploadedResponse{
		ImageKey: key,
		ImageURL: controller.Images.ReadURL(ctx, key),
	})
}

func (controller *ClothesController) CreateClothing(c echo.Context) error {
	var req CreateClothingIn
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, languageutil.MsgInvalidBody)
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Color = strings.TrimSpace(req.Color)
	req.ImageKey = strings.TrimSpace(req.ImageKey)
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	userID, ok := currentUserID(c)
	if !ok {
		return errorJSON(c, http.StatusUnauthorized, languageutil.MsgUnauthorized)
	}
	if !services.OwnsImageKey(userID, req.ImageKey) {
		return errorJSON(c, http.StatusForbidden, languageutil.MsgImageForbidden)
	}

	ctx, cancel := requestContext(c, storeTimeout)
	defer cancel()
	exists, err := controller.AWSService.ObjectExists(ctx, controller.BucketName, req.ImageKey)
	if err != nil {
		controller.Logger.Error("image lookup failed", zap.String("key", req.ImageKey), zap.Error(err))
		sentry.CaptureException(err)
		return errorJSON(c, http.StatusBadGateway, languageutil.MsgServiceUnavailable)
	}
	if !exists {
		return errorJSON(c, http.StatusBadRequest, languageutil.MsgImageNotFound)
	}
	// each object backs one item, deleting an item removes its object
	owned, err := controller.Store.ListByOwner(ctx, userID)
	if err != nil {
		controller.Logger.Error("list clothing items before create failed", zap.String("user_id", userID), zap.Error(err))
		sentry.CaptureException(err)
		return errorJSON(c, http.StatusInternalServerError, languageutil.MsgCreateFailed)
	}
	for _, existing := range owned {
		if existing.ImageURL == req.ImageKey {
			return errorJSON(c, http.StatusConflict, languageutil.MsgImageInUse)
		}
	}

	item := models.ClothingItem{
		UserID:      userID,
		Name:        req.Name,
		Category:    models.Category(req.Category),
		Color:       req.Color,
		ImageURL:    req.ImageKey,
		Description: req.Description,
	}
	if err := controller.Store.Create(ctx, &item); err != nil {
		controller.Logger.Error("create clothing item failed", zap.String("user_id", userID), zap.Error(err))
		sentry.CaptureException(err)
		return errorJSON(c, http.StatusInternalServerError, languageutil.MsgCreateFailed)
	}

	lang := currentLanguage(c)
	return c.JSON(http.StatusCreated, newClothingItemResponse(item, controller.Images.ReadURL(ctx, item.ImageURL), lang))
}

func (controller *ClothesController) ListClothes(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return errorJSON(c, http.StatusUnauthorized, languageutil.MsgUnauthorized)
	}
	category := models.Category(c.QueryParam("category"))
	if category != "" && !category.IsValid() {
		return errorJSON(c, http.StatusBadRequest, languageutil.MsgInvalidCategory)
	}

	ctx, cancel := requestContext(c, storeTimeout)
	defer cancel()
	items, err := controller.Store.ListByOwner(ctx, userID)
	if err != nil {
		// reads degrade to an empty wardrobe
		controller.Logger.Error("list clothing items failed", zap.String("user_id", userID), zap.Error(err))
		sentry.CaptureException(err)
		items = nil
	}
	if category != "" {
		filtered := items[:0:0]
		for _, item := range items {
			if item.Category == category {
				filtered = append(filtered, item)
			}
		}
		items = filtered
	}

	return c.JSON(http.StatusOK, ClothesListResponse{Items: controller.Images.Responses(ctx, items, currentLanguage(c))})
}

func (controller *ClothesController) DeleteClothing(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return errorJSON(c, http.StatusUnauthorized, languageutil.MsgUnauthorized)
	}
	itemID := c.Param("id")

	ctx, cancel := requestContext(c, storeTimeout)
	defer cancel()
	item, err := controller.Store.Delete(ctx, userID, itemID)
	if storage.IsNotFound(err) {
		return errorJSON(c, http.StatusNotFound, languageutil.MsgItemNotFound)
	}
	if err != nil {
		controller.Logger.Error("delete clothing item failed", zap.String("user_id", userID), zap.String("item_id", itemID), zap.Error(err))
		sentry.CaptureException(err)
		return errorJSON(c, http.StatusInternalServerError, languageutil.MsgDeleteFailed)
	}

	if controller.Enqueuer != nil && item.ImageURL != "" {
		info, err := tasks.EnqueueDeleteImage(controller.Enqueuer, userID, item.ID, item.ImageURL)
		if err != nil {
			// the row is gone, a leftover object is tolerable
			controller.Logger.Warn("could not schedule image deletion", zap.String("item_id", item.ID), zap.Error(err))
			sentry.CaptureException(err)
		} else {
			controller.Logger.Info("[Queue] delete image task submitted", zap.String("item_id", item.ID), zap.String("task_id", info.ID))
		}
	}

	return c.JSON(http.StatusOK, map[string]string{"message": languageutil.Text(string(currentLanguage(c)), languageutil.MsgItemDeleted)})
}
