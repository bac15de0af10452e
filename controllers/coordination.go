package controllers

import (
	"errors"
	"net/http"

	"wardrobeapi/languageutil"
	"wardrobeapi/models"
	"wardrobeapi/services"
	"wardrobeapi/storage"

	"github.com/getsentry/sentry-go"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type RecommendIn struct {
	Occasion string `json:"occasion" validate:"required,occasion"`
	Season   string `json:"season" validate:"required,season"`
	// overrides the request language for the suggestion text
	Language string `json:"language" validate:"omitempty,language"`
}

type RecommendationResponse struct {
	Outfit         []string               `json:"outfit"`
	Reason         string                 `json:"reason"`
	Source         string                 `json:"source"`
	Advisory       string                 `json:"advisory,omitempty"`
	FallbackReason string                 `json:"fallback_reason,omitempty"`
	Items          []ClothingItemResponse `json:"items"`
}

type CoordinationController struct {
	Store       storage.ItemStore
	Recommender services.RecommendationProvider
	Images      *ImageURLResolver
	Logger      *zap.Logger
}

func (controller *CoordinationController) CoordinationRoutes(g *echo.Group) {
	g.GET("/options", controller.Options)
	g.POST("/recommend", controller.Recommend)
}

func (controller *CoordinationController) Options(c echo.Context) error {
	lang := currentLanguage(c)
	return c.JSON(http.StatusOK, models.CoordinationOptionsOut{
		Occasions: models.OccasionOptions(lang),
		Seasons:   models.SeasonOptions(lang),
	})
}

func (controller *CoordinationController) Recommend(c echo.Context) error {
	var req RecommendIn
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, languageutil.MsgInvalidBody)
	}
	if req.Occasion == "" || req.Season == "" {
		return errorJSON(c, http.StatusBadRequest, languageutil.MsgSelectionRequired)
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	userID, ok := currentUserID(c)
	if !ok {
		return errorJSON(c, http.StatusUnauthorized, languageutil.MsgUnauthorized)
	}
	lang := currentLanguage(c)
	if req.Language != "" {
		lang = models.Language(req.Language)
	}
	ctx := c.Request().Context()

	storeCtx, cancel := requestContext(c, storeTimeout)
	items, err := controller.Store.ListByOwner(storeCtx, userID)
	cancel()
	if err != nil {
		// treated as an empty wardrobe
		controller.Logger.Error("list clothing items for recommendation failed", zap.String("user_id", userID), zap.Error(err))
		sentry.CaptureException(err)
		items = nil
	}

	rec, err := controller.Recommender.Recommend(ctx, userID, items, models.Occasion(req.Occasion), models.Season(req.Season), lang)
	switch {
	case errors.Is(err, services.ErrNoItems):
		return errorJSON(c, http.StatusUnprocessableEntity, languageutil.MsgNoItems)
	case errors.Is(err, services.ErrRecommendationInFlight):
		return errorJSON(c, http.StatusConflict, languageutil.MsgInFlight)
	case errors.Is(err, services.ErrInvalidSelection):
		return errorJSON(c, http.StatusBadRequest, languageutil.MsgSelectionRequired)
	case err != nil:
		controller.Logger.Error("recommendation failed", zap.String("user_id", userID), zap.Error(err))
		sentry.CaptureException(err)
		return errorJSON(c, http.StatusInternalServerError, languageutil.MsgRecommendFailed)
	}

	controller.Logger.Info("recommendation done",
		zap.String("user_id", userID),
		zap.String("source", string(rec.Source)),
		zap.String("fallback_reason", string(rec.FallbackReason)),
		zap.Int("outfit_size", len(rec.Suggestion.Outfit)),
	)

	outfit := rec.Suggestion.Outfit
	if outfit == nil {
		outfit = []string{}
	}
	resolved := models.ResolveByName(items, outfit)
	return c.JSON(http.StatusOK, RecommendationResponse{
		Outfit:         outfit,
		Reason:         rec.Suggestion.Reason,
		Source:         string(rec.Source),
		Advisory:       rec.Advisory,
		FallbackReason: string(rec.FallbackReason),
		Items:          controller.Images.Responses(ctx, resolved, lang),
	})
}
