package controllers

import (
	"context"
	"net/http"

	"wardrobeapi/config"
	"wardrobeapi/models"
	"wardrobeapi/services"
	"wardrobeapi/storage"
	"wardrobeapi/tasks"

	"github.com/go-playground/validator"
	echojwt "github.com/labstack/echo-jwt"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func NewValidator() *CustomValidator {
	v := validator.New()
	v.RegisterValidation("category", models.ValidateCategory)
	v.RegisterValidation("occasion", models.ValidateOccasion)
	v.RegisterValidation("season", models.ValidateSeason)
	v.RegisterValidation("language", models.ValidateLanguage)
	return &CustomValidator{validator: v}
}

func SetupServer(
	cfg *config.Config,
	store storage.ItemStore,
	awsService services.AWSServiceProvider,
	urlCache services.URLCacheServiceProvider,
	recommender services.RecommendationProvider,
	enqueuer tasks.Enqueuer,
	logger *zap.Logger,
) *echo.Echo {
	if err := awsService.InitPresignClient(context.Background()); err != nil {
		logger.Fatal("Failed to initialize AWS provider: S3", zap.Error(err))
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = NewValidator()
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("6M"))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, "Accept-Language"},
	}))
	e.Use(LanguageMiddleware(models.Language(cfg.App.Language)))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	images := &ImageURLResolver{
		URLCache:   urlCache,
		AWSService: awsService,
		BucketName: cfg.R2.BucketName,
		Logger:     logger,
	}

	authMiddleware := echojwt.JWT([]byte(cfg.Auth.JWTSecret))

	wardrobeController := ClothesController{
		Store:      store,
		AWSService: awsService,
		Images:     images,
		Enqueuer:   enqueuer,
		BucketName: cfg.R2.BucketName,
		Logger:     logger,
	}
	wardrobeGroup := e.Group("/wardrobe", authMiddleware, UserMiddleware)
	wardrobeController.ClothingRoutes(wardrobeGroup)

	coordinationController := CoordinationController{
		Store:       store,
		Recommender: recommender,
		Images:      images,
		Logger:      logger,
	}
	coordinationGroup := e.Group("/coordination", authMiddleware, UserMiddleware)
	coordinationController.CoordinationRoutes(coordinationGroup)

	return e
}
