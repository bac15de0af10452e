package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"wardrobeapi/config"
	"wardrobeapi/models"
	"wardrobeapi/services"
	"wardrobeapi/storage"
	"wardrobeapi/tasks"
	"wardrobeapi/test"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type testEnv struct {
	e        *echo.Echo
	store    storage.ItemStore
	aws      *test.AWSProviderMock
	urlCache *test.URLCacheMock
	enqueuer *test.EnqueuerMock
}

type failingStore struct{}

func (failingStore) ListByOwner(ctx context.Context, ownerID string) ([]models.ClothingItem, error) {
	return nil, errors.New("database is down")
}

func (failingStore) Create(ctx context.Context, item *models.ClothingItem) error {
	return errors.New("database is down")
}

func (failingStore) Delete(ctx context.Context, ownerID, itemID string) (*models.ClothingItem, error) {
	return nil, errors.New("database is down")
}

func testConfig() *config.Config {
	return &config.Config{
		App:  config.AppConfig{Env: "test", Language: "ja"},
		Auth: config.AuthConfig{JWTSecret: test.JWTSecret},
		R2:   config.R2Config{BucketName: "closet"},
		LLM:  config.LLMConfig{Timeout: time.Second},
	}
}

func setupTestEnv(t *testing.T, store storage.ItemStore, recommender services.RecommendationProvider) *testEnv {
	logger := zaptest.NewLogger(t)
	if store == nil {
		store = storage.NewMemoryItemStore()
	}
	if recommender == nil {
		recommender = services.NewRecommender(nil, rand.New(rand.NewSource(1)), time.Second, logger)
	}
	env := &testEnv{
		store:    store,
		aws:      test.NewAWSProviderMock(),
		urlCache: &test.URLCacheMock{},
		enqueuer: &test.EnqueuerMock{},
	}
	env.e = SetupServer(testConfig(), env.store, env.aws, env.urlCache, recommender, env.enqueuer, logger)
	return env
}

func (env *testEnv) serve(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) addItem(t *testing.T, userID, name string, category models.Category) models.ClothingItem {
	key := services.ImageKeyPrefix(userID) + name + ".png"
	env.aws.Objects[key] = test.PNGBytes()
	item := models.ClothingItem{UserID: userID, Name: name, Category: category, Color: "白", ImageURL: key}
	require.NoError(t, env.store.Create(context.Background(), &item))
	return item
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	var response map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	return response["error"]
}

func TestHealth(t *testing.T) {
	env := setupTestEnv(t, nil, nil)
	rec := env.serve(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestWardrobeRequiresToken(t *testing.T) {
	env := setupTestEnv(t, nil, nil)

	rec := env.serve(test.NewJSONRequest(http.MethodGet, "/wardrobe/items", nil))
	assert.Contains(t, []int{http.StatusBadRequest, http.StatusUnauthorized}, rec.Code)

	req := test.NewJSONRequest(http.MethodGet, "/wardrobe/items", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec = env.serve(req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestWardrobeOptions(t *testing.T) {
	env := setupTestEnv(t, nil, nil)

	req := test.NewJSONAuthRequest(http.MethodGet, "/wardrobe/options", "u1", nil)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	rec := env.serve(req)

	require.Equal(t, http.StatusOK, rec.Code)
	var response models.WardrobeOptionsOut
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	require.Len(t, response.Categories, 5)
	assert.Equal(t, models.Option{Value: "tops", Label: "Tops"}, response.Categories[0])
	assert.Contains(t, response.SuggestedColors, "navy")
}

func TestUploadImageOk(t *testing.T) {
	env := setupTestEnv(t, nil, nil)

	rec := env.serve(test.NewMultipartAuthRequest("/wardrobe/images", "u1", "file", "shirt.png", test.PNGBytes()))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var response ImageUploadedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.True(t, strings.HasPrefix(response.ImageKey, "clothes/u1/"))
	assert.True(t, strings.HasSuffix(response.ImageKey, ".png"))
	assert.Equal(t, "https://cache.example.com/"+response.ImageKey, response.ImageURL)
	assert.Contains(t, env.aws.Objects, response.ImageKey)
}

func TestUploadImageRejectsNonImage(t *testing.T) {
	env := setupTestEnv(t, nil, nil)

	rec := env.serve(test.NewMultipartAuthRequest("/wardrobe/images", "u1", "file", "notes.txt", []byte("hello, this is not an image")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "画像ファイル（JPEG、PNG、WebP、GIF）を選択してください", decodeError(t, rec))
	assert.Empty(t, env.aws.Objects)
}

func TestUploadImageTooLarge(t *testing.T) {
	env := setupTestEnv(t, nil, nil)
	content := append(test.PNGBytes(), make([]byte, services.MaxImageSize)...)

	rec := env.serve(test.NewMultipartAuthRequest("/wardrobe/images", "u1", "file", "huge.png", content))

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Empty(t, env.aws.Objects)
}

func TestUploadImageMissingFile(t *testing.T) {
	env := setupTestEnv(t, nil, nil)

	rec := env.serve(test.NewMultipartAuthRequest("/wardrobe/images", "u1", "photo", "shirt.png", test.PNGBytes()))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadImageStorageFailure(t *testing.T) {
	env := setupTestEnv(t, nil, nil)
	env.aws.PutErr = errors.New("r2 down")

	rec := env.serve(test.NewMultipartAuthRequest("/wardrobe/images", "u1", "file", "shirt.png", test.PNGBytes()))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestCreateClothingOk(t *testing.T) {
	env := setupTestEnv(t, nil, nil)
	key := "clothes/u1/1715410256322.png"
	env.aws.Objects[key] = test.PNGBytes()
	description := "コットン"

	reqBody := CreateClothingIn{Name: " White Tee ", Category: "tops", Color: "白", ImageKey: key, Description: &description}
	rec := env.serve(test.NewJSONAuthRequest(http.MethodPost, "/wardrobe/items", "u1", reqBody))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var response ClothingItemResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.NotEmpty(t, response.ID)
	assert.Equal(t, "White Tee", response.Name)
	assert.Equal(t, "tops", response.Category)
	assert.Equal(t, "トップス", response.CategoryLabel)
	assert.Equal(t, key, response.ImageKey)
	assert.Equal(t, "https://cache.example.com/"+key, response.ImageURL)
	require.NotNil(t, response.Description)
	assert.Equal(t, description, *response.Description)

	items, err := env.store.ListByOwner(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, response.ID, items[0].ID)
}

func TestCreateClothingInvalidInput(t *testing.T) {
	env := setupTestEnv(t, nil, nil)

	reqBody := CreateClothingIn{Name: "Hat", Category: "hats", Color: "黒", ImageKey: "clothes/u1/1.png"}
	rec := env.serve(test.NewJSONAuthRequest(http.MethodPost, "/wardrobe/items", "u1", reqBody))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeError(t, rec), "Category")
}

func TestCreateClothingMissingName(t *testing.T) {
	env := setupTestEnv(t, nil, nil)

	reqBody := CreateClothingIn{Name: "   ", Category: "tops", Color: "黒", ImageKey: "clothes/u1/1.png"}
	rec := env.serve(test.NewJSONAuthRequest(http.MethodPost, "/wardrobe/items", "u1", reqBody))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeError(t, rec), "Name")
}

func TestCreateClothingForeignImage(t *testing.T) {
	env := setupTestEnv(t, nil, nil)
	env.aws.Objects["clothes/u2/1.png"] = test.PNGBytes()

	reqBody := CreateClothingIn{Name: "Tee", Category: "tops", Color: "黒", ImageKey: "clothes/u2/1.png"}
	rec := env.serve(test.NewJSONAuthRequest(http.MethodPost, "/wardrobe/items", "u1", reqBody))

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCreateClothingImageNotUploaded(t *testing.T) {
	env := setupTestEnv(t, nil, nil)

	reqBody := CreateClothingIn{Name: "Tee", Category: "tops", Color: "黒", ImageKey: "clothes/u1/1.png"}
	req := test.NewJSONAuthRequest(http.MethodPost, "/wardrobe/items", "u1", reqBody)
	req.Header.Set("Accept-Language", "en")
	rec := env.serve(req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "The image has not been uploaded", decodeError(t, rec))
}

func TestCreateClothingStoreFailure(t *testing.T) {
	env := setupTestEnv(t, failingStore{}, nil)
	env.aws.Objects["clothes/u1/1.png"] = test.PNGBytes()

	reqBody := CreateClothingIn{Name: "Tee", Category: "tops", Color: "黒", ImageKey: "clothes/u1/1.png"}
	rec := env.serve(test.NewJSONAuthRequest(http.MethodPost, "/wardrobe/items", "u1", reqBody))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestListClothesNewestFirst(t *testing.T) {
	env := setupTestEnv(t, nil, nil)
	env.addItem(t, "u1", "White Tee", models.CategoryTops)
	env.addItem(t, "u1", "Blue Jeans", models.CategoryBottoms)
	env.addItem(t, "u2", "Foreign Coat", models.CategoryOuterwear)
	env.addItem(t, "u1", "Sneakers", models.CategoryShoes)

	rec := env.serve(test.NewJSONAuthRequest(http.MethodGet, "/wardrobe/items", "u1", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var response ClothesListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	require.Len(t, response.Items, 3)
	assert.Equal(t, "Sneakers", response.Items[0].Name)
	assert.Equal(t, "Blue Jeans", response.Items[1].Name)
	assert.Equal(t, "White Tee", response.Items[2].Name)
	for _, item := range response.Items {
		assert.Equal(t, "https://cache.example.com/"+item.ImageKey, item.ImageURL)
	}
}

func TestListClothesCategoryFilter(t *testing.T) {
	env := setupTestEnv(t, nil, nil)
	env.addItem(t, "u1", "White Tee", models.CategoryTops)
	env.addItem(t, "u1", "Blue Jeans", models.CategoryBottoms)

	rec := env.serve(test.NewJSONAuthRequest(http.MethodGet, "/wardrobe/items?category=bottoms", "u1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var response ClothesListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	require.Len(t, response.Items, 1)
	assert.Equal(t, "Blue Jeans", response.Items[0].Name)

	rec = env.serve(test.NewJSONAuthRequest(http.MethodGet, "/wardrobe/items?category=hats", "u1", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListClothesDegradesOnStoreFailure(t *testing.T) {
	env := setupTestEnv(t, failingStore{}, nil)

	rec := env.serve(test.NewJSONAuthRequest(http.MethodGet, "/wardrobe/items", "u1", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"items":[]}`, rec.Body.String())
}

func TestListClothesCacheFailureFallsBackToPresign(t *testing.T) {
	env := setupTestEnv(t, nil, nil)
	item := env.addItem(t, "u1", "White Tee", models.CategoryTops)
	env.urlCache.Err = errors.New("cache broken")

	rec := env.serve(test.NewJSONAuthRequest(http.MethodGet, "/wardrobe/items", "u1", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var response ClothesListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	require.Len(t, response.Items, 1)
	assert.Equal(t, "https://fakebucketurl.com/"+item.ImageURL+"?signed=1", response.Items[0].ImageURL)
}

func TestDeleteClothing(t *testing.T) {
	env := setupTestEnv(t, nil, nil)
	item := env.addItem(t, "u1", "White Tee", models.CategoryTops)

	rec := env.serve(test.NewJSONAuthRequest(http.MethodDelete, "/wardrobe/items/"+item.ID, "u2", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.serve(test.NewJSONAuthRequest(http.MethodDelete, "/wardrobe/items/"+item.ID, "u1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"アイテムを削除しました"}`, rec.Body.String())

	queued := env.enqueuer.Tasks()
	require.Len(t, queued, 1)
	assert.Equal(t, tasks.TypeDeleteImage, queued[0].Type())
	var payload tasks.DeleteImagePayload
	require.NoError(t, json.Unmarshal(queued[0].Payload(), &payload))
	assert.Equal(t, tasks.DeleteImagePayload{UserID: "u1", ItemID: item.ID, ImageKey: item.ImageURL}, payload)

	rec = env.serve(test.NewJSONAuthRequest(http.MethodDelete, "/wardrobe/items/"+item.ID, "u1", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteClothingQueueFailureStillSucceeds(t *testing.T) {
	env := setupTestEnv(t, nil, nil)
	env.enqueuer.Err = test.ErrQueueUnavailable
	item := env.addItem(t, "u1", "White Tee", models.CategoryTops)

	rec := env.serve(test.NewJSONAuthRequest(http.MethodDelete, "/wardrobe/items/"+item.ID, "u1", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	items, err := env.store.ListByOwner(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestCreateClothingRejectsImageInUse(t *testing.T) {
	env := setupTestEnv(t, nil, nil)
	first := env.addItem(t, "u1", "White Tee", models.CategoryTops)

	reqBody := CreateClothingIn{Name: "Second Tee", Category: "tops", Color: "白", ImageKey: first.ImageURL}
	rec := env.serve(test.NewJSONAuthRequest(http.MethodPost, "/wardrobe/items", "u1", reqBody))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "この画像は別のアイテムで使用されています", decodeError(t, rec))
	items, err := env.store.ListByOwner(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, items, 1)
}
