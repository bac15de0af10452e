package test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const JWTSecret = "test-secret"

func JsonString(model interface{}) string {
	bytes, _ := json.Marshal(model)
	return string(bytes)
}

func NewJSONRequest(method string, target string, param interface{}) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(JsonString(param)))
	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("Accept", "application/json")
	return req
}

func GenerateUserToken(userPk string) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userPk,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour * 72)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	})
	t, err := token.SignedString([]byte(JWTSecret))
	if err != nil {
		log.Fatalf("Error when signing user token for %s. Error %s ", userPk, err)
	}
	return t
}

func NewJSONAuthRequest(method string, target string, userPk string, param interface{}) *http.Request {
	req := NewJSONRequest(method, target, param)
	req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", GenerateUserToken(userPk)))
	return req
}

func NewJSONAuthRequestRaw(method string, target string, userPk string, json string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(json))
	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("Accept", "application/json")
	req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", GenerateUserToken(userPk)))
	return req
}

// NewMultipartAuthRequest sends content as the form file named field.
func NewMultipartAuthRequest(target string, userPk string, field string, fileName string, content []byte) *http.Request {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(field, fileName)
	if err != nil {
		log.Fatalf("create form file: %v", err)
	}
	part.Write(content)
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, target, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", GenerateUserToken(userPk)))
	return req
}

// PNGBytes is the smallest content that sniffs as image/png.
func PNGBytes() []byte {
	return []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0x0D, 'I', 'H', 'D', 'R'}
}

// AWSProviderMock keeps objects in memory.
type AWSProviderMock struct {
	MockUrl   string
	PutErr    error
	HeadErr   error
	DeleteErr error

	mu      sync.Mutex
	Objects map[string][]byte
	Deleted []string
}

func NewAWSProviderMock() *AWSProviderMock {
	return &AWSProviderMock{MockUrl: "https://fakebucketurl.com", Objects: map[string][]byte{}}
}

func (awsService *AWSProviderMock) InitPresignClient(ctx context.Context) error {
	return nil
}

func (awsService *AWSProviderMock) PutObject(ctx context.Context, bucketName, fileKey, contentType string, content []byte) error {
	if awsService.PutErr != nil {
		return awsService.PutErr
	}
	awsService.mu.Lock()
	defer awsService.mu.Unlock()
	awsService.Objects[fileKey] = content
	return nil
}

func (awsService *AWSProviderMock) ObjectExists(ctx context.Context, bucketName, fileKey string) (bool, error) {
	if awsService.HeadErr != nil {
		return false, awsService.HeadErr
	}
	awsService.mu.Lock()
	defer awsService.mu.Unlock()
	_, ok := awsService.Objects[fileKey]
	return ok, nil
}

func (awsService *AWSProviderMock) DeleteObject(ctx context.Context, bucketName, fileKey string) error {
	if awsService.DeleteErr != nil {
		return awsService.DeleteErr
	}
	awsService.mu.Lock()
	defer awsService.mu.Unlock()
	delete(awsService.Objects, fileKey)
	awsService.Deleted = append(awsService.Deleted, fileKey)
	return nil
}

func (awsService *AWSProviderMock) GetPresignedR2FileReadURL(ctx context.Context, bucketName, fileKey string) (string, error) {
	return fmt.Sprintf("%s/%s?signed=1", awsService.MockUrl, fileKey), nil
}

// URLCacheMock returns deterministic URLs, or Err for every key when set.
type URLCacheMock struct {
	Err error
}

func (m *URLCacheMock) GetReadURL(ctx context.Context, objectKey string) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	if objectKey == "" {
		return "", nil
	}
	return "https://cache.example.com/" + objectKey, nil
}

var ErrQueueUnavailable = errors.New("queue unavailable")

// EnqueuerMock records tasks instead of sending them to redis.
type EnqueuerMock struct {
	Err error

	mu    sync.Mutex
	tasks []*asynq.Task
}

func (m *EnqueuerMock) Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	queue := "default"
	maxRetry := 25
	for _, opt := range opts {
		switch opt.Type() {
		case asynq.QueueOpt:
			queue = opt.Value().(string)
		case asynq.MaxRetryOpt:
			maxRetry = opt.Value().(int)
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks = append(m.tasks, task)
	return &asynq.TaskInfo{
		ID:       uuid.NewString(),
		Queue:    queue,
		Type:     task.Type(),
		Payload:  task.Payload(),
		MaxRetry: maxRetry,
		State:    asynq.TaskStatePending,
	}, nil
}

func (m *EnqueuerMock) Tasks() []*asynq.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*asynq.Task, len(m.tasks))
	copy(out, m.tasks)
	return out
}
