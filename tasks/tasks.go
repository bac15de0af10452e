package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"wardrobeapi/services"

	"github.com/getsentry/sentry-go"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const (
	TypeDeleteImage  = "wardrobe:delete_image"
	QueueStorage     = "storage"
	deleteMaxRetries = 5
)

// Enqueuer is the part of *asynq.Client the API needs.
type Enqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type DeleteImagePayload struct {
	UserID   string `json:"user_id"`
	ItemID   string `json:"item_id"`
	ImageKey string `json:"image_key"`
}

func NewClient(brokerAddress string) *asynq.Client {
	return asynq.NewClient(asynq.RedisClientOpt{Addr: brokerAddress})
}

func NewDeleteImageTask(userID, itemID, imageKey string) (*asynq.Task, error) {
	payload, err := json.Marshal(DeleteImagePayload{UserID: userID, ItemID: itemID, ImageKey: imageKey})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeDeleteImage, payload), nil
}

// EnqueueDeleteImage schedules removal of an item's image object.
func EnqueueDeleteImage(client Enqueuer, userID, itemID, imageKey string) (*asynq.TaskInfo, error) {
	task, err := NewDeleteImageTask(userID, itemID, imageKey)
	if err != nil {
		return nil, fmt.Errorf("build delete image task: %w", err)
	}
	info, err := client.Enqueue(task, asynq.MaxRetry(deleteMaxRetries), asynq.Queue(QueueStorage))
	if err != nil {
		return nil, fmt.Errorf("enqueue delete image task: %w", err)
	}
	return info, nil
}

func HandleDeleteImageTask(ctx context.Context, t *asynq.Task, awsService services.AWSServiceProvider, bucketName string, logger *zap.Logger) error {
	var payload DeleteImagePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("decode delete image payload: %v: %w", err, asynq.SkipRetry)
	}
	fields := []zap.Field{zap.String("user_id", payload.UserID), zap.String("item_id", payload.ItemID), zap.String("key", payload.ImageKey)}

	if strings.TrimSpace(payload.ImageKey) == "" {
		logger.Warn("delete image task without key", fields...)
		return nil
	}
	// only keys under the owner's prefix are ever deleted
	if !services.OwnsImageKey(payload.UserID, payload.ImageKey) {
		logger.Error("refusing to delete foreign image key", fields...)
		sentry.CaptureException(fmt.Errorf("delete image task for foreign key %s, user %s", payload.ImageKey, payload.UserID))
		return fmt.Errorf("image key %s not owned by %s: %w", payload.ImageKey, payload.UserID, asynq.SkipRetry)
	}

	if err := awsService.DeleteObject(ctx, bucketName, payload.ImageKey); err != nil {
		logger.Error("failed to delete image object", append(fields, zap.Error(err))...)
		sentry.CaptureException(err)
		return err
	}
	logger.Info("deleted image object", fields...)
	return nil
}
