package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

// 发布结果通过 Redis Pub/Sub 推送给编辑器，字段名与前端解析保持一致。
type ThemeNotifyMessage struct {
	Status          string   `json:"status"`
	ThemeID         uint     `json:"theme_id"`
	CorrelationID   string   `json:"correlation_id"`
	URL             string   `json:"url,omitempty"`
	ErrorCode       int      `json:"error_code"`
	ErrorMessage    string   `json:"error_message"`
	MissingSections []string `json:"missing_sections,omitempty"`
}

const (
	statusCompleted = "completed"
	statusError     = "error"
)

// Notifier 是 redis.Client 的发布子集。
type Notifier interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// NotifyChannel 返回主题通知频道名。
func NotifyChannel(themeID uint) string {
	return fmt.Sprintf("theme_notify:%d", themeID)
}

func publishThemeNotify(ctx context.Context, n Notifier, msg ThemeNotifyMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal notification payload: %w", err)
	}
	channel := NotifyChannel(msg.ThemeID)
	if err := n.Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("publish redis notification to %q: %w", channel, err)
	}
	return nil
}

func isFinalAsynqAttempt(ctx context.Context) bool {
	retryCount, ok1 := asynq.GetRetryCount(ctx)
	maxRetry, ok2 := asynq.GetMaxRetry(ctx)
	if !ok1 || !ok2 {
		return false
	}
	return retryCount >= maxRetry
}
