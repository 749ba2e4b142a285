package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hibiken/asynq"

	"cmsTheme/internal/database"
	"cmsTheme/internal/errcode"
	"cmsTheme/internal/metrics"
	"cmsTheme/internal/sections"
	"cmsTheme/internal/tasks"
)

// PublishHandler 消费主题发布任务，并把结果推送到 theme_notify:<themeID>。
type PublishHandler struct {
	publisher *sections.Publisher
	repo      *database.Repository
	notifier  Notifier
	logger    *slog.Logger
}

func NewPublishHandler(publisher *sections.Publisher, repo *database.Repository, notifier Notifier, logger *slog.Logger) *PublishHandler {
	return &PublishHandler{publisher: publisher, repo: repo, notifier: notifier, logger: logger}
}

// ProcessTask 实现 asynq.Handler。
// 缺少必需分区时立即通知编辑器并放弃重试；其他错误仅在最后一次重试失败时通知。
func (h *PublishHandler) ProcessTask(ctx context.Context, t *asynq.Task) (retErr error) {
	var payload tasks.ThemePublishPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		h.logger.Error("unmarshal task payload failed", slog.Any("error", err))
		return err
	}
	log := h.logger.With(
		slog.String("correlation_id", payload.CorrelationID),
		slog.Uint64("theme_id", uint64(payload.ThemeID)),
	)

	url, err := h.publisher.PublishTheme(ctx, payload.ThemeID)
	var missingErr *sections.MissingSectionsError
	switch {
	case errors.As(err, &missingErr):
		metrics.ObservePublish(metrics.PublishMissingSections)
		log.Warn("theme is missing required sections", slog.Any("missing_sections", missingErr.Missing))
		notify := ThemeNotifyMessage{
			Status:          statusError,
			ThemeID:         payload.ThemeID,
			CorrelationID:   payload.CorrelationID,
			ErrorCode:       errcode.MissingSections,
			ErrorMessage:    missingErr.Error(),
			MissingSections: missingErr.Missing,
		}
		if err := publishThemeNotify(ctx, h.notifier, notify); err != nil {
			log.Error("publish missing sections notification failed", slog.Any("error", err))
		}
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	case err != nil:
		metrics.ObservePublish(metrics.PublishError)
		log.Error("publish theme failed", slog.Any("error", err))
		code := errcode.SystemError
		if errors.Is(err, sections.ErrSectionVanished) {
			code = errcode.SectionVanished
		}
		if isFinalAsynqAttempt(ctx) {
			notify := ThemeNotifyMessage{
				Status:        statusError,
				ThemeID:       payload.ThemeID,
				CorrelationID: payload.CorrelationID,
				ErrorCode:     code,
				ErrorMessage:  strings.TrimSpace(err.Error()),
			}
			if nerr := publishThemeNotify(ctx, h.notifier, notify); nerr != nil {
				log.Error("publish error notification failed", slog.Any("error", nerr))
			}
		}
		return err
	}
	metrics.ObservePublish(metrics.PublishOK)

	if err := h.repo.SetPublishedURL(ctx, payload.ThemeID, url); err != nil {
		log.Warn("record published url failed", slog.Any("error", err))
	}

	notify := ThemeNotifyMessage{
		Status:        statusCompleted,
		ThemeID:       payload.ThemeID,
		CorrelationID: payload.CorrelationID,
		URL:           url,
		ErrorCode:     errcode.OK,
	}
	if err := publishThemeNotify(ctx, h.notifier, notify); err != nil {
		log.Error("publish redis notification failed", slog.Any("error", err))
		return err
	}

	log.Info("theme published", slog.String("url", url))
	return nil
}
