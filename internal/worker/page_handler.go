package worker

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"cmsTheme/internal/compiler"
	"cmsTheme/internal/database"
	"cmsTheme/internal/metrics"
	"cmsTheme/internal/tasks"
)

// PageHandler 消费页面重编译任务：用租户当前主题解析 token，并保存编译结果。
type PageHandler struct {
	repo     *database.Repository
	compiler *compiler.Compiler
	logger   *slog.Logger
}

func NewPageHandler(repo *database.Repository, c *compiler.Compiler, logger *slog.Logger) *PageHandler {
	return &PageHandler{repo: repo, compiler: c, logger: logger}
}

// ProcessTask 实现 asynq.Handler。
func (h *PageHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload tasks.PageRecompilePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		h.logger.Error("unmarshal task payload failed", slog.Any("error", err))
		return err
	}
	log := h.logger.With(
		slog.String("correlation_id", payload.CorrelationID),
		slog.Uint64("page_id", uint64(payload.PageID)),
	)

	input, err := h.repo.LoadPageInput(ctx, payload.PageID)
	if err != nil {
		if database.IsNotFound(err) {
			log.Warn("page not found, skipping task")
			return nil
		}
		log.Error("load page failed", slog.Any("error", err))
		return err
	}

	start := time.Now()
	tree, err := h.compiler.CompilePage(ctx, input)
	metrics.ObserveCompile("page", start)
	if err != nil {
		log.Error("compile page failed", slog.Any("error", err))
		return err
	}

	if err := h.repo.SaveCompiledPage(ctx, payload.PageID, tree); err != nil {
		log.Error("save compiled page failed", slog.Any("error", err))
		return err
	}

	log.Info("page recompiled", slog.Int("nodes", len(tree.Content)))
	return nil
}
