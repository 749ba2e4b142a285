package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"cmsTheme/internal/database"
	"cmsTheme/internal/metrics"
	"cmsTheme/internal/sections"
	"cmsTheme/internal/styles"
	"cmsTheme/internal/tasks"
	"cmsTheme/internal/theme"
)

// SyncHandler 从蓝图文件同步主题：写入 token 表，重新生成 variables 分区，
// 并让该主题的部件以及受影响的页面重新编译。
type SyncHandler struct {
	loader     *theme.Loader
	repo       *database.Repository
	sections   *sections.Store
	dispatcher Dispatcher
	logger     *slog.Logger
}

func NewSyncHandler(loader *theme.Loader, repo *database.Repository, store *sections.Store, dispatcher Dispatcher, logger *slog.Logger) *SyncHandler {
	return &SyncHandler{loader: loader, repo: repo, sections: store, dispatcher: dispatcher, logger: logger}
}

// ProcessTask 实现 asynq.Handler。
func (h *SyncHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload tasks.ThemeSyncPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		h.logger.Error("unmarshal task payload failed", slog.Any("error", err))
		return err
	}
	log := h.logger.With(
		slog.String("correlation_id", payload.CorrelationID),
		slog.String("slug", payload.Slug),
	)

	bp, err := h.loader.Load(payload.Slug)
	if err != nil {
		log.Error("load blueprint failed", slog.Any("error", err))
		if errors.Is(err, theme.ErrInvalidBlueprint) {
			return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
		}
		return err
	}

	th, err := h.repo.UpsertTheme(ctx, payload.TenantID, bp.Slug, bp.Name, bp.Tokens)
	if err != nil {
		log.Error("upsert theme failed", slog.Any("error", err))
		return err
	}
	log = log.With(slog.Uint64("theme_id", uint64(th.ID)))

	if payload.Activate {
		if err := h.repo.ActivateTheme(ctx, th.ID); err != nil {
			log.Error("activate theme failed", slog.Any("error", err))
			return err
		}
		th.IsActive = true
	}

	if err := h.sections.Save(ctx, th.ID, sections.Variables, styles.VariablesCSS(bp.Tokens)); err != nil {
		log.Error("save variables section failed", slog.Any("error", err))
		return err
	}
	metrics.ObserveSectionWrite(sections.Variables)

	partIDs, err := h.repo.ThemePartIDs(ctx, th.ID)
	if err != nil {
		log.Error("query theme parts failed", slog.Any("error", err))
		return err
	}
	for _, id := range partIDs {
		if err := h.dispatcher.RecompileThemePart(ctx, id, payload.CorrelationID); err != nil {
			log.Error("enqueue theme part recompile failed", slog.Any("error", err))
			return err
		}
	}

	var pageIDs []uint
	if th.IsActive {
		if pageIDs, err = h.affectedPages(ctx, th.TenantID); err != nil {
			log.Error("query affected pages failed", slog.Any("error", err))
			return err
		}
		if err := h.dispatcher.RecompilePages(ctx, pageIDs, payload.CorrelationID); err != nil {
			log.Error("enqueue page recompiles failed", slog.Any("error", err))
			return err
		}
	}

	log.Info("theme synced from blueprint",
		slog.Bool("active", th.IsActive),
		slog.Int("theme_parts", len(partIDs)),
		slog.Int("pages", len(pageIDs)),
	)
	return nil
}

// affectedPages 返回依赖该范围激活主题的页面；中心主题可能被任何租户回退使用。
func (h *SyncHandler) affectedPages(ctx context.Context, tenantID *uint) ([]uint, error) {
	if tenantID == nil {
		return h.repo.AllPageIDs(ctx)
	}
	return h.repo.PageIDsInScope(ctx, tenantID)
}
