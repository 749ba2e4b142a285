package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"cmsTheme/internal/compiler"
	"cmsTheme/internal/database"
	"cmsTheme/internal/metrics"
	"cmsTheme/internal/puck"
	"cmsTheme/internal/sections"
	"cmsTheme/internal/styles"
	"cmsTheme/internal/tasks"
	"cmsTheme/internal/tokens"
)

// Dispatcher 投递后续任务，*tasks.Dispatcher 实现该接口。
type Dispatcher interface {
	RecompilePages(ctx context.Context, pageIDs []uint, correlationID string) error
	RecompileThemePart(ctx context.Context, partID uint, correlationID string) error
}

// CSSOptions 控制分区 CSS 的生成方式。
type CSSOptions struct {
	Breakpoints   styles.Breakpoints
	MaxAliasDepth int
}

func (o CSSOptions) extractor(table map[string]any) *styles.Extractor {
	return &styles.Extractor{
		Breakpoints: o.Breakpoints,
		Resolver:    tokens.Resolver{MaxDepth: o.MaxAliasDepth},
		Tokens:      table,
	}
}

// ThemePartHandler 消费主题部件重编译任务：
// 按所属主题的 token 编译部件，重新生成对应的 CSS 分区，再让引用该部件的页面重编译。
type ThemePartHandler struct {
	repo       *database.Repository
	compiler   *compiler.Compiler
	sections   *sections.Store
	dispatcher Dispatcher
	css        CSSOptions
	logger     *slog.Logger
}

func NewThemePartHandler(
	repo *database.Repository,
	c *compiler.Compiler,
	store *sections.Store,
	dispatcher Dispatcher,
	css CSSOptions,
	logger *slog.Logger,
) *ThemePartHandler {
	return &ThemePartHandler{repo: repo, compiler: c, sections: store, dispatcher: dispatcher, css: css, logger: logger}
}

// SectionFor 返回部件对应的 CSS 分区名。
func SectionFor(part database.ThemePart) (string, error) {
	switch part.Kind {
	case database.PartHeader:
		return sections.Header, nil
	case database.PartFooter:
		return sections.Footer, nil
	case database.PartTemplate:
		name := sections.TemplateSection(part.Slug)
		if !sections.ValidName(name) {
			return "", fmt.Errorf("theme part %d: %w: %q", part.ID, sections.ErrInvalidSection, name)
		}
		return name, nil
	default:
		return "", fmt.Errorf("theme part %d: unknown kind %q", part.ID, part.Kind)
	}
}

// ProcessTask 实现 asynq.Handler。
func (h *ThemePartHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload tasks.ThemePartRecompilePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		h.logger.Error("unmarshal task payload failed", slog.Any("error", err))
		return err
	}
	log := h.logger.With(
		slog.String("correlation_id", payload.CorrelationID),
		slog.Uint64("theme_part_id", uint64(payload.ThemePartID)),
	)

	part, err := h.repo.LoadThemePart(ctx, payload.ThemePartID)
	if err != nil {
		if database.IsNotFound(err) {
			log.Warn("theme part not found, skipping task")
			return nil
		}
		log.Error("load theme part failed", slog.Any("error", err))
		return err
	}
	log = log.With(slog.Uint64("theme_id", uint64(part.ThemeID)), slog.String("kind", part.Kind))

	section, err := SectionFor(part)
	if err != nil {
		log.Error("theme part cannot map to a section", slog.Any("error", err))
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}

	snap, err := h.repo.ThemeSnapshot(ctx, part.ThemeID)
	if err != nil {
		if database.IsNotFound(err) {
			log.Warn("owning theme not found, skipping task")
			return nil
		}
		log.Error("load theme snapshot failed", slog.Any("error", err))
		return err
	}

	raw, err := puck.Parse(part.PuckData)
	if err != nil {
		log.Error("decode theme part failed", slog.Any("error", err))
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}

	start := time.Now()
	tree, err := h.compiler.CompileWith(ctx, snap, raw)
	metrics.ObserveCompile("theme_part", start)
	if err != nil {
		log.Error("compile theme part failed", slog.Any("error", err))
		return err
	}
	if err := h.repo.SaveCompiledThemePart(ctx, part.ID, tree); err != nil {
		log.Error("save compiled theme part failed", slog.Any("error", err))
		return err
	}

	css := h.css.extractor(snap.Tokens).TreeCSS(tree)
	if err := h.sections.Save(ctx, part.ThemeID, section, css); err != nil {
		log.Error("save section failed", slog.String("section", section), slog.Any("error", err))
		return err
	}
	metrics.ObserveSectionWrite(sectionLabel(section))

	pageIDs, err := h.repo.PagesUsingThemePart(ctx, part.ID)
	if err != nil {
		log.Error("query dependent pages failed", slog.Any("error", err))
		return err
	}
	if err := h.dispatcher.RecompilePages(ctx, pageIDs, payload.CorrelationID); err != nil {
		log.Error("enqueue page recompiles failed", slog.Any("error", err))
		return err
	}

	log.Info("theme part recompiled",
		slog.String("section", section),
		slog.Int("css_bytes", len(css)),
		slog.Int("dependent_pages", len(pageIDs)),
	)
	return nil
}

func sectionLabel(section string) string {
	if sections.IsTemplate(section) {
		return "template"
	}
	return section
}
