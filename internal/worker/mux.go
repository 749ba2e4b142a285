package worker

import (
	"github.com/hibiken/asynq"

	"cmsTheme/internal/tasks"
)

// Handlers 汇总 worker 消费的全部任务处理器。
type Handlers struct {
	Page      *PageHandler
	ThemePart *ThemePartHandler
	Publish   *PublishHandler
	Sync      *SyncHandler
}

// NewServeMux 按任务类型注册处理器。
func NewServeMux(h Handlers) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.Handle(tasks.TypePageRecompile, h.Page)
	mux.Handle(tasks.TypeThemePartRecompile, h.ThemePart)
	mux.Handle(tasks.TypeThemePublish, h.Publish)
	mux.Handle(tasks.TypeThemeSync, h.Sync)
	return mux
}
