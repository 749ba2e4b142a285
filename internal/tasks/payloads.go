package tasks

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

// 任务类型常量，确保队列生产者与消费者一致。
const (
	TypePageRecompile      = "page:recompile"
	TypeThemePartRecompile = "theme_part:recompile"
	TypeThemePublish       = "theme:publish"
	TypeThemeSync          = "theme:sync"
)

// PageRecompilePayload 描述需要重新编译的页面。
type PageRecompilePayload struct {
	PageID        uint   `json:"page_id"`
	CorrelationID string `json:"correlation_id"`
}

// ThemePartRecompilePayload 描述需要重新编译的主题部件（页眉、页脚或模板）。
type ThemePartRecompilePayload struct {
	ThemePartID   uint   `json:"theme_part_id"`
	CorrelationID string `json:"correlation_id"`
}

// ThemePublishPayload 描述需要合并发布的主题。
type ThemePublishPayload struct {
	ThemeID       uint   `json:"theme_id"`
	CorrelationID string `json:"correlation_id"`
}

// ThemeSyncPayload 描述从蓝图文件同步的主题；TenantID 为空表示中心站点。
type ThemeSyncPayload struct {
	Slug          string `json:"slug"`
	TenantID      *uint  `json:"tenant_id,omitempty"`
	Activate      bool   `json:"activate"`
	CorrelationID string `json:"correlation_id"`
}

// NewPageRecompileTask 构造页面重编译任务。
func NewPageRecompileTask(pageID uint, correlationID string) (*asynq.Task, error) {
	return newTask(TypePageRecompile, PageRecompilePayload{PageID: pageID, CorrelationID: correlationID})
}

// NewThemePartRecompileTask 构造主题部件重编译任务。
func NewThemePartRecompileTask(partID uint, correlationID string) (*asynq.Task, error) {
	return newTask(TypeThemePartRecompile, ThemePartRecompilePayload{ThemePartID: partID, CorrelationID: correlationID})
}

// NewThemePublishTask 构造主题发布任务。
func NewThemePublishTask(themeID uint, correlationID string) (*asynq.Task, error) {
	return newTask(TypeThemePublish, ThemePublishPayload{ThemeID: themeID, CorrelationID: correlationID})
}

// NewThemeSyncTask 构造蓝图同步任务。
func NewThemeSyncTask(payload ThemeSyncPayload) (*asynq.Task, error) {
	return newTask(TypeThemeSync, payload)
}

func newTask(typ string, payload any) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", typ, err)
	}
	return asynq.NewTask(typ, data), nil
}
