package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// Enqueuer 是 asynq.Client 的最小子集，便于测试替换。
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Dispatcher 在上游数据变化后投递重编译与发布任务。
// 同一对象的重编译任务使用 TaskID 去重，短时间内的重复变更只会排队一次。
type Dispatcher struct {
	client   Enqueuer
	queue    string
	debounce time.Duration
}

func NewDispatcher(client Enqueuer) *Dispatcher {
	return &Dispatcher{client: client, queue: "default", debounce: 2 * time.Second}
}

// RecompilePage 投递页面重编译任务。
func (d *Dispatcher) RecompilePage(ctx context.Context, pageID uint, correlationID string) error {
	task, err := NewPageRecompileTask(pageID, d.correlation(correlationID))
	if err != nil {
		return err
	}
	return d.enqueue(ctx, task, fmt.Sprintf("%s:%d", TypePageRecompile, pageID))
}

// RecompilePages 依次投递多个页面。
func (d *Dispatcher) RecompilePages(ctx context.Context, pageIDs []uint, correlationID string) error {
	for _, id := range pageIDs {
		if err := d.RecompilePage(ctx, id, correlationID); err != nil {
			return err
		}
	}
	return nil
}

// RecompileThemePart 投递主题部件重编译任务。
func (d *Dispatcher) RecompileThemePart(ctx context.Context, partID uint, correlationID string) error {
	task, err := NewThemePartRecompileTask(partID, d.correlation(correlationID))
	if err != nil {
		return err
	}
	return d.enqueue(ctx, task, fmt.Sprintf("%s:%d", TypeThemePartRecompile, partID))
}

// PublishTheme 投递发布任务；发布不去重，每次请求都会生成新版本。
func (d *Dispatcher) PublishTheme(ctx context.Context, themeID uint, correlationID string) error {
	task, err := NewThemePublishTask(themeID, d.correlation(correlationID))
	if err != nil {
		return err
	}
	return d.enqueue(ctx, task, "")
}

// SyncTheme 投递蓝图同步任务。
func (d *Dispatcher) SyncTheme(ctx context.Context, payload ThemeSyncPayload) error {
	payload.CorrelationID = d.correlation(payload.CorrelationID)
	task, err := NewThemeSyncTask(payload)
	if err != nil {
		return err
	}
	return d.enqueue(ctx, task, "")
}

func (d *Dispatcher) enqueue(ctx context.Context, task *asynq.Task, dedupeKey string) error {
	opts := []asynq.Option{asynq.Queue(d.queue), asynq.MaxRetry(5)}
	if dedupeKey != "" {
		opts = append(opts, asynq.TaskID(dedupeKey), asynq.ProcessIn(d.debounce), asynq.Retention(0))
	}
	if _, err := d.client.EnqueueContext(ctx, task, opts...); err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			return nil
		}
		return fmt.Errorf("enqueue %s: %w", task.Type(), err)
	}
	return nil
}

func (d *Dispatcher) correlation(id string) string {
	if id != "" {
		return id
	}
	return uuid.NewString()
}
