package metrics

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestAsynqMetricsMiddleware_ClassifiesResults(t *testing.T) {
	results := map[string]error{
		"test:ok":      nil,
		"test:error":   errors.New("boom"),
		"test:skipped": fmt.Errorf("bad payload: %w", asynq.SkipRetry),
	}

	for typ, want := range results {
		handler := AsynqMetricsMiddleware()(asynq.HandlerFunc(func(context.Context, *asynq.Task) error {
			return want
		}))
		err := handler.ProcessTask(context.Background(), asynq.NewTask(typ, nil))
		assert.Equal(t, want, err)
	}

	assert.Equal(t, 1.0, testutil.ToFloat64(taskProcessedTotal.WithLabelValues("test:ok", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(taskProcessedTotal.WithLabelValues("test:error", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(taskProcessedTotal.WithLabelValues("test:skipped", "skipped")))
	assert.Equal(t, 0.0, testutil.ToFloat64(taskInProgress.WithLabelValues("test:ok")))
}

func TestPipelineCounters(t *testing.T) {
	before := testutil.ToFloat64(publishTotal.WithLabelValues(PublishMissingSections))
	ObservePublish(PublishMissingSections)
	assert.Equal(t, before+1, testutil.ToFloat64(publishTotal.WithLabelValues(PublishMissingSections)))

	before = testutil.ToFloat64(sectionWritesTotal.WithLabelValues("header"))
	ObserveSectionWrite("header")
	assert.Equal(t, before+1, testutil.ToFloat64(sectionWritesTotal.WithLabelValues("header")))

	ObserveCompile("page", time.Now())
	assert.Equal(t, 1, testutil.CollectAndCount(compileDuration))
}
