package compiler

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
)

// LookupFunc 加载被嵌入实体的当前数据；found=false 表示实体不存在，不算错误。
type LookupFunc func(ctx context.Context, id uint) (data any, found bool, err error)

// Embedder 把被引用实体复制进组件：从 IDProp 读取 id，把实体数据写入 DataProp。
type Embedder struct {
	IDProp   string
	DataProp string
	Lookup   LookupFunc
}

// NavigationEmbedder 把菜单嵌入 Navigation 组件。
func NavigationEmbedder(lookup LookupFunc) Embedder {
	return Embedder{IDProp: "navigationId", DataProp: "navigationData", Lookup: lookup}
}

// embed 在 id 缺失、格式错误或实体不存在时返回 nil。
func (c *Compiler) embed(ctx context.Context, typ string, e Embedder, props map[string]any) (any, error) {
	id, ok := parseID(props[e.IDProp])
	if !ok || e.Lookup == nil {
		return nil, nil
	}
	data, found, err := e.Lookup(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("embed %s %d: %w", typ, id, err)
	}
	if !found {
		c.log.Warn("embedded entity not found",
			slog.String("component", typ),
			slog.String("prop", e.IDProp),
			slog.Uint64("id", uint64(id)),
		)
		return nil, nil
	}
	return data, nil
}

// parseID 接受编辑器存储的 id 形式：JSON 数字与数字字符串。
func parseID(v any) (uint, bool) {
	switch id := v.(type) {
	case float64:
		if id < 1 || id != math.Trunc(id) || id > math.MaxUint32 {
			return 0, false
		}
		return uint(id), true
	case int:
		if id < 1 {
			return 0, false
		}
		return uint(id), true
	case uint:
		return id, id > 0
	case string:
		n, err := strconv.ParseUint(strings.TrimSpace(id), 10, 64)
		if err != nil || n == 0 {
			return 0, false
		}
		return uint(n), true
	default:
		return 0, false
	}
}
