package storage

import (
	"context"
	"fmt"

	"cmsTheme/internal/config"
)

// Backend 是主题 CSS 文件的对象存储抽象，FS 与 Client 均实现该接口。
type Backend interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	Exists(ctx context.Context, key string) (bool, error)
	List(ctx context.Context, prefix string) ([]string, error)
	Delete(ctx context.Context, key string) error
}

var (
	_ Backend = (*FS)(nil)
	_ Backend = (*Client)(nil)
)

// Open 按 assets.driver 选择存储后端。
func Open(assets config.AssetsConfig, minioCfg config.MinIOConfig) (Backend, error) {
	switch assets.Driver {
	case "fs":
		return NewOSFS(assets.Root), nil
	case "minio":
		client, err := NewClient(minioCfg)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown assets driver %q", assets.Driver)
	}
}
