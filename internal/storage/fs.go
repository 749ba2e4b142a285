package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
)

const tempPrefix = ".tmp-"

// FS 是基于 billy 文件系统的对象存储，通常指向 Web 服务器提供的公共资源目录。
// 写入先落到目标目录下的临时文件再重命名，并发读取方只会看到旧文件或新文件。
type FS struct {
	fs billy.Filesystem
}

// NewFS 包装已有的 billy 文件系统（测试中用 memfs）。
func NewFS(fsys billy.Filesystem) *FS {
	return &FS{fs: fsys}
}

// NewOSFS 以本地磁盘目录为根。
func NewOSFS(root string) *FS {
	return NewFS(osfs.New(root))
}

// Put 原子地替换 key 的内容。
func (s *FS) Put(_ context.Context, key string, data []byte, _ string) (err error) {
	key = cleanKey(key)
	dir := path.Dir(key)
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %q: %w", dir, err)
	}

	tmp, err := s.fs.TempFile(dir, tempPrefix+path.Base(key))
	if err != nil {
		return fmt.Errorf("create temp file for %q: %w", key, err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = s.fs.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file for %q: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file for %q: %w", key, err)
	}
	if err := s.fs.Rename(tmpName, key); err != nil {
		return fmt.Errorf("rename into %q: %w", key, err)
	}
	return nil
}

// Get 读取 key，不存在时返回 ErrNotExist。
func (s *FS) Get(_ context.Context, key string) ([]byte, error) {
	key = cleanKey(key)
	f, err := s.fs.Open(key)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotExist
		}
		return nil, fmt.Errorf("open %q: %w", key, err)
	}
	defer func() {
		_ = f.Close()
	}()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", key, err)
	}
	return data, nil
}

// Exists 判断 key 是否为普通文件。
func (s *FS) Exists(_ context.Context, key string) (bool, error) {
	info, err := s.fs.Stat(cleanKey(key))
	switch {
	case err == nil:
		return !info.IsDir(), nil
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("stat %q: %w", key, err)
	}
}

// List 返回 prefix 下普通文件的 key，跳过写入中的临时文件。
func (s *FS) List(_ context.Context, prefix string) ([]string, error) {
	root := cleanKey(prefix)
	if root == "" {
		root = "."
	}
	keys := make([]string, 0, 8)
	err := util.Walk(s.fs, root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil
			}
			return err
		}
		if info.IsDir() || strings.HasPrefix(info.Name(), tempPrefix) {
			return nil
		}
		keys = append(keys, cleanKey(p))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list %q: %w", prefix, err)
	}
	return keys, nil
}

// Delete 删除 key，key 不存在时同样成功。
func (s *FS) Delete(_ context.Context, key string) error {
	key = cleanKey(key)
	if key == "" {
		return nil
	}
	if err := s.fs.Remove(key); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %q: %w", key, err)
	}
	return nil
}

// Filesystem 暴露底层 billy 文件系统，供蓝图加载等读取方使用。
func (s *FS) Filesystem() billy.Filesystem {
	return s.fs
}

func cleanKey(key string) string {
	key = strings.TrimSpace(key)
	key = strings.TrimPrefix(path.Clean("/"+key), "/")
	return key
}
