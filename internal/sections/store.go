package sections

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"

	"cmsTheme/internal/storage"
)

const cssContentType = "text/css; charset=utf-8"

// Blobs 是 Store 写入的对象存储，storage.FS 与 storage.Client 均实现该接口。
type Blobs interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	Exists(ctx context.Context, key string) (bool, error)
	List(ctx context.Context, prefix string) ([]string, error)
	Delete(ctx context.Context, key string) error
}

// Store 以 themes/<themeID>/<themeID>_<section>.css 定位分区文件。
// 不同分区的写入互不影响，同一分区以最后一次写入为准。
type Store struct {
	blobs Blobs
}

func NewStore(blobs Blobs) *Store {
	return &Store{blobs: blobs}
}

// ThemeDir 是主题所有文件的 key 前缀。
func ThemeDir(themeID uint) string {
	return fmt.Sprintf("themes/%d/", themeID)
}

// SectionKey 是单个分区文件的对象 key。
func SectionKey(themeID uint, name string) string {
	return fmt.Sprintf("themes/%d/%d_%s.css", themeID, themeID, name)
}

// MasterKey 是合并后发布的样式表的对象 key。
func MasterKey(themeID uint) string {
	return fmt.Sprintf("themes/%d/%d.css", themeID, themeID)
}

// Save 创建或覆盖分区。
func (s *Store) Save(ctx context.Context, themeID uint, name, css string) error {
	if !ValidName(name) {
		return fmt.Errorf("save section %q: %w", name, ErrInvalidSection)
	}
	if err := s.blobs.Put(ctx, SectionKey(themeID, name), []byte(css), cssContentType); err != nil {
		return fmt.Errorf("save section %q of theme %d: %w", name, themeID, err)
	}
	return nil
}

// Get 返回分区内容；尚未编写的分区返回 ok=false 且 error 为 nil。
func (s *Store) Get(ctx context.Context, themeID uint, name string) (css string, ok bool, err error) {
	if !ValidName(name) {
		return "", false, fmt.Errorf("get section %q: %w", name, ErrInvalidSection)
	}
	data, err := s.blobs.Get(ctx, SectionKey(themeID, name))
	if err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get section %q of theme %d: %w", name, themeID, err)
	}
	return string(data), true, nil
}

func (s *Store) Exists(ctx context.Context, themeID uint, name string) (bool, error) {
	if !ValidName(name) {
		return false, fmt.Errorf("stat section %q: %w", name, ErrInvalidSection)
	}
	ok, err := s.blobs.Exists(ctx, SectionKey(themeID, name))
	if err != nil {
		return false, fmt.Errorf("stat section %q of theme %d: %w", name, themeID, err)
	}
	return ok, nil
}

// List 返回主题已有的分区：先按合并顺序列出必需分区，再按名称排序列出模板分区。
// 已发布的样式表和无关文件会被忽略。
func (s *Store) List(ctx context.Context, themeID uint) ([]string, error) {
	keys, err := s.blobs.List(ctx, ThemeDir(themeID))
	if err != nil {
		return nil, fmt.Errorf("list sections of theme %d: %w", themeID, err)
	}

	filePrefix := fmt.Sprintf("%d_", themeID)
	present := make(map[string]bool, len(keys))
	var templates []string
	for _, key := range keys {
		base := path.Base(key)
		if !strings.HasPrefix(base, filePrefix) || !strings.HasSuffix(base, ".css") {
			continue
		}
		name := strings.TrimSuffix(strings.TrimPrefix(base, filePrefix), ".css")
		if !ValidName(name) || present[name] {
			continue
		}
		present[name] = true
		if IsTemplate(name) {
			templates = append(templates, name)
		}
	}

	names := make([]string, 0, len(present))
	for _, name := range RequiredSections() {
		if present[name] {
			names = append(names, name)
		}
	}
	sort.Strings(templates)
	return append(names, templates...), nil
}

// Delete 删除分区，分区不存在时同样成功。
func (s *Store) Delete(ctx context.Context, themeID uint, name string) error {
	if !ValidName(name) {
		return fmt.Errorf("delete section %q: %w", name, ErrInvalidSection)
	}
	if err := s.blobs.Delete(ctx, SectionKey(themeID, name)); err != nil {
		return fmt.Errorf("delete section %q of theme %d: %w", name, themeID, err)
	}
	return nil
}
