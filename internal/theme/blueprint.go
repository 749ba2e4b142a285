// Package theme 加载主题蓝图：提供主题名称与 token 表初始值的 YAML 或 JSON 文件。
package theme

import (
	"errors"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"

	"github.com/go-git/go-billy/v5"
	"gopkg.in/yaml.v3"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// 所有校验失败都会包装 ErrInvalidBlueprint。
var ErrInvalidBlueprint = errors.New("theme: invalid blueprint")

// Blueprint 是主题的文件形式。
type Blueprint struct {
	Slug   string         `yaml:"slug"`
	Name   string         `yaml:"name"`
	Tokens map[string]any `yaml:"tokens"`
}

// Loader 从 billy 文件系统的某个目录读取蓝图。
type Loader struct {
	fs  billy.Filesystem
	dir string
}

func NewLoader(fs billy.Filesystem, dir string) *Loader {
	return &Loader{fs: fs, dir: dir}
}

// Load 读取 <dir>/<slug>.yaml，依次回退到 .yml 和 .json。
func (l *Loader) Load(slug string) (Blueprint, error) {
	if !slugPattern.MatchString(slug) {
		return Blueprint{}, fmt.Errorf("%w: slug %q", ErrInvalidBlueprint, slug)
	}
	for _, ext := range []string{".yaml", ".yml", ".json"} {
		f, err := l.fs.Open(path.Join(l.dir, slug+ext))
		if err != nil {
			continue
		}
		bp, err := Decode(f)
		_ = f.Close()
		if err != nil {
			return Blueprint{}, fmt.Errorf("load blueprint %q: %w", slug, err)
		}
		if bp.Slug == "" {
			bp.Slug = slug
		}
		if bp.Name == "" {
			bp.Name = slug
		}
		if bp.Slug != slug {
			return Blueprint{}, fmt.Errorf("%w: file %q declares slug %q", ErrInvalidBlueprint, slug, bp.Slug)
		}
		return bp, nil
	}
	return Blueprint{}, fmt.Errorf("blueprint %q not found in %s", slug, l.dir)
}

// List 返回目录中所有蓝图文件的 slug。
func (l *Loader) List() ([]string, error) {
	entries, err := l.fs.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("read blueprint dir: %w", err)
	}
	seen := map[string]bool{}
	var slugs []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := path.Ext(entry.Name())
		if ext != ".yaml" && ext != ".yml" && ext != ".json" {
			continue
		}
		slug := strings.TrimSuffix(entry.Name(), ext)
		if slugPattern.MatchString(slug) && !seen[slug] {
			seen[slug] = true
			slugs = append(slugs, slug)
		}
	}
	return slugs, nil
}

// Decode 解析蓝图；JSON 也是合法的 YAML，同样接受。
func Decode(r io.Reader) (Blueprint, error) {
	var bp Blueprint
	if err := yaml.NewDecoder(r).Decode(&bp); err != nil {
		if errors.Is(err, io.EOF) {
			return Blueprint{}, fmt.Errorf("%w: empty document", ErrInvalidBlueprint)
		}
		return Blueprint{}, fmt.Errorf("%w: %w", ErrInvalidBlueprint, err)
	}

	bp.Slug = strings.TrimSpace(bp.Slug)
	bp.Name = strings.TrimSpace(bp.Name)
	if bp.Slug != "" && !slugPattern.MatchString(bp.Slug) {
		return Blueprint{}, fmt.Errorf("%w: slug %q", ErrInvalidBlueprint, bp.Slug)
	}

	tokens, ok := normalize(bp.Tokens).(map[string]any)
	if !ok || tokens == nil {
		tokens = map[string]any{}
	}
	bp.Tokens = tokens
	if bp.Name == "" {
		bp.Name = bp.Slug
	}
	return bp, nil
}

// normalize 把 YAML 解码结果转换为 encoding/json 的形态，使文件与数据库中的 token 表按同一方式遍历。
func normalize(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = normalize(item)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[fmt.Sprint(k)] = normalize(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalize(item)
		}
		return out
	case int:
		return float64(val)
	case int64:
		return float64(val)
	case uint64:
		return float64(val)
	default:
		return v
	}
}
