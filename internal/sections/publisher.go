package sections

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"
)

// ErrSectionVanished 表示合并期间某个已列出的分区无法再读取。
var ErrSectionVanished = errors.New("sections: section disappeared during merge")

// Publisher 校验主题分区并合并为对外发布的样式表。
type Publisher struct {
	store         *Store
	validator     *Validator
	blobs         Blobs
	publicBaseURL string
	now           func() time.Time

	mu       sync.Mutex
	versions map[uint]int64
}

// NewPublisher 通过 store 的底层存储写入主样式表；publicBaseURL 会拼在主文件 key 之前。
func NewPublisher(store *Store, publicBaseURL string) *Publisher {
	return &Publisher{
		store:         store,
		validator:     NewValidator(store),
		blobs:         store.blobs,
		publicBaseURL: publicBaseURL,
		now:           time.Now,
		versions:      make(map[uint]int64),
	}
}

// PublishTheme 按 variables、header、footer、模板分区的顺序合并为 themes/<id>/<id>.css，
// 返回带 ?v= 版本号的公开地址。缺少必需分区或任一分区读取失败时不写入任何内容，
// 上一次发布的文件保持不变。
func (p *Publisher) PublishTheme(ctx context.Context, themeID uint) (string, error) {
	missing, err := p.validator.ValidateRequiredSections(ctx, themeID)
	if err != nil {
		return "", fmt.Errorf("publish theme %d: %w", themeID, err)
	}
	if len(missing) > 0 {
		return "", &MissingSectionsError{ThemeID: themeID, Missing: missing}
	}

	merged, err := p.merge(ctx, themeID)
	if err != nil {
		return "", fmt.Errorf("publish theme %d: %w", themeID, err)
	}

	key := MasterKey(themeID)
	if err := p.blobs.Put(ctx, key, []byte(merged), cssContentType); err != nil {
		return "", fmt.Errorf("publish theme %d: write %s: %w", themeID, key, err)
	}

	version := strconv.FormatInt(p.nextVersion(themeID), 10) + "-" + contentTag(merged)
	return PublicURL(p.publicBaseURL, key) + "?v=" + version, nil
}

func (p *Publisher) merge(ctx context.Context, themeID uint) (string, error) {
	names, err := p.store.List(ctx, themeID)
	if err != nil {
		return "", err
	}

	listed := make(map[string]bool, len(names))
	for _, name := range names {
		listed[name] = true
	}
	for _, name := range RequiredSections() {
		if !listed[name] {
			return "", fmt.Errorf("section %q: %w", name, ErrSectionVanished)
		}
	}

	parts := make([]string, 0, len(names))
	for _, name := range names {
		css, ok, err := p.store.Get(ctx, themeID, name)
		if err != nil {
			return "", err
		}
		if !ok {
			return "", fmt.Errorf("section %q: %w", name, ErrSectionVanished)
		}
		parts = append(parts, "/* "+name+" */\n"+strings.TrimRight(css, "\n"))
	}
	return strings.Join(parts, "\n\n") + "\n", nil
}

// nextVersion 返回毫秒时间戳；同一主题在同一毫秒内再次发布时递增，保证单进程内严格增长。
func (p *Publisher) nextVersion(themeID uint) int64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	v := p.now().UnixMilli()
	if last := p.versions[themeID]; v <= last {
		v = last + 1
	}
	p.versions[themeID] = v
	return v
}

// contentTag 是合并内容 sha256 的前 8 位十六进制；多个 worker 同一毫秒发布不同内容时版本号仍然不同。
func contentTag(merged string) string {
	sum := sha256.Sum256([]byte(merged))
	return hex.EncodeToString(sum[:])[:8]
}

// PublicURL 用单个斜杠拼接公开地址前缀与对象 key。
func PublicURL(baseURL, key string) string {
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(key, "/")
}
