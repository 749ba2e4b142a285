// Package sections 保存编辑者按主题独立编写的 CSS 分区，并合并为对外发布的单个样式表。
package sections

import (
	"errors"
	"regexp"
	"strings"
)

const (
	Variables = "variables"
	Header    = "header"
	Footer    = "footer"

	// TemplatePrefix 标记可选的模板分区，例如 "template-blog"。
	TemplatePrefix = "template-"
)

// ErrInvalidSection 表示分区名不符合命名规则。
var ErrInvalidSection = errors.New("sections: invalid section name")

var templateSlug = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// RequiredSections 按合并顺序返回发布前必须存在的分区。
func RequiredSections() []string {
	return []string{Variables, Header, Footer}
}

// TemplateSection 根据模板 slug 生成分区名。
func TemplateSection(slug string) string {
	return TemplatePrefix + strings.ToLower(strings.TrimSpace(slug))
}

// IsTemplate 判断 name 是否为可选的模板分区。
func IsTemplate(name string) bool {
	return strings.HasPrefix(name, TemplatePrefix) && templateSlug.MatchString(strings.TrimPrefix(name, TemplatePrefix))
}

// ValidName 判断 name 是必需分区或格式正确的模板分区。
func ValidName(name string) bool {
	switch name {
	case Variables, Header, Footer:
		return true
	}
	return IsTemplate(name)
}
