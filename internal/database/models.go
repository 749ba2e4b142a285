package database

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// 主题部件类型。
const (
	PartHeader   = "header"
	PartFooter   = "footer"
	PartTemplate = "template"
)

// Theme 表示一个租户（或中心站点，TenantID 为空）的主题，ThemeData 保存 token 表。
type Theme struct {
	gorm.Model
	TenantID     *uint          `gorm:"index"`
	Slug         string         `gorm:"size:128;index"`
	Name         string         `gorm:"size:255"`
	ThemeData    datatypes.JSON `gorm:"type:jsonb"`
	IsActive     bool           `gorm:"index"`
	PublishedURL string         `gorm:"size:512"`
}

// Page 表示编辑器页面，原始与编译后的 Puck 数据均以 JSONB 存储。
type Page struct {
	gorm.Model
	TenantID         *uint          `gorm:"index"`
	Title            string         `gorm:"size:255"`
	Slug             string         `gorm:"size:255;index"`
	HeaderPartID     *uint          `gorm:"index"`
	FooterPartID     *uint          `gorm:"index"`
	PuckDataRaw      datatypes.JSON `gorm:"type:jsonb"`
	PuckDataCompiled datatypes.JSON `gorm:"type:jsonb"`
}

// ThemePart 表示主题下的页眉、页脚或模板部件。
type ThemePart struct {
	gorm.Model
	TenantID         *uint          `gorm:"index"`
	ThemeID          uint           `gorm:"index"`
	Kind             string         `gorm:"size:32"`
	Slug             string         `gorm:"size:128"`
	PuckData         datatypes.JSON `gorm:"type:jsonb"`
	PuckDataCompiled datatypes.JSON `gorm:"type:jsonb"`
}

// Navigation 表示导航菜单，Items 为菜单树。
type Navigation struct {
	gorm.Model
	TenantID *uint          `gorm:"index"`
	Name     string         `gorm:"size:255"`
	Items    datatypes.JSON `gorm:"type:jsonb"`
}

// AllModels 供迁移使用。
func AllModels() []any {
	return []any{&Theme{}, &Page{}, &ThemePart{}, &Navigation{}}
}
