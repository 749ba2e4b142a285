package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"cmsTheme/internal/compiler"
	"cmsTheme/internal/puck"
)

// Repository 为编译流水线提供主题快照、导航数据以及编译结果的读写。
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// IsNotFound 判断错误是否为记录不存在。
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// inScope 限定租户范围；nil 表示中心站点。
func inScope(db *gorm.DB, tenantID *uint) *gorm.DB {
	if tenantID == nil {
		return db.Where("tenant_id IS NULL")
	}
	return db.Where("tenant_id = ?", *tenantID)
}

// ActiveTheme 返回租户当前激活的主题；租户没有时回退到中心主题，仍没有则返回空快照。
func (r *Repository) ActiveTheme(ctx context.Context, tenantID *uint) (compiler.ThemeSnapshot, error) {
	scopes := []*uint{tenantID}
	if tenantID != nil {
		scopes = append(scopes, nil)
	}

	for _, scope := range scopes {
		var theme Theme
		err := inScope(r.db.WithContext(ctx), scope).
			Where("is_active = ?", true).
			Order("updated_at DESC").
			Take(&theme).Error
		if IsNotFound(err) {
			continue
		}
		if err != nil {
			return compiler.ThemeSnapshot{}, fmt.Errorf("query active theme: %w", err)
		}
		return snapshotOf(theme)
	}
	return compiler.ThemeSnapshot{TenantID: tenantID, Tokens: map[string]any{}}, nil
}

// ThemeSnapshot 返回指定主题的 token 快照，不考虑其是否激活。
func (r *Repository) ThemeSnapshot(ctx context.Context, themeID uint) (compiler.ThemeSnapshot, error) {
	theme, err := r.Theme(ctx, themeID)
	if err != nil {
		return compiler.ThemeSnapshot{}, err
	}
	return snapshotOf(theme)
}

func snapshotOf(theme Theme) (compiler.ThemeSnapshot, error) {
	table, err := decodeTokens(theme.ThemeData)
	if err != nil {
		return compiler.ThemeSnapshot{}, fmt.Errorf("decode theme %d tokens: %w", theme.ID, err)
	}
	return compiler.ThemeSnapshot{ThemeID: theme.ID, TenantID: theme.TenantID, Tokens: table}, nil
}

func decodeTokens(data datatypes.JSON) (map[string]any, error) {
	table := map[string]any{}
	if len(data) == 0 || string(data) == "null" {
		return table, nil
	}
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, err
	}
	if table == nil {
		table = map[string]any{}
	}
	return table, nil
}

func (r *Repository) Theme(ctx context.Context, themeID uint) (Theme, error) {
	var theme Theme
	if err := r.db.WithContext(ctx).First(&theme, themeID).Error; err != nil {
		return Theme{}, fmt.Errorf("load theme %d: %w", themeID, err)
	}
	return theme, nil
}

// ActivateTheme 在同一事务中停用同范围的其他主题并激活目标主题。
func (r *Repository) ActivateTheme(ctx context.Context, themeID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var theme Theme
		if err := tx.First(&theme, themeID).Error; err != nil {
			return fmt.Errorf("load theme %d: %w", themeID, err)
		}
		if err := inScope(tx.Model(&Theme{}), theme.TenantID).
			Where("id <> ?", theme.ID).
			Update("is_active", false).Error; err != nil {
			return fmt.Errorf("deactivate themes: %w", err)
		}
		if err := tx.Model(&theme).Update("is_active", true).Error; err != nil {
			return fmt.Errorf("activate theme %d: %w", themeID, err)
		}
		return nil
	})
}

// UpsertTheme 按 (租户, slug) 创建或更新主题的名称与 token 表。
func (r *Repository) UpsertTheme(ctx context.Context, tenantID *uint, slug, name string, tokens map[string]any) (Theme, error) {
	data, err := json.Marshal(tokens)
	if err != nil {
		return Theme{}, fmt.Errorf("encode theme tokens: %w", err)
	}

	var theme Theme
	err = inScope(r.db.WithContext(ctx), tenantID).Where("slug = ?", slug).Take(&theme).Error
	switch {
	case IsNotFound(err):
		theme = Theme{TenantID: tenantID, Slug: slug, Name: name, ThemeData: datatypes.JSON(data)}
		if err := r.db.WithContext(ctx).Create(&theme).Error; err != nil {
			return Theme{}, fmt.Errorf("create theme %q: %w", slug, err)
		}
		return theme, nil
	case err != nil:
		return Theme{}, fmt.Errorf("query theme %q: %w", slug, err)
	}

	if err := r.db.WithContext(ctx).Model(&theme).Updates(map[string]any{
		"name":       name,
		"theme_data": datatypes.JSON(data),
	}).Error; err != nil {
		return Theme{}, fmt.Errorf("update theme %q: %w", slug, err)
	}
	theme.Name = name
	theme.ThemeData = datatypes.JSON(data)
	return theme, nil
}

// SetPublishedURL 记录主题最近一次发布的样式表地址。
func (r *Repository) SetPublishedURL(ctx context.Context, themeID uint, url string) error {
	if err := r.db.WithContext(ctx).Model(&Theme{}).Where("id = ?", themeID).
		Update("published_url", url).Error; err != nil {
		return fmt.Errorf("save published url of theme %d: %w", themeID, err)
	}
	return nil
}

// NavigationData 按值返回导航菜单树；菜单不存在时 found 为 false。
func (r *Repository) NavigationData(ctx context.Context, id uint) (any, bool, error) {
	var nav Navigation
	err := r.db.WithContext(ctx).First(&nav, id).Error
	if IsNotFound(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load navigation %d: %w", id, err)
	}

	var items any = []any{}
	if len(nav.Items) > 0 {
		if err := json.Unmarshal(nav.Items, &items); err != nil {
			return nil, false, fmt.Errorf("decode navigation %d: %w", id, err)
		}
	}
	return map[string]any{
		"id":    nav.ID,
		"name":  nav.Name,
		"items": items,
	}, true, nil
}

// LoadPageInput 读取页面及其页眉、页脚部件的原始数据。
func (r *Repository) LoadPageInput(ctx context.Context, pageID uint) (compiler.PageInput, error) {
	var page Page
	if err := r.db.WithContext(ctx).First(&page, pageID).Error; err != nil {
		return compiler.PageInput{}, fmt.Errorf("load page %d: %w", pageID, err)
	}

	raw, err := puck.Parse(page.PuckDataRaw)
	if err != nil {
		return compiler.PageInput{}, fmt.Errorf("page %d: %w", pageID, err)
	}
	input := compiler.PageInput{TenantID: page.TenantID, Raw: raw}

	if input.Header, err = r.partTree(ctx, page.HeaderPartID); err != nil {
		return compiler.PageInput{}, fmt.Errorf("page %d header: %w", pageID, err)
	}
	if input.Footer, err = r.partTree(ctx, page.FooterPartID); err != nil {
		return compiler.PageInput{}, fmt.Errorf("page %d footer: %w", pageID, err)
	}
	return input, nil
}

// partTree 返回部件的原始树；未设置或已删除的部件视为不存在。
func (r *Repository) partTree(ctx context.Context, partID *uint) (*puck.Tree, error) {
	if partID == nil {
		return nil, nil
	}
	part, err := r.LoadThemePart(ctx, *partID)
	if IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	tree, err := puck.Parse(part.PuckData)
	if err != nil {
		return nil, fmt.Errorf("theme part %d: %w", part.ID, err)
	}
	return &tree, nil
}

func (r *Repository) SaveCompiledPage(ctx context.Context, pageID uint, tree puck.Tree) error {
	data, err := tree.Marshal()
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Model(&Page{}).Where("id = ?", pageID).
		Update("puck_data_compiled", datatypes.JSON(data)).Error; err != nil {
		return fmt.Errorf("save compiled page %d: %w", pageID, err)
	}
	return nil
}

func (r *Repository) LoadThemePart(ctx context.Context, partID uint) (ThemePart, error) {
	var part ThemePart
	if err := r.db.WithContext(ctx).First(&part, partID).Error; err != nil {
		return ThemePart{}, fmt.Errorf("load theme part %d: %w", partID, err)
	}
	return part, nil
}

func (r *Repository) SaveCompiledThemePart(ctx context.Context, partID uint, tree puck.Tree) error {
	data, err := tree.Marshal()
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Model(&ThemePart{}).Where("id = ?", partID).
		Update("puck_data_compiled", datatypes.JSON(data)).Error; err != nil {
		return fmt.Errorf("save compiled theme part %d: %w", partID, err)
	}
	return nil
}

// PagesUsingThemePart 返回以该部件作为页眉或页脚的页面 ID。
func (r *Repository) PagesUsingThemePart(ctx context.Context, partID uint) ([]uint, error) {
	var ids []uint
	if err := r.db.WithContext(ctx).Model(&Page{}).
		Where("header_part_id = ? OR footer_part_id = ?", partID, partID).
		Order("id").
		Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("query pages using theme part %d: %w", partID, err)
	}
	return ids, nil
}

// PageIDsInScope 返回租户范围内全部页面的 ID。
func (r *Repository) PageIDsInScope(ctx context.Context, tenantID *uint) ([]uint, error) {
	var ids []uint
	if err := inScope(r.db.WithContext(ctx).Model(&Page{}), tenantID).
		Order("id").
		Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("query pages in scope: %w", err)
	}
	return ids, nil
}

// AllPageIDs 返回全部页面 ID；中心主题变化时，未配置主题的租户页面同样需要重编译。
func (r *Repository) AllPageIDs(ctx context.Context) ([]uint, error) {
	var ids []uint
	if err := r.db.WithContext(ctx).Model(&Page{}).Order("id").Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("query pages: %w", err)
	}
	return ids, nil
}

// ThemePartIDs 返回主题下全部部件 ID。
func (r *Repository) ThemePartIDs(ctx context.Context, themeID uint) ([]uint, error) {
	var ids []uint
	if err := r.db.WithContext(ctx).Model(&ThemePart{}).
		Where("theme_id = ?", themeID).
		Order("id").
		Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("query parts of theme %d: %w", themeID, err)
	}
	return ids, nil
}
