package sections

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrMissingSections 可用 errors.Is 匹配任意 MissingSectionsError。
var ErrMissingSections = errors.New("sections: required sections missing")

// MissingSectionsError 列出阻止发布的缺失分区。
type MissingSectionsError struct {
	ThemeID uint
	Missing []string
}

func (e *MissingSectionsError) Error() string {
	return fmt.Sprintf("theme %d is missing required sections: %s", e.ThemeID, strings.Join(e.Missing, ", "))
}

func (e *MissingSectionsError) Unwrap() error {
	return ErrMissingSections
}

// Validator 检查主题是否具备全部必需分区。
type Validator struct {
	store *Store
}

func NewValidator(store *Store) *Validator {
	return &Validator{store: store}
}

// ValidateRequiredSections 按声明顺序返回缺失的必需分区，结果为空表示可以发布。
func (v *Validator) ValidateRequiredSections(ctx context.Context, themeID uint) ([]string, error) {
	missing := []string{}
	for _, name := range RequiredSections() {
		ok, err := v.store.Exists(ctx, themeID, name)
		if err != nil {
			return nil, fmt.Errorf("validate theme %d: %w", themeID, err)
		}
		if !ok {
			missing = append(missing, name)
		}
	}
	return missing, nil
}
