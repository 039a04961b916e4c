package llmconfig

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Field 描述 schema 中的一个字段。
//
// 通过 [Declare]、[Required]、[Optional] 构造；EnvKey 与 Owner 由 [Define] 填充。
type Field struct {
	Name        string
	Type        *Type
	Default     any
	HasDefault  bool // false 表示必填字段
	Min         *float64
	Max         *float64
	Description string
	Alias       string // 展示与 CLI 使用的名称，默认去掉前导下划线的 Name
	KeywordOnly bool   // 不参与必填字段顺序检查

	EnvKey string // 派生的环境变量名
	Owner  string // 声明该字段的 schema
}

// FieldOption 字段声明选项。
type FieldOption func(*Field)

// Declare 声明带默认值的字段。
func Declare(name string, typ *Type, def any, opts ...FieldOption) Field {
	f := Field{Name: name, Type: typ, Default: def, HasDefault: true}
	for _, opt := range opts {
		opt(&f)
	}

	return f
}

// Required 声明没有默认值的必填字段。
//
// 如果构建 schema 时对应环境变量已设置，其值会成为该字段的默认值。
func Required(name string, typ *Type, opts ...FieldOption) Field {
	f := Field{Name: name, Type: typ}
	for _, opt := range opts {
		opt(&f)
	}

	return f
}

// Optional 声明默认值为 nil 的字段，未设置时不会出现在导出结果中。
func Optional(name string, typ *Type, opts ...FieldOption) Field {
	return Declare(name, typ, nil, opts...)
}

// Ge 设置下界 (包含)。
func Ge(v float64) FieldOption {
	return func(f *Field) { f.Min = &v }
}

// Le 设置上界 (包含)。
func Le(v float64) FieldOption {
	return func(f *Field) { f.Max = &v }
}

// Describe 设置字段说明，用于 CLI 帮助与 YAML 示例注释。
func Describe(text string) FieldOption {
	return func(f *Field) { f.Description = text }
}

// WithAlias 设置字段别名。
func WithAlias(alias string) FieldOption {
	return func(f *Field) { f.Alias = alias }
}

// KeywordOnly 将字段标记为仅关键字参数。
func KeywordOnly() FieldOption {
	return func(f *Field) { f.KeywordOnly = true }
}

// Mandatory 报告字段是否为必填。
func (f Field) Mandatory() bool { return !f.HasDefault }

// check 校验数值边界。
func (f Field) check(v any) error {
	if v == nil || (f.Min == nil && f.Max == nil) {
		return nil
	}
	if f.Type.Kind() != KindInt && f.Type.Kind() != KindFloat {
		return nil
	}

	tag := f.constraintTag()
	if err := validate.Var(v, tag); err != nil {
		return fmt.Errorf("%w: %s = %v violates %s", ErrConstraint, f.Name, v, tag)
	}

	return nil
}

func (f Field) constraintTag() string {
	var parts []string
	if f.Min != nil {
		parts = append(parts, "gte="+f.formatBound(*f.Min, math.Ceil))
	}
	if f.Max != nil {
		parts = append(parts, "lte="+f.formatBound(*f.Max, math.Floor))
	}

	return strings.Join(parts, ",")
}

func (f Field) formatBound(v float64, round func(float64) float64) string {
	if f.Type.Kind() == KindInt {
		return strconv.FormatInt(int64(round(v)), 10)
	}

	return strconv.FormatFloat(v, 'f', -1, 64)
}

// prepare 校验声明并把默认值转换为声明类型。
func (f Field) prepare(owner string) (Field, error) {
	if f.Name == "" {
		return f, fmt.Errorf("%w: %s: field name is empty", ErrSchemaDefinition, owner)
	}
	if f.Name == GenerationConfigKey {
		return f, fmt.Errorf("%w: %s: %q is reserved", ErrSchemaDefinition, owner, f.Name)
	}
	if f.Type == nil {
		return f, fmt.Errorf("%w: %s: field %q doesn't have a type annotation", ErrSchemaDefinition, owner, f.Name)
	}
	if f.HasDefault {
		v, err := f.Type.Convert(f.Default)
		if err != nil {
			return f, fmt.Errorf("%w: %s: default of %q: %w", ErrSchemaDefinition, owner, f.Name, err)
		}
		f.Default = v
	}
	if f.Alias == "" {
		f.Alias = strings.TrimLeft(f.Name, "_")
	}
	f.Owner = owner

	return f, nil
}
