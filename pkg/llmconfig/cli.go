package llmconfig

import (
	"fmt"

	"github.com/urfave/cli/v3"
)

// OptionDescriptor 描述字段投影出的命令行选项。
type OptionDescriptor struct {
	// Identifier 选项标识：<model>_<field> 或 <model>_generation_<field>。
	Identifier string
	// Name 连字符形式的字段名，如 max-new-tokens。
	Name string
	// Flag 选项文本，布尔字段为 --x/--no-x。
	Flag     string
	EnvKey   string
	Type     *Type
	Required bool
	Default  any
	Multiple bool
	Help     string
}

// OptionGroup 一组选项。
type OptionGroup struct {
	Title   string
	Options []OptionDescriptor
}

// Options 将 schema 投影为两组选项：generation 组在前，主字段组在后。
//
// union 类型的字段无法表示为命令行选项，会被跳过，但仍可通过环境变量配置。
// schema 没有主字段时只返回 generation 组。
func (s *Schema) Options() []OptionGroup {
	groups := []OptionGroup{{
		Title:   s.generation.name + " generation options",
		Options: describeFields(s.generation.fields, s.meta.ModelName, true),
	}}
	if len(s.fields) == 0 {
		return groups
	}

	return append(groups, OptionGroup{
		Title:   s.name + " options",
		Options: describeFields(s.fields, s.meta.ModelName, false),
	})
}

func describeFields(fields []Field, modelName string, generation bool) []OptionDescriptor {
	out := make([]OptionDescriptor, 0, len(fields))
	for _, f := range fields {
		if f.Type.Kind() == KindUnion {
			continue
		}
		out = append(out, describeField(f, modelName, generation))
	}

	return out
}

func describeField(f Field, modelName string, generation bool) OptionDescriptor {
	dasherized := Dasherize(f.Alias)
	flag := "--" + dasherized
	if f.Type.Kind() == KindBool {
		flag += "/--no-" + dasherized
	}

	identifier := modelName + "_" + Underscore(f.Name)
	if generation {
		identifier = modelName + "_generation_" + Underscore(f.Name)
	}

	help := f.Description
	if help == "" {
		help = "(No description provided)"
	}

	return OptionDescriptor{
		Identifier: identifier,
		Name:       dasherized,
		Flag:       flag,
		EnvKey:     f.EnvKey,
		Type:       f.Type,
		Required:   f.Mandatory(),
		Default:    copyValue(f.Default),
		Multiple:   f.Type.IsSequence(),
		Help:       help,
	}
}

// projectedFlag 是可转换为 urfave/cli flag 的选项。
type projectedFlag struct {
	OptionDescriptor

	category string
}

// projectFlags 返回可表示为 urfave/cli flag 的选项。
//
// 两组的 flag 名相同时 (例如主字段 _top_k 与 generation 字段 top_k) 保留主字段。
func (s *Schema) projectFlags() []projectedFlag {
	groups := s.Options()
	seen := make(map[string]bool)
	var out []projectedFlag
	for i := len(groups) - 1; i >= 0; i-- {
		for _, opt := range groups[i].Options {
			if seen[opt.Name] || !flagSupported(opt.Type) {
				continue
			}
			seen[opt.Name] = true
			out = append(out, projectedFlag{OptionDescriptor: opt, category: groups[i].Title})
		}
	}

	return out
}

func flagSupported(t *Type) bool {
	switch t.Kind() {
	case KindString, KindBool, KindInt, KindFloat:
		return true
	case KindList:
		switch t.Elem().Kind() {
		case KindString, KindInt, KindFloat:
			return true
		}
	}

	return false
}

// Flags 返回 urfave/cli flags，按选项组分类。
//
// 嵌套列表、mapping、元组等无法表示为 flag 的字段会被跳过。
// 环境变量已在 schema 构建时读取，flag 不再绑定环境变量来源，只在说明中展示。
func (s *Schema) Flags() []cli.Flag {
	projected := s.projectFlags()
	flags := make([]cli.Flag, 0, len(projected))
	for _, p := range projected {
		flags = append(flags, p.flag())
	}

	return flags
}

func (p projectedFlag) flag() cli.Flag {
	usage := fmt.Sprintf("%s [$%s]", p.Help, p.EnvKey)
	if p.Required {
		usage += " (required)"
	}

	switch p.Type.Kind() {
	case KindBool:
		v, _ := p.Default.(bool)
		return &cli.BoolFlag{Name: p.Name, Usage: usage, Category: p.category, Value: v}
	case KindInt:
		v, _ := p.Default.(int)
		return &cli.IntFlag{Name: p.Name, Usage: usage, Category: p.category, Value: v}
	case KindFloat:
		v, _ := p.Default.(float64)
		return &cli.Float64Flag{Name: p.Name, Usage: usage, Category: p.category, Value: v}
	case KindList:
		return p.sliceFlag(usage)
	default:
		v, _ := p.Default.(string)
		return &cli.StringFlag{Name: p.Name, Usage: usage, Category: p.category, Value: v}
	}
}

func (p projectedFlag) sliceFlag(usage string) cli.Flag {
	items, _ := asSequence(p.Default)
	switch p.Type.Elem().Kind() {
	case KindInt:
		return &cli.IntSliceFlag{Name: p.Name, Usage: usage, Category: p.category, Value: typedSlice[int](items)}
	case KindFloat:
		return &cli.Float64SliceFlag{Name: p.Name, Usage: usage, Category: p.category, Value: typedSlice[float64](items)}
	default:
		return &cli.StringSliceFlag{Name: p.Name, Usage: usage, Category: p.category, Value: typedSlice[string](items)}
	}
}

func typedSlice[T any](items []any) []T {
	if items == nil {
		return nil
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		if v, ok := item.(T); ok {
			out = append(out, v)
		}
	}

	return out
}

// CommandValues 读取用户显式设置的 flags，key 为选项 Identifier。
//
// 结果可直接交给 [Schema.ValidateOptions]。
func (s *Schema) CommandValues(cmd *cli.Command) map[string]any {
	values := make(map[string]any)
	for _, p := range s.projectFlags() {
		if !cmd.IsSet(p.Name) {
			continue
		}
		values[p.Identifier] = p.read(cmd)
	}

	return values
}

func (p projectedFlag) read(cmd *cli.Command) any {
	switch p.Type.Kind() {
	case KindBool:
		return cmd.Bool(p.Name)
	case KindInt:
		return cmd.Int(p.Name)
	case KindFloat:
		return cmd.Float64(p.Name)
	case KindList:
		switch p.Type.Elem().Kind() {
		case KindInt:
			return cmd.IntSlice(p.Name)
		case KindFloat:
			return cmd.Float64Slice(p.Name)
		default:
			return cmd.StringSlice(p.Name)
		}
	default:
		return cmd.String(p.Name)
	}
}
