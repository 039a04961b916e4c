package llmconfig

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
)

// GenerationConfigKey 是 generation 子配置在 mapping 中的 key。
const GenerationConfigKey = "generation_config"

// Config 是 schema 的实例。
//
// 主字段在构建后不可变；[Config.WithGeneration] 与 [Config.Evolve] 返回新实例。
// 可在 goroutine 间共享。
type Config struct {
	schema     *Schema
	values     map[string]any
	generation *GenerationConfig
	extras     map[string]any
}

type newOptions struct {
	generation map[string]any
	extras     map[string]any
}

// NewOption 实例构建选项。
type NewOption func(*newOptions)

// WithGenerationConfig 显式指定 generation 字段值。
//
// 指定后，attrs 中与 generation 字段同名的顶层 key 会被忽略并记录警告。
// nil 等同于未指定。
func WithGenerationConfig(values map[string]any) NewOption {
	return func(o *newOptions) {
		o.generation = values
	}
}

// WithExtras 指定初始 extras，未识别的 key 会按合并策略并入其中。
//
// extras 不能包含主字段、generation 字段或 generation_config 同名的 key，
// 否则 [Schema.New] 返回 [ErrTypeMismatch]。
func WithExtras(extras map[string]any) NewOption {
	return func(o *newOptions) {
		o.extras = extras
	}
}

// partition 是输入 key 的分桶结果。
type partition struct {
	primary    map[string]any
	generation map[string]any
	extras     map[string]any
}

// partition 将 attrs 中的每个 key 分到主字段、generation 字段或 extras 之一。
//
// 与主字段同名的 key 总是归入主字段。explicit 非 nil 时它就是 generation 的全部来源，
// 同名的顶层 generation key 被丢弃并记录警告。主字段与 generation 字段中的 nil 值视为未传入。
func (s *Schema) partition(attrs, explicit map[string]any) partition {
	p := partition{
		primary:    make(map[string]any),
		generation: make(map[string]any),
		extras:     make(map[string]any),
	}

	var dropped []string
	for key, val := range attrs {
		switch {
		case key == GenerationConfigKey:
			continue
		case s.hasField(key):
			if val != nil {
				p.primary[key] = val
			}
		case s.generation.hasField(key):
			if explicit != nil {
				dropped = append(dropped, key)

				continue
			}
			if val != nil {
				p.generation[key] = val
			}
		default:
			p.extras[key] = val
		}
	}
	maps.Copy(p.generation, explicit)

	if len(dropped) > 0 {
		slices.Sort(dropped)
		slog.Warn("When 'generation_config' is passed, the following keys are ignored and won't be used; pass them inside 'generation_config' instead",
			"schema", s.name, "keys", strings.Join(dropped, ", "))
	}

	return p
}

// checkExtras 拒绝与字段表同名的 extras key。
func (s *Schema) checkExtras(extras map[string]any) error {
	var clash []string
	for key := range extras {
		if key == GenerationConfigKey || s.hasField(key) || s.generation.hasField(key) {
			clash = append(clash, key)
		}
	}
	if len(clash) == 0 {
		return nil
	}
	slices.Sort(clash)

	return fmt.Errorf("%w: extras must not contain field names (%s)", ErrTypeMismatch, strings.Join(clash, ", "))
}

// explicitGeneration 取出 attrs 中 generation_config 的值，并与 option 中指定的值合并。
func explicitGeneration(attrs map[string]any, fromOption map[string]any) (map[string]any, error) {
	raw, ok := attrs[GenerationConfigKey]
	if !ok || raw == nil {
		return fromOption, nil
	}

	m, err := asMapping(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", GenerationConfigKey, err)
	}
	if fromOption == nil {
		return m, nil
	}

	return Merge(m, fromOption), nil
}

// New 由关键字输入构建实例。
//
// 步骤：
//  1. 按主字段、generation 字段、其他 三类对 attrs 的 key 分桶
//  2. "其他" 按合并策略并入 extras
//  3. 显式 generation mapping 存在时忽略同名顶层 key (记录警告，不报错)
//  4. 构建 generation 实例
//  5. 以显式值或有效默认值构建主字段
//
// attrs 中的 generation_config 等同于 [WithGenerationConfig]，其值必须是 mapping。
func (s *Schema) New(attrs map[string]any, opts ...NewOption) (*Config, error) {
	o := &newOptions{}
	for _, opt := range opts {
		opt(o)
	}

	if err := s.checkExtras(o.extras); err != nil {
		return nil, fmt.Errorf("%s: %w", s.name, err)
	}

	explicit, err := explicitGeneration(attrs, o.generation)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.name, err)
	}

	p := s.partition(attrs, explicit)

	generation, err := s.generation.New(p.generation)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.name, err)
	}

	values, err := resolveValues(s.name, s.fields, p.primary)
	if err != nil {
		return nil, err
	}

	return &Config{
		schema:     s,
		values:     values,
		generation: generation,
		extras:     Merge(o.extras, p.extras),
	}, nil
}

// MustNew 调用 [Schema.New] 并在失败时 panic。
func (s *Schema) MustNew(attrs map[string]any, opts ...NewOption) *Config {
	cfg, err := s.New(attrs, opts...)
	if err != nil {
		panic(fmt.Sprintf("llmconfig: failed to construct %s: %v", s.name, err))
	}

	return cfg
}

// Schema 返回实例所属 schema。
func (c *Config) Schema() *Schema { return c.schema }

// Generation 返回 generation 实例。
func (c *Config) Generation() *GenerationConfig { return c.generation }

// Value 返回主字段的值。
func (c *Config) Value(name string) (any, bool) {
	v, ok := c.values[name]
	return copyValue(v), ok
}

// Values 返回全部主字段值的副本。
func (c *Config) Values() map[string]any {
	return Merge(nil, c.values)
}

// Extra 返回 extras 中的值。
func (c *Config) Extra(name string) (any, bool) {
	v, ok := c.extras[name]
	return copyValue(v), ok
}

// Extras 返回 extras 的副本。
func (c *Config) Extras() map[string]any {
	return Merge(nil, c.extras)
}

// Get 依次在主字段、generation 字段、extras 中查找 name。
func (c *Config) Get(name string) (any, bool) {
	if v, ok := c.Value(name); ok {
		return v, true
	}
	if v, ok := c.generation.Get(name); ok {
		return v, true
	}

	return c.Extra(name)
}

// WithGeneration 返回替换了 generation 实例的新实例。
//
// generation 必须来自同一 schema 的子 schema。
func (c *Config) WithGeneration(generation *GenerationConfig) (*Config, error) {
	if generation == nil || generation.schema != c.schema.generation {
		return nil, fmt.Errorf("%w: %s expects a %s", ErrTypeMismatch, c.schema.name, c.schema.generation.name)
	}

	out := *c
	out.generation = generation

	return &out, nil
}

// Evolve 返回应用 changes 后的新实例，原实例不变。
//
// changes 的分桶规则与 [Schema.New] 相同：generation 字段覆盖到当前 generation 实例之上，
// 未识别的 key 并入 extras。
func (c *Config) Evolve(changes map[string]any) (*Config, error) {
	explicit, err := explicitGeneration(changes, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.schema.name, err)
	}
	p := c.schema.partition(changes, explicit)

	attrs := maps.Clone(c.values)
	maps.Copy(attrs, p.primary)
	generation := c.generation.ToMap()
	maps.Copy(generation, p.generation)

	return c.schema.New(attrs,
		WithGenerationConfig(generation),
		WithExtras(Merge(c.extras, p.extras)),
	)
}

// Equal 报告两个实例是否属于同一 schema 且主字段、generation、extras 全部相等。
func (c *Config) Equal(other *Config) bool {
	if c == nil || other == nil {
		return c == other
	}

	return c.schema == other.schema &&
		equalValues(c.values, other.values) &&
		c.generation.Equal(other.generation) &&
		equalValues(c.extras, other.extras)
}

func (c *Config) String() string {
	return formatInstance(c.schema.name, c.schema.fields, c.values,
		GenerationConfigKey+"="+c.generation.String())
}
