package llmconfig

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"strings"

	yamlv3 "go.yaml.in/yaml/v3"

	"github.com/lwmacct/251207-go-pkg-llmconfig/pkg/cfgm"
)

type dumpOptions struct {
	flatten bool
}

// DumpOption 导出选项。
type DumpOption func(*dumpOptions)

// Flatten 将 generation 字段合并到顶层，而不是嵌套在 generation_config 下。
func Flatten() DumpOption {
	return func(o *dumpOptions) {
		o.flatten = true
	}
}

// Dump 将实例导出为 mapping。
//
// 主字段与 extras 位于顶层，generation 字段 (仅包含非 nil 值) 默认嵌套在
// generation_config 下。导出结果交给 [Schema.Structure] 可还原出相等的实例。
func (c *Config) Dump(opts ...DumpOption) map[string]any {
	o := &dumpOptions{}
	for _, opt := range opts {
		opt(o)
	}

	out := Merge(c.extras, c.values)
	generation := c.generation.ToMap()
	if o.flatten {
		maps.Copy(out, generation)
	} else {
		out[GenerationConfigKey] = generation
	}

	return out
}

// MarshalJSON 以嵌套形式导出 JSON。
func (c *Config) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Dump())
}

// DumpJSON 以缩进 JSON 导出。
func (c *Config) DumpJSON(opts ...DumpOption) ([]byte, error) {
	return json.MarshalIndent(c.Dump(opts...), "", "  ")
}

// DumpYAML 以 YAML 导出。
func (c *Config) DumpYAML(opts ...DumpOption) ([]byte, error) {
	return yamlv3.Marshal(c.Dump(opts...))
}

// Decode 将实例解码到结构体，key 由 json tag 定义，generation 字段位于 generation_config 下。
//
// 示例：
//
//	var out struct {
//	    MaxTokens  int `json:"max_tokens"`
//	    Generation struct {
//	        Temperature float64 `json:"temperature"`
//	    } `json:"generation_config"`
//	}
//	err := cfg.Decode(&out)
func (c *Config) Decode(out any) error {
	if err := cfgm.Decode(c.Dump(), out); err != nil {
		return fmt.Errorf("decode %s: %w", c.schema.name, err)
	}

	return nil
}

// Structure 将 mapping 还原为实例。
//
// data 中的 generation_config (如果存在) 原样作为 generation 字段来源；
// 否则从顶层 key 中挑出 generation 字段。其余未识别的 key 成为 extras。
// data 不是 mapping 时返回 [ErrTypeMismatch]。
func (s *Schema) Structure(data any) (*Config, error) {
	if data == nil {
		return s.New(nil)
	}

	m, err := asMapping(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.name, err)
	}

	return s.New(m)
}

// Normalize 将 mapping 整理为嵌套形式：主字段与 extras 在顶层，generation 字段在 generation_config 下。
//
// 分桶规则与 [Schema.New] 相同。
func (s *Schema) Normalize(data map[string]any) (map[string]any, error) {
	explicit, err := explicitGeneration(data, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.name, err)
	}

	p := s.partition(data, explicit)
	out := Merge(p.extras, p.primary)
	out[GenerationConfigKey] = Merge(nil, p.generation)

	return out, nil
}

// ConstructEnv 构建遵循环境变量的实例。
//
// 如果定义 schema 时设置了 OPENLLM_<MODEL>_CONFIG (JSON 对象)，先以它为基础构建实例，
// 再应用 attrs；attrs 中的 nil 值被忽略。之后对该变量的修改不会生效。
// JSON 无法解析时返回 [ErrEnvParse]，不是对象时返回 [ErrTypeMismatch]。
func (s *Schema) ConstructEnv(attrs map[string]any) (*Config, error) {
	changes := make(map[string]any, len(attrs))
	for key, val := range attrs {
		if val != nil {
			changes[key] = val
		}
	}

	base, err := s.configFromEnv()
	if err != nil {
		return nil, err
	}
	if len(changes) == 0 {
		return base, nil
	}

	return base.Evolve(changes)
}

func (s *Schema) configFromEnv() (*Config, error) {
	if !s.hasConfigEnv {
		return s.New(nil)
	}

	key, raw := s.ConfigEnvKey(), s.configEnv

	var decoded any
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return nil, fmt.Errorf("%w: failed to parse %s as valid JSON string: %w", ErrEnvParse, key, err)
	}
	slog.Debug("Loaded config from env", "env", key, "schema", s.name)

	return s.Structure(decoded)
}

// SplitOptions 将 CLI 选项值拆分为配置 attrs 与剩余值。
//
// <model>_generation_<field> 进入 generation_config，<model>_<field> 进入顶层，
// 其他 key 原样返回在 rest 中。
func (s *Schema) SplitOptions(values map[string]any) (attrs, rest map[string]any) {
	generationPrefix := s.meta.ModelName + "_generation_"
	prefix := s.meta.ModelName + "_"

	generation := make(map[string]any)
	attrs = map[string]any{GenerationConfigKey: generation}
	rest = make(map[string]any)
	for key, val := range values {
		switch {
		case strings.HasPrefix(key, generationPrefix):
			generation[strings.TrimPrefix(key, generationPrefix)] = val
		case strings.HasPrefix(key, prefix):
			attrs[strings.TrimPrefix(key, prefix)] = val
		default:
			rest[key] = val
		}
	}

	return attrs, rest
}

// ValidateOptions 由 CLI 选项值构建实例，返回实例与不属于该 schema 的剩余值。
func (s *Schema) ValidateOptions(values map[string]any) (*Config, map[string]any, error) {
	attrs, rest := s.SplitOptions(values)
	cfg, err := s.ConstructEnv(attrs)
	if err != nil {
		return nil, nil, err
	}

	return cfg, rest, nil
}

// LoadFile 读取 YAML/JSON 覆盖文件并整理为嵌套形式 (见 [Schema.Normalize])。
//
// 文件内容在解析前做 ${VAR} 展开，变量来源与 schema 的环境变量来源相同。
func (s *Schema) LoadFile(path string) (map[string]any, error) {
	data, err := cfgm.ReadFile(path, cfgm.WithEnvLookup(s.env.get))
	if err != nil {
		return nil, err
	}
	slog.Debug("Loaded override file", "path", path, "schema", s.name)

	return s.Normalize(data)
}
