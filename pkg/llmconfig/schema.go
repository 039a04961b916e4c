package llmconfig

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"
)

// NameType 决定如何从 schema 名称派生模型名。
type NameType string

const (
	// NameDasherize FlanT5Config → model_name flan_t5, start_name flan-t5。
	NameDasherize NameType = "dasherize"
	// NameLowercase ChatGLMConfig → model_name chatglm, start_name chatglm。
	NameLowercase NameType = "lowercase"
)

// ModelMeta 模型元数据。
//
// 具体 (非 Abstract) schema 必须提供 DefaultID 与 ModelIDs，其余字段缺省时自动填充。
type ModelMeta struct {
	DefaultID          string
	ModelIDs           []string
	URL                string
	RequiresGPU        bool
	TrustRemoteCode    bool
	Requirements       []string
	NameType           NameType
	ModelName          string
	StartName          string
	Timeout            time.Duration
	WorkersPerResource float64
}

// Definition 描述一个待注册的 schema。
type Definition struct {
	// Name schema 名称，如 FlanT5Config。
	Name string
	Meta ModelMeta
	// Fields 自身声明的字段，顺序即声明顺序。
	Fields []Field
	// Bases 祖先 schema，按就近优先列出。
	Bases []*Schema
	// Generation generation 子 schema 的覆盖块，key 为字段名。
	Generation map[string]any
	// Abstract 为 true 时不要求 DefaultID 与 ModelIDs，用于仅供继承的基础 schema。
	Abstract bool
}

// Schema 是构建完成的配置 schema，构建后只读，可在 goroutine 间共享。
type Schema struct {
	name       string
	meta       ModelMeta
	declared   []Field // 自身声明 (未绑定环境变量)，供子 schema 继承
	fields     []Field
	index      map[string]int
	lineage    []*Schema
	generation *GenerationSchema
	env        envSource
	// OPENLLM_<MODEL>_CONFIG 在构建时的原始值
	configEnv    string
	hasConfigEnv bool
}

// Define 构建 schema。
//
// 构建过程：
//  1. 校验元数据并派生 model_name / start_name
//  2. 收集自身字段与继承字段 (同名字段以最接近的声明为准)
//  3. 检查必填字段顺序，主字段不能与 generation 字段同名
//  4. 读取环境变量 OPENLLM_<MODEL>_<FIELD> 解析有效默认值
//  5. 记录 OPENLLM_<MODEL>_CONFIG，构建 generation 子 schema
//
// 任何一步失败都返回错误，不会产生部分构建的 schema。
// schema 应在启动阶段构建，之后再启动工作 goroutine。
func Define(def Definition, opts ...Option) (*Schema, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	if def.Name == "" {
		return nil, fmt.Errorf("%w: schema name is required", ErrSchemaDefinition)
	}

	env, err := o.envSource()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSchemaDefinition, def.Name, err)
	}

	meta, err := resolveMeta(def.Name, def.Meta, def.Abstract)
	if err != nil {
		return nil, err
	}

	own, err := collectOwn(def.Name, def.Fields)
	if err != nil {
		return nil, err
	}

	s := &Schema{
		name:     def.Name,
		meta:     meta,
		declared: own,
		lineage:  linearize(def.Bases),
		env:      env,
	}

	taken := make(map[string]bool, len(own))
	for _, f := range own {
		taken[f.Name] = true
	}
	fields := append(slices.Clone(own), collectInherited(s.lineage, taken)...)
	if err := checkOrder(def.Name, fields); err != nil {
		return nil, err
	}

	base := o.baseGeneration
	if base == nil {
		base = DefaultGenerationFields()
	}
	if err := checkDisjoint(def.Name, fields, base); err != nil {
		return nil, err
	}

	s.index = make(map[string]int, len(fields))
	for i, f := range fields {
		bound, err := bindField(f, s.EnvKey(f.Name), env, nil, false)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", def.Name, err)
		}
		fields[i] = bound
		s.index[f.Name] = i
	}
	s.fields = fields
	s.configEnv, s.hasConfigEnv = env.get(s.ConfigEnvKey())

	if s.generation, err = buildGeneration(s, base, def.Generation); err != nil {
		return nil, err
	}

	slog.Debug("Defined schema", "schema", s.name, "model", s.meta.ModelName,
		"fields", len(s.fields), "generationFields", len(s.generation.fields))

	return s, nil
}

// MustDefine 调用 [Define] 并在失败时 panic，适合包级变量初始化。
func MustDefine(def Definition, opts ...Option) *Schema {
	s, err := Define(def, opts...)
	if err != nil {
		panic(fmt.Sprintf("llmconfig: failed to define schema: %v", err))
	}

	return s
}

func resolveMeta(name string, meta ModelMeta, abstract bool) (ModelMeta, error) {
	if !abstract {
		if meta.DefaultID == "" {
			return meta, fmt.Errorf("%w: %s: default_id is required", ErrSchemaDefinition, name)
		}
		if meta.ModelIDs == nil {
			return meta, fmt.Errorf("%w: %s: model_ids is required", ErrSchemaDefinition, name)
		}
	}

	stripped := strings.ReplaceAll(name, "Config", "")
	if meta.NameType == "" {
		meta.NameType = NameDasherize
	}

	var modelName, startName string
	switch meta.NameType {
	case NameDasherize:
		modelName = Underscore(stripped)
		startName = Dasherize(modelName)
	case NameLowercase:
		modelName = strings.ToLower(stripped)
		startName = modelName
	default:
		return meta, fmt.Errorf("%w: %s: unknown name type %q", ErrSchemaDefinition, name, meta.NameType)
	}

	if meta.ModelName == "" {
		meta.ModelName = modelName
	}
	if meta.StartName == "" {
		meta.StartName = startName
	}
	if meta.URL == "" {
		meta.URL = "(not provided)"
	}
	if meta.Requirements == nil {
		meta.Requirements = []string{}
	}
	if meta.Timeout == 0 {
		meta.Timeout = 3600 * time.Second
	}
	if meta.WorkersPerResource == 0 {
		meta.WorkersPerResource = 1
	}
	meta.ModelIDs = slices.Clone(meta.ModelIDs)
	meta.Requirements = slices.Clone(meta.Requirements)

	return meta, nil
}

// Name 返回 schema 名称。
func (s *Schema) Name() string { return s.name }

// ModelName 返回规范化的模型名，用于环境变量与 CLI 标识。
func (s *Schema) ModelName() string { return s.meta.ModelName }

// StartName 返回启动命令使用的模型名。
func (s *Schema) StartName() string { return s.meta.StartName }

// Meta 返回模型元数据的副本。
func (s *Schema) Meta() ModelMeta {
	meta := s.meta
	meta.ModelIDs = slices.Clone(s.meta.ModelIDs)
	meta.Requirements = slices.Clone(s.meta.Requirements)

	return meta
}

// Fields 返回最终字段表：自身字段在前，继承字段在后。
func (s *Schema) Fields() []Field { return slices.Clone(s.fields) }

// OwnFields 返回自身声明的字段名。
func (s *Schema) OwnFields() []string {
	names := make([]string, len(s.declared))
	for i, f := range s.declared {
		names[i] = f.Name
	}

	return names
}

// Field 按名称查找字段。
func (s *Schema) Field(name string) (Field, bool) {
	i, ok := s.index[name]
	if !ok {
		return Field{}, false
	}

	return s.fields[i], true
}

// Generation 返回 generation 子 schema。
func (s *Schema) Generation() *GenerationSchema { return s.generation }

// EnvKey 返回字段对应的环境变量名 OPENLLM_<MODEL>_<FIELD>。
func (s *Schema) EnvKey(field string) string {
	return envKey(s.meta.ModelName, field)
}

// ConfigEnvKey 返回整体覆盖配置的环境变量名 OPENLLM_<MODEL>_CONFIG。
func (s *Schema) ConfigEnvKey() string {
	return envKey(s.meta.ModelName, "config")
}

// AcceptedKeys 返回主字段与 generation 字段名的并集，按字母排序。
func (s *Schema) AcceptedKeys() []string {
	keys := make([]string, 0, len(s.fields)+len(s.generation.fields))
	for _, f := range s.fields {
		keys = append(keys, f.Name)
	}
	for _, f := range s.generation.fields {
		if _, ok := s.index[f.Name]; !ok {
			keys = append(keys, f.Name)
		}
	}
	slices.Sort(keys)

	return keys
}

func (s *Schema) hasField(name string) bool {
	_, ok := s.index[name]
	return ok
}
