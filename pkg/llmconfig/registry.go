package llmconfig

import (
	"fmt"
	"slices"
	"strings"
	"sync"
)

// Registry 按模型名索引已构建的 schema。
type Registry struct {
	mu      sync.RWMutex
	schemas map[string]*Schema
}

// NewRegistry 创建空的 Registry。
func NewRegistry() *Registry {
	return &Registry{schemas: make(map[string]*Schema)}
}

// Register 注册 schema，模型名重复时返回 [ErrSchemaDefinition]。
func (r *Registry) Register(s *Schema) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.schemas[s.meta.ModelName]; ok {
		return fmt.Errorf("%w: model %q already registered by %s", ErrSchemaDefinition, s.meta.ModelName, existing.name)
	}
	r.schemas[s.meta.ModelName] = s

	return nil
}

// Lookup 按模型名、启动名或 schema 名查找，大小写不敏感。
func (r *Registry) Lookup(name string) (*Schema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if s, ok := r.schemas[name]; ok {
		return s, true
	}
	for _, s := range r.schemas {
		if strings.EqualFold(s.meta.ModelName, name) ||
			strings.EqualFold(s.meta.StartName, name) ||
			strings.EqualFold(s.name, name) {
			return s, true
		}
	}

	return nil, false
}

// Schemas 返回全部 schema，按模型名排序。
func (r *Registry) Schemas() []*Schema {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Schema, 0, len(r.schemas))
	for _, s := range r.schemas {
		out = append(out, s)
	}
	slices.SortFunc(out, func(a, b *Schema) int {
		return strings.Compare(a.meta.ModelName, b.meta.ModelName)
	})

	return out
}

var defaultRegistry = NewRegistry()

// Register 注册到默认 Registry。
func Register(s *Schema) error { return defaultRegistry.Register(s) }

// MustRegister 注册到默认 Registry，失败时 panic。
func MustRegister(s *Schema) *Schema {
	if err := defaultRegistry.Register(s); err != nil {
		panic(fmt.Sprintf("llmconfig: %v", err))
	}

	return s
}

// Lookup 在默认 Registry 中查找。
func Lookup(name string) (*Schema, bool) { return defaultRegistry.Lookup(name) }

// Schemas 返回默认 Registry 中的全部 schema。
func Schemas() []*Schema { return defaultRegistry.Schemas() }
