package llmconfig

import (
	"fmt"
	"strings"
)

// collectOwn 校验 schema 自身声明的字段，保持声明顺序。
func collectOwn(owner string, declared []Field) ([]Field, error) {
	var missing []string
	for _, f := range declared {
		if f.Type == nil {
			missing = append(missing, f.Name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s: the following field doesn't have a type annotation: %s",
			ErrSchemaDefinition, owner, strings.Join(missing, ", "))
	}

	own := make([]Field, 0, len(declared))
	seen := make(map[string]bool, len(declared))
	for _, f := range declared {
		if seen[f.Name] {
			return nil, fmt.Errorf("%w: %s: field %q declared twice", ErrSchemaDefinition, owner, f.Name)
		}
		seen[f.Name] = true

		prepared, err := f.prepare(owner)
		if err != nil {
			return nil, err
		}
		own = append(own, prepared)
	}

	return own, nil
}

// linearize 展开祖先链，顺序为从根到最近的祖先。
//
// bases 按就近优先列出 (bases[0] 最接近当前 schema)，
// 同一祖先经多条路径出现时只保留首次出现的位置。
func linearize(bases []*Schema) []*Schema {
	var chain []*Schema
	for i := len(bases) - 1; i >= 0; i-- {
		chain = append(chain, bases[i].lineage...)
		chain = append(chain, bases[i])
	}

	seen := make(map[*Schema]bool, len(chain))
	out := make([]*Schema, 0, len(chain))
	for _, s := range chain {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}

	return out
}

// collectInherited 从根到最近的祖先收集继承字段，跳过 taken 中已由当前 schema 定义的名称。
//
// 同名字段只保留最接近当前 schema 的声明，其位置以该声明出现的位置为准。
func collectInherited(lineage []*Schema, taken map[string]bool) []Field {
	var collected []Field
	for _, base := range lineage {
		for _, f := range base.declared {
			if taken[f.Name] {
				continue
			}
			collected = append(collected, f)
		}
	}

	seen := make(map[string]bool, len(collected))
	filtered := make([]Field, 0, len(collected))
	for i := len(collected) - 1; i >= 0; i-- {
		if seen[collected[i].Name] {
			continue
		}
		seen[collected[i].Name] = true
		filtered = append(filtered, collected[i])
	}
	for i, j := 0, len(filtered)-1; i < j; i, j = i+1, j-1 {
		filtered[i], filtered[j] = filtered[j], filtered[i]
	}

	return filtered
}

// checkOrder 检查非 keyword-only 字段中没有必填字段出现在有默认值的字段之后。
func checkOrder(owner string, fields []Field) error {
	hadDefault := false
	for _, f := range fields {
		if f.KeywordOnly {
			continue
		}
		if hadDefault && f.Mandatory() {
			return fmt.Errorf("%w: %s: invalid field order: no mandatory field allowed after a field with a default value, field in question: %q",
				ErrSchemaDefinition, owner, f.Name)
		}
		if f.HasDefault {
			hadDefault = true
		}
	}

	return nil
}

// checkDisjoint 检查主字段与 generation 字段没有同名字段。
func checkDisjoint(owner string, fields, generation []Field) error {
	names := make(map[string]bool, len(generation))
	for _, f := range generation {
		names[f.Name] = true
	}

	var shared []string
	for _, f := range fields {
		if names[f.Name] {
			shared = append(shared, f.Name)
		}
	}
	if len(shared) > 0 {
		return fmt.Errorf("%w: %s: fields also declared as generation fields: %s",
			ErrSchemaDefinition, owner, strings.Join(shared, ", "))
	}

	return nil
}
