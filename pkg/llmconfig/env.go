package llmconfig

import (
	"fmt"
	"log/slog"
)

// envSource 是 schema 构建时读取的环境变量来源。
//
// 进程环境优先，.env 文件中的值仅作为后备。
type envSource struct {
	lookup func(string) (string, bool)
	dotenv map[string]string
}

func (e envSource) get(key string) (string, bool) {
	if e.lookup != nil {
		if val, ok := e.lookup(key); ok && val != "" {
			return val, true
		}
	}
	if val, ok := e.dotenv[key]; ok && val != "" {
		return val, true
	}

	return "", false
}

// bindField 为字段设置环境变量名并解析有效默认值。
//
// 优先级 (从高到低)：
//  1. override - 显式覆盖值 (generation 覆盖块)
//  2. 环境变量 - 只读取一次，按声明类型解析
//  3. 声明的默认值
func bindField(f Field, key string, env envSource, override any, hasOverride bool) (Field, error) {
	f.EnvKey = key

	if hasOverride {
		val, err := f.Type.Convert(override)
		if err != nil {
			return f, fmt.Errorf("%w: override for %q: %w", ErrSchemaDefinition, f.Name, err)
		}
		if err := f.check(val); err != nil {
			return f, fmt.Errorf("%w: override: %w", ErrSchemaDefinition, err)
		}
		f.Default, f.HasDefault = val, true

		return f, nil
	}

	raw, ok := env.get(key)
	if !ok {
		return f, nil
	}
	val, err := f.Type.Convert(raw)
	if err != nil {
		return f, fmt.Errorf("%w: %s=%q: %w", ErrEnvParse, key, raw, err)
	}
	if err := f.check(val); err != nil {
		return f, fmt.Errorf("%s: %w", key, err)
	}
	f.Default, f.HasDefault = val, true
	slog.Debug("Loaded env binding", "env", key, "field", f.Name)

	return f, nil
}
