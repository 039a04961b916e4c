package llmconfig

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/mohae/deepcopy"

	"github.com/lwmacct/251207-go-pkg-llmconfig/pkg/cfgm"
)

// resolveValues 按字段表解析实例值：显式值 (非 nil) 优先，否则使用有效默认值。
func resolveValues(owner string, fields []Field, given map[string]any) (map[string]any, error) {
	values := make(map[string]any, len(fields))
	for _, f := range fields {
		raw, ok := given[f.Name]
		if !ok || raw == nil {
			if f.Mandatory() {
				return nil, fmt.Errorf("%w: %s.%s (pass it explicitly or set %s)", ErrMissingValue, owner, f.Name, f.EnvKey)
			}
			values[f.Name] = copyValue(f.Default)

			continue
		}

		val, err := f.Type.Convert(raw)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", owner, f.Name, err)
		}
		if err := f.check(val); err != nil {
			return nil, fmt.Errorf("%s: %w", owner, err)
		}
		values[f.Name] = copyValue(val)
	}

	return values, nil
}

// copyValue 复制 mapping 与切片容器，其他值 (结构体、指针等) 原样保留。
func copyValue(v any) any {
	switch typed := v.(type) {
	case nil:
		return nil
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, val := range typed {
			out[key] = copyValue(val)
		}

		return out
	case []any:
		out := make([]any, len(typed))
		for i, val := range typed {
			out[i] = copyValue(val)
		}

		return out
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array:
		if plainData(rv.Type()) {
			return deepcopy.Copy(v)
		}
	}

	return v
}

// plainData 报告 typ 是否只由标量、切片、数组与 map 组成。
func plainData(typ reflect.Type) bool {
	switch typ.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	case reflect.Slice, reflect.Array:
		return plainData(typ.Elem())
	case reflect.Map:
		return plainData(typ.Key()) && plainData(typ.Elem())
	default:
		return false
	}
}

// exportAll 让 cmp 比较 extras 中结构体的未导出字段。
var exportAll = cmp.Exporter(func(reflect.Type) bool { return true })

func equalValues(a, b map[string]any) bool {
	return cmp.Equal(a, b, cmpopts.EquateEmpty(), exportAll)
}

// formatInstance 生成实例的展示形式：Name(field=value, ...)。
func formatInstance(name string, fields []Field, values map[string]any, extra ...string) string {
	parts := make([]string, 0, len(fields)+len(extra))
	for _, f := range fields {
		parts = append(parts, f.Name+"="+formatValue(values[f.Name]))
	}
	parts = append(parts, extra...)

	return name + "(" + strings.Join(parts, ", ") + ")"
}

func formatValue(v any) string {
	switch typed := v.(type) {
	case nil:
		return "nil"
	case string:
		return fmt.Sprintf("%q", typed)
	default:
		return fmt.Sprintf("%v", typed)
	}
}

// asMapping 将 v 视为字符串 key 的 mapping，不是 mapping 时返回 ErrTypeMismatch。
func asMapping(v any) (map[string]any, error) {
	switch typed := v.(type) {
	case map[string]any:
		return typed, nil
	case map[any]any:
		out, _ := cfgm.NormalizeKeys(typed).(map[string]any)
		return out, nil
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String {
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = iter.Value().Interface()
		}

		return out, nil
	}

	return nil, fmt.Errorf("%w: expected a mapping, got %T", ErrTypeMismatch, v)
}

// asSequence 将切片或数组展开为 []any。
func asSequence(v any) ([]any, bool) {
	if items, ok := v.([]any); ok {
		return items, true
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	items := make([]any, rv.Len())
	for i := range rv.Len() {
		items[i] = rv.Index(i).Interface()
	}

	return items, true
}
