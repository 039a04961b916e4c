package llmconfig

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// Kind 字段声明类型的种类。
type Kind int

const (
	KindAny Kind = iota
	KindString
	KindBool
	KindInt
	KindFloat
	KindList
	KindMap
	KindTuple
	KindUnion
)

// Type 描述字段的声明类型。
//
// 标量类型使用包级变量 [String]、[Bool]、[Int]、[Float]、[Any]，
// 复合类型通过 [ListOf]、[MapOf]、[TupleOf]、[UnionOf] 构造。
type Type struct {
	kind  Kind
	elem  *Type
	items []*Type // tuple 的各位置类型或 union 的候选类型
}

var (
	Any    = &Type{kind: KindAny}
	String = &Type{kind: KindString}
	Bool   = &Type{kind: KindBool}
	Int    = &Type{kind: KindInt}
	Float  = &Type{kind: KindFloat}
)

// ListOf 返回元素类型为 elem 的列表类型。
func ListOf(elem *Type) *Type { return &Type{kind: KindList, elem: elem} }

// MapOf 返回 key 为字符串、值类型为 elem 的 mapping 类型。
func MapOf(elem *Type) *Type { return &Type{kind: KindMap, elem: elem} }

// TupleOf 返回定长元组类型。
func TupleOf(items ...*Type) *Type { return &Type{kind: KindTuple, items: items} }

// UnionOf 返回联合类型，转换时按声明顺序尝试各候选类型。
func UnionOf(variants ...*Type) *Type { return &Type{kind: KindUnion, items: variants} }

// Kind 返回类型种类。
func (t *Type) Kind() Kind { return t.kind }

// Elem 返回列表或 mapping 的元素类型，其他类型返回 nil。
func (t *Type) Elem() *Type { return t.elem }

// IsSequence 报告该类型是否为序列 (列表或元组)，对应 CLI 选项的 multiple。
func (t *Type) IsSequence() bool { return t.kind == KindList || t.kind == KindTuple }

func (t *Type) String() string {
	switch t.kind {
	case KindString:
		return "str"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindList:
		return "list[" + t.elem.String() + "]"
	case KindMap:
		return "dict[str, " + t.elem.String() + "]"
	case KindTuple, KindUnion:
		names := make([]string, len(t.items))
		for i, item := range t.items {
			names[i] = item.String()
		}
		prefix := "tuple"
		if t.kind == KindUnion {
			prefix = "union"
		}
		return prefix + "[" + strings.Join(names, ", ") + "]"
	default:
		return "any"
	}
}

// Convert 按声明类型解释 v，返回规范化后的值。
//
// 规范化表示：str → string，bool → bool，int → int，float → float64，
// list/tuple → []any，dict → map[string]any。
// 字符串输入 (例如环境变量) 会按类型解析；列表与 mapping 接受 JSON 文本，
// 标量元素的列表也接受逗号分隔的写法。nil 原样返回。
func (t *Type) Convert(v any) (any, error) {
	if v == nil {
		return nil, nil
	}

	switch t.kind {
	case KindString:
		var out string
		return decodeScalar(t, v, &out)
	case KindBool:
		var out bool
		return decodeScalar(t, v, &out)
	case KindInt:
		if f, ok := v.(float64); ok && f != math.Trunc(f) {
			return nil, mismatch(t, v, nil)
		}
		var out int
		return decodeScalar(t, v, &out)
	case KindFloat:
		var out float64
		return decodeScalar(t, v, &out)
	case KindList:
		items, err := t.sequence(v)
		if err != nil {
			return nil, err
		}
		out := make([]any, len(items))
		for i, item := range items {
			if out[i], err = t.elem.Convert(item); err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
		}
		return out, nil
	case KindTuple:
		items, err := t.sequence(v)
		if err != nil {
			return nil, err
		}
		if len(items) != len(t.items) {
			return nil, fmt.Errorf("%w: %s expects %d items, got %d", ErrTypeMismatch, t, len(t.items), len(items))
		}
		out := make([]any, len(items))
		for i, item := range items {
			if out[i], err = t.items[i].Convert(item); err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
		}
		return out, nil
	case KindMap:
		if s, ok := v.(string); ok {
			var decoded any
			if err := json.Unmarshal([]byte(s), &decoded); err != nil {
				return nil, mismatch(t, v, err)
			}
			v = decoded
		}
		m, err := asMapping(v)
		if err != nil {
			return nil, err
		}
		out := make(map[string]any, len(m))
		for key, item := range m {
			if out[key], err = t.elem.Convert(item); err != nil {
				return nil, fmt.Errorf("key %q: %w", key, err)
			}
		}
		return out, nil
	case KindUnion:
		for _, variant := range t.items {
			if out, err := variant.Convert(v); err == nil {
				return out, nil
			}
		}
		return nil, mismatch(t, v, nil)
	default:
		return v, nil
	}
}

// sequence 将 v 展开为元素切片，字符串输入按 JSON 数组或逗号分隔解析。
func (t *Type) sequence(v any) ([]any, error) {
	if s, ok := v.(string); ok {
		return splitSequence(s)
	}
	items, ok := asSequence(v)
	if !ok {
		return nil, mismatch(t, v, nil)
	}

	return items, nil
}

func splitSequence(s string) ([]any, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return []any{}, nil
	}
	if strings.HasPrefix(s, "[") {
		var items []any
		if err := json.Unmarshal([]byte(s), &items); err != nil {
			return nil, fmt.Errorf("%w: invalid JSON array %q: %w", ErrTypeMismatch, s, err)
		}
		return items, nil
	}

	parts := strings.Split(s, ",")
	items := make([]any, len(parts))
	for i, part := range parts {
		items[i] = strings.TrimSpace(part)
	}

	return items, nil
}

// decodeScalar 以弱类型规则解析标量，但不接受跨种类的布尔值与数字：
// 布尔值不能作为 int/float/str，数字不能作为 bool/str。字符串输入不受限制。
func decodeScalar[T any](t *Type, v any, out *T) (any, error) {
	if !scalarSource(t.kind, reflect.ValueOf(v).Kind()) {
		return nil, mismatch(t, v, nil)
	}
	if err := mapstructure.WeakDecode(v, out); err != nil {
		return nil, mismatch(t, v, err)
	}

	return *out, nil
}

func scalarSource(target Kind, source reflect.Kind) bool {
	numeric := source >= reflect.Int && source <= reflect.Float64
	switch target {
	case KindInt, KindFloat:
		return source != reflect.Bool
	case KindBool:
		return !numeric
	case KindString:
		return source != reflect.Bool && !numeric
	default:
		return true
	}
}

func mismatch(t *Type, v any, cause error) error {
	if cause != nil {
		return fmt.Errorf("%w: cannot interpret %v (%T) as %s: %w", ErrTypeMismatch, v, v, t, cause)
	}

	return fmt.Errorf("%w: cannot interpret %v (%T) as %s", ErrTypeMismatch, v, v, t)
}
