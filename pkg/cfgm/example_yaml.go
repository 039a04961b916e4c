package cfgm

import (
	"bytes"
	"fmt"
	"reflect"
	"time"

	yamlv3 "go.yaml.in/yaml/v3"
)

// ExampleYAML 根据配置结构体生成带注释的 YAML 示例。
//
// key 取自 json tag，注释取自 desc tag；嵌套结构体的注释位于 key 上方，
// 叶子字段的注释位于行尾。time.Duration 以 "30s" 形式输出。
func ExampleYAML[T any](cfg T) ([]byte, error) {
	root, err := exampleNode(reflect.ValueOf(cfg))
	if err != nil {
		return nil, err
	}

	doc := &yamlv3.Node{
		Kind:        yamlv3.DocumentNode,
		HeadComment: "配置示例文件, 复制后按需修改",
		Content:     []*yamlv3.Node{root},
	}

	var buf bytes.Buffer
	enc := yamlv3.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode example yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode example yaml: %w", err)
	}

	return buf.Bytes(), nil
}

func exampleNode(val reflect.Value) (*yamlv3.Node, error) {
	if val.Kind() == reflect.Pointer {
		val = val.Elem()
	}

	mapping := &yamlv3.Node{Kind: yamlv3.MappingNode}
	for i := range val.NumField() {
		field := val.Type().Field(i)
		key := configTagName(field)
		if key == "" {
			continue
		}
		desc := field.Tag.Get("desc")

		if isStructType(field.Type) {
			child, err := exampleNode(val.Field(i))
			if err != nil {
				return nil, err
			}
			mapping.Content = append(mapping.Content,
				&yamlv3.Node{Kind: yamlv3.ScalarNode, Value: key, HeadComment: desc},
				child,
			)

			continue
		}

		value := &yamlv3.Node{}
		raw := valueToAny(val.Field(i))
		if d, ok := val.Field(i).Interface().(time.Duration); ok {
			raw = d.String()
		}
		if raw == nil && field.Type.Kind() == reflect.Slice {
			raw = []any{}
		}
		if err := value.Encode(raw); err != nil {
			return nil, fmt.Errorf("encode %s: %w", key, err)
		}
		value.LineComment = desc
		mapping.Content = append(mapping.Content,
			&yamlv3.Node{Kind: yamlv3.ScalarNode, Value: key},
			value,
		)
	}

	return mapping, nil
}
