package llmconfig

import (
	"bytes"
	"fmt"

	yamlv3 "go.yaml.in/yaml/v3"
)

// ExampleYAML 生成带注释的 YAML 示例，内容为当前有效默认值。
//
// 必填字段以 null 占位，generation 中默认值为 nil 的字段被省略。
// 生成结果可作为 [Schema.LoadFile] 的覆盖文件模板。
func (s *Schema) ExampleYAML() ([]byte, error) {
	root := &yamlv3.Node{Kind: yamlv3.MappingNode}
	for _, f := range s.fields {
		if err := appendExampleField(root, f); err != nil {
			return nil, err
		}
	}

	generation := &yamlv3.Node{Kind: yamlv3.MappingNode}
	for _, f := range s.generation.fields {
		if f.Default == nil {
			continue
		}
		if err := appendExampleField(generation, f); err != nil {
			return nil, err
		}
	}
	root.Content = append(root.Content,
		&yamlv3.Node{
			Kind:        yamlv3.ScalarNode,
			Value:       GenerationConfigKey,
			HeadComment: s.generation.name,
		},
		generation,
	)

	doc := &yamlv3.Node{
		Kind:        yamlv3.DocumentNode,
		HeadComment: fmt.Sprintf("%s 配置示例, 环境变量 %s 可整体覆盖", s.name, s.ConfigEnvKey()),
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

func appendExampleField(mapping *yamlv3.Node, f Field) error {
	value := &yamlv3.Node{}
	if err := value.Encode(f.Default); err != nil {
		return fmt.Errorf("encode default of %s: %w", f.Name, err)
	}
	value.LineComment = f.Description
	if f.Mandatory() {
		value.LineComment = "(required) " + f.Description
	}

	mapping.Content = append(mapping.Content,
		&yamlv3.Node{Kind: yamlv3.ScalarNode, Value: f.Name},
		value,
	)

	return nil
}
