package llmconfig

import (
	"regexp"
	"strings"
)

var (
	acronymBoundary = regexp.MustCompile(`([A-Z]+)([A-Z][a-z])`)
	wordBoundary    = regexp.MustCompile(`([a-z\d])([A-Z])`)
	envKeyReplacer  = strings.NewReplacer(".", "_", "-", "_")
)

// Underscore 将驼峰命名转为小写下划线形式。
//
//   - FlanT5 → flan_t5
//   - DollyV2 → dolly_v2
//   - ChatGLM → chat_glm
func Underscore(s string) string {
	s = acronymBoundary.ReplaceAllString(s, "${1}_${2}")
	s = wordBoundary.ReplaceAllString(s, "${1}_${2}")

	return strings.ToLower(strings.ReplaceAll(s, "-", "_"))
}

// Dasherize 将下划线替换为连字符。
func Dasherize(s string) string {
	return strings.ReplaceAll(s, "_", "-")
}

// envKey 拼接环境变量名：OPENLLM_<MODEL>_<PARTS...>，统一大写。
func envKey(modelName string, parts ...string) string {
	key := "OPENLLM_" + modelName
	for _, part := range parts {
		key += "_" + part
	}

	return strings.ToUpper(envKeyReplacer.Replace(key))
}
