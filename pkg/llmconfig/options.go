package llmconfig

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// options schema 构建选项。
type options struct {
	lookup         func(string) (string, bool)
	dotenvPaths    []string
	baseGeneration []Field // nil 表示使用 DefaultGenerationFields
}

// Option schema 构建选项函数。
type Option func(*options)

// WithEnvLookup 替换环境变量读取函数，默认为 [os.LookupEnv]。
//
// 适用于测试或从其他来源注入环境：
//
//	env := map[string]string{"OPENLLM_FLAN_T5_GENERATION_TEMPERATURE": "0.2"}
//	schema, err := llmconfig.Define(def, llmconfig.WithEnvLookup(func(k string) (string, bool) {
//	    v, ok := env[k]
//	    return v, ok
//	}))
func WithEnvLookup(lookup func(string) (string, bool)) Option {
	return func(o *options) {
		o.lookup = lookup
	}
}

// WithDotenv 从 .env 文件读取后备值。
//
// 进程环境变量优先；多个文件按顺序读取，后读取的文件覆盖先读取的文件。
func WithDotenv(paths ...string) Option {
	return func(o *options) {
		o.dotenvPaths = append(o.dotenvPaths, paths...)
	}
}

// WithBaseGeneration 替换 generation 子 schema 的基础字段表。
func WithBaseGeneration(fields []Field) Option {
	return func(o *options) {
		o.baseGeneration = fields
	}
}

func (o *options) envSource() (envSource, error) {
	src := envSource{lookup: o.lookup}
	if src.lookup == nil {
		src.lookup = os.LookupEnv
	}
	if len(o.dotenvPaths) == 0 {
		return src, nil
	}

	src.dotenv = make(map[string]string)
	for _, path := range o.dotenvPaths {
		values, err := godotenv.Read(path)
		if err != nil {
			return src, fmt.Errorf("read dotenv %s: %w", path, err)
		}
		for key, val := range values {
			src.dotenv[key] = val
		}
	}

	return src, nil
}
