package cfgm

import "github.com/urfave/cli/v3"

// options 配置加载选项。
type options struct {
	cmd                 *cli.Command
	configPaths         []string
	configFile          string // 显式指定的配置文件，不存在时报错
	envPrefix           string
	lookup              func(string) (string, bool)
	noTemplateExpansion bool // 是否禁用配置文件模板展开（默认启用）
}

// Option 配置加载选项函数。
type Option func(*options)

func newOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	return o
}

// WithCommand 绑定 CLI 命令，读取显式设置的 flags 以覆盖配置（最高优先级）。
func WithCommand(cmd *cli.Command) Option {
	return func(o *options) {
		o.cmd = cmd
	}
}

// WithConfigPaths 设置配置文件搜索路径。
//
// 按顺序查找，命中首个文件即停止；全部不存在时使用默认值。
func WithConfigPaths(paths ...string) Option {
	return func(o *options) {
		o.configPaths = paths
	}
}

// WithConfigFile 指定唯一的配置文件，文件不存在或无法解析时 [Load] 返回错误。
//
// 设置后 [WithConfigPaths] 不再生效。空字符串等同于未设置。
func WithConfigFile(path string) Option {
	return func(o *options) {
		o.configFile = path
	}
}

// WithEnvPrefix 启用环境变量前缀解析。
//
// 环境变量命名规则：
//   - 前缀 + 大写的配置 key
//   - 点号 (.) 和连字符 (-) 转为下划线 (_)
//
// 示例 (前缀为 "MYAPP_")：
//   - MYAPP_LOG_LEVEL → log.level
//   - MYAPP_ENV_FILES → env-files (切片按逗号拆分)
func WithEnvPrefix(prefix string) Option {
	return func(o *options) {
		o.envPrefix = prefix
	}
}

// WithEnvLookup 替换环境变量来源，默认为 os.LookupEnv。
//
// 同时作用于前缀环境变量与配置文件中的 ${VAR} 展开。
func WithEnvLookup(lookup func(string) (string, bool)) Option {
	return func(o *options) {
		o.lookup = lookup
	}
}

// WithoutTemplateExpansion 禁用配置文件的模板展开。
//
// 默认会执行 Shell 参数展开（如 ${VAR:-default}）。
// 该选项会保留原始 ${...} 字符串。
func WithoutTemplateExpansion() Option {
	return func(o *options) {
		o.noTemplateExpansion = true
	}
}
