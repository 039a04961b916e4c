// Package config 提供 llmconfig 命令行工具自身的配置。
//
// 配置加载优先级 (从低到高)：
//  1. 默认值 - DefaultConfig() 函数中定义
//  2. 配置文件 - --settings 指定，或按 .llmconfig.yaml、~/.llmconfig.yaml、/etc/llmconfig/config.yaml 查找
//  3. 环境变量 - LLMCONFIG_ 前缀，例如 LLMCONFIG_LOG_LEVEL、LLMCONFIG_ENV_FILES
//  4. CLI flags - 显式设置的 flags
//
// 模型配置本身 (OPENLLM_* 环境变量、覆盖文件) 由 pkg/llmconfig 处理。
package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/urfave/cli/v3"

	"github.com/lwmacct/251207-go-pkg-llmconfig/pkg/cfgm"
)

// AppName 用于生成配置文件搜索路径。
const AppName = "llmconfig"

// EnvPrefix 为工具自身配置的环境变量前缀。
const EnvPrefix = "LLMCONFIG_"

// Config 命令行工具配置。
type Config struct {
	Log    LogConfig    `json:"log" desc:"日志配置"`
	Output OutputConfig `json:"output" desc:"输出配置"`
	// EnvFiles 按顺序读取，后读取的文件覆盖先读取的文件，进程环境变量始终优先。
	EnvFiles []string `json:"env-files" flag:"env-file" desc:".env 文件列表"`
}

// LogConfig 日志配置。
type LogConfig struct {
	Level  string `json:"level" desc:"日志级别 (debug/info/warn/error)" validate:"oneof=debug info warn error"`
	Format string `json:"format" desc:"日志格式 (text/json)" validate:"oneof=text json"`
}

// OutputConfig 输出配置。
type OutputConfig struct {
	Format  string `json:"format" flag:"output" desc:"输出格式 (yaml/json)" validate:"oneof=yaml json"`
	Flatten bool   `json:"flatten" flag:"flatten" desc:"generation 字段合并到顶层"`
}

// DefaultConfig 返回默认配置。
// 注意：internal/command/command.go 中的 Defaults 变量引用此函数以实现单一配置来源。
func DefaultConfig() Config {
	return Config{
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
		Output: OutputConfig{
			Format: "yaml",
		},
	}
}

// Flag 名称，与 Config 字段的 flag tag 一致。
const (
	FlagLogLevel      = "log-level"
	FlagLogFormat     = "log-format"
	FlagEnvFile       = "env-file"
	FlagOutputFormat  = "output"
	FlagOutputFlatten = "flatten"
	// FlagSettings 指定工具配置文件，不对应 Config 字段。
	FlagSettings = "settings"
)

var validate = validator.New()

// Load 按 默认值 < 配置文件 < LLMCONFIG_ 环境变量 < flags 的顺序加载配置并校验。
//
// --settings 指定的文件必须存在；未指定时按默认路径查找，找不到则跳过。
// opts 追加在内置选项之后，可用于替换环境变量来源。
func Load(cmd *cli.Command, opts ...cfgm.Option) (Config, error) {
	base := []cfgm.Option{
		cfgm.WithCommand(cmd),
		cfgm.WithEnvPrefix(EnvPrefix),
	}
	if path := cmd.String(FlagSettings); path != "" {
		base = append(base, cfgm.WithConfigFile(path))
	} else {
		base = append(base, cfgm.WithConfigPaths(cfgm.DefaultPaths(AppName)...))
	}

	cfg, err := cfgm.Load(DefaultConfig(), append(base, opts...)...)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return *cfg, err
	}

	return *cfg, nil
}

// Validate 校验枚举取值。
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	return nil
}
