// Package command 提供 llmconfig 命令行工具的公共部分。
package command

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/lwmacct/251207-go-pkg-llmconfig/internal/config"
	"github.com/lwmacct/251207-go-pkg-llmconfig/internal/logger"
	"github.com/lwmacct/251207-go-pkg-llmconfig/internal/models"
	"github.com/lwmacct/251207-go-pkg-llmconfig/pkg/llmconfig"
)

// Defaults 为默认配置的单一来源。
var Defaults = config.DefaultConfig()

// GlobalFlags 返回根命令上的全局 flags。
func GlobalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  config.FlagSettings,
			Usage: "工具配置文件 (YAML/JSON)，未指定时查找 .llmconfig.yaml 等默认路径",
		},
		&cli.StringFlag{
			Name:  config.FlagLogLevel,
			Value: Defaults.Log.Level,
			Usage: "日志级别 (debug/info/warn/error)，环境变量 LLMCONFIG_LOG_LEVEL",
		},
		&cli.StringFlag{
			Name:  config.FlagLogFormat,
			Value: Defaults.Log.Format,
			Usage: "日志格式 (text/json)，环境变量 LLMCONFIG_LOG_FORMAT",
		},
		&cli.StringSliceFlag{
			Name:  config.FlagEnvFile,
			Usage: ".env 文件，作为 OPENLLM_* 环境变量的后备来源，环境变量 LLMCONFIG_ENV_FILES (逗号分隔)",
		},
	}
}

// Before 根据全局 flags 初始化日志。
func Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	cfg, err := config.Load(cmd)
	if err != nil {
		return ctx, err
	}
	logger.Setup(cmd.Root().ErrWriter, cfg.Log)

	return ctx, nil
}

// Registry 按当前配置加载内置模型，--env-file 指定的文件作为环境变量后备。
func Registry(cmd *cli.Command) (*llmconfig.Registry, error) {
	cfg, err := config.Load(cmd)
	if err != nil {
		return nil, err
	}

	var opts []llmconfig.Option
	if len(cfg.EnvFiles) > 0 {
		opts = append(opts, llmconfig.WithDotenv(cfg.EnvFiles...))
	}

	return models.Load(opts...)
}

// Lookup 加载内置模型并按名称查找，名称取自第一个位置参数。
func Lookup(cmd *cli.Command) (*llmconfig.Schema, error) {
	name := cmd.Args().First()
	if name == "" {
		return nil, fmt.Errorf("model name is required")
	}

	return LookupName(cmd, name)
}

// LookupName 加载内置模型并按 name 查找。
func LookupName(cmd *cli.Command, name string) (*llmconfig.Schema, error) {
	r, err := Registry(cmd)
	if err != nil {
		return nil, err
	}

	s, ok := r.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("unknown model %q", name)
	}

	return s, nil
}
