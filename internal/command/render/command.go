// Package render 提供构建并输出模型配置的命令。
//
// 每个内置模型对应一个子命令，子命令的 flags 由模型 schema 投影得到。
package render

import (
	"slices"

	"github.com/urfave/cli/v3"

	"github.com/lwmacct/251207-go-pkg-llmconfig/internal/command"
	"github.com/lwmacct/251207-go-pkg-llmconfig/internal/config"
	"github.com/lwmacct/251207-go-pkg-llmconfig/pkg/llmconfig"
)

const (
	flagConfigFile = "config-file"
	flagCheckGPU   = "check-gpu"
	flagForceGPU   = "force-gpu"
	flagFramework  = "framework"
)

// commonFlags 返回所有模型子命令共用的 flags。
func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    flagConfigFile,
			Aliases: []string{"c"},
			Usage:   "YAML/JSON 覆盖文件，支持 ${VAR} 展开",
		},
		&cli.StringFlag{
			Name:  config.FlagOutputFormat,
			Value: command.Defaults.Output.Format,
			Usage: "输出格式 (yaml/json)",
		},
		&cli.BoolFlag{
			Name:  config.FlagOutputFlatten,
			Value: command.Defaults.Output.Flatten,
			Usage: "generation 字段合并到顶层输出",
		},
		&cli.BoolFlag{
			Name:  flagCheckGPU,
			Usage: "模型要求 GPU 时检查 GPU 是否可用",
		},
		&cli.BoolFlag{
			Name:  flagForceGPU,
			Usage: "无论模型是否要求都检查 GPU",
		},
		&cli.StringFlag{
			Name:  flagFramework,
			Value: string(llmconfig.PyTorch),
			Usage: "运行框架 (pt/tf/flax)，用于 GPU 检查",
		},
	}
}

// NewCommand 创建 config 命令，为 r 中的每个模型生成一个子命令。
//
// r 只用于生成 flags；执行时会按 --env-file 重新加载模型，使 .env 中的值生效。
func NewCommand(r *llmconfig.Registry) *cli.Command {
	cmd := &cli.Command{
		Name:  "config",
		Usage: "构建模型配置：默认值 → OPENLLM_* 环境变量 → 覆盖文件 → CLI flags",
	}

	for _, s := range r.Schemas() {
		cmd.Commands = append(cmd.Commands, modelCommand(s))
	}

	return cmd
}

func modelCommand(s *llmconfig.Schema) *cli.Command {
	flags := commonFlags()
	reserved := make([]string, 0, len(flags))
	for _, f := range flags {
		reserved = append(reserved, f.Names()...)
	}
	for _, f := range s.Flags() {
		if slices.ContainsFunc(f.Names(), func(name string) bool { return slices.Contains(reserved, name) }) {
			continue
		}
		flags = append(flags, f)
	}

	var aliases []string
	if s.ModelName() != s.StartName() {
		aliases = []string{s.ModelName()}
	}

	return &cli.Command{
		Name:    s.StartName(),
		Aliases: aliases,
		Usage:   "构建 " + s.Name(),
		Flags:   flags,
		Action:  action(s.ModelName()),
	}
}
