// Package options 提供查看模型命令行选项的命令。
package options

import "github.com/urfave/cli/v3"

// NewCommand 创建选项查看命令。
func NewCommand() *cli.Command {
	return &cli.Command{
		Name:      "options",
		Usage:     "显示模型的配置选项、默认值与环境变量",
		ArgsUsage: "<model>",
		Action:    action,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "yaml",
				Usage: "输出带注释的 YAML 覆盖文件示例",
			},
		},
	}
}
