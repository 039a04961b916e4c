package render

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/lwmacct/251207-go-pkg-llmconfig/internal/command"
	"github.com/lwmacct/251207-go-pkg-llmconfig/internal/config"
	"github.com/lwmacct/251207-go-pkg-llmconfig/pkg/llmconfig"
)

func action(modelName string) cli.ActionFunc {
	return func(_ context.Context, cmd *cli.Command) error {
		// 合并顺序：OPENLLM_<MODEL>_CONFIG → 覆盖文件 → CLI flags
		cfg, err := config.Load(cmd)
		if err != nil {
			return err
		}

		s, err := command.LookupName(cmd, modelName)
		if err != nil {
			return err
		}

		if cmd.Bool(flagCheckGPU) || cmd.Bool(flagForceGPU) {
			framework := llmconfig.Framework(cmd.String(flagFramework))
			if err := s.CheckGPU(defaultProbe, framework, cmd.Bool(flagForceGPU)); err != nil {
				return err
			}
		}

		attrs, _ := s.SplitOptions(s.CommandValues(cmd))
		if path := cmd.String(flagConfigFile); path != "" {
			data, err := s.LoadFile(path)
			if err != nil {
				return err
			}
			attrs = llmconfig.Merge(data, attrs)
		}

		instance, err := s.ConstructEnv(attrs)
		if err != nil {
			return err
		}
		slog.Debug("Constructed config", "schema", s.Name(), "config", instance.String())

		var opts []llmconfig.DumpOption
		if cfg.Output.Flatten {
			opts = append(opts, llmconfig.Flatten())
		}

		var out []byte
		if cfg.Output.Format == "json" {
			out, err = instance.DumpJSON(opts...)
			out = append(out, '\n')
		} else {
			out, err = instance.DumpYAML(opts...)
		}
		if err != nil {
			return err
		}

		_, err = cmd.Root().Writer.Write(out)

		return err
	}
}

// deviceProbe 根据 CUDA_VISIBLE_DEVICES 与 /dev/nvidia* 设备文件估计可见 GPU 数量。
//
// 所有框架共用同一结果。
type deviceProbe struct {
	lookup func(string) (string, bool)
	glob   func(string) ([]string, error)
}

var defaultProbe = deviceProbe{lookup: os.LookupEnv, glob: filepath.Glob}

func (p deviceProbe) GPUCount(_ llmconfig.Framework) int {
	if devices, ok := p.lookup("CUDA_VISIBLE_DEVICES"); ok {
		devices = strings.TrimSpace(devices)
		if devices == "" || devices == "-1" {
			return 0
		}

		return len(strings.Split(devices, ","))
	}

	matches, err := p.glob("/dev/nvidia[0-9]*")
	if err != nil {
		return 0
	}

	return len(matches)
}
