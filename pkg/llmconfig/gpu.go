package llmconfig

import (
	"fmt"
	"log/slog"
)

// Framework 模型运行框架。
type Framework string

const (
	PyTorch    Framework = "pt"
	TensorFlow Framework = "tf"
	Flax       Framework = "flax"
)

// GPUProbe 报告指定框架可见的 GPU 数量。探测实现由调用方提供。
type GPUProbe interface {
	GPUCount(framework Framework) int
}

// GPUProbeFunc 将函数适配为 [GPUProbe]。
type GPUProbeFunc func(framework Framework) int

// GPUCount implements [GPUProbe].
func (f GPUProbeFunc) GPUCount(framework Framework) int { return f(framework) }

// CheckGPU 检查模型的 GPU 要求。
//
// 仅当模型声明 RequiresGPU 或 force 为 true 时才探测；探测不到 GPU 时返回 [ErrResourceUnavailable]。
// 该检查按需调用，不在 schema 或实例构建时执行。
func (s *Schema) CheckGPU(probe GPUProbe, framework Framework, force bool) error {
	if !s.meta.RequiresGPU && !force {
		slog.Debug("Model doesn't require GPU by default; pass force to check anyway", "schema", s.name)

		return nil
	}

	if probe != nil && probe.GPUCount(framework) > 0 {
		return nil
	}
	if force {
		return fmt.Errorf("%w: GPU is not available", ErrResourceUnavailable)
	}

	return fmt.Errorf("%w: %s only supports running with GPU (none available)", ErrResourceUnavailable, s.name)
}
