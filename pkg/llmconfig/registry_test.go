package llmconfig_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lwmacct/251207-go-pkg-llmconfig/pkg/llmconfig"
)

func TestRegistry(t *testing.T) {
	r := llmconfig.NewRegistry()
	flan := llmconfig.MustDefine(llmconfig.Definition{Name: "FlanT5Config", Meta: testMeta()}, envLookup(nil))
	chat := llmconfig.MustDefine(llmconfig.Definition{Name: "ChatGLMConfig", Meta: llmconfig.ModelMeta{
		DefaultID: "x", ModelIDs: []string{"x"}, NameType: llmconfig.NameLowercase,
	}}, envLookup(nil))

	require.NoError(t, r.Register(flan))
	require.NoError(t, r.Register(chat))

	err := r.Register(flan)
	require.ErrorIs(t, err, llmconfig.ErrSchemaDefinition)

	for _, name := range []string{"flan_t5", "flan-t5", "FlanT5Config", "FLAN-T5"} {
		got, ok := r.Lookup(name)
		assert.True(t, ok, name)
		assert.Same(t, flan, got, name)
	}
	_, ok := r.Lookup("llama")
	assert.False(t, ok)

	schemas := r.Schemas()
	require.Len(t, schemas, 2)
	assert.Equal(t, "chatglm", schemas[0].ModelName())
	assert.Equal(t, "flan_t5", schemas[1].ModelName())
}

func TestRegistry_Concurrent(t *testing.T) {
	r := llmconfig.NewRegistry()
	names := []string{"AlphaConfig", "BetaConfig", "GammaConfig", "DeltaConfig"}

	var wg sync.WaitGroup
	for _, name := range names {
		s := llmconfig.MustDefine(llmconfig.Definition{Name: name, Meta: testMeta()}, envLookup(nil))
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, r.Register(s))
			_, ok := r.Lookup(s.ModelName())
			assert.True(t, ok)
		}()
	}
	wg.Wait()

	assert.Len(t, r.Schemas(), len(names))
}

func TestCheckGPU(t *testing.T) {
	cpuOnly := llmconfig.MustDefine(llmconfig.Definition{Name: "SmallConfig", Meta: testMeta()}, envLookup(nil))
	meta := testMeta()
	meta.RequiresGPU = true
	gpuOnly := llmconfig.MustDefine(llmconfig.Definition{Name: "BigConfig", Meta: meta}, envLookup(nil))

	noGPU := llmconfig.GPUProbeFunc(func(llmconfig.Framework) int { return 0 })
	twoGPUs := llmconfig.GPUProbeFunc(func(fw llmconfig.Framework) int {
		if fw == llmconfig.PyTorch {
			return 2
		}
		return 0
	})

	tests := []struct {
		name      string
		schema    *llmconfig.Schema
		probe     llmconfig.GPUProbe
		framework llmconfig.Framework
		force     bool
		errMsg    string
	}{
		{name: "not required", schema: cpuOnly, probe: noGPU, framework: llmconfig.PyTorch},
		{name: "nil probe not required", schema: cpuOnly, framework: llmconfig.PyTorch},
		{name: "required and available", schema: gpuOnly, probe: twoGPUs, framework: llmconfig.PyTorch},
		{name: "required but framework has none", schema: gpuOnly, probe: twoGPUs, framework: llmconfig.Flax, errMsg: "BigConfig only supports running with GPU"},
		{name: "required with nil probe", schema: gpuOnly, framework: llmconfig.PyTorch, errMsg: "none available"},
		{name: "forced without gpu", schema: cpuOnly, probe: noGPU, framework: llmconfig.TensorFlow, force: true, errMsg: "GPU is not available"},
		{name: "forced with gpu", schema: cpuOnly, probe: twoGPUs, framework: llmconfig.PyTorch, force: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.schema.CheckGPU(tt.probe, tt.framework, tt.force)
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, llmconfig.ErrResourceUnavailable)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestDefaultRegistry(t *testing.T) {
	s := llmconfig.MustDefine(llmconfig.Definition{Name: "DefaultRegistryProbeConfig", Meta: testMeta()}, envLookup(nil))

	assert.Same(t, s, llmconfig.MustRegister(s))
	assert.Panics(t, func() { llmconfig.MustRegister(s) })
	require.ErrorIs(t, llmconfig.Register(s), llmconfig.ErrSchemaDefinition)

	got, ok := llmconfig.Lookup("default-registry-probe")
	require.True(t, ok)
	assert.Same(t, s, got)
	assert.Contains(t, llmconfig.Schemas(), s)
}
