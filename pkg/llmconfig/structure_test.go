package llmconfig_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lwmacct/251207-go-pkg-llmconfig/pkg/llmconfig"
)

func TestDump(t *testing.T) {
	s := exampleSchema(t, nil)
	cfg := s.MustNew(map[string]any{"max_tokens": 3, "temperature": 0.5, "foo": "bar"})

	assert.Equal(t, map[string]any{
		"max_tokens": 3,
		"foo":        "bar",
		llmconfig.GenerationConfigKey: map[string]any{
			"temperature": 0.5,
			"top_k":       50,
		},
	}, cfg.Dump())

	assert.Equal(t, map[string]any{
		"max_tokens":  3,
		"foo":         "bar",
		"temperature": 0.5,
		"top_k":       50,
	}, cfg.Dump(llmconfig.Flatten()))
}

func TestStructure_RoundTrip(t *testing.T) {
	s := exampleSchema(t, nil)

	inputs := map[string]map[string]any{
		"defaults":   nil,
		"primary":    {"max_tokens": 8},
		"generation": {"temperature": 0.1, "stop": []any{"\n"}},
		"extras":     {"foo": map[string]any{"bar": []any{1, 2}}},
		"everything": {"max_tokens": 8, "top_k": 2, "foo": "x"},
	}

	for name, attrs := range inputs {
		t.Run(name, func(t *testing.T) {
			cfg, err := s.New(attrs)
			require.NoError(t, err)

			nested, err := s.Structure(cfg.Dump())
			require.NoError(t, err)
			assert.True(t, cfg.Equal(nested), "nested: %s != %s", cfg, nested)

			flat, err := s.Structure(cfg.Dump(llmconfig.Flatten()))
			require.NoError(t, err)
			assert.True(t, cfg.Equal(flat), "flat: %s != %s", cfg, flat)
		})
	}
}

func TestStructure_Inputs(t *testing.T) {
	s := exampleSchema(t, nil)

	cfg, err := s.Structure(nil)
	require.NoError(t, err)
	assert.True(t, cfg.Equal(s.MustNew(nil)))

	cfg, err = s.Structure(map[any]any{"max_tokens": 4})
	require.NoError(t, err)
	v, _ := cfg.Value("max_tokens")
	assert.Equal(t, 4, v)

	_, err = s.Structure([]any{1, 2})
	require.ErrorIs(t, err, llmconfig.ErrTypeMismatch)

	_, err = s.Structure("max_tokens=4")
	require.ErrorIs(t, err, llmconfig.ErrTypeMismatch)
}

func TestNormalize(t *testing.T) {
	s := exampleSchema(t, nil)

	got, err := s.Normalize(map[string]any{"max_tokens": 1, "top_k": 2, "foo": 3})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"max_tokens":                  1,
		"foo":                         3,
		llmconfig.GenerationConfigKey: map[string]any{"top_k": 2},
	}, got)
}

func TestConstructEnv(t *testing.T) {
	tests := []struct {
		name  string
		env   string
		attrs map[string]any
		check func(t *testing.T, cfg *llmconfig.Config)
	}{
		{
			name: "no env",
			check: func(t *testing.T, cfg *llmconfig.Config) {
				v, _ := cfg.Get("max_tokens")
				assert.Equal(t, 20, v)
			},
		},
		{
			name: "config env as base",
			env:  `{"max_tokens": 11, "generation_config": {"top_k": 4}, "foo": "bar"}`,
			check: func(t *testing.T, cfg *llmconfig.Config) {
				v, _ := cfg.Get("max_tokens")
				assert.Equal(t, 11, v)
				v, _ = cfg.Get("top_k")
				assert.Equal(t, 4, v)
				v, _ = cfg.Extra("foo")
				assert.Equal(t, "bar", v)
			},
		},
		{
			name:  "attrs override config env",
			env:   `{"max_tokens": 11, "top_k": 4}`,
			attrs: map[string]any{"max_tokens": 12, "temperature": nil},
			check: func(t *testing.T, cfg *llmconfig.Config) {
				v, _ := cfg.Get("max_tokens")
				assert.Equal(t, 12, v)
				v, _ = cfg.Get("top_k")
				assert.Equal(t, 4, v)
				v, _ = cfg.Get("temperature")
				assert.Equal(t, 1.0, v, "nil attrs are ignored")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := map[string]string{}
			if tt.env != "" {
				env["OPENLLM_EXAMPLE_CONFIG"] = tt.env
			}

			cfg, err := exampleSchema(t, env).ConstructEnv(tt.attrs)
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestConstructEnv_Errors(t *testing.T) {
	s := exampleSchema(t, map[string]string{"OPENLLM_EXAMPLE_CONFIG": "{not json"})
	_, err := s.ConstructEnv(nil)
	require.ErrorIs(t, err, llmconfig.ErrEnvParse)
	assert.Contains(t, err.Error(), "OPENLLM_EXAMPLE_CONFIG")

	s = exampleSchema(t, map[string]string{"OPENLLM_EXAMPLE_CONFIG": "[1, 2]"})
	_, err = s.ConstructEnv(nil)
	require.ErrorIs(t, err, llmconfig.ErrTypeMismatch)
}

func TestValidateOptions(t *testing.T) {
	s := exampleSchema(t, nil)

	attrs, rest := s.SplitOptions(map[string]any{
		"example_max_tokens":             9,
		"example_generation_temperature": 0.3,
		"port":                           3000,
	})
	assert.Equal(t, map[string]any{
		"max_tokens":                  9,
		llmconfig.GenerationConfigKey: map[string]any{"temperature": 0.3},
	}, attrs)
	assert.Equal(t, map[string]any{"port": 3000}, rest)

	cfg, rest, err := s.ValidateOptions(map[string]any{
		"example_max_tokens":             9,
		"example_generation_temperature": 0.3,
		"port":                           3000,
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"port": 3000}, rest)
	v, _ := cfg.Get("max_tokens")
	assert.Equal(t, 9, v)
	v, _ = cfg.Get("temperature")
	assert.Equal(t, 0.3, v)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	s := exampleSchema(t, map[string]string{"TOKENS": "64"})

	t.Run("yaml with expansion", func(t *testing.T) {
		path := filepath.Join(dir, "model.yaml")
		content := "max_tokens: ${TOKENS}\ntemperature: ${TEMP:-0.25}\nfoo:\n  bar: 1\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		got, err := s.LoadFile(path)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{
			"max_tokens":                  64,
			"foo":                         map[string]any{"bar": 1},
			llmconfig.GenerationConfigKey: map[string]any{"temperature": 0.25},
		}, got)

		cfg, err := s.New(got)
		require.NoError(t, err)
		v, _ := cfg.Get("temperature")
		assert.Equal(t, 0.25, v)
	})

	t.Run("json", func(t *testing.T) {
		path := filepath.Join(dir, "model.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"generation_config": {"top_k": 3}}`), 0o600))

		got, err := s.LoadFile(path)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{llmconfig.GenerationConfigKey: map[string]any{"top_k": 3.0}}, got)
	})

	t.Run("required variable missing", func(t *testing.T) {
		path := filepath.Join(dir, "strict.yaml")
		require.NoError(t, os.WriteFile(path, []byte("max_tokens: ${MISSING:?set MISSING}\n"), 0o600))

		_, err := s.LoadFile(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "set MISSING")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := s.LoadFile(filepath.Join(dir, "nope.yaml"))
		require.Error(t, err)
	})
}

func TestConfig_Serialize(t *testing.T) {
	s := exampleSchema(t, nil)
	cfg := s.MustNew(map[string]any{"max_tokens": 3, "top_k": 7, "temperature": 0.5})

	data, err := json.Marshal(cfg)
	require.NoError(t, err)
	assert.JSONEq(t, `{"max_tokens": 3, "generation_config": {"temperature": 0.5, "top_k": 7}}`, string(data))

	flat, err := cfg.DumpJSON(llmconfig.Flatten())
	require.NoError(t, err)
	assert.JSONEq(t, `{"max_tokens": 3, "temperature": 0.5, "top_k": 7}`, string(flat))

	yml, err := cfg.DumpYAML()
	require.NoError(t, err)
	assert.YAMLEq(t, "max_tokens: 3\ngeneration_config:\n  temperature: 0.5\n  top_k: 7\n", string(yml))
}

func TestConfig_Decode(t *testing.T) {
	s := exampleSchema(t, nil)
	cfg := s.MustNew(map[string]any{"max_tokens": 3, "stop": []any{"###"}})

	var out struct {
		MaxTokens  int `json:"max_tokens"`
		Generation struct {
			Temperature float64  `json:"temperature"`
			TopK        int      `json:"top_k"`
			Stop        []string `json:"stop"`
		} `json:"generation_config"`
	}
	require.NoError(t, cfg.Decode(&out))

	assert.Equal(t, 3, out.MaxTokens)
	assert.Equal(t, 1.0, out.Generation.Temperature)
	assert.Equal(t, 50, out.Generation.TopK)
	assert.Equal(t, []string{"###"}, out.Generation.Stop)
}

func TestExampleYAML(t *testing.T) {
	s := llmconfig.MustDefine(llmconfig.Definition{
		Name: "ExampleConfig",
		Meta: testMeta(),
		Fields: []llmconfig.Field{
			llmconfig.Required("token", llmconfig.String, llmconfig.Describe("API token")),
			llmconfig.Declare("max_tokens", llmconfig.Int, 20, llmconfig.Describe("Token budget")),
		},
	}, envLookup(nil), llmconfig.WithBaseGeneration(exampleGeneration()))

	out, err := s.ExampleYAML()
	require.NoError(t, err)

	text := string(out)
	assert.Contains(t, text, "OPENLLM_EXAMPLE_CONFIG")
	assert.Contains(t, text, "# (required) API token")
	assert.Contains(t, text, "max_tokens: 20 # Token budget")
	assert.Contains(t, text, "generation_config:")
	assert.Contains(t, text, "top_k: 50")
	assert.NotContains(t, text, "stop:", "nil generation defaults are omitted")
}

func TestConstructEnv_ReadAtDefinition(t *testing.T) {
	env := map[string]string{"OPENLLM_EXAMPLE_CONFIG": `{"max_tokens": 11}`}
	s := exampleSchema(t, env)

	env["OPENLLM_EXAMPLE_CONFIG"] = `{"max_tokens": 99}`
	cfg, err := s.ConstructEnv(nil)
	require.NoError(t, err)
	v, _ := cfg.Value("max_tokens")
	assert.Equal(t, 11, v)

	delete(env, "OPENLLM_EXAMPLE_CONFIG")
	cfg, err = s.ConstructEnv(nil)
	require.NoError(t, err)
	v, _ = cfg.Value("max_tokens")
	assert.Equal(t, 11, v)
}

func TestDump_FlattenRoundTrip(t *testing.T) {
	s := exampleSchema(t, nil)
	cfg := s.MustNew(map[string]any{"max_tokens": 5, "top_k": 8, "foo": "bar"})

	flat := cfg.Dump(llmconfig.Flatten())
	assert.Equal(t, 5, flat["max_tokens"])
	assert.Equal(t, 8, flat["top_k"])

	back, err := s.Structure(flat)
	require.NoError(t, err)
	assert.True(t, cfg.Equal(back))
}
