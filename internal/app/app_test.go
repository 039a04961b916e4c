package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	yamlv3 "go.yaml.in/yaml/v3"

	"github.com/lwmacct/251207-go-pkg-llmconfig/internal/app"
	"github.com/lwmacct/251207-go-pkg-llmconfig/pkg/llmconfig"
)

// run 执行一次命令行，返回标准输出。
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	root, err := app.New()
	require.NoError(t, err)

	var stdout, stderr bytes.Buffer
	root.Writer = &stdout
	root.ErrWriter = &stderr

	err = root.Run(context.Background(), append([]string{"llmconfig"}, args...))

	return stdout.String(), err
}

func runJSON(t *testing.T, args ...string) map[string]any {
	t.Helper()

	out, err := run(t, args...)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got), out)

	return got
}

func TestModels(t *testing.T) {
	out, err := run(t, "models", "--ids")
	require.NoError(t, err)

	for _, want := range []string{"flan_t5", "dolly-v2", "FalconConfig", "chatglm", "bigcode/starcoderbase"} {
		assert.Contains(t, out, want)
	}
}

func TestOptions(t *testing.T) {
	out, err := run(t, "options", "flan-t5")
	require.NoError(t, err)

	assert.Contains(t, out, "FlanT5GenerationConfig generation options")
	assert.Contains(t, out, "--temperature")
	assert.Contains(t, out, "OPENLLM_FLAN_T5_GENERATION_TEMPERATURE")
	assert.Contains(t, out, "OPENLLM_FLAN_T5_CONFIG")
	assert.NotContains(t, out, "--eos-token-id", "union fields have no option")

	out, err = run(t, "options", "--yaml", "chatglm")
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, yamlv3.Unmarshal([]byte(out), &doc))
	assert.Equal(t, false, doc["retain_history"])
	assert.Contains(t, doc, llmconfig.GenerationConfigKey)
}

func TestOptions_Errors(t *testing.T) {
	_, err := run(t, "options")
	require.Error(t, err)

	_, err = run(t, "options", "llama")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown model")
}

func TestConfig_Defaults(t *testing.T) {
	got := runJSON(t, "config", "flan-t5", "--output", "json")

	generation, ok := got[llmconfig.GenerationConfigKey].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 0.9, generation["temperature"])
	assert.Equal(t, 2048.0, generation["max_new_tokens"])
	assert.NotContains(t, generation, "pad_token_id")
}

func TestConfig_Precedence(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "dolly.yaml")
	require.NoError(t, os.WriteFile(file, []byte(
		"return_full_text: true\nsystem_prompt: from file\ngeneration_config:\n  top_k: 7\n  top_p: 0.5\n"), 0o600))

	t.Setenv("OPENLLM_DOLLY_V2_CONFIG", `{"generation_config": {"top_k": 3, "temperature": 0.4}, "tag": "env"}`)

	got := runJSON(t, "config", "dolly-v2",
		"--output", "json",
		"--config-file", file,
		"--top-p", "0.8",
		"--system-prompt", "from flag",
	)

	assert.Equal(t, true, got["return_full_text"], "file beats defaults")
	assert.Equal(t, "from flag", got["system_prompt"], "flag beats file")
	assert.Equal(t, "env", got["tag"], "extras from the env config survive")

	generation := got[llmconfig.GenerationConfigKey].(map[string]any)
	assert.Equal(t, 7.0, generation["top_k"], "file beats env config")
	assert.Equal(t, 0.4, generation["temperature"], "env config beats schema defaults")
	assert.Equal(t, 0.8, generation["top_p"], "flag beats file")
}

func TestConfig_FieldEnv(t *testing.T) {
	t.Setenv("OPENLLM_CHATGLM_QUANTIZE", "8")

	got := runJSON(t, "config", "chatglm", "--output", "json", "--flatten")
	assert.Equal(t, 8.0, got["quantize"])
	assert.Equal(t, 0.95, got["temperature"], "flattened output")
	assert.NotContains(t, got, llmconfig.GenerationConfigKey)
}

func TestConfig_EnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("OPENLLM_STABLE_LM_USE_DEFAULT_PROMPT_TEMPLATE=false\n"), 0o600))

	got := runJSON(t, "--env-file", envFile, "config", "stable-lm", "--output", "json")
	assert.Equal(t, false, got["use_default_prompt_template"])
}

func TestConfig_YAML(t *testing.T) {
	out, err := run(t, "config", "starcoder", "--max-new-tokens", "64")
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, yamlv3.Unmarshal([]byte(out), &doc))
	generation := doc[llmconfig.GenerationConfigKey].(map[string]any)
	assert.Equal(t, 64, generation["max_new_tokens"])
	assert.Equal(t, 49152, generation["pad_token_id"])
}

func TestConfig_Errors(t *testing.T) {
	t.Run("constraint", func(t *testing.T) {
		_, err := run(t, "config", "flan-t5", "--temperature", "3")
		require.ErrorIs(t, err, llmconfig.ErrConstraint)
	})

	t.Run("invalid env config", func(t *testing.T) {
		t.Setenv("OPENLLM_FLAN_T5_CONFIG", "{broken")
		_, err := run(t, "config", "flan-t5")
		require.ErrorIs(t, err, llmconfig.ErrEnvParse)
	})

	t.Run("gpu required", func(t *testing.T) {
		t.Setenv("CUDA_VISIBLE_DEVICES", "")
		_, err := run(t, "config", "falcon", "--check-gpu")
		require.ErrorIs(t, err, llmconfig.ErrResourceUnavailable)
	})

	t.Run("gpu available", func(t *testing.T) {
		t.Setenv("CUDA_VISIBLE_DEVICES", "0,1")
		_, err := run(t, "config", "falcon", "--check-gpu")
		require.NoError(t, err)
	})

	t.Run("invalid field env", func(t *testing.T) {
		t.Setenv("OPENLLM_FALCON_GENERATION_TOP_K", "many")
		_, err := app.New()
		require.ErrorIs(t, err, llmconfig.ErrEnvParse)
	})

	t.Run("invalid output format", func(t *testing.T) {
		_, err := run(t, "config", "flan-t5", "--output", "toml")
		require.Error(t, err)
	})
}

func TestSettings(t *testing.T) {
	t.Run("example", func(t *testing.T) {
		out, err := run(t, "settings", "--example")
		require.NoError(t, err)

		assert.Contains(t, out, "# 日志配置")
		var doc map[string]any
		require.NoError(t, yamlv3.Unmarshal([]byte(out), &doc))
		assert.Equal(t, "yaml", doc["output"].(map[string]any)["format"])
	})

	t.Run("effective", func(t *testing.T) {
		dir := t.TempDir()
		file := filepath.Join(dir, "settings.yaml")
		require.NoError(t, os.WriteFile(file, []byte("log:\n  level: info\noutput:\n  flatten: true\n"), 0o600))
		t.Setenv("LLMCONFIG_LOG_FORMAT", "json")

		out, err := run(t, "--settings", file, "--log-level", "error", "settings")
		require.NoError(t, err)

		var doc map[string]any
		require.NoError(t, yamlv3.Unmarshal([]byte(out), &doc))
		logDoc := doc["log"].(map[string]any)
		assert.Equal(t, "error", logDoc["level"], "flag beats settings file")
		assert.Equal(t, "json", logDoc["format"], "env beats defaults")
		assert.Equal(t, true, doc["output"].(map[string]any)["flatten"])
	})

	t.Run("missing settings file", func(t *testing.T) {
		_, err := run(t, "--settings", filepath.Join(t.TempDir(), "absent.yaml"), "models")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "read config file")
	})
}

func TestConfig_SettingsFlatten(t *testing.T) {
	t.Setenv("LLMCONFIG_OUTPUT_FLATTEN", "true")

	got := runJSON(t, "config", "chatglm", "--output", "json")
	assert.NotContains(t, got, llmconfig.GenerationConfigKey)
	assert.Equal(t, 0.95, got["temperature"])
}
