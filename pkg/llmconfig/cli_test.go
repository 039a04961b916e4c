package llmconfig_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/lwmacct/251207-go-pkg-llmconfig/pkg/llmconfig"
)

func cliSchema(t *testing.T) *llmconfig.Schema {
	t.Helper()

	s, err := llmconfig.Define(llmconfig.Definition{
		Name: "ExampleConfig",
		Meta: testMeta(),
		Fields: []llmconfig.Field{
			llmconfig.Required("token", llmconfig.String, llmconfig.KeywordOnly()),
			llmconfig.Declare("max_tokens", llmconfig.Int, 20, llmconfig.Describe("Token budget")),
			llmconfig.Declare("_private_flag", llmconfig.Bool, false),
		},
	}, envLookup(nil), llmconfig.WithBaseGeneration([]llmconfig.Field{
		llmconfig.Declare("temperature", llmconfig.Float, 1.0),
		llmconfig.Declare("top_k", llmconfig.Int, 50),
		llmconfig.Optional("stop", llmconfig.ListOf(llmconfig.String)),
		llmconfig.Optional("eos_token_id", llmconfig.UnionOf(llmconfig.Int, llmconfig.ListOf(llmconfig.Int))),
		llmconfig.Optional("bad_words_ids", llmconfig.ListOf(llmconfig.ListOf(llmconfig.Int))),
	}))
	require.NoError(t, err)

	return s
}

func TestOptions(t *testing.T) {
	groups := cliSchema(t).Options()
	require.Len(t, groups, 2)

	assert.Equal(t, "ExampleGenerationConfig generation options", groups[0].Title)
	assert.Equal(t, "ExampleConfig options", groups[1].Title)

	byName := func(group llmconfig.OptionGroup) map[string]llmconfig.OptionDescriptor {
		out := make(map[string]llmconfig.OptionDescriptor)
		for _, opt := range group.Options {
			out[opt.Name] = opt
		}
		return out
	}

	generation := byName(groups[0])
	assert.NotContains(t, generation, "eos-token-id", "union fields are skipped")
	require.Contains(t, generation, "top-k")
	topK := generation["top-k"]
	assert.Equal(t, "example_generation_top_k", topK.Identifier)
	assert.Equal(t, "--top-k", topK.Flag)
	assert.Equal(t, "OPENLLM_EXAMPLE_GENERATION_TOP_K", topK.EnvKey)
	assert.Equal(t, 50, topK.Default)
	assert.Equal(t, "(No description provided)", topK.Help)
	assert.False(t, topK.Multiple)
	assert.True(t, generation["stop"].Multiple)

	primary := byName(groups[1])
	assert.True(t, primary["token"].Required)
	assert.Equal(t, "Token budget", primary["max-tokens"].Help)
	assert.Equal(t, "example_max_tokens", primary["max-tokens"].Identifier)

	private := primary["private-flag"]
	assert.Equal(t, "--private-flag/--no-private-flag", private.Flag, "alias strips the leading underscore")
	assert.Equal(t, "example__private_flag", private.Identifier)
}

func TestOptions_GenerationOnly(t *testing.T) {
	s := llmconfig.MustDefine(llmconfig.Definition{Name: "BareConfig", Meta: testMeta()}, envLookup(nil))

	groups := s.Options()
	require.Len(t, groups, 1)
	assert.Equal(t, "BareGenerationConfig generation options", groups[0].Title)
}

func TestFlags(t *testing.T) {
	flags := cliSchema(t).Flags()

	names := make(map[string]int)
	for _, f := range flags {
		for _, name := range f.Names() {
			names[name]++
		}
	}

	assert.Equal(t, 1, names["max-tokens"])
	assert.Contains(t, names, "temperature")
	assert.Contains(t, names, "stop")
	assert.NotContains(t, names, "eos-token-id")
	assert.NotContains(t, names, "bad-words-ids", "nested lists have no flag form")
}

func TestCommandValues(t *testing.T) {
	s := cliSchema(t)

	tests := []struct {
		name string
		args []string
		want map[string]any
	}{
		{
			name: "nothing set",
			args: nil,
			want: map[string]any{},
		},
		{
			name: "typed values",
			args: []string{"--token", "abc", "--max-tokens", "7", "--temperature", "0.5", "--stop", "a", "--stop", "b", "--private-flag"},
			want: map[string]any{
				"example_token":                  "abc",
				"example_max_tokens":             7,
				"example_generation_temperature": 0.5,
				"example_generation_stop":        []string{"a", "b"},
				"example__private_flag":          true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got map[string]any
			cmd := &cli.Command{
				Name:  "example",
				Flags: s.Flags(),
				Action: func(_ context.Context, cmd *cli.Command) error {
					got = s.CommandValues(cmd)
					return nil
				},
			}

			require.NoError(t, cmd.Run(context.Background(), append([]string{"example"}, tt.args...)))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCommandValues_ValidateOptions(t *testing.T) {
	s := cliSchema(t)

	var cfg *llmconfig.Config
	cmd := &cli.Command{
		Name:  "example",
		Flags: s.Flags(),
		Action: func(_ context.Context, cmd *cli.Command) error {
			var err error
			cfg, _, err = s.ValidateOptions(s.CommandValues(cmd))
			return err
		},
	}

	require.NoError(t, cmd.Run(context.Background(), []string{"example", "--token", "t", "--top-k", "5"}))
	require.NotNil(t, cfg)

	v, _ := cfg.Get("token")
	assert.Equal(t, "t", v)
	v, _ = cfg.Generation().Get("top_k")
	assert.Equal(t, 5, v)
	v, _ = cfg.Generation().Get("temperature")
	assert.Equal(t, 1.0, v)
}
