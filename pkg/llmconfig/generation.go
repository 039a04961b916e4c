package llmconfig

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
)

// GenerationSchema 是某个 schema 派生出的 generation 子 schema，构建后冻结。
//
// 字段默认值优先级：owning schema 的覆盖块 > OPENLLM_<MODEL>_GENERATION_<FIELD> > 基础默认值。
type GenerationSchema struct {
	name   string
	fields []Field
	index  map[string]int
}

// DefaultGenerationFields 返回基础 generation 字段表的副本。
//
// 字段与 transformers.GenerationConfig 对应，未给出默认值的字段为可选 (nil)。
func DefaultGenerationFields() []Field {
	return []Field{
		// 输出长度
		Declare("max_new_tokens", Int, 20, Ge(0),
			Describe("The maximum numbers of tokens to generate, ignoring the number of tokens in the prompt.")),
		Declare("min_length", Int, 0, Ge(0),
			Describe("The minimum length of the sequence to be generated. Its effect is overridden by min_new_tokens, if also set.")),
		Optional("min_new_tokens", Int,
			Describe("The minimum numbers of tokens to generate, ignoring the number of tokens in the prompt.")),
		Declare("early_stopping", Bool, false,
			Describe("Controls the stopping condition for beam-based methods, like beam-search.")),
		Optional("max_time", Float,
			Describe("The maximum amount of time you allow the computation to run for in seconds.")),

		// 生成策略
		Declare("num_beams", Int, 1, Describe("Number of beams for beam search. 1 means no beam search.")),
		Declare("num_beam_groups", Int, 1,
			Describe("Number of groups to divide num_beams into in order to ensure diversity among different groups of beams.")),
		Optional("penalty_alpha", Float,
			Describe("The values balance the model confidence and the degeneration penalty in contrastive search decoding.")),
		Declare("use_cache", Bool, true,
			Describe("Whether or not the model should use the past last key/values attentions to speed up decoding.")),

		// logits 处理
		Declare("temperature", Float, 1.0, Ge(0), Le(1),
			Describe("The value used to modulate the next token probabilities.")),
		Declare("top_k", Int, 50,
			Describe("The number of highest probability vocabulary tokens to keep for top-k-filtering.")),
		Declare("top_p", Float, 1.0,
			Describe("If set to float < 1, only the smallest set of most probable tokens with probabilities that add up to top_p or higher are kept for generation.")),
		Declare("typical_p", Float, 1.0,
			Describe("Local typicality measures how similar the conditional probability of predicting a target token next is to the expected conditional probability of predicting a random token next.")),
		Declare("epsilon_cutoff", Float, 0.0,
			Describe("If set to float strictly between 0 and 1, only tokens with a conditional probability greater than epsilon_cutoff will be sampled.")),
		Declare("eta_cutoff", Float, 0.0,
			Describe("Eta sampling is a hybrid of locally typical sampling and epsilon sampling.")),
		Declare("diversity_penalty", Float, 0.0,
			Describe("This value is subtracted from a beam's score if it generates a token same as any beam from other group at a particular time.")),
		Declare("repetition_penalty", Float, 1.0,
			Describe("The parameter for repetition penalty. 1.0 means no penalty.")),
		Declare("encoder_repetition_penalty", Float, 1.0,
			Describe("An exponential penalty on sequences that are not in the original input. 1.0 means no penalty.")),
		Declare("length_penalty", Float, 1.0,
			Describe("Exponential penalty to the length that is used with beam-based generation.")),
		Declare("no_repeat_ngram_size", Int, 0,
			Describe("If set to int > 0, all ngrams of that size can only occur once.")),
		Optional("bad_words_ids", ListOf(ListOf(Int)),
			Describe("List of token ids that are not allowed to be generated.")),
		Optional("force_words_ids", UnionOf(ListOf(ListOf(Int)), ListOf(ListOf(ListOf(Int)))),
			Describe("List of token ids that must be generated.")),
		Declare("renormalize_logits", Bool, false,
			Describe("Whether to renormalize the logits after applying all the logits processors or warpers.")),
		Optional("constraints", ListOf(Any),
			Describe("Custom constraints that can be added to the generation to ensure that the output will contain the use of certain tokens.")),
		Optional("forced_bos_token_id", Int,
			Describe("The id of the token to force as the first generated token after the decoder_start_token_id.")),
		Optional("forced_eos_token_id", UnionOf(Int, ListOf(Int)),
			Describe("The id of the token to force as the last generated token when max_length is reached.")),
		Declare("remove_invalid_values", Bool, false,
			Describe("Whether to remove possible nan and inf outputs of the model to prevent the generation method to crash.")),
		Optional("exponential_decay_length_penalty", TupleOf(Int, Float),
			Describe("Adds an exponentially increasing length penalty, after a certain amount of tokens have been generated: (start_index, decay_factor).")),
		Optional("suppress_tokens", ListOf(Int),
			Describe("A list of tokens that will be suppressed at generation.")),
		Optional("begin_suppress_tokens", ListOf(Int),
			Describe("A list of tokens that will be suppressed at the beginning of the generation.")),
		Optional("forced_decoder_ids", ListOf(ListOf(Int)),
			Describe("A list of pairs of integers which indicates a mapping from generation indices to token indices that will be forced before sampling.")),

		// 输出内容
		Declare("num_return_sequences", Int, 1,
			Describe("The number of independently computed returned sequences for each element in the batch.")),
		Declare("output_attentions", Bool, false,
			Describe("Whether or not to return the attentions tensors of all attention layers.")),
		Declare("output_hidden_states", Bool, false,
			Describe("Whether or not to return the hidden states of all layers.")),
		Declare("output_scores", Bool, false,
			Describe("Whether or not to return the prediction scores.")),

		// 特殊 token
		Optional("pad_token_id", Int, Describe("The id of the padding token.")),
		Optional("bos_token_id", Int, Describe("The id of the beginning-of-sequence token.")),
		Optional("eos_token_id", UnionOf(Int, ListOf(Int)),
			Describe("The id of the end-of-sequence token. Optionally, use a list to set multiple end-of-sequence tokens.")),

		// encoder-decoder 模型专用
		Declare("encoder_no_repeat_ngram_size", Int, 0,
			Describe("If set to int > 0, all ngrams of that size that occur in the encoder_input_ids cannot occur in the decoder_input_ids.")),
		Optional("decoder_start_token_id", Int,
			Describe("If an encoder-decoder model starts decoding with a different token than bos, the id of that token.")),
	}
}

// buildGeneration 为 owner 构建 generation 子 schema。
func buildGeneration(owner *Schema, base []Field, override map[string]any) (*GenerationSchema, error) {
	name := strings.ReplaceAll(owner.name, "Config", "GenerationConfig")
	if name == owner.name {
		name += "GenerationConfig"
	}

	prepared, err := collectOwn(name, base)
	if err != nil {
		return nil, err
	}

	g := &GenerationSchema{
		name:   name,
		fields: make([]Field, len(prepared)),
		index:  make(map[string]int, len(prepared)),
	}
	for i, f := range prepared {
		ov, has := override[f.Name]
		key := envKey(owner.meta.ModelName, "generation", f.Name)
		bound, err := bindField(f, key, owner.env, ov, has)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		g.fields[i] = bound
		g.index[f.Name] = i
	}

	for _, key := range slices.Sorted(maps.Keys(override)) {
		if _, ok := g.index[key]; !ok {
			slog.Warn("Ignoring unknown generation override", "schema", owner.name, "field", key)
		}
	}

	return g, nil
}

// Name 返回子 schema 名称，如 FlanT5GenerationConfig。
func (g *GenerationSchema) Name() string { return g.name }

// Fields 返回字段表副本。
func (g *GenerationSchema) Fields() []Field { return slices.Clone(g.fields) }

// Field 按名称查找字段。
func (g *GenerationSchema) Field(name string) (Field, bool) {
	i, ok := g.index[name]
	if !ok {
		return Field{}, false
	}

	return g.fields[i], true
}

func (g *GenerationSchema) hasField(name string) bool {
	_, ok := g.index[name]
	return ok
}

// New 构建 generation 实例。values 中的 nil 视为未传入。
func (g *GenerationSchema) New(values map[string]any) (*GenerationConfig, error) {
	for _, key := range slices.Sorted(maps.Keys(values)) {
		if !g.hasField(key) {
			return nil, fmt.Errorf("%w: %s has no field %q", ErrUnknownField, g.name, key)
		}
	}

	resolved, err := resolveValues(g.name, g.fields, values)
	if err != nil {
		return nil, err
	}

	return &GenerationConfig{schema: g, values: resolved}, nil
}

// GenerationConfig 是 generation 子 schema 的实例，不可变。
type GenerationConfig struct {
	schema *GenerationSchema
	values map[string]any
}

// Schema 返回所属子 schema。
func (g *GenerationConfig) Schema() *GenerationSchema { return g.schema }

// Get 返回字段值。
func (g *GenerationConfig) Get(name string) (any, bool) {
	v, ok := g.values[name]
	return copyValue(v), ok
}

// ToMap 返回已设置 (非 nil) 的字段值，可直接交给生成运行时。
func (g *GenerationConfig) ToMap() map[string]any {
	out := make(map[string]any, len(g.values))
	for key, val := range g.values {
		if val != nil {
			out[key] = copyValue(val)
		}
	}

	return out
}

// Evolve 返回应用 changes 后的新实例，原实例不变。
func (g *GenerationConfig) Evolve(changes map[string]any) (*GenerationConfig, error) {
	values := g.ToMap()
	maps.Copy(values, changes)

	return g.schema.New(values)
}

// Equal 报告两个实例是否逐字段相等。
func (g *GenerationConfig) Equal(other *GenerationConfig) bool {
	if g == nil || other == nil {
		return g == other
	}

	return g.schema == other.schema && equalValues(g.values, other.values)
}

func (g *GenerationConfig) String() string {
	return formatInstance(g.schema.name, g.schema.fields, g.values)
}
