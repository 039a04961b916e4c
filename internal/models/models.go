// Package models 声明内置模型的配置 schema。
//
// schema 在 [Load] 时构建，因此 OPENLLM_* 环境变量与 .env 文件在调用时读取。
package models

import (
	"fmt"

	"github.com/lwmacct/251207-go-pkg-llmconfig/pkg/llmconfig"
)

// promptDefinition 是带提示词模板的模型共用的抽象基础 schema。
func promptDefinition() llmconfig.Definition {
	return llmconfig.Definition{
		Name:     "PromptConfig",
		Abstract: true,
		Fields: []llmconfig.Field{
			llmconfig.Declare("use_default_prompt_template", llmconfig.Bool, true,
				llmconfig.Describe("Whether to wrap the input with the model's default prompt template.")),
			llmconfig.Declare("system_prompt", llmconfig.String, "",
				llmconfig.Describe("System prompt prepended to every request.")),
		},
	}
}

func flanT5() llmconfig.Definition {
	return llmconfig.Definition{
		Name: "FlanT5Config",
		Meta: llmconfig.ModelMeta{
			DefaultID: "google/flan-t5-large",
			ModelIDs: []string{
				"google/flan-t5-small",
				"google/flan-t5-base",
				"google/flan-t5-large",
				"google/flan-t5-xl",
				"google/flan-t5-xxl",
			},
			URL: "https://huggingface.co/docs/transformers/model_doc/flan-t5",
		},
		Generation: map[string]any{
			"temperature":        0.9,
			"max_new_tokens":     2048,
			"top_k":              50,
			"top_p":              0.4,
			"repetition_penalty": 1.0,
		},
	}
}

func dollyV2(prompt *llmconfig.Schema) llmconfig.Definition {
	return llmconfig.Definition{
		Name:  "DollyV2Config",
		Bases: []*llmconfig.Schema{prompt},
		Meta: llmconfig.ModelMeta{
			DefaultID: "databricks/dolly-v2-3b",
			ModelIDs: []string{
				"databricks/dolly-v2-3b",
				"databricks/dolly-v2-7b",
				"databricks/dolly-v2-12b",
			},
			URL: "https://github.com/databrickslabs/dolly",
		},
		Fields: []llmconfig.Field{
			llmconfig.Declare("return_full_text", llmconfig.Bool, false,
				llmconfig.Describe("Whether to return the full prompt to the users.")),
		},
		Generation: map[string]any{
			"temperature":    0.9,
			"top_p":          0.92,
			"top_k":          5,
			"max_new_tokens": 256,
			"eos_token_id":   50277,
		},
	}
}

func falcon() llmconfig.Definition {
	return llmconfig.Definition{
		Name: "FalconConfig",
		Meta: llmconfig.ModelMeta{
			DefaultID:       "tiiuae/falcon-7b",
			ModelIDs:        []string{"tiiuae/falcon-7b", "tiiuae/falcon-40b", "tiiuae/falcon-7b-instruct", "tiiuae/falcon-40b-instruct"},
			URL:             "https://falconllm.tii.ae/",
			RequiresGPU:     true,
			TrustRemoteCode: true,
			Requirements:    []string{"einops", "xformers", "safetensors"},
		},
		Generation: map[string]any{
			"max_new_tokens":       200,
			"top_k":                10,
			"num_return_sequences": 1,
			"eos_token_id":         11,
		},
	}
}

func starCoder() llmconfig.Definition {
	return llmconfig.Definition{
		Name: "StarCoderConfig",
		Meta: llmconfig.ModelMeta{
			DefaultID:    "bigcode/starcoder",
			ModelIDs:     []string{"bigcode/starcoder", "bigcode/starcoderbase"},
			URL:          "https://github.com/bigcode-project/starcoder",
			RequiresGPU:  true,
			Requirements: []string{"bitsandbytes"},
			ModelName:    "starcoder",
			StartName:    "starcoder",
		},
		Generation: map[string]any{
			"temperature":        0.2,
			"max_new_tokens":     256,
			"min_new_tokens":     32,
			"top_k":              50,
			"top_p":              0.95,
			"pad_token_id":       49152,
			"repetition_penalty": 1.2,
		},
	}
}

func chatGLM() llmconfig.Definition {
	return llmconfig.Definition{
		Name: "ChatGLMConfig",
		Meta: llmconfig.ModelMeta{
			DefaultID:       "thudm/chatglm-6b-int4",
			ModelIDs:        []string{"thudm/chatglm-6b", "thudm/chatglm-6b-int8", "thudm/chatglm-6b-int4"},
			URL:             "https://github.com/THUDM/ChatGLM-6B",
			RequiresGPU:     true,
			TrustRemoteCode: true,
			NameType:        llmconfig.NameLowercase,
			Requirements:    []string{"cpm_kernels", "sentencepiece"},
		},
		Fields: []llmconfig.Field{
			llmconfig.Declare("retain_history", llmconfig.Bool, false,
				llmconfig.Describe("Whether to retain history given to the model. If set to true, the model will remember the conversation.")),
			llmconfig.Declare("use_half_precision", llmconfig.Bool, true,
				llmconfig.Describe("Whether to use half precision for the model.")),
			llmconfig.Optional("quantize", llmconfig.Int, llmconfig.Ge(4), llmconfig.Le(8),
				llmconfig.Describe("Quantize the model to 4 or 8 bits.")),
		},
		Generation: map[string]any{
			"max_new_tokens": 2048,
			"num_beams":      1,
			"top_p":          0.7,
			"temperature":    0.95,
		},
	}
}

func stableLM(prompt *llmconfig.Schema) llmconfig.Definition {
	return llmconfig.Definition{
		Name:  "StableLMConfig",
		Bases: []*llmconfig.Schema{prompt},
		Meta: llmconfig.ModelMeta{
			DefaultID: "stabilityai/stablelm-tuned-alpha-3b",
			ModelIDs: []string{
				"stabilityai/stablelm-tuned-alpha-3b",
				"stabilityai/stablelm-tuned-alpha-7b",
				"stabilityai/stablelm-base-alpha-3b",
				"stabilityai/stablelm-base-alpha-7b",
			},
			URL: "https://github.com/Stability-AI/StableLM",
		},
		Fields: []llmconfig.Field{
			llmconfig.Declare("system_prompt", llmconfig.String,
				"StableLM is a helpful and harmless open-source AI language model developed by StabilityAI.",
				llmconfig.Describe("System prompt prepended to every request.")),
		},
		Generation: map[string]any{
			"temperature":    0.9,
			"max_new_tokens": 128,
			"top_k":          0,
			"top_p":          0.9,
		},
	}
}

// Load 构建全部内置 schema 并注册到新的 Registry。
//
// opts 同时作用于每个 schema，例如 [llmconfig.WithDotenv]。
func Load(opts ...llmconfig.Option) (*llmconfig.Registry, error) {
	prompt, err := llmconfig.Define(promptDefinition(), opts...)
	if err != nil {
		return nil, err
	}

	defs := []llmconfig.Definition{
		flanT5(),
		dollyV2(prompt),
		falcon(),
		starCoder(),
		chatGLM(),
		stableLM(prompt),
	}

	r := llmconfig.NewRegistry()
	for _, def := range defs {
		s, err := llmconfig.Define(def, opts...)
		if err != nil {
			return nil, fmt.Errorf("load model %s: %w", def.Name, err)
		}
		if err := r.Register(s); err != nil {
			return nil, err
		}
	}

	return r, nil
}
