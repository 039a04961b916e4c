// Package llmconfig 为模型服务声明带类型的配置 schema。
//
// 每个字段自动获得：派生的环境变量名、可由环境变量覆盖的默认值、
// 可选的数值范围约束，以及到命令行选项的投影。每个 schema 还拥有一个
// 命名空间独立的 generation 子 schema，规则相同。
//
// # 声明 schema
//
//	var FlanT5 = llmconfig.MustDefine(llmconfig.Definition{
//	    Name: "FlanT5Config",
//	    Meta: llmconfig.ModelMeta{
//	        DefaultID: "google/flan-t5-large",
//	        ModelIDs:  []string{"google/flan-t5-small", "google/flan-t5-large"},
//	    },
//	    Fields: []llmconfig.Field{
//	        llmconfig.Declare("max_tokens", llmconfig.Int, 20, llmconfig.Ge(0)),
//	    },
//	    Generation: map[string]any{
//	        "temperature":    0.9,
//	        "max_new_tokens": 2048,
//	    },
//	})
//
// schema 名称去掉 "Config" 后派生模型名 (FlanT5 → flan_t5)，启动名为 flan-t5。
// schema 应在启动阶段构建 (包级变量)，构建后只读。
//
// # 环境变量
//
// 命名规则 (全部大写)：
//   - OPENLLM_<MODEL>_<FIELD> - 主字段
//   - OPENLLM_<MODEL>_GENERATION_<FIELD> - generation 字段
//   - OPENLLM_<MODEL>_CONFIG - JSON 对象，整体覆盖 (见 [Schema.ConstructEnv])
//
// 字段环境变量只在 [Define] 时读取一次，按声明类型解析。
//
// # 优先级
//
// schema 构建时，字段的有效默认值 (从高到低)：
//  1. generation 覆盖块中的值 (仅 generation 字段)
//  2. 环境变量
//  3. 声明的默认值
//
// 实例构建时，显式传入的值总是优先于有效默认值。
//
// # 构建实例
//
//	cfg, err := FlanT5.New(map[string]any{
//	    "max_tokens":  5,   // 主字段
//	    "temperature": 0.2, // generation 字段
//	    "foo":         "bar", // 未识别 → extras
//	})
//
// 显式传入 generation_config 时，同名的顶层 generation key 会被忽略并记录警告。
//
// # 合并策略
//
// [Merge] 对双方都是 mapping 的值递归合并，其他情况直接覆盖。
// extras 与覆盖文件都按此策略合并。
//
// # 导出与还原
//
// [Config.Dump] 导出 mapping (generation 字段位于 generation_config 下，
// 使用 [Flatten] 则合并到顶层)；[Schema.Structure] 还原实例：
//
//	restored, err := FlanT5.Structure(cfg.Dump())
//	restored.Equal(cfg) // true
//
// # 命令行
//
// [Schema.Options] 返回选项描述 (generation 组与主字段组)，
// [Schema.Flags] 生成 urfave/cli flags，[Schema.CommandValues] 与
// [Schema.ValidateOptions] 将解析结果还原为实例。union 类型字段不生成选项。
package llmconfig
