// Package cfgm 提供通用的配置加载功能。
//
// 支持 YAML/JSON，按默认值、配置文件、环境变量与 CLI flags 逐层覆盖。
// 配置 key 使用 json tag 统一描述，YAML 与 JSON 共享同一套 key。
//
// # 加载优先级 (从低到高)
//
//  1. 默认值 - 通过 defaultConfig 参数传入
//  2. 配置文件 - 通过 [WithConfigFile] 或 [WithConfigPaths] 设置
//  3. 环境变量(前缀) - 通过 [WithEnvPrefix] 自动生成绑定
//  4. CLI flags - 通过 [WithCommand] 选项设置，最高优先级
//
// # 快速开始
//
//	type Config struct {
//	    Name    string        `json:"name"    desc:"应用名称"`
//	    Debug   bool          `json:"debug"   desc:"调试模式"`
//	    Timeout time.Duration `json:"timeout" desc:"超时时间"`
//	}
//
//	cfg, err := cfgm.LoadCmd(cmd, DefaultConfig(), "myapp",
//	    cfgm.WithEnvPrefix("MYAPP_"),
//	)
//
// flag 名称默认由 json tag 路径生成 (log.level → log-level)，可用 flag tag 覆盖。
//
// # 模板展开
//
// 配置文件在解析前执行 Shell 风格的参数展开 (见 [ExpandTemplate])：
//
//	model_id: ${MODEL_ID:-google/flan-t5-large}
//	api_key: ${API_KEY:?API_KEY is required}
//
// 使用 [WithoutTemplateExpansion] 保留原始文本。
//
// # 单文件读取
//
// [ReadFile]、[NormalizeKeys] 与 [Decode] 可单独使用，用于读取任意 mapping 形式的覆盖文件。
package cfgm
