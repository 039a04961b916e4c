package llmconfig

import "errors"

// 错误分类。所有返回的错误都包装了以下哨兵错误之一，可用 [errors.Is] 判断。
var (
	// ErrSchemaDefinition 表示 schema 声明本身有误，在 [Define] 阶段返回。
	// 例如字段缺少类型、必填字段出现在有默认值的字段之后、缺少 default_id。
	ErrSchemaDefinition = errors.New("schema definition error")

	// ErrTypeMismatch 表示值与声明类型不符，或期望 mapping 却得到其他类型。
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrResourceUnavailable 表示硬件要求 (如 GPU) 在当前环境无法满足。
	ErrResourceUnavailable = errors.New("resource unavailable")

	// ErrEnvParse 表示环境变量内容无法解析，例如 OPENLLM_<MODEL>_CONFIG 不是合法 JSON。
	ErrEnvParse = errors.New("environment parse error")

	// ErrMissingValue 表示必填字段既无默认值也未传入。
	ErrMissingValue = errors.New("missing required value")

	// ErrConstraint 表示数值超出字段声明的范围。
	ErrConstraint = errors.New("constraint violation")

	// ErrUnknownField 表示显式的 generation mapping 中包含未声明的字段。
	ErrUnknownField = errors.New("unknown field")
)
