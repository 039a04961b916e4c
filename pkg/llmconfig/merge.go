package llmconfig

import "github.com/lwmacct/251207-go-pkg-llmconfig/pkg/cfgm"

// Merge 按合并策略返回 left 与 right 合并后的新 map，入参不会被修改。
//
// 合并策略：
//   - 双方同一 key 的值都是 mapping 时递归合并
//   - 其他情况 (包括类型不一致) 由 right 的值直接覆盖
//   - 只出现在一侧的 key 总是保留
//
// 示例：
//
//	Merge({a: {x: 1}}, {a: {y: 2}}) == {a: {x: 1, y: 2}}
//	Merge({a: 1}, {a: {y: 2}})      == {a: {y: 2}}
func Merge(left, right map[string]any) map[string]any {
	out := make(map[string]any, len(left)+len(right))
	mergeMaps(out, left)
	mergeMaps(out, right)

	return out
}

// mergeMaps 将 src 合并进 dst，写入 dst 的值均为副本。
func mergeMaps(dst, src map[string]any) {
	for key, value := range src {
		value = cfgm.NormalizeKeys(copyValue(value))
		if valueMap, ok := value.(map[string]any); ok {
			if dstMap, ok := dst[key].(map[string]any); ok {
				mergeMaps(dstMap, valueMap)

				continue
			}
		}

		dst[key] = value
	}
}
