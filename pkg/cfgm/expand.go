package cfgm

import (
	"fmt"
	"os"
	"strings"
)

// expander 执行 ${...} 展开，规则见 [ExpandTemplate]。
type expander struct {
	lookup func(string) (string, bool)
}

// ExpandTemplate 对 text 做 Shell 风格的参数展开。
//
// 支持：
//   - ${VAR}
//   - ${VAR:-default} / ${VAR-default}
//   - ${VAR:?msg} / ${VAR?msg}
//   - ${VAR:+alt} / ${VAR+alt}
//   - "$$" 字面量
//
// 无法识别的表达式保持原样。default 部分允许嵌套展开。
// lookup 为 nil 时使用 os.LookupEnv。
func ExpandTemplate(text string, lookup func(string) (string, bool)) (string, error) {
	if !strings.Contains(text, "$") {
		return text, nil
	}
	if lookup == nil {
		lookup = os.LookupEnv
	}

	return expander{lookup: lookup}.run(text)
}

func (e expander) run(text string) (string, error) {
	var buf strings.Builder
	buf.Grow(len(text))

	for i := 0; i < len(text); {
		if text[i] != '$' || i+1 >= len(text) {
			buf.WriteByte(text[i])
			i++

			continue
		}

		switch text[i+1] {
		case '$':
			buf.WriteByte('$')
			i += 2

			continue
		case '{':
		default:
			buf.WriteByte('$')
			i++

			continue
		}

		end := closingBrace(text, i+2)
		if end == -1 {
			buf.WriteString(text[i:])

			break
		}

		val, ok, err := e.resolve(text[i+2 : end])
		if err != nil {
			return "", err
		}
		if ok {
			buf.WriteString(val)
		} else {
			buf.WriteString(text[i : end+1])
		}
		i = end + 1
	}

	return buf.String(), nil
}

func (e expander) resolve(expr string) (string, bool, error) {
	name, op, word := splitParameter(expr)
	if name == "" {
		return "", false, nil
	}

	val, set := e.lookup(name)
	switch op {
	case "":
		return val, true, nil
	case ":-", "-":
		if set && (op == "-" || val != "") {
			return val, true, nil
		}
		expanded, err := e.run(word)
		return expanded, err == nil, err
	case ":+", "+":
		if !set || (op == ":+" && val == "") {
			return "", true, nil
		}
		expanded, err := e.run(word)
		return expanded, err == nil, err
	case ":?", "?":
		if set && (op == "?" || val != "") {
			return val, true, nil
		}
		if word == "" {
			word = "parameter null or not set"
		}
		return "", false, fmt.Errorf("%s: %s", name, word)
	default:
		return "", false, nil
	}
}

// splitParameter 将 "NAME:-word" 拆分为 (NAME, ":-", word)。名称不合法时返回空名称。
func splitParameter(expr string) (name, op, word string) {
	i := 0
	for i < len(expr) && isNameChar(expr[i], i == 0) {
		i++
	}
	if i == 0 {
		return "", "", ""
	}

	name, rest := expr[:i], expr[i:]
	switch {
	case rest == "":
		return name, "", ""
	case strings.HasPrefix(rest, ":-"), strings.HasPrefix(rest, ":?"), strings.HasPrefix(rest, ":+"):
		return name, rest[:2], rest[2:]
	case rest[0] == '-', rest[0] == '?', rest[0] == '+':
		return name, rest[:1], rest[1:]
	}

	return "", "", ""
}

func isNameChar(ch byte, first bool) bool {
	if ch == '_' || (ch >= 'A' && ch <= 'Z') || (ch >= 'a' && ch <= 'z') {
		return true
	}

	return !first && ch >= '0' && ch <= '9'
}

func closingBrace(text string, start int) int {
	depth := 0
	for i := start; i < len(text); i++ {
		switch {
		case text[i] == '$' && i+1 < len(text) && text[i+1] == '{':
			depth++
			i++
		case text[i] == '}':
			if depth == 0 {
				return i
			}
			depth--
		}
	}

	return -1
}
