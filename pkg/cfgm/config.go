package cfgm

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/urfave/cli/v3"
)

// DefaultPaths 返回应用配置文件的搜索顺序。
//
// 返回顺序即查找顺序，先命中的文件生效：
//  1. ./.appname.yaml - 当前目录
//  2. ~/.appname.yaml - 用户主目录
//  3. /etc/appname/config.yaml - 系统级配置
//
// appName 为空时返回 nil。
func DefaultPaths(appName string) []string {
	if appName == "" {
		return nil
	}

	paths := []string{"." + appName + ".yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, "."+appName+".yaml"))
	}

	return append(paths, "/etc/"+appName+"/config.yaml")
}

// Load 读取配置并按优先级合并。
//
// 优先级 (从低到高)：
//  1. 默认值 - defaultConfig
//  2. 配置文件 - [WithConfigFile] / [WithConfigPaths]
//  3. 环境变量(前缀) - [WithEnvPrefix]
//  4. CLI flags - [WithCommand]
//
// 配置 key 由 json tag 定义，YAML 与 JSON 共享同一套 key。
func Load[T any](defaultConfig T, opts ...Option) (*T, error) {
	o := newOptions(opts)
	configMap := structToMap(defaultConfig)

	fileMap, err := o.readConfigFile()
	if err != nil {
		return nil, err
	}
	mergeMaps(configMap, fileMap)

	if o.envPrefix != "" {
		applyEnv(configMap, o.envPrefix, o.lookupFunc(), collectLeaves(reflect.TypeOf(defaultConfig)))
	}

	if o.cmd != nil {
		applyFlags(o.cmd, configMap, collectLeaves(reflect.TypeOf(defaultConfig)))
	}

	var cfg T
	if err := Decode(configMap, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// LoadCmd 是 [Load] 的便捷版本，适用于 CLI 场景。
//
// 它会注入 [WithCommand]，appName 非空时以 [DefaultPaths] 作为搜索路径。
//
// 示例：
//
//	cfg, err := cfgm.LoadCmd(cmd, DefaultConfig(), "myapp",
//	    cfgm.WithEnvPrefix("MYAPP_"),
//	)
func LoadCmd[T any](cmd *cli.Command, defaultConfig T, appName string, opts ...Option) (*T, error) {
	base := []Option{WithCommand(cmd)}
	if appName != "" {
		base = append(base, WithConfigPaths(DefaultPaths(appName)...))
	}

	return Load(defaultConfig, append(base, opts...)...)
}

// ReadFile 读取单个 YAML/JSON 文件，返回 key 规范化后的 mapping。
//
// 默认在解析前做 ${VAR} 展开，变量来源见 [WithEnvLookup]。
// 扩展名为 .json 时按 JSON 解析，否则按 YAML 解析。
func ReadFile(path string, opts ...Option) (map[string]any, error) {
	return newOptions(opts).readFile(path)
}

func (o *options) lookupFunc() func(string) (string, bool) {
	if o.lookup != nil {
		return o.lookup
	}

	return os.LookupEnv
}

func (o *options) readFile(path string) (map[string]any, error) {
	content, err := os.ReadFile(path) //nolint:gosec // path is from trusted config
	if err != nil {
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}

	if !o.noTemplateExpansion {
		expanded, err := ExpandTemplate(string(content), o.lookupFunc())
		if err != nil {
			return nil, fmt.Errorf("expand template in %s: %w", path, err)
		}
		content = []byte(expanded)
	}

	data, err := parseConfigBytes(path, content)
	if err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	slog.Debug("Loaded config from file", "path", path, "templateExpansion", !o.noTemplateExpansion)

	return data, nil
}

// readConfigFile 读取显式指定的文件，或按搜索路径读取首个存在的文件。
func (o *options) readConfigFile() (map[string]any, error) {
	if o.configFile != "" {
		return o.readFile(o.configFile)
	}

	for _, path := range o.configPaths {
		if _, err := os.Stat(path); err != nil {
			continue
		}

		return o.readFile(path)
	}
	if len(o.configPaths) > 0 {
		slog.Debug("No config file found, using defaults")
	}

	return nil, nil
}

// leaf 是配置结构体中的一个叶子字段。
type leaf struct {
	path string // json tag 拼接的路径，如 log.level
	flag string // CLI flag 名称
	typ  reflect.Type
}

// collectLeaves 递归收集配置结构体的叶子字段。
//
// flag 名称取自 flag tag，未设置时由路径生成 ("." 转为 "-")。
func collectLeaves(typ reflect.Type) []leaf {
	var leaves []leaf
	collectLeavesRecursive(typ, "", &leaves)

	return leaves
}

func collectLeavesRecursive(typ reflect.Type, prefix string, leaves *[]leaf) {
	if typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	if typ.Kind() != reflect.Struct {
		return
	}

	for i := range typ.NumField() {
		field := typ.Field(i)
		key := configTagName(field)
		if key == "" {
			continue
		}

		path := key
		if prefix != "" {
			path = prefix + "." + key
		}

		if isStructType(field.Type) {
			collectLeavesRecursive(field.Type, path, leaves)

			continue
		}

		flag := field.Tag.Get("flag")
		if flag == "" {
			flag = strings.ReplaceAll(path, ".", "-")
		}
		*leaves = append(*leaves, leaf{path: path, flag: flag, typ: field.Type})
	}
}

// envKey 由前缀与配置路径生成环境变量名，例如 APP_ + log.level → APP_LOG_LEVEL。
func envKey(prefix, path string) string {
	return prefix + strings.ToUpper(strings.NewReplacer(".", "_", "-", "_").Replace(path))
}

// applyEnv 将非空的前缀环境变量写入配置 map，切片字段按逗号拆分。
func applyEnv(config map[string]any, prefix string, lookup func(string) (string, bool), leaves []leaf) {
	for _, l := range leaves {
		key := envKey(prefix, l.path)
		val, ok := lookup(key)
		if !ok || val == "" {
			continue
		}

		if l.typ.Kind() == reflect.Slice {
			parts := strings.Split(val, ",")
			items := make([]any, 0, len(parts))
			for _, part := range parts {
				if part = strings.TrimSpace(part); part != "" {
					items = append(items, part)
				}
			}
			setByPath(config, l.path, items)
		} else {
			setByPath(config, l.path, val)
		}
		slog.Debug("Loaded env binding", "env", key, "path", l.path)
	}
}

// applyFlags 将用户显式设置的 CLI flags 写入配置 map。
//
// 未定义在 cmd 上的 flag 被忽略。支持的类型：string、bool、int、int64、
// float64、time.Duration 以及 []string、[]int、[]float64。
func applyFlags(cmd *cli.Command, config map[string]any, leaves []leaf) {
	for _, l := range leaves {
		if !cmd.IsSet(l.flag) {
			continue
		}
		if val, ok := flagValue(cmd, l); ok {
			setByPath(config, l.path, val)
		}
	}
}

func flagValue(cmd *cli.Command, l leaf) (any, bool) {
	if l.typ == durationType {
		return cmd.Duration(l.flag), true
	}

	switch l.typ.Kind() {
	case reflect.String:
		return cmd.String(l.flag), true
	case reflect.Bool:
		return cmd.Bool(l.flag), true
	case reflect.Int:
		return cmd.Int(l.flag), true
	case reflect.Int64:
		return cmd.Int64(l.flag), true
	case reflect.Float64:
		return cmd.Float64(l.flag), true
	case reflect.Slice:
		switch l.typ.Elem().Kind() {
		case reflect.String:
			return cmd.StringSlice(l.flag), true
		case reflect.Int:
			return cmd.IntSlice(l.flag), true
		case reflect.Float64:
			return cmd.Float64Slice(l.flag), true
		}
	}

	return nil, false
}
