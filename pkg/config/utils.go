package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// pathVars 默认路径模板可用的变量
func pathVars(appName string) map[string]string {
	vars := map[string]string{"AppName": appName}
	if exe, err := os.Executable(); err == nil {
		vars["ExecDir"] = filepath.Dir(exe)
	}
	if dir, err := os.UserConfigDir(); err == nil {
		vars["ConfigDir"] = dir
	}
	return vars
}

// expandPath 先替换 {{.Name}} 变量，再展开 ~ 和 $ENV
//
// 模板中引用了不存在的变量时返回空串，调用方跳过该路径。
func expandPath(tpl string, vars map[string]string) string {
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys)*2)
	for _, k := range keys {
		pairs = append(pairs, "{{."+k+"}}", vars[k])
	}
	path := strings.NewReplacer(pairs...).Replace(tpl)
	if strings.Contains(path, "{{.") {
		return ""
	}

	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[1:])
		}
	}
	return os.ExpandEnv(path)
}

// checkFile 路径必须指向已存在的普通文件
func checkFile(path string) error {
	if path == "" {
		return errors.New("path is empty")
	}

	fi, err := os.Stat(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("file does not exist: %s", path)
	case err != nil:
		return fmt.Errorf("stat %s: %w", path, err)
	case fi.IsDir():
		return fmt.Errorf("path is a directory: %s", path)
	}
	return nil
}
