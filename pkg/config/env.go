package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// applyEnvOverrides 按 env 标签用环境变量覆盖字段，嵌套结构体递归处理
//
// .env 文件中的变量只在进程环境变量未设置时生效；值无法解析时返回错误。
func applyEnvOverrides(v any, s *settings) error {
	vars, err := environment(s.dotenv)
	if err != nil {
		return err
	}
	return env.ParseWithOptions(v, env.Options{
		Environment: vars,
		Prefix:      s.envPrefix,
	})
}

func environment(dotenv []string) (map[string]string, error) {
	vars := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			vars[k] = v
		}
	}

	for _, path := range dotenv {
		if checkFile(path) != nil {
			continue
		}
		file, err := godotenv.Read(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		for k, v := range file {
			if _, set := vars[k]; !set {
				vars[k] = v
			}
		}
	}
	return vars, nil
}
