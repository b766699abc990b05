package config

import (
	"time"

	"github.com/junbin-yang/go-argfsm/pkg/logger"
)

// DefaultDebounce 文件监听默认防抖间隔
const DefaultDebounce = 500 * time.Millisecond

type settings struct {
	appName      string
	serializer   Serializer   // 无法从后缀判断格式时使用
	forceFormat  Serializer   // 优先级最高
	formats      []Serializer // 按后缀识别的格式
	defaultPaths []string     // 默认路径模板，支持 {{.AppName}} {{.ExecDir}} {{.ConfigDir}}
	watch        bool
	debounce     time.Duration
	envPrefix    string   // 环境变量前缀
	dotenv       []string // 不存在的文件忽略
	log          logger.Logger
}

func defaultSettings() settings {
	return settings{
		appName:    "app",
		serializer: &YAMLSerializer{},
		formats:    []Serializer{&YAMLSerializer{}, &JSONSerializer{}, &INISerializer{}},
		defaultPaths: []string{
			"./{{.AppName}}",
			"./configs/{{.AppName}}",
			"{{.ExecDir}}/{{.AppName}}",
			"{{.ConfigDir}}/{{.AppName}}/{{.AppName}}",
			"/etc/{{.AppName}}/{{.AppName}}",
		},
		debounce: DefaultDebounce,
		log:      logger.Default(),
	}
}

// Option 配置管理器选项
type Option func(*settings)

// WithAppName 设置应用名称（默认配置文件名）
func WithAppName(name string) Option {
	return func(s *settings) {
		s.appName = name
	}
}

// WithSerializer 设置默认序列化器
func WithSerializer(serializer Serializer) Option {
	return func(s *settings) {
		s.serializer = serializer
	}
}

// WithForceFormat 强制指定配置格式（无视文件后缀）
func WithForceFormat(serializer Serializer) Option {
	return func(s *settings) {
		s.forceFormat = serializer
	}
}

// WithDefaultPaths 设置默认查找路径
func WithDefaultPaths(paths ...string) Option {
	return func(s *settings) {
		s.defaultPaths = paths
	}
}

// WithConfigFormats 设置支持的配置格式
func WithConfigFormats(formats ...Serializer) Option {
	return func(s *settings) {
		s.formats = formats
	}
}

// WithConfigWatch 启用文件监听，interval 为 0 时使用 DefaultDebounce
func WithConfigWatch(enable bool, interval time.Duration) Option {
	return func(s *settings) {
		s.watch = enable
		s.debounce = interval
		if interval <= 0 {
			s.debounce = DefaultDebounce
		}
	}
}

// WithEnvPrefix 为所有 env 标签加上前缀，如 BATTLE_
func WithEnvPrefix(prefix string) Option {
	return func(s *settings) {
		s.envPrefix = prefix
	}
}

// WithDotEnv 从 .env 文件补充环境变量，进程环境变量优先
func WithDotEnv(paths ...string) Option {
	return func(s *settings) {
		s.dotenv = append(s.dotenv, paths...)
	}
}

// WithLogger 设置日志器
func WithLogger(l logger.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.log = l
		}
	}
}
