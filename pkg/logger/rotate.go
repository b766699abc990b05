package logger

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"gopkg.in/natefinch/lumberjack.v2"
)

// RotateConfig 日志轮转配置
type RotateConfig struct {
	Filename string // 日志文件路径

	// 按大小轮转
	MaxSize    int  // 单文件上限（MB）
	MaxBackups int  // 保留旧文件个数
	Compress   bool // 是否压缩旧文件

	// 按时间轮转
	RotationTime time.Duration // 轮转间隔

	MaxAge    int  // 保留天数
	LocalTime bool // 文件名使用本地时间
}

// NewRotateBySize 按大小轮转
func NewRotateBySize(cfg *RotateConfig) io.Writer {
	return &lumberjack.Logger{
		Filename:   cfg.Filename,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
		LocalTime:  cfg.LocalTime,
	}
}

// NewProductionRotateBySize 生产环境默认参数：100MB、保留30天、压缩
func NewProductionRotateBySize(filename string) io.Writer {
	return NewRotateBySize(&RotateConfig{
		Filename:   filename,
		MaxSize:    100,
		MaxBackups: 10,
		MaxAge:     30,
		Compress:   true,
		LocalTime:  true,
	})
}

// NewRotateByTime 按时间轮转，文件名追加时间后缀，并维护指向最新文件的软链接
func NewRotateByTime(cfg *RotateConfig) (io.Writer, error) {
	if cfg.Filename == "" {
		return nil, fmt.Errorf("rotate: filename is empty")
	}

	rotation := cfg.RotationTime
	if rotation <= 0 {
		rotation = 24 * time.Hour
	}

	opts := []rotatelogs.Option{
		rotatelogs.WithLinkName(cfg.Filename),
		rotatelogs.WithRotationTime(rotation),
	}
	if cfg.MaxAge > 0 {
		opts = append(opts, rotatelogs.WithMaxAge(time.Duration(cfg.MaxAge)*24*time.Hour))
	}
	if !cfg.LocalTime {
		opts = append(opts, rotatelogs.WithClock(rotatelogs.UTC))
	}

	ext := filepath.Ext(cfg.Filename)
	pattern := strings.TrimSuffix(cfg.Filename, ext) + ".%Y%m%d%H%M" + ext

	w, err := rotatelogs.New(pattern, opts...)
	if err != nil {
		return nil, fmt.Errorf("rotate: %w", err)
	}
	return w, nil
}
