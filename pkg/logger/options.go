package logger

import (
	"go.uber.org/zap"
)

// Option 日志器选项，直接复用 zap.Option
type Option = zap.Option

// AddCaller 输出调用位置
func AddCaller() Option {
	return zap.AddCaller()
}

// AddCallerSkip 跳过包装层的调用栈
func AddCallerSkip(skip int) Option {
	return zap.AddCallerSkip(skip)
}

// AddStacktrace 指定级别及以上输出堆栈
func AddStacktrace(level Level) Option {
	return zap.AddStacktrace(toZapLevel(level))
}
