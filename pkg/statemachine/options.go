package statemachine

import "github.com/junbin-yang/go-argfsm/pkg/logger"

// Option 状态机配置选项
type Option func(*options)

type entryBinding struct {
	id any
	fn EntryFunc
}

type options struct {
	historySize  int
	errorHandler func(error)
	logger       logger.Logger
	name         string
	entries      []entryBinding
	observers    []any
}

func defaultOptions() options {
	return options{
		historySize: DefaultHistorySize,
	}
}

// WithHistorySize 设置历史容量，0 表示不记录历史（撤销总是空操作）
func WithHistorySize(size int) Option {
	return func(o *options) {
		o.historySize = size
	}
}

// WithErrorHandler 设置异常处理器
//
// 设置后遍历循环中的错误交给处理器，ExecuteTransitionQueue 返回 nil；
// 未设置时错误原样返回给调用方。两种情况下剩余的请求都保留在队列中。
func WithErrorHandler(handler func(err error)) Option {
	return func(o *options) {
		o.errorHandler = handler
	}
}

// WithLogger 设置日志器，默认使用 logger.Default()
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithName 设置状态机名称，用于日志
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithEntry 为指定状态注册带参进入函数，标识类型须与状态机一致
func WithEntry[K comparable](id K, fn EntryFunc) Option {
	return func(o *options) {
		o.entries = append(o.entries, entryBinding{id: id, fn: fn})
	}
}

// WithObserver 注册转换观察者
func WithObserver[K comparable](observer Observer[K]) Option {
	return func(o *options) {
		o.observers = append(o.observers, observer)
	}
}
