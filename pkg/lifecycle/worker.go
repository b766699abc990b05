package lifecycle

import (
	"context"

	"github.com/pkg/errors"
)

// RunFunc 协程运行函数，ctx 取消后应尽快返回
type RunFunc func(ctx context.Context) error

// StopFunc 协程停止函数，用于 ctx 无法打断的阻塞（如监听端口、读标准输入）
type StopFunc func(ctx context.Context) error

// Worker 协程抽象
type Worker struct {
	name     string
	runFunc  RunFunc
	stopFunc StopFunc
	err      error
}

// WorkerOption 协程配置选项
type WorkerOption func(*Worker)

// NewWorker 创建协程
func NewWorker(name string, runFunc RunFunc, opts ...WorkerOption) *Worker {
	w := &Worker{name: name, runFunc: runFunc}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// WithStopFunc 设置停止函数
func WithStopFunc(stopFunc StopFunc) WorkerOption {
	return func(w *Worker) {
		w.stopFunc = stopFunc
	}
}

// Name 返回协程名称
func (w *Worker) Name() string {
	return w.name
}

// Run 运行协程，panic 转换为带调用栈的错误
func (w *Worker) Run(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("worker %s panic: %v", w.name, r)
		}
		w.err = err
	}()
	return w.runFunc(ctx)
}

// Stop 调用停止函数
func (w *Worker) Stop(ctx context.Context) error {
	if w.stopFunc == nil {
		return nil
	}
	return w.stopFunc(ctx)
}

// Err 返回最近一次运行的错误
func (w *Worker) Err() error {
	return w.err
}
