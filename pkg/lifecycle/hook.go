package lifecycle

import (
	"context"

	"go.uber.org/multierr"
)

// HookFunc 钩子函数
type HookFunc func(ctx context.Context) error

// WorkerHookFunc 协程钩子函数，启动时 err 为 nil
type WorkerHookFunc func(name string, err error)

type hooks struct {
	onStartup     []HookFunc
	onWorkerStart []WorkerHookFunc
	onWorkerExit  []WorkerHookFunc
	onShutdown    []HookFunc
	onTimeout     []HookFunc
}

// startup 遇到第一个错误即停止
func (h *hooks) startup(ctx context.Context) error {
	for _, fn := range h.onStartup {
		if err := fn(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (h *hooks) workerStart(name string) {
	for _, fn := range h.onWorkerStart {
		fn(name, nil)
	}
}

func (h *hooks) workerExit(name string, err error) {
	for _, fn := range h.onWorkerExit {
		fn(name, err)
	}
}

// shutdown 按注册的逆序执行全部钩子，错误合并返回
func (h *hooks) shutdown(ctx context.Context) error {
	var err error
	for i := len(h.onShutdown) - 1; i >= 0; i-- {
		err = multierr.Append(err, h.onShutdown[i](ctx))
	}
	return err
}

func (h *hooks) timeout(ctx context.Context) error {
	var err error
	for _, fn := range h.onTimeout {
		err = multierr.Append(err, fn(ctx))
	}
	return err
}
