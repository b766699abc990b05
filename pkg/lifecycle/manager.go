package lifecycle

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/multierr"

	"github.com/junbin-yang/go-argfsm/pkg/logger"
)

// Manager 生命周期管理器
//
// Run 启动所有协程并阻塞，直到收到信号、某个协程返回错误、调用 Shutdown，
// 或在 WithExitWhenIdle 下所有协程都已退出。随后执行一次退出流程。
type Manager struct {
	mu      sync.Mutex
	workers map[string]*Worker
	cancels map[string]context.CancelFunc
	order   []string
	hooks   hooks

	signals         []os.Signal
	shutdownTimeout time.Duration
	exitWhenIdle    bool
	rootCtx         context.Context
	log             logger.Logger

	ctx     context.Context
	cancel  context.CancelFunc
	started bool
	active  int
	wg      sync.WaitGroup
	errChan chan error
	idle    chan struct{}

	// Run 结束时关闭，stopErr 为退出流程的结果
	stopped chan struct{}
	stopErr error
}

// NewManager 创建生命周期管理器
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		workers:         make(map[string]*Worker),
		cancels:         make(map[string]context.CancelFunc),
		signals:         []os.Signal{syscall.SIGINT, syscall.SIGTERM},
		shutdownTimeout: 30 * time.Second,
		rootCtx:         context.Background(),
		log:             logger.Default(),
		errChan:         make(chan error, 1),
		idle:            make(chan struct{}, 1),
		stopped:         make(chan struct{}),
	}

	for _, opt := range opts {
		opt(m)
	}
	return m
}

// AddWorker 添加协程，管理器运行中时立即启动
func (m *Manager) AddWorker(name string, runFunc RunFunc, opts ...WorkerOption) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.workers[name]; exists {
		return ErrWorkerExists
	}

	w := NewWorker(name, runFunc, opts...)
	m.workers[name] = w
	m.order = append(m.order, name)

	if m.started {
		m.launch(w)
	}
	return nil
}

// StopWorker 停止指定协程
func (m *Manager) StopWorker(name string) error {
	m.mu.Lock()
	w, exists := m.workers[name]
	cancel := m.cancels[name]
	m.mu.Unlock()

	if !exists {
		return ErrWorkerNotFound
	}
	if cancel != nil {
		cancel()
	}

	ctx, done := context.WithTimeout(context.Background(), m.shutdownTimeout)
	defer done()
	return w.Stop(ctx)
}

// Workers 按添加顺序返回仍在管理中的协程名称
func (m *Manager) Workers() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.order...)
}

// OnStartup 注册启动钩子，任一失败则 Run 返回该错误
func (m *Manager) OnStartup(fn HookFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks.onStartup = append(m.hooks.onStartup, fn)
}

// OnWorkerStart 注册协程启动钩子
func (m *Manager) OnWorkerStart(fn WorkerHookFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks.onWorkerStart = append(m.hooks.onWorkerStart, fn)
}

// OnWorkerExit 注册协程退出钩子
func (m *Manager) OnWorkerExit(fn WorkerHookFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks.onWorkerExit = append(m.hooks.onWorkerExit, fn)
}

// OnShutdown 注册退出钩子，所有协程结束后按注册逆序执行
func (m *Manager) OnShutdown(fn HookFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks.onShutdown = append(m.hooks.onShutdown, fn)
}

// OnTimeout 注册超时钩子
func (m *Manager) OnTimeout(fn HookFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks.onTimeout = append(m.hooks.onTimeout, fn)
}

// Run 启动管理器并等待退出
//
// 协程返回的错误与退出流程的错误合并返回。
func (m *Manager) Run() error {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return ErrAlreadyRunning
	}
	m.started = true
	m.ctx, m.cancel = context.WithCancel(m.rootCtx)
	ctx := m.ctx
	m.mu.Unlock()

	defer close(m.stopped)

	if err := m.hooks.startup(ctx); err != nil {
		m.cancel()
		m.stopErr = err
		return err
	}

	m.mu.Lock()
	for _, name := range m.order {
		m.launch(m.workers[name])
	}
	if m.exitWhenIdle && m.active == 0 {
		m.notifyIdle()
	}
	m.mu.Unlock()
	m.log.Info("lifecycle started", logger.Strings("workers", m.Workers()))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, m.signals...)
	defer signal.Stop(sigChan)

	var runErr error
	select {
	case sig := <-sigChan:
		m.log.Info("signal received", logger.String("signal", sig.String()))
	case runErr = <-m.errChan:
		m.log.Error("worker failed", logger.Err(runErr))
	case <-m.idle:
		// 最后一个协程可能是带着错误退出的
		select {
		case runErr = <-m.errChan:
		default:
		}
		m.log.Info("all workers finished", logger.Err(runErr))
	case <-ctx.Done():
	}

	m.cancel()
	m.stopErr = multierr.Append(runErr, m.shutdown())
	return m.stopErr
}

// Shutdown 触发退出并等待 Run 完成退出流程
//
// 不要在协程内部调用：退出流程要等待所有协程结束，协程应直接返回。
func (m *Manager) Shutdown() error {
	m.mu.Lock()
	started, cancel := m.started, m.cancel
	m.mu.Unlock()

	if !started {
		return ErrNotRunning
	}
	if cancel != nil {
		cancel()
	}
	<-m.stopped
	return m.stopErr
}

// launch 调用方持有锁
func (m *Manager) launch(w *Worker) {
	ctx, cancel := context.WithCancel(m.ctx)
	m.cancels[w.name] = cancel
	m.active++
	m.wg.Add(1)

	go func() {
		defer m.wg.Done()

		m.hooks.workerStart(w.name)
		err := w.Run(ctx)
		m.hooks.workerExit(w.name, err)

		if err != nil && !errors.Is(err, context.Canceled) {
			m.log.Warn("worker exited", logger.String("worker", w.name), logger.Err(err))
			select {
			case m.errChan <- err:
			default:
			}
		} else {
			m.log.Debug("worker exited", logger.String("worker", w.name))
		}

		m.mu.Lock()
		cancel()
		m.remove(w.name)
		m.active--
		if m.exitWhenIdle && m.active == 0 {
			m.notifyIdle()
		}
		m.mu.Unlock()
	}()
}

// remove 调用方持有锁
func (m *Manager) remove(name string) {
	delete(m.cancels, name)
	delete(m.workers, name)
	for i, n := range m.order {
		if n == name {
			m.order = append(m.order[:i], m.order[i+1:]...)
			return
		}
	}
}

func (m *Manager) notifyIdle() {
	select {
	case m.idle <- struct{}{}:
	default:
	}
}

// shutdown 取消协程、逆序调用停止函数、等待退出后执行退出钩子
func (m *Manager) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), m.shutdownTimeout)
	defer cancel()

	m.mu.Lock()
	for _, c := range m.cancels {
		c()
	}
	stoppers := make([]*Worker, 0, len(m.order))
	for i := len(m.order) - 1; i >= 0; i-- {
		stoppers = append(stoppers, m.workers[m.order[i]])
	}
	m.mu.Unlock()

	var err error
	for _, w := range stoppers {
		err = multierr.Append(err, w.Stop(ctx))
	}

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		m.log.Error("shutdown timeout", logger.Duration("timeout", m.shutdownTimeout))
		err = multierr.Append(err, m.hooks.timeout(ctx))
		return multierr.Append(err, ErrShutdownTimeout)
	}

	err = multierr.Append(err, m.hooks.shutdown(ctx))
	m.log.Info("lifecycle stopped")
	return err
}
