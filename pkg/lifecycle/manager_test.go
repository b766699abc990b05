package lifecycle

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/junbin-yang/go-argfsm/pkg/logger"
)

func newTestManager(opts ...Option) *Manager {
	opts = append([]Option{WithLogger(logger.NewNop()), WithShutdownTimeout(time.Second)}, opts...)
	return NewManager(opts...)
}

func blockUntilDone(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

func TestManager_AddWorker(t *testing.T) {
	m := newTestManager()

	if err := m.AddWorker("test", blockUntilDone); err != nil {
		t.Fatalf("添加协程失败: %v", err)
	}
	if err := m.AddWorker("test", blockUntilDone); err != ErrWorkerExists {
		t.Errorf("期望 ErrWorkerExists, got %v", err)
	}
	if got := m.Workers(); len(got) != 1 || got[0] != "test" {
		t.Errorf("Workers() = %v", got)
	}
}

func TestManager_ShutdownBeforeRun(t *testing.T) {
	m := newTestManager()
	if err := m.Shutdown(); err != ErrNotRunning {
		t.Errorf("期望 ErrNotRunning, got %v", err)
	}
}

func TestManager_Hooks(t *testing.T) {
	m := newTestManager()

	var order []string
	m.OnStartup(func(ctx context.Context) error {
		order = append(order, "startup")
		return nil
	})
	var started, exited atomic.Int32
	m.OnWorkerStart(func(name string, err error) { started.Add(1) })
	m.OnWorkerExit(func(name string, err error) { exited.Add(1) })
	m.OnShutdown(func(ctx context.Context) error {
		order = append(order, "shutdown-1")
		return nil
	})
	m.OnShutdown(func(ctx context.Context) error {
		order = append(order, "shutdown-2")
		return nil
	})

	_ = m.AddWorker("test", blockUntilDone)

	go func() {
		time.Sleep(100 * time.Millisecond)
		_ = m.Shutdown()
	}()

	if err := m.Run(); err != nil {
		t.Fatalf("Run 返回错误: %v", err)
	}

	if started.Load() != 1 || exited.Load() != 1 {
		t.Errorf("协程钩子调用次数不符: start=%d exit=%d", started.Load(), exited.Load())
	}
	want := []string{"startup", "shutdown-2", "shutdown-1"}
	if strings.Join(order, ",") != strings.Join(want, ",") {
		t.Errorf("钩子顺序 %v, 期望 %v", order, want)
	}
}

func TestManager_StartupError(t *testing.T) {
	m := newTestManager()
	cause := errors.New("startup failed")
	m.OnStartup(func(ctx context.Context) error { return cause })

	ran := false
	_ = m.AddWorker("test", func(ctx context.Context) error {
		ran = true
		return nil
	})

	if err := m.Run(); err != cause {
		t.Errorf("期望启动错误, got %v", err)
	}
	if ran {
		t.Error("启动失败后不应运行协程")
	}
	if err := m.Run(); err != ErrAlreadyRunning {
		t.Errorf("期望 ErrAlreadyRunning, got %v", err)
	}
}

func TestManager_WorkerError(t *testing.T) {
	m := newTestManager()
	expected := errors.New("worker error")

	_ = m.AddWorker("failing", func(ctx context.Context) error {
		return expected
	})
	cancelled := make(chan struct{})
	_ = m.AddWorker("other", func(ctx context.Context) error {
		<-ctx.Done()
		close(cancelled)
		return nil
	})

	if err := m.Run(); !errors.Is(err, expected) {
		t.Errorf("期望错误 %v, got %v", expected, err)
	}
	select {
	case <-cancelled:
	default:
		t.Error("协程出错后其余协程应被取消")
	}
}

func TestManager_WorkerPanic(t *testing.T) {
	m := newTestManager()
	_ = m.AddWorker("panicky", func(ctx context.Context) error {
		panic("boom")
	})

	err := m.Run()
	if err == nil || !strings.Contains(err.Error(), "panicky panic: boom") {
		t.Errorf("panic 应转换为错误, got %v", err)
	}
}

func TestManager_ExitWhenIdle(t *testing.T) {
	m := newTestManager(WithExitWhenIdle())

	var shutdown bool
	m.OnShutdown(func(ctx context.Context) error {
		shutdown = true
		return nil
	})
	_ = m.AddWorker("short", func(ctx context.Context) error {
		time.Sleep(20 * time.Millisecond)
		return nil
	})

	done := make(chan error, 1)
	go func() { done <- m.Run() }()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run 返回错误: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("所有协程退出后 Run 应返回")
	}
	if !shutdown {
		t.Error("OnShutdown 未被调用")
	}
}

func TestManager_StopWorker(t *testing.T) {
	m := newTestManager()

	stopped := make(chan struct{})
	var stopFuncCalled atomic.Bool
	_ = m.AddWorker("test", func(ctx context.Context) error {
		<-ctx.Done()
		close(stopped)
		return nil
	}, WithStopFunc(func(ctx context.Context) error {
		stopFuncCalled.Store(true)
		return nil
	}))
	_ = m.AddWorker("keep", blockUntilDone)

	go func() {
		time.Sleep(100 * time.Millisecond)
		_ = m.StopWorker("test")
		<-stopped
		time.Sleep(50 * time.Millisecond)
		_ = m.Shutdown()
	}()

	_ = m.Run()

	if !stopFuncCalled.Load() {
		t.Error("StopFunc 未被调用")
	}
	if err := m.StopWorker("test"); err != ErrWorkerNotFound {
		t.Errorf("期望 ErrWorkerNotFound, got %v", err)
	}
}

func TestManager_DynamicWorker(t *testing.T) {
	m := newTestManager()
	_ = m.AddWorker("long-running", blockUntilDone)

	var ran atomic.Bool
	go func() {
		time.Sleep(100 * time.Millisecond)
		_ = m.AddWorker("temp-task", func(ctx context.Context) error {
			ran.Store(true)
			return nil
		})
		time.Sleep(100 * time.Millisecond)
		_ = m.Shutdown()
	}()

	_ = m.Run()
	if !ran.Load() {
		t.Error("运行中添加的协程未执行")
	}
}

func TestManager_ShutdownTimeout(t *testing.T) {
	m := newTestManager(WithShutdownTimeout(100 * time.Millisecond))

	release := make(chan struct{})
	defer close(release)
	_ = m.AddWorker("stuck", func(ctx context.Context) error {
		<-release
		return nil
	})

	var timeoutCalled bool
	m.OnTimeout(func(ctx context.Context) error {
		timeoutCalled = true
		return nil
	})

	go func() {
		time.Sleep(50 * time.Millisecond)
		_ = m.Shutdown()
	}()

	if err := m.Run(); !errors.Is(err, ErrShutdownTimeout) {
		t.Errorf("期望 ErrShutdownTimeout, got %v", err)
	}
	if !timeoutCalled {
		t.Error("OnTimeout 未被调用")
	}
}

func TestWorker_StopFunc(t *testing.T) {
	stopCalled := false
	w := NewWorker("test", blockUntilDone, WithStopFunc(func(ctx context.Context) error {
		stopCalled = true
		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := w.Run(ctx); err != nil || w.Err() != nil {
		t.Errorf("Run 返回错误: %v", err)
	}
	_ = w.Stop(context.Background())

	if !stopCalled {
		t.Error("StopFunc 未被调用")
	}
	if w.Name() != "test" {
		t.Errorf("Name() = %s", w.Name())
	}
}
