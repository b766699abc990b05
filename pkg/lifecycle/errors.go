package lifecycle

import "errors"

var (
	// ErrWorkerExists 同名协程已存在
	ErrWorkerExists = errors.New("lifecycle: worker already exists")

	// ErrWorkerNotFound 协程不存在或已退出
	ErrWorkerNotFound = errors.New("lifecycle: worker not found")

	// ErrShutdownTimeout 退出超时，仍有协程未结束
	ErrShutdownTimeout = errors.New("lifecycle: shutdown timeout")

	// ErrAlreadyRunning Run 只能调用一次
	ErrAlreadyRunning = errors.New("lifecycle: manager already running")

	// ErrNotRunning 管理器尚未启动
	ErrNotRunning = errors.New("lifecycle: manager not running")
)
