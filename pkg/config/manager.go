package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/junbin-yang/go-argfsm/pkg/logger"
)

// ErrNotLoaded 尚未成功加载配置
var ErrNotLoaded = errors.New("config: not loaded, call Load first")

// ConfigManager 通用配置管理器，T 为配置结构体类型
type ConfigManager[T any] struct {
	mu       sync.RWMutex
	instance *T
	path     string
	loaded   bool
	loadErr  error
	once     sync.Once

	settings   settings
	serializer Serializer

	watcher   *fsnotify.Watcher
	watchQuit chan struct{}
	closeOnce sync.Once

	callbacks []func(old, new *T)
}

// NewConfigManager 创建配置管理器
//
// cfg 中已有的字段值作为默认值，文件中缺失的字段保持不变。
func NewConfigManager[T any](cfg *T, opts ...Option) *ConfigManager[T] {
	if cfg == nil {
		cfg = new(T)
	}

	s := defaultSettings()
	for _, opt := range opts {
		opt(&s)
	}

	return &ConfigManager[T]{
		instance:   cfg,
		settings:   s,
		serializer: s.serializer,
		watchQuit:  make(chan struct{}),
	}
}

// Load 加载配置文件，只执行一次
//
// customPath 为空时按默认路径模板查找。
func (cm *ConfigManager[T]) Load(customPath string) error {
	cm.once.Do(func() {
		cm.loadErr = cm.load(customPath)
	})
	return cm.loadErr
}

func (cm *ConfigManager[T]) load(customPath string) error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if customPath != "" {
		if err := checkFile(customPath); err != nil {
			return fmt.Errorf("invalid custom config path: %w", err)
		}
		cm.path = customPath
		cm.serializer = cm.chooseSerializer(customPath)
	} else {
		path, serializer, err := cm.findDefaultConfigPath()
		if err != nil {
			return fmt.Errorf("default config not found: %w", err)
		}
		cm.path, cm.serializer = path, serializer
	}

	if err := cm.decode(cm.path, cm.instance); err != nil {
		return err
	}

	cm.loaded = true
	cm.settings.log.Info("config loaded",
		logger.String("path", cm.path),
		logger.String("format", cm.serializer.Name()),
	)

	if cm.settings.watch {
		if err := cm.startWatch(); err != nil {
			cm.settings.log.Warn("config watch disabled", logger.Err(err))
		}
	}
	return nil
}

// Get 返回当前配置
//
// 重新加载会替换整个实例，调用方持有的旧指针不受影响。
func (cm *ConfigManager[T]) Get() (*T, error) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	if cm.loadErr != nil {
		return nil, cm.loadErr
	}
	if !cm.loaded {
		return nil, ErrNotLoaded
	}
	return cm.instance, nil
}

// Path 返回实际使用的配置文件路径
func (cm *ConfigManager[T]) Path() string {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.path
}

// Save 将当前配置写回文件（先写临时文件再替换）
func (cm *ConfigManager[T]) Save() error {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	if !cm.loaded {
		return ErrNotLoaded
	}

	data, err := cm.serializer.Marshal(cm.instance)
	if err != nil {
		return fmt.Errorf("marshal config failed: %w", err)
	}

	tmp := cm.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp config failed: %w", err)
	}
	if err := os.Rename(tmp, cm.path); err != nil {
		return fmt.Errorf("rename temp config failed: %w", err)
	}
	return nil
}

// Reload 重新读取配置文件并触发变更回调
func (cm *ConfigManager[T]) Reload() error {
	cm.mu.Lock()
	if !cm.loaded {
		cm.mu.Unlock()
		return ErrNotLoaded
	}

	// 以旧配置为底，保留文件中没有的字段
	next := new(T)
	*next = *cm.instance
	if err := cm.decode(cm.path, next); err != nil {
		cm.mu.Unlock()
		return err
	}

	old := cm.instance
	cm.instance = next
	callbacks := slices.Clone(cm.callbacks)
	cm.mu.Unlock()

	// 回调在锁外执行，允许回调中调用 Get
	for _, cb := range callbacks {
		cb(old, next)
	}
	return nil
}

// OnChange 注册配置变更回调
func (cm *ConfigManager[T]) OnChange(cb func(old, new *T)) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.callbacks = append(cm.callbacks, cb)
}

// EnableWatch 动态启用或关闭文件监听
func (cm *ConfigManager[T]) EnableWatch(enable bool) error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	cm.settings.watch = enable
	if !enable {
		cm.stopWatch()
		return nil
	}
	if !cm.loaded {
		return nil
	}
	return cm.startWatch()
}

// Close 停止监听，可重复调用
func (cm *ConfigManager[T]) Close() {
	cm.closeOnce.Do(func() {
		cm.mu.Lock()
		cm.stopWatch()
		cm.mu.Unlock()
		close(cm.watchQuit)
	})
}

/* ------------------------------ 内部方法 ------------------------------ */

func (cm *ConfigManager[T]) decode(path string, into *T) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file failed: %w", err)
	}
	if err := cm.serializer.Unmarshal(data, into); err != nil {
		return fmt.Errorf("unmarshal failed (%s): %w", cm.serializer.Name(), err)
	}
	if err := applyEnvOverrides(into, &cm.settings); err != nil {
		return fmt.Errorf("apply env overrides failed: %w", err)
	}
	return nil
}

// chooseSerializer 强制格式 > 后缀识别 > 默认
func (cm *ConfigManager[T]) chooseSerializer(path string) Serializer {
	if cm.settings.forceFormat != nil {
		return cm.settings.forceFormat
	}
	ext := filepath.Ext(path)
	for _, format := range cm.settings.formats {
		if hasExt(format, ext) {
			return format
		}
	}
	return cm.settings.serializer
}

func (cm *ConfigManager[T]) findDefaultConfigPath() (string, Serializer, error) {
	vars := pathVars(cm.settings.appName)

	for _, tpl := range cm.settings.defaultPaths {
		base := expandPath(tpl, vars)
		if base == "" {
			continue
		}

		if checkFile(base) == nil {
			return base, cm.chooseSerializer(base), nil
		}
		for _, format := range cm.settings.formats {
			if full := base + format.Exts()[0]; checkFile(full) == nil {
				return full, format, nil
			}
		}
	}
	return "", nil, errors.New("no config file in default paths")
}

// startWatch 调用方持有写锁
func (cm *ConfigManager[T]) startWatch() error {
	if cm.watcher != nil {
		return nil
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher failed: %w", err)
	}
	// 监听所在目录，编辑器以重命名方式保存时文件本身的监听会丢失
	if err := w.Add(filepath.Dir(cm.path)); err != nil {
		w.Close()
		return fmt.Errorf("add watch path failed: %w", err)
	}

	cm.watcher = w
	go cm.watchLoop(w, cm.path, cm.settings.debounce)
	return nil
}

// stopWatch 调用方持有写锁
func (cm *ConfigManager[T]) stopWatch() {
	if cm.watcher != nil {
		cm.watcher.Close()
		cm.watcher = nil
	}
}

func (cm *ConfigManager[T]) watchLoop(w *fsnotify.Watcher, path string, debounce time.Duration) {
	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	target := filepath.Clean(path)
	for {
		select {
		case event, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				timer.Reset(debounce)
			}

		case <-timer.C:
			if err := cm.Reload(); err != nil {
				cm.settings.log.Warn("config auto reload failed", logger.Err(err))
			} else {
				cm.settings.log.Info("config auto reloaded", logger.String("path", path))
			}

		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			cm.settings.log.Warn("config watch error", logger.Err(err))

		case <-cm.watchQuit:
			return
		}
	}
}
