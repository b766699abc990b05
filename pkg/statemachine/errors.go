package statemachine

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration 状态机构造参数非法（重复标识等）
	ErrConfiguration = errors.New("statemachine: invalid configuration")

	// ErrInvalidTransition 目标状态未注册或与当前状态相同
	ErrInvalidTransition = errors.New("statemachine: invalid transition")

	// ErrEmptyHistory 从空历史中弹出
	ErrEmptyHistory = errors.New("statemachine: history is empty")

	// ErrArgumentType 待用参数或状态类型与带参进入函数不匹配
	ErrArgumentType = errors.New("statemachine: argument type mismatch")

	// ErrHookFailed 状态钩子返回错误或发生 panic
	ErrHookFailed = errors.New("statemachine: hook failed")
)

// ConfigurationError 构造阶段的配置错误
type ConfigurationError struct {
	Component string
	Issue     string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("statemachine: configuration error in %s: %s", e.Component, e.Issue)
}

func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }

// NewConfigurationError 创建配置错误
func NewConfigurationError(component, issue string) *ConfigurationError {
	return &ConfigurationError{Component: component, Issue: issue}
}

// InvalidTransitionError 非法转换，返回时状态机未做任何修改
type InvalidTransitionError struct {
	From   string
	To     string
	Reason string
}

func (e *InvalidTransitionError) Error() string {
	from := e.From
	if from == "" {
		from = "<none>"
	}
	return fmt.Sprintf("statemachine: invalid transition [%s->%s]: %s", from, e.To, e.Reason)
}

func (e *InvalidTransitionError) Unwrap() error { return ErrInvalidTransition }

// HookError 状态钩子失败
type HookError struct {
	Hook  string // enter / update / exit / dispose
	State string
	Err   error
}

func (e *HookError) Error() string {
	return fmt.Sprintf("statemachine: %s hook of state %s failed: %v", e.Hook, e.State, e.Err)
}

func (e *HookError) Unwrap() error { return e.Err }

func (e *HookError) Is(target error) bool { return target == ErrHookFailed }

// ArgumentError 带参进入时类型不匹配
type ArgumentError struct {
	State string
	Want  string
	Got   string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("statemachine: state %s expects %s, got %s", e.State, e.Want, e.Got)
}

func (e *ArgumentError) Unwrap() error { return ErrArgumentType }

// IsConfigurationError 检查是否为配置错误
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

// IsInvalidTransition 检查是否为非法转换
func IsInvalidTransition(err error) bool {
	return errors.Is(err, ErrInvalidTransition)
}
