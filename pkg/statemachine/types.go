package statemachine

import "fmt"

// State 状态能力集合，每个状态实例都要实现
//
// K 为状态标识（推荐使用枚举常量），C 为状态机持有的共享上下文。
// 钩子返回的 error 会中断当前的遍历循环，panic 会被恢复并转换为 *HookError。
type State[K comparable, C any] interface {
	// ID 返回状态标识，一个标识只对应一个实例
	ID() K

	// Bind 设置所属状态机，由 New 调用，之后不可更换
	Bind(m *Machine[K, C]) error

	// OnEnter 无参数进入（未注册带参进入或没有待用参数时调用）
	OnEnter() error

	// OnUpdate 仅在该状态为当前状态且状态机不处于遍历中时调用
	OnUpdate() error

	// OnExit 离开该状态时调用
	OnExit() error

	// OnDispose 状态机 Dispose 时对所有已注册状态各调用一次
	OnDispose() error
}

// BaseState 状态基础实现，嵌入后只需覆盖关心的钩子
type BaseState[K comparable, C any] struct {
	id      K
	machine *Machine[K, C]
}

// NewBaseState 创建状态基础实现
func NewBaseState[K comparable, C any](id K) BaseState[K, C] {
	return BaseState[K, C]{id: id}
}

func (s *BaseState[K, C]) ID() K {
	return s.id
}

func (s *BaseState[K, C]) Bind(m *Machine[K, C]) error {
	if m == nil {
		return NewConfigurationError("state", fmt.Sprintf("state %v bound to nil machine", s.id))
	}
	if s.machine != nil && s.machine != m {
		return NewConfigurationError("state", fmt.Sprintf("state %v already bound to another machine", s.id))
	}
	s.machine = m
	return nil
}

// Machine 返回所属状态机，未绑定时为 nil
func (s *BaseState[K, C]) Machine() *Machine[K, C] {
	return s.machine
}

// Context 返回状态机持有的共享上下文（借用，不转移所有权）
func (s *BaseState[K, C]) Context() C {
	if s.machine == nil {
		var zero C
		return zero
	}
	return s.machine.Context()
}

func (s *BaseState[K, C]) OnEnter() error   { return nil }
func (s *BaseState[K, C]) OnUpdate() error  { return nil }
func (s *BaseState[K, C]) OnExit() error    { return nil }
func (s *BaseState[K, C]) OnDispose() error { return nil }

// TransitionInfo 一次已完成的状态转换
type TransitionInfo[K comparable] struct {
	From    K    // 来源状态
	HasFrom bool // 首次转换时为 false
	To      K    // 目标状态
	Undo    bool // 是否由撤销触发
	Args    bool // 是否走了带参进入
}

// Observer 转换观察者
type Observer[K comparable] interface {
	OnTransition(info TransitionInfo[K])
	OnError(err error)
}

// ObserverFuncs 以函数形式实现 Observer，未设置的回调忽略
type ObserverFuncs[K comparable] struct {
	Transition func(info TransitionInfo[K])
	Error      func(err error)
}

func (o ObserverFuncs[K]) OnTransition(info TransitionInfo[K]) {
	if o.Transition != nil {
		o.Transition(info)
	}
}

func (o ObserverFuncs[K]) OnError(err error) {
	if o.Error != nil {
		o.Error(err)
	}
}
