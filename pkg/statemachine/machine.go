package statemachine

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/junbin-yang/go-argfsm/pkg/logger"
)

// Machine 基于转换队列的状态机
//
// 所有转换先入队再由遍历循环逐个处理；钩子内发起的转换只会入队，
// 由外层正在运行的循环按顺序消费。Machine 只保证调用栈上的重入安全，
// 不是并发安全的，所有方法应在同一个 goroutine 中调用。
type Machine[K comparable, C any] struct {
	ctx     C
	states  map[K]State[K, C]
	order   []K
	queue   transitionQueue[K]
	history *History[K]
	binders *binders[K]

	// 仅在遍历循环期间为 true
	transitioning bool

	errorHandler func(error)
	observers    []Observer[K]
	log          logger.Logger

	current    State[K, C]
	currentID  K
	hasCurrent bool

	previous    State[K, C]
	previousID  K
	hasPrevious bool
}

// New 创建状态机
//
// ctx 为共享上下文，由状态机在整个生命周期内持有；states 为已构造好的状态实例，
// 标识重复、实例为 nil、带参进入函数指向未注册状态时返回 *ConfigurationError。
// 返回前每个状态都已绑定到该状态机。
func New[K comparable, C any](ctx C, states []State[K, C], opts ...Option) (*Machine[K, C], error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if o.historySize < 0 {
		return nil, NewConfigurationError("history", fmt.Sprintf("negative history size %d", o.historySize))
	}

	m := &Machine[K, C]{
		ctx:          ctx,
		states:       make(map[K]State[K, C], len(states)),
		order:        make([]K, 0, len(states)),
		history:      NewHistory[K](o.historySize),
		binders:      newBinders[K](),
		errorHandler: o.errorHandler,
	}

	for i, s := range states {
		if s == nil {
			return nil, NewConfigurationError("states", fmt.Sprintf("state at index %d is nil", i))
		}
		id := s.ID()
		if _, dup := m.states[id]; dup {
			return nil, NewConfigurationError("states", fmt.Sprintf("duplicate state identifier %v", id))
		}
		m.states[id] = s
		m.order = append(m.order, id)
	}

	for _, e := range o.entries {
		id, ok := e.id.(K)
		if !ok {
			return nil, NewConfigurationError("entries", fmt.Sprintf("identifier %v has type %T, machine uses %s", e.id, e.id, typeName[K]()))
		}
		if _, ok := m.states[id]; !ok {
			return nil, NewConfigurationError("entries", fmt.Sprintf("entry registered for unknown state %v", id))
		}
		if e.fn == nil {
			return nil, NewConfigurationError("entries", fmt.Sprintf("nil entry function for state %v", id))
		}
		m.binders.invokers[id] = e.fn
	}

	for _, obs := range o.observers {
		observer, ok := obs.(Observer[K])
		if !ok {
			return nil, NewConfigurationError("observers", fmt.Sprintf("observer %T does not observe %s", obs, typeName[K]()))
		}
		m.observers = append(m.observers, observer)
	}

	log := o.logger
	if log == nil {
		log = logger.Default()
	}
	if o.name != "" {
		log = log.With(logger.String("machine", o.name))
	}
	m.log = log

	for _, s := range states {
		if err := s.Bind(m); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// Context 返回共享上下文
func (m *Machine[K, C]) Context() C {
	return m.ctx
}

// CurrentState 返回当前状态，首次转换前为 nil
func (m *Machine[K, C]) CurrentState() State[K, C] {
	return m.current
}

// CurrentID 返回当前状态标识
func (m *Machine[K, C]) CurrentID() (K, bool) {
	return m.currentID, m.hasCurrent
}

// PreviousState 返回上一个状态
func (m *Machine[K, C]) PreviousState() State[K, C] {
	return m.previous
}

// PreviousID 返回上一个状态标识
func (m *Machine[K, C]) PreviousID() (K, bool) {
	return m.previousID, m.hasPrevious
}

// State 按标识查找已注册的状态
func (m *Machine[K, C]) State(id K) (State[K, C], bool) {
	s, ok := m.states[id]
	return s, ok
}

// States 按注册顺序返回所有状态标识
func (m *Machine[K, C]) States() []K {
	return append([]K(nil), m.order...)
}

// History 按从旧到新的顺序返回转换历史
func (m *Machine[K, C]) History() []K {
	return m.history.Items()
}

// IsTransitioning 是否处于遍历循环中
func (m *Machine[K, C]) IsTransitioning() bool {
	return m.transitioning
}

// Pending 队列中尚未处理的请求数
func (m *Machine[K, C]) Pending() int {
	return m.queue.len()
}

// PendingArgs 返回指定状态参数槽中的内容
func (m *Machine[K, C]) PendingArgs(id K) (any, bool) {
	return m.binders.pending(id)
}

// ClearArgs 清空指定状态的参数槽，之后进入该状态时带参进入函数收到零值参数
func (m *Machine[K, C]) ClearArgs(id K) {
	m.binders.clear(id)
}

// Update 调用当前状态的 OnUpdate
//
// 遍历循环进行中或尚无当前状态时什么都不做。钩子错误直接返回，不经过异常处理器。
func (m *Machine[K, C]) Update() error {
	if m.transitioning || !m.hasCurrent {
		return nil
	}
	return callHook("update", m.currentID, m.current.OnUpdate)
}

// ScheduleTransition 将转换加入队列，不立即执行也不校验目标
func (m *Machine[K, C]) ScheduleTransition(id K) {
	m.queue.push(request[K]{target: id})
}

// ScheduleTransitionWith 写入目标状态的参数槽（覆盖旧值）后将转换加入队列
func (m *Machine[K, C]) ScheduleTransitionWith(id K, args any) {
	m.binders.store(id, args)
	m.queue.push(request[K]{target: id})
}

// ScheduleUndo 将撤销加入队列，目标在出队时才从历史中解析
func (m *Machine[K, C]) ScheduleUndo() {
	m.queue.push(request[K]{undo: true})
}

// Transition 入队并立即执行队列
func (m *Machine[K, C]) Transition(id K) error {
	m.ScheduleTransition(id)
	return m.ExecuteTransitionQueue()
}

// TransitionWith 带参数入队并立即执行队列
func (m *Machine[K, C]) TransitionWith(id K, args any) error {
	m.ScheduleTransitionWith(id, args)
	return m.ExecuteTransitionQueue()
}

// Undo 撤销入队并立即执行队列
func (m *Machine[K, C]) Undo() error {
	m.ScheduleUndo()
	return m.ExecuteTransitionQueue()
}

// ExecuteTransitionQueue 依次处理队列中的请求直到队列为空
//
// 已在遍历中时直接返回（请求已入队，外层循环会处理）。处理某个请求失败时停止循环，
// 剩余请求留在队列中等待下一次调用；错误交给异常处理器，未设置处理器时返回给调用方。
func (m *Machine[K, C]) ExecuteTransitionQueue() error {
	if m.transitioning {
		return nil
	}

	m.transitioning = true
	defer func() { m.transitioning = false }()

	for {
		req, ok := m.queue.pop()
		if !ok {
			return nil
		}
		if err := m.apply(req); err != nil {
			return m.handleError(err)
		}
	}
}

// Dispose 对所有已注册状态调用 OnDispose，不论是否为当前状态
//
// 单个状态失败不影响其余状态，错误合并返回。重复调用由调用方负责避免。
func (m *Machine[K, C]) Dispose() error {
	var err error
	for _, id := range m.order {
		err = multierr.Append(err, callHook("dispose", id, m.states[id].OnDispose))
	}
	return err
}

// apply 处理单个请求
func (m *Machine[K, C]) apply(req request[K]) error {
	target := req.target

	if req.undo {
		if m.history.Len() == 0 {
			m.log.Debug("undo discarded: history is empty")
			return nil
		}
		// 历史非空时 Pop 不会失败
		target, _ = m.history.Pop()
	}

	next, err := m.resolve(target)
	if err != nil {
		return err
	}

	from, hadCurrent := m.currentID, m.hasCurrent

	if m.hasCurrent {
		if err := callHook("exit", m.currentID, m.current.OnExit); err != nil {
			return err
		}
		// 撤销不记录被离开的状态，避免历史来回震荡
		if !req.undo {
			m.history.Push(m.currentID)
		}
	}

	m.previous, m.previousID, m.hasPrevious = m.current, m.currentID, m.hasCurrent
	m.current, m.currentID, m.hasCurrent = next, target, true

	withArgs, err := m.enter(target, next)
	if err != nil {
		return err
	}

	info := TransitionInfo[K]{From: from, HasFrom: hadCurrent, To: target, Undo: req.undo, Args: withArgs}
	m.log.Debug("state transition",
		logger.Any("from", from),
		logger.Any("to", target),
		logger.Bool("undo", req.undo),
		logger.Bool("args", withArgs),
		logger.Int("pending", m.queue.len()),
	)
	for _, obs := range m.observers {
		obs.OnTransition(info)
	}
	return nil
}

// resolve 校验目标，失败时不修改任何字段
func (m *Machine[K, C]) resolve(target K) (State[K, C], error) {
	from := ""
	if m.hasCurrent {
		from = fmt.Sprint(m.currentID)
	}

	if m.hasCurrent && target == m.currentID {
		return nil, &InvalidTransitionError{From: from, To: fmt.Sprint(target), Reason: "target is the current state"}
	}

	next, ok := m.states[target]
	if !ok {
		return nil, &InvalidTransitionError{From: from, To: fmt.Sprint(target), Reason: "state is not registered"}
	}
	return next, nil
}

// enter 注册了带参进入函数就走带参路径（空参数槽按零值传入），否则调用 OnEnter，二者只触发其一
func (m *Machine[K, C]) enter(id K, s State[K, C]) (bool, error) {
	if fn, args, ok := m.binders.lookup(id); ok {
		return true, callHook("enter", id, func() error { return fn(s, args) })
	}
	return false, callHook("enter", id, s.OnEnter)
}

func (m *Machine[K, C]) handleError(err error) error {
	m.log.Warn("transition aborted",
		logger.Err(err),
		logger.Int("pending", m.queue.len()),
	)
	for _, obs := range m.observers {
		obs.OnError(err)
	}

	if m.errorHandler != nil {
		m.errorHandler(err)
		return nil
	}
	return err
}
