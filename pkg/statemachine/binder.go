package statemachine

import (
	"fmt"
	"reflect"
)

// EntryFunc 带参进入函数：把待用参数交给目标状态的带参进入方法
//
// state 为目标状态实例，args 为该状态参数槽中的内容。
type EntryFunc func(state any, args any) error

// binders 参数绑定表：每个状态一个参数槽和一个带参进入函数
//
// 参数槽在进入后不会清空，再次无参转换到该状态时会重放上一次的参数。
type binders[K comparable] struct {
	slots    map[K]any
	invokers map[K]EntryFunc
}

func newBinders[K comparable]() *binders[K] {
	return &binders[K]{
		slots:    make(map[K]any),
		invokers: make(map[K]EntryFunc),
	}
}

func (b *binders[K]) store(id K, args any) {
	b.slots[id] = args
}

func (b *binders[K]) clear(id K) {
	delete(b.slots, id)
}

func (b *binders[K]) pending(id K) (any, bool) {
	args, ok := b.slots[id]
	return args, ok
}

// lookup 注册了进入函数就返回 true，参数槽为空时 args 为 nil
func (b *binders[K]) lookup(id K) (EntryFunc, any, bool) {
	fn, ok := b.invokers[id]
	if !ok {
		return nil, nil, false
	}
	return fn, b.slots[id], true
}

// BindEntry 以强类型方式注册带参进入函数
//
//	statemachine.BindEntry(PhaseLoading, func(s *LoadingState, url string) error {
//		return s.Enter(url)
//	})
//
// 状态实例必须能断言为 S，参数必须能断言为 A（nil 参数视为 A 的零值），
// 否则返回 *ArgumentError。
func BindEntry[K comparable, S any, A any](id K, enter func(state S, args A) error) Option {
	return WithEntry(id, func(state any, args any) error {
		s, ok := state.(S)
		if !ok {
			return &ArgumentError{State: fmt.Sprint(id), Want: typeName[S](), Got: fmt.Sprintf("%T", state)}
		}

		var a A
		if args != nil {
			if a, ok = args.(A); !ok {
				return &ArgumentError{State: fmt.Sprint(id), Want: typeName[A](), Got: fmt.Sprintf("%T", args)}
			}
		}
		return enter(s, a)
	})
}

func typeName[T any]() string {
	return reflect.TypeOf((*T)(nil)).Elem().String()
}
