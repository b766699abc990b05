package statemachine

import (
	"fmt"

	pkgerrors "github.com/pkg/errors"
)

// request 一次待处理的转换请求，undo 为真时 target 无意义，出队时再从历史中解析
type request[K comparable] struct {
	target K
	undo   bool
}

// compactThreshold 队头空洞超过该值且过半时整理底层切片
const compactThreshold = 32

// transitionQueue 无界先进先出队列
type transitionQueue[K comparable] struct {
	items []request[K]
	head  int
}

func (q *transitionQueue[K]) push(r request[K]) {
	q.items = append(q.items, r)
}

func (q *transitionQueue[K]) pop() (request[K], bool) {
	if q.head >= len(q.items) {
		return request[K]{}, false
	}

	r := q.items[q.head]
	q.items[q.head] = request[K]{}
	q.head++

	switch {
	case q.head == len(q.items):
		q.items = q.items[:0]
		q.head = 0
	case q.head > compactThreshold && q.head*2 >= len(q.items):
		n := copy(q.items, q.items[q.head:])
		clear(q.items[n:])
		q.items = q.items[:n]
		q.head = 0
	}
	return r, true
}

func (q *transitionQueue[K]) len() int {
	return len(q.items) - q.head
}

// callHook 执行钩子，错误与 panic 统一包装为 *HookError
func callHook[K comparable](hook string, id K, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			var cause error
			if e, ok := r.(error); ok {
				cause = pkgerrors.WithStack(e)
			} else {
				cause = pkgerrors.Errorf("panic: %v", r)
			}
			err = &HookError{Hook: hook, State: fmt.Sprint(id), Err: cause}
		}
	}()

	if hookErr := fn(); hookErr != nil {
		return &HookError{Hook: hook, State: fmt.Sprint(id), Err: hookErr}
	}
	return nil
}
