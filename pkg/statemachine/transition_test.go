package statemachine

import (
	"errors"
	"strings"
	"testing"
)

func TestTransitionQueue_FIFO(t *testing.T) {
	var q transitionQueue[int]

	for i := 0; i < 100; i++ {
		q.push(request[int]{target: i})
	}
	if q.len() != 100 {
		t.Fatalf("len() = %d, want 100", q.len())
	}

	for i := 0; i < 60; i++ {
		r, ok := q.pop()
		if !ok || r.target != i {
			t.Fatalf("pop() = %v, %v; want %d", r.target, ok, i)
		}
	}

	// 整理后继续追加，顺序不能乱
	q.push(request[int]{target: 100})
	for i := 60; i <= 100; i++ {
		r, ok := q.pop()
		if !ok || r.target != i {
			t.Fatalf("pop() = %v, %v; want %d", r.target, ok, i)
		}
	}

	if _, ok := q.pop(); ok {
		t.Error("pop() on empty queue should report false")
	}
	if q.len() != 0 {
		t.Errorf("len() = %d, want 0", q.len())
	}
}

func TestTransitionQueue_Undo(t *testing.T) {
	var q transitionQueue[string]
	q.push(request[string]{target: "a"})
	q.push(request[string]{undo: true})

	r, _ := q.pop()
	if r.undo || r.target != "a" {
		t.Errorf("first request = %+v, want target a", r)
	}
	r, _ = q.pop()
	if !r.undo {
		t.Errorf("second request = %+v, want undo sentinel", r)
	}
}

func TestCallHook_WrapsError(t *testing.T) {
	cause := errors.New("boom")
	err := callHook("enter", "idle", func() error { return cause })

	var he *HookError
	if !errors.As(err, &he) {
		t.Fatalf("expected *HookError, got %T", err)
	}
	if he.Hook != "enter" || he.State != "idle" {
		t.Errorf("HookError = %+v", he)
	}
	if !errors.Is(err, cause) || !errors.Is(err, ErrHookFailed) {
		t.Errorf("error chain broken: %v", err)
	}
}

func TestCallHook_RecoversPanic(t *testing.T) {
	err := callHook("exit", 3, func() error { panic("kaboom") })

	var he *HookError
	if !errors.As(err, &he) {
		t.Fatalf("expected *HookError, got %T", err)
	}
	if !strings.Contains(err.Error(), "kaboom") || he.State != "3" {
		t.Errorf("unexpected error %q", err)
	}

	sentinel := errors.New("sentinel")
	err = callHook("exit", 3, func() error { panic(sentinel) })
	if !errors.Is(err, sentinel) {
		t.Errorf("panic with error value should stay reachable, got %v", err)
	}

	if err := callHook("exit", 3, func() error { return nil }); err != nil {
		t.Errorf("nil hook result wrapped: %v", err)
	}
}
