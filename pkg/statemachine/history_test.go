package statemachine

import (
	"reflect"
	"testing"
)

func TestHistory_PushPop(t *testing.T) {
	h := NewHistory[string](3)

	h.Push("a")
	h.Push("b")

	if h.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", h.Len())
	}

	top, ok := h.Peek()
	if !ok || top != "b" {
		t.Errorf("Peek() = %q, %v; want b, true", top, ok)
	}

	got, err := h.Pop()
	if err != nil || got != "b" {
		t.Errorf("Pop() = %q, %v; want b", got, err)
	}
	got, err = h.Pop()
	if err != nil || got != "a" {
		t.Errorf("Pop() = %q, %v; want a", got, err)
	}

	if _, err := h.Pop(); err != ErrEmptyHistory {
		t.Errorf("Pop() on empty history: got %v, want ErrEmptyHistory", err)
	}
	if _, ok := h.Peek(); ok {
		t.Error("Peek() on empty history should report false")
	}
}

func TestHistory_OverwriteOldest(t *testing.T) {
	h := NewHistory[int](3)
	for i := 1; i <= 5; i++ {
		h.Push(i)
	}

	if h.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", h.Len())
	}
	if !reflect.DeepEqual(h.Items(), []int{3, 4, 5}) {
		t.Errorf("Items() = %v, want [3 4 5]", h.Items())
	}

	for _, want := range []int{5, 4, 3} {
		got, err := h.Pop()
		if err != nil || got != want {
			t.Errorf("Pop() = %d, %v; want %d", got, err, want)
		}
	}
	if h.Len() != 0 {
		t.Errorf("Len() = %d after draining, want 0", h.Len())
	}
}

func TestHistory_WrapAfterPop(t *testing.T) {
	h := NewHistory[int](2)
	h.Push(1)
	h.Push(2)
	h.Push(3)
	_, _ = h.Pop()
	h.Push(4)
	h.Push(5)

	if !reflect.DeepEqual(h.Items(), []int{4, 5}) {
		t.Errorf("Items() = %v, want [4 5]", h.Items())
	}
}

func TestHistory_Clear(t *testing.T) {
	h := NewHistory[string](2)
	h.Push("a")
	h.Push("b")
	h.Clear()

	if h.Len() != 0 || len(h.Items()) != 0 {
		t.Errorf("history not empty after Clear: %v", h.Items())
	}
	h.Push("c")
	if top, _ := h.Peek(); top != "c" {
		t.Errorf("Peek() after Clear+Push = %q, want c", top)
	}
	if h.Cap() != 2 {
		t.Errorf("Cap() = %d, want 2", h.Cap())
	}
}

func TestHistory_ZeroCapacity(t *testing.T) {
	h := NewHistory[string](0)
	h.Push("a")

	if h.Len() != 0 {
		t.Errorf("zero capacity history recorded %d entries", h.Len())
	}
	if _, err := h.Pop(); err != ErrEmptyHistory {
		t.Errorf("Pop() = %v, want ErrEmptyHistory", err)
	}

	if NewHistory[string](-1).Cap() != 0 {
		t.Error("negative capacity should be treated as 0")
	}
}
