package statemachine

// DefaultHistorySize 默认历史容量
const DefaultHistorySize = 10

// History 转换历史，栈式接口，内部为固定容量的环形缓冲区
//
// 满时 Push 覆盖最旧的记录；容量为 0 时不记录任何内容。
// 非并发安全，由所属状态机在单一调用栈上访问。
type History[K comparable] struct {
	buffer   []K
	head     int // 最旧记录的位置
	tail     int // 下一次写入的位置
	size     int
	capacity int
}

// NewHistory 创建指定容量的历史，负数按 0 处理
func NewHistory[K comparable](capacity int) *History[K] {
	if capacity < 0 {
		capacity = 0
	}
	return &History[K]{
		buffer:   make([]K, capacity),
		capacity: capacity,
	}
}

// Push 记录一个状态标识
func (h *History[K]) Push(id K) {
	if h.capacity == 0 {
		return
	}

	h.buffer[h.tail] = id
	h.tail = (h.tail + 1) % h.capacity

	if h.size < h.capacity {
		h.size++
	} else {
		// 覆盖最旧的记录
		h.head = (h.head + 1) % h.capacity
	}
}

// Pop 移除并返回最近的记录
func (h *History[K]) Pop() (K, error) {
	var zero K
	if h.size == 0 {
		return zero, ErrEmptyHistory
	}

	h.tail = (h.tail - 1 + h.capacity) % h.capacity
	id := h.buffer[h.tail]
	h.buffer[h.tail] = zero
	h.size--
	return id, nil
}

// Peek 返回最近的记录但不移除
func (h *History[K]) Peek() (K, bool) {
	if h.size == 0 {
		var zero K
		return zero, false
	}
	return h.buffer[(h.tail-1+h.capacity)%h.capacity], true
}

// Clear 清空历史
func (h *History[K]) Clear() {
	clear(h.buffer)
	h.head = 0
	h.tail = 0
	h.size = 0
}

// Len 当前记录数
func (h *History[K]) Len() int {
	return h.size
}

// Cap 历史容量
func (h *History[K]) Cap() int {
	return h.capacity
}

// Items 按从旧到新的顺序返回记录副本
func (h *History[K]) Items() []K {
	items := make([]K, h.size)
	for i := 0; i < h.size; i++ {
		items[i] = h.buffer[(h.head+i)%h.capacity]
	}
	return items
}
