package main

// Ring is a bounded append-only buffer. When full, pushing evicts the
// oldest entry first. It replaces the ad hoc slice-trimming the save
// otherwise needs for news, logs and match history.
type Ring[T any] struct {
	items []T
	cap   int
}

func NewRing[T any](capacity int) *Ring[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring[T]{items: make([]T, 0, capacity), cap: capacity}
}

// Push appends v, evicting the oldest entry when the buffer is full.
func (r *Ring[T]) Push(v T) {
	if len(r.items) == r.cap {
		copy(r.items, r.items[1:])
		r.items[len(r.items)-1] = v
		return
	}
	r.items = append(r.items, v)
}

func (r *Ring[T]) Len() int { return len(r.items) }

// Items returns the buffered entries oldest first. The returned slice is a
// copy; callers may not mutate buffer state through it.
func (r *Ring[T]) Items() []T {
	out := make([]T, len(r.items))
	copy(out, r.items)
	return out
}

// Newest returns up to n entries, newest first.
func (r *Ring[T]) Newest(n int) []T {
	if n > len(r.items) {
		n = len(r.items)
	}
	out := make([]T, 0, n)
	for i := len(r.items) - 1; i >= len(r.items)-n; i-- {
		out = append(out, r.items[i])
	}
	return out
}

func (r *Ring[T]) Reset() { r.items = r.items[:0] }
