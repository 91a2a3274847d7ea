package queue

const minRingSize = 16

// ring is a growable circular buffer bounded by limit.
// It is NOT thread-safe; Blocking guards it with its mutex.
type ring[T any] struct {
	buf      []T
	limit    int
	readPos  int // next position to read from
	writePos int // next position to write to
	count    int
}

func newRing[T any](limit int) ring[T] {
	return ring[T]{
		buf:   make([]T, min(limit, minRingSize)),
		limit: limit,
	}
}

func (r *ring[T]) len() int    { return r.count }
func (r *ring[T]) full() bool  { return r.count >= r.limit }
func (r *ring[T]) empty() bool { return r.count == 0 }

// push appends v at the tail. The caller must check full first.
func (r *ring[T]) push(v T) {
	if r.count == len(r.buf) {
		r.grow()
	}
	r.buf[r.writePos] = v
	r.writePos = r.wrapIndex(r.writePos + 1)
	r.count++
}

// pop removes the head. The caller must check empty first.
func (r *ring[T]) pop() T {
	var zero T
	v := r.buf[r.readPos]
	// Release the reference so popped pointers can be collected.
	r.buf[r.readPos] = zero
	r.readPos = r.wrapIndex(r.readPos + 1)
	r.count--
	return v
}

// reset drops every element and keeps the allocated storage.
func (r *ring[T]) reset() {
	clear(r.buf)
	r.readPos = 0
	r.writePos = 0
	r.count = 0
}

// grow doubles the storage up to limit, unrolling the wrapped segment.
func (r *ring[T]) grow() {
	size := min(len(r.buf)*2, r.limit)
	if size <= len(r.buf) {
		return
	}
	buf := make([]T, size)
	n := copy(buf, r.buf[r.readPos:])
	copy(buf[n:], r.buf[:r.readPos])
	r.buf = buf
	r.readPos = 0
	r.writePos = r.count
}

func (r *ring[T]) wrapIndex(i int) int {
	if i >= len(r.buf) {
		return i - len(r.buf)
	}
	return i
}
