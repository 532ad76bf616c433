package osd

import "sync"

// Handles exposed by the top-level API are positive int32 values packing
// a slot index in the low bits and a generation counter above it. A
// freed slot bumps its generation, so handles to destroyed objects go
// stale instead of silently aliasing a newer object.
const (
	handleIndexBits = 20
	handleIndexMask = (1 << handleIndexBits) - 1
	handleGenLimit  = 1 << (31 - handleIndexBits)
)

// InvalidHandle is returned by creation functions on failure. It is
// never a valid handle value.
const InvalidHandle int32 = -1

type slot[T any] struct {
	value T
	gen   int32
	live  bool
}

// registry is a mutex-guarded slab of live objects addressed by handle.
type registry[T any] struct {
	mu    sync.Mutex
	slots []slot[T]
	free  []int
}

func packHandle(index int, gen int32) int32 {
	return int32(index+1) | gen<<handleIndexBits
}

// insert stores v and returns its handle, or InvalidHandle when the
// slab is full.
func (r *registry[T]) insert(v T) int32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	var index int
	if n := len(r.free); n > 0 {
		index = r.free[n-1]
		r.free = r.free[:n-1]
	} else {
		if len(r.slots) >= handleIndexMask-1 {
			return InvalidHandle
		}
		r.slots = append(r.slots, slot[T]{})
		index = len(r.slots) - 1
	}
	s := &r.slots[index]
	s.value = v
	s.live = true
	return packHandle(index, s.gen)
}

// lookup resolves a handle under the lock and returns the stored value.
func (r *registry[T]) lookup(h int32) (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lookupLocked(h)
}

func (r *registry[T]) lookupLocked(h int32) (T, bool) {
	var zero T
	if h <= 0 {
		return zero, false
	}
	index := int(h&handleIndexMask) - 1
	gen := h >> handleIndexBits
	if index < 0 || index >= len(r.slots) {
		return zero, false
	}
	s := &r.slots[index]
	if !s.live || s.gen != gen {
		return zero, false
	}
	return s.value, true
}

// count returns the number of live entries.
func (r *registry[T]) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.slots) - len(r.free)
}

// handles returns the handles of all live entries in slot order.
func (r *registry[T]) handles() []int32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []int32
	for i := range r.slots {
		if r.slots[i].live {
			out = append(out, packHandle(i, r.slots[i].gen))
		}
	}
	return out
}

// remove frees the slot behind h and returns its value. Stale or
// invalid handles return false and change nothing.
func (r *registry[T]) remove(h int32) (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var zero T
	if _, ok := r.lookupLocked(h); !ok {
		return zero, false
	}
	index := int(h&handleIndexMask) - 1
	s := &r.slots[index]
	v := s.value
	s.value = zero
	s.live = false
	s.gen = (s.gen + 1) % handleGenLimit
	r.free = append(r.free, index)
	return v, true
}
