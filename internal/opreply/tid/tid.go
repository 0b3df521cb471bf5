package tid

import "sync"

// Allocator hands out monotonically increasing transaction ids during a
// single process lifetime. A reply carries the tid of the request it
// answers, so ids must never repeat within a capture.
type Allocator interface {
	// Next reserves and returns the next tid.
	// 0 is reserved as "unset".
	Next() uint64

	// Peek returns the tid that would be handed out without reserving it.
	Peek() uint64

	// SetNext sets the next tid to be allocated.
	// Used when appending to a capture whose highest tid is already known.
	SetNext(next uint64) error
}

// CounterAllocator is the default in-memory implementation.
type CounterAllocator struct {
	mu   sync.Mutex
	next uint64
}

// NewCounterAllocator constructs an allocator starting at next.
// For a fresh capture, pass next=1.
func NewCounterAllocator(next uint64) (*CounterAllocator, error) {
	if next < 1 {
		return nil, &TidError{
			Err:  ErrInvalidTid,
			Have: next,
			Want: 1,
		}
	}
	return &CounterAllocator{next: next}, nil
}

// Next reserves and returns the next tid. Once the id space is exhausted
// every call returns 0.
func (a *CounterAllocator) Next() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.next == 0 {
		return 0
	}
	a.next++
	return a.next - 1
}

func (a *CounterAllocator) Peek() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.next
}

// SetNext sets the next tid to be allocated. It never moves backwards.
func (a *CounterAllocator) SetNext(next uint64) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if next < 1 {
		return &TidError{
			Err:  ErrInvalidTid,
			Have: next,
			Want: 1,
		}
	}
	if a.next != 0 && next < a.next {
		return &TidError{
			Err:  ErrTidRegression,
			Have: next,
			Want: a.next,
		}
	}

	a.next = next
	return nil
}

// ResumeAfter positions a past the highest tid already seen.
func ResumeAfter(a Allocator, maxSeen uint64) error {
	if maxSeen == ^uint64(0) {
		return &TidError{
			Err:  ErrTidOverflow,
			Have: maxSeen,
		}
	}
	if maxSeen+1 <= a.Peek() {
		return nil
	}
	return a.SetNext(maxSeen + 1)
}
