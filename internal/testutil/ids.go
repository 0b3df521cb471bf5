package testutil

import "github.com/julianstephens/opreply/internal/opreply/tid"

// IDAllocator is a test implementation of tid.Allocator without locking
type IDAllocator struct {
	nextID uint64
}

var _ tid.Allocator = (*IDAllocator)(nil)

// NewIDAllocator creates a new test ID allocator starting at startID
func NewIDAllocator(startID uint64) *IDAllocator {
	return &IDAllocator{nextID: startID}
}

// Next returns the next ID and increments the counter
func (m *IDAllocator) Next() uint64 {
	id := m.nextID
	m.nextID++
	return id
}

// Peek returns the next ID without incrementing
func (m *IDAllocator) Peek() uint64 {
	return m.nextID
}

// SetNext moves the allocator forward. Values below the current next ID
// are ignored.
func (m *IDAllocator) SetNext(next uint64) error {
	if next > m.nextID {
		m.nextID = next
	}
	return nil
}
