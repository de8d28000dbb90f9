package diagram

import "strconv"

// IDAllocator mints "<role>-<n>" identifiers with an independent 1-based
// counter per role. A fresh allocator is created for every render; it is
// not safe for concurrent use.
type IDAllocator struct {
	next map[Role]int
}

// NewIDAllocator returns an empty allocator.
func NewIDAllocator() *IDAllocator {
	return &IDAllocator{next: make(map[Role]int)}
}

// Next returns the next identifier for role.
func (a *IDAllocator) Next(role Role) string {
	a.next[role]++
	return string(role) + "-" + strconv.Itoa(a.next[role])
}
