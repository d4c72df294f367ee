package limits

import "sync/atomic"

// ReadByteCounter is a process-wide, wraparound counter of bytes returned
// by successful read(2) calls, backing getreadcount(). It mirrors the
// atomic-counter idiom of Sysatomic_t, but counts up and wraps modulo 2^32
// instead of enforcing a bounded limit: getreadcount has no ceiling to
// reject against, only a running total to report.
type ReadByteCounter struct {
	n uint32
}

// Add increments the counter by n bytes. Callers must only pass the byte
// count of a successful, non-zero read(2) return; zero-byte returns and
// errors must not be added.
func (c *ReadByteCounter) Add(n int) {
	if n <= 0 {
		return
	}
	atomic.AddUint32(&c.n, uint32(n))
}

// Get returns the current wraparound value.
func (c *ReadByteCounter) Get() uint32 {
	return atomic.LoadUint32(&c.n)
}

// TotalReadBytes is the single system-wide instance consulted by
// getreadcount(). Initialized at boot, never torn down, the
// global-mutable-state convention spec.md §9 calls for.
var TotalReadBytes ReadByteCounter
