package proc

import (
	"sync"
	"sync/atomic"
)

// Accnt_t accumulates per-process accounting information, in the shape
// biscuit's accnt.Accnt_t does: plain nanosecond counters updated with
// atomics, a mutex only for callers that want a consistent multi-field
// snapshot.
type Accnt_t struct {
	Userns int64
	Sysns  int64
	sync.Mutex
}

func (a *Accnt_t) Utadd(delta int64) {
	atomic.AddInt64(&a.Userns, delta)
}

func (a *Accnt_t) Systadd(delta int64) {
	atomic.AddInt64(&a.Sysns, delta)
}
