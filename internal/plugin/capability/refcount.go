package capability

import (
	"sync"
	"sync/atomic"
)

// RefCount tracks shares of an engine instance. The release function runs
// exactly once, when the last share is dropped.
type RefCount struct {
	n       atomic.Int64
	once    sync.Once
	release func()
}

// NewRefCount returns a counter holding one share.
func NewRefCount(release func()) *RefCount {
	r := &RefCount{release: release}
	r.n.Store(1)
	return r
}

// Retain takes another share. It returns false once the count has reached
// zero; a released engine cannot be revived.
func (r *RefCount) Retain() bool {
	for {
		n := r.n.Load()
		if n <= 0 {
			return false
		}
		if r.n.CompareAndSwap(n, n+1) {
			return true
		}
	}
}

// Release drops a share. Extra releases are ignored.
func (r *RefCount) Release() {
	for {
		n := r.n.Load()
		if n <= 0 {
			return
		}
		if r.n.CompareAndSwap(n, n-1) {
			if n == 1 && r.release != nil {
				r.once.Do(r.release)
			}
			return
		}
	}
}

// Count returns the number of live shares.
func (r *RefCount) Count() int64 {
	return r.n.Load()
}

// Released returns true once the last share has been dropped.
func (r *RefCount) Released() bool {
	return r.n.Load() <= 0
}
