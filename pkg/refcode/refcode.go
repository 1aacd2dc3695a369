// Package refcode allocates reference codes: unique, human-presentable
// correlation identifiers assigned once per deposit and shared by both legs
// of a transfer.
package refcode

import (
	"crypto/rand"
	"fmt"
	"sync/atomic"
	"time"
)

const suffixBytes = 3

// Allocator produces process-unique reference codes by combining a
// monotonically increasing counter with a random suffix. The transactions
// table additionally carries a unique index on (reference_code, kind), so a
// collision across restarts surfaces as a storage conflict instead of a
// silent duplicate.
type Allocator struct {
	prefix  string
	counter atomic.Uint64
}

// New creates an Allocator with the given code prefix, e.g. "PB".
// The counter is seeded from the wall clock so codes keep increasing across
// restarts.
func New(prefix string) *Allocator {
	a := &Allocator{prefix: prefix}
	a.counter.Store(uint64(time.Now().UTC().Unix()))
	return a
}

// Next returns a fresh reference code, e.g. "PB-1767110400-4F2A1C".
func (a *Allocator) Next() string {
	n := a.counter.Add(1)
	suffix := make([]byte, suffixBytes)
	// rand.Read never fails on supported platforms
	_, _ = rand.Read(suffix)
	return fmt.Sprintf("%s-%d-%X", a.prefix, n, suffix)
}
