package utils

import (
	"strconv"
	"sync/atomic"
)

// NonceCounter hands out a stream's nonces: decimal strings starting at "0"
// and incrementing by one on every call, per the xDS wire contract for
// response_nonce. Safe for concurrent use so a stream's request-driven and
// snapshot-driven emissions can share one counter.
type NonceCounter struct {
	next int64
}

// Next returns the next nonce in the sequence.
func (c *NonceCounter) Next() string {
	n := atomic.AddInt64(&c.next, 1) - 1
	return strconv.FormatInt(n, 10)
}
