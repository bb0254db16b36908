package ripple

import "sync/atomic"

// idCounter issues process-wide IDs for handles, effects and memos.
var idCounter atomic.Uint64

// nextID returns a fresh unique ID. Never zero, never reused.
func nextID() uint64 {
	return idCounter.Add(1)
}
