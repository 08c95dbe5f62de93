// Package delay emulates secondary-storage access latency. The persistent
// parts of the filesystem state (inode table, allocation maps, block
// contents) live in memory, so every fetch of them busy-waits here as if it
// had touched a real device.
package delay

import "sync/atomic"

// Iters is the length of the busy wait, in loop iterations.
const Iters = 5000

var sink uint32

// Storage busy-waits for one simulated storage access. The atomic load keeps
// the compiler from removing the loop.
func Storage() {
	for i := 0; i < Iters; i++ {
		atomic.LoadUint32(&sink)
	}
}
