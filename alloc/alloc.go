// Package alloc implements the allocation maps used by the inode table, the
// data-block pool, and the open-file table. A map records one byte of state
// per slot and hands out slots first-fit.
package alloc

import "github.com/mit-pdos/go-tfs/delay"

const (
	Free  byte = 0
	Taken byte = 1
)

// A block's worth of map entries; persistent maps touch simulated storage
// once per this many slots scanned.
const entriesPerBlock = 1024

// Map tracks which slots of a fixed pool are taken. It does no locking of
// its own; the owning table layers its lock around every call.
type Map struct {
	state   []byte
	delayed bool
}

// MkMap makes a map whose scans pay the storage-latency penalty, for state
// that is nominally on disk (inodes, data blocks).
func MkMap(n uint64) *Map {
	return &Map{state: make([]byte, n), delayed: true}
}

// MkVolatileMap makes a map for purely in-memory state (open-file entries);
// scans run at memory speed.
func MkVolatileMap(n uint64) *Map {
	return &Map{state: make([]byte, n)}
}

// Alloc scans for the first Free slot and flips it to Taken. Returns -1 when
// the map is full.
func (m *Map) Alloc() int {
	for i := range m.state {
		if m.delayed && i%entriesPerBlock == 0 {
			delay.Storage()
		}
		if m.state[i] == Free {
			m.state[i] = Taken
			return i
		}
	}
	return -1
}

func (m *Map) Free(i int) {
	if i < 0 || i >= len(m.state) {
		panic("alloc: Free out of range")
	}
	m.state[i] = Free
}

func (m *Map) IsTaken(i int) bool {
	if i < 0 || i >= len(m.state) {
		return false
	}
	return m.state[i] == Taken
}

func (m *Map) NumFree() uint64 {
	var n uint64
	for _, s := range m.state {
		if s == Free {
			n++
		}
	}
	return n
}
