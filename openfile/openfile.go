// Package openfile implements the open-file table. A file handle is an
// index into this table.
package openfile

import (
	"errors"

	"github.com/mit-pdos/go-tfs/alloc"
	"github.com/mit-pdos/go-tfs/common"
	"github.com/mit-pdos/go-tfs/locks"
)

var (
	ErrExhausted = errors.New("openfile: table full")
	ErrBadHandle = errors.New("openfile: bad file handle")
)

// Entry is one open file: the inumber and this handle's byte offset. Two
// entries may share an inumber; each keeps its own offset.
type Entry struct {
	lock locks.Lock

	Inum common.Inum
	Off  uint64
}

func (e *Entry) Lock(k locks.Kind)   { e.lock.Acquire(k) }
func (e *Entry) Unlock(k locks.Kind) { e.lock.Release(k) }

// Table is the open-file table behind its free map (file_map in the lock
// inventory). The map is volatile state and scans at memory speed.
type Table struct {
	lock    locks.Lock
	free    *alloc.Map
	entries [common.MaxOpenFiles]Entry
}

func MkTable() *Table {
	return &Table{free: alloc.MkVolatileMap(common.MaxOpenFiles)}
}

func (t *Table) Lock(k locks.Kind)   { t.lock.Acquire(k) }
func (t *Table) Unlock(k locks.Kind) { t.lock.Release(k) }

func ValidHandle(fh int) bool {
	return fh >= 0 && fh < common.MaxOpenFiles
}

// Add takes the first free entry, first-fit. It does no locking of its own:
// the caller must hold the table's mutex.
func (t *Table) Add(inum common.Inum, off uint64) (int, error) {
	fh := t.free.Alloc()
	if fh < 0 {
		return -1, ErrExhausted
	}
	e := &t.entries[fh]
	e.Inum = inum
	e.Off = off
	return fh, nil
}

// Remove frees the entry for fh.
func (t *Table) Remove(fh int) error {
	t.lock.Acquire(locks.Mutex)
	defer t.lock.Release(locks.Mutex)

	if !ValidHandle(fh) || !t.free.IsTaken(fh) {
		return ErrBadHandle
	}
	t.free.Free(fh)
	return nil
}

// Get returns the entry for fh, or nil if fh is out of range. It does no
// locking; the caller takes the entry's own lock for field access.
func (t *Table) Get(fh int) *Entry {
	if !ValidHandle(fh) {
		return nil
	}
	return &t.entries[fh]
}
