// Package inode implements the inode table and the root-directory
// operations that resolve against it.
package inode

import (
	"errors"
	"sync"

	"github.com/mit-pdos/go-tfs/alloc"
	"github.com/mit-pdos/go-tfs/common"
	"github.com/mit-pdos/go-tfs/delay"
	"github.com/mit-pdos/go-tfs/disk"
	"github.com/mit-pdos/go-tfs/locks"
	"github.com/mit-pdos/go-tfs/util"
)

const (
	// NDirect direct block slots, plus one slot holding the indirect block.
	NDirect      = 10
	NBlkIno      = NDirect + 1
	IndirectSlot = NDirect

	// RefsPerBlock 4-byte block references fit in the indirect block.
	RefsPerBlock = disk.BlockSize / 4

	MaxBytesDirect = NDirect * disk.BlockSize
	MaxBytes       = MaxBytesDirect + RefsPerBlock*disk.BlockSize
)

type Kind uint32

const (
	KindFile Kind = iota
	KindDirectory
)

var (
	ErrExhausted = errors.New("inode: table full")
	ErrNotFound  = errors.New("inode: not found")
	ErrInvalid   = errors.New("inode: invalid argument")
)

// Inode is one slot of the inode table. DataBlk is the most recently
// allocated block; the append path copies into it without re-walking the
// block list. Blks holds the direct references and, in the last slot, the
// indirect block.
type Inode struct {
	lock locks.Lock

	Kind    Kind
	Size    uint64
	DataBlk common.Bnum
	Blks    [NBlkIno]common.Bnum
}

func (ip *Inode) Lock(k locks.Kind)   { ip.lock.Acquire(k) }
func (ip *Inode) Unlock(k locks.Kind) { ip.lock.Release(k) }

// Table is the inode table: fixed array of inodes behind a free map. The
// table's own lock protects the map; each inode carries its own lock for
// field access. The table keeps a reference to the block pool because
// directory inodes own a data block.
type Table struct {
	lock   locks.Lock
	free   *alloc.Map
	inodes [common.InodeTableSize]Inode
	dirMu  sync.Mutex // serializes directory-entry scans
	pool   *disk.Pool
}

func MkTable(pool *disk.Pool) *Table {
	t := &Table{pool: pool}
	t.free = alloc.MkMap(common.InodeTableSize)
	return t
}

// Lock takes the allocation-map lock (inode_map in the lock inventory).
func (t *Table) Lock(k locks.Kind)   { t.lock.Acquire(k) }
func (t *Table) Unlock(k locks.Kind) { t.lock.Release(k) }

func ValidInum(inum common.Inum) bool {
	return inum >= 0 && int(inum) < common.InodeTableSize
}

// Create takes the first free inode slot and initializes it. A new
// directory also gets a data block filled with empty entries and starts at
// size BlockSize; a new file starts empty with every reference unassigned.
// The map lock is held across the whole scan.
func (t *Table) Create(kind Kind) (common.Inum, error) {
	t.lock.Acquire(locks.Mutex)
	defer t.lock.Release(locks.Mutex)

	slot := t.free.Alloc()
	if slot < 0 {
		return common.NULLINUM, ErrExhausted
	}

	delay.Storage()
	ip := &t.inodes[slot]
	ip.Kind = kind
	ip.DataBlk = common.NULLBNUM
	for i := range ip.Blks {
		ip.Blks[i] = common.NULLBNUM
	}

	if kind == KindDirectory {
		b, err := t.pool.Alloc()
		if err != nil {
			t.free.Free(slot)
			return common.NULLINUM, err
		}
		blk, err := t.pool.Get(b)
		if err != nil {
			t.free.Free(slot)
			return common.NULLINUM, err
		}
		initDirBlock(blk)
		ip.Size = disk.BlockSize
		ip.DataBlk = b
	} else {
		ip.Size = 0
	}

	util.DPrintf(5, "inode: create %d kind %d\n", slot, kind)
	return common.Inum(slot), nil
}

// Delete frees the inode slot and every data block reachable from it.
func (t *Table) Delete(inum common.Inum) error {
	delay.Storage()
	delay.Storage()

	t.lock.Acquire(locks.Mutex)
	defer t.lock.Release(locks.Mutex)

	if !ValidInum(inum) || !t.free.IsTaken(int(inum)) {
		return ErrNotFound
	}
	t.free.Free(int(inum))

	util.DPrintf(5, "inode: delete %d\n", inum)
	return t.freeBlocks(&t.inodes[inum])
}

// Get returns the inode for inum, or nil if inum is out of range. It does
// no locking; the caller layers the inode's own lock before touching fields.
func (t *Table) Get(inum common.Inum) *Inode {
	if !ValidInum(inum) {
		return nil
	}
	delay.Storage()
	return &t.inodes[inum]
}

// Truncate frees every block the inode references and resets its size.
// Caller holds the inode's mutex.
func (t *Table) Truncate(ip *Inode) error {
	if ip.Size == 0 {
		return nil
	}
	if err := t.freeBlocks(ip); err != nil {
		return err
	}
	ip.Size = 0
	return nil
}

// freeBlocks returns the inode's blocks to the pool: the directory block
// for a directory, or the direct slots, the indirect referents, and the
// indirect block itself for a file.
func (t *Table) freeBlocks(ip *Inode) error {
	if ip.Kind == KindDirectory {
		if ip.Size > 0 && ip.DataBlk != common.NULLBNUM {
			if err := t.pool.Free(ip.DataBlk); err != nil {
				return err
			}
			ip.DataBlk = common.NULLBNUM
		}
		return nil
	}

	for i := 0; i < NDirect; i++ {
		if ip.Blks[i] == common.NULLBNUM {
			continue
		}
		if err := t.pool.Free(ip.Blks[i]); err != nil {
			return err
		}
		ip.Blks[i] = common.NULLBNUM
	}

	if ip.Blks[IndirectSlot] != common.NULLBNUM {
		ind, err := t.pool.Get(ip.Blks[IndirectSlot])
		if err != nil {
			return err
		}
		var nrefs uint64
		if ip.Size > MaxBytesDirect {
			nrefs = util.RoundUp(ip.Size-MaxBytesDirect, disk.BlockSize)
		}
		for r := uint64(0); r < nrefs; r++ {
			if err := t.pool.Free(GetRef(ind, r)); err != nil {
				return err
			}
		}
		if err := t.pool.Free(ip.Blks[IndirectSlot]); err != nil {
			return err
		}
		ip.Blks[IndirectSlot] = common.NULLBNUM
	}

	ip.DataBlk = common.NULLBNUM
	return nil
}
