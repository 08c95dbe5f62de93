package tfs

import (
	"github.com/mit-pdos/go-tfs/common"
	"github.com/mit-pdos/go-tfs/inode"
	"github.com/mit-pdos/go-tfs/locks"
)

// InodeInfo is a snapshot of an inode's fields, for inspection by tests and
// debug dumps.
type InodeInfo struct {
	Kind    inode.Kind
	Size    uint64
	DataBlk common.Bnum
	Blks    [inode.NBlkIno]common.Bnum
}

// InodeState reads inum's inode under its read lock.
func (fs *Fs) InodeState(inum common.Inum) InodeInfo {
	ip := fs.itable.Get(inum)
	if ip == nil {
		return InodeInfo{}
	}
	ip.Lock(locks.Read)
	defer ip.Unlock(locks.Read)
	return InodeInfo{Kind: ip.Kind, Size: ip.Size, DataBlk: ip.DataBlk, Blks: ip.Blks}
}

// BlocksFree reports how many pool blocks remain unallocated.
func (fs *Fs) BlocksFree() uint64 {
	return fs.pool.NumFree()
}
