package inode

import (
	"github.com/mit-pdos/go-tfs/common"
	"github.com/mit-pdos/go-tfs/delay"
	"github.com/mit-pdos/go-tfs/disk"
	"github.com/mit-pdos/go-tfs/locks"
	"github.com/tchajed/marshal"
)

// On-block directory entry: a 4-byte inumber followed by a zero-terminated
// name field.
const (
	DirentSz      = 4 + common.MaxFileName
	MaxDirEntries = int(disk.BlockSize) / DirentSz
)

type Dirent struct {
	Inum common.Inum
	Name string
}

func putDirent(blk disk.Block, slot int, de Dirent) {
	enc := marshal.NewEnc(DirentSz)
	enc.PutInt32(uint32(de.Inum))
	name := make([]byte, common.MaxFileName)
	copy(name, de.Name)
	name[common.MaxFileName-1] = 0
	enc.PutBytes(name)
	copy(blk[slot*DirentSz:(slot+1)*DirentSz], enc.Finish())
}

func getDirent(blk disk.Block, slot int) Dirent {
	dec := marshal.NewDec(blk[slot*DirentSz : (slot+1)*DirentSz])
	inum := common.Inum(int32(dec.GetInt32()))
	name := dec.GetBytes(common.MaxFileName)
	n := 0
	for n < len(name) && name[n] != 0 {
		n++
	}
	return Dirent{Inum: inum, Name: string(name[:n])}
}

func initDirBlock(blk disk.Block) {
	for i := 0; i < MaxDirEntries; i++ {
		putDirent(blk, i, Dirent{Inum: common.NULLINUM})
	}
}

// AddEntry writes (name, sub) into the first empty slot of dir's block.
// Names longer than the name field are silently truncated; uniqueness is
// the caller's business (the open-with-create path resolves first).
func (t *Table) AddEntry(dir common.Inum, sub common.Inum, name string) error {
	if !ValidInum(dir) || !ValidInum(sub) {
		return ErrInvalid
	}

	t.lock.Acquire(locks.Read)
	ip := &t.inodes[dir]
	delay.Storage()
	if ip.Kind != KindDirectory || len(name) == 0 {
		t.lock.Release(locks.Read)
		return ErrInvalid
	}
	blk, err := t.pool.Get(ip.DataBlk)
	t.lock.Release(locks.Read)
	if err != nil {
		return err
	}

	t.dirMu.Lock()
	defer t.dirMu.Unlock()
	for i := 0; i < MaxDirEntries; i++ {
		if getDirent(blk, i).Inum == common.NULLINUM {
			putDirent(blk, i, Dirent{Inum: sub, Name: name})
			return nil
		}
	}
	return ErrExhausted
}

// FindInDir returns the inumber of the entry in dir named name.
func (t *Table) FindInDir(dir common.Inum, name string) (common.Inum, error) {
	delay.Storage()

	t.lock.Acquire(locks.Read)
	if !ValidInum(dir) || t.inodes[dir].Kind != KindDirectory {
		t.lock.Release(locks.Read)
		return common.NULLINUM, ErrInvalid
	}
	blk, err := t.pool.Get(t.inodes[dir].DataBlk)
	t.lock.Release(locks.Read)
	if err != nil {
		return common.NULLINUM, err
	}

	t.dirMu.Lock()
	defer t.dirMu.Unlock()
	for i := 0; i < MaxDirEntries; i++ {
		de := getDirent(blk, i)
		if de.Inum != common.NULLINUM && de.Name == name {
			return de.Inum, nil
		}
	}
	return common.NULLINUM, ErrNotFound
}
