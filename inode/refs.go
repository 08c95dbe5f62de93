package inode

import (
	"github.com/mit-pdos/go-tfs/common"
	"github.com/mit-pdos/go-tfs/disk"
	"github.com/tchajed/goose/machine"
)

// The indirect block is a dense array of 4-byte block references.

func GetRef(ind disk.Block, slot uint64) common.Bnum {
	return common.Bnum(machine.UInt32Get(ind[4*slot : 4*slot+4]))
}

func PutRef(ind disk.Block, slot uint64, b common.Bnum) {
	machine.UInt32Put(ind[4*slot:4*slot+4], uint32(b))
}
