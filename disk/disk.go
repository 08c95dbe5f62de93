// Package disk is the data-block pool: a flat in-memory block region with a
// free map, standing in for a real device. Every content fetch pays the
// simulated storage latency.
package disk

import (
	"errors"
	"sync"

	"github.com/mit-pdos/go-tfs/alloc"
	"github.com/mit-pdos/go-tfs/common"
	"github.com/mit-pdos/go-tfs/delay"
	"github.com/mit-pdos/go-tfs/util"
)

// Block is a view into the pool's block region.
type Block = []byte

const BlockSize uint64 = 1024

// NBlocks is the number of blocks in the pool.
const NBlocks uint64 = 1024

var (
	ErrExhausted = errors.New("disk: no free blocks")
	ErrBadBlock  = errors.New("disk: block number out of range")
)

// Pool is the block region plus its allocation map. Get hands out
// unsynchronized views: callers must hold an appropriate inode or directory
// lock before touching block contents, and concurrent accesses to one block
// must target disjoint byte ranges.
type Pool struct {
	mu   sync.Mutex // protects free
	free *alloc.Map
	data []byte
}

func MkPool() *Pool {
	return &Pool{
		free: alloc.MkMap(NBlocks),
		data: make([]byte, BlockSize*NBlocks),
	}
}

// Alloc takes the first free block, first-fit.
func (p *Pool) Alloc() (common.Bnum, error) {
	p.mu.Lock()
	b := p.free.Alloc()
	p.mu.Unlock()
	if b < 0 {
		return common.NULLBNUM, ErrExhausted
	}
	util.DPrintf(10, "disk: alloc block %d\n", b)
	return common.Bnum(b), nil
}

func (p *Pool) Free(b common.Bnum) error {
	if !ValidBnum(b) {
		return ErrBadBlock
	}
	delay.Storage()
	p.mu.Lock()
	p.free.Free(int(b))
	p.mu.Unlock()
	util.DPrintf(10, "disk: free block %d\n", b)
	return nil
}

// Get returns the contents of block b. The slice aliases the shared region.
func (p *Pool) Get(b common.Bnum) (Block, error) {
	if !ValidBnum(b) {
		return nil, ErrBadBlock
	}
	delay.Storage()
	return p.data[uint64(b)*BlockSize : (uint64(b)+1)*BlockSize], nil
}

func (p *Pool) NumFree() uint64 {
	p.mu.Lock()
	n := p.free.NumFree()
	p.mu.Unlock()
	return n
}

func ValidBnum(b common.Bnum) bool {
	return b >= 0 && uint64(b) < NBlocks
}
