package disk

import (
	"testing"

	"github.com/mit-pdos/go-tfs/common"
	"github.com/stretchr/testify/assert"
)

func TestPoolAlloc(t *testing.T) {
	assert := assert.New(t)
	p := MkPool()

	b0, err := p.Alloc()
	assert.NoError(err)
	assert.Equal(common.Bnum(0), b0, "first-fit starts at block 0")

	b1, err := p.Alloc()
	assert.NoError(err)
	assert.Equal(common.Bnum(1), b1)

	assert.NoError(p.Free(b0))
	b, err := p.Alloc()
	assert.NoError(err)
	assert.Equal(b0, b, "freed block reused first-fit")
}

func TestPoolGet(t *testing.T) {
	assert := assert.New(t)
	p := MkPool()

	b, _ := p.Alloc()
	blk, err := p.Get(b)
	assert.NoError(err)
	assert.Equal(int(BlockSize), len(blk))

	blk[0] = 0xab
	again, _ := p.Get(b)
	assert.Equal(byte(0xab), again[0], "views alias the shared region")

	_, err = p.Get(common.Bnum(NBlocks))
	assert.Equal(ErrBadBlock, err)
	_, err = p.Get(common.NULLBNUM)
	assert.Equal(ErrBadBlock, err)
}

func TestPoolExhaustion(t *testing.T) {
	assert := assert.New(t)
	p := MkPool()

	for i := uint64(0); i < NBlocks; i++ {
		_, err := p.Alloc()
		assert.NoError(err)
	}
	assert.Equal(uint64(0), p.NumFree())

	_, err := p.Alloc()
	assert.Equal(ErrExhausted, err)

	assert.NoError(p.Free(common.Bnum(17)))
	b, err := p.Alloc()
	assert.NoError(err)
	assert.Equal(common.Bnum(17), b)
}

func TestPoolFreeBadBlock(t *testing.T) {
	p := MkPool()
	assert.Equal(t, ErrBadBlock, p.Free(common.NULLBNUM))
	assert.Equal(t, ErrBadBlock, p.Free(common.Bnum(NBlocks)))
}
