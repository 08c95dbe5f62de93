package inode

import (
	"strings"
	"testing"

	"github.com/mit-pdos/go-tfs/common"
	"github.com/mit-pdos/go-tfs/disk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mkRoot(t *testing.T) (*Table, *disk.Pool) {
	t.Helper()
	pool := disk.MkPool()
	tbl := MkTable(pool)
	root, err := tbl.Create(KindDirectory)
	require.NoError(t, err)
	require.Equal(t, common.ROOTINUM, root)
	return tbl, pool
}

func TestCreateDirectory(t *testing.T) {
	assert := assert.New(t)
	tbl, pool := mkRoot(t)

	ip := tbl.Get(common.ROOTINUM)
	require.NotNil(t, ip)
	assert.Equal(KindDirectory, ip.Kind)
	assert.Equal(disk.BlockSize, ip.Size)
	assert.NotEqual(common.NULLBNUM, ip.DataBlk)
	for i := 0; i < NBlkIno; i++ {
		assert.Equal(common.NULLBNUM, ip.Blks[i])
	}
	assert.Equal(disk.NBlocks-1, pool.NumFree(), "root owns one block")
}

func TestCreateFile(t *testing.T) {
	assert := assert.New(t)
	tbl, _ := mkRoot(t)

	inum, err := tbl.Create(KindFile)
	assert.NoError(err)
	assert.Equal(common.Inum(1), inum)

	ip := tbl.Get(inum)
	assert.Equal(KindFile, ip.Kind)
	assert.Equal(uint64(0), ip.Size)
	assert.Equal(common.NULLBNUM, ip.DataBlk)
}

func TestCreateExhaustion(t *testing.T) {
	assert := assert.New(t)
	tbl, _ := mkRoot(t)

	for i := 1; i < common.InodeTableSize; i++ {
		_, err := tbl.Create(KindFile)
		assert.NoError(err)
	}
	_, err := tbl.Create(KindFile)
	assert.Equal(ErrExhausted, err)
}

func TestDelete(t *testing.T) {
	assert := assert.New(t)
	tbl, _ := mkRoot(t)

	inum, err := tbl.Create(KindFile)
	assert.NoError(err)
	assert.NoError(tbl.Delete(inum))
	assert.Equal(ErrNotFound, tbl.Delete(inum), "double delete")
	assert.Equal(ErrNotFound, tbl.Delete(common.Inum(common.InodeTableSize)))

	again, err := tbl.Create(KindFile)
	assert.NoError(err)
	assert.Equal(inum, again, "slot reused first-fit")
}

func TestGetRange(t *testing.T) {
	tbl, _ := mkRoot(t)
	assert.Nil(t, tbl.Get(common.NULLINUM))
	assert.Nil(t, tbl.Get(common.Inum(common.InodeTableSize)))
	assert.NotNil(t, tbl.Get(common.ROOTINUM))
}

func TestDirAddFind(t *testing.T) {
	assert := assert.New(t)
	tbl, _ := mkRoot(t)

	a, _ := tbl.Create(KindFile)
	b, _ := tbl.Create(KindFile)
	assert.NoError(tbl.AddEntry(common.ROOTINUM, a, "alpha"))
	assert.NoError(tbl.AddEntry(common.ROOTINUM, b, "beta"))

	got, err := tbl.FindInDir(common.ROOTINUM, "alpha")
	assert.NoError(err)
	assert.Equal(a, got)
	got, err = tbl.FindInDir(common.ROOTINUM, "beta")
	assert.NoError(err)
	assert.Equal(b, got)

	_, err = tbl.FindInDir(common.ROOTINUM, "gamma")
	assert.Equal(ErrNotFound, err)
}

func TestDirInvalid(t *testing.T) {
	assert := assert.New(t)
	tbl, _ := mkRoot(t)

	f, _ := tbl.Create(KindFile)
	assert.Equal(ErrInvalid, tbl.AddEntry(f, f, "x"), "non-directory parent")
	assert.Equal(ErrInvalid, tbl.AddEntry(common.ROOTINUM, f, ""), "empty name")
	assert.Equal(ErrInvalid, tbl.AddEntry(common.NULLINUM, f, "x"))

	_, err := tbl.FindInDir(f, "x")
	assert.Equal(ErrInvalid, err)
}

func TestDirNameTruncation(t *testing.T) {
	assert := assert.New(t)
	tbl, _ := mkRoot(t)

	long := strings.Repeat("n", common.MaxFileName+10)
	f, _ := tbl.Create(KindFile)
	assert.NoError(tbl.AddEntry(common.ROOTINUM, f, long))

	// The stored name keeps 39 bytes; the full name no longer matches, the
	// truncated one does.
	_, err := tbl.FindInDir(common.ROOTINUM, long)
	assert.Equal(ErrNotFound, err)
	got, err := tbl.FindInDir(common.ROOTINUM, long[:common.MaxFileName-1])
	assert.NoError(err)
	assert.Equal(f, got)
}

func TestDirFull(t *testing.T) {
	assert := assert.New(t)
	tbl, _ := mkRoot(t)

	f, _ := tbl.Create(KindFile)
	for i := 0; i < MaxDirEntries; i++ {
		assert.NoError(tbl.AddEntry(common.ROOTINUM, f, "e"+strings.Repeat("x", i%30)))
	}
	assert.Equal(ErrExhausted, tbl.AddEntry(common.ROOTINUM, f, "overflow"))
}

func TestTruncateFreesBlocks(t *testing.T) {
	assert := assert.New(t)
	tbl, pool := mkRoot(t)

	inum, _ := tbl.Create(KindFile)
	ip := tbl.Get(inum)

	// Hand-build a file spanning two direct blocks and one indirect block.
	b0, _ := pool.Alloc()
	b1, _ := pool.Alloc()
	ind, _ := pool.Alloc()
	b2, _ := pool.Alloc()
	ip.Blks[0] = b0
	ip.Blks[1] = b1
	ip.Blks[IndirectSlot] = ind
	indBlk, _ := pool.Get(ind)
	PutRef(indBlk, 0, b2)
	ip.Size = MaxBytesDirect + 5
	ip.DataBlk = b2

	free := pool.NumFree()
	assert.NoError(tbl.Truncate(ip))
	assert.Equal(uint64(0), ip.Size)
	assert.Equal(common.NULLBNUM, ip.DataBlk)
	for i := 0; i < NBlkIno; i++ {
		assert.Equal(common.NULLBNUM, ip.Blks[i])
	}
	assert.Equal(free+4, pool.NumFree(), "both data blocks, the indirect referent, and the indirect block")
}
