package common

// Inum indexes the inode table. NULLINUM marks an empty directory slot or a
// failed resolution.
type Inum int32

// Bnum indexes the data-block pool.
type Bnum int32

const (
	NULLINUM Inum = -1
	ROOTINUM Inum = 0
	NULLBNUM Bnum = -1
)

const (
	InodeTableSize = 50
	MaxOpenFiles   = 20

	// MaxFileName is the size of a directory entry's name field, including
	// the terminating zero byte (39 content bytes).
	MaxFileName = 40
)
