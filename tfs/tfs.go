// Package tfs is the public interface of the toy filesystem: a flat
// namespace of regular files under a single root directory, shared by many
// threads in one process.
package tfs

import (
	"errors"
	"fmt"

	"github.com/mit-pdos/go-tfs/common"
	"github.com/mit-pdos/go-tfs/disk"
	"github.com/mit-pdos/go-tfs/inode"
	"github.com/mit-pdos/go-tfs/locks"
	"github.com/mit-pdos/go-tfs/openfile"
	"github.com/mit-pdos/go-tfs/util"
)

// Open flags; orthogonal bits, combinable.
const (
	OAppend = 1 << 0
	OTrunc  = 1 << 1
	OCreate = 1 << 6
)

var (
	ErrInvalidPath  = errors.New("tfs: invalid path")
	ErrInvalidInput = errors.New("tfs: invalid input")
	ErrNotFound     = errors.New("tfs: no such file")
)

// Fs holds the whole filesystem state. All operations hang off it; there is
// no process-wide singleton.
type Fs struct {
	pool   *disk.Pool
	itable *inode.Table
	ftable *openfile.Table
}

// MkFs initializes a fresh filesystem with an empty root directory at
// inumber 0.
func MkFs() (*Fs, error) {
	pool := disk.MkPool()
	fs := &Fs{
		pool:   pool,
		itable: inode.MkTable(pool),
		ftable: openfile.MkTable(),
	}
	root, err := fs.itable.Create(inode.KindDirectory)
	if err != nil {
		return nil, fmt.Errorf("tfs: create root: %w", err)
	}
	if root != common.ROOTINUM {
		return nil, fmt.Errorf("tfs: root got inumber %d", root)
	}
	util.DPrintf(2, "tfs: initialized\n")
	return fs, nil
}

// Destroy tears the filesystem down. All state is in memory, so this is an
// idempotent no-op beyond making the intent explicit at call sites.
func (fs *Fs) Destroy() {}

// A valid path is "/" followed by at least one byte: "/name". Everything after
// the leading slash is taken as one entry name in the root directory; further
// slashes are not treated as separators.
func validPath(name string) bool {
	return len(name) > 1 && name[0] == '/'
}

// Lookup resolves "/name" to an inumber.
func (fs *Fs) Lookup(name string) (common.Inum, error) {
	if !validPath(name) {
		return common.NULLINUM, ErrInvalidPath
	}
	return fs.itable.FindInDir(common.ROOTINUM, name[1:])
}

// Open opens name and returns a file handle. With OCreate the file is
// created if absent; OTrunc discards existing contents; OAppend starts the
// offset at the current size instead of 0.
//
// If the file was just created and the directory entry cannot be added, the
// fresh inode is deleted; a file created successfully but failing the
// open-file allocation stays created.
func (fs *Fs) Open(name string, flags int) (int, error) {
	if !validPath(name) {
		return -1, ErrInvalidPath
	}

	var off uint64
	inum, err := fs.Lookup(name)
	if err == nil {
		fs.itable.Lock(locks.Read)
		ip := fs.itable.Get(inum)
		fs.itable.Unlock(locks.Read)
		if ip == nil {
			return -1, ErrNotFound
		}

		ip.Lock(locks.Mutex)
		if flags&OTrunc != 0 {
			if terr := fs.itable.Truncate(ip); terr != nil {
				ip.Unlock(locks.Mutex)
				return -1, terr
			}
		}
		if flags&OAppend != 0 {
			off = ip.Size
		}
		ip.Unlock(locks.Mutex)
	} else if flags&OCreate != 0 {
		inum, err = fs.itable.Create(inode.KindFile)
		if err != nil {
			return -1, err
		}
		if aerr := fs.itable.AddEntry(common.ROOTINUM, inum, name[1:]); aerr != nil {
			fs.itable.Delete(inum)
			return -1, aerr
		}
	} else {
		return -1, err
	}

	fs.ftable.Lock(locks.Mutex)
	fh, err := fs.ftable.Add(inum, off)
	fs.ftable.Unlock(locks.Mutex)
	if err != nil {
		return -1, err
	}
	util.DPrintf(5, "tfs: open %s flags %#x -> fh %d\n", name, flags, fh)
	return fh, nil
}

// Close frees the open-file entry for fh.
func (fs *Fs) Close(fh int) error {
	return fs.ftable.Remove(fh)
}
