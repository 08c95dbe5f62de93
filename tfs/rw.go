package tfs

import (
	"github.com/mit-pdos/go-tfs/common"
	"github.com/mit-pdos/go-tfs/disk"
	"github.com/mit-pdos/go-tfs/inode"
	"github.com/mit-pdos/go-tfs/locks"
	"github.com/mit-pdos/go-tfs/openfile"
	"github.com/mit-pdos/go-tfs/util"
)

// Write appends buf through fh and returns the number of bytes written. The
// count may be less than len(buf) when the file reaches its maximum size;
// that is a clamp, not an error. The write is split three ways around the
// direct-region boundary: entirely direct, entirely indirect, or a direct
// prefix followed by an indirect remainder.
//
// Locking: the handle's mutex serializes writers on this handle; the
// inode's rwlock is taken in read mode. Two handles writing one inode
// concurrently race on its size.
func (fs *Fs) Write(fh int, buf []byte) (int, error) {
	if len(buf) == 0 {
		return 0, ErrInvalidInput
	}
	toWrite := uint64(len(buf))

	fs.ftable.Lock(locks.Read)
	f := fs.ftable.Get(fh)
	fs.ftable.Unlock(locks.Read)
	if f == nil {
		return 0, openfile.ErrBadHandle
	}

	f.Lock(locks.Mutex)
	ip := fs.itable.Get(f.Inum)
	if ip == nil {
		f.Unlock(locks.Mutex)
		return 0, ErrNotFound
	}
	ip.Lock(locks.Read)

	var n uint64
	var err error
	switch {
	case ip.Size+toWrite <= inode.MaxBytesDirect:
		n, err = fs.writeDirect(ip, f, buf)

	case ip.Size >= inode.MaxBytesDirect:
		if ip.Blks[inode.IndirectSlot] == common.NULLBNUM {
			err = fs.allocIndirect(ip)
		}
		if err == nil {
			n, err = fs.writeIndirect(ip, f, buf)
		}

	default:
		directSize := inode.MaxBytesDirect - ip.Size
		n, err = fs.writeDirect(ip, f, buf[:directSize])
		if err == nil && ip.Blks[inode.IndirectSlot] == common.NULLBNUM {
			err = fs.allocIndirect(ip)
		}
		if err == nil {
			var in uint64
			in, err = fs.writeIndirect(ip, f, buf[directSize:])
			n += in
		}
	}

	ip.Unlock(locks.Read)
	f.Unlock(locks.Mutex)

	if err != nil {
		util.DPrintf(2, "tfs: write fh %d: %v\n", fh, err)
		return int(n), err
	}
	return int(n), nil
}

// writeDirect copies buf into the direct region, allocating a block
// whenever the size sits on a block boundary. The caller guarantees the
// whole range fits below MaxBytesDirect.
func (fs *Fs) writeDirect(ip *inode.Inode, f *openfile.Entry, buf []byte) (uint64, error) {
	var written uint64
	writeSize := uint64(len(buf))

	for i := 0; writeSize > 0 && i < inode.NBlkIno; i++ {
		if ip.Size%disk.BlockSize == 0 {
			if err := fs.insertDirectBlock(ip); err != nil {
				return written, err
			}
		}
		blk, err := fs.pool.Get(ip.DataBlk)
		if err != nil {
			return written, err
		}

		boff := f.Off % disk.BlockSize
		n := util.Min(writeSize, disk.BlockSize-boff)
		copy(blk[boff:boff+n], buf[written:written+n])

		f.Off += n
		ip.Size += n
		written += n
		writeSize -= n
	}
	return written, nil
}

// writeIndirect is writeDirect for the indirect region: the byte count is
// clipped to the file-size ceiling on entry, and fresh blocks are recorded
// in successive slots of the indirect block instead of the inode.
func (fs *Fs) writeIndirect(ip *inode.Inode, f *openfile.Entry, buf []byte) (uint64, error) {
	writeSize := uint64(len(buf))
	if ip.Size+writeSize > inode.MaxBytes {
		writeSize = inode.MaxBytes - ip.Size
	}

	var written uint64
	for writeSize > 0 {
		if ip.Size%disk.BlockSize == 0 {
			if err := fs.insertIndirectBlock(ip); err != nil {
				return written, err
			}
		}
		blk, err := fs.pool.Get(ip.DataBlk)
		if err != nil {
			return written, err
		}

		boff := f.Off % disk.BlockSize
		n := util.Min(writeSize, disk.BlockSize-boff)
		copy(blk[boff:boff+n], buf[written:written+n])

		f.Off += n
		ip.Size += n
		written += n
		writeSize -= n
	}
	return written, nil
}

// insertDirectBlock allocates a zeroed block, registers it in the next
// direct slot, and makes it the working block.
func (fs *Fs) insertDirectBlock(ip *inode.Inode) error {
	b, err := fs.allocZeroed()
	if err != nil {
		return err
	}
	ip.Blks[ip.Size/disk.BlockSize] = b
	ip.DataBlk = b
	return nil
}

// insertIndirectBlock allocates a zeroed block, records its reference in
// the next slot of the indirect block, and makes it the working block.
func (fs *Fs) insertIndirectBlock(ip *inode.Inode) error {
	ind, err := fs.pool.Get(ip.Blks[inode.IndirectSlot])
	if err != nil {
		return err
	}
	b, err := fs.allocZeroed()
	if err != nil {
		return err
	}
	inode.PutRef(ind, (ip.Size-inode.MaxBytesDirect)/disk.BlockSize, b)
	ip.DataBlk = b
	return nil
}

// allocIndirect allocates and zeroes the indirect block itself.
func (fs *Fs) allocIndirect(ip *inode.Inode) error {
	b, err := fs.allocZeroed()
	if err != nil {
		return err
	}
	ip.Blks[inode.IndirectSlot] = b
	return nil
}

// allocZeroed allocates a block and clears it; the pool recycles freed
// blocks with stale contents.
func (fs *Fs) allocZeroed() (common.Bnum, error) {
	b, err := fs.pool.Alloc()
	if err != nil {
		return common.NULLBNUM, err
	}
	blk, err := fs.pool.Get(b)
	if err != nil {
		return common.NULLBNUM, err
	}
	for i := range blk {
		blk[i] = 0
	}
	return b, nil
}

// Read copies from fh's current offset into buf and returns the byte count,
// clamped to the remaining file size. The range is split around the
// direct-region boundary the same way Write is.
func (fs *Fs) Read(fh int, buf []byte) (int, error) {
	if len(buf) == 0 {
		return 0, ErrInvalidInput
	}

	fs.ftable.Lock(locks.Read)
	f := fs.ftable.Get(fh)
	fs.ftable.Unlock(locks.Read)
	if f == nil {
		return 0, openfile.ErrBadHandle
	}

	f.Lock(locks.Mutex)
	ip := fs.itable.Get(f.Inum)
	if ip == nil {
		f.Unlock(locks.Mutex)
		return 0, ErrNotFound
	}
	ip.Lock(locks.Read)

	var toRead uint64
	if ip.Size > f.Off {
		toRead = util.Min(ip.Size-f.Off, uint64(len(buf)))
	}

	var n uint64
	var err error
	switch {
	case f.Off+toRead <= inode.MaxBytesDirect:
		n, err = fs.readDirect(ip, f, buf[:toRead])

	case f.Off >= inode.MaxBytesDirect:
		n, err = fs.readIndirect(ip, f, buf[:toRead])

	default:
		directBytes := inode.MaxBytesDirect - f.Off
		n, err = fs.readDirect(ip, f, buf[:directBytes])
		if err == nil {
			var in uint64
			in, err = fs.readIndirect(ip, f, buf[n:toRead])
			n += in
		}
	}

	ip.Unlock(locks.Read)
	f.Unlock(locks.Mutex)

	if err != nil {
		util.DPrintf(2, "tfs: read fh %d: %v\n", fh, err)
		return int(n), err
	}
	return int(n), nil
}

// readDirect walks the direct slots covering [f.Off, f.Off+len(dst)).
func (fs *Fs) readDirect(ip *inode.Inode, f *openfile.Entry, dst []byte) (uint64, error) {
	var total uint64
	toRead := uint64(len(dst))

	for toRead > 0 {
		blk, err := fs.pool.Get(ip.Blks[f.Off/disk.BlockSize])
		if err != nil {
			return total, err
		}
		boff := f.Off % disk.BlockSize
		n := util.Min(toRead, disk.BlockSize-boff)
		copy(dst[total:total+n], blk[boff:boff+n])

		f.Off += n
		total += n
		toRead -= n
	}
	return total, nil
}

// readIndirect walks the indirect block's reference slots the same way.
func (fs *Fs) readIndirect(ip *inode.Inode, f *openfile.Entry, dst []byte) (uint64, error) {
	var total uint64
	toRead := uint64(len(dst))

	for toRead > 0 {
		ind, err := fs.pool.Get(ip.Blks[inode.IndirectSlot])
		if err != nil {
			return total, err
		}
		b := inode.GetRef(ind, (f.Off-inode.MaxBytesDirect)/disk.BlockSize)
		blk, err := fs.pool.Get(b)
		if err != nil {
			return total, err
		}
		boff := f.Off % disk.BlockSize
		n := util.Min(toRead, disk.BlockSize-boff)
		copy(dst[total:total+n], blk[boff:boff+n])

		f.Off += n
		total += n
		toRead -= n
	}
	return total, nil
}
