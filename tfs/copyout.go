package tfs

import (
	"fmt"

	"github.com/mit-pdos/go-tfs/locks"
	"github.com/mit-pdos/go-tfs/util"
	"golang.org/x/sys/unix"
)

// BufferSize is the chunk size used when draining a file to the host.
const BufferSize = 100

// CopyToHost copies the TFS file at src to the host filesystem at dst,
// byte-for-byte: a sequence of reads from offset 0 up to the file's size.
func (fs *Fs) CopyToHost(src string, dst string) error {
	if _, err := fs.Lookup(src); err != nil {
		return err
	}
	fh, err := fs.Open(src, OAppend)
	if err != nil {
		return err
	}

	f := fs.ftable.Get(fh)
	f.Lock(locks.Mutex)
	ip := fs.itable.Get(f.Inum)
	f.Off = 0
	f.Unlock(locks.Mutex)

	ip.Lock(locks.Read)
	total := ip.Size
	ip.Unlock(locks.Read)

	fd, err := unix.Open(dst, unix.O_WRONLY|unix.O_CREAT|unix.O_TRUNC, 0666)
	if err != nil {
		fs.Close(fh)
		return fmt.Errorf("tfs: open %s: %w", dst, err)
	}

	buf := make([]byte, BufferSize)
	var copied uint64
	var off int64
	for copied < total {
		chunk := util.Min(BufferSize, total-copied)
		n, rerr := fs.Read(fh, buf[:chunk])
		if rerr != nil || n == 0 {
			unix.Close(fd)
			fs.Close(fh)
			return rerr
		}
		if _, werr := unix.Pwrite(fd, buf[:n], off); werr != nil {
			unix.Close(fd)
			fs.Close(fh)
			return fmt.Errorf("tfs: write %s: %w", dst, werr)
		}
		off += int64(n)
		copied += uint64(n)
	}

	if serr := unix.Fsync(fd); serr != nil {
		unix.Close(fd)
		fs.Close(fh)
		return fmt.Errorf("tfs: sync %s: %w", dst, serr)
	}
	if cerr := unix.Close(fd); cerr != nil {
		fs.Close(fh)
		return fmt.Errorf("tfs: close %s: %w", dst, cerr)
	}
	util.DPrintf(5, "tfs: copied %s -> %s (%d bytes)\n", src, dst, copied)
	return fs.Close(fh)
}
