package tfs

import (
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/mit-pdos/go-tfs/inode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyToHost(t *testing.T) {
	assert := assert.New(t)
	fs := mkFs(t)

	dir, err := ioutil.TempDir("", "tfs")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	// An awkward size: not a multiple of the copy buffer or the block size.
	data := make([]byte, 3*1024+137)
	for i := range data {
		data[i] = byte(i * 7)
	}
	fh, err := fs.Open("/src", OCreate)
	require.NoError(t, err)
	_, err = fs.Write(fh, data)
	require.NoError(t, err)
	require.NoError(t, fs.Close(fh))

	dst := filepath.Join(dir, "out.bin")
	assert.NoError(fs.CopyToHost("/src", dst))

	got, err := ioutil.ReadFile(dst)
	assert.NoError(err)
	assert.True(bytes.Equal(data, got), "host copy must match byte-for-byte")
}

func TestCopyToHostSpansIndirect(t *testing.T) {
	assert := assert.New(t)
	fs := mkFs(t)

	dir, err := ioutil.TempDir("", "tfs")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	data := bytes.Repeat([]byte{'Q'}, int(inode.MaxBytesDirect)+512)
	fh, err := fs.Open("/span", OCreate)
	require.NoError(t, err)
	_, err = fs.Write(fh, data)
	require.NoError(t, err)
	require.NoError(t, fs.Close(fh))

	dst := filepath.Join(dir, "span.bin")
	assert.NoError(fs.CopyToHost("/span", dst))

	got, err := ioutil.ReadFile(dst)
	assert.NoError(err)
	assert.Equal(len(data), len(got))
	assert.True(bytes.Equal(data, got))
}

func TestCopyToHostMissingSource(t *testing.T) {
	fs := mkFs(t)
	assert.Error(t, fs.CopyToHost("/nope", "/tmp/unused"))
}
