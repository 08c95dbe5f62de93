// Command tfs-example exercises the filesystem end to end: it creates a
// file, writes across the direct/indirect boundary, reads the contents
// back, and, when a host path is given as its argument, copies the file out
// to that path.
package main

import (
	"bytes"
	"fmt"
	"log"
	"os"

	"github.com/mit-pdos/go-tfs/inode"
	"github.com/mit-pdos/go-tfs/tfs"
	"github.com/mit-pdos/go-tfs/util"
)

func main() {
	fs, err := tfs.MkFs()
	if err != nil {
		log.Fatal(err)
	}
	defer fs.Destroy()

	fh, err := fs.Open("/demo", tfs.OCreate)
	if err != nil {
		log.Fatal(err)
	}

	// Fill the direct region and two indirect blocks.
	data := append(bytes.Repeat([]byte{'A'}, int(inode.MaxBytesDirect)),
		bytes.Repeat([]byte{'B'}, 2048)...)
	n, err := fs.Write(fh, data)
	if err != nil {
		log.Fatal(err)
	}
	if err := fs.Close(fh); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("wrote %d bytes to /demo\n", n)

	fh, err = fs.Open("/demo", 0)
	if err != nil {
		log.Fatal(err)
	}
	got := make([]byte, len(data))
	m, err := fs.Read(fh, got)
	if err != nil {
		log.Fatal(err)
	}
	fs.Close(fh)
	fmt.Printf("read %d bytes back, contents match: %v\n", m, bytes.Equal(data[:m], got[:m]))

	inum, err := fs.Lookup("/demo")
	if err != nil {
		log.Fatal(err)
	}
	util.DPretty(1, "inode", fs.InodeState(inum))

	if len(os.Args) > 1 {
		if err := fs.CopyToHost("/demo", os.Args[1]); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("copied /demo to %s\n", os.Args[1])
	}
}
