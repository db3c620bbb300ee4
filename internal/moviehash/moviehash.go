package moviehash

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

const (
	// ChunkSize is the width of the head and tail windows.
	ChunkSize = 64 * 1024
	// MinSize is the smallest file that yields two full windows.
	MinSize = 2 * ChunkSize

	wordSize = 8
)

var (
	// ErrTooSmall reports a file shorter than MinSize.
	ErrTooSmall = errors.New("file too small to fingerprint")
	// ErrUnreadable reports an open, stat or read failure.
	ErrUnreadable = errors.New("file unreadable")
)

// Hash is a computed fingerprint.
type Hash uint64

// String renders the hash as 16 lowercase hex digits.
func (h Hash) String() string {
	return fmt.Sprintf("%016x", uint64(h))
}

// Compute returns the fingerprint of the file at path.
func Compute(path string) (Hash, error) {
	hash, _, err := ComputeWithSize(path)
	return hash, err
}

// ComputeWithSize returns the fingerprint together with the file size. The
// size is reported whenever the file could be inspected, even if hashing fails.
func ComputeWithSize(path string) (Hash, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: open %s: %v", ErrUnreadable, path, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return 0, 0, fmt.Errorf("%w: stat %s: %v", ErrUnreadable, path, err)
	}
	if info.IsDir() {
		return 0, 0, fmt.Errorf("%w: %s is a directory", ErrUnreadable, path)
	}

	hash, err := ComputeReader(file, info.Size())
	if err != nil {
		return 0, info.Size(), fmt.Errorf("%s: %w", path, err)
	}
	return hash, info.Size(), nil
}

// ComputeReader fingerprints size bytes of r. A short read at either window
// fails with ErrUnreadable; no partial hash is returned.
func ComputeReader(r io.ReaderAt, size int64) (Hash, error) {
	if size < MinSize {
		return 0, fmt.Errorf("%w: %d bytes, need at least %d", ErrTooSmall, size, MinSize)
	}

	acc := uint64(size)
	buf := make([]byte, ChunkSize)

	for _, offset := range []int64{0, max(0, size-ChunkSize)} {
		n, err := r.ReadAt(buf, offset)
		// A full window may arrive together with io.EOF at the end of the source.
		if n < ChunkSize {
			if err == nil {
				err = io.ErrUnexpectedEOF
			}
			return 0, fmt.Errorf("%w: read %d of %d bytes at offset %d: %v", ErrUnreadable, n, ChunkSize, offset, err)
		}
		acc = sumWords(acc, buf)
	}

	return Hash(acc), nil
}

func sumWords(acc uint64, window []byte) uint64 {
	for i := 0; i+wordSize <= len(window); i += wordSize {
		acc += binary.LittleEndian.Uint64(window[i:])
	}
	return acc
}
