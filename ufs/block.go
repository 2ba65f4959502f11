package ufs

import "github.com/OneOfOne/xxhash"

// block is a fixed-size buffer node in a file's chain, grounded on
// userfs.c's struct block. occupied is the high-water mark of valid bytes;
// every block but the last has occupied == blockSize once the file extends
// past it.
type block struct {
	data     [blockSize]byte
	occupied int
	next     *block
	prev     *block
}

// checksum is diagnostic-only: an xxhash over data[:occupied], computed on
// demand; no read/write/resize path consults it.
func (b *block) checksum() uint64 {
	return xxhash.Checksum64(b.data[:b.occupied])
}

// pushBack allocates a new block, links it after last, and returns it.
// The reference design treats allocation failure as fatal; Go allocation
// failure is not recoverable either, so there is nothing to surface here.
func pushBack(last *block) *block {
	nb := &block{prev: last}
	if last != nil {
		last.next = nb
	}
	return nb
}

// popBack unlinks last from its chain and returns the new tail, or nil if
// the chain is now empty.
func popBack(last *block) *block {
	prev := last.prev
	if prev != nil {
		prev.next = nil
	}
	return prev
}
