package ufs

import "github.com/teris-io/shortid"

// rights is the descriptor permission set, grounded on userfs.c's union
// Rights, decoded from the flags bitmask passed to Open; the bit positions
// of those flags are fixed (errors.go).
type rights struct {
	created  bool
	readable bool
	writable bool
	append   bool
}

func rightsFromFlags(flags int) rights {
	return rights{
		created:  flags&Create != 0,
		readable: flags&Read != 0,
		writable: flags&Write != 0,
		append:   flags&Append != 0,
	}
}

// descriptor is a single open handle on a file, grounded on userfs.c's
// struct filedesc. Read and write positions are independent; currentBlock
// caches the block containing the next byte either head will touch, and is
// only trustworthy when exactly one of {readable, writable} holds.
type descriptor struct {
	handle       string // shortid correlation label; no output in this package includes it
	file         *file
	currentBlock *block
	posRead      int64
	posWrite     int64
	rights       rights
}

func newDescriptor(f *file, r rights) *descriptor {
	sid, err := shortid.Generate()
	if err != nil {
		sid = "fd0"
	}
	return &descriptor{handle: sid, file: f, rights: r}
}

// invalidateCache drops the current-block hint; called whenever the
// descriptor holds both read and write rights (the two heads may diverge)
// or a position was just clamped past the file's end.
func (d *descriptor) invalidateCache() {
	d.currentBlock = nil
}

// descriptorTable is the sparse, grow-by-one fd array from userfs.c's
// static file_descriptors/file_descriptor_count/file_descriptor_capacity.
// Closed slots are nil and eligible for reuse by the next open().
type descriptorTable struct {
	slots []*descriptor
	count int
}

// allocSlot reuses the lowest empty index if any, else grows the table by
// one, grounded on userfs.c's get_free_space_in_fd_array / resize_fd_array.
func (t *descriptorTable) allocSlot(d *descriptor) int {
	for i, s := range t.slots {
		if s == nil {
			t.slots[i] = d
			t.count++
			return i
		}
	}
	t.slots = append(t.slots, d)
	t.count++
	return len(t.slots) - 1
}

func (t *descriptorTable) get(fd int) *descriptor {
	if fd < 0 || fd >= len(t.slots) {
		return nil
	}
	return t.slots[fd]
}

// free clears slot fd and, if the table is now entirely empty, drops its
// backing array to let capacity observably return to zero (userfs.c's
// ufs_close tail: "if all slots are empty, free the descriptors array").
func (t *descriptorTable) free(fd int) {
	if fd < 0 || fd >= len(t.slots) {
		return
	}
	t.slots[fd] = nil
	t.count--
	for _, s := range t.slots {
		if s != nil {
			return
		}
	}
	t.slots = nil
	t.count = 0
}
