package ufs

import "github.com/teris-io/shortid"

// file is one entry in the file table, grounded on userfs.c's struct file.
// name is unique among non-ghost files; a ghost and its shadowing
// replacement may share a name for as long as the ghost has refs > 0. key
// is unique per file even across a name collision, so a ghost and its
// shadow never alias the same catalog row.
type file struct {
	key       string
	name      string
	blockList *block
	lastBlock *block
	size      int64
	ghost     bool // independent of refs, set unconditionally by Delete
	refs      int
	next      *file
	prev      *file
}

// fileTable is the doubly-linked file list plus a cuckoo filter used as a
// fast-reject pre-check before the linear scan find() still has to do,
// grounded on userfs.c's static file_list / find_file / create_file /
// remove_file_from_list. The filter is advisory only: a false positive
// from the filter just means find() falls through to the linear scan it
// would have done anyway, and the filter is never the source of truth.
type fileTable struct {
	head   *file
	filter *negativeCache
}

func newFileTable() *fileTable {
	return &fileTable{filter: newNegativeCache()}
}

// find scans the file list, grounded on userfs.c's find_file. Ghost files
// are returned too: the ghost/visible distinction is the caller's (open's)
// business.
func (t *fileTable) find(name string) *file {
	if !t.filter.mayExist(name) {
		return nil
	}
	for f := t.head; f != nil; f = f.next {
		if f.name == name {
			return f
		}
	}
	return nil
}

// create prepends a new file, grounded on userfs.c's create_file. Callers
// must already have decided uniqueness via find(); a shadowing create
// coexists with its ghost predecessor until the ghost's refs reach zero.
func (t *fileTable) create(name string) *file {
	key, err := shortid.Generate()
	if err != nil {
		key = name
	}
	f := &file{key: key, name: name}
	if t.head != nil {
		f.next = t.head
		t.head.prev = f
	}
	t.head = f
	t.filter.add(name)
	return f
}

// remove unlinks f from the list, grounded on userfs.c's
// remove_file_from_list. The cuckoo filter is left alone: it only ever
// produces false positives (extra linear scans), never false negatives, so
// a stale "maybe present" entry for a removed name is harmless.
func (t *fileTable) remove(f *file) {
	if t.head == f {
		t.head = f.next
	}
	if f.prev != nil {
		f.prev.next = f.next
	}
	if f.next != nil {
		f.next.prev = f.prev
	}
	f.next, f.prev = nil, nil
}
