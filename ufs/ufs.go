package ufs

import "github.com/nechda/cooptools/cmn/nlog"

// FS is an in-memory filesystem handle, grounded on userfs.c's process-wide
// globals (file_list, file_descriptors, ufs_error_code) collapsed into an
// explicit handle. FS is not safe for concurrent use; callers must
// serialise, matching the single-threaded contract of the source.
type FS struct {
	table       *fileTable
	descriptors descriptorTable
	errCode     ErrCode
	catalog     *Catalog
	metrics     *Metrics
}

// NewFS opens a filesystem handle with its own catalog and metrics. The
// catalog is a diagnostic secondary index (catalog.go); a failure to open
// it in-memory would indicate a buntdb-level problem unrelated to anything
// a caller did, so it is returned rather than silently disabled.
func NewFS() (*FS, error) {
	cat, err := NewCatalog()
	if err != nil {
		return nil, err
	}
	return &FS{table: newFileTable(), catalog: cat, metrics: NewMetrics()}, nil
}

func (fs *FS) Metrics() *Metrics { return fs.metrics }

func (fs *FS) Catalog() *Catalog { return fs.catalog }

func (fs *FS) setErr(c ErrCode) { fs.errCode = c }

// syncCatalog mirrors f's current state into the catalog. The catalog is
// diagnostic, not authoritative, so a write failure here is logged and
// swallowed rather than surfaced through the operation that triggered it.
func (fs *FS) syncCatalog(f *file) {
	if fs.catalog == nil || f == nil {
		return
	}
	r := Record{Key: f.key, Name: f.name, Size: f.size, Refs: f.refs, Ghost: f.ghost}
	if err := fs.catalog.Upsert(r); err != nil {
		nlog.Warningf("catalog upsert %s: %v", f.name, err)
	}
}

// Errno returns the last failing operation's error code. A successful call
// never clears it: callers read it immediately after a −1 return.
func (fs *FS) Errno() ErrCode { return fs.errCode }

// Open resolves name against the file table's exists/ghost/create
// outcome matrix and allocates a descriptor for the result.
func (fs *FS) Open(name string, flags int) int {
	existing := fs.table.find(name)
	r := rightsFromFlags(flags)
	if !r.readable && !r.writable {
		r.readable, r.writable, r.append = true, true, true
	}

	exists := existing != nil
	ghost := exists && existing.ghost
	create := r.created

	var target *file
	switch {
	case !exists && !create:
		fs.setErr(ErrNoFile)
		return -1
	case !exists && create:
		target = fs.table.create(name)
	case exists && ghost && !create:
		fs.setErr(ErrNoFile)
		return -1
	case exists && ghost && create:
		// shadow: a fresh file coexists with the ghost until its refs hit 0
		target = fs.table.create(name)
	default: // exists && !ghost
		target = existing
	}

	d := newDescriptor(target, r)
	fd := fs.descriptors.allocSlot(d)
	target.refs++
	fs.syncCatalog(target)
	fs.metrics.observeOpen()
	return fd
}

// Write implements the file write operation. buf == nil stands in for
// the reference design's NULL buffer check (Go slices carry no pointer
// the caller could otherwise pass invalid).
func (fs *FS) Write(fd int, buf []byte) int {
	d := fs.descriptors.get(fd)
	if d == nil {
		fs.setErr(ErrNoFile)
		return -1
	}
	if buf == nil {
		fs.setErr(ErrNullPtrBuf)
		return -1
	}
	if !d.rights.writable {
		fs.setErr(ErrNoPermission)
		return -1
	}
	f := d.file
	if f == nil {
		fs.setErr(ErrNoFile)
		return -1
	}

	if f.blockList == nil {
		f.blockList = &block{}
		f.lastBlock = f.blockList
	}

	if d.posWrite > f.size {
		d.posWrite = f.size
		d.invalidateCache()
	}
	if d.rights.readable && d.rights.writable {
		d.invalidateCache()
	}

	var blk *block
	if d.rights.append {
		d.posWrite = f.size
		if d.posWrite >= maxFileSize {
			fs.setErr(ErrNoMem)
			return -1
		}
		blk = f.lastBlock
		if blk.occupied == blockSize {
			blk = pushBack(blk)
			f.lastBlock = blk
		}
	} else {
		if d.posWrite >= maxFileSize {
			fs.setErr(ErrNoMem)
			return -1
		}
		if d.currentBlock != nil {
			blk = d.currentBlock
		} else {
			idx := int(d.posWrite / blockSize)
			var prev *block
			blk = f.blockList
			for idx > 0 {
				prev = blk
				blk = blk.next
				idx--
			}
			if blk == nil {
				// the write position sits exactly at the end of a full
				// last block (it was clamped to the file size above, so
				// it can be no further): extend the chain by one block.
				blk = pushBack(prev)
				f.lastBlock = blk
			}
		}
	}
	d.currentBlock = blk

	posInBlk := int(d.posWrite % blockSize)
	remaining := len(buf)
	written := 0
	for remaining > 0 {
		if posInBlk == blockSize {
			if blk.next == nil {
				blk = pushBack(blk)
				f.lastBlock = blk
			} else {
				blk = blk.next
			}
			posInBlk = 0
		}
		n := blockSize - posInBlk
		if remaining < n {
			n = remaining
		}
		copy(blk.data[posInBlk:], buf[written:written+n])
		d.posWrite += int64(n)
		posInBlk += n
		if posInBlk > blk.occupied {
			blk.occupied = posInBlk
		}
		written += n
		remaining -= n
	}
	// keep the cache on the block holding the next byte: after a write that
	// ended on a block boundary that is the next block (or none yet).
	if posInBlk == blockSize {
		d.currentBlock = blk.next
	} else {
		d.currentBlock = blk
	}
	if d.posWrite > f.size {
		f.size = d.posWrite
		f.lastBlock = blk
	}
	fs.syncCatalog(f)
	fs.metrics.observeWrite(written)
	return written
}

// Read implements the file read operation.
func (fs *FS) Read(fd int, buf []byte) int {
	d := fs.descriptors.get(fd)
	if d == nil {
		fs.setErr(ErrNoFile)
		return -1
	}
	if buf == nil {
		fs.setErr(ErrNullPtrBuf)
		return -1
	}
	if !d.rights.readable {
		fs.setErr(ErrNoPermission)
		return -1
	}
	f := d.file
	if f == nil {
		fs.setErr(ErrNoFile)
		return -1
	}

	blk := f.blockList
	if blk == nil {
		return 0
	}

	if d.rights.readable && d.rights.writable {
		d.invalidateCache()
	}
	if d.posRead > f.size {
		d.posRead = f.size
		d.invalidateCache()
	}

	if d.currentBlock != nil {
		blk = d.currentBlock
	} else {
		idx := int(d.posRead / blockSize)
		for idx > 0 && blk != nil {
			blk = blk.next
			idx--
		}
		d.currentBlock = blk
	}

	posInBlk := int(d.posRead % blockSize)
	remaining := len(buf)
	read := 0
	for remaining > 0 {
		if blk == nil || (posInBlk == blk.occupied && blk.next == nil) {
			break
		}
		if posInBlk == blockSize {
			blk = blk.next
			posInBlk = 0
			continue
		}
		n := blk.occupied - posInBlk
		if remaining < n {
			n = remaining
		}
		copy(buf[read:read+n], blk.data[posInBlk:posInBlk+n])
		d.posRead += int64(n)
		posInBlk += n
		read += n
		remaining -= n
	}
	// keep the cache on the block holding the next byte, as Write does.
	if blk != nil && posInBlk == blockSize {
		d.currentBlock = blk.next
	} else {
		d.currentBlock = blk
	}
	fs.metrics.observeRead(read)
	return read
}

// Close implements the descriptor close operation. Unlike userfs.c's
// ufs_close, the freed slot never needs a struct-size decision in Go —
// there is only one descriptor type to construct, which is exactly what
// avoids the source's allocates-sizeof(struct file)-where-it-means-
// sizeof(struct filedesc) bug by construction rather than by a fix
// applied after the fact.
func (fs *FS) Close(fd int) int {
	d := fs.descriptors.get(fd)
	if d == nil {
		fs.setErr(ErrNoFile)
		return -1
	}
	f := d.file
	f.refs--
	reclaimed := f.ghost && f.refs == 0
	if reclaimed {
		fs.table.remove(f)
	}
	fs.descriptors.free(fd)
	if reclaimed {
		if err := fs.catalog.Remove(f.key); err != nil {
			nlog.Warningf("catalog remove %s: %v", f.name, err)
		}
	} else {
		fs.syncCatalog(f)
	}
	fs.metrics.observeClose()
	return 0
}

// Delete implements the file delete operation. userfs.c's ufs_delete
// sets `f->is_ghost = f->refs`, conflating the ghost flag with the
// reference count; here ghost is set to true unconditionally and
// independently of refs, then refs == 0 is checked separately to decide
// immediate removal.
func (fs *FS) Delete(name string) int {
	f := fs.table.find(name)
	if f == nil {
		fs.setErr(ErrNoFile)
		return -1
	}
	if f.ghost {
		return 0 // idempotent
	}
	f.ghost = true
	if f.refs == 0 {
		fs.table.remove(f)
		if err := fs.catalog.Remove(f.key); err != nil {
			nlog.Warningf("catalog remove %s: %v", f.name, err)
		}
	} else {
		fs.syncCatalog(f)
	}
	fs.metrics.observeDelete()
	return 0
}

// Resize implements the file resize operation. userfs.c bounds-checks
// with `fd > file_descriptor_capacity`, an off-by-one that lets
// fd == capacity through to a nil dereference; the correct bound is
// fd >= len(slots), which is what descriptors.get already enforces.
func (fs *FS) Resize(fd int, newSize int64) int {
	d := fs.descriptors.get(fd)
	if d == nil {
		fs.setErr(ErrNoFile)
		return -1
	}
	f := d.file
	if f == nil {
		fs.setErr(ErrNoFile)
		return -1
	}
	if newSize > maxFileSize {
		fs.setErr(ErrNoMem)
		return -1
	}

	blk := f.lastBlock
	if blk == nil && newSize > f.size {
		// growing a file that has never had a block allocated: the
		// generic growth loop below assumes an existing tail block to
		// compute "bytes needed to fill the rest of it", which doesn't
		// hold here. Lay down a fresh chain directly instead.
		var first, last *block
		for remaining := newSize; remaining > 0; {
			n := remaining
			if n > blockSize {
				n = blockSize
			}
			nb := pushBack(last)
			nb.occupied = int(n)
			if first == nil {
				first = nb
			}
			last = nb
			remaining -= n
		}
		f.blockList, f.lastBlock = first, last
		d.invalidateCache()
		f.size = newSize
		fs.syncCatalog(f)
		fs.metrics.observeResize(newSize)
		return 0
	}

	if newSize == 0 {
		for blk != nil {
			blk = popBack(blk)
		}
		f.blockList = nil
		f.lastBlock = nil
	}

	if newSize > f.size {
		need := int(newSize - f.size)
		if blk.occupied < blockSize {
			// the existing tail may be only partially filled (e.g. after
			// a short write); top it up to a full block — the gap reads
			// back as zero, since block.data starts zero-filled — before
			// chaining new blocks onto it. Skipping this step leaves a
			// partially-occupied block with a non-nil next, which stalls
			// Read forever at the old occupied boundary.
			room := blockSize - blk.occupied
			if need <= room {
				blk.occupied += need
				need = 0
			} else {
				need -= room
				blk.occupied = blockSize
			}
		}
		for need > blockSize {
			blk = pushBack(blk)
			blk.occupied = blockSize
			need -= blockSize
		}
		if need > 0 {
			blk = pushBack(blk)
			blk.occupied = need
		}
		f.lastBlock = blk
	}

	if newSize < f.size && newSize > 0 {
		need := int(f.size - newSize)
		for blk != nil && need >= blk.occupied {
			need -= blk.occupied
			blk = popBack(blk)
			if blk == nil {
				f.blockList = nil
			}
		}
		if need > 0 && blk != nil {
			blk.occupied -= need
		}
		f.lastBlock = blk
	}

	d.invalidateCache()
	f.size = newSize
	fs.syncCatalog(f)
	fs.metrics.observeResize(newSize)
	return 0
}
