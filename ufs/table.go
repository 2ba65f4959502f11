package ufs

import cuckoo "github.com/seiflotfy/cuckoofilter"

// negativeCache wraps a cuckoo filter sized for a modest file table. It
// answers "definitely absent" cheaply so repeated open() calls against
// names that were never created skip the O(n) file-list walk.
type negativeCache struct {
	cf   *cuckoo.Filter
	full bool // an insert failed: the filter can no longer rule a name out
}

func newNegativeCache() *negativeCache {
	return &negativeCache{cf: cuckoo.NewFilter(1024)}
}

func (c *negativeCache) add(name string) {
	key := []byte(name)
	if !c.cf.Lookup(key) && !c.cf.Insert(key) {
		c.full = true
	}
}

func (c *negativeCache) mayExist(name string) bool {
	return c.full || c.cf.Lookup([]byte(name))
}
