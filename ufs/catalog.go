package ufs

import (
	"sort"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/tidwall/buntdb"
)

// Record is the catalog's queryable projection of one file table entry.
// It has no original_source analogue: userfs.c's debug_print_files just
// walks and prints the live list. Catalog supplements that with an
// indexed, queryable secondary view, grounded on the general pattern of
// keeping a separate queryable index alongside a primary in-memory list
// (aistore's dsort manager tracks job state this way).
type Record struct {
	Key   string `json:"key"`
	Name  string `json:"name"`
	Size  int64  `json:"size"`
	Refs  int    `json:"refs"`
	Ghost bool   `json:"ghost"`
}

// Catalog mirrors live file-table state into an in-memory buntdb so the
// admin server can look up one record by key, or list the ghosts, without
// walking the live, mutating file list.
type Catalog struct {
	db *buntdb.DB
}

func NewCatalog() (*Catalog, error) {
	db, err := buntdb.Open(":memory:")
	if err != nil {
		return nil, errors.Wrap(err, "open catalog")
	}
	if err := db.CreateIndex("size", "*", buntdb.IndexJSON("size")); err != nil {
		return nil, errors.Wrap(err, "create size index")
	}
	return &Catalog{db: db}, nil
}

func (c *Catalog) Close() error { return c.db.Close() }

// Upsert replaces or inserts the catalog entry for f's current state,
// keyed by r.Key rather than r.Name: a ghost and the shadow that
// replaces it under the same name are distinct files with distinct
// keys, so upserting one never overwrites the other's row. Called by FS
// after any operation that changes a file's size, refs, or ghost flag,
// keeping the catalog eventually consistent with the live list within
// the same call that mutated it.
func (c *Catalog) Upsert(r Record) error {
	buf, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(r)
	if err != nil {
		return errors.Wrap(err, "marshal catalog record")
	}
	return c.db.Update(func(tx *buntdb.Tx) error {
		_, _, err := tx.Set(r.Key, string(buf), nil)
		return err
	})
}

// Remove deletes the catalog row for the given key (Record.Key, not
// Name), so removing a reclaimed ghost can never drop a shadow's row
// that happens to share its name.
func (c *Catalog) Remove(key string) error {
	return c.db.Update(func(tx *buntdb.Tx) error {
		_, err := tx.Delete(key)
		if err == buntdb.ErrNotFound {
			return nil
		}
		return err
	})
}

// Get looks up a single record by key (Record.Key, not Name).
func (c *Catalog) Get(key string) (Record, bool, error) {
	var rec Record
	var found bool
	err := c.db.View(func(tx *buntdb.Tx) error {
		val, err := tx.Get(key)
		if err == buntdb.ErrNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal([]byte(val), &rec)
	})
	return rec, found, err
}

// Ghosts returns every catalog entry currently marked deleted, ordered by
// name — the view the admin debug endpoint uses to show pending reclaims.
func (c *Catalog) Ghosts() ([]Record, error) {
	var out []Record
	err := c.db.View(func(tx *buntdb.Tx) error {
		return tx.Ascend("", func(key, val string) bool {
			var rec Record
			if jsonErr := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal([]byte(val), &rec); jsonErr == nil && rec.Ghost {
				out = append(out, rec)
			}
			return true
		})
	})
	// rows are keyed by Record.Key, so Ascend yields key order, not name order
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, err
}
