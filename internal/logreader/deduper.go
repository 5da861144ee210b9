package logreader

import (
	cache "github.com/patrickmn/go-cache"
)

// deduper remembers digests of emitted records for the lifetime of a reader.
// Livy has no log cursor, so every poll re-reads the whole log and already
// delivered records must be filtered out.
type deduper struct {
	cache *cache.Cache
}

func newDeduper() *deduper {
	return &deduper{
		cache: cache.New(cache.NoExpiration, 0),
	}
}

// seen reports whether the digest was accepted before.
func (d *deduper) seen(digest string) bool {
	_, found := d.cache.Get(digest)
	return found
}

// add inserts the digest and returns true when it was not present yet.
func (d *deduper) add(digest string) bool {
	return d.cache.Add(digest, struct{}{}, cache.NoExpiration) == nil
}

// shouldEmit reports whether r is new, marking it as emitted.
func (d *deduper) shouldEmit(r Record) bool {
	return d.add(r.digest())
}

func (d *deduper) len() int {
	return d.cache.ItemCount()
}
