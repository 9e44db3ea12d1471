package code

import lru "github.com/hashicorp/golang-lru/v2"

// Cache memoizes Decode by word value. Decoding is a pure function of
// the 32-bit word, and a running program re-decodes the same handful of
// words on every loop iteration; this mirrors mvm1.VM.funcCache from
// the retrieval pack, which caches decoded instruction sequences keyed
// by content fingerprint instead of re-deriving them every call.
type Cache struct {
	lru *lru.Cache[uint32, Fields]
}

// NewCache builds a decode cache holding up to size entries.
func NewCache(size int) *Cache {
	if size <= 0 {
		size = 256
	}
	c, err := lru.New[uint32, Fields](size)
	if err != nil {
		panic(err)
	}
	return &Cache{lru: c}
}

// Decode returns the cached Fields for word, decoding and storing it on
// first sight.
func (c *Cache) Decode(word uint32) Fields {
	if c == nil {
		return Decode(word)
	}
	if f, ok := c.lru.Get(word); ok {
		return f
	}
	f := Decode(word)
	c.lru.Add(word, f)
	return f
}
