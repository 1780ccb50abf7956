// Package cache provides a generic LRU cache used to memoize compiled
// shader programs.
//
//	c := cache.New[uint64, *program](64)
//	p, err := c.GetOrCreate(m.Hash(), func() (*program, error) { return compile(m) })
//
// A Cache is safe for concurrent use and must not be copied after
// creation.
package cache
