// Copyright 2022-2026 The N42 Authors
// This file is part of the N42 library.
//
// The N42 library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The N42 library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the N42 library. If not, see <http://www.gnu.org/licenses/>.

// Package elemcache caches already-decoded elements by link so repeat
// lookups of hot records (a recent block header, say) skip the
// mmap-accessor-plus-decode round trip. It is purely an optimization
// layer in front of a table: a miss always falls back to the table
// itself, and the cache is never the source of truth.
package elemcache

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/bitledger/chaindb/store/link"
)

// Cache holds decoded elements of type V keyed by their table link.
type Cache[V any] struct {
	inner *lru.Cache[link.Link, V]
}

// New creates a Cache holding up to size decoded elements. size must be
// positive.
func New[V any](size int) (*Cache[V], error) {
	inner, err := lru.New[link.Link, V](size)
	if err != nil {
		return nil, err
	}
	return &Cache[V]{inner: inner}, nil
}

// Get returns the cached value for l, if present.
func (c *Cache[V]) Get(l link.Link) (V, bool) {
	return c.inner.Get(l)
}

// Put caches value under l, evicting the least recently used entry if
// the cache is at capacity.
func (c *Cache[V]) Put(l link.Link, value V) {
	c.inner.Add(l, value)
}

// Remove evicts l from the cache, if present. Tables call this on
// nothing today (records are never overwritten in place), but recovery
// truncation invalidates links beyond the restored body count.
func (c *Cache[V]) Remove(l link.Link) {
	c.inner.Remove(l)
}

// Len returns the number of cached entries.
func (c *Cache[V]) Len() int { return c.inner.Len() }
