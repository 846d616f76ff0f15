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

package conf

// StoreConfig configures one store instance: where its directory tree
// lives, the bucket counts of its hash tables, and the element cache
// sizes in front of its hot tables.
type StoreConfig struct {
	// Path is the store's root directory; primary/, secondary/,
	// temporary/, flush.lock and process.lock all live under it.
	Path string `json:"path" yaml:"path"`

	// SnapshotDir, if non-empty, turns on the secondary copy: every
	// Store.Snapshot call publishes a fresh copy of the head files to
	// secondary/ under Path. Only whether it is empty is consulted; its
	// value does not choose the directory. Empty disables the copy.
	SnapshotDir string `json:"snapshot_dir" yaml:"snapshot_dir"`

	// HeaderBuckets is the base-2 logarithm of the hashhead bucket count
	// for the header table (the table has 2^HeaderBuckets buckets).
	HeaderBuckets uint `json:"header_buckets" yaml:"header_buckets"`

	// TxBuckets is the base-2 logarithm of the hashhead bucket count for
	// the transaction table (the table has 2^TxBuckets buckets).
	TxBuckets uint `json:"tx_buckets" yaml:"tx_buckets"`

	// ConfirmedInitialBuckets is the arrayhead's initial ordinal range
	// for the confirmed-heights table.
	ConfirmedInitialBuckets uint64 `json:"confirmed_initial_buckets" yaml:"confirmed_initial_buckets"`

	// HeaderCacheSize is the number of decoded headers kept in the
	// front-of-table LRU cache. Zero disables the cache.
	HeaderCacheSize int `json:"header_cache_size" yaml:"header_cache_size"`

	// MapExpansionPercent is the percentage a table's mapped file
	// grows by on each allocation-triggered remap.
	MapExpansionPercent int `json:"map_expansion_percent" yaml:"map_expansion_percent"`

	// MapMinimumSize is the minimum byte size given to a freshly
	// created table file.
	MapMinimumSize int `json:"map_minimum_size" yaml:"map_minimum_size"`
}

// DefaultStoreConfig returns sensible defaults for a new store.
func DefaultStoreConfig(path string) StoreConfig {
	return StoreConfig{
		Path:                    path,
		HeaderBuckets:           20, // ~1M buckets
		TxBuckets:               24, // ~16M buckets
		ConfirmedInitialBuckets: 1 << 16,
		HeaderCacheSize:         4096,
		MapExpansionPercent:     50,
		MapMinimumSize:          1 << 20,
	}
}

// Validate fills in zero fields with their defaults rather than
// rejecting the configuration outright.
func (c *StoreConfig) Validate() error {
	if c.HeaderBuckets == 0 {
		c.HeaderBuckets = 20
	}
	if c.TxBuckets == 0 {
		c.TxBuckets = 24
	}
	if c.ConfirmedInitialBuckets == 0 {
		c.ConfirmedInitialBuckets = 1 << 16
	}
	if c.MapExpansionPercent <= 0 {
		c.MapExpansionPercent = 50
	}
	if c.MapMinimumSize <= 0 {
		c.MapMinimumSize = 1 << 20
	}
	return nil
}
