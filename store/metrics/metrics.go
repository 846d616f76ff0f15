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

// Package metrics exposes the store's runtime counters through a
// VictoriaMetrics registry, one counter set per table name. The set is
// keyed by table name alone, so several stores opened in one process
// share the same counters for a given table.
package metrics

import (
	"fmt"
	"time"

	"github.com/VictoriaMetrics/metrics"
)

// Table holds the counters and histograms for one table's lifetime:
// puts, remaps, disk-full events, and snapshot/recovery durations.
type Table struct {
	puts       *metrics.Counter
	gets       *metrics.Counter
	remaps     *metrics.Counter
	diskFull   *metrics.Counter
	snapshotMs *metrics.Histogram
	recoverMs  *metrics.Histogram
}

// NewTable registers (or reuses) the counter set for a table named name
// under the default registry.
func NewTable(name string) *Table {
	return &Table{
		puts:       metrics.GetOrCreateCounter(fmt.Sprintf(`chaindb_table_puts_total{table=%q}`, name)),
		gets:       metrics.GetOrCreateCounter(fmt.Sprintf(`chaindb_table_gets_total{table=%q}`, name)),
		remaps:     metrics.GetOrCreateCounter(fmt.Sprintf(`chaindb_table_remaps_total{table=%q}`, name)),
		diskFull:   metrics.GetOrCreateCounter(fmt.Sprintf(`chaindb_table_disk_full_total{table=%q}`, name)),
		snapshotMs: metrics.GetOrCreateHistogram(fmt.Sprintf(`chaindb_table_snapshot_duration_ms{table=%q}`, name)),
		recoverMs:  metrics.GetOrCreateHistogram(fmt.Sprintf(`chaindb_table_recover_duration_ms{table=%q}`, name)),
	}
}

// Put increments the put counter.
func (t *Table) Put() { t.puts.Inc() }

// Get increments the get counter.
func (t *Table) Get() { t.gets.Inc() }

// Remap increments the remap counter, observed whenever Allocate has to
// grow the backing file.
func (t *Table) Remap() { t.remaps.Inc() }

// DiskFull increments the disk-full counter, observed whenever an
// allocation latches the disk-full flag.
func (t *Table) DiskFull() { t.diskFull.Inc() }

// ObserveSnapshot records how long a snapshot's flush+record phase took.
func (t *Table) ObserveSnapshot(d time.Duration) {
	t.snapshotMs.Update(float64(d.Milliseconds()))
}

// ObserveRecover records how long dirty-shutdown recovery took.
func (t *Table) ObserveRecover(d time.Duration) {
	t.recoverMs.Update(float64(d.Milliseconds()))
}
