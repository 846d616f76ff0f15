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

// Package store orchestrates create/open/snapshot/close across the full
// set of tables that make up one database: head and body files under
// primary/, an optional secondary/ snapshot copy, a temporary/ staging
// directory used to publish that copy atomically, and the flush-lock and
// process-lock sentinel files that detect an unclean shutdown and
// exclude a second process respectively.
package store

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bitledger/chaindb/conf"
	"github.com/bitledger/chaindb/log"
	"github.com/bitledger/chaindb/store/dberr"
	"github.com/bitledger/chaindb/store/elemcache"
	"github.com/bitledger/chaindb/store/filelock"
	"github.com/bitledger/chaindb/store/fileutil"
	"github.com/bitledger/chaindb/store/link"
	"github.com/bitledger/chaindb/store/metrics"
	"github.com/bitledger/chaindb/store/mmap"
	"github.com/bitledger/chaindb/store/schema"
	"github.com/bitledger/chaindb/store/table"
)

const (
	primaryDir      = "primary"
	secondaryDir    = "secondary"
	temporaryDir    = "temporary"
	flushLockFile   = "flush.lock"
	processLockFile = "process.lock"
)

// tableFiles names the on-disk pair for one table under a directory.
type tableFiles struct {
	head *mmap.Map
	body *mmap.Map
}

func newTableFiles(dir, name string, minimum, expansionPercent int) tableFiles {
	return tableFiles{
		head: mmap.New(filepath.Join(dir, name+".head"), minimum, expansionPercent),
		body: mmap.New(filepath.Join(dir, name+".data"), minimum, expansionPercent),
	}
}

func (t tableFiles) openAndLoad() error {
	for _, f := range []*mmap.Map{t.head, t.body} {
		if err := f.Open(); err != nil {
			return err
		}
		if err := f.Load(); err != nil {
			return err
		}
	}
	return nil
}

func (t tableFiles) unloadAndClose() error {
	var first error
	for _, f := range []*mmap.Map{t.head, t.body} {
		if err := f.Flush(); err != nil && first == nil {
			first = err
		}
		if err := f.Unload(); err != nil && first == nil {
			first = err
		}
		if err := f.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// assembly is the common surface every table assembly (HashMap, NoMap,
// ArrayMap) presents to the store's orchestration methods.
type assembly interface {
	Create() error
	Verify() bool
	Backup() error
	Restore() error
}

// Store is one open database: the header table, the transaction table,
// the confirmed-heights gap index, and the locks and directories that
// coordinate their lifecycle.
type Store struct {
	cfg conf.StoreConfig

	// transactor is the store-wide RW lock: every write takes it
	// shared, Snapshot takes it exclusive for the duration of its
	// flush-and-record phase. It is always the outermost lock: Snapshot
	// takes each map's locks (to flush) and each head's mutex (to record
	// the body count) while holding it exclusively, but no table-level
	// lock is ever held while waiting for it.
	transactor sync.RWMutex

	flushLock   *filelock.FlushLock
	processLock *filelock.ProcessLock

	headerFiles    tableFiles
	txFiles        tableFiles
	confirmedFiles tableFiles

	headerTable *table.HashMap
	txTable     *table.HashMap
	confirmed   *schema.Confirmed
	arrayTable  *table.ArrayMap

	headerCache *elemcache.Cache[*schema.Header]

	headerMetrics    *metrics.Table
	txMetrics        *metrics.Table
	confirmedMetrics *metrics.Table

	log log.Logger
}

func (s *Store) tables() []assembly {
	return []assembly{s.headerTable, s.txTable, s.arrayTable}
}

func primaryPath(root string) string { return filepath.Join(root, primaryDir) }

// Create initializes a fresh store directory tree: primary/ head and
// body files for every table (0xFF buckets, zero body size), and
// removes any stale lock or snapshot state left behind by a previous
// attempt.
func Create(cfg conf.StoreConfig) error {
	_ = cfg.Validate()

	if err := fileutil.CreateDirectory(cfg.Path); err != nil {
		return err
	}
	primary := primaryPath(cfg.Path)
	if err := fileutil.CreateDirectory(primary); err != nil {
		return err
	}
	_ = fileutil.Remove(filepath.Join(cfg.Path, flushLockFile))
	_ = fileutil.Remove(filepath.Join(cfg.Path, processLockFile))
	_ = os.RemoveAll(filepath.Join(cfg.Path, secondaryDir))
	_ = os.RemoveAll(filepath.Join(cfg.Path, temporaryDir))

	s := &Store{cfg: cfg}
	s.bindFiles(primary)

	for _, tf := range []tableFiles{s.headerFiles, s.txFiles, s.confirmedFiles} {
		if err := tf.openAndLoad(); err != nil {
			return err
		}
	}
	s.bindTables()

	for _, tbl := range s.tables() {
		if err := tbl.Create(); err != nil {
			return dberr.ErrCreateTable
		}
	}

	for _, tf := range []tableFiles{s.headerFiles, s.txFiles, s.confirmedFiles} {
		if err := tf.unloadAndClose(); err != nil {
			return err
		}
	}
	return nil
}

// Open opens an existing store, acquiring the process lock, detecting
// and running recovery after an unclean prior shutdown, and verifying
// every table's head layout before returning.
func Open(cfg conf.StoreConfig) (*Store, error) {
	_ = cfg.Validate()

	s := &Store{
		cfg:              cfg,
		log:              log.New("module", "store"),
		headerMetrics:    metrics.NewTable("header"),
		txMetrics:        metrics.NewTable("tx"),
		confirmedMetrics: metrics.NewTable("confirmed"),
	}

	s.processLock = filelock.NewProcessLock(filepath.Join(cfg.Path, processLockFile))
	if err := s.processLock.TryLock(); err != nil {
		return nil, err
	}

	s.flushLock = filelock.NewFlushLock(filepath.Join(cfg.Path, flushLockFile))
	dirty := s.flushLock.IsLocked()
	if err := s.flushLock.TryLock(); err != nil && !dirty {
		_ = s.processLock.Unlock()
		return nil, err
	}

	primary := primaryPath(cfg.Path)
	s.bindFiles(primary)

	for _, tf := range []tableFiles{s.headerFiles, s.txFiles, s.confirmedFiles} {
		if err := tf.openAndLoad(); err != nil {
			_ = s.processLock.Unlock()
			return nil, err
		}
	}
	s.bindTables()

	for _, tbl := range s.tables() {
		if !tbl.Verify() {
			_ = s.processLock.Unlock()
			return nil, dberr.ErrVerifyTable
		}
	}

	if dirty {
		s.log.Warn("flush lock present at open, recovering")
		if err := s.Recover(); err != nil {
			_ = s.processLock.Unlock()
			return nil, err
		}
	}

	if cfg.HeaderCacheSize > 0 {
		cache, err := elemcache.New[*schema.Header](cfg.HeaderCacheSize)
		if err != nil {
			_ = s.processLock.Unlock()
			return nil, err
		}
		s.headerCache = cache
	}

	// The confirmed-heights gap index lives only in memory; rediscover
	// it from the durable array table every time a store is opened.
	s.confirmed.Rebuild(uint32(s.arrayTable.Buckets()))

	return s, nil
}

func (s *Store) bindFiles(primary string) {
	minimum := s.cfg.MapMinimumSize
	expansion := s.cfg.MapExpansionPercent
	s.headerFiles = newTableFiles(primary, "header", minimum, expansion)
	s.txFiles = newTableFiles(primary, "tx", minimum, expansion)
	s.confirmedFiles = newTableFiles(primary, "confirmed", minimum, expansion)
}

func (s *Store) bindTables() {
	s.headerTable = table.NewHashMap(s.headerFiles.head, s.headerFiles.body, link.Size4,
		s.cfg.HeaderBuckets, schema.HeaderKeySize, schema.Header{}.Size())
	s.txTable = table.NewHashMap(s.txFiles.head, s.txFiles.body, link.Size5,
		s.cfg.TxBuckets, schema.TxKeySize, 0) // slab body: 0 signals manager.RecordSlab
	s.arrayTable = table.NewArrayMap(s.confirmedFiles.head, s.confirmedFiles.body, link.Size4,
		s.cfg.ConfirmedInitialBuckets)
	s.confirmed = schema.NewConfirmed(s.arrayTable)
}

// Recover truncates every table's body to the size recorded in its head
// file, the dirty-shutdown path: it discards whatever was appended
// since the last successful Snapshot or clean Close.
func (s *Store) Recover() error {
	start := time.Now()
	for _, tbl := range s.tables() {
		if err := tbl.Restore(); err != nil {
			return err
		}
	}
	d := time.Since(start)
	for _, m := range []*metrics.Table{s.headerMetrics, s.txMetrics, s.confirmedMetrics} {
		m.ObserveRecover(d)
	}
	return nil
}

// PutHeader inserts a block header keyed by its hash, caching the
// decoded value if a header cache is configured.
func (s *Store) PutHeader(hash [32]byte, h *schema.Header) error {
	s.transactor.RLock()
	defer s.transactor.RUnlock()

	before := s.headerFiles.body.Capacity()
	l, err := s.headerTable.PutLink(hash[:], h)
	if err != nil {
		if err == dberr.ErrDiskFull {
			s.headerMetrics.DiskFull()
		}
		return err
	}
	if s.headerFiles.body.Capacity() != before {
		s.headerMetrics.Remap()
	}
	s.headerMetrics.Put()
	if s.headerCache != nil {
		s.headerCache.Put(l, h)
	}
	return nil
}

// GetHeader returns the most recently inserted header for hash.
func (s *Store) GetHeader(hash [32]byte) (*schema.Header, bool) {
	s.transactor.RLock()
	defer s.transactor.RUnlock()

	l, ok := s.headerTable.First(hash[:])
	if !ok {
		return nil, false
	}
	s.headerMetrics.Get()
	if s.headerCache != nil {
		if cached, hit := s.headerCache.Get(l); hit {
			return cached, true
		}
	}
	var h schema.Header
	if err := s.headerTable.Get(l, &h); err != nil {
		return nil, false
	}
	if s.headerCache != nil {
		s.headerCache.Put(l, &h)
	}
	return &h, true
}

// PutTx inserts a transaction keyed by its hash.
func (s *Store) PutTx(hash [32]byte, tx *schema.Tx) error {
	s.transactor.RLock()
	defer s.transactor.RUnlock()

	before := s.txFiles.body.Capacity()
	if _, err := s.txTable.PutLink(hash[:], tx); err != nil {
		if err == dberr.ErrDiskFull {
			s.txMetrics.DiskFull()
		}
		return err
	}
	if s.txFiles.body.Capacity() != before {
		s.txMetrics.Remap()
	}
	s.txMetrics.Put()
	return nil
}

// GetTx returns the most recently inserted transaction for hash.
func (s *Store) GetTx(hash [32]byte) (*schema.Tx, bool) {
	s.transactor.RLock()
	defer s.transactor.RUnlock()

	l, ok := s.txTable.First(hash[:])
	if !ok {
		return nil, false
	}
	s.txMetrics.Get()
	var tx schema.Tx
	if err := s.txTable.Get(l, &tx); err != nil {
		return nil, false
	}
	return &tx, true
}

// ConfirmHeight marks height confirmed at unixSeconds.
func (s *Store) ConfirmHeight(height uint32, unixSeconds int64) error {
	s.transactor.RLock()
	defer s.transactor.RUnlock()

	before := s.confirmedFiles.body.Capacity()
	if err := s.confirmed.Confirm(height, unixSeconds); err != nil {
		if err == dberr.ErrDiskFull {
			s.confirmedMetrics.DiskFull()
		}
		return err
	}
	if s.confirmedFiles.body.Capacity() != before {
		s.confirmedMetrics.Remap()
	}
	s.confirmedMetrics.Put()
	return nil
}

// NextGap returns the lowest unconfirmed height below ceiling.
func (s *Store) NextGap(ceiling uint32) (uint32, bool) {
	return s.confirmed.NextGap(ceiling)
}

// Snapshot pauses writers (exclusive transactor lock), flushes every
// table to disk, records each table's current body size into its head
// file, releases the transactor lock, and — if a snapshot directory is
// configured — stages a fresh copy of the head files and publishes it
// with one atomic rename.
func (s *Store) Snapshot() error {
	start := time.Now()
	s.transactor.Lock()
	for _, tf := range []tableFiles{s.headerFiles, s.txFiles, s.confirmedFiles} {
		if err := tf.head.Flush(); err != nil {
			s.transactor.Unlock()
			return err
		}
		if err := tf.body.Flush(); err != nil {
			s.transactor.Unlock()
			return err
		}
	}
	for _, tbl := range s.tables() {
		if err := tbl.Backup(); err != nil {
			s.transactor.Unlock()
			return dberr.ErrBackupTable
		}
	}
	s.transactor.Unlock()
	d := time.Since(start)
	for _, m := range []*metrics.Table{s.headerMetrics, s.txMetrics, s.confirmedMetrics} {
		m.ObserveSnapshot(d)
	}

	if s.cfg.SnapshotDir == "" {
		return nil
	}
	return s.publishSnapshot()
}

func (s *Store) publishSnapshot() error {
	rotator := fileutil.NewRotator(s.cfg.Path, secondaryDir, temporaryDir)
	staging, err := rotator.Stage()
	if err != nil {
		return err
	}
	primary := primaryPath(s.cfg.Path)
	for _, name := range []string{"header.head", "tx.head", "confirmed.head"} {
		if err := fileutil.Copy(filepath.Join(primary, name), filepath.Join(staging, name)); err != nil {
			return err
		}
	}
	return rotator.Publish()
}

// Close flushes and records every table's body size (as Snapshot does),
// unmaps and closes every table file, removes the flush-lock sentinel
// to mark a clean shutdown, and releases the process lock.
func (s *Store) Close() error {
	if err := s.Snapshot(); err != nil {
		return err
	}

	var first error
	for _, tf := range []tableFiles{s.headerFiles, s.txFiles, s.confirmedFiles} {
		if err := tf.unloadAndClose(); err != nil && first == nil {
			first = dberr.ErrCloseTable
		}
	}

	if err := s.flushLock.TryUnlock(); err != nil && first == nil {
		first = err
	}
	if err := s.processLock.Unlock(); err != nil && first == nil {
		first = err
	}
	return first
}
