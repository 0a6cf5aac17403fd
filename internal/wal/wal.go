// Marquee - Movie Recommendation and Review Sentiment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package wal

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/marquee/internal/config"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/metrics"
)

// Entry is one outbox record.
type Entry struct {
	ID            string          `json:"id"`
	Payload       json.RawMessage `json:"payload"`
	CreatedAt     time.Time       `json:"created_at"`
	Attempts      int             `json:"attempts"`
	LastAttemptAt time.Time       `json:"last_attempt_at,omitempty"`
	LastError     string          `json:"last_error,omitempty"`
	Confirmed     bool            `json:"confirmed"`
	ConfirmedAt   *time.Time      `json:"confirmed_at,omitempty"`
}

// UnmarshalPayload decodes the stored event into v.
func (e *Entry) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// Stats is a point-in-time view of the outbox.
type Stats struct {
	PendingCount   int64     `json:"pending"`
	ConfirmedCount int64     `json:"confirmed"`
	TotalWrites    int64     `json:"total_writes"`
	TotalConfirms  int64     `json:"total_confirms"`
	TotalRetries   int64     `json:"total_retries"`
	LastCompaction time.Time `json:"last_compaction"`
	DBSizeBytes    int64     `json:"db_size_bytes"`
}

const (
	prefixPending   = "pending:"
	prefixConfirmed = "confirmed:"

	maxConflictRetries = 5
)

// BadgerWAL is the Badger-backed outbox. Safe for concurrent use.
type BadgerWAL struct {
	db  *badger.DB
	cfg config.WALConfig

	totalWrites   atomic.Int64
	totalConfirms atomic.Int64
	totalRetries  atomic.Int64

	mu             sync.RWMutex
	closed         bool
	lastCompaction time.Time

	// in-flight entry ids, see TryClaim
	claimed sync.Map

	now func() time.Time
}

// Open opens (or creates) the outbox at cfg.Path.
func Open(cfg *config.WALConfig) (*BadgerWAL, error) {
	if cfg == nil || cfg.Path == "" {
		return nil, ErrEmptyPath
	}

	opts := badger.DefaultOptions(cfg.Path)
	opts.SyncWrites = cfg.SyncWrites
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	w := &BadgerWAL{
		db:             db,
		cfg:            *cfg,
		lastCompaction: time.Now(),
		now:            time.Now,
	}

	logging.Info().
		Str("path", cfg.Path).
		Bool("sync_writes", cfg.SyncWrites).
		Dur("entry_ttl", cfg.EntryTTL).
		Msg("WAL opened")
	return w, nil
}

// Config returns the settings the outbox was opened with.
func (w *BadgerWAL) Config() config.WALConfig {
	return w.cfg
}

func (w *BadgerWAL) checkOpen() error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return ErrWALClosed
	}
	return nil
}

// Write persists event as a new pending entry and returns its id. Ids are
// UUIDv7, so key order matches write order.
func (w *BadgerWAL) Write(ctx context.Context, event interface{}) (string, error) {
	if err := w.checkOpen(); err != nil {
		return "", err
	}
	if event == nil {
		return "", ErrNilEvent
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return "", fmt.Errorf("marshal event: %w", err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate entry id: %w", err)
	}

	entry := &Entry{
		ID:        id.String(),
		Payload:   payload,
		CreatedAt: w.now().UTC(),
	}
	if err := w.put(prefixPending, entry); err != nil {
		return "", err
	}

	w.totalWrites.Add(1)
	metrics.WALOperations.WithLabelValues("write").Inc()
	metrics.WALPending.Inc()
	return entry.ID, nil
}

// Confirm moves a pending entry to the confirmed set.
func (w *BadgerWAL) Confirm(ctx context.Context, entryID string) error {
	if err := w.checkOpen(); err != nil {
		return err
	}
	if entryID == "" {
		return ErrEmptyEntryID
	}

	pendingKey := []byte(prefixPending + entryID)
	err := w.update(func(txn *badger.Txn) error {
		entry, err := getEntry(txn, pendingKey)
		if err != nil {
			return err
		}

		now := w.now().UTC()
		entry.Confirmed = true
		entry.ConfirmedAt = &now

		if err := w.set(txn, prefixConfirmed, entry); err != nil {
			return err
		}
		if err := txn.Delete(pendingKey); err != nil {
			return fmt.Errorf("delete pending entry: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	w.totalConfirms.Add(1)
	metrics.WALOperations.WithLabelValues("confirm").Inc()
	metrics.WALPending.Dec()
	return nil
}

// Get returns the entry with the given id, pending or confirmed.
func (w *BadgerWAL) Get(ctx context.Context, entryID string) (*Entry, error) {
	if err := w.checkOpen(); err != nil {
		return nil, err
	}
	if entryID == "" {
		return nil, ErrEmptyEntryID
	}

	var entry *Entry
	err := w.db.View(func(txn *badger.Txn) error {
		var err error
		entry, err = getEntry(txn, []byte(prefixPending+entryID))
		if errors.Is(err, ErrEntryNotFound) {
			entry, err = getEntry(txn, []byte(prefixConfirmed+entryID))
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// Pending returns up to limit unconfirmed entries, oldest first. A limit of
// zero or less returns all of them.
func (w *BadgerWAL) Pending(ctx context.Context, limit int) ([]*Entry, error) {
	if err := w.checkOpen(); err != nil {
		return nil, err
	}

	entries := make([]*Entry, 0)
	err := w.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(prefixPending)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			item := it.Item()
			var entry Entry
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &entry)
			}); err != nil {
				logging.Warn().Err(err).Str("key", string(item.Key())).Msg("WAL skipping malformed entry")
				continue
			}

			entries = append(entries, &entry)
			if limit > 0 && len(entries) >= limit {
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("iterate pending entries: %w", err)
	}
	return entries, nil
}

// UpdateAttempt records a delivery attempt on a pending entry. lastError is
// empty when the publish itself succeeded.
func (w *BadgerWAL) UpdateAttempt(ctx context.Context, entryID, lastError string) error {
	if err := w.checkOpen(); err != nil {
		return err
	}
	if entryID == "" {
		return ErrEmptyEntryID
	}

	key := []byte(prefixPending + entryID)
	err := w.update(func(txn *badger.Txn) error {
		entry, err := getEntry(txn, key)
		if err != nil {
			return err
		}
		entry.Attempts++
		entry.LastAttemptAt = w.now().UTC()
		entry.LastError = lastError
		return w.set(txn, prefixPending, entry)
	})
	if err != nil {
		return err
	}

	w.totalRetries.Add(1)
	return nil
}

// Delete removes an entry whichever set it is in.
func (w *BadgerWAL) Delete(ctx context.Context, entryID string) error {
	if err := w.checkOpen(); err != nil {
		return err
	}
	if entryID == "" {
		return ErrEmptyEntryID
	}

	wasPending := false
	err := w.update(func(txn *badger.Txn) error {
		pendingKey := []byte(prefixPending + entryID)
		if _, err := txn.Get(pendingKey); err == nil {
			wasPending = true
			return txn.Delete(pendingKey)
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("get pending entry: %w", err)
		}

		confirmedKey := []byte(prefixConfirmed + entryID)
		if _, err := txn.Get(confirmedKey); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrEntryNotFound
			}
			return fmt.Errorf("get confirmed entry: %w", err)
		}
		return txn.Delete(confirmedKey)
	})
	if err != nil {
		return err
	}
	if wasPending {
		metrics.WALPending.Dec()
	}
	return nil
}

// Compact deletes confirmed entries and runs Badger value log GC once.
// It returns the number of entries removed.
func (w *BadgerWAL) Compact(ctx context.Context) (int, error) {
	if err := w.checkOpen(); err != nil {
		return 0, err
	}

	var keys [][]byte
	err := w.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(prefixConfirmed)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("scan confirmed entries: %w", err)
	}

	wb := w.db.NewWriteBatch()
	defer wb.Cancel()
	for _, k := range keys {
		if err := wb.Delete(k); err != nil {
			return 0, fmt.Errorf("delete confirmed entry: %w", err)
		}
	}
	if err := wb.Flush(); err != nil {
		return 0, fmt.Errorf("flush compaction: %w", err)
	}

	// ErrNoRewrite just means there was nothing worth collecting.
	if err := w.db.RunValueLogGC(0.5); err != nil && !errors.Is(err, badger.ErrNoRewrite) {
		logging.Debug().Err(err).Msg("WAL value log GC skipped")
	}

	w.mu.Lock()
	w.lastCompaction = w.now()
	w.mu.Unlock()

	if len(keys) > 0 {
		metrics.WALOperations.WithLabelValues("compact").Add(float64(len(keys)))
	}
	return len(keys), nil
}

// Stats counts entries in both sets.
func (w *BadgerWAL) Stats() Stats {
	w.mu.RLock()
	closed := w.closed
	lastCompaction := w.lastCompaction
	w.mu.RUnlock()

	if closed {
		return Stats{}
	}

	var pending, confirmed int64
	if err := w.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		p := []byte(prefixPending)
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			pending++
		}
		c := []byte(prefixConfirmed)
		for it.Seek(c); it.ValidForPrefix(c); it.Next() {
			confirmed++
		}
		return nil
	}); err != nil {
		logging.Warn().Err(err).Msg("WAL stats failed to count entries")
	}

	lsm, vlog := w.db.Size()
	metrics.WALPending.Set(float64(pending))

	return Stats{
		PendingCount:   pending,
		ConfirmedCount: confirmed,
		TotalWrites:    w.totalWrites.Load(),
		TotalConfirms:  w.totalConfirms.Load(),
		TotalRetries:   w.totalRetries.Load(),
		LastCompaction: lastCompaction,
		DBSizeBytes:    lsm + vlog,
	}
}

// TryClaim marks entryID as in flight. It returns false when another caller
// already holds it. Claims are process-local and released with Release.
func (w *BadgerWAL) TryClaim(entryID string) bool {
	_, loaded := w.claimed.LoadOrStore(entryID, struct{}{})
	return !loaded
}

// Release drops a claim taken with TryClaim.
func (w *BadgerWAL) Release(entryID string) {
	w.claimed.Delete(entryID)
}

// Close flushes and closes Badger. Further calls return ErrWALClosed.
func (w *BadgerWAL) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	if err := w.db.Close(); err != nil {
		return fmt.Errorf("close BadgerDB: %w", err)
	}
	logging.Info().Msg("WAL closed")
	return nil
}

func (w *BadgerWAL) put(prefix string, entry *Entry) error {
	err := w.update(func(txn *badger.Txn) error {
		return w.set(txn, prefix, entry)
	})
	if err != nil {
		return fmt.Errorf("write to BadgerDB: %w", err)
	}
	return nil
}

func (w *BadgerWAL) set(txn *badger.Txn, prefix string, entry *Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}
	e := badger.NewEntry([]byte(prefix+entry.ID), data)
	if w.cfg.EntryTTL > 0 {
		e = e.WithTTL(w.cfg.EntryTTL)
	}
	return txn.SetEntry(e)
}

// update runs fn in a read-write transaction, retrying on write conflicts
// between a confirm and a concurrent replay attempt.
func (w *BadgerWAL) update(fn func(txn *badger.Txn) error) error {
	var err error
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		err = w.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return err
}

func getEntry(txn *badger.Txn, key []byte) (*Entry, error) {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrEntryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get entry: %w", err)
	}

	var entry Entry
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &entry)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal entry: %w", err)
	}
	return &entry, nil
}
