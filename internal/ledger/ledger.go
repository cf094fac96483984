// Package ledger records the click history of short codes.
//
// The ledger map is guarded by a reader/writer lock and every entry carries
// its own mutex, so clicks on distinct short codes are recorded in parallel
// while clicks on the same short code are appended one at a time.
package ledger

import (
	"errors"
	"fmt"
	"sync"

	"github.com/vadimbarashkov/shorturls/internal/entity"
)

var (
	// ErrEntryNotFound is returned when no entry exists for a short code.
	ErrEntryNotFound = errors.New("ledger entry not found")
	// ErrEntryExists is returned when an entry is initialized twice.
	ErrEntryExists = errors.New("ledger entry exists")
)

type entry struct {
	mu          sync.Mutex
	totalClicks int64
	clicks      []entity.Click
}

// Ledger is an in-memory click ledger keyed by short code.
type Ledger struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

// New creates an empty ledger.
func New() *Ledger {
	return &Ledger{
		entries: make(map[string]*entry),
	}
}

// InitEntry creates an empty entry for shortCode.
func (l *Ledger) InitEntry(shortCode string) error {
	const op = "ledger.Ledger.InitEntry"

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.entries[shortCode]; ok {
		return fmt.Errorf("%s: %w", op, ErrEntryExists)
	}

	l.entries[shortCode] = &entry{}

	return nil
}

// RecordClick appends click to the entry of shortCode and increments its total.
func (l *Ledger) RecordClick(shortCode string, click entity.Click) error {
	const op = "ledger.Ledger.RecordClick"

	l.mu.RLock()
	e, ok := l.entries[shortCode]
	l.mu.RUnlock()

	if !ok {
		return fmt.Errorf("%s: %w", op, ErrEntryNotFound)
	}

	e.mu.Lock()
	e.clicks = append(e.clicks, click)
	e.totalClicks++
	e.mu.Unlock()

	return nil
}

// Entry returns a snapshot of the entry for shortCode.
// The returned slice is a copy and is not affected by later clicks.
func (l *Ledger) Entry(shortCode string) (*entity.ClickLedgerEntry, error) {
	const op = "ledger.Ledger.Entry"

	l.mu.RLock()
	e, ok := l.entries[shortCode]
	l.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%s: %w", op, ErrEntryNotFound)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	clicks := make([]entity.Click, len(e.clicks))
	copy(clicks, e.clicks)

	return &entity.ClickLedgerEntry{
		TotalClicks: e.totalClicks,
		Clicks:      clicks,
	}, nil
}

// DeleteEntry removes the entry for shortCode.
func (l *Ledger) DeleteEntry(shortCode string) error {
	const op = "ledger.Ledger.DeleteEntry"

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.entries[shortCode]; !ok {
		return fmt.Errorf("%s: %w", op, ErrEntryNotFound)
	}

	delete(l.entries, shortCode)

	return nil
}

// Len returns the number of entries.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return len(l.entries)
}
