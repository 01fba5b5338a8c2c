// Package history implements the session-history engine for one CLI's logs:
// project listing, session summaries, cache-backed detail parsing, search,
// and the trash lifecycle.
package history

import (
	"runtime"

	"github.com/charmbracelet/log"

	"github.com/sonnes/lekha/cache"
	"github.com/sonnes/lekha/layout"
	"github.com/sonnes/lekha/trash"
)

// DefaultRetentionDays is how long trashed sessions survive before the
// startup sweep removes them for good.
const DefaultRetentionDays = 30

// Options tune a Store. The zero value works.
type Options struct {
	// CacheCapacity bounds resident parsed sessions. 0 takes the cache default.
	CacheCapacity int
	// RetentionDays is the trash retention window. 0 takes DefaultRetentionDays.
	RetentionDays int
	// Workers caps parallel file scans. 0 sizes the pool from the CPU count.
	Workers int
}

// Store exposes the history operations over one CLI's logs.
type Store struct {
	Layout layout.Layout

	cache   *cache.Cache
	trash   *trash.Store
	workers int
}

// NewStore wires a store and runs the trash expiry sweep. The sweep happens
// once per process start, never on a background timer racing user actions.
func NewStore(l layout.Layout, opts Options) *Store {
	retention := opts.RetentionDays
	if retention <= 0 {
		retention = DefaultRetentionDays
	}

	s := &Store{
		Layout:  l,
		cache:   cache.New(opts.CacheCapacity),
		trash:   trash.New(l.TrashDir()),
		workers: opts.Workers,
	}

	if n, err := s.trash.Sweep(retention); err != nil {
		log.Warn("trash sweep failed", "cli", l.CLI, "error", err)
	} else if n > 0 {
		log.Debug("swept expired trash", "cli", l.CLI, "removed", n)
	}
	return s
}

func (s *Store) workerCount() int {
	if s.workers > 0 {
		return s.workers
	}
	n := runtime.NumCPU()
	if n > 8 {
		n = 8
	}
	return n
}

func logSkips(skipped []layout.Skip) {
	for _, sk := range skipped {
		log.Debug("skipped unreadable entry", "path", sk.Path, "error", sk.Err)
	}
}
