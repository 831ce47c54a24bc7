// Package shelf maintains the authoritative in-memory view of the book
// collection. Books are split into an active partition (visible, sorted)
// and an orphaned partition (hidden but kept for restoration). Every
// mutation persists through the storage gateway and publishes a fresh
// snapshot of the active partition to subscribers.
package shelf

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/shelfplayapp/shelfplay-server/internal/clock"
	"github.com/shelfplayapp/shelfplay-server/internal/domain"
	"github.com/shelfplayapp/shelfplay-server/internal/pubsub"
)

var (
	// ErrBookNotFound is returned by lookups when no active book matches.
	ErrBookNotFound = errors.New("book not found on shelf")
	// ErrChapterNotFound is returned when no chapter matches a file path.
	ErrChapterNotFound = errors.New("chapter not found")
)

// Gateway is the durable storage contract the repository consumes.
// Implementations must make upsert/hide/reveal idempotent by ID, and
// upserting an active book must clear any durable hidden state for that
// ID so a re-added book stays active across reloads.
type Gateway interface {
	LoadAllBooks(ctx context.Context) ([]*domain.Book, error)
	UpsertBook(ctx context.Context, book *domain.Book) error
	HideBook(ctx context.Context, id string) error
	RevealBook(ctx context.Context, id string) error
}

// Repository is the synchronized two-partition book cache.
//
// One mutex guards both partitions; every operation that reads or writes
// them runs under it, so no caller ever observes a partially mutated cache.
// Snapshot delivery happens outside the mutex via the feed.
type Repository struct {
	gateway Gateway
	logger  *slog.Logger
	clock   clock.Clock
	compare domain.CompareFunc

	mu          sync.Mutex
	initialized bool
	active      []*domain.Book
	orphaned    []*domain.Book

	feed *pubsub.Feed[[]*domain.Book]
}

// Option configures a Repository.
type Option func(*Repository)

// WithLogger sets the logger. Without it the repository stays silent.
func WithLogger(l *slog.Logger) Option {
	return func(r *Repository) { r.logger = l }
}

// WithClock sets the time source used by MarkPlayedNow.
func WithClock(c clock.Clock) Option {
	return func(r *Repository) { r.clock = c }
}

// WithSortOrder replaces the active partition's sort order.
func WithSortOrder(cmp domain.CompareFunc) Option {
	return func(r *Repository) { r.compare = cmp }
}

// New creates a repository over the given gateway. The cache is populated
// lazily: the first operation triggers a full load.
func New(gateway Gateway, opts ...Option) *Repository {
	r := &Repository{
		gateway: gateway,
		clock:   clock.System{},
		compare: domain.Compare,
		feed:    pubsub.NewFeed(pubsub.WithClone(cloneSnapshot)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ensureInitLocked populates both partitions from the gateway on first use.
// Callers must hold r.mu. A load failure propagates and leaves the cache
// unpopulated; the next operation attempts the load again.
func (r *Repository) ensureInitLocked(ctx context.Context) error {
	if r.initialized {
		return nil
	}

	books, err := r.gateway.LoadAllBooks(ctx)
	if err != nil {
		return fmt.Errorf("initialize shelf: %w", err)
	}

	r.active = r.active[:0]
	r.orphaned = r.orphaned[:0]
	for _, book := range books {
		if book.Settings.Active {
			r.active = append(r.active, book)
		} else {
			r.orphaned = append(r.orphaned, book)
		}
	}
	slices.SortFunc(r.active, r.compare)
	r.initialized = true

	if r.logger != nil {
		r.logger.LogAttrs(ctx, slog.LevelInfo, "shelf initialized",
			slog.Int("active", len(r.active)),
			slog.Int("orphaned", len(r.orphaned)),
		)
	}

	r.publishLocked()
	return nil
}

// publishLocked pushes a snapshot of the active partition to the feed.
// Callers must hold r.mu so the snapshot matches committed cache state.
func (r *Repository) publishLocked() {
	r.feed.Publish(r.snapshotLocked())
}

// snapshotLocked deep-copies the active partition. Callers must hold r.mu.
func (r *Repository) snapshotLocked() []*domain.Book {
	return cloneSnapshot(r.active)
}

// cloneSnapshot deep-copies a snapshot. The feed applies it per delivery so
// no two subscribers ever share book pointers.
func cloneSnapshot(books []*domain.Book) []*domain.Book {
	copies := make([]*domain.Book, len(books))
	for i, book := range books {
		copies[i] = book.Clone()
	}
	return copies
}

// indexOfLocked returns the position of id in books, or -1.
func indexOfLocked(books []*domain.Book, id string) int {
	for i, book := range books {
		if book.ID == id {
			return i
		}
	}
	return -1
}

// Lookup Operations
//
// All lookups are served from the cache without storage I/O. Returned books
// and chapters are copies; mutating them never affects the cache.

// BookByID returns the active book with the given ID, or ErrBookNotFound.
func (r *Repository) BookByID(ctx context.Context, id string) (*domain.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.ensureInitLocked(ctx); err != nil {
		return nil, err
	}

	if i := indexOfLocked(r.active, id); i >= 0 {
		return r.active[i].Clone(), nil
	}
	return nil, ErrBookNotFound
}

// Active returns a sorted copy of the active partition.
func (r *Repository) Active(ctx context.Context) ([]*domain.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.ensureInitLocked(ctx); err != nil {
		return nil, err
	}
	return r.snapshotLocked(), nil
}

// Orphaned returns a copy of the orphaned partition. Order is unspecified.
func (r *Repository) Orphaned(ctx context.Context) ([]*domain.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.ensureInitLocked(ctx); err != nil {
		return nil, err
	}

	return cloneSnapshot(r.orphaned), nil
}

// ChapterByFile finds the chapter backed by the given file path, scanning
// active books first and orphaned books second. The active partition wins
// if the same file ever appeared in both.
func (r *Repository) ChapterByFile(ctx context.Context, file string) (*domain.Chapter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.ensureInitLocked(ctx); err != nil {
		return nil, err
	}

	for _, partition := range [][]*domain.Book{r.active, r.orphaned} {
		for _, book := range partition {
			if ch := book.ChapterByFile(file); ch != nil {
				c := *ch
				return &c, nil
			}
		}
	}
	return nil, ErrChapterNotFound
}
