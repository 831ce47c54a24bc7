package shelf

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/shelfplayapp/shelfplay-server/internal/domain"
)

// Mutation Operations
//
// Every mutation runs under the repository mutex: persist through the
// gateway first, then apply the cache change, re-sort, and publish. A
// persistence failure therefore never leaves the cache ahead of storage,
// and no snapshot advertises unpersisted state.

// Add puts a book on the active shelf. If the ID is already cached the
// existing entry is replaced, matching the gateway's upsert semantics.
func (r *Repository) Add(ctx context.Context, book *domain.Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.ensureInitLocked(ctx); err != nil {
		return err
	}

	entry := book.Clone()
	entry.Settings.Active = true

	if err := r.gateway.UpsertBook(ctx, entry); err != nil {
		return fmt.Errorf("add book %s: %w", book.ID, err)
	}

	if i := indexOfLocked(r.orphaned, entry.ID); i >= 0 {
		r.orphaned = slices.Delete(r.orphaned, i, i+1)
	}
	if i := indexOfLocked(r.active, entry.ID); i >= 0 {
		r.active[i] = entry
	} else {
		r.active = append(r.active, entry)
	}
	slices.SortFunc(r.active, r.compare)

	if r.logger != nil {
		r.logger.LogAttrs(ctx, slog.LevelInfo, "book added",
			slog.String("id", entry.ID),
			slog.String("title", entry.Title),
			slog.Int("chapters", len(entry.Chapters)),
		)
	}

	r.publishLocked()
	return nil
}

// Update replaces an active book's cached value. An update carrying the
// identical value short-circuits without I/O or notification. An unknown
// ID is logged and ignored.
func (r *Repository) Update(ctx context.Context, book *domain.Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.ensureInitLocked(ctx); err != nil {
		return err
	}
	return r.updateLocked(ctx, book)
}

func (r *Repository) updateLocked(ctx context.Context, book *domain.Book) error {
	i := indexOfLocked(r.active, book.ID)
	if i < 0 {
		if r.logger != nil {
			r.logger.Warn("update for a book that is not on the shelf", "id", book.ID)
		}
		return nil
	}

	if r.active[i].Equal(book) {
		if r.logger != nil {
			r.logger.Debug("update skipped, value unchanged", "id", book.ID)
		}
		return nil
	}

	entry := book.Clone()
	if err := r.gateway.UpsertBook(ctx, entry); err != nil {
		return fmt.Errorf("update book %s: %w", book.ID, err)
	}

	r.active[i] = entry
	slices.SortFunc(r.active, r.compare)

	if r.logger != nil {
		r.logger.Debug("book updated", "id", entry.ID, "title", entry.Title)
	}

	r.publishLocked()
	return nil
}

// MarkPlayedNow stamps the book's LastPlayedAt with the current time and
// updates it. An unknown ID is a silent no-op.
func (r *Repository) MarkPlayedNow(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.ensureInitLocked(ctx); err != nil {
		return err
	}

	i := indexOfLocked(r.active, id)
	if i < 0 {
		return nil
	}

	now := r.clock.Now()
	played := r.active[i].Clone()
	played.Settings.LastPlayedAt = now
	played.UpdatedAt = now

	return r.updateLocked(ctx, played)
}

// Hide moves the given books (matched by ID) from the active partition to
// the orphaned partition. An empty list is a no-op.
//
// Hiding is best-effort per book: each one moves only after its hide marker
// persists. On the first persistence failure the remaining books stay
// active, books already moved stay hidden, and the error is returned. The
// published snapshot always reflects exactly the committed moves.
func (r *Repository) Hide(ctx context.Context, books []*domain.Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.ensureInitLocked(ctx); err != nil {
		return err
	}
	if len(books) == 0 {
		return nil
	}

	var moved int
	var failure error
	for _, book := range books {
		i := indexOfLocked(r.active, book.ID)
		if i < 0 {
			if r.logger != nil {
				r.logger.Debug("hide skipped, book not active", "id", book.ID)
			}
			continue
		}

		if err := r.gateway.HideBook(ctx, book.ID); err != nil {
			failure = fmt.Errorf("hide book %s: %w", book.ID, err)
			break
		}

		entry := r.active[i]
		entry.Settings.Active = false
		r.active = slices.Delete(r.active, i, i+1)
		r.orphaned = append(r.orphaned, entry)
		moved++
	}

	if moved > 0 {
		if r.logger != nil {
			r.logger.LogAttrs(ctx, slog.LevelInfo, "books hidden",
				slog.Int("count", moved),
				slog.Int("active", len(r.active)),
			)
		}
		r.publishLocked()
	}
	return failure
}

// Reveal restores a hidden book to the active partition. Revealing a book
// that is not orphaned is safe and leaves the cache unchanged.
func (r *Repository) Reveal(ctx context.Context, book *domain.Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.ensureInitLocked(ctx); err != nil {
		return err
	}

	if err := r.gateway.RevealBook(ctx, book.ID); err != nil {
		return fmt.Errorf("reveal book %s: %w", book.ID, err)
	}

	i := indexOfLocked(r.orphaned, book.ID)
	if i < 0 {
		return nil
	}

	entry := r.orphaned[i]
	entry.Settings.Active = true
	r.orphaned = slices.Delete(r.orphaned, i, i+1)
	r.active = append(r.active, entry)
	slices.SortFunc(r.active, r.compare)

	if r.logger != nil {
		r.logger.Info("book revealed", "id", entry.ID, "title", entry.Title)
	}

	r.publishLocked()
	return nil
}
