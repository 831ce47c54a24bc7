package shelf

import (
	"context"

	"github.com/shelfplayapp/shelfplay-server/internal/domain"
	"github.com/shelfplayapp/shelfplay-server/internal/pubsub"
)

// Subscribe returns a subscription that immediately yields the latest
// active-shelf snapshot and then one snapshot per committed mutation, in
// commit order. Every delivered snapshot is a deep copy owned by the
// subscriber; mutating it affects neither the cache nor other subscribers.
// Callers must Cancel the subscription when done.
func (r *Repository) Subscribe(ctx context.Context) (*pubsub.Subscription[[]*domain.Book], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.ensureInitLocked(ctx); err != nil {
		return nil, err
	}
	return r.feed.Subscribe(), nil
}

// ObserveBook derives a per-book stream from the snapshot feed: each
// snapshot maps to the matching active book, or nil once the book leaves
// the active shelf. Canceling the result cancels the underlying
// subscription.
func (r *Repository) ObserveBook(ctx context.Context, id string) (*pubsub.Subscription[*domain.Book], error) {
	sub, err := r.Subscribe(ctx)
	if err != nil {
		return nil, err
	}

	return pubsub.Map(sub, func(books []*domain.Book) *domain.Book {
		for _, book := range books {
			if book.ID == id {
				return book
			}
		}
		return nil
	}), nil
}
