package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"github.com/shelfplayapp/shelfplay-server/internal/domain"
)

const (
	bookPrefix   = "book:"
	hiddenPrefix = "hidden:"
)

// ErrBookNotFound is returned when a book ID has no record.
var ErrBookNotFound = errors.New("book not found")

// Book Operations

// LoadAllBooks returns every persisted book. Hidden markers override the
// stored settings, so a returned book's Settings.Active always reflects
// durable hidden state.
func (s *Store) LoadAllBooks(ctx context.Context) ([]*domain.Book, error) {
	hidden, err := s.HiddenBookIDs(ctx)
	if err != nil {
		return nil, err
	}

	var books []*domain.Book
	prefix := []byte(bookPrefix)

	err = s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()

			err := item.Value(func(val []byte) error {
				var book domain.Book
				if err := json.Unmarshal(val, &book); err != nil {
					return err
				}
				book.Settings.Active = !hidden[book.ID]
				books = append(books, &book)
				return nil
			})
			if err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load all books: %w", err)
	}

	if s.logger != nil {
		s.logger.LogAttrs(ctx, slog.LevelDebug, "books loaded",
			slog.Int("count", len(books)),
			slog.Int("hidden", len(hidden)),
		)
	}
	return books, nil
}

// UpsertBook writes the book record, creating or replacing it by ID.
// Writing an active book also deletes its hidden marker in the same
// transaction, so re-adding a hidden book durably restores it.
func (s *Store) UpsertBook(ctx context.Context, book *domain.Book) error {
	data, err := json.Marshal(book)
	if err != nil {
		return fmt.Errorf("upsert book: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(bookPrefix+book.ID), data); err != nil {
			return err
		}
		// An active record and a hidden marker must never coexist.
		if book.Settings.Active {
			return txn.Delete([]byte(hiddenPrefix + book.ID))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("upsert book: %w", err)
	}

	if s.logger != nil {
		s.logger.LogAttrs(ctx, slog.LevelDebug, "book upserted",
			slog.String("id", book.ID),
			slog.String("title", book.Title),
		)
	}
	return nil
}

// GetBook retrieves a book by ID. The hidden marker is applied the same way
// LoadAllBooks applies it.
func (s *Store) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	key := []byte(bookPrefix + id)

	var book domain.Book
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &book)
		})
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("get book: %w", err)
	}

	isHidden, err := s.exists([]byte(hiddenPrefix + id))
	if err != nil {
		return nil, fmt.Errorf("get book hidden marker: %w", err)
	}
	book.Settings.Active = !isHidden

	return &book, nil
}

// HideBook marks a book hidden in durable storage. Idempotent.
func (s *Store) HideBook(ctx context.Context, id string) error {
	key := []byte(hiddenPrefix + id)

	if err := s.set(key, true); err != nil {
		return fmt.Errorf("hide book: %w", err)
	}

	if s.logger != nil {
		s.logger.Debug("book hidden", "id", id)
	}
	return nil
}

// RevealBook removes a book's hidden marker in durable storage. Idempotent.
func (s *Store) RevealBook(ctx context.Context, id string) error {
	key := []byte(hiddenPrefix + id)

	if err := s.delete(key); err != nil {
		return fmt.Errorf("reveal book: %w", err)
	}

	if s.logger != nil {
		s.logger.Debug("book revealed", "id", id)
	}
	return nil
}

// HiddenBookIDs returns the set of book IDs carrying a hidden marker.
func (s *Store) HiddenBookIDs(ctx context.Context) (map[string]bool, error) {
	hidden := make(map[string]bool)
	prefix := []byte(hiddenPrefix)

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false // Only keys are needed

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := string(it.Item().Key())
			hidden[key[len(hiddenPrefix):]] = true
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list hidden book ids: %w", err)
	}

	return hidden, nil
}
