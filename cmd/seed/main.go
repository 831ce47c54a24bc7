// Package main seeds the shelf with sample books.
//
// It wires the real dependency graph (config, logger, store, repository)
// and pushes books through the repository so the seeded database matches
// what the cache would have written in production.
//
// Usage:
//
//	METADATA_PATH=~/shelfplay go run ./cmd/seed
//	METADATA_PATH=~/shelfplay go run ./cmd/seed -hide-last
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/samber/do/v2"

	"github.com/shelfplayapp/shelfplay-server/internal/di"
	"github.com/shelfplayapp/shelfplay-server/internal/domain"
	"github.com/shelfplayapp/shelfplay-server/internal/id"
	"github.com/shelfplayapp/shelfplay-server/internal/logger"
	"github.com/shelfplayapp/shelfplay-server/internal/shelf"
)

var hideLast = flag.Bool("hide-last", false, "Hide the last seeded book to exercise the orphaned partition")

func main() {
	injector := di.NewContainer()
	if err := di.Bootstrap(injector); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = injector.Shutdown() }()

	log := do.MustInvoke[*logger.Logger](injector)
	repo := do.MustInvoke[*shelf.Repository](injector)

	ctx := context.Background()
	books := sampleBooks()

	for _, book := range books {
		if err := repo.Add(ctx, book); err != nil {
			log.Fatal("Failed to seed book", "title", book.Title, "error", err)
		}
	}

	if *hideLast && len(books) > 0 {
		if err := repo.Hide(ctx, books[len(books)-1:]); err != nil {
			log.Fatal("Failed to hide book", "error", err)
		}
	}

	active, err := repo.Active(ctx)
	if err != nil {
		log.Fatal("Failed to read shelf", "error", err)
	}
	log.Info("Seeding complete", "seeded", len(books), "active", len(active))
}

func sampleBooks() []*domain.Book {
	titles := []struct {
		title  string
		author string
	}{
		{"The Long Way Home", "A. Mercer"},
		{"Station Eleven Nights", "E. St. John"},
		{"A Memory Called Murder", "R. Arkady"},
	}

	books := make([]*domain.Book, 0, len(titles))
	for _, t := range titles {
		book := &domain.Book{
			Title:    t.title,
			Author:   t.author,
			Settings: domain.BookSettings{Active: true},
		}
		book.ID = id.MustGenerate("book")
		book.InitTimestamps()

		for i := 1; i <= 3; i++ {
			book.Chapters = append(book.Chapters, domain.Chapter{
				ID:         id.MustGenerate("ch"),
				Title:      fmt.Sprintf("Chapter %d", i),
				File:       fmt.Sprintf("/library/%s/%02d.m4a", book.ID, i),
				DurationMs: int64(20+i) * time.Minute.Milliseconds(),
			})
		}
		books = append(books, book)
	}
	return books
}
