// Package main provides a read-only inspector for the shelf database.
//
// Usage:
//
//	DB_PATH=~/shelfplay/db go run ./cmd/shelfinspect
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/shelfplayapp/shelfplay-server/internal/domain"
)

func main() {
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = os.ExpandEnv("$HOME/shelfplay/db")
	}

	opts := badger.DefaultOptions(dbPath).
		WithReadOnly(true).
		WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	fmt.Println("=== Shelf Database Inspection ===")
	fmt.Println()

	hidden := map[string]bool{}
	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{Prefix: []byte("hidden:")})
		defer it.Close()
		for it.Seek([]byte("hidden:")); it.ValidForPrefix([]byte("hidden:")); it.Next() {
			id := strings.TrimPrefix(string(it.Item().Key()), "hidden:")
			hidden[id] = true
		}
		return nil
	})
	if err != nil {
		log.Fatalf("Failed to scan hidden markers: %v", err)
	}

	bookCount := 0
	hiddenCount := 0
	totalChapters := 0

	err = db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte("book:")
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek([]byte("book:")); it.ValidForPrefix([]byte("book:")); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var book domain.Book
				if err := json.Unmarshal(val, &book); err != nil {
					return err
				}

				bookCount++
				totalChapters += len(book.Chapters)

				state := "active"
				if hidden[book.ID] {
					state = "hidden"
					hiddenCount++
				}

				fmt.Printf("Book: %s\n", book.Title)
				fmt.Printf("  ID: %s\n", book.ID)
				fmt.Printf("  Author: %s\n", book.Author)
				fmt.Printf("  State: %s\n", state)
				fmt.Printf("  Chapters: %d\n", len(book.Chapters))
				if !book.Settings.LastPlayedAt.IsZero() {
					fmt.Printf("  Last played: %s\n", book.Settings.LastPlayedAt)
				}
				for i, ch := range book.Chapters {
					if i >= 5 {
						fmt.Printf("    ... and %d more chapters\n", len(book.Chapters)-5)
						break
					}
					fmt.Printf("    [%d] %s (%s)\n", i, ch.Title, ch.File)
				}
				fmt.Println()
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Fatalf("Failed to scan books: %v", err)
	}

	fmt.Println("=== Summary ===")
	fmt.Printf("Books: %d (%d hidden)\n", bookCount, hiddenCount)
	fmt.Printf("Chapters: %d\n", totalChapters)
	if orphanMarkers := len(hidden) - hiddenCount; orphanMarkers > 0 {
		fmt.Printf("WARNING: %d hidden markers without a book record\n", orphanMarkers)
	}
}
