package domain

import (
	"strings"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// CompareFunc is a total order over books. The shelf keeps its visible
// partition sorted by one of these; Compare is the default.
type CompareFunc func(a, b *Book) int

// collator performs locale-aware, case-insensitive string comparison.
// A Collator is not safe for concurrent use, so it is guarded by collatorMu.
//
//nolint:gochecknoglobals // Shared collation state for the default sort order.
var (
	collatorMu sync.Mutex
	collator   = collate.New(language.Und, collate.Loose)
)

// Compare orders books by title (locale-aware, case-insensitive) with the
// ID as a stable tiebreak so equal titles still sort deterministically.
func Compare(a, b *Book) int {
	collatorMu.Lock()
	c := collator.CompareString(a.Title, b.Title)
	collatorMu.Unlock()
	if c != 0 {
		return c
	}
	return strings.Compare(a.ID, b.ID)
}

// CompareByLastPlayed orders books most-recently-played first, falling back
// to the title order for books that have never been played.
func CompareByLastPlayed(a, b *Book) int {
	at, bt := a.Settings.LastPlayedAt, b.Settings.LastPlayedAt
	switch {
	case at.After(bt):
		return -1
	case bt.After(at):
		return 1
	default:
		return Compare(a, b)
	}
}
