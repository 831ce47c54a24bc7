// Package domain contains the core business entities for the Shelfplay audiobook shelf.
package domain

import "time"

// Book represents an audiobook on the shelf.
type Book struct {
	Syncable
	Title    string       `json:"title"`
	Author   string       `json:"author,omitempty"`
	Settings BookSettings `json:"settings"`
	Chapters []Chapter    `json:"chapters,omitempty"`
}

// BookSettings holds the mutable per-book state that playback touches.
// Active controls whether the book appears on the visible shelf.
type BookSettings struct {
	LastPlayedAt     time.Time `json:"last_played_at"`
	CurrentChapterID string    `json:"current_chapter_id,omitempty"`
	PositionMs       int64     `json:"position_ms,omitempty"`
	Active           bool      `json:"active"`
}

// Chapter represents a single audio file within a book.
// File is the absolute path on disk and is used for reverse lookups.
type Chapter struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	File       string `json:"file"`
	DurationMs int64  `json:"duration_ms"`
}

// ChapterByFile finds the chapter backed by the given file path.
// Returns nil if no chapter matches.
func (b *Book) ChapterByFile(file string) *Chapter {
	for i := range b.Chapters {
		if b.Chapters[i].File == file {
			return &b.Chapters[i]
		}
	}
	return nil
}

// Clone returns a deep copy of the book.
// Mutating the copy (including its chapters) never affects the original.
func (b *Book) Clone() *Book {
	c := *b
	if b.Chapters != nil {
		c.Chapters = make([]Chapter, len(b.Chapters))
		copy(c.Chapters, b.Chapters)
	}
	return &c
}

// Equal reports whether two books carry the same value, timestamps included.
// Used by the repository to short-circuit no-op updates.
func (b *Book) Equal(other *Book) bool {
	if other == nil {
		return false
	}
	if b.ID != other.ID ||
		b.Title != other.Title ||
		b.Author != other.Author ||
		!b.CreatedAt.Equal(other.CreatedAt) ||
		!b.UpdatedAt.Equal(other.UpdatedAt) {
		return false
	}
	if !b.Settings.Equal(other.Settings) {
		return false
	}
	if len(b.Chapters) != len(other.Chapters) {
		return false
	}
	for i := range b.Chapters {
		if b.Chapters[i] != other.Chapters[i] {
			return false
		}
	}
	return true
}

// Equal reports whether two settings values are identical.
func (s BookSettings) Equal(other BookSettings) bool {
	return s.Active == other.Active &&
		s.CurrentChapterID == other.CurrentChapterID &&
		s.PositionMs == other.PositionMs &&
		s.LastPlayedAt.Equal(other.LastPlayedAt)
}
