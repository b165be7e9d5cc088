package models

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Book is a single catalog entry.
//
// Title, author and kind are fixed at construction. Availability only changes
// through Borrow and Return.
type Book struct {
	title     string
	author    string
	available bool
	kind      Kind
}

// BookOption configures NewBook.
type BookOption func(*Book)

// WithAvailable sets the initial availability, e.g. when restoring from disk.
func WithAvailable(available bool) BookOption {
	return func(b *Book) { b.available = available }
}

// WithKind sets the kind tag.
func WithKind(k Kind) BookOption {
	return func(b *Book) { b.kind = k }
}

// NewBook creates an available book of unspecified kind.
//
// Title and author are trimmed and title-cased. Empty values are accepted;
// rejecting them is up to the caller.
func NewBook(title, author string, opts ...BookOption) *Book {
	b := &Book{
		title:     Normalize(title),
		author:    Normalize(author),
		available: true,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// FromEntry builds a book from its stored form.
func FromEntry(e Entry) *Book {
	return NewBook(e.Title, e.Author, WithAvailable(e.Available), WithKind(e.Kind))
}

// Normalize trims s and converts it to title case.
func Normalize(s string) string {
	// cases.Caser keeps state, so a new one is needed per call.
	return cases.Title(language.Und).String(strings.TrimSpace(s))
}

// Title returns the normalized title.
func (b *Book) Title() string { return b.title }

// Author returns the normalized author.
func (b *Book) Author() string { return b.author }

// Available reports whether the book can be borrowed.
func (b *Book) Available() bool { return b.available }

// Kind returns the kind tag.
func (b *Book) Kind() Kind { return b.kind }

// Status returns the lending state.
func (b *Book) Status() Status {
	if b.available {
		return StatusAvailable
	}
	return StatusBorrowed
}

// Borrow marks the book as lent out.
func (b *Book) Borrow() Outcome {
	if !b.available {
		return Outcome{Message: fmt.Sprintf("book '%s' already borrowed", b.title)}
	}
	b.available = false
	return Outcome{OK: true, Message: fmt.Sprintf("book '%s' borrowed successfully", b.title)}
}

// Return marks the book as available again.
func (b *Book) Return() Outcome {
	if b.available {
		return Outcome{Message: fmt.Sprintf("book '%s' was already available", b.title)}
	}
	b.available = true
	return Outcome{OK: true, Message: fmt.Sprintf("book '%s' returned successfully", b.title)}
}

// Entry returns the key-value form written to the catalog file.
func (b *Book) Entry() Entry {
	return Entry{
		Title:     b.title,
		Author:    b.author,
		Available: b.available,
		Kind:      b.kind,
	}
}

// Display returns the listing tuple.
func (b *Book) Display() Display {
	avail := "no"
	if b.available {
		avail = "yes"
	}
	return Display{
		Title:     b.title,
		Author:    b.author,
		Available: avail,
		Kind:      b.kind.String(),
	}
}

// Clone returns a copy of the book.
func (b *Book) Clone() *Book {
	c := *b
	return &c
}

func (b *Book) String() string {
	return fmt.Sprintf("%s - %s (%s)", b.title, b.author, b.Status())
}
