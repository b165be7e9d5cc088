// Package models defines the core data structures used throughout the application.
package models

import (
	"strings"
)

// Kind tags a book as physical or digital.
type Kind int

const (
	// KindUnspecified is a plain book with no format recorded
	KindUnspecified Kind = iota
	// KindPhysical is a printed copy
	KindPhysical
	// KindDigital is an electronic copy
	KindDigital
)

// Labels as persisted in the catalog file.
const (
	labelUnspecified = "Livro"
	labelPhysical    = "Físico"
	labelDigital     = "Digital"
)

// ParseKind maps a persisted label or an English name to a Kind.
//
// Unknown values map to KindUnspecified.
func ParseKind(s string) Kind {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "físico", "fisico", "physical":
		return KindPhysical
	case "digital":
		return KindDigital
	default:
		return KindUnspecified
	}
}

// Label returns the value written to the catalog file.
func (k Kind) Label() string {
	switch k {
	case KindPhysical:
		return labelPhysical
	case KindDigital:
		return labelDigital
	default:
		return labelUnspecified
	}
}

// String returns the English name shown to the user.
func (k Kind) String() string {
	switch k {
	case KindPhysical:
		return "physical"
	case KindDigital:
		return "digital"
	default:
		return "book"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.Label()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	*k = ParseKind(string(b))
	return nil
}

// Status is the lending state of a book.
type Status string

const (
	// StatusAvailable means the book can be borrowed
	StatusAvailable Status = "available"
	// StatusBorrowed means the book is lent out
	StatusBorrowed Status = "borrowed"
)

// Entry is the key-value form of a book as stored in the catalog file.
type Entry struct {
	Title     string `json:"titulo" jsonschema:"description=Book title"`
	Author    string `json:"autor" jsonschema:"description=Book author"`
	Available bool   `json:"disponivel" jsonschema:"description=False while the book is borrowed"`
	Kind      Kind   `json:"tipo" jsonschema:"type=string,enum=Livro,enum=Físico,enum=Digital,description=Book format"`
}

// Display is the fixed-order tuple shown in a listing.
type Display struct {
	Title     string
	Author    string
	Available string // "yes" or "no"
	Kind      string
}

// Fields returns the tuple as a slice, in column order.
func (d Display) Fields() []string {
	return []string{d.Title, d.Author, d.Available, d.Kind}
}

// Outcome is the result of a borrow or return attempt.
type Outcome struct {
	OK      bool
	Message string
}
