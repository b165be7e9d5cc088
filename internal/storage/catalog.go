// Package storage keeps the book catalog in memory and mirrors it to a JSON file.
package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sync"

	apperrors "github.com/maruel/bookshelf/internal/errors"
	"github.com/maruel/bookshelf/internal/jsonldb"
	"github.com/maruel/bookshelf/internal/models"
)

// DefaultPath is the catalog file used when none is configured.
const DefaultPath = "biblioteca.json"

// Values used for fields missing from a stored entry.
const (
	DefaultTitle  = "untitled"
	DefaultAuthor = "unknown author"
)

// fileEntry is a stored entry as read back. Every field may be absent.
type fileEntry struct {
	Title     *string `json:"titulo"`
	Author    *string `json:"autor"`
	Available *bool   `json:"disponivel"`
	Kind      *string `json:"tipo"`
}

func (e *fileEntry) book() *models.Book {
	title, author, available, kind := DefaultTitle, DefaultAuthor, true, models.KindUnspecified
	if e.Title != nil {
		title = *e.Title
	}
	if e.Author != nil {
		author = *e.Author
	}
	if e.Available != nil {
		available = *e.Available
	}
	if e.Kind != nil {
		kind = models.ParseKind(*e.Kind)
	}
	return models.NewBook(title, author, models.WithAvailable(available), models.WithKind(kind))
}

// Catalog is the ordered list of books backed by a JSON file.
//
// Every mutation rewrites the whole file. A failed write is reported and
// returned but the in-memory list stays authoritative.
type Catalog struct {
	in  *jsonldb.Document[fileEntry]
	out *jsonldb.Document[models.Entry]

	reporter Reporter
	history  *History
	journal  *Journal

	mu    sync.RWMutex
	books []*models.Book
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithReporter sets where load and save failures are sent.
func WithReporter(r Reporter) Option {
	return func(c *Catalog) { c.reporter = r }
}

// WithHistory commits the catalog file after each successful save.
func WithHistory(h *History) Option {
	return func(c *Catalog) { c.history = h }
}

// WithJournal records each mutation in an activity journal.
func WithJournal(j *Journal) Option {
	return func(c *Catalog) { c.journal = j }
}

// Open loads the catalog stored at path.
//
// Open never fails: a missing or blank file is an empty catalog, and
// unreadable or malformed content is reported and also yields an empty
// catalog.
func Open(path string, opts ...Option) *Catalog {
	c := &Catalog{
		in:       jsonldb.NewDocument[fileEntry](path),
		out:      jsonldb.NewDocument[models.Entry](path),
		reporter: LogReporter{},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.Reload()
	return c
}

// Reload replaces the in-memory list with the file content.
func (c *Catalog) Reload() {
	books := c.load()
	c.mu.Lock()
	c.books = books
	c.mu.Unlock()
}

func (c *Catalog) load() []*models.Book {
	entries, err := c.in.Read()
	if err != nil {
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case errors.Is(err, jsonldb.ErrMalformed):
			c.report(apperrors.Malformed(c.Path(), err))
		default:
			c.report(apperrors.Storage("Error loading", c.Path(), err))
		}
		return []*models.Book{}
	}
	books := make([]*models.Book, 0, len(entries))
	for i := range entries {
		books = append(books, entries[i].book())
	}
	slog.Debug("Catalog loaded", "path", c.Path(), "books", len(books))
	return books
}

// Path returns the catalog file path.
func (c *Catalog) Path() string {
	return c.out.Path()
}

// Len returns the number of books.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.books)
}

// List returns copies of the books in insertion order.
func (c *Catalog) List() []*models.Book {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*models.Book, len(c.books))
	for i, b := range c.books {
		out[i] = b.Clone()
	}
	return out
}

// At returns a copy of the book at index, or false if out of range.
func (c *Catalog) At(index int) (*models.Book, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if index < 0 || index >= len(c.books) {
		return nil, false
	}
	return c.books[index].Clone(), true
}

// Add appends b and saves the catalog.
func (c *Catalog) Add(b *models.Book) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.books = append(c.books, b)
	return c.commit(opAdd, b)
}

// Remove deletes the book at index and saves the catalog.
//
// An out of range index is a no-op: it returns false and a nil error.
func (c *Catalog) Remove(index int) (*models.Book, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if index < 0 || index >= len(c.books) {
		return nil, false, nil
	}
	b := c.books[index]
	c.books = append(c.books[:index], c.books[index+1:]...)
	return b, true, c.commit(opRemove, b)
}

// Borrow lends the book at index. The catalog is saved only when the
// transition happened. An out of range index returns a zero Outcome.
func (c *Catalog) Borrow(index int) (models.Outcome, error) {
	return c.transition(index, opBorrow, (*models.Book).Borrow)
}

// Return takes back the book at index. The catalog is saved only when the
// transition happened. An out of range index returns a zero Outcome.
func (c *Catalog) Return(index int) (models.Outcome, error) {
	return c.transition(index, opReturn, (*models.Book).Return)
}

func (c *Catalog) transition(index int, op Op, fn func(*models.Book) models.Outcome) (models.Outcome, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if index < 0 || index >= len(c.books) {
		return models.Outcome{}, nil
	}
	b := c.books[index]
	out := fn(b)
	if !out.OK {
		return out, nil
	}
	return out, c.commit(op, b)
}

// Save writes the whole catalog to disk.
func (c *Catalog) Save() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.save()
}

// save must be called with c.mu held.
func (c *Catalog) save() error {
	entries := make([]models.Entry, len(c.books))
	for i, b := range c.books {
		entries[i] = b.Entry()
	}
	if err := c.out.Write(entries); err != nil {
		e := apperrors.Storage("Error saving", c.Path(), err)
		c.report(e)
		return e
	}
	return nil
}

// commit saves after a mutation then updates the history and the journal.
// It must be called with c.mu held.
func (c *Catalog) commit(op Op, b *models.Book) error {
	if err := c.save(); err != nil {
		return err
	}
	if c.history != nil {
		msg := fmt.Sprintf("%s: %s", op, b.Title())
		if err := c.history.Commit(c.Path(), msg); err != nil {
			c.report(apperrors.New(apperrors.ErrStorageError, apperrors.SeverityWarning,
				"History", "could not record the change in history").Wrap(err))
		}
	}
	if c.journal != nil {
		if err := c.journal.Record(op, b); err != nil {
			c.report(apperrors.New(apperrors.ErrStorageError, apperrors.SeverityWarning,
				"Journal", "could not record the change in the journal").Wrap(err))
		}
	}
	return nil
}

func (c *Catalog) report(err *apperrors.Error) {
	if c.reporter != nil {
		c.reporter.Report(err)
	}
}
