package storage

import (
	"iter"
	"time"

	"github.com/maruel/ksid"

	"github.com/maruel/bookshelf/internal/jsonldb"
	"github.com/maruel/bookshelf/internal/models"
)

// Op names a catalog mutation.
type Op string

const (
	opAdd    Op = "add"
	opRemove Op = "remove"
	opBorrow Op = "borrow"
	opReturn Op = "return"
)

// Event is one line of the activity journal.
type Event struct {
	ID     ksid.ID   `json:"id"`
	Time   time.Time `json:"time"`
	Op     Op        `json:"op"`
	Title  string    `json:"title"`
	Author string    `json:"author"`
}

// Clone returns a copy of the event.
func (e *Event) Clone() *Event {
	c := *e
	return &c
}

// Journal is an append-only log of catalog mutations, stored as JSONL.
//
// It is separate from the catalog file, which is always rewritten in full.
type Journal struct {
	table *jsonldb.Table[*Event]
	now   func() time.Time
}

// OpenJournal opens or creates the journal at path.
func OpenJournal(path string) (*Journal, error) {
	t, err := jsonldb.NewTable[*Event](path)
	if err != nil {
		return nil, err
	}
	return &Journal{table: t, now: time.Now}, nil
}

// Record appends an event for op applied to b.
func (j *Journal) Record(op Op, b *models.Book) error {
	return j.table.Append(&Event{
		ID:     ksid.NewID(),
		Time:   j.now().UTC().Truncate(time.Millisecond),
		Op:     op,
		Title:  b.Title(),
		Author: b.Author(),
	})
}

// Events iterates over all recorded events, oldest first.
func (j *Journal) Events() iter.Seq[*Event] {
	return j.table.All()
}

// Len returns the number of recorded events.
func (j *Journal) Len() int {
	return j.table.Len()
}
