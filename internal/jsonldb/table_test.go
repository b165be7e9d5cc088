package jsonldb

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type testRow struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func (r *testRow) Clone() *testRow {
	c := *r
	return &c
}

func setupTable(t *testing.T) (*Table[*testRow], string) {
	path := filepath.Join(t.TempDir(), "sub", "test.jsonl")
	table, err := NewTable[*testRow](path)
	if err != nil {
		t.Fatalf("NewTable failed: %v", err)
	}
	return table, path
}

func TestTable(t *testing.T) {
	table, path := setupTable(t)

	if table.Len() != 0 {
		t.Fatalf("new table has %d rows", table.Len())
	}

	for _, r := range []*testRow{{ID: 1, Name: "One"}, {ID: 2, Name: "Two"}} {
		if err := table.Append(r); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}
	if table.Len() != 2 {
		t.Errorf("expected 2 rows, got %d", table.Len())
	}

	// Re-load.
	table2, err := NewTable[*testRow](path)
	if err != nil {
		t.Fatalf("re-loading table failed: %v", err)
	}
	var names []string
	var ids []int
	for r := range table2.All() {
		names = append(names, r.Name)
		ids = append(ids, r.ID)
	}
	if len(ids) != 2 || ids[0] != 1 || ids[1] != 2 {
		t.Errorf("re-loaded ids mismatch: %v", ids)
	}
	if len(names) != 2 || names[0] != "One" || names[1] != "Two" {
		t.Errorf("re-loaded data mismatch: %v", names)
	}
}

func TestTableAllReturnsClones(t *testing.T) {
	table, _ := setupTable(t)
	if err := table.Append(&testRow{ID: 1, Name: "One"}); err != nil {
		t.Fatal(err)
	}
	for r := range table.All() {
		r.Name = "changed"
	}
	for r := range table.All() {
		if r.Name != "One" {
			t.Errorf("row mutated through All(): %q", r.Name)
		}
	}
}

func TestTableAllEarlyBreak(t *testing.T) {
	table, _ := setupTable(t)
	for i := range 3 {
		if err := table.Append(&testRow{ID: i}); err != nil {
			t.Fatal(err)
		}
	}
	n := 0
	for range table.All() {
		n++
		break
	}
	if n != 1 {
		t.Errorf("iterated %d rows after break", n)
	}
}

func TestTableSkipsBlankLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.jsonl")
	if err := os.WriteFile(path, []byte("{\"id\":1}\n\n{\"id\":2}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	table, err := NewTable[*testRow](path)
	if err != nil {
		t.Fatal(err)
	}
	if table.Len() != 2 {
		t.Errorf("Len() = %d, want 2", table.Len())
	}
}

func TestTableMalformedLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.jsonl")
	if err := os.WriteFile(path, []byte("{\"id\":1}\nnot json\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := NewTable[*testRow](path)
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("NewTable error = %v, want ErrMalformed", err)
	}
}
