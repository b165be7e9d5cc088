package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	apperrors "github.com/maruel/bookshelf/internal/errors"
	"github.com/maruel/bookshelf/internal/models"
)

// recorder collects reported errors.
type recorder struct {
	errs []*apperrors.Error
}

func (r *recorder) Report(err *apperrors.Error) {
	r.errs = append(r.errs, err)
}

func (r *recorder) codes() []apperrors.ErrorCode {
	var out []apperrors.ErrorCode
	for _, e := range r.errs {
		out = append(out, e.Code())
	}
	return out
}

func entries(books []*models.Book) []models.Entry {
	out := make([]models.Entry, len(books))
	for i, b := range books {
		out[i] = b.Entry()
	}
	return out
}

func catalogPath(t *testing.T) string {
	return filepath.Join(t.TempDir(), DefaultPath)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestOpenMissingFile(t *testing.T) {
	rec := &recorder{}
	c := Open(catalogPath(t), WithReporter(rec))
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0", c.Len())
	}
	if len(rec.errs) != 0 {
		t.Errorf("unexpected reports: %v", rec.errs)
	}
	if _, err := os.Stat(c.Path()); !os.IsNotExist(err) {
		t.Errorf("Open created the file: %v", err)
	}
}

func TestOpenBlankFile(t *testing.T) {
	for _, content := range []string{"", "   \n\t"} {
		path := catalogPath(t)
		writeFile(t, path, content)
		rec := &recorder{}
		c := Open(path, WithReporter(rec))
		if c.Len() != 0 || len(rec.errs) != 0 {
			t.Errorf("content %q: Len() = %d, reports = %v", content, c.Len(), rec.errs)
		}
	}
}

func TestOpenMalformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"syntax error", `[{"titulo": "A"`},
		{"object", `{"titulo": "A"}`},
		{"element not an object", `[{"titulo": "A"}, 3]`},
		{"wrong type", `[{"titulo": "A", "disponivel": "sim"}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := catalogPath(t)
			writeFile(t, path, tt.content)
			rec := &recorder{}
			c := Open(path, WithReporter(rec))
			if c.Len() != 0 {
				t.Errorf("Len() = %d, want 0", c.Len())
			}
			if diff := cmp.Diff([]apperrors.ErrorCode{apperrors.ErrMalformedData}, rec.codes()); diff != "" {
				t.Errorf("reports mismatch (-want +got):\n%s", diff)
			}
			if rec.errs[0].Severity() != apperrors.SeverityWarning {
				t.Errorf("severity = %v, want warning", rec.errs[0].Severity())
			}
		})
	}
}

func TestOpenUnreadable(t *testing.T) {
	path := catalogPath(t)
	if err := os.Mkdir(path, 0o755); err != nil {
		t.Fatal(err)
	}
	rec := &recorder{}
	c := Open(path, WithReporter(rec))
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0", c.Len())
	}
	if diff := cmp.Diff([]apperrors.ErrorCode{apperrors.ErrStorageError}, rec.codes()); diff != "" {
		t.Errorf("reports mismatch (-want +got):\n%s", diff)
	}
	if rec.errs[0].Severity() != apperrors.SeverityError {
		t.Errorf("severity = %v, want error", rec.errs[0].Severity())
	}
}

func TestOpenDefaults(t *testing.T) {
	path := catalogPath(t)
	writeFile(t, path, `[
		{"titulo": "dom casmurro", "autor": "machado de assis", "disponivel": false, "tipo": "Físico"},
		{"autor": "anon"},
		{"titulo": "sem autor", "disponivel": null, "tipo": "Digital"},
		{},
		{"titulo": "x", "tipo": "Livro", "extra": 1}
	]`)
	rec := &recorder{}
	c := Open(path, WithReporter(rec))
	if len(rec.errs) != 0 {
		t.Fatalf("unexpected reports: %v", rec.errs)
	}
	want := []models.Entry{
		{Title: "Dom Casmurro", Author: "Machado De Assis", Available: false, Kind: models.KindPhysical},
		{Title: "Untitled", Author: "Anon", Available: true, Kind: models.KindUnspecified},
		{Title: "Sem Autor", Author: "Unknown Author", Available: true, Kind: models.KindDigital},
		{Title: "Untitled", Author: "Unknown Author", Available: true, Kind: models.KindUnspecified},
		{Title: "X", Author: "Unknown Author", Available: true, Kind: models.KindUnspecified},
	}
	if diff := cmp.Diff(want, entries(c.List())); diff != "" {
		t.Errorf("List() mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveFormat(t *testing.T) {
	path := catalogPath(t)
	c := Open(path)
	if err := c.Add(models.NewBook("memórias póstumas", "machado", models.WithKind(models.KindPhysical))); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := `[
    {
        "titulo": "Memórias Póstumas",
        "autor": "Machado",
        "disponivel": true,
        "tipo": "Físico"
    }
]
`
	if diff := cmp.Diff(want, string(data)); diff != "" {
		t.Errorf("file mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveEmpty(t *testing.T) {
	path := catalogPath(t)
	c := Open(path)
	if err := c.Save(); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "[]\n" {
		t.Errorf("empty catalog written as %q", data)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := catalogPath(t)
	c := Open(path)
	books := []*models.Book{
		models.NewBook("the hobbit", "j r r tolkien"),
		models.NewBook("the hobbit", "j r r tolkien"),
		models.NewBook("vidas secas", "graciliano ramos", models.WithKind(models.KindDigital)),
		models.NewBook("grande sertão: veredas", "guimarães rosa", models.WithKind(models.KindPhysical), models.WithAvailable(false)),
	}
	for _, b := range books {
		if err := c.Add(b); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}
	if err := c.Save(); err != nil {
		t.Fatal(err)
	}

	rec := &recorder{}
	c2 := Open(path, WithReporter(rec))
	if len(rec.errs) != 0 {
		t.Fatalf("unexpected reports: %v", rec.errs)
	}
	if diff := cmp.Diff(entries(c.List()), entries(c2.List())); diff != "" {
		t.Errorf("round-trip mismatch (-want +got):\n%s", diff)
	}
}

func TestHobbitScenario(t *testing.T) {
	path := catalogPath(t)
	c := Open(path)
	if c.Len() != 0 {
		t.Fatalf("Len() = %d", c.Len())
	}
	if err := c.Add(models.NewBook("the hobbit", "j r r tolkien")); err != nil {
		t.Fatal(err)
	}
	list := c.List()
	if len(list) != 1 || !list[0].Available() {
		t.Fatalf("List() = %v", list)
	}
	out, err := c.Borrow(0)
	if err != nil || !out.OK {
		t.Fatalf("Borrow(0) = %+v, %v", out, err)
	}
	if err := c.Save(); err != nil {
		t.Fatal(err)
	}

	list = Open(path).List()
	if len(list) != 1 {
		t.Fatalf("reloaded List() = %v", list)
	}
	if list[0].Available() || list[0].Title() != "The Hobbit" || list[0].Author() != "J R R Tolkien" {
		t.Errorf("reloaded book = %v", list[0])
	}
}

func TestRemove(t *testing.T) {
	path := catalogPath(t)
	c := Open(path)
	for _, title := range []string{"a", "b", "c"} {
		if err := c.Add(models.NewBook(title, "x")); err != nil {
			t.Fatal(err)
		}
	}
	b, ok, err := c.Remove(1)
	if err != nil || !ok || b.Title() != "B" {
		t.Fatalf("Remove(1) = %v, %v, %v", b, ok, err)
	}
	var titles []string
	for _, b := range Open(path).List() {
		titles = append(titles, b.Title())
	}
	if diff := cmp.Diff([]string{"A", "C"}, titles); diff != "" {
		t.Errorf("titles after Remove (-want +got):\n%s", diff)
	}
}

func TestRemoveOutOfRange(t *testing.T) {
	path := catalogPath(t)
	rec := &recorder{}
	c := Open(path, WithReporter(rec))
	for _, title := range []string{"a", "b"} {
		if err := c.Add(models.NewBook(title, "x")); err != nil {
			t.Fatal(err)
		}
	}
	before, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, i := range []int{5, 2, -1} {
		b, ok, err := c.Remove(i)
		if b != nil || ok || err != nil {
			t.Errorf("Remove(%d) = %v, %v, %v", i, b, ok, err)
		}
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
	if len(rec.errs) != 0 {
		t.Errorf("unexpected reports: %v", rec.errs)
	}
	after, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if !after.ModTime().Equal(before.ModTime()) {
		t.Error("no-op Remove rewrote the file")
	}
}

func TestFailedTransitionDoesNotSave(t *testing.T) {
	path := catalogPath(t)
	c := Open(path)
	if err := c.Add(models.NewBook("a", "b")); err != nil {
		t.Fatal(err)
	}
	// Replace the file behind the catalog's back; a failed transition must
	// not overwrite it.
	writeFile(t, path, "sentinel")

	out, err := c.Return(0)
	if err != nil || out.OK {
		t.Fatalf("Return(0) = %+v, %v", out, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "sentinel" {
		t.Errorf("failed Return rewrote the file: %q", data)
	}

	out, err = c.Borrow(0)
	if err != nil || !out.OK {
		t.Fatalf("Borrow(0) = %+v, %v", out, err)
	}
	if got := Open(path).List(); len(got) != 1 || got[0].Available() {
		t.Errorf("successful Borrow not saved: %v", got)
	}
}

func TestTransitionOutOfRange(t *testing.T) {
	c := Open(catalogPath(t))
	out, err := c.Borrow(0)
	if err != nil || out != (models.Outcome{}) {
		t.Errorf("Borrow(0) on empty catalog = %+v, %v", out, err)
	}
	out, err = c.Return(3)
	if err != nil || out != (models.Outcome{}) {
		t.Errorf("Return(3) on empty catalog = %+v, %v", out, err)
	}
}

func TestSaveFailureKeepsMemory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultPath)
	rec := &recorder{}
	c := Open(path, WithReporter(rec))
	// A directory at the target path makes the rename fail.
	if err := os.Mkdir(path, 0o755); err != nil {
		t.Fatal(err)
	}

	err := c.Add(models.NewBook("a", "b"))
	if err == nil {
		t.Fatal("Add succeeded although the file cannot be written")
	}
	e, ok := apperrors.As(err)
	if !ok || e.Code() != apperrors.ErrStorageError {
		t.Errorf("Add error = %v, want STORAGE_ERROR", err)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, the in-memory state must keep the book", c.Len())
	}
	if diff := cmp.Diff([]apperrors.ErrorCode{apperrors.ErrStorageError}, rec.codes()); diff != "" {
		t.Errorf("reports mismatch (-want +got):\n%s", diff)
	}
}

func TestListIsACopy(t *testing.T) {
	c := Open(catalogPath(t))
	if err := c.Add(models.NewBook("a", "b")); err != nil {
		t.Fatal(err)
	}
	c.List()[0].Borrow()
	b, ok := c.At(0)
	if !ok || !b.Available() {
		t.Error("mutating List() result changed the catalog")
	}
	if _, ok := c.At(1); ok {
		t.Error("At(1) on a single book catalog returned ok")
	}
}

func TestReload(t *testing.T) {
	path := catalogPath(t)
	c := Open(path)
	writeFile(t, path, `[{"titulo": "a"}, {"titulo": "b"}]`)
	c.Reload()
	if c.Len() != 2 {
		t.Errorf("Len() after Reload = %d, want 2", c.Len())
	}
}
