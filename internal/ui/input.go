package ui

import (
	"strconv"
	"strings"

	apperrors "github.com/maruel/bookshelf/internal/errors"
	"github.com/maruel/bookshelf/internal/models"
)

// ValidateBook rejects a title or author that is empty once trimmed.
func ValidateBook(title, author string) error {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(author) == "" {
		return apperrors.InvalidInput("fill in title and author")
	}
	return nil
}

// ParseKind converts the --kind flag value.
func ParseKind(s string) (models.Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "physical", "físico", "fisico":
		return models.KindPhysical, nil
	case "digital":
		return models.KindDigital, nil
	default:
		return models.KindUnspecified, apperrors.InvalidInput("kind must be physical or digital").
			WithDetail("kind", s)
	}
}

// ParseSelection converts a 1-based position typed by the user into an
// index in a catalog of n books.
func ParseSelection(arg string, n int) (int, error) {
	pos, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil {
		return 0, apperrors.NoSelection("select a book in the list by its number").Wrap(err)
	}
	if pos < 1 || pos > n {
		return 0, apperrors.NoSelection("select a book in the list by its number").
			Wrap(apperrors.OutOfRange(pos, n))
	}
	return pos - 1, nil
}
