package ui

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/maruel/bookshelf/internal/models"
)

// Columns are the listing headers, in display order.
var Columns = []string{"#", "Title", "Author", "Available", "Kind"}

// RenderTable writes books as a table. Positions are 1-based, matching what
// the borrow, return and remove commands accept.
func RenderTable(w io.Writer, books []*models.Book) error {
	r := lipgloss.NewRenderer(w)
	st := newStyles(r)
	if len(books) == 0 {
		_, err := fmt.Fprintln(w, st.muted.Render("The library is empty."))
		return err
	}

	rows := make([][]string, len(books))
	for i, b := range books {
		rows[i] = append([]string{strconv.Itoa(i + 1)}, b.Display().Fields()...)
	}
	cell := r.NewStyle().Padding(0, 1)
	borrowed := cell.Foreground(colorWarning)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(st.muted).
		Headers(Columns...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return st.header
			case row >= 0 && row < len(rows) && col == 3 && rows[row][3] == "no":
				return borrowed
			default:
				return cell
			}
		})
	_, err := fmt.Fprintln(w, t.Render())
	return err
}
