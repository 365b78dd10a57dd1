package cli

import (
	"fmt"
	"io"

	"notekeeper-be/pkg/client"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/fatih/color"
)

var (
	heading = color.New(color.Bold)
	label   = color.New(color.FgCyan)
	success = color.New(color.FgGreen)
	failure = color.New(color.FgRed)
)

func renderList(w io.Writer, notes []client.Note) {
	heading.Fprintln(w, "Notes")
	if len(notes) == 0 {
		fmt.Fprintln(w, "No notes yet.")
		return
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "TITLE", "CATEGORY")
	for _, n := range notes {
		t.Row(n.Id.String(), n.Title, n.Category)
	}
	fmt.Fprintln(w, t.Render())
}

func renderNote(w io.Writer, n *client.Note) {
	label.Fprint(w, "Title:    ")
	fmt.Fprintln(w, n.Title)
	label.Fprint(w, "Body:     ")
	fmt.Fprintln(w, n.Body)
	label.Fprint(w, "Category: ")
	fmt.Fprintln(w, n.Category)
	label.Fprint(w, "ID:       ")
	fmt.Fprintln(w, n.Id)
}

func renderFieldErrors(w io.Writer, fields map[string][]string) {
	for field, messages := range fields {
		for _, m := range messages {
			failure.Fprintf(w, "  %s %s\n", field, m)
		}
	}
}

func notice(w io.Writer, msg string) {
	success.Fprintln(w, msg)
}

func fail(w io.Writer, msg string) error {
	failure.Fprintln(w, msg)
	return errReported
}
