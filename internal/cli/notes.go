package cli

import (
	"fmt"
	"net/http"

	"notekeeper-be/pkg/client"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your notes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			res, err := a.client.GetNotes(cmd.Context())
			if err != nil || res.Status != http.StatusOK || res.Data == nil {
				return fail(out, "Something went wrong when trying to load notes")
			}
			renderList(out, *res.Data)
			return nil
		},
	}
}

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.show(cmd, args[0])
		},
	}
}

// show is the view every successful create and edit lands on.
func (a *app) show(cmd *cobra.Command, rawId string) error {
	out := cmd.OutOrStdout()
	id, err := uuid.Parse(rawId)
	if err != nil {
		return fail(out, "Note not found")
	}

	res, err := a.client.GetNote(cmd.Context(), id)
	if err != nil {
		return fail(out, "Something went wrong when trying to load the note")
	}
	switch {
	case res.Status == http.StatusOK && res.Data != nil:
		renderNote(out, res.Data)
		return nil
	case res.Status == http.StatusNotFound:
		return fail(out, "Note not found")
	default:
		return fail(out, "Something went wrong when trying to load the note")
	}
}

func newNewCmd(a *app) *cobra.Command {
	var note client.Note

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create a note",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			res, err := a.client.CreateNote(cmd.Context(), &note)
			if err != nil || res.Status != http.StatusCreated || res.Data == nil {
				if res != nil {
					renderFieldErrors(out, res.Errors())
				}
				return fail(out, "Something went wrong when trying to create")
			}
			notice(out, "Note was successfully created.")
			return a.show(cmd, res.Data.Id.String())
		},
	}

	cmd.Flags().StringVar(&note.Title, "title", "", "Note title")
	cmd.Flags().StringVar(&note.Body, "body", "", "Note body")
	cmd.Flags().StringVar(&note.Category, "category", "", "Note category")
	return cmd
}

func newEditCmd(a *app) *cobra.Command {
	var title, body, category string

	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Edit a note; only the given flags change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fail(out, "Note not found")
			}

			current, err := a.client.GetNote(cmd.Context(), id)
			if err != nil || current.Status != http.StatusOK || current.Data == nil {
				return fail(out, "Something went wrong when trying to update")
			}

			note := *current.Data
			flags := cmd.Flags()
			if flags.Changed("title") {
				note.Title = title
			}
			if flags.Changed("body") {
				note.Body = body
			}
			if flags.Changed("category") {
				note.Category = category
			}

			res, err := a.client.UpdateNote(cmd.Context(), &note)
			if err != nil || res.Status != http.StatusOK {
				if res != nil {
					renderFieldErrors(out, res.Errors())
				}
				return fail(out, "Something went wrong when trying to update")
			}
			notice(out, "Note was successfully updated.")
			return a.show(cmd, note.Id.String())
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&body, "body", "", "New body")
	cmd.Flags().StringVar(&category, "category", "", "New category")
	return cmd
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fail(out, "Something went wrong when trying to delete")
			}

			res, err := a.client.DeleteNote(cmd.Context(), id)
			if err != nil || res.Status != http.StatusNoContent {
				return fail(out, "Something went wrong when trying to delete")
			}
			notice(out, fmt.Sprintf("Note %s was successfully destroyed.", id))
			return nil
		},
	}
}
