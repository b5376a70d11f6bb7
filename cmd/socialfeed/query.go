package main

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	"github.com/MyNameIsWhaaat/socialfeed/internal/comment/model"
)

var commentsCmd = &cobra.Command{
	Use:   "comments <uid>",
	Short: "Print the comments written by uid, most popular first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, a, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		cs, err := a.comments.ListByAuthor(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if cs == nil {
			cs = []model.Comment{}
		}
		return printJSON(cmd.OutOrStdout(), map[string]any{"comments": cs})
	},
}

var timelineCmd = &cobra.Command{
	Use:   "timeline <uid>",
	Short: "Print the timeline of uid",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, a, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		tl, err := a.timeline.Build(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), tl)
	},
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
