package cmd

import (
	"github.com/curiohub/curiohub/internal/cli/service"
	"github.com/spf13/cobra"
)

var voteCmd = &cobra.Command{
	Use:   "vote <submission-id>",
	Short: "Upvote a submission",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.Vote(cmd.Context(), args[0])
	},
}

var bookmarkCmd = &cobra.Command{
	Use:     "bookmark <submission-id>",
	Aliases: []string{"save"},
	Short:   "Save or unsave a submission",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.ToggleBookmark(cmd.Context(), args[0])
	},
}

var cardCmd = &cobra.Command{
	Use:   "card <submission-id>",
	Short: "Open a submission and vote or save it interactively",
	Long: `card shows one submission and reads commands from stdin:
  v  upvote
  b  save or unsave
  q  quit`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.Interactive(cmd.Context(), args[0])
	},
}
