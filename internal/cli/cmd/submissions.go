package cmd

import (
	"github.com/curiohub/curiohub/internal/cli/api"
	"github.com/curiohub/curiohub/internal/cli/config"
	"github.com/curiohub/curiohub/internal/cli/service"
	"github.com/spf13/cobra"
)

var (
	feedSource string
	feedTags   []string
	pageLimit  int
	pageOffset int

	submitURL         string
	submitSource      string
	submitDescription string
	submitThumbnail   string
	submitTags        []string
)

func limit() int {
	if pageLimit > 0 {
		return pageLimit
	}
	return config.GetInt("feed.limit")
}

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Top approved submissions",
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.Feed(api.FeedQuery{Source: feedSource, Tags: feedTags, Limit: limit(), Offset: pageOffset})
	},
}

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Newest approved submissions",
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.Discover(limit(), pageOffset)
	},
}

var showCmd = &cobra.Command{
	Use:   "show <submission-id>",
	Short: "Show one submission",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.Show(args[0])
	},
}

var savedCmd = &cobra.Command{
	Use:   "saved [username]",
	Short: "List saved submissions (yours by default)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.Saved(firstArg(args), limit(), pageOffset)
	},
}

var submittedCmd = &cobra.Command{
	Use:   "submitted [username]",
	Short: "List submissions by a user (yours by default)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.Submitted(firstArg(args), limit(), pageOffset)
	},
}

var submitCmd = &cobra.Command{
	Use:   "submit <title>",
	Short: "Submit a link for curation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.Submit(api.NewSubmission{
			Title:        args[0],
			URL:          submitURL,
			Description:  submitDescription,
			ThumbnailURL: submitThumbnail,
			SourceType:   submitSource,
			Tags:         submitTags,
		})
	},
}

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "List tags",
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.Tags()
	},
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func init() {
	for _, c := range []*cobra.Command{feedCmd, discoverCmd, savedCmd, submittedCmd} {
		c.Flags().IntVarP(&pageLimit, "limit", "n", 0, "Page size (default from config feed.limit)")
		c.Flags().IntVar(&pageOffset, "offset", 0, "Skip this many entries")
	}
	feedCmd.Flags().StringVarP(&feedSource, "source", "s", "", "youtube, instagram, reddit, twitter or article")
	feedCmd.Flags().StringSliceVarP(&feedTags, "tags", "t", nil, "Only these tags (comma separated)")

	submitCmd.Flags().StringVar(&submitURL, "url", "", "Link to submit")
	submitCmd.Flags().StringVarP(&submitSource, "source", "s", "article", "Source type")
	submitCmd.Flags().StringVarP(&submitDescription, "description", "d", "", "Short description")
	submitCmd.Flags().StringVar(&submitThumbnail, "thumbnail", "", "Thumbnail image URL")
	submitCmd.Flags().StringSliceVarP(&submitTags, "tags", "t", nil, "Up to five tags")
	_ = submitCmd.MarkFlagRequired("url")
}
