package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/curiohub/curiohub/internal/cli/clilog"
	"github.com/curiohub/curiohub/internal/cli/config"
	"github.com/spf13/cobra"
)

var (
	verbose    bool
	configPath string
	outputFmt  string
	apiURL     string
)

var rootCmd = &cobra.Command{
	Use:   "curio",
	Short: "CurioHub from the terminal",
	Long: `curio browses the CurioHub feed, votes on and saves submissions,
and submits new links for curation.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Init(configPath); err != nil {
			return fmt.Errorf("initializing config: %w", err)
		}
		if outputFmt != "" {
			if outputFmt != "text" && outputFmt != "json" {
				return fmt.Errorf("unknown output format %q", outputFmt)
			}
			config.Set("output.format", outputFmt)
		}
		if apiURL != "" {
			config.Set("api.base_url", apiURL)
		}
		clilog.Init(verbose)
		clilog.Debug("Starting", "command", cmd.CommandPath(), "api", config.GetString("api.base_url"))
		return nil
	},
}

// Execute runs the root command. Ctrl-C cancels in-flight requests.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to the log file")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: ~/.config/curiohub/cli/config.toml)")
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "", "Output format: text, json")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", "", "API base URL for this run")

	rootCmd.AddCommand(loginCmd, logoutCmd, registerCmd, whoamiCmd, resetPasswordCmd)
	rootCmd.AddCommand(feedCmd, discoverCmd, showCmd, savedCmd, submittedCmd, submitCmd, tagsCmd)
	rootCmd.AddCommand(voteCmd, bookmarkCmd, cardCmd)
	rootCmd.AddCommand(adminCmd, configCmd)
}
