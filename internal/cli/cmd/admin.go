package cmd

import (
	"strings"

	"github.com/curiohub/curiohub/internal/cli/config"
	"github.com/curiohub/curiohub/internal/cli/formatter"
	"github.com/curiohub/curiohub/internal/cli/service"
	"github.com/spf13/cobra"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Moderation commands (admin accounts only)",
}

func moderateCmd(verb string) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " <submission-id>",
		Short: strings.ToUpper(verb[:1]) + verb[1:] + " a pending submission",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := service.ParseStatus(verb)
			if err != nil {
				return err
			}
			return service.Moderate(args[0], status)
		},
	}
}

var recountCmd = &cobra.Command{
	Use:   "recount <submission-id>",
	Short: "Reset a stored upvote total from its votes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.Recount(args[0])
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Read or change CLI settings",
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Persist a setting, e.g. api.base_url",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.SetString(args[0], args[1]); err != nil {
			return err
		}
		formatter.PrintSuccess("%s = %s", args[0], args[1])
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print a setting",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		formatter.PrintInfo("%s", config.GetString(args[0]))
		return nil
	},
}

func init() {
	adminCmd.AddCommand(moderateCmd("approve"), moderateCmd("reject"), recountCmd)
	configCmd.AddCommand(configSetCmd, configGetCmd)
}
