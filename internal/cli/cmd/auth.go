package cmd

import (
	"github.com/curiohub/curiohub/internal/cli/service"
	"github.com/spf13/cobra"
)

var (
	loginEmail    string
	loginUsername string
	resetToken    string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and save the token",
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.Login(loginEmail, "")
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a CurioHub account",
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.Register(loginEmail, loginUsername, "")
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the saved token",
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.Logout()
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.Whoami()
	},
}

var resetPasswordCmd = &cobra.Command{
	Use:   "reset-password <email>",
	Short: "Request a reset link, or set a new password with --token",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		email := ""
		if len(args) == 1 {
			email = args[0]
		}
		if email == "" && resetToken == "" {
			return cmd.Usage()
		}
		return service.ResetPassword(email, resetToken)
	},
}

func init() {
	loginCmd.Flags().StringVarP(&loginEmail, "email", "e", "", "Account email")
	registerCmd.Flags().StringVarP(&loginEmail, "email", "e", "", "Account email")
	registerCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "Username")
	resetPasswordCmd.Flags().StringVar(&resetToken, "token", "", "Reset token from the email")
}
