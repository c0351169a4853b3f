package service

import (
	"errors"
	"fmt"

	"github.com/curiohub/curiohub/internal/cli/api"
	"github.com/curiohub/curiohub/internal/cli/client"
	"github.com/curiohub/curiohub/internal/cli/clilog"
	"github.com/curiohub/curiohub/internal/cli/credentials"
	"github.com/curiohub/curiohub/internal/cli/formatter"
	"github.com/curiohub/curiohub/internal/cli/prompter"
)

// ErrNotLoggedIn is returned by commands that need saved credentials.
var ErrNotLoggedIn = errors.New("not logged in, run `curio login` first")

// UseCredentials puts a saved, unexpired token on the HTTP client. It
// returns nil credentials when there is none.
func UseCredentials() (*credentials.Credentials, error) {
	creds, err := credentials.Load()
	if err != nil {
		clilog.Error("Failed to load credentials", "err", err)
		return nil, err
	}
	if creds == nil || !creds.IsValid() {
		return nil, nil
	}
	client.SetAuthToken(creds.AccessToken)
	return creds, nil
}

// RequireCredentials is UseCredentials for commands that cannot run
// anonymously.
func RequireCredentials() (*credentials.Credentials, error) {
	creds, err := UseCredentials()
	if err != nil {
		return nil, err
	}
	if creds == nil {
		return nil, ErrNotLoggedIn
	}
	return creds, nil
}

// Login prompts for whatever of email and password is missing, then saves
// the token.
func Login(email, password string) error {
	var err error
	if email == "" {
		if email, err = prompter.PromptString("Email: "); err != nil {
			return err
		}
	}
	if password == "" {
		if password, err = prompter.PromptPassword("Password: "); err != nil {
			return err
		}
	}
	if email == "" || password == "" {
		return fmt.Errorf("email and password are required")
	}

	resp, err := api.Login(email, password)
	if err != nil {
		return err
	}
	return saveLogin(resp)
}

// Register creates an account and logs into it.
func Register(email, username, password string) error {
	var err error
	if email == "" {
		if email, err = prompter.PromptString("Email: "); err != nil {
			return err
		}
	}
	if username == "" {
		if username, err = prompter.PromptString("Username: "); err != nil {
			return err
		}
	}
	if password == "" {
		if password, err = prompter.PromptPassword("Password: "); err != nil {
			return err
		}
	}

	resp, err := api.Register(email, username, password)
	if err != nil {
		return err
	}
	return saveLogin(resp)
}

func saveLogin(resp *api.AuthResponse) error {
	creds := &credentials.Credentials{
		AccessToken: resp.Token,
		ExpiresAt:   resp.ExpiresAt,
		UserID:      resp.User.ID,
		Username:    resp.User.Username,
		IsAdmin:     resp.User.IsAdmin,
	}
	if err := credentials.Save(creds); err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}
	client.SetAuthToken(resp.Token)
	clilog.Info("Logged in", "username", creds.Username)

	if creds.IsAdmin {
		formatter.PrintSuccess("Logged in as %s (admin)", formatter.Bold.Sprint(creds.Username))
	} else {
		formatter.PrintSuccess("Logged in as %s", formatter.Bold.Sprint(creds.Username))
	}
	return nil
}

// Logout forgets the saved token.
func Logout() error {
	if err := credentials.Delete(); err != nil {
		return err
	}
	formatter.PrintInfo("Logged out")
	return nil
}

// Whoami prints the account behind the saved token.
func Whoami() error {
	if _, err := RequireCredentials(); err != nil {
		return err
	}
	user, err := api.Me()
	if api.IsUnauthorized(err) {
		return ErrNotLoggedIn
	}
	if err != nil {
		return err
	}
	if formatter.JSON() {
		return formatter.PrintJSON(user)
	}
	formatter.PrintInfo("%s", formatter.Bold.Sprint(user.Username))
	if user.DisplayName != "" {
		formatter.PrintInfo("%s", user.DisplayName)
	}
	if user.IsAdmin {
		formatter.PrintWarning("admin")
	}
	return nil
}

// ResetPassword requests a reset mail, or with a token sets the new
// password.
func ResetPassword(email, token string) error {
	if token == "" {
		if err := api.RequestPasswordReset(email); err != nil {
			return err
		}
		formatter.PrintInfo("If %s is registered, a reset link is on its way", email)
		return nil
	}
	password, err := prompter.PromptPassword("New password: ")
	if err != nil {
		return err
	}
	if err := api.ConfirmPasswordReset(token, password); err != nil {
		return err
	}
	formatter.PrintSuccess("Password updated")
	return nil
}
