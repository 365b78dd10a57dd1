package cli

import (
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

type credentialFlags struct {
	email    string
	password string
}

func (f *credentialFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.email, "email", "", "Account email")
	cmd.Flags().StringVar(&f.password, "password", "", "Account password (prompted when omitted)")
	_ = cmd.MarkFlagRequired("email")
}

// ensurePassword prompts on an interactive terminal when --password is absent.
func (f *credentialFlags) ensurePassword() error {
	if f.password != "" {
		return nil
	}
	if !isatty.IsTerminal(os.Stdin.Fd()) {
		return errors.New("--password is required when not running in a terminal")
	}
	return huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Value(&f.password),
	)).Run()
}

func newLoginCmd(a *app) *cobra.Command {
	var creds credentialFlags

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and remember the access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if err := creds.ensurePassword(); err != nil {
				return err
			}

			res, err := a.client.Login(cmd.Context(), creds.email, creds.password)
			if err != nil {
				return fail(out, "Something went wrong when trying to log in")
			}
			if res.Status != http.StatusOK || res.Data == nil {
				return fail(out, "Invalid email or password.")
			}

			a.settings.Token = res.Data.AccessToken
			if err := SaveSettings(a.configPath, a.settings); err != nil {
				return err
			}
			notice(out, fmt.Sprintf("Signed in successfully. Token saved to %s", a.configPath))
			return nil
		},
	}
	creds.bind(cmd)
	return cmd
}

func newRegisterCmd(a *app) *cobra.Command {
	var creds credentialFlags

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if err := creds.ensurePassword(); err != nil {
				return err
			}

			res, err := a.client.Register(cmd.Context(), creds.email, creds.password)
			if err != nil {
				return fail(out, "Something went wrong when trying to register")
			}
			if res.Status != http.StatusCreated || res.Data == nil {
				renderFieldErrors(out, res.Errors())
				return fail(out, "Something went wrong when trying to register")
			}
			notice(out, fmt.Sprintf("Welcome! Account created for %s. Run `notes login` to sign in.", res.Data.Email))
			return nil
		},
	}
	creds.bind(cmd)
	return cmd
}
