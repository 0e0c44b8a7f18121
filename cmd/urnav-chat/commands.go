package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dark-devil9/UrNav/internal/types"
)

var errCredentials = errors.New("an email or phone and a password are required")

func newAskCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a single question and print the answer",
		Example: `  urnav-chat ask "free things to do"
  urnav-chat ask "meet my friend in Malviya Nagar" --lat 26.85 --lon 75.80`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reply := a.answer(cmd.Context(), strings.Join(args, " "))
			_, err := fmt.Fprintln(cmd.OutOrStdout(), reply)
			return err
		},
	}
}

func newIntentCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "intent <question>",
		Short: "Print the intent detected for a question as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printJSON(cmd, a.detector.Detect(strings.Join(args, " ")))
		},
	}
}

type credentials struct {
	email    string
	phone    string
	password string
}

func (c credentials) valid() bool {
	return c.password != "" && (c.email != "" || c.phone != "")
}

func credentialFlags(cmd *cobra.Command, c *credentials) {
	cmd.Flags().StringVar(&c.email, "email", "", "Account email")
	cmd.Flags().StringVar(&c.phone, "phone", "", "Account phone number")
	cmd.Flags().StringVar(&c.password, "password", "", "Account password")
}

func newSignupCmd(a *app) *cobra.Command {
	var c credentials
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and remember its access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !c.valid() {
				return errCredentials
			}
			pair, err := a.client.Signup(cmd.Context(), types.SignupRequest{Email: c.email, Phone: c.phone, Password: c.password})
			if err != nil {
				return fmt.Errorf("signup failed: %w", err)
			}
			return a.saveToken(cmd, pair, "Account created")
		},
	}
	credentialFlags(cmd, &c)
	return cmd
}

func newLoginCmd(a *app) *cobra.Command {
	var c credentials
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !c.valid() {
				return errCredentials
			}
			pair, err := a.client.Login(cmd.Context(), types.LoginRequest{Email: c.email, Phone: c.phone, Password: c.password})
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}
			return a.saveToken(cmd, pair, "Logged in")
		},
	}
	credentialFlags(cmd, &c)
	return cmd
}

func (a *app) saveToken(cmd *cobra.Command, pair *types.TokenPair, done string) error {
	if err := a.tokens.Save(pair.AccessToken); err != nil {
		return err
	}
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s. Token saved to %s\n", done, a.tokens.Path)
	return err
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.tokens.Clear(); err != nil {
				return err
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return err
		},
	}
}

func newMeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the signed-in user's profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			me, err := a.client.Me(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd, me)
		},
	}
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
