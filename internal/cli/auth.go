package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newLoginCmd(a *app) *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with a username and password",
		Long: `Sign in with the password grant and keep the token in the session file.
The password is read from --password, or prompted for when stdin is a
terminal, or read as one line from stdin otherwise.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(username) == "" {
				return errors.New("--username is required")
			}
			if password == "" {
				p, err := readPassword(cmd.InOrStdin(), cmd.ErrOrStderr())
				if err != nil {
					return err
				}
				password = p
			}

			var ok bool
			_ = a.spin(cmd.Context(), cmd.ErrOrStderr(), "Signing in...", func(ctx context.Context) error {
				ok = a.session.Login(ctx, username, password)
				return nil
			})
			if !ok {
				return errors.New(a.session.Error())
			}
			if msg := a.session.Error(); msg != "" {
				fmt.Fprintln(cmd.ErrOrStderr(), text.FgYellow.Sprint("warning: "+msg))
			}
			u := a.session.User()
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s)\n", text.FgGreen.Sprint("Logged in as"), u.Name, u.Email)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "login identifier")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when omitted)")
	return cmd
}

// readPassword prompts without echo on a terminal and reads one line
// otherwise.
func readPassword(in io.Reader, prompt io.Writer) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(prompt, "Password: ")
		bs, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(bs), nil
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", errors.New("empty password")
	}
	return line, nil
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke the current token and forget the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !a.session.IsAuthenticated() {
				fmt.Fprintln(cmd.OutOrStdout(), "Not logged in")
				return nil
			}
			err := a.session.Logout(cmd.Context())
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), text.FgYellow.Sprint("warning: server logout failed: "+err.Error()))
			}
			fmt.Fprintln(cmd.OutOrStdout(), text.FgGreen.Sprint("Logged out"))
			return nil
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}
			u, err := a.api.Me(cmd.Context())
			if err != nil {
				return authErr(err)
			}
			renderKV(cmd.OutOrStdout(), [][2]string{
				{"ID", fmt.Sprint(u.ID)},
				{"Name", u.Name},
				{"Email", u.Email},
			})
			return nil
		},
	}
}
