// Package cli implements the catalogctl command tree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"github.com/iliyamo/insurance-catalog/internal/client"
)

// ErrNotLoggedIn is returned by commands that need a session when there
// is none, or when the server rejected the saved token.
var ErrNotLoggedIn = errors.New("not logged in: run `catalogctl login` first")

// Exit codes.
const (
	ExitOK           = 0
	ExitError        = 1
	ExitAuthRequired = 2
)

type options struct {
	server       string
	sessionPath  string
	clientID     string
	clientSecret string
	quiet        bool
}

// app is built once per invocation by the root command's pre-run hook.
type app struct {
	api     *client.API
	session *client.Session
	catalog *client.Catalog
	quiet   bool
}

// NewRootCmd builds the command tree.  Defaults come from CATALOG_URL and
// the user config directory.
func NewRootCmd() *cobra.Command {
	opts := &options{}
	a := &app{}

	root := &cobra.Command{
		Use:           "catalogctl",
		Short:         "Browse the insurance product catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(opts)
		},
	}

	defaultServer := os.Getenv("CATALOG_URL")
	if defaultServer == "" {
		defaultServer = "http://localhost:8080"
	}
	defaultSession, _ := client.DefaultSessionPath()

	f := root.PersistentFlags()
	f.StringVar(&opts.server, "server", defaultServer, "catalog service base URL")
	f.StringVar(&opts.sessionPath, "session", defaultSession, "file that keeps the login session")
	f.StringVar(&opts.clientID, "client-id", client.DefaultClientID, "OAuth client id")
	f.StringVar(&opts.clientSecret, "client-secret", client.DefaultClientSecret, "OAuth client secret")
	f.BoolVarP(&opts.quiet, "quiet", "q", false, "suppress progress output")

	root.AddCommand(
		newLoginCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newProductsCmd(a),
		newProductCmd(a),
	)
	return root
}

func (a *app) init(opts *options) error {
	if opts.sessionPath == "" {
		return errors.New("no session file: pass --session")
	}
	a.api = client.NewAPI(opts.server, client.WithClientCredentials(opts.clientID, opts.clientSecret))
	a.session = client.NewSession(a.api, client.FileStore{Path: opts.sessionPath})
	a.catalog = client.NewCatalog(a.api)
	a.quiet = opts.quiet
	if err := a.session.Load(); err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	return nil
}

// requireSession fails fast when there is no saved token.
func (a *app) requireSession() error {
	if !a.session.IsAuthenticated() {
		return ErrNotLoggedIn
	}
	return nil
}

// authErr converts a 401 into ErrNotLoggedIn so the exit code says so.
func authErr(err error) error {
	if client.IsUnauthenticated(err) {
		return fmt.Errorf("%w (%v)", ErrNotLoggedIn, err)
	}
	return err
}

// spin shows a spinner on w while fn runs, unless quiet.
func (a *app) spin(ctx context.Context, w io.Writer, suffix string, fn func(context.Context) error) error {
	if a.quiet {
		return fn(ctx)
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w))
	s.Suffix = " " + suffix
	s.Start()
	defer s.Stop()
	return fn(ctx)
}

// Execute runs the CLI and returns the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := NewRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		if errors.Is(err, ErrNotLoggedIn) {
			return ExitAuthRequired
		}
		return ExitError
	}
	return ExitOK
}
