// Package cli implements the newsctl command tree.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Gilberthb/Umunsi-sub002/internal/app"
	"github.com/Gilberthb/Umunsi-sub002/internal/config"
	"github.com/Gilberthb/Umunsi-sub002/pkg/logger"
)

var errNotLoggedIn = errors.New("not logged in; run 'newsctl login' first")

// Streams are the standard streams commands read from and write to.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// StdStreams returns the process streams.
func StdStreams() Streams {
	return Streams{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}
}

type globalFlags struct {
	apiURL string
	output string
}

// runtime is shared by every command of one invocation. The application is
// opened on first use so that help and flag errors need no configuration.
type runtime struct {
	streams Streams
	flags   globalFlags
	reader  *bufio.Reader
	app     *app.App
}

func (rt *runtime) open(ctx context.Context) (*app.App, error) {
	if rt.app != nil {
		return rt.app, nil
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if rt.flags.apiURL != "" {
		cfg.APIURL = rt.flags.apiURL
	}

	a, err := app.New(ctx, cfg, logger.NewWithWriter("newsctl", cfg.LogLevel, rt.streams.Err))
	if err != nil {
		return nil, err
	}
	if err := a.Start(ctx); err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("restore session: %w", err)
	}
	rt.app = a
	return a, nil
}

// authed opens the application and requires a signed-in user.
func (rt *runtime) authed(ctx context.Context) (*app.App, error) {
	a, err := rt.open(ctx)
	if err != nil {
		return nil, err
	}
	if !a.Session().IsAuthenticated() {
		return nil, errNotLoggedIn
	}
	return a, nil
}

func (rt *runtime) close() error {
	if rt.app == nil {
		return nil
	}
	err := rt.app.Close()
	rt.app = nil
	return err
}

func newRootCommand(rt *runtime) *cobra.Command {
	root := &cobra.Command{
		Use:   "newsctl",
		Short: "Newsroom console for the Umunsi CMS",
		Long: `newsctl signs in to the Umunsi news CMS and manages its content from the terminal.

The CMS location and token storage are read from the environment
(API_URL, TOKEN_STORE, ...). Run 'newsctl doctor' to check the setup.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return rt.checkOutput()
		},
	}
	root.SetIn(rt.streams.In)
	root.SetOut(rt.streams.Out)
	root.SetErr(rt.streams.Err)

	root.PersistentFlags().StringVar(&rt.flags.apiURL, "api-url", "", "CMS API base URL (overrides API_URL)")
	root.PersistentFlags().StringVarP(&rt.flags.output, "output", "o", "table", "output format: table or json")

	root.AddCommand(
		newLoginCmd(rt),
		newLogoutCmd(rt),
		newWhoamiCmd(rt),
		newRegisterCmd(rt),
		newPasswdCmd(rt),
		newArticlesCmd(rt),
		newCategoriesCmd(rt),
		newMediaCmd(rt),
		newSessionsCmd(rt),
		newKeysCmd(rt),
		newSecurityCmd(rt),
		newDoctorCmd(rt),
	)
	return root
}

// Run executes newsctl with args and releases everything it opened.
func Run(ctx context.Context, args []string, streams Streams) error {
	rt := &runtime{streams: streams, reader: bufio.NewReader(streams.In)}
	root := newRootCommand(rt)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if cerr := rt.close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}
