package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Gilberthb/Umunsi-sub002/internal/app"
	"github.com/Gilberthb/Umunsi-sub002/internal/domain"
)

func newLoginCmd(rt *runtime) *cobra.Command {
	var identifier, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the CMS",
		Long: `Sign in with an email address or username. The password is prompted for
when --password is not given.

Examples:
  newsctl login -u editor@newsdesk.local
  echo "$PASSWORD" | newsctl login -u editor`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := rt.open(ctx)
			if err != nil {
				return err
			}
			if identifier == "" {
				if identifier, err = rt.line("Email or username: "); err != nil {
					return err
				}
			}
			if password == "" {
				if password, err = rt.password("Password: "); err != nil {
					return err
				}
			}

			if err := a.Session().Login(ctx, domain.Credentials{Identifier: identifier, Secret: password}); err != nil {
				return fmt.Errorf("login failed: %w", err)
			}
			u := a.Session().User()
			rt.printf("Logged in as %s (%s)\n", u.Username, u.Role)
			return nil
		},
	}
	cmd.Flags().StringVarP(&identifier, "user", "u", "", "email address or username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when omitted)")
	return cmd
}

func newLogoutCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rt.open(cmd.Context())
			if err != nil {
				return err
			}
			a.Session().Logout(cmd.Context())
			rt.printf("Logged out\n")
			return nil
		},
	}
}

func newWhoamiCmd(rt *runtime) *cobra.Command {
	var wait time.Duration
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Long: `Show the signed-in user and when the stored token expires.

With --wait, a session that could not be restored because the CMS was
unreachable is retried in the background until it comes back or the
wait elapses.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := rt.open(ctx)
			if err != nil {
				return err
			}
			if !a.Session().IsAuthenticated() && wait > 0 {
				waitForSession(ctx, a, wait)
			}

			u := a.Session().User()
			if u == nil {
				return errNotLoggedIn
			}
			expires := "-"
			if exp, ok := a.Session().TokenExpiry(ctx); ok {
				expires = formatTime(exp)
			}
			return rt.printFields(u, [][2]string{
				{"ID", u.ID},
				{"Username", u.Username},
				{"Name", strings.TrimSpace(u.FirstName + " " + u.LastName)},
				{"Email", u.Email},
				{"Role", string(u.Role)},
				{"Last login", formatTimePtr(u.LastLogin)},
				{"Token expires", expires},
			})
		},
	}
	cmd.Flags().DurationVar(&wait, "wait", 0, "retry restoring the session for up to this long")
	return cmd
}

// waitForSession runs the reconciler until the session is authenticated or
// wait elapses.
func waitForSession(ctx context.Context, a *app.App, wait time.Duration) {
	ctx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	states, unsubscribe := a.Session().Subscribe()
	defer unsubscribe()
	stop := a.Session().StartReconciler(ctx)
	defer stop()

	for {
		select {
		case <-ctx.Done():
			return
		case st := <-states:
			if st.IsAuthenticated {
				return
			}
		}
	}
}

func newRegisterCmd(rt *runtime) *cobra.Command {
	var req domain.RegisterRequest
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := rt.open(ctx)
			if err != nil {
				return err
			}
			if req.Password == "" {
				if req.Password, err = rt.password("Password: "); err != nil {
					return err
				}
			}
			if err := a.Session().Register(ctx, req); err != nil {
				return fmt.Errorf("registration failed: %w", err)
			}
			rt.printf("Registered and logged in as %s\n", a.Session().User().Username)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&req.Username, "username", "", "username")
	f.StringVar(&req.Email, "email", "", "email address")
	f.StringVar(&req.FirstName, "first-name", "", "first name")
	f.StringVar(&req.LastName, "last-name", "", "last name")
	f.StringVarP(&req.Password, "password", "p", "", "password (prompted when omitted)")
	for _, name := range []string{"username", "email", "first-name", "last-name"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func newPasswdCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "passwd",
		Short: "Change your password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := rt.authed(ctx)
			if err != nil {
				return err
			}
			current, err := rt.password("Current password: ")
			if err != nil {
				return err
			}
			next, err := rt.password("New password: ")
			if err != nil {
				return err
			}
			confirm, err := rt.password("Repeat new password: ")
			if err != nil {
				return err
			}
			if next != confirm {
				return errors.New("passwords do not match")
			}
			if err := a.Session().ChangePassword(ctx, current, next); err != nil {
				return fmt.Errorf("change password: %w", err)
			}
			rt.printf("Password changed\n")
			return nil
		},
	}
}
