package cli

import (
	"errors"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Gilberthb/Umunsi-sub002/internal/domain"
)

func newSessionsCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Manage your signed-in devices",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List active sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := rt.authed(ctx)
			if err != nil {
				return err
			}
			page, err := a.Client().Sessions(ctx)
			if err != nil {
				return err
			}
			return printPage(rt, page, []string{"ID", "DEVICE", "IP", "LAST ACTIVE", "CURRENT"}, func(s domain.Session) []string {
				return []string{s.ID, orDash(s.Device), orDash(s.IPAddress), formatTime(s.LastActive), yesNo(s.Current)}
			})
		},
	}

	var others bool
	revoke := &cobra.Command{
		Use:   "revoke [id]",
		Short: "Sign out another device",
		Long: `Sign out the session with the given id, or every session except this
one with --others.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if others == (len(args) == 1) {
				return errors.New("give a session id or --others")
			}
			a, err := rt.authed(ctx)
			if err != nil {
				return err
			}
			if others {
				if err := a.Client().RevokeOtherSessions(ctx); err != nil {
					return err
				}
				rt.printf("Signed out all other sessions\n")
				return nil
			}
			if err := a.Client().RevokeSession(ctx, args[0]); err != nil {
				return err
			}
			rt.printf("Revoked session %s\n", args[0])
			return nil
		},
	}
	revoke.Flags().BoolVar(&others, "others", false, "revoke every other session")

	cmd.AddCommand(list, revoke)
	return cmd
}

func newKeysCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage API keys",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List API keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := rt.authed(ctx)
			if err != nil {
				return err
			}
			page, err := a.Client().APIKeys(ctx)
			if err != nil {
				return err
			}
			return printPage(rt, page, []string{"ID", "NAME", "PREFIX", "PERMISSIONS", "LAST USED", "EXPIRES"}, func(k domain.APIKey) []string {
				return []string{k.ID, k.Name, k.Prefix, strings.Join(k.Permissions, ","), formatTimePtr(k.LastUsed), formatTimePtr(k.ExpiresAt)}
			})
		},
	}

	var in domain.APIKeyInput
	create := &cobra.Command{
		Use:   "create",
		Short: "Create an API key",
		Long:  `Create an API key. The key is printed once and cannot be shown again.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := rt.authed(ctx)
			if err != nil {
				return err
			}
			key, err := a.Client().CreateAPIKey(ctx, in)
			if err != nil {
				return err
			}
			return rt.printFields(key, [][2]string{
				{"ID", key.ID},
				{"Name", key.Name},
				{"Key", key.Key},
				{"Permissions", strings.Join(key.Permissions, ",")},
				{"Expires", formatTimePtr(key.ExpiresAt)},
			})
		},
	}
	create.Flags().StringVar(&in.Name, "name", "", "key name")
	create.Flags().StringSliceVar(&in.Permissions, "perm", nil, "permission: read, write or admin (repeatable)")
	create.Flags().IntVar(&in.ExpiresInDays, "expires-in-days", 0, "days until the key expires (0 for never)")
	_ = create.MarkFlagRequired("name")

	revoke := &cobra.Command{
		Use:   "revoke <id>",
		Short: "Revoke an API key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := rt.authed(ctx)
			if err != nil {
				return err
			}
			if err := a.Client().RevokeAPIKey(ctx, args[0]); err != nil {
				return err
			}
			rt.printf("Revoked API key %s\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(list, create, revoke)
	return cmd
}

func newSecurityCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "security",
		Short: "Account security settings",
	}

	var history int
	show := &cobra.Command{
		Use:   "show",
		Short: "Show security settings and recent sign-ins",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := rt.authed(ctx)
			if err != nil {
				return err
			}
			settings, err := a.Client().SecuritySettings(ctx)
			if err != nil {
				return err
			}
			attempts, err := a.Client().LoginHistory(ctx, domain.ListQuery{Limit: history})
			if err != nil {
				return err
			}
			if rt.jsonOutput() {
				return writeJSON(rt.streams.Out, map[string]any{
					"settings":     settings,
					"loginHistory": attempts.Items,
				})
			}

			if err := rt.printFields(settings, [][2]string{
				{"Two-factor", yesNo(settings.TwoFactorEnabled)},
				{"Login notifications", yesNo(settings.LoginNotifications)},
				{"Session timeout", strconv.Itoa(settings.SessionTimeout) + " min"},
				{"Password expiry", strconv.Itoa(settings.PasswordExpiryDays) + " days"},
				{"IP whitelist", orDash(strings.Join(settings.IPWhitelist, ", "))},
			}); err != nil {
				return err
			}
			rt.printf("\nRecent sign-ins:\n")
			t := newTable(rt.streams.Out, "TIME", "IP", "RESULT", "AGENT")
			for _, at := range attempts.Items {
				result := "ok"
				if !at.Success {
					result = orDash(at.Reason)
				}
				t.row(formatTime(at.CreatedAt), orDash(at.IPAddress), result, orDash(at.UserAgent))
			}
			return t.flush()
		},
	}
	show.Flags().IntVar(&history, "history", 5, "number of recent sign-ins to show")

	cmd.AddCommand(show)
	return cmd
}
