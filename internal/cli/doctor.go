package cli

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/Gilberthb/Umunsi-sub002/pkg/health"
)

func newDoctorCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check the token store, the CMS API and the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := rt.open(ctx)
			if err != nil {
				return err
			}
			report := a.Health().Run(ctx)
			if rt.jsonOutput() {
				if err := writeJSON(rt.streams.Out, report); err != nil {
					return err
				}
			} else {
				t := newTable(rt.streams.Out, "CHECK", "STATUS", "LATENCY", "ERROR")
				for _, name := range report.Names() {
					c := report.Checks[name]
					t.row(name, string(c.Status), c.Latency.Round(time.Millisecond).String(), orDash(c.Error))
				}
				if err := t.flush(); err != nil {
					return err
				}
				rt.printf("\nOverall: %s (API %s)\n", report.Status, a.Client().BaseURL())
			}
			if report.Status == health.StatusDown {
				return errors.New("one or more critical checks failed")
			}
			return nil
		},
	}
}
