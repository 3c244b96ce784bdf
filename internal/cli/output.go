package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/Gilberthb/Umunsi-sub002/internal/domain"
)

func (rt *runtime) jsonOutput() bool {
	return rt.flags.output == "json"
}

func (rt *runtime) checkOutput() error {
	switch rt.flags.output {
	case "table", "json":
		return nil
	}
	return fmt.Errorf("unknown output format %q (want table or json)", rt.flags.output)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// table writes aligned columns.
type table struct {
	tw *tabwriter.Writer
}

func newTable(w io.Writer, header ...string) *table {
	t := &table{tw: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
	t.row(header...)
	return t
}

func (t *table) row(cols ...string) {
	fmt.Fprintln(t.tw, strings.Join(cols, "\t"))
}

func (t *table) flush() error {
	return t.tw.Flush()
}

// printPage renders a page in the selected format.
func printPage[T any](rt *runtime, page domain.Page[T], header []string, row func(T) []string) error {
	if rt.jsonOutput() {
		return writeJSON(rt.streams.Out, map[string]any{
			"items":      page.Items,
			"total":      page.Total,
			"page":       page.Page,
			"limit":      page.Limit,
			"totalPages": page.TotalPages(),
		})
	}
	t := newTable(rt.streams.Out, header...)
	for _, item := range page.Items {
		t.row(row(item)...)
	}
	if err := t.flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(rt.streams.Out, "\nPage %d of %d (%d total)\n", page.Page, max(page.TotalPages(), 1), page.Total)
	return err
}

// printFields renders a single record as label/value lines, or v as JSON.
func (rt *runtime) printFields(v any, fields [][2]string) error {
	if rt.jsonOutput() {
		return writeJSON(rt.streams.Out, v)
	}
	tw := tabwriter.NewWriter(rt.streams.Out, 0, 0, 2, ' ', 0)
	for _, f := range fields {
		fmt.Fprintf(tw, "%s:\t%s\n", f[0], f[1])
	}
	return tw.Flush()
}

func (rt *runtime) printf(format string, args ...any) {
	fmt.Fprintf(rt.streams.Out, format, args...)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return formatTime(*t)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
