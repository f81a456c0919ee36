package report

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
)

// WriteJSON renders the report as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteTable renders an aligned text summary: one line per check, then the
// framework control rollup.
func (r *Report) WriteTable(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintln(tw, "CHECK\tSEVERITY\tSTATUS\tPASSED\tFAILED\tERRORED")
	for _, cs := range r.Checks {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\n",
			cs.Check.Name, orDash(cs.Check.Severity), cs.Status,
			cs.Passed, cs.Failed, cs.Errored)
	}

	if len(r.Controls) > 0 {
		fmt.Fprintln(tw, "\nCONTROL\tSTATUS\tCHECKS")
		for _, ctrl := range r.Controls {
			fmt.Fprintf(tw, "%s\t%s\t%d\n", ctrl.Control, ctrl.Status, len(ctrl.Checks))
		}
	}

	fmt.Fprintf(tw, "\n%d checks over %d resource evaluations: %d passed, %d failed, %d errored\n",
		r.TotalChecks, r.TotalResources, r.TotalPassed, r.TotalFailed, r.TotalErrored)

	return tw.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
