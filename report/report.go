// Package report aggregates check results into per-check and per-framework
// compliance summaries.
package report

import (
	"sort"
	"strings"
	"time"

	"github.com/yairfalse/valvo/types"
)

// Status of a check or control across all evaluated resources.
const (
	StatusCompliant    = "compliant"
	StatusNonCompliant = "non_compliant"
	StatusError        = "error"
	StatusNoResources  = "no_resources"
)

// CheckSummary is one check's outcome with the full per-resource breakdown: a
// check that errors on some resources and passes on others surfaces both,
// never a single aggregate flag.
type CheckSummary struct {
	Check   types.Check         `json:"check"`
	Status  string              `json:"status"`
	Passed  int                 `json:"passed"`
	Failed  int                 `json:"failed"`
	Errored int                 `json:"errored"`
	Results []types.CheckResult `json:"results"`
}

// ControlSummary rolls check outcomes up to a framework control, e.g.
// "NIST-800-53:AC-2".
type ControlSummary struct {
	Control string   `json:"control"`
	Status  string   `json:"status"`
	Checks  []string `json:"checks"`
}

// Report is a full evaluation pass: every check with its per-resource
// verdicts, plus the framework view derived from check controls metadata.
type Report struct {
	GeneratedAt    time.Time        `json:"generated_at"`
	TotalChecks    int              `json:"total_checks"`
	TotalResources int              `json:"total_resources"`
	TotalPassed    int              `json:"total_passed"`
	TotalFailed    int              `json:"total_failed"`
	TotalErrored   int              `json:"total_errored"`
	Checks         []CheckSummary   `json:"checks"`
	Controls       []ControlSummary `json:"controls,omitempty"`
}

// Build assembles a report, preserving check order and result order within
// each check.
func Build(checks []types.Check, results []types.CheckResult) *Report {
	r := &Report{
		GeneratedAt: time.Now().UTC(),
		TotalChecks: len(checks),
	}

	byCheck := make(map[string][]types.CheckResult)
	for _, res := range results {
		byCheck[res.CheckID] = append(byCheck[res.CheckID], res)
	}

	for _, check := range checks {
		summary := summarize(check, byCheck[check.ID])
		r.TotalResources += len(summary.Results)
		r.TotalPassed += summary.Passed
		r.TotalFailed += summary.Failed
		r.TotalErrored += summary.Errored
		r.Checks = append(r.Checks, summary)
	}

	r.Controls = summarizeControls(r.Checks)
	return r
}

func summarize(check types.Check, results []types.CheckResult) CheckSummary {
	s := CheckSummary{Check: check, Results: results}

	for _, res := range results {
		switch {
		case res.Errored():
			s.Errored++
		case res.Passed:
			s.Passed++
		default:
			s.Failed++
		}
	}

	s.Status = status(s.Passed, s.Failed, s.Errored)
	return s
}

func status(passed, failed, errored int) string {
	switch {
	case errored > 0:
		return StatusError
	case failed > 0:
		return StatusNonCompliant
	case passed > 0:
		return StatusCompliant
	default:
		return StatusNoResources
	}
}

// summarizeControls groups checks by the framework controls in their
// metadata. A control is compliant only when every mapped check is.
func summarizeControls(checks []CheckSummary) []ControlSummary {
	byControl := make(map[string][]CheckSummary)
	for _, cs := range checks {
		for _, control := range cs.Check.Controls {
			control = strings.TrimSpace(control)
			if control == "" {
				continue
			}
			byControl[control] = append(byControl[control], cs)
		}
	}

	controls := make([]ControlSummary, 0, len(byControl))
	for control, mapped := range byControl {
		summary := ControlSummary{Control: control, Status: StatusCompliant}
		for _, cs := range mapped {
			summary.Checks = append(summary.Checks, cs.Check.ID)
			summary.Status = worse(summary.Status, cs.Status)
		}
		sort.Strings(summary.Checks)
		controls = append(controls, summary)
	}

	sort.Slice(controls, func(i, j int) bool { return controls[i].Control < controls[j].Control })
	return controls
}

var statusRank = map[string]int{
	StatusError:        3,
	StatusNonCompliant: 2,
	StatusNoResources:  1,
	StatusCompliant:    0,
}

func worse(a, b string) string {
	if statusRank[b] > statusRank[a] {
		return b
	}
	return a
}
