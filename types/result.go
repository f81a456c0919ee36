package types

import "fmt"

// CheckResult is the per-resource, per-check verdict produced by the engine.
// A non-empty Error always pairs with Passed == false.
type CheckResult struct {
	CheckID       string `json:"check_id"`
	CheckName     string `json:"check_name"`
	ResourceID    string `json:"resource_id"`
	Passed        bool   `json:"passed"`
	FetchedValue  any    `json:"fetched_value"`
	ExpectedValue any    `json:"expected_value"`
	Error         string `json:"error,omitempty"`
}

// Errored reports whether evaluation failed rather than judged the resource.
func (r *CheckResult) Errored() bool {
	return r.Error != ""
}

// Validate ensures result invariants hold.
func (r *CheckResult) Validate() error {
	if r.CheckID == "" {
		return fmt.Errorf("result check id cannot be empty")
	}
	if r.ResourceID == "" {
		return fmt.Errorf("result resource id cannot be empty")
	}
	if r.Error != "" && r.Passed {
		return fmt.Errorf("result for check %s cannot both pass and carry an error", r.CheckID)
	}
	return nil
}
