package types

import "fmt"

// Operation names understood by the operation registry. OpCustom selects the
// custom logic executor instead.
const (
	OpEqual              = "EQUAL"
	OpNotEqual           = "NOT_EQUAL"
	OpLessThan           = "LESS_THAN"
	OpGreaterThan        = "GREATER_THAN"
	OpLessThanOrEqual    = "LESS_THAN_OR_EQUAL"
	OpGreaterThanOrEqual = "GREATER_THAN_OR_EQUAL"
	OpContains           = "CONTAINS"
	OpNotContains        = "NOT_CONTAINS"
	OpCustom             = "custom"
)

// Operation selects how a fetched value is judged: either a named comparison
// or a custom logic fragment. Exactly one must be configured.
type Operation struct {
	Name        string `json:"name" yaml:"name"`
	CustomLogic string `json:"custom_logic,omitempty" yaml:"custom_logic,omitempty"`
}

// IsCustom reports whether the operation routes to the custom logic executor.
func (o Operation) IsCustom() bool {
	return o.Name == OpCustom
}

// Check is a named predicate definition loaded from configuration. Checks are
// immutable after load and evaluated many times.
type Check struct {
	ID            string    `json:"id" yaml:"id"`
	Name          string    `json:"name" yaml:"name"`
	Description   string    `json:"description,omitempty" yaml:"description,omitempty"`
	FieldPath     string    `json:"field_path" yaml:"field_path"`
	Operation     Operation `json:"operation" yaml:"operation"`
	ExpectedValue any       `json:"expected_value" yaml:"expected_value"`

	// Descriptive metadata the evaluator ignores but passes through to
	// reporting unchanged. Controls carry framework mappings like
	// "NIST-800-53:AC-2".
	Tags     []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	Severity string   `json:"severity,omitempty" yaml:"severity,omitempty"`
	Category string   `json:"category,omitempty" yaml:"category,omitempty"`
	Controls []string `json:"controls,omitempty" yaml:"controls,omitempty"`
}

// Validate catches structural defects in a check definition. Operation name
// and custom logic semantics are validated by the checks loader, which knows
// the registry and the logic compiler.
func (c *Check) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("check id cannot be empty")
	}
	if c.Name == "" {
		return fmt.Errorf("check %s: name cannot be empty", c.ID)
	}
	if c.Operation.Name == "" {
		return fmt.Errorf("check %s: operation name cannot be empty", c.ID)
	}
	if c.Operation.IsCustom() && c.Operation.CustomLogic == "" {
		return fmt.Errorf("check %s: custom operation requires custom_logic", c.ID)
	}
	if !c.Operation.IsCustom() && c.Operation.CustomLogic != "" {
		return fmt.Errorf("check %s: operation %s cannot carry custom_logic", c.ID, c.Operation.Name)
	}
	if c.FieldPath == "" {
		return fmt.Errorf("check %s: field_path cannot be empty", c.ID)
	}
	return nil
}
