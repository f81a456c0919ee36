// Package logic executes user-supplied check logic as sandboxed Rego rule
// bodies. Declarative operations cover most checks; fragments here handle the
// rest (e.g. "commit within the last 30 days") without giving user code
// filesystem or network access.
package logic

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/open-policy-agent/opa/v1/rego"
	"github.com/yairfalse/valvo/telemetry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// CustomLogicError wraps a failure inside a custom logic fragment.
type CustomLogicError struct {
	CheckID string
	Err     error
}

func (e *CustomLogicError) Error() string {
	return fmt.Sprintf("custom logic for check %s failed: %v", e.CheckID, e.Err)
}

func (e *CustomLogicError) Unwrap() error {
	return e.Err
}

// DefaultTimeout bounds a single fragment evaluation. A pathological
// fragment must not stall the whole batch.
const DefaultTimeout = 5 * time.Second

// Executor compiles custom logic fragments at load time and evaluates them
// per resource. Fragments see fetched_value and config_value and must make
// the result rule true to pass.
type Executor struct {
	timeout  time.Duration
	prepared map[string]rego.PreparedEvalQuery
	logger   *telemetry.Logger
	tracer   trace.Tracer
}

// NewExecutor creates an executor. A zero timeout falls back to
// DefaultTimeout.
func NewExecutor(timeout time.Duration) *Executor {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Executor{
		timeout:  timeout,
		prepared: make(map[string]rego.PreparedEvalQuery),
		logger:   telemetry.NewLogger("logic-executor"),
		tracer:   otel.Tracer("logic-executor"),
	}
}

// Compile wraps and compiles a fragment for the given check. Compilation
// failures are configuration defects and surface before any resource is
// evaluated.
func (e *Executor) Compile(ctx context.Context, checkID, fragment string) error {
	ctx, span := e.tracer.Start(ctx, "logic_executor.compile",
		trace.WithAttributes(attribute.String("check.id", checkID)))
	defer span.End()

	if strings.TrimSpace(fragment) == "" {
		return &CustomLogicError{CheckID: checkID, Err: fmt.Errorf("fragment is empty")}
	}

	module := wrapFragment(fragment)

	query := rego.New(
		rego.Query("data.valvo.logic.result"),
		rego.Module(checkID, module),
		rego.StrictBuiltinErrors(true),
	)

	prepared, err := query.PrepareForEval(ctx)
	if err != nil {
		e.logger.WithContext(ctx).Error().
			Err(err).
			Str("check_id", checkID).
			Msg("failed to compile custom logic")
		return &CustomLogicError{CheckID: checkID, Err: err}
	}

	e.prepared[checkID] = prepared

	e.logger.WithContext(ctx).Debug().
		Str("check_id", checkID).
		Msg("custom logic compiled")

	return nil
}

// Run evaluates the compiled fragment for one resource. Any evaluation
// failure is reported as a CustomLogicError, never propagated to crash the
// batch.
func (e *Executor) Run(ctx context.Context, checkID string, fetched, config any) (bool, error) {
	ctx, span := e.tracer.Start(ctx, "logic_executor.run",
		trace.WithAttributes(attribute.String("check.id", checkID)))
	defer span.End()

	prepared, ok := e.prepared[checkID]
	if !ok {
		return false, &CustomLogicError{CheckID: checkID, Err: fmt.Errorf("fragment was not compiled")}
	}

	evalCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	input := map[string]any{
		"fetched_value": fetched,
		"config_value":  config,
	}

	results, err := prepared.Eval(evalCtx, rego.EvalInput(input))
	if err != nil {
		e.logger.WithContext(ctx).Warn().
			Err(err).
			Str("check_id", checkID).
			Msg("custom logic evaluation failed")
		return false, &CustomLogicError{CheckID: checkID, Err: err}
	}

	return resultBool(checkID, results)
}

func resultBool(checkID string, results rego.ResultSet) (bool, error) {
	if len(results) == 0 || len(results[0].Expressions) == 0 {
		// default result := false makes this unreachable for compiled
		// fragments, but a defined verdict beats a panic.
		return false, nil
	}

	verdict, ok := results[0].Expressions[0].Value.(bool)
	if !ok {
		return false, &CustomLogicError{
			CheckID: checkID,
			Err:     fmt.Errorf("result is %T, want boolean", results[0].Expressions[0].Value),
		}
	}
	return verdict, nil
}

// wrapFragment builds the module around a user fragment. The fragment is the
// body of the result rule; fetched_value and config_value are bound from the
// evaluation input.
func wrapFragment(fragment string) string {
	var b strings.Builder
	b.WriteString("package valvo.logic\n\n")
	b.WriteString("import rego.v1\n\n")
	b.WriteString("fetched_value := input.fetched_value\n\n")
	b.WriteString("config_value := input.config_value\n\n")
	b.WriteString("default result := false\n\n")
	b.WriteString("result if {\n")
	for _, line := range strings.Split(fragment, "\n") {
		b.WriteString("\t")
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("}\n")
	return b.String()
}
