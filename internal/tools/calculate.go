package tools

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"http-mcp-server/internal/calc"
)

const allowedOperationChars = "0123456789+-*/.()"

type calculateTool struct{}

// NewCalculate returns the calculate_operation tool.
func NewCalculate() Tool { return calculateTool{} }

func (calculateTool) Descriptor() Descriptor {
	return Descriptor{
		Name:        "calculate_operation",
		Description: "Perform mathematical calculations (+, -, *, /)",
		InputSchema: Schema{
			Type: "object",
			Properties: map[string]Property{
				"operation": {
					Type:        "string",
					Description: "Math operation like '2+2', '10*5', '(3+4)/2'",
				},
			},
			Required: []string{"operation"},
		},
	}
}

func (calculateTool) Execute(_ context.Context, args Arguments) (string, error) {
	op, _, err := args.String("operation")
	if err != nil {
		return "", err
	}
	if op == "" {
		return "", Failf(KindMissingArgument, "Operation parameter is required")
	}
	if !onlyAllowed(op) {
		return "", Failf(KindInvalidArgument, "Operation contains unsafe characters")
	}

	v, err := calc.Eval(op)
	if err != nil {
		return "", &Failure{
			Kind:    KindEvaluation,
			Message: fmt.Sprintf("Calculation failed: %v", err),
			Err:     err,
		}
	}
	return fmt.Sprintf("Calculation: %s = %s", op, calc.Format(v)), nil
}

// onlyAllowed reports whether s, ignoring whitespace, uses only digits,
// arithmetic operators, the decimal point and parentheses.
func onlyAllowed(s string) bool {
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		if !strings.ContainsRune(allowedOperationChars, r) {
			return false
		}
	}
	return true
}
