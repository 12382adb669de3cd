package action

import (
	"fmt"

	"github.com/gha-utils/label-action/config"
)

// Operation is one of the supported label operations.
type Operation string

const (
	// OperationAdd appends labels to the target, keeping existing ones.
	OperationAdd Operation = "add"
	// OperationRemove removes one named label from the target.
	OperationRemove Operation = "remove"
	// OperationSet replaces the target's full label set.
	OperationSet Operation = "set"
	// OperationClear removes all labels from the target.
	OperationClear Operation = "clear"
)

// Operations lists every supported operation.
var Operations = []Operation{OperationAdd, OperationRemove, OperationSet, OperationClear}

// ParseOperation maps an operation name from the environment to its typed
// value. Anything outside the supported set is an error naming the operation.
func ParseOperation(name string) (Operation, error) {
	switch op := Operation(name); op {
	case OperationAdd, OperationRemove, OperationSet, OperationClear:
		return op, nil
	}
	if name == "" {
		return "", fmt.Errorf("%w: the 'operation' variable is missing from the environment", config.ErrMissingVariable)
	}
	return "", fmt.Errorf("unsupported operation: %s, supported operations are: %v", name, Operations)
}

// RequiresLabels reports whether the operation needs the labels variable.
// Only clear runs without one.
func (o Operation) RequiresLabels() bool {
	return o != OperationClear
}
