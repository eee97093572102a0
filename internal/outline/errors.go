package outline

import "fmt"

// InconsistentError indicates a completed item still has incomplete sub-items.
type InconsistentError struct {
	Item Key
	Open []Key
}

func (e InconsistentError) Error() string {
	lines := make([]int, len(e.Open))
	for i, k := range e.Open {
		lines[i] = k.Line
	}
	return fmt.Sprintf("%s:%d is checked but has open sub-items on lines %v", e.Item.Source, e.Item.Line, lines)
}
