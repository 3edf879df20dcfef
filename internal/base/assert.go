package base

import "fmt"

// Assertf panics when cond is false. Used for programming-invariant
// violations; there is no recoverable error path for these.
func Assertf(cond bool, format string, args ...any) {
	if !cond {
		panic("entstore: internal invariant violated: " + fmt.Sprintf(format, args...))
	}
}
