// Package invariant holds the single fatal-assertion helper used across
// the storage core. Violations here indicate a programming error, not an
// expected failure, so they panic rather than return an error — the Go
// analogue of the original engine's Assert/ALWAYS_CHECK macros.
package invariant

import "fmt"

// Check panics with a formatted message if cond is false.
func Check(cond bool, format string, args ...interface{}) {
	if !cond {
		panic(fmt.Sprintf("nvmdb: invariant violation: "+format, args...))
	}
}
