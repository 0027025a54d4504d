package matching

import "errors"

// Sentinel errors for the recoverable kinds in spec §7. Checked with
// errors.Is, never by comparing err.Error() strings (a defect the repello
// reference example fell into in its HTTP handlers).
var (
	ErrInvalidRequest        = errors.New("invalid request")
	ErrNoLiquidity           = errors.New("no liquidity available")
	ErrInsufficientLiquidity = errors.New("insufficient liquidity")
	ErrNotFound              = errors.New("not found")
)

// invariant panics with a descriptive message. It is called only from paths
// spec §7 calls Internal: violations that must never occur in correct code
// and are worth a hard abort to aid debugging. The engine's consumer loop
// (internal/engine) deliberately does not recover these panics.
func invariant(cond bool, msg string) {
	if !cond {
		panic("matching: invariant violated: " + msg)
	}
}
