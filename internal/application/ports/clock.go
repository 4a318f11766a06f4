package ports

import "time"

// Clock supplies the current instant. Injected so lifecycle derivation
// and the decision engine stay deterministic under test.
type Clock interface {
	Now() time.Time
}
