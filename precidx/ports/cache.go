package ports

import "context"

// VerdictCache memoizes judge verdicts for one run. Keys are composite
// (value + evidence digest); caches are passed in explicitly and scoped to a
// single batch, never process-wide.
type VerdictCache interface {
	Get(ctx context.Context, key string) (verdict bool, ok bool)
	Set(ctx context.Context, key string, verdict bool)
}
