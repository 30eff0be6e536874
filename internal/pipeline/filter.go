package pipeline

import (
	"context"

	"github.com/sells-group/newsletter-cli/internal/model"
	"github.com/sells-group/newsletter-cli/internal/verify"
)

// KeepPolicy controls which canonical records survive the completeness
// filter. With CompleteOnly off every record is kept and completeness is
// reported as metadata only.
type KeepPolicy struct {
	CompleteOnly bool
	Verifier     verify.Verifier // nil: syntactic validity from normalization suffices
}

// Keep reports whether n should be handed to the sinks under the policy.
func Keep(ctx context.Context, n model.Newsletter, policy KeepPolicy) bool {
	if !policy.CompleteOnly {
		return true
	}
	if !n.Complete {
		return false
	}
	if policy.Verifier != nil && !policy.Verifier.Verify(ctx, n.Email) {
		return false
	}
	return true
}
