package llm

import "context"

type purposeKey struct{}

// PurposeStepHint labels requests that explain a lesson step.
const PurposeStepHint = "step-hint"

// WithPurpose labels requests made with ctx in the request log.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey{}, purpose)
}

func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey{}).(string); ok {
		return v
	}
	return "unknown"
}
