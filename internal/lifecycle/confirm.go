package lifecycle

import "context"

// Confirmer is the external yes/no prompt collaborator gating key
// deletion.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// ConfirmerFunc adapts a function to the Confirmer interface.
type ConfirmerFunc func(ctx context.Context, prompt string) (bool, error)

// Confirm implements Confirmer.
func (f ConfirmerFunc) Confirm(ctx context.Context, prompt string) (bool, error) {
	return f(ctx, prompt)
}

// confirmContextKey is the context key carrying a caller's confirmation.
type confirmContextKey struct{}

// WithConfirmation records the caller's answer to the deletion prompt
// in the context. The HTTP layer sets this from the request.
func WithConfirmation(ctx context.Context, confirmed bool) context.Context {
	return context.WithValue(ctx, confirmContextKey{}, confirmed)
}

// ContextConfirmer reads the confirmation answer from the context.
// Absent a recorded answer, it denies.
type ContextConfirmer struct{}

// Confirm implements Confirmer.
func (ContextConfirmer) Confirm(ctx context.Context, prompt string) (bool, error) {
	confirmed, ok := ctx.Value(confirmContextKey{}).(bool)
	if !ok {
		return false, nil
	}
	return confirmed, nil
}
