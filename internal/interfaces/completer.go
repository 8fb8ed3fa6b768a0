package interfaces

import "context"

// Completer is a text-in/text-out language model. Model, temperature and
// token limits are fixed when the completer is built.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}
