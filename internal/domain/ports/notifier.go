package ports

import "context"

// Notifier is the host framework's user-feedback surface. Throw is the blocking
// error primitive, Msgprint the non-blocking message primitive.
type Notifier interface {
	Throw(ctx context.Context, message, title string)
	Msgprint(ctx context.Context, message, title, indicator string, alert bool)
}
