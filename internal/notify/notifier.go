package notify

import "context"

// Notifier delivers a user-facing message. Delivery is fire-and-forget:
// implementations never report failure to the caller.
type Notifier interface {
	Error(ctx context.Context, message string)
}

// Multi fans a message out to every notifier in order.
type Multi []Notifier

func (m Multi) Error(ctx context.Context, message string) {
	for _, n := range m {
		n.Error(ctx, message)
	}
}
