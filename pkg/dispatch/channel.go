package dispatch

import "context"

// Channel is the distributor's channel-agnostic adapter contract (§4.3).
type Channel interface {
	Name() string
	Send(ctx context.Context, a Alert) (bool, error)
}
