// internal/dispatch/types.go
package dispatch

import (
	"context"

	"github.com/tamzrod/solax-monitor/internal/alert"
)

// Alerter delivers one human-readable message.
type Alerter interface {
	Send(ctx context.Context, msg string) error
}

// Shutdowner powers one host off.
type Shutdowner interface {
	Shutdown(ctx context.Context, host string) error
}

// PowerOner asks one management controller to power its server on.
type PowerOner interface {
	PowerOn(ctx context.Context, host alert.PowerOnHost) error
}

// Dispatcher performs the side effects an alert intent requests.
// Failures are reported, never retried.
type Dispatcher interface {
	Dispatch(ctx context.Context, in alert.Intent) error
}
