// internal/dispatch/dispatch.go
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/tamzrod/solax-monitor/internal/alert"
)

// ErrNoAlerter is returned for alert intents when no webhook is configured.
var ErrNoAlerter = errors.New("dispatch: no alert channel configured")

type dispatcherImpl struct {
	alerter    Alerter
	shutdowner Shutdowner
	powerOner  PowerOner
}

// New wires the side-effect collaborators. Any of them may be nil;
// intents for a missing collaborator fail with an error.
func New(a Alerter, s Shutdowner, p PowerOner) Dispatcher {
	return &dispatcherImpl{
		alerter:    a,
		shutdowner: s,
		powerOner:  p,
	}
}

func (d *dispatcherImpl) Dispatch(ctx context.Context, in alert.Intent) error {
	switch in.Kind {
	case alert.KindSendAlert:
		return d.sendAlert(ctx, in)
	case alert.KindShutdownHosts:
		return d.shutdownHosts(ctx, in)
	case alert.KindPowerOnHosts:
		return d.powerOnHosts(ctx, in)
	default:
		return fmt.Errorf("dispatch: unsupported intent kind %d", in.Kind)
	}
}

func (d *dispatcherImpl) sendAlert(ctx context.Context, in alert.Intent) error {
	if d.alerter == nil {
		return ErrNoAlerter
	}
	if err := d.alerter.Send(ctx, in.Message); err != nil {
		return fmt.Errorf("dispatch: alert failed (incident=%s): %w", in.Incident, err)
	}
	log.Printf("alert sent (incident=%s)", in.Incident)
	return nil
}

// ------------------------------------------------------------
// HOST ACTIONS
// Every host is attempted; one failure never skips the rest.
// ------------------------------------------------------------

func (d *dispatcherImpl) shutdownHosts(ctx context.Context, in alert.Intent) error {
	if d.shutdowner == nil {
		return errors.New("dispatch: no shutdown executor configured")
	}

	var errs []string
	for _, host := range in.ShutdownHosts {
		if err := d.shutdowner.Shutdown(ctx, host); err != nil {
			errs = append(errs, fmt.Sprintf(
				"shutdown host=%s err=%v",
				host, err,
			))
			continue
		}
		log.Printf("shutdown initiated (host=%s incident=%s)", host, in.Incident)
	}
	return joinErrs(errs)
}

func (d *dispatcherImpl) powerOnHosts(ctx context.Context, in alert.Intent) error {
	if d.powerOner == nil {
		return errors.New("dispatch: no power-on executor configured")
	}

	var errs []string
	for _, host := range in.PowerOnHosts {
		if err := d.powerOner.PowerOn(ctx, host); err != nil {
			errs = append(errs, fmt.Sprintf(
				"power_on host=%s err=%v",
				host.Address, err,
			))
			continue
		}
		log.Printf("power-on sent (host=%s incident=%s)", host.Address, in.Incident)
	}
	return joinErrs(errs)
}

func joinErrs(errs []string) error {
	if len(errs) == 0 {
		return nil
	}
	return errors.New(strings.Join(errs, " | "))
}
