package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/localbookr/marketplace-backend/internal/metrics"
	"github.com/localbookr/marketplace-backend/internal/models"
	"github.com/localbookr/marketplace-backend/internal/realtime"
	"github.com/localbookr/marketplace-backend/pkg/email"
	"github.com/localbookr/marketplace-backend/pkg/push"
	"github.com/sirupsen/logrus"
)

// defaultDispatchTimeout bounds one asynchronous batch of effects
const defaultDispatchTimeout = 30 * time.Second

// RealtimePublisher fans an event out to a user's open connections
type RealtimePublisher interface {
	SendToUser(userID uuid.UUID, event realtime.Event) int
}

// Dispatcher performs the effects produced by booking operations. Each effect
// is attempted once; failures are logged and counted, never returned.
type Dispatcher struct {
	notifications NotificationStore
	email         email.Gateway
	push          push.Gateway
	realtime      RealtimePublisher
	metrics       *metrics.Metrics
	logger        *logrus.Logger
	timeout       time.Duration

	wg sync.WaitGroup
}

// DispatcherOption customises a Dispatcher
type DispatcherOption func(*Dispatcher)

// WithRealtime publishes stored notifications to connected clients
func WithRealtime(p RealtimePublisher) DispatcherOption {
	return func(d *Dispatcher) { d.realtime = p }
}

// WithMetrics counts effect outcomes
func WithMetrics(m *metrics.Metrics) DispatcherOption {
	return func(d *Dispatcher) { d.metrics = m }
}

// WithDispatchTimeout bounds asynchronous batches
func WithDispatchTimeout(timeout time.Duration) DispatcherOption {
	return func(d *Dispatcher) { d.timeout = timeout }
}

// NewDispatcher creates a dispatcher. Nil gateways fall back to no-ops.
func NewDispatcher(notifications NotificationStore, emailGateway email.Gateway, pushGateway push.Gateway, logger *logrus.Logger, opts ...DispatcherOption) *Dispatcher {
	if emailGateway == nil {
		emailGateway = email.NoopGateway{}
	}
	if pushGateway == nil {
		pushGateway = push.NoopGateway{}
	}

	d := &Dispatcher{
		notifications: notifications,
		email:         emailGateway,
		push:          pushGateway,
		logger:        logger,
		timeout:       defaultDispatchTimeout,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch performs every effect in order and returns the number that failed
func (d *Dispatcher) Dispatch(ctx context.Context, effects []Effect) int {
	failed := 0
	for _, effect := range effects {
		err := d.perform(ctx, effect)
		d.metrics.Effect(string(effect.Kind), err)
		if err != nil {
			failed++
			d.logger.WithFields(logrus.Fields{
				"effect": effect.Kind,
				"error":  err.Error(),
			}).Warn("Side effect delivery failed")
		}
	}
	return failed
}

// DispatchAsync performs the effects on a background goroutine that outlives
// the caller's request
func (d *Dispatcher) DispatchAsync(effects []Effect) {
	if len(effects) == 0 {
		return
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		d.Dispatch(ctx, effects)
	}()
}

// Wait blocks until all asynchronous batches have finished
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) perform(ctx context.Context, effect Effect) error {
	switch effect.Kind {
	case EffectNotify:
		return d.notify(ctx, effect)

	case EffectEmail:
		if effect.Assignment == nil {
			return fmt.Errorf("email effect without assignment")
		}
		return d.email.SendAssignment(ctx, *effect.Assignment)

	case EffectPush:
		if effect.Push == nil {
			return fmt.Errorf("push effect without message")
		}
		return d.push.Send(ctx, *effect.Push)

	default:
		return fmt.Errorf("unknown effect kind %q", effect.Kind)
	}
}

func (d *Dispatcher) notify(ctx context.Context, effect Effect) error {
	n := &models.Notification{
		UserID:  effect.UserID,
		Message: effect.Message,
		Type:    effect.Severity,
	}
	if err := d.notifications.Create(ctx, n); err != nil {
		return err
	}

	if d.realtime != nil {
		d.realtime.SendToUser(n.UserID, realtime.Event{Type: "notification", Data: n})
	}
	return nil
}
