package notify

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"dough-store/internal/metrics"
)

// Dispatcher delivers notices in the background so callers never wait on,
// or fail because of, the messaging backend.
type Dispatcher struct {
	n       Notifier
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewDispatcher(n Notifier, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Dispatcher{n: n, timeout: timeout}
}

func (d *Dispatcher) Dispatch(notices ...OrderNotice) {
	for _, n := range notices {
		d.wg.Add(1)
		go func(n OrderNotice) {
			defer d.wg.Done()

			ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
			defer cancel()

			if err := d.n.Notify(ctx, n); err != nil {
				metrics.NotificationFailures.WithLabelValues(string(n.Kind)).Inc()
				logrus.WithError(err).WithFields(logrus.Fields{
					"order_id": n.OrderID,
					"kind":     n.Kind,
				}).Warn("notification failed")
			}
		}(n)
	}
}

// Wait blocks until every dispatched notice has been handled.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
