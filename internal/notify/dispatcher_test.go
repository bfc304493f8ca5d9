package notify_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"dough-store/internal/notify"
)

type notifierStub struct {
	mu     sync.Mutex
	seen   []notify.OrderNotice
	notify func(ctx context.Context, n notify.OrderNotice) error
}

func (s *notifierStub) Notify(ctx context.Context, n notify.OrderNotice) error {
	s.mu.Lock()
	s.seen = append(s.seen, n)
	s.mu.Unlock()
	if s.notify != nil {
		return s.notify(ctx, n)
	}
	return nil
}

func TestDispatcher_DeliversAll(t *testing.T) {
	stub := &notifierStub{}
	d := notify.NewDispatcher(stub, time.Second)

	d.Dispatch(notice(notify.KindOrderConfirmation), notice(notify.KindOwnerAlert))
	d.Wait()

	require.Len(t, stub.seen, 2)
}

func TestDispatcher_FailureIsLogged(t *testing.T) {
	hook := logtest.NewGlobal()
	defer hook.Reset()

	stub := &notifierStub{notify: func(ctx context.Context, n notify.OrderNotice) error {
		_, ok := ctx.Deadline()
		require.True(t, ok)
		return errors.New("smtp down")
	}}
	d := notify.NewDispatcher(stub, time.Second)

	d.Dispatch(notice(notify.KindOwnerAlert))
	d.Wait()

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	require.Equal(t, log.WarnLevel, entry.Level)
	require.Equal(t, "notification failed", entry.Message)
	require.Equal(t, notify.KindOwnerAlert, entry.Data["kind"])
}
