package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"apotek/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	mu     sync.Mutex
	tokens []string
	err    error
}

func (s *recordingSender) Send(ctx context.Context, token, title, body string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = append(s.tokens, token)
	if s.err != nil {
		return false, s.err
	}
	return true, nil
}

func TestPushNotifier_SendsToDeviceToken(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	withToken := seedUser(t, store, "ana")
	withToken.DeviceToken = ptr("device-1")
	require.NoError(t, store.Users().UpdateColumns(ctx, withToken, []string{"device_token"}))
	withoutToken := seedUser(t, store, "budi")

	sender := &recordingSender{}
	n := services.NewPushNotifier(store.Users(), sender, time.Second)
	n.NotifyUser(withToken.ID, "Order Update", "Your order #1 status: confirmed")
	n.NotifyUser(withoutToken.ID, "Order Update", "ignored")
	n.NotifyUser("missing", "Order Update", "ignored")
	n.Wait()

	assert.Equal(t, []string{"device-1"}, sender.tokens)
}

func TestPushNotifier_FailuresAreSwallowed(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	user := seedUser(t, store, "ana")
	user.DeviceToken = ptr("device-1")
	require.NoError(t, store.Users().UpdateColumns(ctx, user, []string{"device_token"}))

	sender := &recordingSender{err: errors.New("fcm down")}
	n := services.NewPushNotifier(store.Users(), sender, time.Second)
	assert.NotPanics(t, func() {
		n.NotifyUser(user.ID, "Order Delivered", "done")
		n.Wait()
	})
	assert.Len(t, sender.tokens, 1)
}

func TestPushNotifier_NilSenderIsNoop(t *testing.T) {
	n := services.NewPushNotifier(nil, nil, 0)
	n.NotifyUser("u1", "t", "b")
	n.Wait()
}
