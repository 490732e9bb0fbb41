package services

import (
	"context"
	"sync"
	"time"

	"apotek/internal/metrics"
	"apotek/internal/repositories"

	"github.com/rs/zerolog/log"
)

const defaultNotifyTimeout = 5 * time.Second

// Notifier delivers a best-effort message to a user. Implementations must
// not block the caller and must never report failure back.
type Notifier interface {
	NotifyUser(userID, title, body string)
}

// PushSender sends a push message to a device. ok is false when the
// provider did not accept the message.
type PushSender interface {
	Send(ctx context.Context, deviceToken, title, body string) (ok bool, err error)
}

// PushNotifier resolves the user's device token and sends on a separate
// goroutine, bounded by a timeout.
type PushNotifier struct {
	users   repositories.UserRepository
	sender  PushSender
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewPushNotifier creates a new PushNotifier. A nil sender disables delivery.
func NewPushNotifier(users repositories.UserRepository, sender PushSender, timeout time.Duration) *PushNotifier {
	if timeout <= 0 {
		timeout = defaultNotifyTimeout
	}
	return &PushNotifier{users: users, sender: sender, timeout: timeout}
}

// NotifyUser returns immediately.
func (n *PushNotifier) NotifyUser(userID, title, body string) {
	if n.sender == nil {
		return
	}
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
		defer cancel()
		n.deliver(ctx, userID, title, body)
	}()
}

// Wait blocks until every in-flight notification has finished.
func (n *PushNotifier) Wait() {
	n.wg.Wait()
}

func (n *PushNotifier) deliver(ctx context.Context, userID, title, body string) {
	user, err := n.users.GetByID(ctx, userID)
	if err != nil {
		metrics.Notifications.WithLabelValues("failed").Inc()
		log.Warn().Err(err).Str("user_id", userID).Msg("Notification skipped: user lookup failed")
		return
	}
	if user.DeviceToken == nil || *user.DeviceToken == "" {
		metrics.Notifications.WithLabelValues("skipped").Inc()
		return
	}

	ok, err := n.sender.Send(ctx, *user.DeviceToken, title, body)
	switch {
	case err != nil:
		metrics.Notifications.WithLabelValues("failed").Inc()
		log.Warn().Err(err).Str("user_id", userID).Str("title", title).Msg("Failed to send push notification")
	case !ok:
		metrics.Notifications.WithLabelValues("rejected").Inc()
		log.Warn().Str("user_id", userID).Str("title", title).Msg("Push notification rejected")
	default:
		metrics.Notifications.WithLabelValues("sent").Inc()
		log.Debug().Str("user_id", userID).Str("title", title).Msg("Push notification sent")
	}
}
