package mirror

import (
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

// PGNotifier adapts a Postgres LISTEN/NOTIFY channel to the Notifier
// interface. The schedules table carries a trigger that calls pg_notify on
// every insert, update and delete, so each signal here means "the collection
// changed in some way".
type PGNotifier struct {
	listener      *pq.Listener
	notifications chan struct{}
	errs          chan error
	done          chan struct{}
}

// NewPGNotifier opens a listener on the given channel. Establishment
// failures are returned immediately so the caller can surface them as a
// recoverable condition instead of silently running without updates.
func NewPGNotifier(databaseURL, channel string, minReconnect, maxReconnect time.Duration, logger *logrus.Logger) (*PGNotifier, error) {
	n := &PGNotifier{
		notifications: make(chan struct{}, 1),
		errs:          make(chan error, 1),
		done:          make(chan struct{}),
	}

	n.listener = pq.NewListener(databaseURL, minReconnect, maxReconnect, func(event pq.ListenerEventType, err error) {
		switch event {
		case pq.ListenerEventConnected, pq.ListenerEventReconnected:
			logger.WithField("channel", channel).Info("Schedule change listener connected")
			// A reconnect may have missed notifications; force a refresh.
			n.signal()
		case pq.ListenerEventDisconnected:
			logger.WithError(err).Warn("Schedule change listener disconnected, retrying")
		case pq.ListenerEventConnectionAttemptFailed:
			logger.WithError(err).Warn("Schedule change listener reconnect attempt failed")
		}
	})

	if err := n.listener.Listen(channel); err != nil {
		n.listener.Close()
		return nil, fmt.Errorf("failed to listen on channel %s: %w", channel, err)
	}

	go n.pump()

	return n, nil
}

// pump coalesces raw notifications into the signal channel. A pending
// signal is enough; the mirror re-reads the full snapshot either way.
func (n *PGNotifier) pump() {
	for {
		select {
		case <-n.done:
			return
		case notification, ok := <-n.listener.Notify:
			if !ok {
				select {
				case n.errs <- fmt.Errorf("notification channel closed"):
				default:
				}
				return
			}
			// A nil notification means the connection was re-established.
			_ = notification
			n.signal()
		}
	}
}

func (n *PGNotifier) signal() {
	select {
	case n.notifications <- struct{}{}:
	default:
	}
}

// Notifications implements Notifier
func (n *PGNotifier) Notifications() <-chan struct{} {
	return n.notifications
}

// Err implements Notifier
func (n *PGNotifier) Err() <-chan error {
	return n.errs
}

// Close stops the listener. Safe to call more than once.
func (n *PGNotifier) Close() error {
	select {
	case <-n.done:
		return nil
	default:
		close(n.done)
	}
	return n.listener.Close()
}
