package mirror

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/tawidapp/tawid-backend/internal/models"
)

// SnapshotSource loads the complete current schedule collection.
// Implemented by database.ScheduleRepository.
type SnapshotSource interface {
	Snapshot() ([]models.ScheduleRecord, error)
}

// Notifier delivers a signal whenever the remote collection changes in any
// way. The signal carries no payload; the mirror always re-reads the full
// snapshot. Err() reports an abnormal termination of the underlying channel.
type Notifier interface {
	Notifications() <-chan struct{}
	Err() <-chan error
	Close() error
}

// Mirror maintains a local ordered list that always reflects the latest
// known state of the remote schedule collection. On every change
// notification it republishes the complete snapshot to all subscribers,
// never a delta. The local list is a derived cache exclusively owned by the
// mirror; no other component writes it.
type Mirror struct {
	source   SnapshotSource
	notifier Notifier
	logger   *logrus.Logger

	mu      sync.RWMutex
	records []models.ScheduleRecord
	primed  bool
	subs    map[int]*subscription
	nextID  int
}

type subscription struct {
	onChange func([]models.ScheduleRecord)
	onError  func(error)
	errOnce  sync.Once
}

// New creates a mirror over an explicit source and notifier so tests can
// substitute fakes without global state.
func New(source SnapshotSource, notifier Notifier, logger *logrus.Logger) *Mirror {
	return &Mirror{
		source:   source,
		notifier: notifier,
		logger:   logger,
		subs:     make(map[int]*subscription),
	}
}

// Run loads the initial snapshot and then refreshes on every notification
// until ctx is cancelled. Cancelling ctx is the only way to stop the loop.
func (m *Mirror) Run(ctx context.Context) error {
	defer m.notifier.Close()

	if err := m.refresh(); err != nil {
		// No snapshot yet; subscribers see the failure once and the list
		// stays empty until a later refresh succeeds.
		m.logger.WithError(err).Error("Failed to load initial schedule snapshot")
		m.reportError(&models.SubscriptionError{Err: err})
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err, ok := <-m.notifier.Err():
			if !ok {
				continue
			}
			m.logger.WithError(err).Error("Schedule watch terminated abnormally")
			m.reportError(&models.SubscriptionError{Err: err})
			return err
		case _, ok := <-m.notifier.Notifications():
			if !ok {
				return nil
			}
			if err := m.refresh(); err != nil {
				// Keep the last-known snapshot; degrade to stale, not empty.
				m.logger.WithError(err).Error("Failed to refresh schedule snapshot")
				m.reportError(&models.SubscriptionError{Err: err})
				continue
			}
		}
	}
}

// refresh replaces the local list with the store's full current snapshot
// and republishes it to every subscriber.
func (m *Mirror) refresh() error {
	records, err := m.source.Snapshot()
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.records = records
	m.primed = true
	subs := make([]*subscription, 0, len(m.subs))
	for _, s := range m.subs {
		subs = append(subs, s)
	}
	m.mu.Unlock()

	for _, s := range subs {
		s.onChange(copyRecords(records))
	}
	return nil
}

// Records returns a copy of the last-known snapshot. It may be stale if the
// watch has failed; it is never partially updated.
func (m *Mirror) Records() []models.ScheduleRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return copyRecords(m.records)
}

// Subscribe registers a callback receiving the complete current snapshot on
// every change. If a snapshot is already available it is delivered
// immediately. The returned unsubscribe func is idempotent, and independent
// subscriptions do not affect one another. onError is invoked at most once
// per subscription if the watch fails.
func (m *Mirror) Subscribe(onChange func([]models.ScheduleRecord), onError func(error)) func() {
	if onError == nil {
		onError = func(error) {}
	}
	sub := &subscription{onChange: onChange, onError: onError}

	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = sub
	primed := m.primed
	current := copyRecords(m.records)
	m.mu.Unlock()

	if primed {
		onChange(current)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.subs, id)
			m.mu.Unlock()
		})
	}
}

// reportError delivers the failure to each subscriber at most once.
func (m *Mirror) reportError(err error) {
	m.mu.RLock()
	subs := make([]*subscription, 0, len(m.subs))
	for _, s := range m.subs {
		subs = append(subs, s)
	}
	m.mu.RUnlock()

	for _, s := range subs {
		s.errOnce.Do(func() {
			s.onError(err)
		})
	}
}

func copyRecords(records []models.ScheduleRecord) []models.ScheduleRecord {
	out := make([]models.ScheduleRecord, len(records))
	copy(out, records)
	return out
}
