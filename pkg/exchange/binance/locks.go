package binance

import (
	"sync"

	"userstream/pkg/core"
)

// locker serializes credential resolution and dispatch.
type locker interface {
	lock(streamID string) (unlock func())
}

// clientLock gives every call on the client a total order.
type clientLock struct {
	mu sync.Mutex
}

func (l *clientLock) lock(string) func() {
	l.mu.Lock()
	return l.mu.Unlock
}

// streamLock orders calls per stream id; different streams run concurrently.
type streamLock struct {
	locks sync.Map
}

func (l *streamLock) lock(streamID string) func() {
	v, _ := l.locks.LoadOrStore(streamID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func newLocker(mode core.LockMode) locker {
	if mode == core.LockPerStream {
		return &streamLock{}
	}
	return &clientLock{}
}
