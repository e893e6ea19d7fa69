package binance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"userstream/pkg/core"
)

func TestNewLocker(t *testing.T) {
	assert.IsType(t, &clientLock{}, newLocker(core.LockPerClient))
	assert.IsType(t, &clientLock{}, newLocker(""))
	assert.IsType(t, &streamLock{}, newLocker(core.LockPerStream))
}

func TestClientLock_BlocksOtherStreams(t *testing.T) {
	l := newLocker(core.LockPerClient)
	unlock := l.lock("a")

	acquired := make(chan struct{})
	go func() {
		defer close(acquired)
		l.lock("b")()
	}()

	select {
	case <-acquired:
		t.Fatal("lock on another stream acquired while held")
	case <-time.After(50 * time.Millisecond):
	}

	unlock()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("lock not released")
	}
}

func TestStreamLock_IndependentStreams(t *testing.T) {
	l := newLocker(core.LockPerStream)
	unlock := l.lock("a")
	defer unlock()

	acquired := make(chan struct{})
	go func() {
		defer close(acquired)
		l.lock("b")()
	}()

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("stream b blocked by stream a")
	}
}

func TestStreamLock_SameStream(t *testing.T) {
	l := newLocker(core.LockPerStream)
	unlock := l.lock("a")

	acquired := make(chan struct{})
	go func() {
		defer close(acquired)
		l.lock("a")()
	}()

	select {
	case <-acquired:
		t.Fatal("same stream acquired twice")
	case <-time.After(50 * time.Millisecond):
	}

	unlock()
	<-acquired
}
