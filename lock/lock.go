package lock

import (
	"context"
	"sync"
)

// Locker serializes work on a key. Submissions for the same application identity
// hold the identity's lock while they replace its folder.
type Locker interface {
	// Acquire blocks until the lock for key is held or ctx is done. The returned
	// function releases the lock, it must be called exactly once.
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// keyLock is a lock for one key, held in LocalLocker
type keyLock struct {
	// sem holds a token while the lock is held
	sem chan struct{}

	// waiters counts goroutines holding or waiting for sem
	waiters int
}

// LocalLocker is an in-process Locker. It only serializes work within a single
// replica of the service.
type LocalLocker struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

// NewLocalLocker creates a LocalLocker
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{
		locks: map[string]*keyLock{},
	}
}

// Acquire implements Locker
func (l *LocalLocker) Acquire(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	kl, ok := l.locks[key]
	if !ok {
		kl = &keyLock{sem: make(chan struct{}, 1)}
		l.locks[key] = kl
	}
	kl.waiters++
	l.mu.Unlock()

	select {
	case kl.sem <- struct{}{}:
	case <-ctx.Done():
		l.forget(key, kl)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-kl.sem
			l.forget(key, kl)
		})
	}, nil
}

// forget drops a waiter and removes the key once nobody uses it
func (l *LocalLocker) forget(key string, kl *keyLock) {
	l.mu.Lock()
	defer l.mu.Unlock()

	kl.waiters--
	if kl.waiters == 0 {
		delete(l.locks, key)
	}
}

// size returns the number of keys being tracked
func (l *LocalLocker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.locks)
}
