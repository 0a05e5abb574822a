package account

import (
	"context"
	"sync"
)

// keyedLocker serializes callers per account id. Distinct ids never contend.
type keyedLocker struct {
	mu    sync.Mutex
	locks map[int64]*keyLock
}

type keyLock struct {
	sem  chan struct{}
	refs int
}

func newKeyedLocker() *keyedLocker {
	return &keyedLocker{locks: make(map[int64]*keyLock)}
}

// Lock blocks until id is free or ctx is done. The returned func releases it.
func (l *keyedLocker) Lock(ctx context.Context, id int64) (func(), error) {
	l.mu.Lock()
	kl, ok := l.locks[id]
	if !ok {
		kl = &keyLock{sem: make(chan struct{}, 1)}
		l.locks[id] = kl
	}
	kl.refs++
	l.mu.Unlock()

	select {
	case kl.sem <- struct{}{}:
		return func() {
			<-kl.sem
			l.release(id, kl)
		}, nil
	case <-ctx.Done():
		l.release(id, kl)
		return nil, ctx.Err()
	}
}

func (l *keyedLocker) release(id int64, kl *keyLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	kl.refs--
	if kl.refs == 0 {
		delete(l.locks, id)
	}
}

func (l *keyedLocker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
