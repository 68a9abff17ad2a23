package mystorage

import (
	"net/http"
	"sync"

	"github.com/MarcGrol/storefront/lib/mycontext"
)

// Locker hands out one mutex per session so that the requests of a single
// visitor are handled one at a time.
type Locker struct {
	mutex sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	sync.Mutex
	waiters int
}

func NewLocker() *Locker {
	return &Locker{
		locks: map[string]*sessionLock{},
	}
}

// Lock blocks until the session is free and returns the matching unlock func.
func (l *Locker) Lock(sessionUID string) func() {
	l.mutex.Lock()
	lock, exists := l.locks[sessionUID]
	if !exists {
		lock = &sessionLock{}
		l.locks[sessionUID] = lock
	}
	lock.waiters++
	l.mutex.Unlock()

	lock.Lock()

	return func() {
		lock.Unlock()

		l.mutex.Lock()
		defer l.mutex.Unlock()
		lock.waiters--
		if lock.waiters == 0 {
			delete(l.locks, sessionUID)
		}
	}
}

func (l *Locker) size() int {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return len(l.locks)
}

// Middleware runs each request under the lock of the session found in its
// context. Requests without a session pass through.
func (l *Locker) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionUID := mycontext.SessionUIDFromContext(r.Context())
		if sessionUID == "" {
			next.ServeHTTP(w, r)
			return
		}

		unlock := l.Lock(sessionUID)
		defer unlock()

		next.ServeHTTP(w, r)
	})
}
