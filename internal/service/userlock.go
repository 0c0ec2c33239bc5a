package service

import "sync"

// UserLocks hands out one mutex per user id so read-modify-write cart
// sequences and whole checkouts serialize per user without a process-wide
// lock. Mutexes are never freed; the map is bounded by the active user count.
type UserLocks struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func NewUserLocks() *UserLocks {
	return &UserLocks{locks: map[int64]*sync.Mutex{}}
}

func (l *UserLocks) Lock(userID int64) (unlock func()) {
	l.mu.Lock()
	m, ok := l.locks[userID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[userID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
