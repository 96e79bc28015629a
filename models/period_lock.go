package models

import (
	"fmt"
	"sync"
)

// Period transitions and postings into the same (year, month) must serialize.
// Balances are derived at read time so account rows never race; the period
// status check is the one read-modify-write that needs an exclusive section.
var (
	periodLocksMu sync.Mutex
	periodLocks   = map[string]*sync.Mutex{}
)

func periodLock(year, month int) *sync.Mutex {
	key := fmt.Sprintf("%04d-%02d", year, month)

	periodLocksMu.Lock()
	defer periodLocksMu.Unlock()

	if lock, found := periodLocks[key]; found {
		return lock
	}

	lock := &sync.Mutex{}
	periodLocks[key] = lock

	return lock
}

func WithPeriodLock(year, month int, fn func() error) error {
	lock := periodLock(year, month)
	lock.Lock()
	defer lock.Unlock()

	return fn()
}

// WithYearLock holds all twelve period locks of a year, in month order, for
// the duration of fn. The year closing process uses it so no period can
// transition underneath the closing computation.
func WithYearLock(year int, fn func() error) error {
	locks := make([]*sync.Mutex, 0, 12)
	for month := 1; month <= 12; month++ {
		locks = append(locks, periodLock(year, month))
	}

	for _, lock := range locks {
		lock.Lock()
	}
	defer func() {
		for i := len(locks) - 1; i >= 0; i-- {
			locks[i].Unlock()
		}
	}()

	return fn()
}
