package engagement

import "sync"

type pairKey struct {
	account, document int64
}

// KeyLimiter не даёт двум запросам одного аккаунта к одной книге выполняться одновременно.
// Мьютекс удаляется из карты, когда его больше никто не ждёт.
type KeyLimiter struct {
	mu    sync.Mutex
	byKey map[pairKey]*keyLock
}

type keyLock struct {
	sync.Mutex
	waiters int
}

func NewKeyLimiter() *KeyLimiter {
	return &KeyLimiter{byKey: make(map[pairKey]*keyLock)}
}

func (l *KeyLimiter) lock(accountID, documentID int64) func() {
	k := pairKey{accountID, documentID}
	l.mu.Lock()
	m, ok := l.byKey[k]
	if !ok {
		m = &keyLock{}
		l.byKey[k] = m
	}
	m.waiters++
	l.mu.Unlock()

	m.Lock()
	return func() {
		m.Unlock()
		l.mu.Lock()
		m.waiters--
		if m.waiters == 0 {
			delete(l.byKey, k)
		}
		l.mu.Unlock()
	}
}

func (l *KeyLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.byKey)
}
