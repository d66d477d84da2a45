package assessment

import "sync"

// clientMutex hands out one lock per client ID so a read-modify-write of a
// client's risk record never interleaves with another in this process.
// Entries are dropped when the last holder releases, keeping the map bounded
// by in-flight assessments rather than by client count.
type clientMutex struct {
	mu    sync.Mutex
	locks map[string]*clientLock
}

type clientLock struct {
	sync.Mutex
	refs int
}

func newClientMutex() *clientMutex {
	return &clientMutex{locks: make(map[string]*clientLock)}
}

// lock blocks until the caller holds the client's lock and returns the
// matching release function.
func (m *clientMutex) lock(key string) func() {
	m.mu.Lock()
	l, ok := m.locks[key]
	if !ok {
		l = &clientLock{}
		m.locks[key] = l
	}
	l.refs++
	m.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		m.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(m.locks, key)
		}
		m.mu.Unlock()
	}
}
