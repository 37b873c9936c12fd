package session

import "sync"

type chatLock struct {
	mu   sync.Mutex
	refs int
}

// locker hands out one mutex per chat. Entries are dropped once no goroutine
// holds or waits for them.
type locker struct {
	mu    sync.Mutex
	chats map[int64]*chatLock
}

func newLocker() *locker {
	return &locker{chats: make(map[int64]*chatLock)}
}

func (l *locker) lock(chatID int64) func() {
	l.mu.Lock()
	cl, ok := l.chats[chatID]
	if !ok {
		cl = &chatLock{}
		l.chats[chatID] = cl
	}
	cl.refs++
	l.mu.Unlock()

	cl.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			cl.mu.Unlock()
			l.mu.Lock()
			cl.refs--
			if cl.refs == 0 {
				delete(l.chats, chatID)
			}
			l.mu.Unlock()
		})
	}
}
