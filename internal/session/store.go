package session

import (
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/edgard/calbot/internal/calendar"
	"github.com/edgard/calbot/internal/schedule"
)

const (
	pendingPrefix = "pending:"
	undoPrefix    = "undo:"
	previewPrefix = "preview:"
)

// Pending is a batch waiting for a yes/no answer because it conflicts with
// existing events.
type Pending struct {
	Events      []schedule.ResolvedEvent
	Conflicts   []calendar.Event
	Attribution calendar.Attribution
	CreatedAt   time.Time
}

// Store holds per-chat conversation state in memory. Pending batches expire
// after the configured TTL; undo buffers and clear previews never expire.
// State does not survive a restart.
type Store struct {
	cache      *cache.Cache
	pendingTTL time.Duration
}

// NewStore creates a store. A zero pendingTTL keeps pending batches until they
// are answered or superseded. cleanupInterval controls how often expired
// entries are purged; zero disables the janitor.
func NewStore(pendingTTL, cleanupInterval time.Duration) *Store {
	return &Store{
		cache:      cache.New(cache.NoExpiration, cleanupInterval),
		pendingTTL: pendingTTL,
	}
}

func key(prefix string, chatID int64) string {
	return prefix + strconv.FormatInt(chatID, 10)
}

// SetPending stores p for chatID, replacing any previous pending batch.
func (s *Store) SetPending(chatID int64, p Pending) {
	ttl := s.pendingTTL
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}
	s.cache.Set(key(pendingPrefix, chatID), p, ttl)
}

// Pending returns the live pending batch of chatID.
func (s *Store) Pending(chatID int64) (Pending, bool) {
	if x, found := s.cache.Get(key(pendingPrefix, chatID)); found {
		return x.(Pending), true
	}
	return Pending{}, false
}

// ClearPending drops the pending batch of chatID.
func (s *Store) ClearPending(chatID int64) {
	s.cache.Delete(key(pendingPrefix, chatID))
}

// SetUndo overwrites the undo buffer of chatID.
func (s *Store) SetUndo(chatID int64, events []calendar.Event) {
	s.cache.Set(key(undoPrefix, chatID), append([]calendar.Event(nil), events...), cache.NoExpiration)
}

// TakeUndo returns and clears the undo buffer of chatID. An empty buffer
// reports false.
func (s *Store) TakeUndo(chatID int64) ([]calendar.Event, bool) {
	k := key(undoPrefix, chatID)
	x, found := s.cache.Get(k)
	if !found {
		return nil, false
	}
	s.cache.Delete(k)
	events := x.([]calendar.Event)
	return events, len(events) > 0
}

// SetPreview records that chatID has previewed the clearing of day.
func (s *Store) SetPreview(chatID int64, day time.Time) {
	s.cache.Set(key(previewPrefix, chatID), day, cache.NoExpiration)
}

// TakePreview returns and clears the previewed day of chatID.
func (s *Store) TakePreview(chatID int64) (time.Time, bool) {
	k := key(previewPrefix, chatID)
	x, found := s.cache.Get(k)
	if !found {
		return time.Time{}, false
	}
	s.cache.Delete(k)
	return x.(time.Time), true
}

// Stats summarizes live state.
type Stats struct {
	Chats   int
	Pending int
	Undo    int
	Preview int
}

// Stats counts live entries. Expired pending batches are not counted.
func (s *Store) Stats() Stats {
	var st Stats
	chats := make(map[string]struct{})
	for k := range s.cache.Items() {
		prefix, id, ok := strings.Cut(k, ":")
		if !ok {
			continue
		}
		chats[id] = struct{}{}
		switch prefix + ":" {
		case pendingPrefix:
			st.Pending++
		case undoPrefix:
			st.Undo++
		case previewPrefix:
			st.Preview++
		}
	}
	st.Chats = len(chats)
	return st
}

// DeleteExpired purges expired entries immediately.
func (s *Store) DeleteExpired() {
	s.cache.DeleteExpired()
}
