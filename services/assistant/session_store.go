// File: services/assistant/session_store.go
package assistant

import (
	"sync"
	"time"

	"github.com/Elegant-AI-Elsa/Fuzzy-Backend-updated/models"

	"go.uber.org/zap"
)

// SessionStore holds per-conversation state. Sessions live in memory for the
// process lifetime; the store only guarantees safe create-or-fetch, while
// turn processing for a given session is serialized via Acquire.
type SessionStore interface {
	// Acquire returns the session (creating it on first reference) with its
	// turn lock held. The returned release func must be called when the turn
	// is done. Turns for different sessions proceed in parallel.
	Acquire(id string) (*models.Session, func())

	// ApplyFieldUpdates merges non-empty values into the session's slots.
	// A filled field is never overwritten with an empty value.
	ApplyFieldUpdates(id string, updates map[string]string)

	// CompleteBooking copies the contact into the session's confirmed-contact
	// memory, records the confirmed timing, and resets the slots for future
	// updates. Only called after a successful persistence action.
	CompleteBooking(id string, contact models.ContactDetails, timing string)

	AppendTurn(id string, turn models.ChatTurn)

	Clear(id string) bool
	ClearAll() int
	Count() int
	Summaries() []models.SessionSummary
}

type sessionEntry struct {
	// turnMu serializes whole turns for one session.
	turnMu sync.Mutex
	// dataMu guards short reads/writes that may race with admin views.
	dataMu  sync.Mutex
	session *models.Session
}

// MemorySessionStore is the in-memory SessionStore implementation.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*sessionEntry
	ttl      time.Duration
	logger   *zap.Logger
}

// NewMemorySessionStore creates an empty store. ttl bounds how long an idle
// session is kept; zero disables eviction.
func NewMemorySessionStore(ttl time.Duration, logger *zap.Logger) *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]*sessionEntry),
		ttl:      ttl,
		logger:   logger,
	}
}

func (st *MemorySessionStore) entry(id string) *sessionEntry {
	st.mu.RLock()
	e, ok := st.sessions[id]
	st.mu.RUnlock()
	if ok {
		return e
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if e, ok = st.sessions[id]; ok {
		return e
	}
	now := time.Now()
	e = &sessionEntry{
		session: &models.Session{
			ID:           id,
			Slots:        make(map[string]string),
			CreatedAt:    now,
			LastActiveAt: now,
		},
	}
	st.sessions[id] = e
	return e
}

// Acquire implements SessionStore.
func (st *MemorySessionStore) Acquire(id string) (*models.Session, func()) {
	e := st.entry(id)
	e.turnMu.Lock()
	e.dataMu.Lock()
	e.session.LastActiveAt = time.Now()
	e.dataMu.Unlock()
	return e.session, e.turnMu.Unlock
}

// ApplyFieldUpdates implements SessionStore.
func (st *MemorySessionStore) ApplyFieldUpdates(id string, updates map[string]string) {
	e := st.entry(id)
	e.dataMu.Lock()
	defer e.dataMu.Unlock()
	for _, field := range models.SlotFields() {
		v, ok := updates[field]
		if !ok || v == "" {
			continue
		}
		e.session.Slots[field] = v
	}
}

// CompleteBooking implements SessionStore.
func (st *MemorySessionStore) CompleteBooking(id string, contact models.ContactDetails, timing string) {
	e := st.entry(id)
	e.dataMu.Lock()
	defer e.dataMu.Unlock()
	e.session.ConfirmedContact = &contact
	e.session.LastAppointmentTiming = timing
	e.session.Slots = make(map[string]string)
}

// AppendTurn implements SessionStore.
func (st *MemorySessionStore) AppendTurn(id string, turn models.ChatTurn) {
	e := st.entry(id)
	e.dataMu.Lock()
	defer e.dataMu.Unlock()
	e.session.History = append(e.session.History, turn)
	e.session.LastActiveAt = time.Now()
}

// Clear removes one session, reporting whether it existed.
func (st *MemorySessionStore) Clear(id string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.sessions[id]; !ok {
		return false
	}
	delete(st.sessions, id)
	return true
}

// ClearAll removes every session and returns the number removed.
func (st *MemorySessionStore) ClearAll() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	n := len(st.sessions)
	st.sessions = make(map[string]*sessionEntry)
	return n
}

// Count returns the number of live sessions.
func (st *MemorySessionStore) Count() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Summaries returns an admin view of every session.
func (st *MemorySessionStore) Summaries() []models.SessionSummary {
	st.mu.RLock()
	entries := make([]*sessionEntry, 0, len(st.sessions))
	for _, e := range st.sessions {
		entries = append(entries, e)
	}
	st.mu.RUnlock()

	out := make([]models.SessionSummary, 0, len(entries))
	for _, e := range entries {
		e.dataMu.Lock()
		s := e.session
		filled := 0
		for _, f := range models.SlotFields() {
			if s.Slots[f] != "" {
				filled++
			}
		}
		out = append(out, models.SessionSummary{
			ID:           s.ID,
			Turns:        len(s.History),
			SlotsFilled:  filled,
			HasConfirmed: s.ConfirmedContact != nil,
			CreatedAt:    s.CreatedAt,
			LastActiveAt: s.LastActiveAt,
		})
		e.dataMu.Unlock()
	}
	return out
}

// StartJanitor evicts sessions idle past the configured TTL. Sessions whose
// turn lock is held are skipped and picked up on a later sweep.
func (st *MemorySessionStore) StartJanitor(interval time.Duration) {
	if st.ttl <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for range ticker.C {
			st.sweep()
		}
	}()
}

func (st *MemorySessionStore) sweep() {
	cutoff := time.Now().Add(-st.ttl)

	st.mu.Lock()
	defer st.mu.Unlock()
	for id, e := range st.sessions {
		if !e.turnMu.TryLock() {
			continue
		}
		e.dataMu.Lock()
		idle := e.session.LastActiveAt.Before(cutoff)
		e.dataMu.Unlock()
		e.turnMu.Unlock()

		if idle {
			delete(st.sessions, id)
			if st.logger != nil {
				st.logger.Debug("evicted idle session", zap.String("session_id", id))
			}
		}
	}
}
