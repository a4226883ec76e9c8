package session

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/qtc-soft/schedule-api/internal/entity"
	"github.com/qtc-soft/schedule-api/internal/metrics"
)

// ACLSource supplies the schedule ids a principal owns.  The schedule model
// provides the storage-backed implementation; tests use a fake.
type ACLSource interface {
	OwnedScheduleIDs(ctx context.Context, principalID int64) ([]int64, error)
}

// NoACL is the ACLSource for principals that own no schedules (customers).
type NoACL struct{}

func (NoACL) OwnedScheduleIDs(context.Context, int64) ([]int64, error) { return nil, nil }

// Store is the process-wide session table.  It is explicitly constructed in
// main and passed by handle into request-scoped objects; there is no hidden
// global.  All structural mutation happens under one RWMutex, reads take the
// shared lock.
type Store struct {
	mu sync.RWMutex
	// sessions per principal id, keyed by SID
	pool map[int64]map[string]*Session
	// reverse index SID -> principal id
	sids map[string]int64

	acl ACLSource
	log zerolog.Logger
}

// NewStore builds an empty session store.
func NewStore(acl ACLSource, log zerolog.Logger) *Store {
	return &Store{
		pool: make(map[int64]map[string]*Session),
		sids: make(map[string]int64),
		acl:  acl,
		log:  log.With().Str("component", "session").Logger(),
	}
}

// Create registers a new session for the principal row and returns it.  For
// an identifiable principal (id >= 0) the schedule ACL is computed eagerly
// so authorization checks issued right after login see correct ownership.
func (st *Store) Create(ctx context.Context, principal entity.Row) (*Session, error) {
	sid, err := newSID()
	if err != nil {
		return nil, err
	}
	s := newSession(principal, sid)

	if s.ID >= 0 && st.acl != nil {
		ids, err := st.acl.OwnedScheduleIDs(ctx, s.ID)
		if err != nil {
			return nil, err
		}
		s.setScheduleIDs(ids)
	}

	st.mu.Lock()
	if st.pool[s.ID] == nil {
		st.pool[s.ID] = make(map[string]*Session)
	}
	st.pool[s.ID][sid] = s
	st.sids[sid] = s.ID
	st.mu.Unlock()

	metrics.ActiveSessions.Inc()
	st.log.Debug().Int64("principal", s.ID).Str("login", s.Login).Msg("login")
	return s, nil
}

// GetByToken resolves a token to its session.  nil means not logged in;
// whether the token never existed or was destroyed is not distinguished.
func (st *Store) GetByToken(sid string) *Session {
	st.mu.RLock()
	defer st.mu.RUnlock()

	id, ok := st.sids[sid]
	if !ok {
		return nil
	}
	return st.pool[id][sid]
}

// Destroy removes the session and its reverse-index entry.  Destroying an
// absent token is a no-op.
func (st *Store) Destroy(sid string) {
	st.mu.Lock()
	id, ok := st.sids[sid]
	if ok {
		delete(st.pool[id], sid)
		if len(st.pool[id]) == 0 {
			delete(st.pool, id)
		}
		delete(st.sids, sid)
	}
	st.mu.Unlock()

	if ok {
		metrics.ActiveSessions.Dec()
		st.log.Debug().Str("sid", sid).Msg("logout")
	}
}

// RefreshACL recomputes the owned-schedule set for every live session of
// the principal.  Must be called after any schedule create/update/delete so
// checks against the cache see current ownership.
func (st *Store) RefreshACL(ctx context.Context, principalID int64) error {
	if st.acl == nil {
		return nil
	}

	st.mu.RLock()
	n := len(st.pool[principalID])
	st.mu.RUnlock()
	if n == 0 {
		return nil
	}

	ids, err := st.acl.OwnedScheduleIDs(ctx, principalID)
	if err != nil {
		return err
	}

	st.mu.RLock()
	live := make([]*Session, 0, len(st.pool[principalID]))
	for _, s := range st.pool[principalID] {
		live = append(live, s)
	}
	st.mu.RUnlock()

	for _, s := range live {
		cp := make([]int64, len(ids))
		copy(cp, ids)
		s.setScheduleIDs(cp)
	}
	return nil
}

// IsAdmin reports whether the token belongs to an administrative session.
func (st *Store) IsAdmin(sid string) bool {
	s := st.GetByToken(sid)
	return s != nil && s.IsAdmin()
}

// Count returns the number of live sessions, for diagnostics.
func (st *Store) Count() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sids)
}
