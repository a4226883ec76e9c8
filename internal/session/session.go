// Package session implements the in-process session store: the single
// authority on who is currently logged in and which schedules each session's
// principal may touch.  Sessions live only in memory; a restart logs
// everyone out.
package session

import (
	"crypto/rand"
	"sync"

	"github.com/qtc-soft/schedule-api/internal/entity"
)

// adminFlags is the reserved flags sentinel marking an administrative
// principal.
const adminFlags = -4

// sidLength is the token length in characters.  62 symbols over 32
// positions gives ~190 bits of entropy.
const sidLength = 32

const sidAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Session binds one opaque token to a principal and caches the set of
// schedule ids that principal owns (the ACL).
//
// Fields:
//  ID          – principal id (user or customer); -1 when unidentified.
//  SID         – opaque random token handed to the client.
//  Login/Name/Email/Phone/Description – public-safe principal projection.
//  Flags       – principal flags; adminFlags marks an administrator.
//  scheduleIDs – cached owned-schedule ids, refreshed by the store.
type Session struct {
	ID          int64  `json:"id"`
	SID         string `json:"sid"`
	Login       string `json:"login"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Description string `json:"description"`
	Flags       int64  `json:"flags"`

	// aclMu guards scheduleIDs: the store refreshes the cache while request
	// handlers read it concurrently.
	aclMu       sync.RWMutex
	scheduleIDs []int64
}

// newSession builds a session from a principal row.  Missing fields stay
// zero; the id defaults to -1 so an unidentified principal never matches a
// real one.
func newSession(data entity.Row, sid string) *Session {
	s := &Session{ID: -1, SID: sid}
	if v, ok := data["id"].(int64); ok {
		s.ID = v
	}
	if v, ok := data["login"].(string); ok {
		s.Login = v
	}
	if v, ok := data["name"].(string); ok {
		s.Name = v
	}
	if v, ok := data["email"].(string); ok {
		s.Email = v
	}
	if v, ok := data["phone"].(string); ok {
		s.Phone = v
	}
	if v, ok := data["description"].(string); ok {
		s.Description = v
	}
	if v, ok := data["flags"].(int64); ok {
		s.Flags = v
	}
	return s
}

// IsAdmin reports whether the session's principal carries the reserved
// administrative flags value.
func (s *Session) IsAdmin() bool { return s.Flags == adminFlags }

// ScheduleIDs returns a copy of the cached ACL.  A copy keeps callers from
// observing a concurrent refresh halfway through.
func (s *Session) ScheduleIDs() []int64 {
	s.aclMu.RLock()
	defer s.aclMu.RUnlock()
	out := make([]int64, len(s.scheduleIDs))
	copy(out, s.scheduleIDs)
	return out
}

// AllowsSchedule reports whether the cached ACL contains the schedule id.
func (s *Session) AllowsSchedule(id int64) bool {
	s.aclMu.RLock()
	defer s.aclMu.RUnlock()
	for _, v := range s.scheduleIDs {
		if v == id {
			return true
		}
	}
	return false
}

// setScheduleIDs overwrites the cached ACL.
func (s *Session) setScheduleIDs(ids []int64) {
	s.aclMu.Lock()
	s.scheduleIDs = ids
	s.aclMu.Unlock()
}

// newSID generates a random fixed-length alphanumeric token.
func newSID() (string, error) {
	buf := make([]byte, sidLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = sidAlphabet[int(b)%len(sidAlphabet)]
	}
	return string(buf), nil
}
