package session

import (
	"strconv" // User id parsing
	"strings" // Key formatting

	"github.com/google/uuid" // Random session keys
)

// UserIDKey holds the id of the logged in user
const UserIDKey = "_auth_user_id"

// Session is the per-visitor key-value bag loaded by Middleware
type Session struct {
	key      string         // Current key, empty until first save
	oldKey   string         // Key to drop from the store after CycleKey or Flush
	data     map[string]any // Session values
	modified bool           // Needs saving
	loaded   bool           // Came from the store
}

func newSession() *Session {
	return &Session{data: map[string]any{}}
}

func loadedSession(key string, data map[string]any) *Session {
	if data == nil {
		data = map[string]any{}
	}
	return &Session{key: key, data: data, loaded: true}
}

// newKey returns 32 lowercase hex characters
func newKey() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Key returns the session key, empty for a session that was never stored
func (s *Session) Key() string {
	return s.key
}

// Get returns the value stored under key
func (s *Session) Get(key string) (any, bool) {
	v, ok := s.data[key]
	return v, ok
}

// GetString returns the string stored under key, or def
func (s *Session) GetString(key, def string) string {
	if v, ok := s.data[key].(string); ok {
		return v
	}
	return def
}

// Set stores value under key
func (s *Session) Set(key string, value any) {
	s.data[key] = value
	s.modified = true
}

// Delete removes key and reports whether it was present. Missing keys are not an error.
func (s *Session) Delete(key string) bool {
	if _, ok := s.data[key]; !ok {
		return false
	}
	delete(s.data, key)
	s.modified = true
	return true
}

// Flush drops every value and the session key
func (s *Session) Flush() {
	s.data = map[string]any{}
	s.retireKey()
	s.modified = true
}

// CycleKey moves the data to a fresh key
func (s *Session) CycleKey() {
	s.retireKey()
	s.modified = true
}

func (s *Session) retireKey() {
	if s.key != "" && s.oldKey == "" {
		s.oldKey = s.key
	}
	s.key = ""
}

// IsEmpty reports whether the session holds no values
func (s *Session) IsEmpty() bool {
	return len(s.data) == 0
}

// Modified reports whether the session changed during the request
func (s *Session) Modified() bool {
	return s.modified
}

// Login binds userID to the session, rotating the key
func (s *Session) Login(userID uint) {
	s.CycleKey()
	s.Set(UserIDKey, strconv.FormatUint(uint64(userID), 10))
}

// AuthUserID returns the logged in user id
func (s *Session) AuthUserID() (uint, bool) {
	raw := s.GetString(UserIDKey, "")
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 0)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}
