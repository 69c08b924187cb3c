package server

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/goliatone/go-formplugin/pkg/plugin"
)

// Session is a registered plugin session.
type Session struct {
	ID        string
	CreatedAt time.Time
	Plugin    *plugin.Plugin
	// Transport is "ws" for host connections and "http" for sessions opened
	// through the API.
	Transport string
	// Referrer is the host page the session posts to. Empty means outbound
	// messages are dropped.
	Referrer string

	outbox *outbox
}

// Messages returns the frames posted by an API-opened session. Host
// connections deliver frames directly and return nil.
func (s *Session) Messages() []json.RawMessage {
	if s.outbox == nil {
		return nil
	}
	return s.outbox.messages()
}

// sessionSummary is the listing form of a session.
type sessionSummary struct {
	ID        string    `json:"id"`
	State     string    `json:"state"`
	Transport string    `json:"transport"`
	CreatedAt time.Time `json:"createdAt"`
}

func (s *Session) summary() sessionSummary {
	return sessionSummary{
		ID:        s.ID,
		State:     s.Plugin.State().String(),
		Transport: s.Transport,
		CreatedAt: s.CreatedAt,
	}
}

// Sessions tracks live sessions by id.
type Sessions struct {
	mu      sync.RWMutex
	entries map[string]*Session
}

// NewSessions creates an empty session table.
func NewSessions() *Sessions {
	return &Sessions{entries: make(map[string]*Session)}
}

// Add registers sess, replacing any session with the same id.
func (s *Sessions) Add(sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[sess.ID] = sess
}

// Get returns the session registered under id.
func (s *Sessions) Get(id string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.entries[id]
	return sess, ok
}

// Remove drops the session registered under id.
func (s *Sessions) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
}

// List returns the sessions ordered by creation time.
func (s *Sessions) List() []*Session {
	s.mu.RLock()
	out := make([]*Session, 0, len(s.entries))
	for _, sess := range s.entries {
		out = append(out, sess)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// outbox collects frames for sessions without a host connection.
type outbox struct {
	mu     sync.Mutex
	frames []json.RawMessage
}

func (o *outbox) PostMessage(_ context.Context, data []byte, _ string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.frames = append(o.frames, append(json.RawMessage(nil), data...))
	return nil
}

func (o *outbox) messages() []json.RawMessage {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]json.RawMessage(nil), o.frames...)
}
