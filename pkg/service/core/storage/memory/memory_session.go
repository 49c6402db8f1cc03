// Package memory keeps form drafts in process memory. Drafts are lost on
// restart.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/navikt/brd-backend/pkg/errs"
	"github.com/navikt/brd-backend/pkg/service"
)

var _ service.SessionStorage = &sessionStorage{}

type sessionStorage struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*service.Session
	now      func() time.Time
}

func (s *sessionStorage) CreateSession(_ context.Context) (*service.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.newSession(uuid.New())

	return copySession(sess), nil
}

func (s *sessionStorage) GetOrCreateSession(_ context.Context, id uuid.UUID) (*service.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.touch(id)

	return copySession(sess), nil
}

func (s *sessionStorage) UpdateSession(_ context.Context, id uuid.UUID, fn func(record *service.FormRecord) error) (*service.Session, error) {
	const op errs.Op = "sessionStorage.UpdateSession"

	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.touch(id)

	// Work on a copy so a failing update leaves the stored record untouched.
	record := sess.Record.Clone()

	err := fn(record)
	if err != nil {
		return nil, errs.E(op, err)
	}

	sess.Record = record

	return copySession(sess), nil
}

func (s *sessionStorage) ResetSession(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.touch(id)
	sess.Record = service.NewDraftRecord(s.now())

	return nil
}

func (s *sessionStorage) DeleteIdleSessions(_ context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0

	for id, sess := range s.sessions {
		if sess.LastAccessed.Before(cutoff) {
			delete(s.sessions, id)
			n++
		}
	}

	return n, nil
}

// touch returns the stored session, creating it on first access, and marks it
// as accessed. Callers must hold the lock.
func (s *sessionStorage) touch(id uuid.UUID) *service.Session {
	sess, ok := s.sessions[id]
	if !ok {
		return s.newSession(id)
	}

	sess.LastAccessed = s.now()

	return sess
}

func (s *sessionStorage) newSession(id uuid.UUID) *service.Session {
	now := s.now()

	sess := &service.Session{
		ID:           id,
		Record:       service.NewDraftRecord(now),
		Created:      now,
		LastAccessed: now,
	}

	s.sessions[id] = sess

	return sess
}

func copySession(sess *service.Session) *service.Session {
	cp := *sess
	cp.Record = sess.Record.Clone()

	return &cp
}

type Option func(*sessionStorage)

// WithClock replaces the clock used for timestamps and draft defaults.
func WithClock(now func() time.Time) Option {
	return func(s *sessionStorage) {
		s.now = now
	}
}

func NewSessionStorage(opts ...Option) *sessionStorage {
	s := &sessionStorage{
		sessions: map[uuid.UUID]*service.Session{},
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}
