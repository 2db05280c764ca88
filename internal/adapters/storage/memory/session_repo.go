package memory

import (
	"context"
	"sync"
	"time"

	"petcare-plus/internal/domain/session"
)

type intentStore struct {
	mu        sync.Mutex
	bySession map[string]session.Intent
}

func NewIntentStore() session.IntentStore {
	return &intentStore{bySession: make(map[string]session.Intent)}
}

func (s *intentStore) Put(ctx context.Context, sessionID string, in session.Intent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bySession[sessionID] = in
	return nil
}

// Consume lee y borra bajo el mismo lock: un solo consumidor gana.
func (s *intentStore) Consume(ctx context.Context, sessionID string) (session.Intent, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	in, ok := s.bySession[sessionID]
	if !ok {
		return session.Intent{}, false, nil
	}
	delete(s.bySession, sessionID)
	return in, true, nil
}

type preferenceStore struct {
	mu        sync.RWMutex
	bySession map[string]session.Preferences
}

func NewPreferenceStore() session.PreferenceStore {
	return &preferenceStore{bySession: make(map[string]session.Preferences)}
}

func (s *preferenceStore) Get(ctx context.Context, sessionID string) (session.Preferences, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bySession[sessionID], nil
}

func (s *preferenceStore) AcceptCookies(ctx context.Context, sessionID string, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.bySession[sessionID]
	if p.CookiesAccepted {
		return false, nil
	}
	at = at.UTC()
	s.bySession[sessionID] = session.Preferences{CookiesAccepted: true, AcceptedAt: &at}
	return true, nil
}
