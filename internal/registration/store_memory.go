package registration

import (
	"context"
	"sort"
	"sync"
	"time"

	id "clubgate/pkg/domain"
	"clubgate/pkg/platform/sentinel"
)

// InMemoryStore keeps registrations in memory for development and tests.
// It favors clarity over performance; the write lock is held across the
// check-and-flip in Redeem so the single-use token guarantee holds.
type InMemoryStore struct {
	mu      sync.RWMutex
	byEmail map[string]*PendingRegistration
	byToken map[string]string // token -> email
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		byEmail: make(map[string]*PendingRegistration),
		byToken: make(map[string]string),
	}
}

func (s *InMemoryStore) Create(_ context.Context, reg *PendingRegistration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[reg.Email]; exists {
		return sentinel.ErrConflict
	}
	if _, exists := s.byToken[reg.ConfirmationToken]; exists {
		return sentinel.ErrConflict
	}

	copied := *reg
	s.byEmail[reg.Email] = &copied
	s.byToken[reg.ConfirmationToken] = reg.Email
	return nil
}

func (s *InMemoryStore) FindByEmail(_ context.Context, email string) (*PendingRegistration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	reg, ok := s.byEmail[email]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *reg
	return &copied, nil
}

func (s *InMemoryStore) FindByToken(_ context.Context, token string) (*PendingRegistration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	email, ok := s.byToken[token]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *s.byEmail[email]
	return &copied, nil
}

func (s *InMemoryStore) Redeem(_ context.Context, token string, now time.Time) (RedeemOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email, ok := s.byToken[token]
	if !ok {
		return AlreadyConfirmed, sentinel.ErrNotFound
	}
	reg := s.byEmail[email]

	if reg.Confirmed {
		return AlreadyConfirmed, nil
	}
	if reg.IsExpired(now) {
		return AlreadyConfirmed, sentinel.ErrExpired
	}

	reg.ApplyRedemption(now)
	return RedeemedFresh, nil
}

func (s *InMemoryStore) ExtendExpiry(_ context.Context, email string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	reg, ok := s.byEmail[email]
	if !ok || reg.Confirmed {
		return sentinel.ErrNotFound
	}
	reg.ExtendExpiry(now)
	return nil
}

func (s *InMemoryStore) Approve(_ context.Context, email string, role id.Role, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	reg, ok := s.byEmail[email]
	if !ok {
		return sentinel.ErrNotFound
	}
	if !reg.Confirmed {
		return sentinel.ErrInvalidState
	}
	reg.ApplyApproval(role, now)
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	reg, ok := s.byEmail[email]
	if !ok {
		return sentinel.ErrNotFound
	}
	delete(s.byToken, reg.ConfirmationToken)
	delete(s.byEmail, email)
	return nil
}

func (s *InMemoryStore) ListPending(_ context.Context) ([]*PendingRegistration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*PendingRegistration
	for _, reg := range s.byEmail {
		if reg.IsApproved() {
			continue
		}
		copied := *reg
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
