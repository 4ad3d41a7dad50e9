package identity

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"clubgate/pkg/domain"
	"clubgate/pkg/platform/sentinel"
)

// InMemoryDirectory is the development and test directory. Unlike the Cognito
// pool it holds the credential hash, since there is no external authenticator
// to delegate to.
type InMemoryDirectory struct {
	mu    sync.RWMutex
	users map[string]*User
	// hashes is keyed like users; kept out of User so callers never see it.
	hashes map[string]string
	clock  func() time.Time
}

func NewInMemoryDirectory() *InMemoryDirectory {
	return &InMemoryDirectory{
		users:  make(map[string]*User),
		hashes: make(map[string]string),
		clock:  time.Now,
	}
}

// WithClock overrides the directory clock for tests.
func (d *InMemoryDirectory) WithClock(clock func() time.Time) *InMemoryDirectory {
	d.clock = clock
	return d
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (d *InMemoryDirectory) Create(_ context.Context, nu NewUser) (*User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	key := normalizeEmail(nu.Email)
	if _, exists := d.users[key]; exists {
		return nil, sentinel.ErrConflict
	}

	user := &User{
		ID:        domain.UserID(uuid.New()),
		Email:     key,
		Username:  nu.Username,
		Role:      nu.Role,
		CreatedAt: d.clock(),
	}
	d.users[key] = user
	d.hashes[key] = nu.CredentialHash

	copied := *user
	return &copied, nil
}

func (d *InMemoryDirectory) FindByEmail(_ context.Context, email string) (*User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if user, ok := d.users[normalizeEmail(email)]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, sentinel.ErrNotFound
}

func (d *InMemoryDirectory) SetRole(_ context.Context, email string, role domain.Role) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	user, ok := d.users[normalizeEmail(email)]
	if !ok {
		return sentinel.ErrNotFound
	}
	user.Role = role
	return nil
}

func (d *InMemoryDirectory) Delete(_ context.Context, email string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	key := normalizeEmail(email)
	if _, ok := d.users[key]; !ok {
		return sentinel.ErrNotFound
	}
	delete(d.users, key)
	delete(d.hashes, key)
	return nil
}

// CredentialHash exposes the stored hash for authentication flows and tests.
func (d *InMemoryDirectory) CredentialHash(email string) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	hash, ok := d.hashes[normalizeEmail(email)]
	return hash, ok
}
