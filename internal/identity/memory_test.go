package identity

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"clubgate/pkg/domain"
	"clubgate/pkg/platform/sentinel"
)

type InMemoryDirectorySuite struct {
	suite.Suite
	ctx context.Context
	dir *InMemoryDirectory
	now time.Time
}

func TestInMemoryDirectorySuite(t *testing.T) {
	suite.Run(t, new(InMemoryDirectorySuite))
}

func (s *InMemoryDirectorySuite) SetupTest() {
	s.ctx = context.Background()
	s.now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.dir = NewInMemoryDirectory().WithClock(func() time.Time { return s.now })
}

func (s *InMemoryDirectorySuite) newUser() NewUser {
	return NewUser{
		Email:          "keeper@example.com",
		Username:       "keeper",
		CredentialHash: "$2a$10$fakehash",
		Role:           domain.RoleUser,
	}
}

func (s *InMemoryDirectorySuite) TestCreateAndFind() {
	created, err := s.dir.Create(s.ctx, s.newUser())
	s.Require().NoError(err)
	s.False(created.ID.IsNil())
	s.Equal("keeper@example.com", created.Email)
	s.Equal(domain.RoleUser, created.Role)
	s.Equal(s.now, created.CreatedAt)

	found, err := s.dir.FindByEmail(s.ctx, "keeper@example.com")
	s.Require().NoError(err)
	s.Equal(created.ID, found.ID)

	hash, ok := s.dir.CredentialHash("keeper@example.com")
	s.True(ok)
	s.Equal("$2a$10$fakehash", hash)
}

func (s *InMemoryDirectorySuite) TestCreateDuplicateEmailConflicts() {
	_, err := s.dir.Create(s.ctx, s.newUser())
	s.Require().NoError(err)

	_, err = s.dir.Create(s.ctx, s.newUser())
	s.Require().ErrorIs(err, sentinel.ErrConflict)
}

func (s *InMemoryDirectorySuite) TestEmailLookupIsCaseInsensitive() {
	_, err := s.dir.Create(s.ctx, s.newUser())
	s.Require().NoError(err)

	found, err := s.dir.FindByEmail(s.ctx, "  Keeper@Example.COM ")
	s.Require().NoError(err)
	s.Equal("keeper@example.com", found.Email)
}

func (s *InMemoryDirectorySuite) TestFindUnknownEmail() {
	_, err := s.dir.FindByEmail(s.ctx, "nobody@example.com")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemoryDirectorySuite) TestSetRole() {
	_, err := s.dir.Create(s.ctx, s.newUser())
	s.Require().NoError(err)

	s.Require().NoError(s.dir.SetRole(s.ctx, "keeper@example.com", domain.RoleCreator))

	found, err := s.dir.FindByEmail(s.ctx, "keeper@example.com")
	s.Require().NoError(err)
	s.Equal(domain.RoleCreator, found.Role)
}

func (s *InMemoryDirectorySuite) TestSetRoleUnknownEmail() {
	err := s.dir.SetRole(s.ctx, "nobody@example.com", domain.RoleAdmin)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemoryDirectorySuite) TestDelete() {
	_, err := s.dir.Create(s.ctx, s.newUser())
	s.Require().NoError(err)

	s.Require().NoError(s.dir.Delete(s.ctx, "keeper@example.com"))

	_, err = s.dir.FindByEmail(s.ctx, "keeper@example.com")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
	_, ok := s.dir.CredentialHash("keeper@example.com")
	s.False(ok)

	err = s.dir.Delete(s.ctx, "keeper@example.com")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemoryDirectorySuite) TestReturnedUserIsACopy() {
	created, err := s.dir.Create(s.ctx, s.newUser())
	s.Require().NoError(err)

	created.Role = domain.RoleAdmin

	found, err := s.dir.FindByEmail(s.ctx, "keeper@example.com")
	s.Require().NoError(err)
	s.Equal(domain.RoleUser, found.Role)
}
