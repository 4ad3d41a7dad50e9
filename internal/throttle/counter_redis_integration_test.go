//go:build integration

package throttle_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"clubgate/internal/throttle"
	"clubgate/pkg/testutil/containers"
)

type RedisCounterSuite struct {
	suite.Suite
	redis   *containers.RedisContainer
	counter *throttle.RedisCounter
}

func TestRedisCounterSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisCounterSuite))
}

func (s *RedisCounterSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.counter = throttle.NewRedisCounter(s.redis.Client)
}

func (s *RedisCounterSuite) TearDownSuite() {
	s.redis.Terminate(context.Background())
}

func (s *RedisCounterSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisCounterSuite) TestIncr() {
	ctx := context.Background()

	for want := int64(1); want <= 5; want++ {
		got, err := s.counter.Incr(ctx, "submit:10.0.0.1", time.Minute)
		s.Require().NoError(err)
		s.Equal(want, got)
	}
}

func (s *RedisCounterSuite) TestIncr_KeysAreIndependent() {
	ctx := context.Background()

	_, err := s.counter.Incr(ctx, "submit:10.0.0.1", time.Minute)
	s.Require().NoError(err)

	got, err := s.counter.Incr(ctx, "resend:10.0.0.1", time.Minute)
	s.Require().NoError(err)
	s.Equal(int64(1), got)

	got, err = s.counter.Incr(ctx, "submit:10.0.0.2", time.Minute)
	s.Require().NoError(err)
	s.Equal(int64(1), got)
}

func (s *RedisCounterSuite) TestIncr_WindowExpires() {
	ctx := context.Background()

	got, err := s.counter.Incr(ctx, "submit:10.0.0.1", time.Second)
	s.Require().NoError(err)
	s.Equal(int64(1), got)

	time.Sleep(1200 * time.Millisecond)

	got, err = s.counter.Incr(ctx, "submit:10.0.0.1", time.Second)
	s.Require().NoError(err)
	s.Equal(int64(1), got, "counter should reset after the window TTL")
}

// TestIncr_WindowDoesNotSlide verifies ExpireNX semantics: later hits must not
// refresh the TTL set when the key was created.
func (s *RedisCounterSuite) TestIncr_WindowDoesNotSlide() {
	ctx := context.Background()

	_, err := s.counter.Incr(ctx, "submit:10.0.0.1", 2*time.Second)
	s.Require().NoError(err)

	time.Sleep(1100 * time.Millisecond)
	_, err = s.counter.Incr(ctx, "submit:10.0.0.1", 2*time.Second)
	s.Require().NoError(err)

	time.Sleep(1100 * time.Millisecond)

	got, err := s.counter.Incr(ctx, "submit:10.0.0.1", 2*time.Second)
	s.Require().NoError(err)
	s.Equal(int64(1), got, "second hit must not extend the original window")
}

func (s *RedisCounterSuite) TestIncr_Concurrent() {
	ctx := context.Background()
	const hits = 32

	var wg sync.WaitGroup
	for i := 0; i < hits; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.counter.Incr(ctx, "submit:10.0.0.1", time.Minute)
			s.NoError(err)
		}()
	}
	wg.Wait()

	got, err := s.counter.Incr(ctx, "submit:10.0.0.1", time.Minute)
	s.Require().NoError(err)
	s.Equal(int64(hits+1), got)
}
