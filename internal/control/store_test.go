package control

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tanq16/resumer/internal/utils"
)

func TestConsumeMatchesURL(t *testing.T) {
	s := NewStore()
	s.RequestAbort("https://a.example/file")

	assert.False(t, s.ConsumeAbort("https://b.example/file"))
	abort, _ := s.Pending("https://a.example/file")
	assert.True(t, abort, "a non-matching consume must not clear the signal")

	assert.True(t, s.ConsumeAbort("https://a.example/file"))
	assert.False(t, s.ConsumeAbort("https://a.example/file"), "signal is cleared once consumed")
}

func TestPauseAndAbortAreIndependent(t *testing.T) {
	s := NewStore()
	s.RequestPause("u")
	s.RequestAbort("u")

	abort, pause := s.Pending("u")
	assert.True(t, abort)
	assert.True(t, pause)

	assert.True(t, s.ConsumeAbort("u"))
	abort, pause = s.Pending("u")
	assert.False(t, abort)
	assert.True(t, pause)
}

func TestRequestsAreIdempotentAndReplace(t *testing.T) {
	s := NewStore()
	s.RequestPause("u1")
	s.RequestPause("u1")
	assert.True(t, s.ConsumePause("u1"))
	assert.False(t, s.ConsumePause("u1"))

	s.RequestPause("u1")
	s.RequestPause("u2")
	assert.False(t, s.ConsumePause("u1"))
	assert.True(t, s.ConsumePause("u2"))
}

func TestEmptyURLNeverMatches(t *testing.T) {
	s := NewStore()
	assert.False(t, s.ConsumeAbort(""))
	assert.False(t, s.ConsumePause(""))
}

func TestAcquireIsExclusivePerURL(t *testing.T) {
	s := NewStore()
	release, err := s.Acquire("u")
	require.NoError(t, err)

	_, err = s.Acquire("u")
	require.ErrorIs(t, err, utils.ErrSessionActive)

	other, err := s.Acquire("v")
	require.NoError(t, err)
	other()

	release()
	release()
	again, err := s.Acquire("u")
	require.NoError(t, err)
	again()
}

func TestConcurrentRequests(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.RequestAbort("u")
		}()
		go func() {
			defer wg.Done()
			s.ConsumeAbort("u")
		}()
	}
	wg.Wait()
	s.ConsumeAbort("u")
	abort, _ := s.Pending("u")
	assert.False(t, abort)
}
