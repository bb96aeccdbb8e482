package storage

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alekLukanen/errs"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-redsync/redsync/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRunLock(t *testing.T) (*RunLock, *miniredis.Miniredis) {
	t.Helper()
	server := miniredis.RunT(t)
	runLock, err := NewRunLock(context.Background(), testLogger(), RunLockOptions{
		Address:   server.Addr(),
		KeyPrefix: "brewery",
		Expiry:    time.Minute,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = runLock.Close() })
	return runLock, server
}

func TestNewRunLock(t *testing.T) {
	_, err := NewRunLock(context.Background(), testLogger(), RunLockOptions{})
	assert.ErrorIs(t, err, ErrInvalidOptions)

	// the client connects lazily so no server is needed here
	runLock, err := NewRunLock(context.Background(), testLogger(), RunLockOptions{
		Address:   "localhost:6379",
		KeyPrefix: "brewery",
	})
	require.NoError(t, err)
	defer runLock.Close()

	assert.Equal(t, 10*time.Minute, runLock.expiry)
	assert.Equal(t, "brewery/run-lock/brewery-api/lake", runLock.Key("brewery-api", "lake"))
}

func TestRunLock_ClaimAndRelease(t *testing.T) {
	ctx := context.Background()
	runLock, server := newTestRunLock(t)

	lock, err := runLock.ClaimTarget(ctx, "brewery-api", "lake")
	require.NoError(t, err)
	assert.Equal(t, "brewery/run-lock/brewery-api/lake", lock.Name())
	assert.True(t, server.Exists(runLock.Key("brewery-api", "lake")))

	// a second job on the same target is turned away
	_, err = runLock.ClaimTarget(ctx, "brewery-api", "lake")
	require.Error(t, err)
	assert.True(t, IsLockHeld(err))

	// other targets are independent
	other, err := runLock.ClaimTarget(ctx, "brewery-api", "other")
	require.NoError(t, err)

	ok, err := runLock.ReleaseTarget(ctx, lock)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, server.Exists(runLock.Key("brewery-api", "lake")))

	again, err := runLock.ClaimTarget(ctx, "brewery-api", "lake")
	require.NoError(t, err)

	for _, held := range []ILock{again, other} {
		ok, err := runLock.ReleaseTarget(ctx, held)
		require.NoError(t, err)
		assert.True(t, ok)
	}
}

func TestRunLock_ExpiredClaimIsReleasedToNextJob(t *testing.T) {
	ctx := context.Background()
	runLock, server := newTestRunLock(t)

	_, err := runLock.ClaimTarget(ctx, "brewery-api", "lake")
	require.NoError(t, err)

	server.FastForward(2 * time.Minute)

	lock, err := runLock.ClaimTarget(ctx, "brewery-api", "lake")
	require.NoError(t, err)
	ok, err := runLock.ReleaseTarget(ctx, lock)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRunLock_ServerUnavailable(t *testing.T) {
	ctx := context.Background()
	runLock, server := newTestRunLock(t)
	server.Close()

	_, err := runLock.ClaimTarget(ctx, "brewery-api", "lake")
	require.Error(t, err)
	assert.False(t, IsLockHeld(err))
}

func TestIsLockHeld(t *testing.T) {
	testCases := []struct {
		caseName string
		err      error
		expected bool
	}{
		{caseName: "nil", err: nil, expected: false},
		{caseName: "failed", err: redsync.ErrFailed, expected: true},
		{caseName: "taken", err: &redsync.ErrTaken{Nodes: []int{0}}, expected: true},
		{caseName: "nodeTaken", err: &redsync.ErrNodeTaken{Node: 0}, expected: true},
		{
			caseName: "wrappedTaken",
			err:      errs.Wrap(&redsync.ErrTaken{Nodes: []int{0}}, fmt.Errorf("failed claiming run lock")),
			expected: true,
		},
		{caseName: "connection", err: errors.New("dial tcp: connection refused"), expected: false},
	}

	for _, tc := range testCases {
		t.Run(tc.caseName, func(t *testing.T) {
			assert.Equal(t, tc.expected, IsLockHeld(tc.err))
		})
	}
}

func TestNoopRunLocker(t *testing.T) {
	ctx := context.Background()
	var locker IRunLocker = NoopRunLocker{}

	lock, err := locker.ClaimTarget(ctx, "brewery-api", "lake")
	require.NoError(t, err)
	assert.Equal(t, "brewery-api/lake", lock.Name())

	ok, err := locker.ReleaseTarget(ctx, lock)
	require.NoError(t, err)
	assert.True(t, ok)
}
