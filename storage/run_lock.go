package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/alekLukanen/errs"
	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	goredislib "github.com/redis/go-redis/v9"
)

type ILock interface {
	TryLockContext(context.Context) error
	UnlockContext(context.Context) (bool, error)
	Name() string
}

type IRunLocker interface {
	ClaimTarget(ctx context.Context, bucket, keyPrefix string) (ILock, error)
	ReleaseTarget(ctx context.Context, lock ILock) (bool, error)
}

type RunLockOptions struct {
	Address   string
	Password  string
	KeyPrefix string
	Expiry    time.Duration
}

// RunLock serializes jobs that write to the same bucket and key prefix.
type RunLock struct {
	logger *slog.Logger
	client *goredislib.Client
	sync   *redsync.Redsync

	keyPrefix string
	expiry    time.Duration
}

func NewRunLock(
	ctx context.Context,
	logger *slog.Logger,
	options RunLockOptions,
) (*RunLock, error) {
	if options.Address == "" {
		return nil, errs.Wrap(errs.NewStackError(fmt.Errorf("run lock address is required")), ErrInvalidOptions)
	}
	expiry := options.Expiry
	if expiry <= 0 {
		expiry = 10 * time.Minute
	}

	client := goredislib.NewClient(&goredislib.Options{
		Addr:     options.Address,
		Password: options.Password,
		DB:       0,
	})

	redisPool := goredis.NewPool(client)
	mutexSync := redsync.New(redisPool)

	return &RunLock{
		logger:    logger,
		client:    client,
		sync:      mutexSync,
		keyPrefix: options.KeyPrefix,
		expiry:    expiry,
	}, nil
}

func (obj *RunLock) Key(bucket, keyPrefix string) string {
	return fmt.Sprintf("%s/run-lock/%s/%s", obj.keyPrefix, bucket, keyPrefix)
}

func (obj *RunLock) ClaimTarget(ctx context.Context, bucket, keyPrefix string) (ILock, error) {
	mutex := obj.sync.NewMutex(obj.Key(bucket, keyPrefix), redsync.WithExpiry(obj.expiry), redsync.WithTries(1))
	if err := mutex.TryLockContext(ctx); err != nil {
		return nil, errs.Wrap(err, fmt.Errorf("failed claiming run lock %s", mutex.Name()))
	}
	obj.logger.Debug("claimed run lock", slog.String("name", mutex.Name()))
	return mutex, nil
}

// IsLockHeld reports whether a claim failed because another job holds the lock,
// as opposed to the lock server being unreachable.
func IsLockHeld(err error) bool {
	if err == nil {
		return false
	}
	var taken *redsync.ErrTaken
	var nodeTaken *redsync.ErrNodeTaken
	return errors.Is(err, ErrLockFailed) || errors.As(err, &taken) || errors.As(err, &nodeTaken)
}

func (obj *RunLock) ReleaseTarget(ctx context.Context, lock ILock) (bool, error) {
	ok, err := lock.UnlockContext(ctx)
	if err != nil {
		return ok, errs.Wrap(err, fmt.Errorf("failed releasing run lock %s", lock.Name()))
	}
	return ok, nil
}

func (obj *RunLock) Close() error {
	return obj.client.Close()
}

////////////////////////////////////////

// NoopRunLocker is used when no lock server is configured.
type NoopRunLocker struct{}

type noopLock struct {
	name string
}

func (obj noopLock) TryLockContext(context.Context) error        { return nil }
func (obj noopLock) UnlockContext(context.Context) (bool, error) { return true, nil }
func (obj noopLock) Name() string                                { return obj.name }

func (obj NoopRunLocker) ClaimTarget(ctx context.Context, bucket, keyPrefix string) (ILock, error) {
	return noopLock{name: fmt.Sprintf("%s/%s", bucket, keyPrefix)}, nil
}

func (obj NoopRunLocker) ReleaseTarget(ctx context.Context, lock ILock) (bool, error) {
	return lock.UnlockContext(ctx)
}
