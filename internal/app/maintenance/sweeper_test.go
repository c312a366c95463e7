package maintenance

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/clause"

	"github.com/charlesng35/filecache/internal/cache"
	testutil "github.com/charlesng35/filecache/internal/database/testutil"
	apperrors "github.com/charlesng35/filecache/pkg/errors"
)

func TestSweeperRunOnceEvictsExpiredEntries(t *testing.T) {
	dir := t.TempDir()
	db := testutil.MustOpenTestDB(t)
	clock := fixedClock{current: time.Date(2024, 5, 20, 9, 0, 0, 0, time.UTC)}

	engine, err := cache.New(db, "cache", filepath.Join(dir, "files"), cache.WithNow(clock.Now))
	require.NoError(t, err)

	src := filepath.Join(dir, "src.txt")
	require.NoError(t, os.WriteFile(src, []byte("payload"), 0o644))

	oldPath, err := engine.Add(context.Background(), "old", src, "old.txt", cache.Copy)
	require.NoError(t, err)
	freshPath, err := engine.Add(context.Background(), "fresh", src, "fresh.txt", cache.Copy)
	require.NoError(t, err)

	require.NoError(t, db.Table("cache").
		Where(clause.Eq{Column: clause.Column{Name: "key"}, Value: "old"}).
		Update("timestamp", cache.FormatTimestamp(clock.Now().Add(-10*24*time.Hour))).Error)

	s := NewSweeper(engine,
		WithRetention(7*24*time.Hour),
		WithCron(cron.New(cron.WithLogger(cron.DiscardLogger))),
	)
	require.NoError(t, s.RunOnce(context.Background()))

	require.NoFileExists(t, oldPath)
	require.FileExists(t, freshPath)

	_, ok, err := engine.GetPath(context.Background(), "old")
	require.NoError(t, err)
	require.False(t, ok)
	_, ok, err = engine.GetPath(context.Background(), "fresh")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestSweeperRunOnceReportsFailures(t *testing.T) {
	stub := &stubExpirer{
		failures: cache.EvictionFailures{{Key: "k", FileName: "k.txt", Err: os.ErrPermission}},
	}
	s := NewSweeper(stub, WithRetention(time.Hour))

	err := s.RunOnce(context.Background())
	require.Error(t, err)
	require.True(t, errors.Is(err, os.ErrPermission))
	require.Equal(t, []time.Duration{time.Hour}, stub.calls)

	stub.failures = nil
	stub.err = apperrors.ErrStoreUnavailable
	err = s.RunOnce(context.Background())
	require.ErrorIs(t, err, apperrors.ErrStoreUnavailable)
}

func TestSweeperDisabledWithoutRetention(t *testing.T) {
	stub := &stubExpirer{}
	s := NewSweeper(stub, WithRetention(0))

	require.False(t, s.Enabled())
	require.NoError(t, s.Start())
	require.NoError(t, s.RunOnce(context.Background()))
	require.Empty(t, stub.calls)

	require.False(t, NewSweeper(nil).Enabled())
}

func TestSweeperStartSchedulesJob(t *testing.T) {
	c := cron.New(cron.WithLogger(cron.DiscardLogger))
	s := NewSweeper(&stubExpirer{}, WithCron(c), WithSchedule("@every 1h"))

	require.NoError(t, s.Start())
	require.Len(t, c.Entries(), 1)

	<-s.Stop().Done()
}

func TestSweeperStartRejectsBadSchedule(t *testing.T) {
	s := NewSweeper(&stubExpirer{}, WithSchedule("not a schedule"))
	require.Error(t, s.Start())
}

type stubExpirer struct {
	calls    []time.Duration
	failures cache.EvictionFailures
	err      error
}

func (s *stubExpirer) DeleteOlderThan(_ context.Context, age time.Duration) (cache.EvictionFailures, error) {
	s.calls = append(s.calls, age)
	return s.failures, s.err
}

type fixedClock struct {
	current time.Time
}

func (c *fixedClock) Now() time.Time {
	return c.current
}
