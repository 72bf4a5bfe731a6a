package session

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/c2xstation/storefront/params"
)

func testProfile() *Profile {
	return &Profile{
		GameID:      3,
		GameTitle:   "Cube",
		PID:         "555",
		GroupID:     "777",
		GroupName:   "Hero",
		LastLoginAt: time.Now().UTC().Truncate(time.Second),
	}
}

func exerciseRepository(t *testing.T, repo Repository) {
	t.Helper()
	ctx := context.Background()

	_, err := repo.Get(ctx)
	require.ErrorIs(t, err, ErrNoProfile)

	want := testProfile()
	require.NoError(t, repo.Set(ctx, want))
	got, err := repo.Get(ctx)
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("profile mismatch (-want +got):\n%s", diff)
	}

	// stored by value
	got.PID = "changed"
	again, err := repo.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, "555", again.PID)

	require.NoError(t, repo.Clear(ctx))
	_, err = repo.Get(ctx)
	require.ErrorIs(t, err, ErrNoProfile)
}

func TestMemoryRepository(t *testing.T) {
	repo := NewMemoryRepository(0)
	defer repo.Close()
	exerciseRepository(t, repo)
}

func TestMemoryRepositoryExpires(t *testing.T) {
	repo := NewMemoryRepository(20 * time.Millisecond)
	require.NoError(t, repo.Set(context.Background(), testProfile()))
	time.Sleep(50 * time.Millisecond)
	_, err := repo.Get(context.Background())
	require.ErrorIs(t, err, ErrNoProfile)
}

func TestLevelDBRepository(t *testing.T) {
	dir := t.TempDir()
	repo, err := NewLevelDBRepository(dir, time.Hour)
	require.NoError(t, err)
	exerciseRepository(t, repo)

	// survives reopen
	require.NoError(t, repo.Set(context.Background(), testProfile()))
	require.NoError(t, repo.Close())
	repo, err = NewLevelDBRepository(dir, time.Hour)
	require.NoError(t, err)
	defer repo.Close()
	got, err := repo.Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Hero", got.GroupName)
}

func TestLevelDBRepositoryExpires(t *testing.T) {
	repo, err := NewLevelDBRepository(t.TempDir(), time.Minute)
	require.NoError(t, err)
	defer repo.Close()

	old := testProfile()
	old.LastLoginAt = time.Now().Add(-time.Hour)
	require.NoError(t, repo.Set(context.Background(), old))
	_, err = repo.Get(context.Background())
	require.ErrorIs(t, err, ErrNoProfile)
}

func TestNewRepository(t *testing.T) {
	repo, err := NewRepository(&params.SessionConfig{Backend: params.SessionBackendMemory})
	require.NoError(t, err)
	require.IsType(t, &MemoryRepository{}, repo)

	repo, err = NewRepository(&params.SessionConfig{Backend: params.SessionBackendLevelDB, DataDir: t.TempDir()})
	require.NoError(t, err)
	require.IsType(t, &LevelDBRepository{}, repo)
	require.NoError(t, repo.Close())

	repo, err = NewRepository(&params.SessionConfig{Backend: params.SessionBackendRedis, RedisAddr: "127.0.0.1:6379"})
	require.NoError(t, err)
	require.IsType(t, &RedisRepository{}, repo)
	require.NoError(t, repo.Close())

	_, err = NewRepository(&params.SessionConfig{Backend: "mongo"})
	require.ErrorIs(t, err, ErrUnknownBackend)
}

func TestProfileValid(t *testing.T) {
	require.True(t, testProfile().Valid())

	cases := []func(p *Profile){
		func(p *Profile) { p.GameID = 0 },
		func(p *Profile) { p.PID = "  " },
		func(p *Profile) { p.GroupID = "hero" },
		func(p *Profile) { p.GroupID = "" },
		func(p *Profile) { p.GameID = -1 },
	}
	for i, modify := range cases {
		p := testProfile()
		modify(p)
		require.False(t, p.Valid(), "case %d", i)
	}
	var nilProfile *Profile
	require.False(t, nilProfile.Valid())

	p := testProfile()
	p.PID, p.GroupID = " 555 ", "777 "
	require.True(t, p.Valid())
	require.Equal(t, "555", p.PlayerID())
	require.Equal(t, "777", p.UserID())
}
