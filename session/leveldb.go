package session

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"github.com/syndtr/goleveldb/leveldb"

	"github.com/c2xstation/storefront/common"
)

// LevelDBRepository keeps the profile on disk.
type LevelDBRepository struct {
	db  *leveldb.DB
	ttl time.Duration
}

// NewLevelDBRepository opens or creates the session db under dataDir.
func NewLevelDBRepository(dataDir string, ttl time.Duration) (*LevelDBRepository, error) {
	dir := filepath.Join(dataDir, "session")
	if err := common.EnsureDir(dir); err != nil {
		return nil, err
	}
	db, err := leveldb.OpenFile(dir, nil)
	if err != nil {
		return nil, err
	}
	return &LevelDBRepository{db: db, ttl: ttl}, nil
}

// Get reads the profile. Expired profiles are removed.
func (r *LevelDBRepository) Get(ctx context.Context) (*Profile, error) {
	data, err := r.db.Get([]byte(profileKey), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, ErrNoProfile
	}
	if err != nil {
		return nil, err
	}
	profile, err := decodeProfile(data)
	if err != nil {
		return nil, err
	}
	if expired(profile, r.ttl) {
		_ = r.Clear(ctx)
		return nil, ErrNoProfile
	}
	return profile, nil
}

// Set writes the profile.
func (r *LevelDBRepository) Set(_ context.Context, profile *Profile) error {
	data, err := encodeProfile(profile)
	if err != nil {
		return err
	}
	return r.db.Put([]byte(profileKey), data, nil)
}

// Clear deletes the profile.
func (r *LevelDBRepository) Clear(_ context.Context) error {
	return r.db.Delete([]byte(profileKey), nil)
}

// Close closes the db.
func (r *LevelDBRepository) Close() error {
	return r.db.Close()
}
