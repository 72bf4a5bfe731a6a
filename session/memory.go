package session

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const memoryCleanupInterval = 10 * time.Minute

// MemoryRepository keeps the profile in process memory.
type MemoryRepository struct {
	c   *gocache.Cache
	ttl time.Duration
}

// NewMemoryRepository zero ttl never expires
func NewMemoryRepository(ttl time.Duration) *MemoryRepository {
	expiration := ttl
	if expiration <= 0 {
		expiration = gocache.NoExpiration
	}
	return &MemoryRepository{
		c:   gocache.New(expiration, memoryCleanupInterval),
		ttl: expiration,
	}
}

// Get returns a copy of the cached profile.
func (m *MemoryRepository) Get(_ context.Context) (*Profile, error) {
	val, found := m.c.Get(profileKey)
	if !found {
		return nil, ErrNoProfile
	}
	profile := val.(Profile)
	return &profile, nil
}

// Set stores a copy of profile.
func (m *MemoryRepository) Set(_ context.Context, profile *Profile) error {
	m.c.Set(profileKey, *profile, gocache.DefaultExpiration)
	return nil
}

// Clear removes the profile.
func (m *MemoryRepository) Clear(_ context.Context) error {
	m.c.Delete(profileKey)
	return nil
}

// Close is a no-op.
func (m *MemoryRepository) Close() error {
	return nil
}
