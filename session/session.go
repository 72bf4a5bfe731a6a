// Package session caches the logged in game profile between runs.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/c2xstation/storefront/common"
	"github.com/c2xstation/storefront/log"
	"github.com/c2xstation/storefront/params"
)

// session errors
var (
	ErrNoProfile      = errors.New("no session profile")
	ErrUnknownBackend = errors.New("unknown session backend")
)

// profileKey is the storage key of the cached profile
const profileKey = "hive_profile"

// Profile is the cached game login.
type Profile struct {
	GameID      int       `json:"gameId"`
	GameTitle   string    `json:"gameTitle"`
	PID         string    `json:"pid"`
	GroupID     string    `json:"groupId"`
	GroupName   string    `json:"groupName"`
	LastLoginAt time.Time `json:"lastLoginAt"`
}

// PlayerID is the id the backend knows the player by.
func (p *Profile) PlayerID() string {
	return strings.TrimSpace(p.PID)
}

// UserID is the selected character id.
func (p *Profile) UserID() string {
	return strings.TrimSpace(p.GroupID)
}

// Valid reports whether the profile can be sent with a payment.
func (p *Profile) Valid() bool {
	if p == nil || p.GameID <= 0 || p.PlayerID() == "" {
		return false
	}
	return common.IsDigits(p.UserID())
}

// Repository stores one profile.
type Repository interface {
	Get(ctx context.Context) (*Profile, error)
	Set(ctx context.Context, profile *Profile) error
	Clear(ctx context.Context) error
	Close() error
}

// NewRepository opens the repository configured by cfg.
func NewRepository(cfg *params.SessionConfig) (Repository, error) {
	ttl := time.Duration(cfg.TTLSeconds) * time.Second
	log.Info("open session repository", "backend", cfg.Backend, "ttl", ttl)
	switch cfg.Backend {
	case params.SessionBackendMemory, "":
		return NewMemoryRepository(ttl), nil
	case params.SessionBackendLevelDB:
		return NewLevelDBRepository(common.FirstNonEmpty(cfg.DataDir, params.GetDataDir()), ttl)
	case params.SessionBackendRedis:
		return NewRedisRepository(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, ttl), nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownBackend, cfg.Backend)
	}
}

func encodeProfile(profile *Profile) ([]byte, error) {
	return json.Marshal(profile)
}

func decodeProfile(data []byte) (*Profile, error) {
	var profile Profile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("decode session profile: %w", err)
	}
	return &profile, nil
}

func expired(profile *Profile, ttl time.Duration) bool {
	return ttl > 0 && !profile.LastLoginAt.IsZero() && time.Since(profile.LastLoginAt) > ttl
}
