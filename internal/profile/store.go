package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const profilesKey = "meter:profiles"

// Store persists user profiles as a Redis hash keyed by user id. It is the
// plain get/set/list/delete map the rest of the system treats as external.
type Store struct {
	client *redis.Client
}

// NewStore creates a profile store.
func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

// Get returns the profile for a user, or nil when none is saved.
func (s *Store) Get(ctx context.Context, userID string) (*UserProfile, error) {
	raw, err := s.client.HGet(ctx, profilesKey, userID).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	var p UserProfile
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	return &p, nil
}

// Save upserts a profile and stamps LastUpdated.
func (s *Store) Save(ctx context.Context, p *UserProfile) error {
	p.LastUpdated = time.Now()
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	if err := s.client.HSet(ctx, profilesKey, p.ID, raw).Err(); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

// List returns all saved profiles keyed by user id.
func (s *Store) List(ctx context.Context) (map[string]*UserProfile, error) {
	raw, err := s.client.HGetAll(ctx, profilesKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	out := make(map[string]*UserProfile, len(raw))
	for id, v := range raw {
		var p UserProfile
		if err := json.Unmarshal([]byte(v), &p); err != nil {
			continue
		}
		out[id] = &p
	}
	return out, nil
}

// Delete removes a user's profile. Deleting an absent profile is a no-op.
func (s *Store) Delete(ctx context.Context, userID string) error {
	if err := s.client.HDel(ctx, profilesKey, userID).Err(); err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	return nil
}
