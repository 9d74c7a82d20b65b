package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/mealshare/mealshare-be/internal/storage"
)

var _ storage.IdentityMetadata = (*MetadataStore)(nil)

// Config holds connection settings for the identity metadata store.
type Config struct {
	Addr     string
	Password string
	DB       int
}

// MetadataStore keeps per-identity flags in a Redis hash, physically
// separate from the profile row store.
type MetadataStore struct {
	client *redis.Client
}

// NewMetadataStore connects to Redis and verifies the connection.
func NewMetadataStore(ctx context.Context, cfg Config) (*MetadataStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &MetadataStore{client: client}, nil
}

// Close releases the Redis connection.
func (m *MetadataStore) Close() error {
	return m.client.Close()
}

func metadataKey(userID uuid.UUID) string {
	return fmt.Sprintf("mealshare:identity:%s", userID)
}

// SetVolunteer writes the volunteer flag for the identity.
func (m *MetadataStore) SetVolunteer(ctx context.Context, userID uuid.UUID, volunteer bool) error {
	if err := m.client.HSet(ctx, metadataKey(userID), "volunteer", volunteer).Err(); err != nil {
		return fmt.Errorf("set volunteer flag: %w", err)
	}
	return nil
}

// IsVolunteer reads the volunteer flag; an absent key or field reads as
// false without error.
func (m *MetadataStore) IsVolunteer(ctx context.Context, userID uuid.UUID) (bool, error) {
	val, err := m.client.HGet(ctx, metadataKey(userID), "volunteer").Bool()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("get volunteer flag: %w", err)
	}
	return val, nil
}
