package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/utmgen/internal/domain"
	"github.com/MrSnakeDoc/utmgen/internal/store"
)

const (
	// DefaultSessionTTL is the default idle lifetime of a session (12 hours)
	DefaultSessionTTL = 12 * time.Hour

	// maxTxRetries bounds optimistic transaction retries on concurrent writes
	maxTxRetries = 10

	// txRetryBase is the unit of the randomized wait between conflicting attempts
	txRetryBase = 2 * time.Millisecond
)

// SessionStore keeps each session as a JSON blob with a sliding TTL
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

var _ store.SessionStore = (*SessionStore)(nil)

// NewSessionStore creates a new Redis session store
func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionStore{
		client: client,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Name implements store.SessionStore
func (s *SessionStore) Name() string { return store.BackendRedis }

// Ping implements store.SessionStore
func (s *SessionStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Get retrieves a session and slides its expiration
func (s *SessionStore) Get(ctx context.Context, id string) (*domain.SessionState, error) {
	data, err := s.client.GetEx(ctx, SessionKey(id), s.ttl).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: %s", store.ErrSessionNotFound, id)
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return decodeSession(data)
}

// Update applies fn inside a WATCH/MULTI transaction on the session key
func (s *SessionStore) Update(ctx context.Context, id string, fn store.UpdateFunc) (*domain.SessionState, error) {
	key := SessionKey(id)

	var result *domain.SessionState
	txf := func(tx *redis.Tx) error {
		now := s.now()

		state, err := s.load(ctx, tx, key, id, now)
		if err != nil {
			return err
		}

		if err := fn(state); err != nil {
			return err
		}
		state.UpdatedAt = now

		data, err := json.Marshal(state)
		if err != nil {
			return fmt.Errorf("failed to marshal session: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, s.ttl)
			return nil
		})
		if err != nil {
			return err
		}

		result = state
		return nil
	}

	for attempt := 0; attempt < maxTxRetries; attempt++ {
		err := s.client.Watch(ctx, txf, key)
		if err == nil {
			return result, nil
		}
		if !errors.Is(err, redis.TxFailedErr) {
			return nil, err
		}
		// Key changed under us, retry with fresh state after a jittered pause
		if err := sleepCtx(ctx, retryBackoff(attempt)); err != nil {
			return nil, fmt.Errorf("failed to update session %s: %w", id, err)
		}
	}

	return nil, fmt.Errorf("failed to update session %s: gave up after %d conflicting attempts", id, maxTxRetries)
}

// retryBackoff returns a random wait in [base, base*2^(attempt+1)), capped at 64 units
func retryBackoff(attempt int) time.Duration {
	span := int64(txRetryBase) << min(attempt+1, 6)
	return txRetryBase + time.Duration(rand.Int64N(span-int64(txRetryBase)))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Delete removes a session from Redis
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, SessionKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Len counts session keys
func (s *SessionStore) Len(ctx context.Context) (int, error) {
	count := 0
	iter := s.client.Scan(ctx, 0, KeyPrefixSession+"*", 0).Iterator()
	for iter.Next(ctx) {
		if _, err := ExtractSessionID(iter.Val()); err != nil {
			continue // bare prefix
		}
		count++
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("failed to count sessions: %w", err)
	}
	return count, nil
}

// load reads the watched key, falling back to a fresh session when it is absent
func (s *SessionStore) load(ctx context.Context, tx *redis.Tx, key, id string, now time.Time) (*domain.SessionState, error) {
	data, err := tx.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.NewSessionState(id, now), nil
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return decodeSession(data)
}

func decodeSession(data []byte) (*domain.SessionState, error) {
	var state domain.SessionState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	if state.SavedRecords == nil {
		state.SavedRecords = []domain.SavedRecord{}
	}
	return &state, nil
}
