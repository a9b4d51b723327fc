package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/MrSnakeDoc/utmgen/internal/domain"
	"github.com/MrSnakeDoc/utmgen/internal/store"
)

const testTTL = time.Hour

func newTestStore(t *testing.T) (*SessionStore, *miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSessionStore(client, testTTL), mr, client
}

func setName(name string) store.UpdateFunc {
	return func(s *domain.SessionState) error {
		s.CampaignName = name
		return nil
	}
}

func TestUpdateCreatesMissingSession(t *testing.T) {
	s, mr, _ := newTestStore(t)
	ctx := context.Background()

	state, err := s.Update(ctx, "sid", setName("first"))
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if state.ID != "sid" || state.CampaignName != "first" {
		t.Errorf("Update() = %+v", state)
	}

	if !mr.Exists(SessionKey("sid")) {
		t.Fatal("session key not written")
	}
	if ttl := mr.TTL(SessionKey("sid")); ttl != testTTL {
		t.Errorf("TTL = %v, want %v", ttl, testTTL)
	}

	got, err := s.Get(ctx, "sid")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.CampaignName != "first" || got.SavedRecords == nil {
		t.Errorf("Get() = %+v", got)
	}
}

func TestUpdateFnErrorWritesNothing(t *testing.T) {
	s, mr, _ := newTestStore(t)
	ctx := context.Background()
	errBoom := errors.New("boom")

	// Fresh session: nothing may be created.
	_, err := s.Update(ctx, "fresh", func(st *domain.SessionState) error {
		st.CampaignName = "never"
		return errBoom
	})
	if !errors.Is(err, errBoom) {
		t.Fatalf("Update() error = %v, want %v", err, errBoom)
	}
	if mr.Exists(SessionKey("fresh")) {
		t.Error("failed Update() created the session key")
	}
	if _, err := s.Get(ctx, "fresh"); !errors.Is(err, store.ErrSessionNotFound) {
		t.Errorf("Get() error = %v, want ErrSessionNotFound", err)
	}

	// Existing session: previous content is kept.
	if _, err := s.Update(ctx, "sid", setName("kept")); err != nil {
		t.Fatal(err)
	}
	_, err = s.Update(ctx, "sid", func(st *domain.SessionState) error {
		st.CampaignName = "discarded"
		st.SaveRecord("x", "https://keboola.com")
		return fmt.Errorf("%w: label", domain.ErrMissingRequiredField)
	})
	if !errors.Is(err, domain.ErrMissingRequiredField) {
		t.Fatalf("Update() error = %v", err)
	}

	got, err := s.Get(ctx, "sid")
	if err != nil {
		t.Fatal(err)
	}
	if got.CampaignName != "kept" || len(got.SavedRecords) != 0 {
		t.Errorf("failed Update() changed the session: %+v", got)
	}
}

func TestUpdateRetriesOnConflict(t *testing.T) {
	s, _, client := newTestStore(t)
	ctx := context.Background()

	calls := 0
	state, err := s.Update(ctx, "sid", func(st *domain.SessionState) error {
		calls++
		if calls == 1 {
			// Another replica writes the watched key mid-transaction.
			other := domain.NewSessionState("sid", time.Now())
			other.CampaignName = "from-other-replica"
			data, err := json.Marshal(other)
			if err != nil {
				return err
			}
			if err := client.Set(ctx, SessionKey("sid"), data, testTTL).Err(); err != nil {
				return err
			}
		}
		st.SaveRecord(st.CampaignName, "https://keboola.com?utm_source=x")
		return nil
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if calls != 2 {
		t.Errorf("fn called %d times, want 2", calls)
	}
	if state.CampaignName != "from-other-replica" || len(state.SavedRecords) != 1 {
		t.Errorf("Update() = %+v, want the retry applied on top of the concurrent write", state)
	}
}

func TestUpdateConcurrentSaves(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()
	const writers = 8

	var g errgroup.Group
	for i := 0; i < writers; i++ {
		g.Go(func() error {
			_, err := s.Update(ctx, "sid", func(st *domain.SessionState) error {
				st.SaveRecord(fmt.Sprintf("camp-%d", i), "https://keboola.com")
				return nil
			})
			return err
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("concurrent Update() error = %v", err)
	}

	got, err := s.Get(ctx, "sid")
	if err != nil {
		t.Fatal(err)
	}
	if len(got.SavedRecords) != writers {
		t.Errorf("records = %d, want %d (lost update)", len(got.SavedRecords), writers)
	}
}

func TestSlidingTTL(t *testing.T) {
	s, mr, _ := newTestStore(t)
	ctx := context.Background()
	key := SessionKey("sid")

	if _, err := s.Update(ctx, "sid", setName("a")); err != nil {
		t.Fatal(err)
	}

	mr.FastForward(40 * time.Minute)
	if ttl := mr.TTL(key); ttl != 20*time.Minute {
		t.Fatalf("TTL after 40m = %v, want 20m", ttl)
	}

	if _, err := s.Get(ctx, "sid"); err != nil {
		t.Fatal(err)
	}
	if ttl := mr.TTL(key); ttl != testTTL {
		t.Errorf("TTL after Get() = %v, want %v", ttl, testTTL)
	}

	mr.FastForward(30 * time.Minute)
	if _, err := s.Update(ctx, "sid", setName("b")); err != nil {
		t.Fatal(err)
	}
	if ttl := mr.TTL(key); ttl != testTTL {
		t.Errorf("TTL after Update() = %v, want %v", ttl, testTTL)
	}

	mr.FastForward(testTTL + time.Second)
	if _, err := s.Get(ctx, "sid"); !errors.Is(err, store.ErrSessionNotFound) {
		t.Errorf("Get() after expiry error = %v, want ErrSessionNotFound", err)
	}
}

func TestDeleteAndLen(t *testing.T) {
	s, mr, _ := newTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b"} {
		if _, err := s.Update(ctx, id, setName(id)); err != nil {
			t.Fatal(err)
		}
	}
	mr.Set("unrelated", "x")

	if n, err := s.Len(ctx); err != nil || n != 2 {
		t.Errorf("Len() = %d, %v, want 2", n, err)
	}

	if err := s.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := s.Delete(ctx, "missing"); err != nil {
		t.Errorf("Delete() of a missing session error = %v", err)
	}
	if n, _ := s.Len(ctx); n != 1 {
		t.Errorf("Len() after Delete() = %d, want 1", n)
	}
	if err := s.Ping(ctx); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}

func TestRetryBackoffBounds(t *testing.T) {
	for attempt := 0; attempt < maxTxRetries; attempt++ {
		for i := 0; i < 50; i++ {
			d := retryBackoff(attempt)
			if d < txRetryBase || d >= txRetryBase<<6 {
				t.Fatalf("retryBackoff(%d) = %v out of bounds", attempt, d)
			}
		}
	}
}

func TestUpdateStopsRetryingOnCancel(t *testing.T) {
	s, _, client := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())

	_, err := s.Update(ctx, "sid", func(st *domain.SessionState) error {
		// Conflict on every attempt, then cancel before the retry wait.
		if err := client.Set(context.Background(), SessionKey("sid"), `{"id":"sid"}`, testTTL).Err(); err != nil {
			return err
		}
		cancel()
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Update() error = %v, want context.Canceled", err)
	}
}
