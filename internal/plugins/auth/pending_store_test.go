package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/vishwatech/studyplan/internal/apperror"
)

func newTestPendingStore(t *testing.T) (PendingStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewPendingStore(rdb), mr
}

func TestPendingStore_SaveFind(t *testing.T) {
	store, _ := newTestPendingStore(t)
	ctx := context.Background()

	p := &PendingRegistration{DisplayName: "alice", Email: "a@x.com", OTPCode: "123456", SessionID: "sid-1"}
	if err := store.Save(ctx, p, time.Minute); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := store.Find(ctx, "a@x.com", "sid-1")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.DisplayName != "alice" || got.OTPCode != "123456" {
		t.Errorf("unexpected record: %+v", got)
	}

	if _, err := store.Find(ctx, "a@x.com", "sid-2"); !apperror.IsNotFound(err) {
		t.Errorf("expected not found for a different session, got %v", err)
	}
}

func TestPendingStore_SaveReplaces(t *testing.T) {
	store, _ := newTestPendingStore(t)
	ctx := context.Background()

	_ = store.Save(ctx, &PendingRegistration{Email: "a@x.com", SessionID: "old"}, time.Minute)
	_ = store.Save(ctx, &PendingRegistration{Email: "a@x.com", SessionID: "new"}, time.Minute)

	if _, err := store.Find(ctx, "a@x.com", "old"); !apperror.IsNotFound(err) {
		t.Errorf("expected superseded record to be gone, got %v", err)
	}
	if _, err := store.Find(ctx, "a@x.com", "new"); err != nil {
		t.Errorf("expected latest record, got %v", err)
	}
}

func TestPendingStore_Expiry(t *testing.T) {
	store, mr := newTestPendingStore(t)
	ctx := context.Background()

	_ = store.Save(ctx, &PendingRegistration{Email: "a@x.com", SessionID: "sid"}, 10*time.Minute)
	mr.FastForward(10*time.Minute + time.Second)

	if _, err := store.Find(ctx, "a@x.com", "sid"); !apperror.IsNotFound(err) {
		t.Errorf("expected expired record to be gone, got %v", err)
	}
}

func TestPendingStore_Delete(t *testing.T) {
	store, mr := newTestPendingStore(t)
	ctx := context.Background()

	_ = store.Save(ctx, &PendingRegistration{Email: "a@x.com", SessionID: "sid"}, time.Minute)
	if err := store.Delete(ctx, "a@x.com"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if mr.Exists(pendingKeyPrefix + "a@x.com") {
		t.Error("expected key to be removed")
	}
	if err := store.Delete(ctx, "missing@x.com"); err != nil {
		t.Errorf("deleting a missing key should succeed, got %v", err)
	}
}

func TestPendingStore_RecordMiss(t *testing.T) {
	store, mr := newTestPendingStore(t)
	ctx := context.Background()

	_ = store.Save(ctx, &PendingRegistration{Email: "a@x.com", SessionID: "sid"}, 10*time.Minute)
	for want := 1; want <= 3; want++ {
		got, err := store.RecordMiss(ctx, "a@x.com", 10*time.Minute)
		if err != nil {
			t.Fatalf("record miss: %v", err)
		}
		if got != want {
			t.Errorf("expected %d misses, got %d", want, got)
		}
	}
	if ttl := mr.TTL(attemptsKeyPrefix + "a@x.com"); ttl <= 0 || ttl > 10*time.Minute {
		t.Errorf("expected miss counter to expire within 10m, got %s", ttl)
	}

	// Saving a new attempt clears the counter.
	_ = store.Save(ctx, &PendingRegistration{Email: "a@x.com", SessionID: "sid-2"}, 10*time.Minute)
	if got, _ := store.RecordMiss(ctx, "a@x.com", 10*time.Minute); got != 1 {
		t.Errorf("expected counter reset after save, got %d", got)
	}

	if err := store.Delete(ctx, "a@x.com"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if mr.Exists(attemptsKeyPrefix + "a@x.com") {
		t.Error("expected delete to drop the miss counter")
	}
}
