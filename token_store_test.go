package authflow

import (
	"context"
	"errors"
	"testing"
)

func TestTokenStoreRoundTrip(t *testing.T) {
	_, client := newTestRedis(t)
	store := newTokenStore(client)
	ctx := context.Background()

	if err := store.Set(ctx, "_session_token", "abc123"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	token, err := store.Get(ctx, "_session_token")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if token != "abc123" {
		t.Fatalf("token = %q, want abc123", token)
	}

	if err := store.Remove(ctx, "_session_token"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, err := store.Get(ctx, "_session_token"); !errors.Is(err, errTokenNotFound) {
		t.Fatalf("Get after Remove = %v, want errTokenNotFound", err)
	}
}

func TestTokenStoreMissing(t *testing.T) {
	_, client := newTestRedis(t)
	store := newTokenStore(client)

	_, err := store.Get(context.Background(), "nope")
	if !errors.Is(err, errTokenNotFound) {
		t.Fatalf("err = %v, want errTokenNotFound", err)
	}
}

func TestTokenStoreRemoveAbsent(t *testing.T) {
	_, client := newTestRedis(t)
	store := newTokenStore(client)

	if err := store.Remove(context.Background(), "nope"); err != nil {
		t.Fatalf("Remove of absent token failed: %v", err)
	}
}

func TestTokenStoreKeyNamespace(t *testing.T) {
	mr, client := newTestRedis(t)
	store := newTokenStore(client)
	ctx := context.Background()

	if err := store.Set(ctx, "_session_token", "abc"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if _, err := mr.Get("aft:_session_token"); err != nil {
		t.Fatalf("namespaced key missing: %v", err)
	}
}

func TestTokenStoreUnavailable(t *testing.T) {
	mr, client := newTestRedis(t)
	store := newTokenStore(client)
	mr.Close()

	_, err := store.Get(context.Background(), "_session_token")
	if !errors.Is(err, errTokenStoreUnavailable) {
		t.Fatalf("err = %v, want errTokenStoreUnavailable", err)
	}
}
