package cache

import (
	"context"
	"testing"

	"gatherly-api/models"
)

func TestNewRedisClient(t *testing.T) {
	tests := []struct {
		url      string
		wantAddr string
		wantDB   int
	}{
		{"localhost:6379", "localhost:6379", 0},
		{"redis://cache.internal:6380/2", "cache.internal:6380", 2},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			client, err := NewRedisClient(tt.url)
			if err != nil {
				t.Fatalf("NewRedisClient: %v", err)
			}
			defer client.Close()

			if client.Options().Addr != tt.wantAddr || client.Options().DB != tt.wantDB {
				t.Fatalf("got %s/%d", client.Options().Addr, client.Options().DB)
			}
		})
	}

	if _, err := NewRedisClient("redis://host:notaport/x"); err == nil {
		t.Fatal("expected an error for a malformed URL")
	}
}

func TestKey(t *testing.T) {
	if got := Key("p1"); got != "gatherly:shortlist:p1" {
		t.Fatalf("Key = %s", got)
	}
}

func TestNoopShortlistCache(t *testing.T) {
	var c NoopShortlistCache
	ctx := context.Background()

	if err := c.Set(ctx, "p1", &models.ShortlistResult{PlanID: "p1"}); err != nil {
		t.Fatal(err)
	}
	if _, ok, err := c.Get(ctx, "p1"); ok || err != nil {
		t.Fatalf("noop cache returned ok=%v err=%v", ok, err)
	}
	if err := c.Delete(ctx, "p1"); err != nil {
		t.Fatal(err)
	}
}
