//go:build testutil
// +build testutil

package cache_test

import (
	"context"
	"testing"
	"time"

	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/Spok95/college-library/internal/cache"
)

func startRedis(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })
	addr, err := c.Endpoint(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	return addr
}

func TestStorageRoundTrip(t *testing.T) {
	rdb := cache.Connect(context.Background(), startRedis(t), zap.NewNop())
	if rdb == nil {
		t.Fatal("ожидали подключение к Redis")
	}
	defer rdb.Close()

	s := cache.NewStorage(rdb, "test:")
	if v, err := s.Get("missing"); err != nil || v != nil {
		t.Fatalf("для отсутствующего ключа ожидали nil,nil; получили %q,%v", v, err)
	}
	if err := s.Set("ip:1", []byte("3"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if v, _ := s.Get("ip:1"); string(v) != "3" {
		t.Fatalf("Get=%q", v)
	}
	if err := s.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if v, _ := s.Get("ip:1"); v != nil {
		t.Fatalf("после Reset ключ остался: %q", v)
	}
}

func TestConnectWithoutAddr(t *testing.T) {
	if rdb := cache.Connect(context.Background(), "", zap.NewNop()); rdb != nil {
		t.Fatal("без адреса клиент должен быть nil")
	}
}
