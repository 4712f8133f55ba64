package cache

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestKey(t *testing.T) {
	got := Key("quote", []string{"AAPL", "MSFT"}, 3)
	if got != "quote:AAPL,MSFT:3" {
		t.Errorf("Key = %q", got)
	}
}

func TestMemoryCache_Eviction(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(2)
	c.Set(ctx, "a", []byte("1"))
	c.Set(ctx, "b", []byte("2"))
	c.Set(ctx, "a", []byte("3")) // update in place, no eviction
	if c.Len() != 2 {
		t.Fatalf("Len = %d, want 2", c.Len())
	}
	c.Set(ctx, "c", []byte("4")) // evicts b, the oldest insert
	if _, ok, _ := c.Get(ctx, "b"); ok {
		t.Error("b should have been evicted")
	}
	if v, ok, _ := c.Get(ctx, "a"); !ok || string(v) != "3" {
		t.Errorf("a = %q, %v", v, ok)
	}
}

type quote struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
}

func TestMemoize(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(10)
	calls := 0
	fn := func() (quote, error) {
		calls++
		return quote{Symbol: "AAPL", Price: 189.5}, nil
	}

	for i := 0; i < 3; i++ {
		q, err := Memoize(ctx, c, Key("quote", "AAPL"), fn)
		if err != nil {
			t.Fatal(err)
		}
		if q.Symbol != "AAPL" || q.Price != 189.5 {
			t.Errorf("got %+v", q)
		}
	}
	if calls != 1 {
		t.Errorf("fn called %d times, want 1", calls)
	}
}

func TestMemoize_ErrorsNotCached(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(10)
	calls := 0
	fn := func() (int, error) {
		calls++
		return 0, errors.New("provider down")
	}
	for i := 0; i < 2; i++ {
		if _, err := Memoize(ctx, c, "k", fn); err == nil {
			t.Fatal("expected error")
		}
	}
	if calls != 2 || c.Len() != 0 {
		t.Errorf("calls = %d, cached = %d", calls, c.Len())
	}
}

func TestMemoize_NilCache(t *testing.T) {
	v, err := Memoize(context.Background(), nil, "k", func() (string, error) { return "x", nil })
	if err != nil || v != "x" {
		t.Errorf("got %q, %v", v, err)
	}
}

func TestRedisCache(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in -short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	rc, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	if err != nil {
		t.Skipf("redis container unavailable: %v", err)
	}
	defer rc.Terminate(context.Background())

	host, err := rc.Host(ctx)
	if err != nil {
		t.Fatal(err)
	}
	port, err := rc.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatal(err)
	}
	addr := fmt.Sprintf("%s:%s", host, port.Port())

	s1, err := NewRedisCache(addr, "", 0, time.Minute, "session-1")
	if err != nil {
		t.Fatal(err)
	}
	defer s1.Close()
	s2, err := NewRedisCache(addr, "", 0, time.Minute, "session-2")
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()

	if err := s1.Set(ctx, "quote:AAPL", []byte(`{"price":1}`)); err != nil {
		t.Fatal(err)
	}
	if v, ok, err := s1.Get(ctx, "quote:AAPL"); err != nil || !ok || string(v) != `{"price":1}` {
		t.Errorf("same session get = %q, %v, %v", v, ok, err)
	}
	if _, ok, err := s2.Get(ctx, "quote:AAPL"); err != nil || ok {
		t.Errorf("other session should miss, got ok=%v err=%v", ok, err)
	}
}
