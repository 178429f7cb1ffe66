package health

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type staticChecker struct {
	name    string
	healthy bool
}

func (c staticChecker) Name() string                         { return c.name }
func (c staticChecker) IsHealthy() bool                      { return c.healthy }
func (c staticChecker) Start(context.Context, time.Duration) {}

func TestServiceHealthChecker_AllHealthy(t *testing.T) {
	h := NewServiceHealthChecker(zerolog.Nop(),
		staticChecker{name: "store", healthy: true},
		staticChecker{name: "geoindex", healthy: true},
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		h.Start(ctx, 10*time.Millisecond)
		close(done)
	}()

	deadline := time.Now().Add(time.Second)
	for !h.IsHealthy() {
		if time.Now().After(deadline) {
			t.Fatal("checker never became healthy")
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	<-done
}

func TestServiceHealthChecker_OneUnhealthy(t *testing.T) {
	h := NewServiceHealthChecker(zerolog.Nop(),
		staticChecker{name: "store", healthy: true},
		staticChecker{name: "geoindex", healthy: false},
	)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	h.Start(ctx, 10*time.Millisecond)

	if h.IsHealthy() {
		t.Fatal("service healthy despite unhealthy dependency")
	}
}
