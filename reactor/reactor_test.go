package reactor

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestRunDrainsBothStrands(t *testing.T) {
	r := New()
	var mu sync.Mutex
	var order []string

	r.TransportStrand.Post(func() {
		mu.Lock()
		order = append(order, "transport")
		mu.Unlock()
	})
	r.UserStrand.Post(func() {
		mu.Lock()
		order = append(order, "user")
		mu.Unlock()
	})

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(order) != 2 {
		t.Fatalf("expected 2 tasks run, got %d", len(order))
	}
}

func TestRunWaitsForOutstandingWork(t *testing.T) {
	r := New()
	r.Enter()

	done := make(chan struct{})
	go func() {
		r.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("Run returned before outstanding work completed")
	case <-time.After(20 * time.Millisecond):
	}

	r.UserStrand.Post(func() {})
	r.Leave()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after work completed")
	}
}

func TestStopEndsRun(t *testing.T) {
	r := New()
	r.Enter() // never leaves, so only Stop or ctx can end Run

	done := make(chan struct{})
	go func() {
		r.Run(context.Background())
		close(done)
	}()

	r.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop did not cause Run to return")
	}
}

func TestRunForExpiresOnDeadline(t *testing.T) {
	r := New()
	r.Enter()

	start := time.Now()
	if err := r.RunFor(20 * time.Millisecond); err != nil {
		t.Fatalf("RunFor returned error: %v", err)
	}
	if time.Since(start) > 200*time.Millisecond {
		t.Fatalf("RunFor did not respect its deadline")
	}
}

func TestOrderingWithinAStrandIsPreserved(t *testing.T) {
	r := New()
	var mu sync.Mutex
	var order []int
	for i := 0; i < 10; i++ {
		i := i
		r.UserStrand.Post(func() {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
		})
	}
	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	for i, v := range order {
		if v != i {
			t.Fatalf("expected strictly FIFO order, got %v", order)
		}
	}
}
