package keylock

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestAcquire_SerializesSameKey(t *testing.T) {
	m := New()

	var (
		mu      sync.Mutex
		active  int
		maxSeen int
	)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := m.Acquire(context.Background(), "pet-1")
			if err != nil {
				t.Errorf("acquire: %v", err)
				return
			}
			defer release()

			mu.Lock()
			active++
			if active > maxSeen {
				maxSeen = active
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			active--
			mu.Unlock()
		}()
	}
	wg.Wait()

	if maxSeen != 1 {
		t.Fatalf("expected exclusive access, saw %d concurrent holders", maxSeen)
	}
}

func TestAcquire_DistinctKeysDoNotBlock(t *testing.T) {
	m := New()

	r1, err := m.Acquire(context.Background(), "pet-1")
	if err != nil {
		t.Fatalf("acquire pet-1: %v", err)
	}
	defer r1()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	r2, err := m.Acquire(ctx, "pet-2")
	if err != nil {
		t.Fatalf("acquire pet-2 should not block on pet-1: %v", err)
	}
	r2()
}

func TestAcquire_TimeoutWhileHeld(t *testing.T) {
	m := New()

	release, err := m.Acquire(context.Background(), "pet-1")
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := m.Acquire(ctx, "pet-1"); !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}

	release()

	// liberado el lock, un nuevo acquire entra
	r2, err := m.Acquire(context.Background(), "pet-1")
	if err != nil {
		t.Fatalf("acquire after release: %v", err)
	}
	r2()
}

func TestAcquire_CleansUpIdleKeys(t *testing.T) {
	m := New()

	release, err := m.Acquire(context.Background(), "pet-1")
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	release()

	m.mu.Lock()
	n := len(m.locks)
	m.mu.Unlock()
	if n != 0 {
		t.Fatalf("expected empty lock map after release, got %d entries", n)
	}
}
