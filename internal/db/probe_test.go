package db

import (
	"context"
	"testing"
	"time"
)

func TestWaitReady(t *testing.T) {
	database := NewTestDB(t)

	if err := WaitReady(context.Background(), database, 3, time.Millisecond); err != nil {
		t.Fatalf("WaitReady: %v", err)
	}
}

func TestWaitReadyExhaustsAttempts(t *testing.T) {
	database, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	database.Close()

	start := time.Now()
	err = WaitReady(context.Background(), database, 3, time.Millisecond)
	if err == nil {
		t.Fatal("expected error for closed database")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("probe should be bounded, took %v", elapsed)
	}
}

func TestWaitReadyContextCancelled(t *testing.T) {
	database, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	database.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := WaitReady(ctx, database, 100, time.Hour); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
