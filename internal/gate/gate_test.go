package gate

import (
	"context"
	"testing"

	"github.com/calumbell/wordpace/internal/storage"
)

func setup(t *testing.T, seed ...string) (*Gate, *storage.DB) {
	t.Helper()
	db, err := storage.OpenMemory()
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return New(db, seed), db
}

func TestDefaultStateIsSeedOnly(t *testing.T) {
	g, _ := setup(t)
	ctx := context.Background()

	state, err := g.State(ctx)
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if state != SeedOnly {
		t.Errorf("expected seed_only before provisioning, got %s", state)
	}

	full, err := g.Check(ctx)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if full {
		t.Error("expected check to be false before provisioning")
	}
}

func TestIsSeedItem(t *testing.T) {
	g, _ := setup(t, "Hello", "water")

	if !g.IsSeedItem("hello") {
		t.Error("expected allowlist match to be case-normalized")
	}
	if !g.IsSeedItem("  WATER ") {
		t.Error("expected allowlist match after trimming")
	}
	if g.IsSeedItem("umbrella") {
		t.Error("expected non-seed word to be rejected")
	}
}

func TestTransitionsAreMonotonic(t *testing.T) {
	g, _ := setup(t)
	ctx := context.Background()

	if err := g.SetState(ctx, Downloading); err != nil {
		t.Fatalf("advance to downloading: %v", err)
	}
	if err := g.SetState(ctx, Full); err != nil {
		t.Fatalf("advance to full: %v", err)
	}
	if err := g.SetState(ctx, SeedOnly); err == nil {
		t.Error("expected backward transition to be rejected")
	}
	if err := g.SetState(ctx, Full); err != nil {
		t.Errorf("expected same-state write to be allowed: %v", err)
	}
	if err := g.SetState(ctx, State("bogus")); err == nil {
		t.Error("expected unknown state to be rejected")
	}
}

func TestNegativeResultNotCached(t *testing.T) {
	g, db := setup(t)
	ctx := context.Background()

	full, err := g.Check(ctx)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if full {
		t.Fatal("expected gate closed")
	}

	// The state can transition during a session; a second gate instance
	// stands in for the provisioning subsystem.
	if err := New(db, nil).SetState(ctx, Full); err != nil {
		t.Fatalf("provision: %v", err)
	}

	full, err = g.Check(ctx)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !full {
		t.Error("expected a fresh check to observe the transition")
	}
}

func TestPositiveResultCached(t *testing.T) {
	g, db := setup(t)
	ctx := context.Background()

	if err := g.SetState(ctx, Full); err != nil {
		t.Fatalf("provision: %v", err)
	}
	if full, err := g.Check(ctx); err != nil || !full {
		t.Fatalf("expected open gate, got %v, %v", full, err)
	}

	// A closed store would fail a fresh query; the cached positive result
	// must keep answering without touching it.
	db.Close()
	full, err := g.Check(ctx)
	if err != nil {
		t.Fatalf("cached check: %v", err)
	}
	if !full {
		t.Error("expected cached positive result after store closed")
	}
}
