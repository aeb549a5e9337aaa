// Package gate tracks content availability. Until the full corpus has been
// provisioned, selection is restricted to a small seed allowlist.
package gate

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/calumbell/wordpace/internal/domain"
)

// State is the provisioning state of the bulk content. Transitions are
// monotonic: SeedOnly -> Downloading -> Full.
type State string

const (
	SeedOnly    State = "seed_only"
	Downloading State = "downloading"
	Full        State = "full"
)

const metaKey = "content_state"

// rank orders states for the monotonicity check.
func rank(s State) int {
	switch s {
	case SeedOnly:
		return 0
	case Downloading:
		return 1
	case Full:
		return 2
	}
	return -1
}

// Store is the persistence surface the gate reads its state from.
type Store interface {
	GetMeta(ctx context.Context, key string) (string, bool, error)
	SetMeta(ctx context.Context, key, value string) error
}

// Gate answers whether the full content set is selectable. Check hits the
// store, so callers must treat it as a suspend point; only a positive
// result is cached for the process lifetime, since the state can still
// transition upward during a session.
type Gate struct {
	store Store
	seed  map[string]struct{}
	full  atomic.Bool
}

// New builds a gate over the given store and seed allowlist.
func New(store Store, seedWords []string) *Gate {
	seed := make(map[string]struct{}, len(seedWords))
	for _, w := range seedWords {
		seed[domain.NormalizeWord(w)] = struct{}{}
	}
	return &Gate{store: store, seed: seed}
}

// Check reports whether the full content set is available.
func (g *Gate) Check(ctx context.Context) (bool, error) {
	if g.full.Load() {
		return true, nil
	}
	state, err := g.State(ctx)
	if err != nil {
		return false, err
	}
	if state == Full {
		g.full.Store(true)
		return true, nil
	}
	return false, nil
}

// State reads the current provisioning state. An unwritten state means
// only seed content exists.
func (g *Gate) State(ctx context.Context) (State, error) {
	value, ok, err := g.store.GetMeta(ctx, metaKey)
	if err != nil {
		return "", err
	}
	if !ok {
		return SeedOnly, nil
	}
	return State(value), nil
}

// SetState advances the provisioning state. Backward transitions are
// rejected; provisioning only ever moves toward Full.
func (g *Gate) SetState(ctx context.Context, next State) error {
	if rank(next) < 0 {
		return fmt.Errorf("unknown content state %q", next)
	}
	current, err := g.State(ctx)
	if err != nil {
		return err
	}
	if rank(next) < rank(current) {
		return fmt.Errorf("content state cannot move back from %s to %s", current, next)
	}
	if err := g.store.SetMeta(ctx, metaKey, string(next)); err != nil {
		return err
	}
	if next == Full {
		g.full.Store(true)
	}
	return nil
}

// IsSeedItem tests membership in the always-selectable seed allowlist.
func (g *Gate) IsSeedItem(key string) bool {
	_, ok := g.seed[domain.NormalizeWord(key)]
	return ok
}
