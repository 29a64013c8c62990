package booster

import (
	"boostlend/core"
	"context"
	"errors"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

var (
	// ErrTokenNotFound booster does not exist
	ErrTokenNotFound = errors.New("booster: token not found")
	// ErrTokenExists booster already minted
	ErrTokenExists = errors.New("booster: token already minted")
	// ErrNotOwner caller does not own the booster
	ErrNotOwner = errors.New("booster: caller is not the owner")
)

// Token booster nft
type Token struct {
	ID     uint64             `json:"id"`
	Owner  common.Address     `json:"owner"`
	Type   core.BoosterType   `json:"type"`
	Action core.BoosterAction `json:"action"`
}

// Registry in process booster registry. Locking moves a token into the
// custody account, unlocking moves it back to the owner.
type Registry struct {
	mu        sync.RWMutex
	custodian common.Address
	tokens    map[uint64]Token
	dirty     map[uint64]bool
	depth     int
	journal   []func()
}

// New empty registry, locked tokens are held by custodian
func New(custodian common.Address) *Registry {
	return &Registry{
		custodian: custodian,
		tokens:    make(map[uint64]Token),
		dirty:     make(map[uint64]bool),
	}
}

// Reset replaces the registry content with persisted boosters
func (r *Registry) Reset(boosters []*core.Booster) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tokens = make(map[uint64]Token, len(boosters))
	r.dirty = make(map[uint64]bool)
	r.depth = 0
	r.journal = nil
	for _, b := range boosters {
		r.tokens[b.ID] = Token{ID: b.ID, Owner: b.Owner, Type: b.Type, Action: b.Action}
	}
}

// Flush returns the boosters minted or moved since the last flush
func (r *Registry) Flush() []*core.Booster {
	r.mu.Lock()
	defer r.mu.Unlock()

	boosters := make([]*core.Booster, 0, len(r.dirty))
	for id := range r.dirty {
		t, ok := r.tokens[id]
		if !ok {
			// minted and reverted before it was ever flushed
			continue
		}

		boosters = append(boosters, &core.Booster{ID: t.ID, Owner: t.Owner, Type: t.Type, Action: t.Action})
	}

	r.dirty = make(map[uint64]bool)
	return boosters
}

// Locked reports whether tokenID is held by the custodian
func (r *Registry) Locked(tokenID uint64) bool {
	t, ok := r.Find(tokenID)
	return ok && t.Owner == r.custodian
}

var _ core.BoosterRegistry = (*Registry)(nil)

// Mint creates a booster owned by owner
func (r *Registry) Mint(token Token) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tokens[token.ID]; ok {
		return ErrTokenExists
	}
	r.set(token)
	return nil
}

// Find returns the booster tokenID
func (r *Registry) Find(tokenID uint64) (Token, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tokens[tokenID]
	return t, ok
}

// Transfer moves a booster between accounts
func (r *Registry) Transfer(from, to common.Address, tokenID uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.move(from, to, tokenID)
}

// Describe implements core.BoosterRegistry
func (r *Registry) Describe(_ context.Context, tokenID uint64) (core.BoosterType, core.BoosterAction, error) {
	t, ok := r.Find(tokenID)
	if !ok {
		return 0, 0, ErrTokenNotFound
	}
	return t.Type, t.Action, nil
}

// Lock implements core.BoosterRegistry
func (r *Registry) Lock(_ context.Context, owner common.Address, tokenID uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.move(owner, r.custodian, tokenID)
}

// Unlock implements core.BoosterRegistry
func (r *Registry) Unlock(_ context.Context, owner common.Address, tokenID uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.move(r.custodian, owner, tokenID)
}

func (r *Registry) move(from, to common.Address, tokenID uint64) error {
	t, ok := r.tokens[tokenID]
	if !ok {
		return ErrTokenNotFound
	}

	if t.Owner != from {
		return ErrNotOwner
	}

	t.Owner = to
	r.set(t)
	return nil
}

func (r *Registry) set(t Token) {
	if r.depth > 0 {
		prev, ok := r.tokens[t.ID]
		r.journal = append(r.journal, func() {
			if ok {
				r.tokens[t.ID] = prev
			} else {
				delete(r.tokens, t.ID)
			}
		})
	}
	r.tokens[t.ID] = t
	r.dirty[t.ID] = true
}

// Snapshot implements lending.Snapshotter
func (r *Registry) Snapshot() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.depth++
	return len(r.journal)
}

// RevertToSnapshot undoes every move made after snapshot id
func (r *Registry) RevertToSnapshot(id int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := len(r.journal) - 1; i >= id; i-- {
		r.journal[i]()
	}
	r.journal = r.journal[:id]
	r.release()
}

// DiscardSnapshot keeps the moves made after snapshot id
func (r *Registry) DiscardSnapshot(int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.release()
}

func (r *Registry) release() {
	if r.depth > 0 {
		r.depth--
	}
	if r.depth == 0 {
		r.journal = nil
	}
}
