package token

import (
	"boostlend/core"
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

type balanceKey struct {
	asset common.Address
	owner common.Address
}

type allowanceKey struct {
	asset   common.Address
	owner   common.Address
	spender common.Address
}

// Ledger in process multi asset token ledger. Every mutation is journaled so
// a failed protocol operation can revert the transfers it made, and marked
// dirty until the next Flush so it can be persisted.
type Ledger struct {
	mu         sync.RWMutex
	balances   map[balanceKey]*uint256.Int
	allowances map[allowanceKey]*uint256.Int

	dirtyBalances   map[balanceKey]bool
	dirtyAllowances map[allowanceKey]bool
	// open snapshots, mutations are journaled only while one is open
	depth   int
	journal []func()
}

// New empty ledger
func New() *Ledger {
	l := &Ledger{}
	l.reset()
	return l
}

func (l *Ledger) reset() {
	l.balances = make(map[balanceKey]*uint256.Int)
	l.allowances = make(map[allowanceKey]*uint256.Int)
	l.dirtyBalances = make(map[balanceKey]bool)
	l.dirtyAllowances = make(map[allowanceKey]bool)
	l.depth = 0
	l.journal = nil
}

// Reset replaces the content of the ledger with persisted records
func (l *Ledger) Reset(balances []*core.Balance, allowances []*core.Allowance) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.reset()
	for _, b := range balances {
		l.balances[balanceKey{asset: b.Asset, owner: b.Owner}] = new(uint256.Int).Set(b.Amount)
	}
	for _, a := range allowances {
		l.allowances[allowanceKey{asset: a.Asset, owner: a.Owner, spender: a.Spender}] = new(uint256.Int).Set(a.Amount)
	}
}

// Flush returns the balances and allowances changed since the last flush
func (l *Ledger) Flush() ([]*core.Balance, []*core.Allowance) {
	l.mu.Lock()
	defer l.mu.Unlock()

	balances := make([]*core.Balance, 0, len(l.dirtyBalances))
	for k := range l.dirtyBalances {
		balances = append(balances, &core.Balance{
			Asset:  k.asset,
			Owner:  k.owner,
			Amount: l.balance(k),
		})
	}

	allowances := make([]*core.Allowance, 0, len(l.dirtyAllowances))
	for k := range l.dirtyAllowances {
		amount := new(uint256.Int)
		if v, ok := l.allowances[k]; ok {
			amount.Set(v)
		}

		allowances = append(allowances, &core.Allowance{
			Asset:   k.asset,
			Owner:   k.owner,
			Spender: k.spender,
			Amount:  amount,
		})
	}

	l.dirtyBalances = make(map[balanceKey]bool)
	l.dirtyAllowances = make(map[allowanceKey]bool)
	return balances, allowances
}

var _ core.TokenService = (*Ledger)(nil)

// BalanceOf implements core.TokenService
func (l *Ledger) BalanceOf(_ context.Context, asset, owner common.Address) (*uint256.Int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.balance(balanceKey{asset: asset, owner: owner}), nil
}

// Allowance remaining allowance of spender on owner's asset
func (l *Ledger) Allowance(asset, owner, spender common.Address) *uint256.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if v, ok := l.allowances[allowanceKey{asset: asset, owner: owner, spender: spender}]; ok {
		return new(uint256.Int).Set(v)
	}
	return new(uint256.Int)
}

// Mint credits amount to owner
func (l *Ledger) Mint(asset, owner common.Address, amount *uint256.Int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	k := balanceKey{asset: asset, owner: owner}
	l.setBalance(k, new(uint256.Int).Add(l.balance(k), amount))
}

// Approve sets the allowance of spender on owner's asset
func (l *Ledger) Approve(asset, owner, spender common.Address, amount *uint256.Int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.setAllowance(allowanceKey{asset: asset, owner: owner, spender: spender}, new(uint256.Int).Set(amount))
}

// Transfer implements core.TokenService
func (l *Ledger) Transfer(_ context.Context, asset, from, to common.Address, amount *uint256.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.transfer(asset, from, to, amount)
}

// TransferFrom implements core.TokenService
func (l *Ledger) TransferFrom(_ context.Context, asset, spender, from, to common.Address, amount *uint256.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if spender != from {
		k := allowanceKey{asset: asset, owner: from, spender: spender}
		allowance, ok := l.allowances[k]
		if !ok || allowance.Lt(amount) {
			return core.ErrInsufficientAllowance
		}

		if bal := l.balance(balanceKey{asset: asset, owner: from}); bal.Lt(amount) {
			return core.ErrInsufficientBalance
		}

		l.setAllowance(k, new(uint256.Int).Sub(allowance, amount))
	}

	return l.transfer(asset, from, to, amount)
}

func (l *Ledger) transfer(asset, from, to common.Address, amount *uint256.Int) error {
	fromKey := balanceKey{asset: asset, owner: from}
	bal := l.balance(fromKey)
	if bal.Lt(amount) {
		return core.ErrInsufficientBalance
	}

	if from == to || amount.IsZero() {
		return nil
	}

	toKey := balanceKey{asset: asset, owner: to}
	l.setBalance(fromKey, new(uint256.Int).Sub(bal, amount))
	l.setBalance(toKey, new(uint256.Int).Add(l.balance(toKey), amount))
	return nil
}

func (l *Ledger) balance(k balanceKey) *uint256.Int {
	if v, ok := l.balances[k]; ok {
		return new(uint256.Int).Set(v)
	}
	return new(uint256.Int)
}

func (l *Ledger) setBalance(k balanceKey, v *uint256.Int) {
	if l.depth > 0 {
		prev, ok := l.balances[k]
		l.journal = append(l.journal, func() {
			if ok {
				l.balances[k] = prev
			} else {
				delete(l.balances, k)
			}
		})
	}
	l.balances[k] = v
	l.dirtyBalances[k] = true
}

func (l *Ledger) setAllowance(k allowanceKey, v *uint256.Int) {
	if l.depth > 0 {
		prev, ok := l.allowances[k]
		l.journal = append(l.journal, func() {
			if ok {
				l.allowances[k] = prev
			} else {
				delete(l.allowances, k)
			}
		})
	}
	l.allowances[k] = v
	l.dirtyAllowances[k] = true
}

// Snapshot implements lending.Snapshotter
func (l *Ledger) Snapshot() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.depth++
	return len(l.journal)
}

// RevertToSnapshot undoes every mutation made after snapshot id
func (l *Ledger) RevertToSnapshot(id int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i := len(l.journal) - 1; i >= id; i-- {
		l.journal[i]()
	}
	l.journal = l.journal[:id]
	l.release()
}

// DiscardSnapshot keeps the mutations made after snapshot id
func (l *Ledger) DiscardSnapshot(int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.release()
}

func (l *Ledger) release() {
	if l.depth > 0 {
		l.depth--
	}
	if l.depth == 0 {
		l.journal = nil
	}
}
