package lending

import (
	"boostlend/core"
	"bytes"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// PositionKey (asset, user)
type PositionKey struct {
	Asset common.Address
	User  common.Address
}

// State every reserve, position and stake of the protocol. State is not safe
// for concurrent use; callers serialise operations.
type State struct {
	reserves map[common.Address]*core.Reserve
	variable map[PositionKey]*core.VariableDebt
	stable   map[PositionKey]*core.StableDebt
	supplies map[PositionKey]*core.Supply
	stakes   map[PositionKey]*core.Stake
	pools    map[common.Address]*core.YieldPool
	locks    map[common.Address]*core.BoosterLock

	journal *journal
	// committed but not yet flushed
	dirty  map[recordKey]struct{}
	events []core.Event
}

// NewState empty state
func NewState() *State {
	return &State{
		reserves: make(map[common.Address]*core.Reserve),
		variable: make(map[PositionKey]*core.VariableDebt),
		stable:   make(map[PositionKey]*core.StableDebt),
		supplies: make(map[PositionKey]*core.Supply),
		stakes:   make(map[PositionKey]*core.Stake),
		pools:    make(map[common.Address]*core.YieldPool),
		locks:    make(map[common.Address]*core.BoosterLock),
		dirty:    make(map[recordKey]struct{}),
	}
}

// atomic runs fn as one all-or-nothing operation. On error every record
// touched by fn is restored and the events it emitted are dropped.
func (s *State) atomic(fn func() error) error {
	if s.journal != nil {
		return fn()
	}

	s.journal = newJournal()
	j := s.journal
	defer func() { s.journal = nil }()

	if err := fn(); err != nil {
		j.revert()
		return err
	}

	for key := range j.touched {
		s.dirty[key] = struct{}{}
	}
	s.events = append(s.events, j.events...)
	return nil
}

func (s *State) emit(e core.Event) {
	if s.journal == nil {
		s.events = append(s.events, e)
		return
	}
	s.journal.events = append(s.journal.events, e)
}

func (s *State) mutReserve(asset common.Address) *core.Reserve {
	journalRecord(s.journal, recordKey{kind: kindReserve, asset: asset}, s.reserves, asset)
	return s.reserves[asset]
}

func (s *State) createReserve(r *core.Reserve) {
	journalRecord(s.journal, recordKey{kind: kindReserve, asset: r.Asset}, s.reserves, r.Asset)
	s.reserves[r.Asset] = r
}

func (s *State) mutVariableDebt(asset, user common.Address) *core.VariableDebt {
	k := PositionKey{Asset: asset, User: user}
	journalRecord(s.journal, recordKey{kind: kindVariableDebt, asset: asset, user: user}, s.variable, k)
	d, ok := s.variable[k]
	if !ok {
		d = &core.VariableDebt{Asset: asset, User: user, ScaledBalance: new(uint256.Int), LastIndex: new(uint256.Int)}
		s.variable[k] = d
	}
	return d
}

func (s *State) mutStableDebt(asset, user common.Address) *core.StableDebt {
	k := PositionKey{Asset: asset, User: user}
	journalRecord(s.journal, recordKey{kind: kindStableDebt, asset: asset, user: user}, s.stable, k)
	d, ok := s.stable[k]
	if !ok {
		d = &core.StableDebt{Asset: asset, User: user, Principal: new(uint256.Int), Rate: new(uint256.Int)}
		s.stable[k] = d
	}
	return d
}

func (s *State) mutSupply(asset, user common.Address) *core.Supply {
	k := PositionKey{Asset: asset, User: user}
	journalRecord(s.journal, recordKey{kind: kindSupply, asset: asset, user: user}, s.supplies, k)
	d, ok := s.supplies[k]
	if !ok {
		d = &core.Supply{Asset: asset, User: user, ScaledBalance: new(uint256.Int), LastIndex: new(uint256.Int)}
		s.supplies[k] = d
	}
	return d
}

func (s *State) mutStake(asset, user common.Address) *core.Stake {
	k := PositionKey{Asset: asset, User: user}
	journalRecord(s.journal, recordKey{kind: kindStake, asset: asset, user: user}, s.stakes, k)
	d, ok := s.stakes[k]
	if !ok {
		d = &core.Stake{Asset: asset, User: user, Amount: new(uint256.Int), RewardDebt: new(uint256.Int)}
		s.stakes[k] = d
	}
	return d
}

func (s *State) deleteStake(asset, user common.Address) {
	k := PositionKey{Asset: asset, User: user}
	journalRecord(s.journal, recordKey{kind: kindStake, asset: asset, user: user}, s.stakes, k)
	delete(s.stakes, k)
}

func (s *State) mutPool(asset common.Address) *core.YieldPool {
	journalRecord(s.journal, recordKey{kind: kindPool, asset: asset}, s.pools, asset)
	p, ok := s.pools[asset]
	if !ok {
		p = &core.YieldPool{Asset: asset, TotalStaked: new(uint256.Int), AccRewardPerShare: new(uint256.Int)}
		s.pools[asset] = p
	}
	return p
}

func (s *State) putLock(lock *core.BoosterLock) {
	journalRecord(s.journal, recordKey{kind: kindLock, user: lock.User}, s.locks, lock.User)
	s.locks[lock.User] = lock
}

func (s *State) deleteLock(user common.Address) {
	journalRecord(s.journal, recordKey{kind: kindLock, user: user}, s.locks, user)
	delete(s.locks, user)
}

// Reserve copy of the reserve of asset, nil if not registered
func (s *State) Reserve(asset common.Address) *core.Reserve {
	if r, ok := s.reserves[asset]; ok {
		return r.Clone()
	}
	return nil
}

// Reserves copies of every reserve ordered by asset
func (s *State) Reserves() []*core.Reserve {
	reserves := make([]*core.Reserve, 0, len(s.reserves))
	for _, r := range s.reserves {
		reserves = append(reserves, r.Clone())
	}
	sort.Slice(reserves, func(i, j int) bool {
		return bytes.Compare(reserves[i].Asset.Bytes(), reserves[j].Asset.Bytes()) < 0
	})
	return reserves
}

// VariableDebt copy of the position, nil if absent
func (s *State) VariableDebt(asset, user common.Address) *core.VariableDebt {
	if d, ok := s.variable[PositionKey{Asset: asset, User: user}]; ok {
		return d.Clone()
	}
	return nil
}

// StableDebt copy of the position, nil if absent
func (s *State) StableDebt(asset, user common.Address) *core.StableDebt {
	if d, ok := s.stable[PositionKey{Asset: asset, User: user}]; ok {
		return d.Clone()
	}
	return nil
}

// Supply copy of the position, nil if absent
func (s *State) Supply(asset, user common.Address) *core.Supply {
	if d, ok := s.supplies[PositionKey{Asset: asset, User: user}]; ok {
		return d.Clone()
	}
	return nil
}

// Stake copy of the stake, nil if absent
func (s *State) Stake(asset, user common.Address) *core.Stake {
	if d, ok := s.stakes[PositionKey{Asset: asset, User: user}]; ok {
		return d.Clone()
	}
	return nil
}

// Pool copy of the yield pool, nil if absent
func (s *State) Pool(asset common.Address) *core.YieldPool {
	if p, ok := s.pools[asset]; ok {
		return p.Clone()
	}
	return nil
}

// Lock copy of the user's booster lock, nil if absent
func (s *State) Lock(user common.Address) *core.BoosterLock {
	if l, ok := s.locks[user]; ok {
		return l.Clone()
	}
	return nil
}

// UsingBooster the user has a booster locked
func (s *State) UsingBooster(user common.Address) bool {
	_, ok := s.locks[user]
	return ok
}

// ScaledVariableDebtSum sum of every variable position of asset
func (s *State) ScaledVariableDebtSum(asset common.Address) *uint256.Int {
	sum := new(uint256.Int)
	for k, d := range s.variable {
		if k.Asset == asset {
			sum.Add(sum, d.ScaledBalance)
		}
	}
	return sum
}

// PutReserve loads a reserve without journaling
func (s *State) PutReserve(r *core.Reserve) { s.reserves[r.Asset] = r.Clone() }

// PutVariableDebt loads a position without journaling
func (s *State) PutVariableDebt(d *core.VariableDebt) {
	s.variable[PositionKey{Asset: d.Asset, User: d.User}] = d.Clone()
}

// PutStableDebt loads a position without journaling
func (s *State) PutStableDebt(d *core.StableDebt) {
	s.stable[PositionKey{Asset: d.Asset, User: d.User}] = d.Clone()
}

// PutSupply loads a position without journaling
func (s *State) PutSupply(d *core.Supply) {
	s.supplies[PositionKey{Asset: d.Asset, User: d.User}] = d.Clone()
}

// PutStake loads a stake without journaling
func (s *State) PutStake(d *core.Stake) {
	s.stakes[PositionKey{Asset: d.Asset, User: d.User}] = d.Clone()
}

// PutPool loads a yield pool without journaling
func (s *State) PutPool(p *core.YieldPool) { s.pools[p.Asset] = p.Clone() }

// PutLock loads a booster lock without journaling
func (s *State) PutLock(l *core.BoosterLock) { s.locks[l.User] = l.Clone() }
