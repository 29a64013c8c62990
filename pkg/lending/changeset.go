package lending

import (
	"boostlend/core"

	"github.com/ethereum/go-ethereum/common"
)

// ChangeSet records written by committed operations since the last flush
type ChangeSet struct {
	Reserves      []*core.Reserve
	VariableDebts []*core.VariableDebt
	StableDebts   []*core.StableDebt
	Supplies      []*core.Supply
	Stakes        []*core.Stake
	RemovedStakes []PositionKey
	Pools         []*core.YieldPool
	Locks         []*core.BoosterLock
	RemovedLocks  []common.Address
	Events        []core.Event
}

// Empty nothing to persist
func (c *ChangeSet) Empty() bool {
	return len(c.Reserves)+len(c.VariableDebts)+len(c.StableDebts)+len(c.Supplies)+
		len(c.Stakes)+len(c.RemovedStakes)+len(c.Pools)+len(c.Locks)+len(c.RemovedLocks)+len(c.Events) == 0
}

// Flush drains the committed changes
func (s *State) Flush() *ChangeSet {
	cs := &ChangeSet{Events: s.events}

	for key := range s.dirty {
		pk := PositionKey{Asset: key.asset, User: key.user}
		switch key.kind {
		case kindReserve:
			if r, ok := s.reserves[key.asset]; ok {
				cs.Reserves = append(cs.Reserves, r.Clone())
			}
		case kindVariableDebt:
			if d, ok := s.variable[pk]; ok {
				cs.VariableDebts = append(cs.VariableDebts, d.Clone())
			}
		case kindStableDebt:
			if d, ok := s.stable[pk]; ok {
				cs.StableDebts = append(cs.StableDebts, d.Clone())
			}
		case kindSupply:
			if d, ok := s.supplies[pk]; ok {
				cs.Supplies = append(cs.Supplies, d.Clone())
			}
		case kindStake:
			if d, ok := s.stakes[pk]; ok {
				cs.Stakes = append(cs.Stakes, d.Clone())
			} else {
				cs.RemovedStakes = append(cs.RemovedStakes, pk)
			}
		case kindPool:
			if p, ok := s.pools[key.asset]; ok {
				cs.Pools = append(cs.Pools, p.Clone())
			}
		case kindLock:
			if l, ok := s.locks[key.user]; ok {
				cs.Locks = append(cs.Locks, l.Clone())
			} else {
				cs.RemovedLocks = append(cs.RemovedLocks, key.user)
			}
		}
	}

	s.dirty = make(map[recordKey]struct{})
	s.events = nil
	return cs
}
