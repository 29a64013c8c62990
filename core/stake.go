package core

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fox-one/pkg/store/db"
	"github.com/holiman/uint256"
)

type (
	// BoosterType booster nft category
	BoosterType uint8
	// BoosterAction strategy the booster was minted for
	BoosterAction uint8
)

// DefaultMultiplier 1x in basis points
const DefaultMultiplier uint64 = 10_000

// Stake yield boost stake of a user on one asset
type Stake struct {
	Asset  common.Address `json:"asset"`
	User   common.Address `json:"user"`
	Amount *uint256.Int   `json:"amount"`
	// Amount * AccRewardPerShare at last settlement
	RewardDebt *uint256.Int `json:"reward_debt"`
}

// Clone deep copy
func (s *Stake) Clone() *Stake {
	c := *s
	c.Amount = cloneInt(s.Amount)
	c.RewardDebt = cloneInt(s.RewardDebt)
	return &c
}

// YieldPool aggregate stake of a yield boost asset
type YieldPool struct {
	Asset       common.Address `json:"asset"`
	TotalStaked *uint256.Int   `json:"total_staked"`
	// ray
	AccRewardPerShare *uint256.Int `json:"acc_reward_per_share"`
}

// Clone deep copy
func (p *YieldPool) Clone() *YieldPool {
	c := *p
	c.TotalStaked = cloneInt(p.TotalStaked)
	c.AccRewardPerShare = cloneInt(p.AccRewardPerShare)
	return &c
}

// BoosterLock booster nft held by the protocol on behalf of a user
type BoosterLock struct {
	User        common.Address `json:"user"`
	TokenID     uint64         `json:"token_id"`
	BoosterType BoosterType    `json:"booster_type"`
	Action      BoosterAction  `json:"action"`
	// the only asset whose debt moves this booster's stake
	LockedAsset common.Address `json:"locked_asset"`
}

// Clone copy
func (l *BoosterLock) Clone() *BoosterLock {
	c := *l
	return &c
}

// BoosterKey multiplier table key
type BoosterKey struct {
	Type   BoosterType
	Action BoosterAction
}

// Multipliers booster multiplier table in basis points
type Multipliers map[BoosterKey]uint64

// Of returns the multiplier of a booster, 1x when unknown
func (m Multipliers) Of(t BoosterType, action BoosterAction) uint64 {
	if v, ok := m[BoosterKey{Type: t, Action: action}]; ok {
		return v
	}
	return DefaultMultiplier
}

// BoosterRegistry booster nft custody
type BoosterRegistry interface {
	Describe(ctx context.Context, tokenID uint64) (BoosterType, BoosterAction, error)
	// Lock moves the nft from owner into protocol custody
	Lock(ctx context.Context, owner common.Address, tokenID uint64) error
	// Unlock returns the nft to owner
	Unlock(ctx context.Context, owner common.Address, tokenID uint64) error
}

// Booster booster nft and its current holder, the protocol while locked
type Booster struct {
	ID     uint64         `json:"id"`
	Owner  common.Address `json:"owner"`
	Type   BoosterType    `json:"type"`
	Action BoosterAction  `json:"action"`
}

// BoosterStore persisted booster ownership
type BoosterStore interface {
	Save(ctx context.Context, tx *db.DB, booster *Booster) error
	All(ctx context.Context) ([]*Booster, error)
}

// StakeStore stake store interface
type StakeStore interface {
	SaveStake(ctx context.Context, tx *db.DB, stake *Stake) error
	DeleteStake(ctx context.Context, tx *db.DB, asset, user common.Address) error
	SavePool(ctx context.Context, tx *db.DB, pool *YieldPool) error
	SaveLock(ctx context.Context, tx *db.DB, lock *BoosterLock) error
	DeleteLock(ctx context.Context, tx *db.DB, user common.Address) error
	AllStakes(ctx context.Context) ([]*Stake, error)
	AllPools(ctx context.Context) ([]*YieldPool, error)
	AllLocks(ctx context.Context) ([]*BoosterLock, error)
}
