package views

import (
	"boostlend/core"
	"boostlend/pkg/lending"
	"boostlend/pkg/number"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// Position position view
type Position struct {
	Asset         common.Address  `json:"asset"`
	User          common.Address  `json:"user"`
	Supply        decimal.Decimal `json:"supply"`
	StableDebt    decimal.Decimal `json:"stable_debt"`
	StableAPR     decimal.Decimal `json:"stable_apr"`
	VariableDebt  decimal.Decimal `json:"variable_debt"`
	Stake         decimal.Decimal `json:"stake"`
	Rewards       decimal.Decimal `json:"rewards"`
	BoosterLocked bool            `json:"booster_locked"`
}

// PositionFrom builds the view of p, lock may be nil
func PositionFrom(p *lending.Position, lock *core.BoosterLock) Position {
	return Position{
		Asset:         p.Asset,
		User:          p.User,
		Supply:        number.FromUint256(p.Supply),
		StableDebt:    number.FromUint256(p.StableDebt),
		StableAPR:     number.FromRay(p.StableRate),
		VariableDebt:  number.FromUint256(p.VariableDebt),
		Stake:         number.FromUint256(p.Stake),
		Rewards:       number.FromUint256(p.Rewards),
		BoosterLocked: lock != nil && lock.LockedAsset == p.Asset,
	}
}

// Lock booster lock view
type Lock struct {
	TokenID     uint64             `json:"token_id"`
	BoosterType core.BoosterType   `json:"booster_type"`
	Action      core.BoosterAction `json:"action"`
	LockedAsset common.Address     `json:"locked_asset"`
}

// Account positions of a user across reserves
type Account struct {
	User      common.Address `json:"user"`
	Positions []Position     `json:"positions"`
	Lock      *Lock          `json:"lock,omitempty"`
}

// AccountFrom builds the account view
func AccountFrom(user common.Address, positions []*lending.Position, lock *core.BoosterLock) Account {
	account := Account{
		User:      user,
		Positions: make([]Position, 0, len(positions)),
	}

	for _, p := range positions {
		account.Positions = append(account.Positions, PositionFrom(p, lock))
	}

	if lock != nil {
		account.Lock = &Lock{
			TokenID:     lock.TokenID,
			BoosterType: lock.BoosterType,
			Action:      lock.Action,
			LockedAsset: lock.LockedAsset,
		}
	}

	return account
}
