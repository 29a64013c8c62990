package lending

import (
	"boostlend/core"
	"boostlend/pkg/wadray"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// ReserveData reserve figures projected to now
type ReserveData struct {
	Reserve             *core.Reserve
	LiquidityIndex      *uint256.Int
	VariableBorrowIndex *uint256.Int
	TotalSupply         *uint256.Int
	TotalStableDebt     *uint256.Int
	TotalVariableDebt   *uint256.Int
	// ray
	Utilization *uint256.Int
}

// Position a user's balances on one reserve projected to now
type Position struct {
	Asset        common.Address
	User         common.Address
	Supply       *uint256.Int
	StableDebt   *uint256.Int
	StableRate   *uint256.Int
	VariableDebt *uint256.Int
	Stake        *uint256.Int
	Rewards      *uint256.Int
}

// ReserveData view of asset, false if not registered
func (e *Engine) ReserveData(st *State, asset common.Address) (*ReserveData, bool) {
	r, ok := st.reserves[asset]
	if !ok {
		return nil, false
	}

	now := e.now()
	data := &ReserveData{
		Reserve:             r.Clone(),
		LiquidityIndex:      NormalizedIncome(r, now),
		VariableBorrowIndex: NormalizedDebt(r, now),
		TotalStableDebt:     TotalStableDebt(r, now),
	}
	data.TotalSupply = wadray.RayMul(r.ScaledTotalSupply, data.LiquidityIndex)
	data.TotalVariableDebt = wadray.RayMul(r.ScaledTotalVariableDebt, data.VariableBorrowIndex)

	debt := new(uint256.Int).Add(data.TotalStableDebt, data.TotalVariableDebt)
	data.Utilization = wadray.RayDiv(debt, data.TotalSupply)
	return data, true
}

// Position view of user on asset, false if the reserve is not registered
func (e *Engine) Position(st *State, asset, user common.Address) (*Position, bool) {
	r, ok := st.reserves[asset]
	if !ok {
		return nil, false
	}

	now := e.now()
	p := &Position{
		Asset:        asset,
		User:         user,
		Supply:       supplyBalance(st, r, user, NormalizedIncome(r, now)),
		StableDebt:   e.stableDebtOf(st, asset, user, now),
		StableRate:   new(uint256.Int),
		VariableDebt: variableDebtBalance(st, r, user, NormalizedDebt(r, now)),
		Stake:        new(uint256.Int),
		Rewards:      e.PendingRewards(st, asset, user),
	}

	if d, ok := st.stable[PositionKey{Asset: asset, User: user}]; ok {
		p.StableRate.Set(d.Rate)
	}

	if s, ok := st.stakes[PositionKey{Asset: asset, User: user}]; ok {
		p.Stake.Set(s.Amount)
	}

	return p, true
}

// Positions views of user on every reserve it touched
func (e *Engine) Positions(st *State, user common.Address) []*Position {
	var positions []*Position
	for _, r := range st.Reserves() {
		p, _ := e.Position(st, r.Asset, user)
		if p.Supply.IsZero() && p.StableDebt.IsZero() && p.VariableDebt.IsZero() && p.Stake.IsZero() {
			continue
		}
		positions = append(positions, p)
	}
	return positions
}
