package lending

import (
	"boostlend/core"
	"boostlend/pkg/wadray"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// scaledPosition is the shared accounting of liquidity shares and variable debt
type scaledPosition struct {
	scaled    *uint256.Int
	lastIndex *uint256.Int
}

// balanceIncrease interest accrued on the position since it was last touched
func (p scaledPosition) balanceIncrease(index *uint256.Int) *uint256.Int {
	if p.scaled.IsZero() || p.lastIndex.IsZero() {
		return new(uint256.Int)
	}
	return wadray.SubFloor(wadray.RayMul(p.scaled, index), wadray.RayMul(p.scaled, p.lastIndex))
}

// mintScaled adds amount at index and emits the net mint including the interest
// accrued since the last touch. Returns the scaled delta, or ErrMathOverflow
// when the position or the minted value would not fit in 256 bits.
func mintScaled(st *State, token core.TokenKind, asset, caller, onBehalfOf common.Address, pos scaledPosition, amount, index *uint256.Int) (*uint256.Int, error) {
	scaledAmount, err := wadray.RayDivChecked(amount, index)
	if err != nil {
		return nil, core.ErrMathOverflow
	}

	increase := pos.balanceIncrease(index)
	scaled, err := wadray.Add(pos.scaled, scaledAmount)
	if err != nil {
		return nil, core.ErrMathOverflow
	}

	minted, err := wadray.Add(amount, increase)
	if err != nil {
		return nil, core.ErrMathOverflow
	}

	pos.scaled.Set(scaled)
	pos.lastIndex.Set(index)

	st.emit(core.Transfer{
		AssetRef: core.AssetRef{Asset: asset},
		Token:    token,
		To:       onBehalfOf,
		Value:    minted,
	})
	st.emit(core.Mint{
		AssetRef:        core.AssetRef{Asset: asset},
		Token:           token,
		Caller:          caller,
		OnBehalfOf:      onBehalfOf,
		Value:           new(uint256.Int).Set(minted),
		BalanceIncrease: increase,
		Index:           new(uint256.Int).Set(index),
	})
	return scaledAmount, nil
}

// burnScaled removes amount at index. Burning the whole balance clears the
// scaled balance so no dust survives. When the accrued interest exceeds
// amount the net effect is a mint. Returns the scaled delta.
func burnScaled(st *State, token core.TokenKind, asset, from, target common.Address, pos scaledPosition, amount, index *uint256.Int) *uint256.Int {
	increase := pos.balanceIncrease(index)

	scaledAmount := wadray.RayDiv(amount, index)
	if !amount.Lt(wadray.RayMul(pos.scaled, index)) || scaledAmount.Gt(pos.scaled) {
		scaledAmount = new(uint256.Int).Set(pos.scaled)
	}

	pos.scaled.Sub(pos.scaled, scaledAmount)
	pos.lastIndex.Set(index)

	ref := core.AssetRef{Asset: asset}
	if increase.Gt(amount) {
		minted := new(uint256.Int).Sub(increase, amount)
		st.emit(core.Transfer{AssetRef: ref, Token: token, To: from, Value: minted})
		st.emit(core.Mint{
			AssetRef:        ref,
			Token:           token,
			Caller:          from,
			OnBehalfOf:      from,
			Value:           new(uint256.Int).Set(minted),
			BalanceIncrease: increase,
			Index:           new(uint256.Int).Set(index),
		})
		return scaledAmount
	}

	burned := new(uint256.Int).Sub(amount, increase)
	st.emit(core.Transfer{AssetRef: ref, Token: token, From: from, Value: burned})
	st.emit(core.Burn{
		AssetRef:        ref,
		Token:           token,
		From:            from,
		Target:          target,
		Value:           new(uint256.Int).Set(burned),
		BalanceIncrease: increase,
		Index:           new(uint256.Int).Set(index),
	})
	return scaledAmount
}

func (e *Engine) mintSupply(st *State, r *core.Reserve, caller, onBehalfOf common.Address, amount *uint256.Int) error {
	s := st.mutSupply(r.Asset, onBehalfOf)
	delta, err := mintScaled(st, core.TokenLiquidity, r.Asset, caller, onBehalfOf,
		scaledPosition{scaled: s.ScaledBalance, lastIndex: s.LastIndex}, amount, r.LiquidityIndex)
	if err != nil {
		return err
	}

	total, err := wadray.Add(r.ScaledTotalSupply, delta)
	if err != nil {
		return core.ErrMathOverflow
	}
	r.ScaledTotalSupply = total
	return nil
}

func (e *Engine) burnSupply(st *State, r *core.Reserve, user, to common.Address, amount *uint256.Int) {
	s := st.mutSupply(r.Asset, user)
	delta := burnScaled(st, core.TokenLiquidity, r.Asset, user, to,
		scaledPosition{scaled: s.ScaledBalance, lastIndex: s.LastIndex}, amount, r.LiquidityIndex)
	r.ScaledTotalSupply = wadray.SubFloor(r.ScaledTotalSupply, delta)
}

func (e *Engine) mintVariableDebt(st *State, r *core.Reserve, user common.Address, amount *uint256.Int) error {
	d := st.mutVariableDebt(r.Asset, user)
	delta, err := mintScaled(st, core.TokenVariableDebt, r.Asset, user, user,
		scaledPosition{scaled: d.ScaledBalance, lastIndex: d.LastIndex}, amount, r.VariableBorrowIndex)
	if err != nil {
		return err
	}

	total, err := wadray.Add(r.ScaledTotalVariableDebt, delta)
	if err != nil {
		return core.ErrMathOverflow
	}
	r.ScaledTotalVariableDebt = total
	return nil
}

func (e *Engine) burnVariableDebt(st *State, r *core.Reserve, user, payer common.Address, amount *uint256.Int) {
	d := st.mutVariableDebt(r.Asset, user)
	delta := burnScaled(st, core.TokenVariableDebt, r.Asset, user, payer,
		scaledPosition{scaled: d.ScaledBalance, lastIndex: d.LastIndex}, amount, r.VariableBorrowIndex)
	r.ScaledTotalVariableDebt = wadray.SubFloor(r.ScaledTotalVariableDebt, delta)
}

func supplyBalance(st *State, r *core.Reserve, user common.Address, index *uint256.Int) *uint256.Int {
	s, ok := st.supplies[PositionKey{Asset: r.Asset, User: user}]
	if !ok {
		return new(uint256.Int)
	}
	return wadray.RayMul(s.ScaledBalance, index)
}

func variableDebtBalance(st *State, r *core.Reserve, user common.Address, index *uint256.Int) *uint256.Int {
	d, ok := st.variable[PositionKey{Asset: r.Asset, User: user}]
	if !ok {
		return new(uint256.Int)
	}
	return wadray.RayMul(d.ScaledBalance, index)
}
