package lending

import (
	"boostlend/core"
	"boostlend/pkg/wadray"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

func stableDebtBalance(d *core.StableDebt, now int64) *uint256.Int {
	if d == nil || d.Principal.IsZero() {
		return new(uint256.Int)
	}
	return wadray.RayMul(d.Principal, CompoundedInterest(d.Rate, d.LastUpdated, now))
}

func (e *Engine) stableDebtOf(st *State, asset, user common.Address, now int64) *uint256.Int {
	return stableDebtBalance(st.stable[PositionKey{Asset: asset, User: user}], now)
}

// mintStableDebt opens or grows a stable position at rate. The position
// rate becomes the balance weighted mean of its old rate and rate.
func (e *Engine) mintStableDebt(st *State, r *core.Reserve, user common.Address, amount, rate *uint256.Int, now int64) error {
	d := st.mutStableDebt(r.Asset, user)

	current := stableDebtBalance(d, now)
	increase := wadray.SubFloor(current, d.Principal)

	prevSupply := TotalStableDebt(r, now)
	nextSupply, err := wadray.Add(prevSupply, amount)
	if err != nil {
		return core.ErrMathOverflow
	}

	nextBalance, err := wadray.Add(current, amount)
	if err != nil {
		return core.ErrMathOverflow
	}

	d.Rate = weightedAdd(d.Rate, current, rate, amount, nextBalance)
	d.Principal = nextBalance
	d.LastUpdated = now

	r.AverageStableBorrowRate = weightedAdd(r.AverageStableBorrowRate, prevSupply, rate, amount, nextSupply)
	r.TotalPrincipalStableDebt = nextSupply
	r.StableDebtLastUpdateTimestamp = now

	minted := new(uint256.Int).Add(amount, increase)
	ref := core.AssetRef{Asset: r.Asset}
	st.emit(core.Transfer{AssetRef: ref, Token: core.TokenStableDebt, To: user, Value: minted})
	st.emit(core.Mint{
		AssetRef:        ref,
		Token:           core.TokenStableDebt,
		Caller:          user,
		OnBehalfOf:      user,
		Value:           new(uint256.Int).Set(minted),
		BalanceIncrease: increase,
		Index:           new(uint256.Int).Set(d.Rate),
	})
	return nil
}

// burnStableDebt repays amount, at most the current balance. Interest
// accrued since the last touch is capitalised first, so a repayment smaller
// than that interest still grows the principal.
func (e *Engine) burnStableDebt(st *State, r *core.Reserve, user, payer common.Address, amount *uint256.Int, now int64) {
	d := st.mutStableDebt(r.Asset, user)

	current := stableDebtBalance(d, now)
	increase := wadray.SubFloor(current, d.Principal)
	userRate := new(uint256.Int).Set(d.Rate)

	prevSupply := TotalStableDebt(r, now)
	if !prevSupply.Gt(amount) {
		r.AverageStableBorrowRate = new(uint256.Int)
		r.TotalPrincipalStableDebt = new(uint256.Int)
	} else {
		nextSupply := new(uint256.Int).Sub(prevSupply, amount)
		avg, ok := weightedSub(r.AverageStableBorrowRate, prevSupply, userRate, amount, nextSupply)
		if !ok {
			nextSupply.Clear()
		}
		r.AverageStableBorrowRate = avg
		r.TotalPrincipalStableDebt = nextSupply
	}
	r.StableDebtLastUpdateTimestamp = now

	d.Principal = wadray.SubFloor(current, amount)
	if d.Principal.IsZero() {
		d.Rate = new(uint256.Int)
		d.LastUpdated = 0
	} else {
		d.LastUpdated = now
	}

	ref := core.AssetRef{Asset: r.Asset}
	if increase.Gt(amount) {
		minted := new(uint256.Int).Sub(increase, amount)
		st.emit(core.Transfer{AssetRef: ref, Token: core.TokenStableDebt, To: user, Value: minted})
		st.emit(core.Mint{
			AssetRef:        ref,
			Token:           core.TokenStableDebt,
			Caller:          user,
			OnBehalfOf:      user,
			Value:           new(uint256.Int).Set(minted),
			BalanceIncrease: increase,
			Index:           userRate,
		})
		return
	}

	burned := new(uint256.Int).Sub(amount, increase)
	st.emit(core.Transfer{AssetRef: ref, Token: core.TokenStableDebt, From: user, Value: burned})
	st.emit(core.Burn{
		AssetRef:        ref,
		Token:           core.TokenStableDebt,
		From:            user,
		Target:          payer,
		Value:           new(uint256.Int).Set(burned),
		BalanceIncrease: increase,
		Index:           userRate,
	})
}
